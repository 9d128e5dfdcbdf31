// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

// Config 配置
type Config struct {
	Title   string   `json:"title,omitempty"`
	Log     *Log     `json:"log,omitempty"`
	Store   *Store   `json:"store,omitempty"`
	Ledger  *Ledger  `json:"ledger,omitempty"`
	Metrics *Metrics `json:"metrics,omitempty"`
	Wallet  *Wallet  `json:"wallet,omitempty"`
}

// Log 日志配置
type Log struct {
	// 日志级别，支持debug(dbug)/info/warn/error(eror)/crit
	Loglevel        string `json:"loglevel,omitempty"`
	LogConsoleLevel string `json:"logConsoleLevel,omitempty"`
	// 日志文件名，可带目录，所有生成的日志文件都放到此目录下
	LogFile string `json:"logFile,omitempty"`
	// 单个日志文件的最大值（单位：兆）
	MaxFileSize uint32 `json:"maxFileSize,omitempty"`
	// 最多保存的历史日志文件个数
	MaxBackups uint32 `json:"maxBackups,omitempty"`
	// 最多保存的历史日志消息（单位：天）
	MaxAge uint32 `json:"maxAge,omitempty"`
	// 日志文件名是否使用本地事件（否则使用UTC时间）
	LocalTime bool `json:"localTime,omitempty"`
	// 历史日志文件是否压缩（压缩格式为gz）
	Compress bool `json:"compress,omitempty"`
	// 是否打印调用源文件和行号
	CallerFile bool `json:"callerFile,omitempty"`
	// 是否打印调用方法
	CallerFunction bool `json:"callerFunction,omitempty"`
}

// Store 存储配置
type Store struct {
	// 数据存储格式名称，目前支持 memdb, leveldb, goleveldb, gobadgerdb
	Driver string `json:"driver,omitempty"`
	// 数据存储目录
	DbPath string `json:"dbPath,omitempty"`
	// 数据库缓存大小 (MB)
	DbCache int32 `json:"dbCache,omitempty"`
	Name    string `json:"name,omitempty"`
}

// Ledger 账本执行参数
type Ledger struct {
	// 每笔交易的手续费
	TxFee uint64 `json:"txFee,omitempty"`
	// 租金: 每字节每年
	LamportsPerByteYear uint64 `json:"lamportsPerByteYear,omitempty"`
	// 免租需要预存的年数
	ExemptionYears uint64 `json:"exemptionYears,omitempty"`
	// slot hashes 最多保留的条数
	SlotHashesMax int `json:"slotHashesMax,omitempty"`
	// 创世时间 (unix 秒), 以及每个 slot 的时长 (毫秒)
	GenesisTime int64 `json:"genesisTime,omitempty"`
	SlotMs      int64 `json:"slotMs,omitempty"`
	// 每笔交易之后 slot 是否自动前进
	SlotPerTx bool `json:"slotPerTx,omitempty"`
}

// Metrics 统计配置
type Metrics struct {
	EnableMetrics bool `json:"enableMetrics,omitempty"`
	// 周期输出统计数据的间隔 (秒)
	Interval int64 `json:"interval,omitempty"`
}

// Wallet 钱包配置
type Wallet struct {
	// 默认签名私钥文件
	KeyFile string `json:"keyFile,omitempty"`
}
