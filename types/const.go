// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

// 回执类型
const (
	ExecErr  = 0
	ExecPack = 1
	ExecOk   = 2
)

// 账本常量
const (
	// LamportsPerSol 原生币精度
	LamportsPerSol uint64 = 1e9
	// MaxTxSize 交易消息的最大长度
	MaxTxSize = 64 * 1024
	// MaxInstructionDepth 跨程序调用的最大深度, 顶层指令深度为1
	MaxInstructionDepth = 4
	// MaxAccountDataLen 单个账户数据的上限
	MaxAccountDataLen = 10 * 1024 * 1024
	// DefaultTxFee 默认每笔交易手续费
	DefaultTxFee uint64 = 5000
)

// 数据库前缀
var (
	AccountPrefix = []byte("mavl-acc-")
	OwnerPrefix   = []byte("LODB-owner-")
	ReceiptPrefix = []byte("TX:")
)

// AccountKey 账户存储键
func AccountKey(key Pubkey) []byte {
	return append(append([]byte{}, AccountPrefix...), key[:]...)
}

// OwnerIndexKey 程序 -> 账户 索引, 支持按程序查询账户
func OwnerIndexKey(owner, key Pubkey) []byte {
	k := make([]byte, 0, len(OwnerPrefix)+2*PubkeyLen)
	k = append(k, OwnerPrefix...)
	k = append(k, owner[:]...)
	return append(k, key[:]...)
}

// OwnerIndexPrefix 某个程序下所有账户的索引前缀
func OwnerIndexPrefix(owner Pubkey) []byte {
	return append(append([]byte{}, OwnerPrefix...), owner[:]...)
}

// ReceiptKey 回执存储键
func ReceiptKey(hash []byte) []byte {
	return append(append([]byte{}, ReceiptPrefix...), hash...)
}
