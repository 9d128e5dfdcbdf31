// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package node 按配置组装本地账本: 日志, 数据库, 执行器, 统计
package node

import (
	dbm "github.com/33cn/lottery/common/db"
	"github.com/33cn/lottery/common/log"
	"github.com/33cn/lottery/executor"
	"github.com/33cn/lottery/metrics"
	"github.com/33cn/lottery/types"
	log15 "github.com/inconshreveable/log15"
	"github.com/pkg/errors"

	_ "github.com/33cn/lottery/system" //内置程序
)

var nlog = log15.New("module", "node")

// Node 本地账本
type Node struct {
	cfg  *types.Config
	db   dbm.DB
	exec *executor.Executor
}

// New 打开账本, 配置中缺省的部分使用默认值
func New(cfg *types.Config, enableLog bool) (*Node, error) {
	if cfg.Store == nil || cfg.Ledger == nil {
		return nil, errors.Wrap(types.ErrConfig, "store and ledger section required")
	}
	if enableLog {
		log.SetFileLog(cfg.Log)
	}
	db, err := dbm.OpenDB(cfg.Store.Name, cfg.Store.Driver, cfg.Store.DbPath, int(cfg.Store.DbCache))
	if err != nil {
		return nil, errors.Wrapf(types.ErrDBDriver, "open %s %s: %v", cfg.Store.Driver, cfg.Store.DbPath, err)
	}
	exec, err := executor.New(db, cfg.Ledger)
	if err != nil {
		db.Close()
		return nil, err
	}
	metrics.StartMetrics(cfg.Metrics)
	nlog.Info("node start", "title", cfg.Title, "driver", cfg.Store.Driver, "path", cfg.Store.DbPath)
	return &Node{cfg: cfg, db: db, exec: exec}, nil
}

// NewFromFile 读取配置文件然后打开账本
func NewFromFile(path string) (*Node, error) {
	cfg, err := types.InitCfg(path)
	if err != nil {
		return nil, err
	}
	return New(cfg, true)
}

// GetExec 执行器
func (n *Node) GetExec() *executor.Executor {
	return n.exec
}

// GetCfg 配置
func (n *Node) GetCfg() *types.Config {
	return n.cfg
}

// Close 关闭数据库
func (n *Node) Close() {
	n.db.Close()
	nlog.Info("node closed")
}
