// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package testnode 提供一个内存账本, 用于单元测试和集成测试
package testnode

import (
	"strings"
	"sync/atomic"

	"github.com/33cn/lottery/common/crypto"
	"github.com/33cn/lottery/common/log"
	"github.com/33cn/lottery/executor"
	"github.com/33cn/lottery/system/dapp/ata"
	"github.com/33cn/lottery/system/dapp/system"
	"github.com/33cn/lottery/system/dapp/token"
	"github.com/33cn/lottery/types"
	"github.com/33cn/lottery/util/node"
	log15 "github.com/inconshreveable/log15"
)

var tlog = log15.New("module", "testnode")

func init() {
	log.SetLogLevel("error")
}

// 测试账本: 内存数据库, slot 只在 AdvanceSlot 时前进
var cfgstring = `
Title="local"
[store]
name="test"
driver="memdb"
dbPath=""
[ledger]
slotPerTx=false
[metrics]
enableMetrics=false
`

// LedgerMock 内存账本
type LedgerMock struct {
	node  *node.Node
	exec  *executor.Executor
	nonce uint64
}

// GetDefaultConfig 测试用配置
func GetDefaultConfig() *types.Config {
	cfg, err := types.InitCfgString(cfgstring)
	if err != nil {
		panic(err)
	}
	return cfg
}

// New 使用默认配置创建
func New() *LedgerMock {
	return NewWithConfig(GetDefaultConfig())
}

// NewWithConfig 创建内存账本, 出错时 panic
func NewWithConfig(cfg *types.Config) *LedgerMock {
	if !strings.EqualFold(cfg.Store.Driver, "memdb") {
		tlog.Warn("NewWithConfig: not a memory ledger", "driver", cfg.Store.Driver)
	}
	n, err := node.New(cfg, false)
	if err != nil {
		panic(err)
	}
	return &LedgerMock{node: n, exec: n.GetExec()}
}

// Close 关闭
func (m *LedgerMock) Close() {
	m.node.Close()
}

// GetExec 执行器
func (m *LedgerMock) GetExec() *executor.Executor {
	return m.exec
}

// NewKey 随机私钥
func (m *LedgerMock) NewKey() *crypto.PrivKey {
	priv, err := crypto.GenKey()
	if err != nil {
		panic(err)
	}
	return priv
}

// NewFundedKey 随机私钥, 并空投 lamports
func (m *LedgerMock) NewFundedKey(lamports uint64) *crypto.PrivKey {
	priv := m.NewKey()
	if err := m.exec.Airdrop(priv.Pubkey(), lamports); err != nil {
		panic(err)
	}
	return priv
}

// SendTx 签名并执行交易, 每次使用新的 nonce, 第一个 signer 支付手续费
func (m *LedgerMock) SendTx(signers []types.Signer, ixs ...*types.Instruction) (*types.Receipt, error) {
	tx := types.NewTransaction(atomic.AddUint64(&m.nonce, 1), ixs...)
	if len(signers) > 0 {
		tx.Payer = signers[0].Pubkey()
	}
	tx.Sign(signers...)
	return m.exec.ExecTx(tx)
}

// AdvanceSlot 时钟前进
func (m *LedgerMock) AdvanceSlot(n uint64) {
	if err := m.exec.AdvanceSlot(n); err != nil {
		panic(err)
	}
}

// Balance 原生币余额, 账户不存在为 0
func (m *LedgerMock) Balance(key types.Pubkey) uint64 {
	return m.exec.GetBalance(key)
}

// TokenBalance 资产账户余额, 账户不存在或者不是资产账户为 0
func (m *LedgerMock) TokenBalance(key types.Pubkey) uint64 {
	acc, err := m.exec.GetAccount(key)
	if err != nil || acc.Owner != token.ProgramID {
		return 0
	}
	tacc, err := token.UnpackAccount(acc.Data)
	if err != nil {
		return 0
	}
	return tacc.Amount
}

// CreateMint 创建资产, authority 可以增发
func (m *LedgerMock) CreateMint(payer types.Signer, authority types.Pubkey, decimals uint8) (types.Pubkey, error) {
	mint := m.NewKey()
	create := system.CreateAccount(payer.Pubkey(), mint.Pubkey(), m.exec.MinimumBalance(token.MintLen), token.MintLen, token.ProgramID)
	_, err := m.SendTx([]types.Signer{payer, mint}, create, token.InitializeMint(mint.Pubkey(), authority, decimals))
	return mint.Pubkey(), err
}

// CreateTokenAccount 用新的私钥地址创建资产账户
func (m *LedgerMock) CreateTokenAccount(payer types.Signer, mint, owner types.Pubkey) (types.Pubkey, error) {
	acc := m.NewKey()
	create := system.CreateAccount(payer.Pubkey(), acc.Pubkey(), m.exec.MinimumBalance(token.AccountLen), token.AccountLen, token.ProgramID)
	_, err := m.SendTx([]types.Signer{payer, acc}, create, token.InitializeAccount(acc.Pubkey(), mint, owner))
	return acc.Pubkey(), err
}

// CreateAssociatedAccount 创建 wallet 在 mint 上的关联资产账户
func (m *LedgerMock) CreateAssociatedAccount(payer types.Signer, wallet, mint types.Pubkey) (types.Pubkey, error) {
	_, err := m.SendTx([]types.Signer{payer}, ata.Create(payer.Pubkey(), wallet, mint))
	return ata.Address(wallet, mint), err
}

// MintTo 增发
func (m *LedgerMock) MintTo(authority types.Signer, mint, dest types.Pubkey, amount uint64) error {
	_, err := m.SendTx([]types.Signer{authority}, token.MintTo(mint, dest, authority.Pubkey(), amount))
	return err
}
