// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dapp 程序(执行器)驱动接口, 账户视图, 以及程序错误
package dapp

import (
	"github.com/33cn/lottery/types"
)

// AccountInfo 指令执行期间程序看到的账户.
// 同一条指令里重复出现的地址共享同一个 AccountInfo
type AccountInfo struct {
	Key        types.Pubkey
	IsSigner   bool
	IsWritable bool
	Lamports   uint64
	Owner      types.Pubkey
	Executable bool
	Data       []byte
}

// DataIsEmpty 账户还没有数据
func (info *AccountInfo) DataIsEmpty() bool {
	return len(info.Data) == 0
}

// Account 转换为存储的账户
func (info *AccountInfo) Account() *types.Account {
	return &types.Account{
		Lamports:   info.Lamports,
		Owner:      info.Owner,
		Executable: info.Executable,
		Data:       append([]byte(nil), info.Data...),
	}
}

// Context 程序执行环境, 由执行器提供
type Context interface {
	// Invoke 跨程序调用, 账户必须在当前指令中, 签名与可写权限不能提升
	Invoke(ix *types.Instruction) error
	// InvokeSigned 同 Invoke, 另外由 seeds 派生出的当前程序地址视为已签名
	InvokeSigned(ix *types.Instruction, signerSeeds ...[][]byte) error
	// Log 写入交易回执
	Log(msg string, ctx ...interface{})
}

// Driver 程序
type Driver interface {
	GetName() string
	// Process 执行一条指令, 返回错误时整笔交易回滚
	Process(ctx Context, programID types.Pubkey, accounts []*AccountInfo, input []byte) error
}

// AccountIter 按顺序取出指令的账户
type AccountIter struct {
	accounts []*AccountInfo
	index    int
}

// NewAccountIter new
func NewAccountIter(accounts []*AccountInfo) *AccountIter {
	return &AccountIter{accounts: accounts}
}

// Next 下一个账户, 不够时返回 ErrNotEnoughAccountKeys
func (it *AccountIter) Next() (*AccountInfo, error) {
	if it.index >= len(it.accounts) {
		return nil, ErrNotEnoughAccountKeys
	}
	info := it.accounts[it.index]
	it.index++
	return info, nil
}

// Remaining 剩下的账户个数
func (it *AccountIter) Remaining() int {
	return len(it.accounts) - it.index
}
