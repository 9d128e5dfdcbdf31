// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package executor lottery 程序: 创建, 购买, 开奖, 派奖, 回收 ticket
package executor

import (
	pty "github.com/33cn/lottery/plugin/dapp/lottery/types"
	"github.com/33cn/lottery/system/dapp"
	"github.com/33cn/lottery/types"
	log "github.com/inconshreveable/log15"
)

var llog = log.New("module", "execs.lottery")

func init() {
	Init(pty.LotteryX)
}

// Init 注册驱动
func Init(name string) {
	driverName := GetName()
	if name != driverName {
		panic("system dapp can't be rename")
	}
	dapp.Register(pty.ProgramID, driverName, newLottery)
}

// GetName 程序名称
func GetName() string {
	return newLottery().GetName()
}

// Lottery 驱动, 无状态, 每条指令新建一个
type Lottery struct{}

func newLottery() dapp.Driver {
	return &Lottery{}
}

// GetName 程序名称
func (l *Lottery) GetName() string {
	return pty.LotteryX
}

// Process 解码指令并交给对应的 Action 处理
func (l *Lottery) Process(ctx dapp.Context, programID types.Pubkey, accounts []*dapp.AccountInfo, input []byte) error {
	if programID != pty.ProgramID {
		return dapp.ErrIncorrectProgramID
	}
	ix, err := pty.DecodeInstruction(input)
	if err != nil {
		llog.Error("Process", "input", len(input), "err", err)
		return err
	}
	action := NewLotteryAction(ctx, accounts)
	switch payload := ix.(type) {
	case pty.Initialize:
		return l.Exec_Initialize(action, payload)
	case pty.Contribute:
		return l.Exec_Contribute(action, payload)
	case pty.Draw:
		return l.Exec_Draw(action, payload)
	case pty.Settle:
		return l.Exec_Settle(action, payload)
	case pty.Release:
		return l.Exec_Release(action, payload)
	case pty.Cancel:
		return l.Exec_Cancel(action, payload)
	}
	return pty.ErrInvalidInstruction
}
