// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor

import (
	pty "github.com/33cn/lottery/plugin/dapp/lottery/types"
)

// Exec_Initialize 创建
func (l *Lottery) Exec_Initialize(action *Action, payload pty.Initialize) error {
	action.ctx.Log("Instruction: Initialize")
	return action.LotteryInitialize(payload)
}

// Exec_Contribute 购买
func (l *Lottery) Exec_Contribute(action *Action, payload pty.Contribute) error {
	action.ctx.Log("Instruction: Contribute")
	return action.LotteryContribute(payload)
}

// Exec_Draw 开奖
func (l *Lottery) Exec_Draw(action *Action, payload pty.Draw) error {
	action.ctx.Log("Instruction: Draw")
	return action.LotteryDraw(payload)
}

// Exec_Settle 派奖
func (l *Lottery) Exec_Settle(action *Action, payload pty.Settle) error {
	action.ctx.Log("Instruction: Settle")
	return action.LotterySettle(payload)
}

// Exec_Release 回收 ticket
func (l *Lottery) Exec_Release(action *Action, payload pty.Release) error {
	action.ctx.Log("Instruction: Release")
	return action.LotteryRelease(payload)
}

// Exec_Cancel 关闭空的过期 lottery
func (l *Lottery) Exec_Cancel(action *Action, payload pty.Cancel) error {
	action.ctx.Log("Instruction: Cancel")
	return action.LotteryCancel(payload)
}
