// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"github.com/33cn/lottery/types"
)

// LotteryInfo 命令行以及查询输出
type LotteryInfo struct {
	Address types.Pubkey `json:"address"`
	Status  string       `json:"status"`
	*Lottery
	DrawEligible bool `json:"drawEligible"`
}

// NewLotteryInfo 当前 slot 下的 Lottery 视图
func NewLotteryInfo(address types.Pubkey, l *Lottery, slot uint64) *LotteryInfo {
	return &LotteryInfo{
		Address:      address,
		Status:       StateName(l.State),
		Lottery:      l,
		DrawEligible: l.State == StateOpen && l.DrawEligible(slot),
	}
}

// TicketInfo 命令行以及查询输出
type TicketInfo struct {
	Address types.Pubkey `json:"address"`
	*Ticket
	Amount uint64 `json:"amount"`
}

// NewTicketInfo Ticket 视图
func NewTicketInfo(address types.Pubkey, t *Ticket) *TicketInfo {
	return &TicketInfo{Address: address, Ticket: t, Amount: t.RangeEnd - t.RangeStart + 1}
}
