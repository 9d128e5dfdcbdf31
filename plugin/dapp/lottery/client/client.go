// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package client 客户端查询以及指令构造, 只通过 AccountReader 读取账本
package client

import (
	"sort"

	pty "github.com/33cn/lottery/plugin/dapp/lottery/types"
	"github.com/33cn/lottery/types"
	log "github.com/inconshreveable/log15"
	"github.com/pkg/errors"
)

var clog = log.New("module", "lottery.client")

// AccountReader 账本的只读视图, *executor.Executor 满足这个接口
type AccountReader interface {
	GetAccount(key types.Pubkey) (*types.Account, error)
	GetProgramAccounts(programID types.Pubkey, filters ...types.AccountFilter) ([]*types.KeyedAccount, error)
}

var (
	lotteryState = pty.LotterySchema.Offset("state")
	lotteryAuth  = pty.LotterySchema.Offset("authority")
	ticketState  = pty.TicketSchema.Offset("state")
	ticketOwner  = pty.TicketSchema.Offset("owner")
)

// GetLottery 读取并解码 lottery 账户
func GetLottery(r AccountReader, key types.Pubkey) (*pty.Lottery, error) {
	acc, err := r.GetAccount(key)
	if err != nil {
		return nil, errors.Wrapf(err, "lottery %s", key)
	}
	if acc.Owner != pty.ProgramID {
		return nil, errors.Wrapf(types.ErrNotFound, "account %s is not a lottery", key)
	}
	return pty.UnpackLottery(acc.Data)
}

// FindTickets 某一期的全部 ticket, 按号码区间排序
func FindTickets(r AccountReader, lottery types.Pubkey) ([]*pty.TicketInfo, error) {
	prefix := append([]byte{pty.StateTicket}, lottery[:]...)
	return findTickets(r, types.FilterMemcmp(ticketState, prefix))
}

func findTickets(r AccountReader, filters ...types.AccountFilter) ([]*pty.TicketInfo, error) {
	filters = append(filters, types.FilterDataSize(pty.TicketLen))
	accounts, err := r.GetProgramAccounts(pty.ProgramID, filters...)
	if err != nil {
		return nil, err
	}
	tickets := make([]*pty.TicketInfo, 0, len(accounts))
	for _, ka := range accounts {
		t, err := pty.UnpackTicket(ka.Account.Data)
		if err != nil {
			clog.Debug("findTickets: skip", "account", ka.Pubkey, "err", err)
			continue
		}
		tickets = append(tickets, pty.NewTicketInfo(ka.Pubkey, t))
	}
	sort.Slice(tickets, func(i, j int) bool {
		if tickets[i].RangeStart != tickets[j].RangeStart {
			return tickets[i].RangeStart < tickets[j].RangeStart
		}
		return tickets[i].Address.Less(tickets[j].Address)
	})
	return tickets, nil
}

// FindWinningTicket 号码区间包含开奖结果的 ticket
func FindWinningTicket(r AccountReader, lottery types.Pubkey, l *pty.Lottery) (*pty.TicketInfo, error) {
	tickets, err := FindTickets(r, lottery)
	if err != nil {
		return nil, err
	}
	i := sort.Search(len(tickets), func(i int) bool { return tickets[i].RangeEnd >= l.DrawResult })
	if i < len(tickets) && tickets[i].Contains(l.DrawResult) {
		return tickets[i], nil
	}
	return nil, errors.Wrapf(types.ErrNotFound, "no ticket of %s contains %d", lottery, l.DrawResult)
}

func findLotteries(r AccountReader, state uint8, authority types.Pubkey) ([]*types.KeyedAccount, []*pty.Lottery, error) {
	filters := []types.AccountFilter{
		types.FilterMemcmp(lotteryState, []byte{state}),
		types.FilterDataSize(pty.LotteryLen),
	}
	if !authority.IsZero() {
		filters = append(filters, types.FilterMemcmp(lotteryAuth, authority[:]))
	}
	accounts, err := r.GetProgramAccounts(pty.ProgramID, filters...)
	if err != nil {
		return nil, nil, err
	}
	var keyed []*types.KeyedAccount
	var lotteries []*pty.Lottery
	for _, ka := range accounts {
		l, err := pty.UnpackLottery(ka.Account.Data)
		if err != nil {
			continue
		}
		keyed = append(keyed, ka)
		lotteries = append(lotteries, l)
	}
	return keyed, lotteries, nil
}

// GetEndedLotteries authority 名下已满额或者已过期, 还没有开奖的 lottery
func GetEndedLotteries(r AccountReader, authority types.Pubkey, slot uint64) ([]*pty.LotteryInfo, error) {
	keyed, lotteries, err := findLotteries(r, pty.StateOpen, authority)
	if err != nil {
		return nil, err
	}
	var out []*pty.LotteryInfo
	for i, l := range lotteries {
		if l.DrawEligible(slot) {
			out = append(out, pty.NewLotteryInfo(keyed[i].Pubkey, l, slot))
		}
	}
	return out, nil
}

// GetWithdrawableLotteries authority 名下已开奖, 还没有派奖的 lottery
func GetWithdrawableLotteries(r AccountReader, authority types.Pubkey, slot uint64) ([]*pty.LotteryInfo, error) {
	keyed, lotteries, err := findLotteries(r, pty.StateDrawn, authority)
	if err != nil {
		return nil, err
	}
	out := make([]*pty.LotteryInfo, 0, len(lotteries))
	for i, l := range lotteries {
		out = append(out, pty.NewLotteryInfo(keyed[i].Pubkey, l, slot))
	}
	return out, nil
}

// FindClosableTickets owner 的 ticket 中所属 lottery 已派奖的那些
func FindClosableTickets(r AccountReader, owner types.Pubkey) ([]*pty.TicketInfo, error) {
	tickets, err := findTickets(r,
		types.FilterMemcmp(ticketState, []byte{pty.StateTicket}),
		types.FilterMemcmp(ticketOwner, owner[:]))
	if err != nil {
		return nil, err
	}
	return settledOnly(r, tickets), nil
}

// FindAllClosableTickets 所有已派奖 lottery 的 ticket
func FindAllClosableTickets(r AccountReader) ([]*pty.TicketInfo, error) {
	tickets, err := findTickets(r, types.FilterMemcmp(ticketState, []byte{pty.StateTicket}))
	if err != nil {
		return nil, err
	}
	return settledOnly(r, tickets), nil
}

func settledOnly(r AccountReader, tickets []*pty.TicketInfo) []*pty.TicketInfo {
	settled := make(map[types.Pubkey]bool)
	var out []*pty.TicketInfo
	for _, t := range tickets {
		ok, seen := settled[t.LotteryRef]
		if !seen {
			l, err := GetLottery(r, t.LotteryRef)
			ok = err == nil && l.State == pty.StateSettled
			settled[t.LotteryRef] = ok
		}
		if ok {
			out = append(out, t)
		}
	}
	return out
}
