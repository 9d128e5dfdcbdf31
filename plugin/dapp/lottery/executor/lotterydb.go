// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor

import (
	"encoding/binary"
	"math/bits"

	"github.com/33cn/lottery/common"
	pty "github.com/33cn/lottery/plugin/dapp/lottery/types"
	"github.com/33cn/lottery/system/dapp"
	"github.com/33cn/lottery/system/dapp/ata"
	"github.com/33cn/lottery/system/dapp/sysvar"
	"github.com/33cn/lottery/system/dapp/system"
	"github.com/33cn/lottery/system/dapp/token"
	"github.com/33cn/lottery/types"
	"github.com/pkg/errors"
)

// Action 一条 lottery 指令的执行现场
type Action struct {
	ctx      dapp.Context
	accounts []*dapp.AccountInfo
	iter     *dapp.AccountIter
}

// NewLotteryAction new
func NewLotteryAction(ctx dapp.Context, accounts []*dapp.AccountInfo) *Action {
	return &Action{ctx: ctx, accounts: accounts, iter: dapp.NewAccountIter(accounts)}
}

// next 按顺序取出 n 个账户
func (action *Action) next(n int) ([]*dapp.AccountInfo, error) {
	out := make([]*dapp.AccountInfo, 0, n)
	for i := 0; i < n; i++ {
		info, err := action.iter.Next()
		if err != nil {
			return nil, errors.Wrapf(err, "need %d accounts, got %d", n, len(action.accounts))
		}
		out = append(out, info)
	}
	return out, nil
}

func checkWritable(infos ...*dapp.AccountInfo) error {
	for _, info := range infos {
		if !info.IsWritable {
			return errors.Wrapf(pty.ErrAccountNotWritable, "account %s", info.Key)
		}
	}
	return nil
}

func checkProgramOwned(infos ...*dapp.AccountInfo) error {
	for _, info := range infos {
		if info.Owner != pty.ProgramID {
			return errors.Wrapf(dapp.ErrIncorrectProgramID, "account %s owner %s", info.Key, info.Owner)
		}
	}
	return nil
}

func checkProgramID(info *dapp.AccountInfo, want types.Pubkey) error {
	if info.Key != want {
		return errors.Wrapf(dapp.ErrIncorrectProgramID, "program %s want %s", info.Key, want)
	}
	return nil
}

func checkAuthority(l *pty.Lottery, authority *dapp.AccountInfo) error {
	if !authority.IsSigner || authority.Key != l.Authority {
		return errors.Wrapf(dapp.ErrMissingRequiredSignature, "authority %s", authority.Key)
	}
	return nil
}

func loadTokenAccount(info *dapp.AccountInfo) (*token.Account, error) {
	if info.Owner != token.ProgramID {
		return nil, errors.Wrapf(dapp.ErrInvalidAccountData, "token account %s owner %s", info.Key, info.Owner)
	}
	acc, err := token.UnpackAccount(info.Data)
	if err != nil {
		return nil, errors.Wrapf(err, "token account %s", info.Key)
	}
	return acc, nil
}

// LotteryInitialize 创建一期抽奖以及它的奖池, 必要时创建手续费账户
func (action *Action) LotteryInitialize(create pty.Initialize) error {
	infos, err := action.next(12)
	if err != nil {
		return err
	}
	lotteryInfo, authority, feeAuthority, escrowOwner := infos[0], infos[1], infos[2], infos[3]
	escrow, feeEscrow, ataProgram, mint := infos[4], infos[5], infos[6], infos[7]
	tokenProgram, systemProgram, clockInfo, rentInfo := infos[8], infos[9], infos[10], infos[11]

	if err := checkWritable(lotteryInfo, authority, escrow, feeEscrow); err != nil {
		return err
	}
	for _, p := range []struct {
		info *dapp.AccountInfo
		id   types.Pubkey
	}{{ataProgram, ata.ProgramID}, {tokenProgram, token.ProgramID}, {systemProgram, system.ProgramID}} {
		if err := checkProgramID(p.info, p.id); err != nil {
			return err
		}
	}
	rent, err := sysvar.RentFromAccount(rentInfo)
	if err != nil {
		return errors.Wrap(err, "rent")
	}

	if lotteryInfo.DataIsEmpty() {
		if !authority.IsSigner {
			return errors.Wrapf(dapp.ErrMissingRequiredSignature, "authority %s", authority.Key)
		}
		ix := system.CreateAccount(authority.Key, lotteryInfo.Key, rent.MinimumBalance(pty.LotteryLen), pty.LotteryLen, pty.ProgramID)
		if err := action.ctx.Invoke(ix); err != nil {
			return errors.Wrap(err, "create lottery account")
		}
	}
	if err := checkProgramOwned(lotteryInfo); err != nil {
		return err
	}
	if !rent.IsExempt(lotteryInfo.Lamports, len(lotteryInfo.Data)) {
		llog.Error("LotteryInitialize", "lottery", lotteryInfo.Key, "lamports", lotteryInfo.Lamports)
		return errors.Wrapf(pty.ErrNotRentExempt, "lottery %s lamports %d", lotteryInfo.Key, lotteryInfo.Lamports)
	}
	lottery, err := pty.UnpackLotteryUnchecked(lotteryInfo.Data)
	if err != nil {
		return errors.Wrapf(err, "lottery %s", lotteryInfo.Key)
	}
	if lottery.State != pty.StateUninitialized {
		return errors.Wrapf(dapp.ErrAccountAlreadyInitialized, "lottery %s state %s", lotteryInfo.Key, pty.StateName(lottery.State))
	}
	if !authority.IsSigner {
		return errors.Wrapf(dapp.ErrMissingRequiredSignature, "authority %s", authority.Key)
	}
	if create.Cap == 0 {
		return errors.Wrap(dapp.ErrInvalidArgument, "contribution cap is zero")
	}

	owner, err := EscrowOwner(lotteryInfo.Key)
	if err != nil || owner != escrowOwner.Key {
		return errors.Wrapf(dapp.ErrInvalidAccountData, "escrow owner %s", escrowOwner.Key)
	}
	if feeAuthority.Key != pty.FeeCollector {
		return errors.Wrapf(dapp.ErrInvalidAccountData, "fee collector %s", feeAuthority.Key)
	}
	if want := ata.Address(pty.FeeCollector, mint.Key); feeEscrow.Key != want {
		return errors.Wrapf(dapp.ErrInvalidAccountData, "fee escrow %s want %s", feeEscrow.Key, want)
	}
	if want := ata.Address(owner, mint.Key); escrow.Key != want {
		return errors.Wrapf(dapp.ErrInvalidAccountData, "escrow %s want %s", escrow.Key, want)
	}
	if feeEscrow.Owner != token.ProgramID {
		if err := action.ctx.Invoke(ata.Create(authority.Key, pty.FeeCollector, mint.Key)); err != nil {
			return errors.Wrap(err, "create fee escrow")
		}
	}
	if escrow.Owner != token.ProgramID {
		if err := action.ctx.Invoke(ata.Create(authority.Key, owner, mint.Key)); err != nil {
			return errors.Wrap(err, "create escrow")
		}
	}
	feeAcc, err := loadTokenAccount(feeEscrow)
	if err != nil {
		return err
	}
	if feeAcc.Owner != pty.FeeCollector || feeAcc.Mint != mint.Key {
		return errors.Wrapf(dapp.ErrInvalidAccountData, "fee escrow %s owner %s", feeEscrow.Key, feeAcc.Owner)
	}
	escrowAcc, err := loadTokenAccount(escrow)
	if err != nil {
		return err
	}
	if escrowAcc.Owner != owner || escrowAcc.Mint != mint.Key {
		return errors.Wrapf(dapp.ErrInvalidAccountData, "escrow %s owner %s", escrow.Key, escrowAcc.Owner)
	}

	clock, err := sysvar.ClockFromAccount(clockInfo)
	if err != nil {
		return errors.Wrap(err, "clock")
	}
	deadline, carry := bits.Add64(clock.Slot, create.Duration, 0)
	if carry != 0 {
		return errors.Wrapf(dapp.ErrArithmeticOverflow, "deadline %d + %d", clock.Slot, create.Duration)
	}

	lottery = &pty.Lottery{
		State:           pty.StateOpen,
		Authority:       authority.Key,
		EscrowAddress:   escrow.Key,
		FeeAddress:      feeEscrow.Key,
		ContributionCap: create.Cap,
		Deadline:        deadline,
		AssetType:       mint.Key,
	}
	if err := lottery.Pack(lotteryInfo.Data); err != nil {
		return err
	}
	llog.Debug("LotteryInitialize", "lottery", lotteryInfo.Key, "cap", create.Cap, "deadline", deadline)
	action.ctx.Log("lottery initialized", "lottery", lotteryInfo.Key, "cap", create.Cap, "deadline", deadline)
	return nil
}

// LotteryContribute 购买: 创建 ticket, 转入资产, 分配号码区间 [total+1, total+amount]
func (action *Action) LotteryContribute(buy pty.Contribute) error {
	infos, err := action.next(9)
	if err != nil {
		return err
	}
	lotteryInfo, ticketInfo, contributor, escrow, source := infos[0], infos[1], infos[2], infos[3], infos[4]
	tokenProgram, clockInfo, systemProgram, rentInfo := infos[5], infos[6], infos[7], infos[8]

	if err := checkWritable(lotteryInfo, ticketInfo, contributor, escrow, source); err != nil {
		return err
	}
	if err := checkProgramID(tokenProgram, token.ProgramID); err != nil {
		return err
	}
	if err := checkProgramID(systemProgram, system.ProgramID); err != nil {
		return err
	}
	if !contributor.IsSigner {
		return errors.Wrapf(dapp.ErrMissingRequiredSignature, "contributor %s", contributor.Key)
	}
	if buy.Amount == 0 {
		return errors.Wrap(dapp.ErrInvalidArgument, "amount is zero")
	}

	if ticketInfo.DataIsEmpty() {
		rent, err := sysvar.RentFromAccount(rentInfo)
		if err != nil {
			return errors.Wrap(err, "rent")
		}
		ix := system.CreateAccount(contributor.Key, ticketInfo.Key, rent.MinimumBalance(pty.TicketLen), pty.TicketLen, pty.ProgramID)
		if err := action.ctx.Invoke(ix); err != nil {
			return errors.Wrap(err, "create ticket account")
		}
	}
	if err := checkProgramOwned(lotteryInfo, ticketInfo); err != nil {
		return err
	}
	lottery, err := pty.UnpackLottery(lotteryInfo.Data)
	if err != nil {
		return errors.Wrapf(err, "lottery %s", lotteryInfo.Key)
	}
	ticket, err := pty.UnpackTicketUnchecked(ticketInfo.Data)
	if err != nil {
		return errors.Wrapf(err, "ticket %s", ticketInfo.Key)
	}
	if ticket.State != pty.StateUninitialized {
		return errors.Wrapf(dapp.ErrAccountAlreadyInitialized, "ticket %s", ticketInfo.Key)
	}
	if lottery.State != pty.StateOpen {
		return errors.Wrapf(pty.ErrLotteryStatus, "lottery %s is %s", lotteryInfo.Key, pty.StateName(lottery.State))
	}
	clock, err := sysvar.ClockFromAccount(clockInfo)
	if err != nil {
		return errors.Wrap(err, "clock")
	}
	if lottery.IsExpired(clock.Slot) {
		return errors.Wrapf(pty.ErrLotteryExpired, "slot %d deadline %d", clock.Slot, lottery.Deadline)
	}
	if lottery.IsFull() {
		return errors.Wrapf(pty.ErrPoolSoldOut, "total %d cap %d", lottery.TotalContributed, lottery.ContributionCap)
	}
	start, carry := bits.Add64(lottery.TotalContributed, 1, 0)
	if carry != 0 {
		return errors.Wrap(dapp.ErrArithmeticOverflow, "range start")
	}
	end, carry := bits.Add64(lottery.TotalContributed, buy.Amount, 0)
	if carry != 0 {
		return errors.Wrap(dapp.ErrArithmeticOverflow, "range end")
	}
	if end > lottery.ContributionCap {
		return errors.Wrapf(pty.ErrPoolSoldOut, "total %d + %d exceeds cap %d", lottery.TotalContributed, buy.Amount, lottery.ContributionCap)
	}
	if escrow.Key != lottery.EscrowAddress {
		return errors.Wrapf(dapp.ErrInvalidAccountData, "escrow %s want %s", escrow.Key, lottery.EscrowAddress)
	}
	if err := action.ctx.Invoke(token.Transfer(source.Key, escrow.Key, contributor.Key, buy.Amount)); err != nil {
		return errors.Wrap(err, "transfer contribution")
	}

	lottery.TotalContributed = end
	ticket = &pty.Ticket{
		State:      pty.StateTicket,
		LotteryRef: lotteryInfo.Key,
		Owner:      contributor.Key,
		RangeStart: start,
		RangeEnd:   end,
	}
	if err := ticket.Pack(ticketInfo.Data); err != nil {
		return err
	}
	if err := lottery.Pack(lotteryInfo.Data); err != nil {
		return err
	}
	action.ctx.Log("ticket", "ticket", ticketInfo.Key, "start", start, "end", end)
	return nil
}

// LotteryDraw 满额或者过期之后开奖, 还不能开奖时什么也不做
func (action *Action) LotteryDraw(draw pty.Draw) error {
	infos, err := action.next(3)
	if err != nil {
		return err
	}
	lotteryInfo, authority, clockInfo := infos[0], infos[1], infos[2]
	if err := checkWritable(lotteryInfo); err != nil {
		return err
	}
	if err := checkProgramOwned(lotteryInfo); err != nil {
		return err
	}
	lottery, err := pty.UnpackLottery(lotteryInfo.Data)
	if err != nil {
		return errors.Wrapf(err, "lottery %s", lotteryInfo.Key)
	}
	if err := checkAuthority(lottery, authority); err != nil {
		return err
	}
	if lottery.State != pty.StateOpen {
		return errors.Wrapf(pty.ErrLotteryStatus, "lottery %s is %s", lotteryInfo.Key, pty.StateName(lottery.State))
	}
	clock, err := sysvar.ClockFromAccount(clockInfo)
	if err != nil {
		return errors.Wrap(err, "clock")
	}
	if !lottery.DrawEligible(clock.Slot) {
		action.ctx.Log("draw not eligible yet", "slot", clock.Slot, "deadline", lottery.Deadline,
			"total", lottery.TotalContributed, "cap", lottery.ContributionCap)
		return nil
	}
	if lottery.TotalContributed == 0 {
		return errors.Wrapf(pty.ErrLotteryEmpty, "lottery %s", lotteryInfo.Key)
	}
	if action.iter.Remaining() == 0 {
		return errors.Wrap(pty.ErrRandomnessUnavailable, "slot hashes account missing")
	}
	hashesInfo, err := action.iter.Next()
	if err != nil {
		return err
	}
	hashes, err := sysvar.SlotHashesFromAccount(hashesInfo)
	if err != nil {
		return errors.Wrap(err, "slot hashes")
	}
	if len(hashes) == 0 {
		return errors.Wrap(pty.ErrRandomnessUnavailable, "no slot hash yet")
	}

	entropy := drawEntropy(lotteryInfo.Key, hashes[0].Hash, clock.Slot)
	lottery.DrawResult = pty.WinningNumber(entropy, lottery.TotalContributed)
	lottery.State = pty.StateDrawn
	if err := lottery.Pack(lotteryInfo.Data); err != nil {
		return err
	}
	llog.Debug("LotteryDraw", "lottery", lotteryInfo.Key, "slot", clock.Slot, "result", lottery.DrawResult)
	action.ctx.Log("lottery drawn", "result", lottery.DrawResult, "total", lottery.TotalContributed, "hashSlot", hashes[0].Slot)
	return nil
}

// drawEntropy 前 8 字节 (小端) of sha256(lottery || 最新 slot 哈希 || 当前 slot)
func drawEntropy(lottery types.Pubkey, slotHash [32]byte, slot uint64) uint64 {
	var s [8]byte
	binary.LittleEndian.PutUint64(s[:], slot)
	h := common.Sha256Multi(lottery[:], slotHash[:], s[:])
	return binary.LittleEndian.Uint64(h[:8])
}

// LotterySettle 给中奖 ticket 的 owner 派奖, 手续费转给手续费账户, 关闭奖池
func (action *Action) LotterySettle(settle pty.Settle) error {
	infos, err := action.next(13)
	if err != nil {
		return err
	}
	lotteryInfo, authority, escrow, feeEscrow, winnerToken := infos[0], infos[1], infos[2], infos[3], infos[4]
	ticketInfo, escrowOwner, mint, tokenProgram := infos[5], infos[6], infos[7], infos[8]
	systemProgram, ataProgram, winnerWallet := infos[9], infos[11], infos[12]

	if err := checkWritable(lotteryInfo, authority, escrow, feeEscrow, winnerToken); err != nil {
		return err
	}
	for _, p := range []struct {
		info *dapp.AccountInfo
		id   types.Pubkey
	}{{ataProgram, ata.ProgramID}, {tokenProgram, token.ProgramID}, {systemProgram, system.ProgramID}} {
		if err := checkProgramID(p.info, p.id); err != nil {
			return err
		}
	}
	if err := checkProgramOwned(lotteryInfo, ticketInfo); err != nil {
		return err
	}
	lottery, err := pty.UnpackLottery(lotteryInfo.Data)
	if err != nil {
		return errors.Wrapf(err, "lottery %s", lotteryInfo.Key)
	}
	owner, err := EscrowOwner(lotteryInfo.Key)
	if err != nil || owner != escrowOwner.Key {
		return errors.Wrapf(dapp.ErrInvalidAccountData, "escrow owner %s", escrowOwner.Key)
	}
	if err := checkAuthority(lottery, authority); err != nil {
		return err
	}
	if escrow.Key != lottery.EscrowAddress {
		return errors.Wrapf(dapp.ErrInvalidAccountData, "escrow %s want %s", escrow.Key, lottery.EscrowAddress)
	}
	if feeEscrow.Key != lottery.FeeAddress {
		return errors.Wrapf(dapp.ErrInvalidAccountData, "fee escrow %s want %s", feeEscrow.Key, lottery.FeeAddress)
	}
	if mint.Key != lottery.AssetType {
		return errors.Wrapf(dapp.ErrInvalidAccountData, "mint %s want %s", mint.Key, lottery.AssetType)
	}
	if lottery.State != pty.StateDrawn {
		return errors.Wrapf(pty.ErrLotteryNotDrawn, "lottery %s is %s", lotteryInfo.Key, pty.StateName(lottery.State))
	}
	ticket, err := pty.UnpackTicket(ticketInfo.Data)
	if err != nil {
		return errors.Wrapf(err, "ticket %s", ticketInfo.Key)
	}
	if ticket.LotteryRef != lotteryInfo.Key {
		return errors.Wrapf(dapp.ErrInvalidAccountData, "ticket %s belongs to %s", ticketInfo.Key, ticket.LotteryRef)
	}
	if !ticket.Contains(lottery.DrawResult) {
		return errors.Wrapf(pty.ErrWrongWinner, "ticket [%d, %d] result %d", ticket.RangeStart, ticket.RangeEnd, lottery.DrawResult)
	}
	if winnerWallet.Key != ticket.Owner {
		return errors.Wrapf(pty.ErrWrongWinner, "winner %s ticket owner %s", winnerWallet.Key, ticket.Owner)
	}

	// 中奖者还没有资产账户时代为创建关联账户
	if winnerToken.Owner != token.ProgramID {
		if want := ata.Address(ticket.Owner, mint.Key); winnerToken.Key != want {
			return errors.Wrapf(pty.ErrWrongWinner, "winner token account %s want %s", winnerToken.Key, want)
		}
		if err := action.ctx.Invoke(ata.Create(authority.Key, winnerWallet.Key, mint.Key)); err != nil {
			return errors.Wrap(err, "create winner token account")
		}
	}
	winnerAcc, err := loadTokenAccount(winnerToken)
	if err != nil {
		return err
	}
	if winnerAcc.Owner != ticket.Owner {
		return errors.Wrapf(pty.ErrWrongWinner, "token account %s owner %s", winnerToken.Key, winnerAcc.Owner)
	}
	escrowAcc, err := loadTokenAccount(escrow)
	if err != nil {
		return err
	}

	fee, prize := pty.SplitFee(escrowAcc.Amount)
	seeds := calcEscrowSeeds(lotteryInfo.Key)
	if fee > 0 {
		if err := action.ctx.InvokeSigned(token.Transfer(escrow.Key, feeEscrow.Key, owner, fee), seeds); err != nil {
			return errors.Wrap(err, "transfer fee")
		}
	}
	if prize > 0 {
		if err := action.ctx.InvokeSigned(token.Transfer(escrow.Key, winnerToken.Key, owner, prize), seeds); err != nil {
			return errors.Wrap(err, "transfer prize")
		}
	}
	if err := action.ctx.InvokeSigned(token.CloseAccount(escrow.Key, authority.Key, owner), seeds); err != nil {
		return errors.Wrap(err, "close escrow")
	}

	lottery.State = pty.StateSettled
	if err := lottery.Pack(lotteryInfo.Data); err != nil {
		return err
	}
	llog.Debug("LotterySettle", "lottery", lotteryInfo.Key, "winner", ticket.Owner, "prize", prize, "fee", fee)
	action.ctx.Log("lottery settled", "winner", ticket.Owner, "prize", prize, "fee", fee)
	return nil
}

// LotteryCancel 过期时一份都没有卖出的 lottery 不能开奖, 由 authority 关闭奖池取回租金.
// 直接转进奖池的资产归手续费账户
func (action *Action) LotteryCancel(cancel pty.Cancel) error {
	infos, err := action.next(7)
	if err != nil {
		return err
	}
	lotteryInfo, authority, escrow, feeEscrow := infos[0], infos[1], infos[2], infos[3]
	escrowOwner, tokenProgram, clockInfo := infos[4], infos[5], infos[6]

	if err := checkWritable(lotteryInfo, authority, escrow, feeEscrow); err != nil {
		return err
	}
	if err := checkProgramID(tokenProgram, token.ProgramID); err != nil {
		return err
	}
	if err := checkProgramOwned(lotteryInfo); err != nil {
		return err
	}
	lottery, err := pty.UnpackLottery(lotteryInfo.Data)
	if err != nil {
		return errors.Wrapf(err, "lottery %s", lotteryInfo.Key)
	}
	if err := checkAuthority(lottery, authority); err != nil {
		return err
	}
	owner, err := EscrowOwner(lotteryInfo.Key)
	if err != nil || owner != escrowOwner.Key {
		return errors.Wrapf(dapp.ErrInvalidAccountData, "escrow owner %s", escrowOwner.Key)
	}
	if escrow.Key != lottery.EscrowAddress {
		return errors.Wrapf(dapp.ErrInvalidAccountData, "escrow %s want %s", escrow.Key, lottery.EscrowAddress)
	}
	if feeEscrow.Key != lottery.FeeAddress {
		return errors.Wrapf(dapp.ErrInvalidAccountData, "fee escrow %s want %s", feeEscrow.Key, lottery.FeeAddress)
	}
	if lottery.State != pty.StateOpen || lottery.TotalContributed != 0 {
		return errors.Wrapf(pty.ErrLotteryStatus, "lottery %s is %s total %d",
			lotteryInfo.Key, pty.StateName(lottery.State), lottery.TotalContributed)
	}
	clock, err := sysvar.ClockFromAccount(clockInfo)
	if err != nil {
		return errors.Wrap(err, "clock")
	}
	if !lottery.IsExpired(clock.Slot) {
		return errors.Wrapf(pty.ErrLotteryStatus, "slot %d deadline %d", clock.Slot, lottery.Deadline)
	}
	escrowAcc, err := loadTokenAccount(escrow)
	if err != nil {
		return err
	}

	seeds := calcEscrowSeeds(lotteryInfo.Key)
	if escrowAcc.Amount > 0 {
		if err := action.ctx.InvokeSigned(token.Transfer(escrow.Key, feeEscrow.Key, owner, escrowAcc.Amount), seeds); err != nil {
			return errors.Wrap(err, "sweep escrow")
		}
	}
	refund := escrow.Lamports
	if err := action.ctx.InvokeSigned(token.CloseAccount(escrow.Key, authority.Key, owner), seeds); err != nil {
		return errors.Wrap(err, "close escrow")
	}

	lottery.State = pty.StateSettled
	if err := lottery.Pack(lotteryInfo.Data); err != nil {
		return err
	}
	llog.Debug("LotteryCancel", "lottery", lotteryInfo.Key, "slot", clock.Slot, "swept", escrowAcc.Amount)
	action.ctx.Log("lottery cancelled", "refund", refund, "swept", escrowAcc.Amount)
	return nil
}

// LotteryRelease 已派奖的 lottery 的 ticket 可以关闭, 租金退还给 ticket owner
func (action *Action) LotteryRelease(release pty.Release) error {
	infos, err := action.next(3)
	if err != nil {
		return err
	}
	lotteryInfo, ticketInfo, ownerInfo := infos[0], infos[1], infos[2]
	if err := checkWritable(ticketInfo, ownerInfo); err != nil {
		return err
	}
	if lotteryInfo.Owner != pty.ProgramID {
		return errors.Wrapf(pty.ErrLotteryStatus, "lottery %s owner %s", lotteryInfo.Key, lotteryInfo.Owner)
	}
	lottery, err := pty.UnpackLottery(lotteryInfo.Data)
	if err != nil {
		return errors.Wrapf(pty.ErrLotteryStatus, "lottery %s: %v", lotteryInfo.Key, err)
	}
	if lottery.State != pty.StateSettled {
		return errors.Wrapf(pty.ErrLotteryStatus, "lottery %s is %s", lotteryInfo.Key, pty.StateName(lottery.State))
	}
	if err := checkProgramOwned(ticketInfo); err != nil {
		return err
	}
	ticket, err := pty.UnpackTicket(ticketInfo.Data)
	if err != nil {
		return errors.Wrapf(err, "ticket %s", ticketInfo.Key)
	}
	if ticket.LotteryRef != lotteryInfo.Key {
		return errors.Wrapf(dapp.ErrInvalidAccountData, "ticket %s belongs to %s", ticketInfo.Key, ticket.LotteryRef)
	}
	if ownerInfo.Key != ticket.Owner {
		return errors.Wrapf(dapp.ErrInvalidAccountData, "owner %s want %s", ownerInfo.Key, ticket.Owner)
	}
	lamports, carry := bits.Add64(ownerInfo.Lamports, ticketInfo.Lamports, 0)
	if carry != 0 {
		return dapp.ErrArithmeticOverflow
	}
	refund := ticketInfo.Lamports
	ownerInfo.Lamports = lamports
	ticketInfo.Lamports = 0
	for i := range ticketInfo.Data {
		ticketInfo.Data[i] = 0
	}
	action.ctx.Log("ticket released", "ticket", ticketInfo.Key, "owner", ownerInfo.Key, "lamports", refund)
	return nil
}
