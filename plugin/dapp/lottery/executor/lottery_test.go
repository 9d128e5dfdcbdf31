// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor_test

import (
	"strings"
	"testing"

	"github.com/33cn/lottery/common/crypto"
	"github.com/33cn/lottery/plugin/dapp/lottery/client"
	"github.com/33cn/lottery/plugin/dapp/lottery/executor"
	pty "github.com/33cn/lottery/plugin/dapp/lottery/types"
	"github.com/33cn/lottery/system/dapp"
	"github.com/33cn/lottery/system/dapp/ata"
	"github.com/33cn/lottery/system/dapp/system"
	"github.com/33cn/lottery/system/dapp/token"
	"github.com/33cn/lottery/types"
	"github.com/33cn/lottery/util/testnode"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type player struct {
	key    *crypto.PrivKey
	source types.Pubkey
}

type LotterySuite struct {
	suite.Suite
	mock *testnode.LedgerMock
	auth *crypto.PrivKey
	mint types.Pubkey
}

func TestLotterySuite(t *testing.T) {
	suite.Run(t, new(LotterySuite))
}

func (s *LotterySuite) SetupTest() {
	s.mock = testnode.New()
	s.auth = s.mock.NewFundedKey(10 * types.LamportsPerSol)
	mint, err := s.mock.CreateMint(s.auth, s.auth.Pubkey(), 0)
	s.Require().NoError(err)
	s.mint = mint
}

func (s *LotterySuite) TearDownTest() {
	s.mock.Close()
}

// newPlayer 有原生币以及 amount 份资产的参与者
func (s *LotterySuite) newPlayer(amount uint64) *player {
	key := s.mock.NewFundedKey(types.LamportsPerSol)
	source, err := s.mock.CreateAssociatedAccount(key, key.Pubkey(), s.mint)
	s.Require().NoError(err)
	if amount > 0 {
		s.Require().NoError(s.mock.MintTo(s.auth, s.mint, source, amount))
	}
	return &player{key: key, source: source}
}

func (s *LotterySuite) initLottery(cap, duration uint64) types.Pubkey {
	key, ix, err := client.InitLottery(s.auth.Pubkey(), s.mint, cap, duration)
	s.Require().NoError(err)
	_, err = s.mock.SendTx([]types.Signer{s.auth, key}, ix)
	s.Require().NoError(err)
	return key.Pubkey()
}

func (s *LotterySuite) lottery(key types.Pubkey) *pty.Lottery {
	l, err := client.GetLottery(s.mock.GetExec(), key)
	s.Require().NoError(err)
	return l
}

func (s *LotterySuite) buy(lottery types.Pubkey, p *player, amount uint64) (types.Pubkey, error) {
	ticket := s.mock.NewKey()
	ix := client.Buy(lottery, s.lottery(lottery), ticket.Pubkey(), p.key.Pubkey(), p.source, amount)
	_, err := s.mock.SendTx([]types.Signer{p.key, ticket}, ix)
	return ticket.Pubkey(), err
}

func (s *LotterySuite) draw(lottery types.Pubkey) (*types.Receipt, error) {
	return s.mock.SendTx([]types.Signer{s.auth}, client.Draw(lottery, s.auth.Pubkey()))
}

func (s *LotterySuite) ticket(key types.Pubkey) *pty.Ticket {
	acc, err := s.mock.GetExec().GetAccount(key)
	s.Require().NoError(err)
	t, err := pty.UnpackTicket(acc.Data)
	s.Require().NoError(err)
	return t
}

func (s *LotterySuite) assertCause(want error, err error) {
	s.Require().Error(err)
	s.Equal(want, errors.Cause(err), err.Error())
}

func (s *LotterySuite) TestInitialize() {
	exec := s.mock.GetExec()
	before := s.mock.Balance(s.auth.Pubkey())
	key := s.initLottery(100, 50)

	l := s.lottery(key)
	owner, err := executor.EscrowOwner(key)
	s.Require().NoError(err)
	s.Equal(pty.StateOpen, l.State)
	s.Equal(s.auth.Pubkey(), l.Authority)
	s.Equal(ata.Address(owner, s.mint), l.EscrowAddress)
	s.Equal(ata.Address(pty.FeeCollector, s.mint), l.FeeAddress)
	s.Equal(uint64(100), l.ContributionCap)
	s.Equal(uint64(50), l.Deadline)
	s.Equal(uint64(0), l.TotalContributed)
	s.Equal(s.mint, l.AssetType)

	acc, err := exec.GetAccount(key)
	s.Require().NoError(err)
	s.Equal(pty.ProgramID, acc.Owner)
	s.Len(acc.Data, pty.LotteryLen)
	s.Equal(exec.MinimumBalance(pty.LotteryLen), acc.Lamports)

	// 两个托管账户都由 authority 出资创建
	rent := exec.MinimumBalance(pty.LotteryLen) + 2*exec.MinimumBalance(token.AccountLen)
	s.Equal(before-rent-exec.TxFee(), s.mock.Balance(s.auth.Pubkey()))
	s.Equal(uint64(0), s.mock.TokenBalance(l.EscrowAddress))

	// 第二期复用手续费账户
	second := s.initLottery(10, 5)
	s.Equal(l.FeeAddress, s.lottery(second).FeeAddress)
	s.NotEqual(l.EscrowAddress, s.lottery(second).EscrowAddress)
}

// 有人提前往手续费账户地址转了原生币, 创建仍然成功
func (s *LotterySuite) TestInitializePrefundedFeeEscrow() {
	exec := s.mock.GetExec()
	feeATA := ata.Address(pty.FeeCollector, s.mint)
	griefer := s.mock.NewFundedKey(types.LamportsPerSol)
	_, err := s.mock.SendTx([]types.Signer{griefer}, system.Transfer(griefer.Pubkey(), feeATA, 1))
	s.Require().NoError(err)

	// 奖池地址也预先有余额
	key, ix, err := client.InitLottery(s.auth.Pubkey(), s.mint, 100, 50)
	s.Require().NoError(err)
	escrow := ix.Accounts[4].Pubkey
	_, err = s.mock.SendTx([]types.Signer{griefer}, system.Transfer(griefer.Pubkey(), escrow, 2))
	s.Require().NoError(err)

	before := s.mock.Balance(s.auth.Pubkey())
	_, err = s.mock.SendTx([]types.Signer{s.auth, key}, ix)
	s.Require().NoError(err)

	l := s.lottery(key.Pubkey())
	s.Equal(pty.StateOpen, l.State)
	s.Equal(feeATA, l.FeeAddress)
	s.Equal(escrow, l.EscrowAddress)
	minimum := exec.MinimumBalance(token.AccountLen)
	for _, addr := range []types.Pubkey{feeATA, escrow} {
		acc, err := exec.GetAccount(addr)
		s.Require().NoError(err)
		s.Equal(token.ProgramID, acc.Owner)
		s.Equal(minimum, acc.Lamports)
	}
	// authority 只补足差额
	rent := exec.MinimumBalance(pty.LotteryLen) + (minimum - 1) + (minimum - 2)
	s.Equal(before-rent-exec.TxFee(), s.mock.Balance(s.auth.Pubkey()))

	alice := s.newPlayer(3)
	_, err = s.buy(key.Pubkey(), alice, 3)
	s.Require().NoError(err)
	s.Equal(uint64(3), s.mock.TokenBalance(escrow))
}

func (s *LotterySuite) TestInitializeErrors() {
	key, ix, err := client.InitLottery(s.auth.Pubkey(), s.mint, 100, 10)
	s.Require().NoError(err)
	_, err = s.mock.SendTx([]types.Signer{s.auth, key}, ix)
	s.Require().NoError(err)

	// 重复初始化
	_, err = s.mock.SendTx([]types.Signer{s.auth, key}, ix)
	s.assertCause(dapp.ErrAccountAlreadyInitialized, err)

	// 上限为 0
	zero, ix, err := client.InitLottery(s.auth.Pubkey(), s.mint, 0, 10)
	s.Require().NoError(err)
	_, err = s.mock.SendTx([]types.Signer{s.auth, zero}, ix)
	s.assertCause(dapp.ErrInvalidArgument, err)

	// 手续费接收者不对
	other, ix, err := client.InitLottery(s.auth.Pubkey(), s.mint, 100, 10)
	s.Require().NoError(err)
	ix.Accounts[2].Pubkey = s.mock.NewKey().Pubkey()
	_, err = s.mock.SendTx([]types.Signer{s.auth, other}, ix)
	s.assertCause(dapp.ErrInvalidAccountData, err)

	// 托管地址不是由 lottery 派生的
	ix, err = client.Initialize(other.Pubkey(), s.auth.Pubkey(), s.mint, 100, 10)
	s.Require().NoError(err)
	ix.Accounts[3].Pubkey = s.mock.NewKey().Pubkey()
	_, err = s.mock.SendTx([]types.Signer{s.auth, other}, ix)
	s.assertCause(dapp.ErrInvalidAccountData, err)

	// authority 没有签名
	third, ix, err := client.InitLottery(s.auth.Pubkey(), s.mint, 100, 10)
	s.Require().NoError(err)
	ix.Accounts[1].IsSigner = false
	payer := s.mock.NewFundedKey(types.LamportsPerSol)
	_, err = s.mock.SendTx([]types.Signer{payer, third}, ix)
	s.assertCause(dapp.ErrMissingRequiredSignature, err)

	// 缺少账户
	fourth, ix, err := client.InitLottery(s.auth.Pubkey(), s.mint, 100, 10)
	s.Require().NoError(err)
	ix.Accounts = ix.Accounts[:11]
	_, err = s.mock.SendTx([]types.Signer{s.auth, fourth}, ix)
	s.assertCause(dapp.ErrNotEnoughAccountKeys, err)
}

func (s *LotterySuite) TestInitializeNotRentExempt() {
	key, ix, err := client.InitLottery(s.auth.Pubkey(), s.mint, 100, 10)
	s.Require().NoError(err)
	// 预先创建余额不足的 lottery 账户
	create := system.CreateAccount(s.auth.Pubkey(), key.Pubkey(), 1000, pty.LotteryLen, pty.ProgramID)
	_, err = s.mock.SendTx([]types.Signer{s.auth, key}, create)
	s.Require().NoError(err)

	_, err = s.mock.SendTx([]types.Signer{s.auth, key}, ix)
	s.assertCause(pty.ErrNotRentExempt, err)
	s.True(pty.IsRetryable(err))

	acc, err := s.mock.GetExec().GetAccount(key.Pubkey())
	s.Require().NoError(err)
	s.Equal(uint64(1000), acc.Lamports)
	s.Equal(make([]byte, pty.LotteryLen), acc.Data)
}

func (s *LotterySuite) TestContributeRanges() {
	key := s.initLottery(100, 1000)
	alice, bob, carol := s.newPlayer(30), s.newPlayer(50), s.newPlayer(20)

	t1, err := s.buy(key, alice, 30)
	s.Require().NoError(err)
	t2, err := s.buy(key, bob, 50)
	s.Require().NoError(err)
	t3, err := s.buy(key, carol, 20)
	s.Require().NoError(err)

	// 区间连续, 不重叠, 覆盖 [1, total]
	want := []struct {
		key        types.Pubkey
		owner      types.Pubkey
		start, end uint64
	}{
		{t1, alice.key.Pubkey(), 1, 30},
		{t2, bob.key.Pubkey(), 31, 80},
		{t3, carol.key.Pubkey(), 81, 100},
	}
	for _, w := range want {
		tk := s.ticket(w.key)
		s.Equal(pty.StateTicket, tk.State)
		s.Equal(key, tk.LotteryRef)
		s.Equal(w.owner, tk.Owner)
		s.Equal(w.start, tk.RangeStart)
		s.Equal(w.end, tk.RangeEnd)
	}
	l := s.lottery(key)
	s.Equal(uint64(100), l.TotalContributed)
	s.True(l.IsFull())
	s.Equal(uint64(100), s.mock.TokenBalance(l.EscrowAddress))
	s.Equal(uint64(0), s.mock.TokenBalance(alice.source))

	tickets, err := client.FindTickets(s.mock.GetExec(), key)
	s.Require().NoError(err)
	s.Require().Len(tickets, 3)
	for i, tk := range tickets {
		s.Equal(want[i].key, tk.Address)
		s.Equal(want[i].end-want[i].start+1, tk.Amount)
	}
	// ticket 账户的租金由参与者支付
	s.Equal(types.LamportsPerSol-2*s.mock.GetExec().TxFee()-s.mock.GetExec().MinimumBalance(token.AccountLen)-
		s.mock.GetExec().MinimumBalance(pty.TicketLen), s.mock.Balance(alice.key.Pubkey()))

	// 已满
	dave := s.newPlayer(5)
	_, err = s.buy(key, dave, 1)
	s.assertCause(pty.ErrPoolSoldOut, err)
}

func (s *LotterySuite) TestContributeErrors() {
	key := s.initLottery(10, 1000)
	alice := s.newPlayer(20)

	_, err := s.buy(key, alice, 0)
	s.assertCause(dapp.ErrInvalidArgument, err)

	// 超过上限
	_, err = s.buy(key, alice, 11)
	s.assertCause(pty.ErrPoolSoldOut, err)

	// 资产不够, ticket 不会被创建
	poor := s.newPlayer(3)
	ticket, err := s.buy(key, poor, 4)
	s.assertCause(token.ErrInsufficientFunds, err)
	_, err = s.mock.GetExec().GetAccount(ticket)
	s.Equal(types.ErrNotFound, err)

	// 同一个 ticket 账户不能购买两次
	tk := s.mock.NewKey()
	ix := client.Buy(key, s.lottery(key), tk.Pubkey(), alice.key.Pubkey(), alice.source, 2)
	_, err = s.mock.SendTx([]types.Signer{alice.key, tk}, ix)
	s.Require().NoError(err)
	ix = client.Buy(key, s.lottery(key), tk.Pubkey(), alice.key.Pubkey(), alice.source, 2)
	_, err = s.mock.SendTx([]types.Signer{alice.key, tk}, ix)
	s.assertCause(dapp.ErrAccountAlreadyInitialized, err)

	// 资金转入的地址必须是这一期的托管账户
	other := s.mock.NewKey()
	ix = client.Buy(key, s.lottery(key), other.Pubkey(), alice.key.Pubkey(), alice.source, 1)
	ix.Accounts[3].Pubkey = alice.source
	_, err = s.mock.SendTx([]types.Signer{alice.key, other}, ix)
	s.assertCause(dapp.ErrInvalidAccountData, err)

	// 只读的 lottery
	bad := s.mock.NewKey()
	ix = client.Buy(key, s.lottery(key), bad.Pubkey(), alice.key.Pubkey(), alice.source, 1)
	ix.Accounts[0].IsWritable = false
	_, err = s.mock.SendTx([]types.Signer{alice.key, bad}, ix)
	s.assertCause(pty.ErrAccountNotWritable, err)

	s.Equal(uint64(2), s.lottery(key).TotalContributed)
}

func (s *LotterySuite) TestFullLifecycle() {
	exec := s.mock.GetExec()
	key := s.initLottery(100, 1000)
	alice, bob := s.newPlayer(30), s.newPlayer(70)
	ta, err := s.buy(key, alice, 30)
	s.Require().NoError(err)
	tb, err := s.buy(key, bob, 70)
	s.Require().NoError(err)

	ended, err := client.GetEndedLotteries(exec, s.auth.Pubkey(), exec.Slot())
	s.Require().NoError(err)
	s.Require().Len(ended, 1)
	s.Equal(key, ended[0].Address)
	s.True(ended[0].DrawEligible)

	// 还没有 slot 哈希
	_, err = s.draw(key)
	s.assertCause(pty.ErrRandomnessUnavailable, err)
	s.True(pty.IsRetryable(err))
	s.mock.AdvanceSlot(1)

	_, err = s.draw(key)
	s.Require().NoError(err)
	l := s.lottery(key)
	s.Equal(pty.StateDrawn, l.State)
	s.True(l.DrawResult >= 1 && l.DrawResult <= 100)

	// 只能开奖一次
	_, err = s.draw(key)
	s.assertCause(pty.ErrLotteryStatus, err)

	withdrawable, err := client.GetWithdrawableLotteries(exec, s.auth.Pubkey(), exec.Slot())
	s.Require().NoError(err)
	s.Require().Len(withdrawable, 1)

	winning, err := client.FindWinningTicket(exec, key, l)
	s.Require().NoError(err)
	winner, loser := alice, bob
	if l.DrawResult > 30 {
		winner, loser = bob, alice
		s.Equal(tb, winning.Address)
	} else {
		s.Equal(ta, winning.Address)
	}

	// 派奖之前不能回收
	_, err = s.mock.SendTx([]types.Signer{s.auth}, client.Close(key, ta, alice.key.Pubkey()))
	s.assertCause(pty.ErrLotteryStatus, err)

	escrowRent := s.mock.Balance(l.EscrowAddress)
	authBefore := s.mock.Balance(s.auth.Pubkey())
	ix, err := client.Withdraw(exec, key, s.auth.Pubkey())
	s.Require().NoError(err)
	_, err = s.mock.SendTx([]types.Signer{s.auth}, ix)
	s.Require().NoError(err)

	s.Equal(uint64(80), s.mock.TokenBalance(winner.source))
	s.Equal(uint64(0), s.mock.TokenBalance(loser.source))
	s.Equal(uint64(20), s.mock.TokenBalance(l.FeeAddress))
	_, err = exec.GetAccount(l.EscrowAddress)
	s.Equal(types.ErrNotFound, err)
	s.Equal(authBefore+escrowRent-exec.TxFee(), s.mock.Balance(s.auth.Pubkey()))
	s.Equal(pty.StateSettled, s.lottery(key).State)

	// 派奖之后不能再次派奖
	_, err = client.Withdraw(exec, key, s.auth.Pubkey())
	s.assertCause(pty.ErrLotteryNotDrawn, err)
	again, err := client.Settle(key, l, s.auth.Pubkey(), winning)
	s.Require().NoError(err)
	_, err = s.mock.SendTx([]types.Signer{s.auth}, again)
	s.assertCause(pty.ErrLotteryNotDrawn, err)

	// 回收 ticket, 租金退给 owner, 不需要 owner 签名
	closable, err := client.FindAllClosableTickets(exec)
	s.Require().NoError(err)
	s.Len(closable, 2)
	mine, err := client.FindClosableTickets(exec, alice.key.Pubkey())
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal(ta, mine[0].Address)

	// owner 不对
	_, err = s.mock.SendTx([]types.Signer{s.auth}, client.Close(key, ta, bob.key.Pubkey()))
	s.assertCause(dapp.ErrInvalidAccountData, err)

	ticketRent := s.mock.Balance(ta)
	aliceBefore := s.mock.Balance(alice.key.Pubkey())
	_, err = s.mock.SendTx([]types.Signer{s.auth}, client.Close(key, ta, alice.key.Pubkey()))
	s.Require().NoError(err)
	s.Equal(aliceBefore+ticketRent, s.mock.Balance(alice.key.Pubkey()))
	_, err = exec.GetAccount(ta)
	s.Equal(types.ErrNotFound, err)

	closable, err = client.FindAllClosableTickets(exec)
	s.Require().NoError(err)
	s.Len(closable, 1)
	s.Equal(tb, closable[0].Address)
}

func (s *LotterySuite) TestExpiredLottery() {
	exec := s.mock.GetExec()
	key := s.initLottery(100, 10)
	alice := s.newPlayer(10)
	ta, err := s.buy(key, alice, 10)
	s.Require().NoError(err)

	// 没满也没过期, 开奖什么也不做
	receipt, err := s.draw(key)
	s.Require().NoError(err)
	s.Contains(strings.Join(receipt.Logs, "\n"), "draw not eligible yet")
	s.Equal(pty.StateOpen, s.lottery(key).State)
	s.Equal(uint64(0), s.lottery(key).DrawResult)
	ended, err := client.GetEndedLotteries(exec, s.auth.Pubkey(), exec.Slot())
	s.Require().NoError(err)
	s.Empty(ended)

	// deadline 那个 slot 还可以购买
	s.mock.AdvanceSlot(10)
	bob := s.newPlayer(5)
	_, err = s.buy(key, bob, 5)
	s.Require().NoError(err)

	s.mock.AdvanceSlot(1)
	_, err = s.buy(key, bob, 1)
	s.assertCause(pty.ErrLotteryExpired, err)

	ended, err = client.GetEndedLotteries(exec, s.auth.Pubkey(), exec.Slot())
	s.Require().NoError(err)
	s.Require().Len(ended, 1)

	_, err = s.draw(key)
	s.Require().NoError(err)
	l := s.lottery(key)
	s.Equal(pty.StateDrawn, l.State)
	s.True(l.DrawResult >= 1 && l.DrawResult <= 15)
	winning, err := client.FindWinningTicket(exec, key, l)
	s.Require().NoError(err)
	if l.DrawResult <= 10 {
		s.Equal(ta, winning.Address)
	} else {
		s.Equal(bob.key.Pubkey(), winning.Owner)
	}
}

func (s *LotterySuite) TestDrawErrors() {
	key := s.initLottery(5, 1000)
	alice := s.newPlayer(5)
	_, err := s.buy(key, alice, 5)
	s.Require().NoError(err)
	s.mock.AdvanceSlot(1)

	// 不是 authority
	ix := client.Draw(key, alice.key.Pubkey())
	_, err = s.mock.SendTx([]types.Signer{alice.key}, ix)
	s.assertCause(dapp.ErrMissingRequiredSignature, err)

	// 没有提供 slot 哈希
	ix = client.Draw(key, s.auth.Pubkey())
	ix.Accounts = ix.Accounts[:3]
	_, err = s.mock.SendTx([]types.Signer{s.auth}, ix)
	s.assertCause(pty.ErrRandomnessUnavailable, err)

	// 其他账户冒充 slot 哈希
	ix = client.Draw(key, s.auth.Pubkey())
	ix.Accounts[3].Pubkey = alice.source
	_, err = s.mock.SendTx([]types.Signer{s.auth}, ix)
	s.Error(err)

	s.Equal(pty.StateOpen, s.lottery(key).State)
	_, err = s.draw(key)
	s.Require().NoError(err)
	// 只有一个 ticket, 它一定中奖
	s.Equal(pty.StateDrawn, s.lottery(key).State)
}

func (s *LotterySuite) TestDrawEmpty() {
	key := s.initLottery(100, 0)
	s.mock.AdvanceSlot(1)
	_, err := s.draw(key)
	s.assertCause(pty.ErrLotteryEmpty, err)
	s.False(pty.IsRetryable(err))
}

func (s *LotterySuite) TestCancelEmptyLottery() {
	exec := s.mock.GetExec()
	key := s.initLottery(100, 5)
	l := s.lottery(key)

	// 还没有过期
	ix, err := client.Cancel(key, l, s.auth.Pubkey())
	s.Require().NoError(err)
	_, err = s.mock.SendTx([]types.Signer{s.auth}, ix)
	s.assertCause(pty.ErrLotteryStatus, err)

	s.mock.AdvanceSlot(6)
	_, err = s.draw(key)
	s.assertCause(pty.ErrLotteryEmpty, err)

	// authority 以外的人不能关闭
	payer := s.mock.NewFundedKey(types.LamportsPerSol)
	ix, err = client.Cancel(key, l, payer.Pubkey())
	s.Require().NoError(err)
	_, err = s.mock.SendTx([]types.Signer{payer}, ix)
	s.assertCause(dapp.ErrMissingRequiredSignature, err)

	// 奖池地址不对
	ix, err = client.Cancel(key, l, s.auth.Pubkey())
	s.Require().NoError(err)
	ix.Accounts[2].Pubkey = s.mock.NewKey().Pubkey()
	_, err = s.mock.SendTx([]types.Signer{s.auth}, ix)
	s.assertCause(dapp.ErrInvalidAccountData, err)

	// 直接转进奖池的资产归手续费账户
	s.Require().NoError(s.mock.MintTo(s.auth, s.mint, l.EscrowAddress, 3))
	authBefore := s.mock.Balance(s.auth.Pubkey())
	escrowRent := s.mock.Balance(l.EscrowAddress)
	ix, err = client.Cancel(key, l, s.auth.Pubkey())
	s.Require().NoError(err)
	receipt, err := s.mock.SendTx([]types.Signer{s.auth}, ix)
	s.Require().NoError(err)
	s.Contains(strings.Join(receipt.Logs, "\n"), "lottery cancelled")

	s.Equal(pty.StateSettled, s.lottery(key).State)
	s.Equal(uint64(3), s.mock.TokenBalance(l.FeeAddress))
	_, err = exec.GetAccount(l.EscrowAddress)
	s.Equal(types.ErrNotFound, err)
	s.Equal(authBefore+escrowRent-exec.TxFee(), s.mock.Balance(s.auth.Pubkey()))

	// 已经关闭
	_, err = s.mock.SendTx([]types.Signer{s.auth}, ix)
	s.assertCause(pty.ErrLotteryStatus, err)
	_, err = s.draw(key)
	s.assertCause(pty.ErrLotteryStatus, err)
}

func (s *LotterySuite) TestCancelWithTickets() {
	key := s.initLottery(100, 5)
	alice := s.newPlayer(2)
	_, err := s.buy(key, alice, 2)
	s.Require().NoError(err)
	s.mock.AdvanceSlot(6)

	ix, err := client.Cancel(key, s.lottery(key), s.auth.Pubkey())
	s.Require().NoError(err)
	_, err = s.mock.SendTx([]types.Signer{s.auth}, ix)
	s.assertCause(pty.ErrLotteryStatus, err)
	s.Equal(pty.StateOpen, s.lottery(key).State)
	s.Equal(uint64(2), s.mock.TokenBalance(s.lottery(key).EscrowAddress))
}

func (s *LotterySuite) TestSettleErrors() {
	exec := s.mock.GetExec()
	key := s.initLottery(2, 1000)
	alice, bob := s.newPlayer(1), s.newPlayer(1)
	_, err := s.buy(key, alice, 1)
	s.Require().NoError(err)

	// 还没有开奖
	tickets, err := client.FindTickets(exec, key)
	s.Require().NoError(err)
	ix, err := client.Settle(key, s.lottery(key), s.auth.Pubkey(), tickets[0])
	s.Require().NoError(err)
	_, err = s.mock.SendTx([]types.Signer{s.auth}, ix)
	s.assertCause(pty.ErrLotteryNotDrawn, err)

	_, err = s.buy(key, bob, 1)
	s.Require().NoError(err)
	s.mock.AdvanceSlot(1)
	_, err = s.draw(key)
	s.Require().NoError(err)
	l := s.lottery(key)
	winning, err := client.FindWinningTicket(exec, key, l)
	s.Require().NoError(err)

	tickets, err = client.FindTickets(exec, key)
	s.Require().NoError(err)
	s.Require().Len(tickets, 2)
	var losing *pty.TicketInfo
	for _, tk := range tickets {
		if tk.Address != winning.Address {
			losing = tk
		}
	}
	s.Require().NotNil(losing)

	// 没中奖的 ticket
	ix, err = client.Settle(key, l, s.auth.Pubkey(), losing)
	s.Require().NoError(err)
	_, err = s.mock.SendTx([]types.Signer{s.auth}, ix)
	s.assertCause(pty.ErrWrongWinner, err)

	// 中奖 ticket, 但是奖金发给别人
	ix, err = client.Settle(key, l, s.auth.Pubkey(), winning)
	s.Require().NoError(err)
	ix.Accounts[12].Pubkey = losing.Owner
	_, err = s.mock.SendTx([]types.Signer{s.auth}, ix)
	s.assertCause(pty.ErrWrongWinner, err)

	// authority 以外的人不能派奖
	payer := s.mock.NewFundedKey(types.LamportsPerSol)
	ix, err = client.Settle(key, l, payer.Pubkey(), winning)
	s.Require().NoError(err)
	_, err = s.mock.SendTx([]types.Signer{payer}, ix)
	s.assertCause(dapp.ErrMissingRequiredSignature, err)

	// 手续费账户不对
	ix, err = client.Settle(key, l, s.auth.Pubkey(), winning)
	s.Require().NoError(err)
	ix.Accounts[3].Pubkey = losing.Address
	_, err = s.mock.SendTx([]types.Signer{s.auth}, ix)
	s.assertCause(dapp.ErrInvalidAccountData, err)

	s.Equal(pty.StateDrawn, s.lottery(key).State)
	s.Equal(uint64(2), s.mock.TokenBalance(l.EscrowAddress))

	// 奖池 2: 手续费向下取整为 0, 奖金 2
	ix, err = client.Settle(key, l, s.auth.Pubkey(), winning)
	s.Require().NoError(err)
	_, err = s.mock.SendTx([]types.Signer{s.auth}, ix)
	s.Require().NoError(err)
	s.Equal(uint64(2), s.mock.TokenBalance(ata.Address(winning.Owner, s.mint)))
	s.Equal(uint64(0), s.mock.TokenBalance(l.FeeAddress))
}

// 中奖者的资产来自非关联账户, 派奖时代为创建关联账户
func (s *LotterySuite) TestSettleCreatesWinnerAccount() {
	exec := s.mock.GetExec()
	key := s.initLottery(7, 1000)

	alice := s.mock.NewFundedKey(types.LamportsPerSol)
	source, err := s.mock.CreateTokenAccount(alice, s.mint, alice.Pubkey())
	s.Require().NoError(err)
	s.Require().NoError(s.mock.MintTo(s.auth, s.mint, source, 7))
	_, err = s.buy(key, &player{key: alice, source: source}, 7)
	s.Require().NoError(err)
	s.mock.AdvanceSlot(3)
	_, err = s.draw(key)
	s.Require().NoError(err)

	winnerATA := ata.Address(alice.Pubkey(), s.mint)
	_, err = exec.GetAccount(winnerATA)
	s.Equal(types.ErrNotFound, err)

	authBefore := s.mock.Balance(s.auth.Pubkey())
	l := s.lottery(key)
	escrowRent := s.mock.Balance(l.EscrowAddress)
	ix, err := client.Withdraw(exec, key, s.auth.Pubkey())
	s.Require().NoError(err)
	_, err = s.mock.SendTx([]types.Signer{s.auth}, ix)
	s.Require().NoError(err)

	// 7 * 20 / 100 = 1
	s.Equal(uint64(6), s.mock.TokenBalance(winnerATA))
	s.Equal(uint64(1), s.mock.TokenBalance(l.FeeAddress))
	s.Equal(uint64(0), s.mock.TokenBalance(source))
	s.Equal(authBefore+escrowRent-exec.TxFee()-exec.MinimumBalance(token.AccountLen), s.mock.Balance(s.auth.Pubkey()))
}

// 中奖者的关联账户地址上已经有原生币, 派奖仍然可以创建它
func (s *LotterySuite) TestSettlePrefundedWinnerAccount() {
	exec := s.mock.GetExec()
	key := s.initLottery(5, 1000)

	alice := s.mock.NewFundedKey(types.LamportsPerSol)
	source, err := s.mock.CreateTokenAccount(alice, s.mint, alice.Pubkey())
	s.Require().NoError(err)
	s.Require().NoError(s.mock.MintTo(s.auth, s.mint, source, 5))
	_, err = s.buy(key, &player{key: alice, source: source}, 5)
	s.Require().NoError(err)
	s.mock.AdvanceSlot(1)
	_, err = s.draw(key)
	s.Require().NoError(err)

	winnerATA := ata.Address(alice.Pubkey(), s.mint)
	_, err = s.mock.SendTx([]types.Signer{alice}, system.Transfer(alice.Pubkey(), winnerATA, 1))
	s.Require().NoError(err)

	ix, err := client.Withdraw(exec, key, s.auth.Pubkey())
	s.Require().NoError(err)
	_, err = s.mock.SendTx([]types.Signer{s.auth}, ix)
	s.Require().NoError(err)
	s.Equal(pty.StateSettled, s.lottery(key).State)
	s.Equal(uint64(4), s.mock.TokenBalance(winnerATA))
	s.Equal(exec.MinimumBalance(token.AccountLen), s.mock.Balance(winnerATA))
}
