// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package client

import (
	"github.com/33cn/lottery/common/address"
	"github.com/33cn/lottery/common/crypto"
	"github.com/33cn/lottery/plugin/dapp/lottery/executor"
	pty "github.com/33cn/lottery/plugin/dapp/lottery/types"
	"github.com/33cn/lottery/system/dapp/ata"
	"github.com/33cn/lottery/system/dapp/sysvar"
	"github.com/33cn/lottery/system/dapp/system"
	"github.com/33cn/lottery/system/dapp/token"
	"github.com/33cn/lottery/types"
	"github.com/pkg/errors"
)

// maxKeyTries 随机地址派生托管地址失败的概率约为一半, 32 次足够
const maxKeyTries = 32

// InitLottery 生成新的 lottery 地址并构造 Initialize 指令.
// 返回的私钥需要和 authority 一起签名
func InitLottery(authority, mint types.Pubkey, cap, duration uint64) (*crypto.PrivKey, *types.Instruction, error) {
	for i := 0; i < maxKeyTries; i++ {
		key, err := crypto.GenKey()
		if err != nil {
			return nil, nil, err
		}
		ix, err := Initialize(key.Pubkey(), authority, mint, cap, duration)
		if errors.Cause(err) == address.ErrInvalidSeeds {
			clog.Debug("InitLottery: escrow owner on curve, retry", "lottery", key.Pubkey())
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		return key, ix, nil
	}
	return nil, nil, errors.Wrapf(address.ErrInvalidSeeds, "no usable lottery key after %d tries", maxKeyTries)
}

// Initialize 指定 lottery 地址的 Initialize 指令
func Initialize(lottery, authority, mint types.Pubkey, cap, duration uint64) (*types.Instruction, error) {
	owner, err := executor.EscrowOwner(lottery)
	if err != nil {
		return nil, err
	}
	return &types.Instruction{
		ProgramID: pty.ProgramID,
		Accounts: []types.AccountMeta{
			types.NewAccountMeta(lottery, true),
			types.NewAccountMeta(authority, true),
			types.NewReadonlyAccountMeta(pty.FeeCollector, false),
			types.NewReadonlyAccountMeta(owner, false),
			types.NewAccountMeta(ata.Address(owner, mint), false),
			types.NewAccountMeta(ata.Address(pty.FeeCollector, mint), false),
			types.NewReadonlyAccountMeta(ata.ProgramID, false),
			types.NewReadonlyAccountMeta(mint, false),
			types.NewReadonlyAccountMeta(token.ProgramID, false),
			types.NewReadonlyAccountMeta(system.ProgramID, false),
			types.NewReadonlyAccountMeta(sysvar.ClockID, false),
			types.NewReadonlyAccountMeta(sysvar.RentID, false),
		},
		Data: pty.Initialize{Cap: cap, Duration: duration}.Pack(),
	}, nil
}

// Buy 购买 amount 份, ticket 是新地址且需要签名, source 是 contributor 的资产账户
func Buy(lottery types.Pubkey, l *pty.Lottery, ticket, contributor, source types.Pubkey, amount uint64) *types.Instruction {
	return &types.Instruction{
		ProgramID: pty.ProgramID,
		Accounts: []types.AccountMeta{
			types.NewAccountMeta(lottery, false),
			types.NewAccountMeta(ticket, true),
			types.NewAccountMeta(contributor, true),
			types.NewAccountMeta(l.EscrowAddress, false),
			types.NewAccountMeta(source, false),
			types.NewReadonlyAccountMeta(token.ProgramID, false),
			types.NewReadonlyAccountMeta(sysvar.ClockID, false),
			types.NewReadonlyAccountMeta(system.ProgramID, false),
			types.NewReadonlyAccountMeta(sysvar.RentID, false),
		},
		Data: pty.Contribute{Amount: amount}.Pack(),
	}
}

// Draw 开奖, 带上 slot 哈希作为随机源
func Draw(lottery, authority types.Pubkey) *types.Instruction {
	return &types.Instruction{
		ProgramID: pty.ProgramID,
		Accounts: []types.AccountMeta{
			types.NewAccountMeta(lottery, false),
			types.NewReadonlyAccountMeta(authority, true),
			types.NewReadonlyAccountMeta(sysvar.ClockID, false),
			types.NewReadonlyAccountMeta(sysvar.SlotHashesID, false),
		},
		Data: pty.Draw{}.Pack(),
	}
}

// Settle 派奖给 winning ticket 的 owner
func Settle(lottery types.Pubkey, l *pty.Lottery, authority types.Pubkey, winning *pty.TicketInfo) (*types.Instruction, error) {
	owner, err := executor.EscrowOwner(lottery)
	if err != nil {
		return nil, err
	}
	return &types.Instruction{
		ProgramID: pty.ProgramID,
		Accounts: []types.AccountMeta{
			types.NewAccountMeta(lottery, false),
			types.NewAccountMeta(authority, true),
			types.NewAccountMeta(l.EscrowAddress, false),
			types.NewAccountMeta(l.FeeAddress, false),
			types.NewAccountMeta(ata.Address(winning.Owner, l.AssetType), false),
			types.NewReadonlyAccountMeta(winning.Address, false),
			types.NewReadonlyAccountMeta(owner, false),
			types.NewReadonlyAccountMeta(l.AssetType, false),
			types.NewReadonlyAccountMeta(token.ProgramID, false),
			types.NewReadonlyAccountMeta(system.ProgramID, false),
			types.NewReadonlyAccountMeta(sysvar.RentID, false),
			types.NewReadonlyAccountMeta(ata.ProgramID, false),
			types.NewReadonlyAccountMeta(winning.Owner, false),
		},
		Data: pty.Settle{}.Pack(),
	}, nil
}

// Withdraw 查找中奖 ticket 并构造 Settle 指令
func Withdraw(r AccountReader, lottery, authority types.Pubkey) (*types.Instruction, error) {
	l, err := GetLottery(r, lottery)
	if err != nil {
		return nil, err
	}
	if l.State != pty.StateDrawn {
		return nil, errors.Wrapf(pty.ErrLotteryNotDrawn, "lottery %s is %s", lottery, pty.StateName(l.State))
	}
	winning, err := FindWinningTicket(r, lottery, l)
	if err != nil {
		return nil, err
	}
	return Settle(lottery, l, authority, winning)
}

// Close 回收 ticket, 租金退给 owner
func Close(lottery, ticket, owner types.Pubkey) *types.Instruction {
	return &types.Instruction{
		ProgramID: pty.ProgramID,
		Accounts: []types.AccountMeta{
			types.NewReadonlyAccountMeta(lottery, false),
			types.NewAccountMeta(ticket, false),
			types.NewAccountMeta(owner, false),
		},
		Data: pty.Release{}.Pack(),
	}
}

// Cancel 关闭过期且没有人购买的 lottery, 奖池租金退给 authority
func Cancel(lottery types.Pubkey, l *pty.Lottery, authority types.Pubkey) (*types.Instruction, error) {
	owner, err := executor.EscrowOwner(lottery)
	if err != nil {
		return nil, err
	}
	return &types.Instruction{
		ProgramID: pty.ProgramID,
		Accounts: []types.AccountMeta{
			types.NewAccountMeta(lottery, false),
			types.NewAccountMeta(authority, true),
			types.NewAccountMeta(l.EscrowAddress, false),
			types.NewAccountMeta(l.FeeAddress, false),
			types.NewReadonlyAccountMeta(owner, false),
			types.NewReadonlyAccountMeta(token.ProgramID, false),
			types.NewReadonlyAccountMeta(sysvar.ClockID, false),
		},
		Data: pty.Cancel{}.Pack(),
	}, nil
}
