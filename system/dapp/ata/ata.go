// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ata 关联资产账户程序: 每个 (钱包, mint) 对应一个确定的资产账户地址
package ata

import (
	"github.com/33cn/lottery/common/address"
	"github.com/33cn/lottery/system/dapp"
	"github.com/33cn/lottery/system/dapp/sysvar"
	"github.com/33cn/lottery/system/dapp/system"
	"github.com/33cn/lottery/system/dapp/token"
	"github.com/33cn/lottery/types"
	log "github.com/inconshreveable/log15"
	"github.com/pkg/errors"
)

var alog = log.New("module", "execs.ata")

// ProgramID 关联资产账户程序地址
var ProgramID = types.MustPubkeyFromString("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")

// Name 程序名称
const Name = "ata"

func init() {
	dapp.Register(ProgramID, Name, newATA)
}

func seeds(wallet, mint types.Pubkey) [][]byte {
	return [][]byte{wallet[:], token.ProgramID[:], mint[:]}
}

// Address wallet 持有 mint 资产的关联账户地址
func Address(wallet, mint types.Pubkey) types.Pubkey {
	key, _ := address.FindProgramAddress(seeds(wallet, mint), ProgramID)
	return key
}

// Create payer[s,w], ata[w], wallet, mint, system, token, rent
func Create(payer, wallet, mint types.Pubkey) *types.Instruction {
	return &types.Instruction{
		ProgramID: ProgramID,
		Accounts: []types.AccountMeta{
			types.NewAccountMeta(payer, true),
			types.NewAccountMeta(Address(wallet, mint), false),
			types.NewReadonlyAccountMeta(wallet, false),
			types.NewReadonlyAccountMeta(mint, false),
			types.NewReadonlyAccountMeta(system.ProgramID, false),
			types.NewReadonlyAccountMeta(token.ProgramID, false),
			types.NewReadonlyAccountMeta(sysvar.RentID, false),
		},
	}
}

type ataProgram struct{}

func newATA() dapp.Driver {
	return &ataProgram{}
}

func (p *ataProgram) GetName() string {
	return Name
}

func (p *ataProgram) Process(ctx dapp.Context, programID types.Pubkey, accounts []*dapp.AccountInfo, input []byte) error {
	if programID != ProgramID {
		return dapp.ErrIncorrectProgramID
	}
	if len(input) != 0 {
		return dapp.ErrInvalidInstructionData
	}
	if len(accounts) < 7 {
		return dapp.ErrNotEnoughAccountKeys
	}
	payer, ataInfo, wallet, mint, rentInfo := accounts[0], accounts[1], accounts[2], accounts[3], accounts[6]

	key, bump := address.FindProgramAddress(seeds(wallet.Key, mint.Key), ProgramID)
	if key != ataInfo.Key {
		alog.Error("Create", "want", key, "got", ataInfo.Key)
		return errors.Wrapf(dapp.ErrInvalidArgument, "associated address %s want %s", ataInfo.Key, key)
	}
	if ataInfo.Owner == token.ProgramID {
		return errors.Wrapf(dapp.ErrAccountAlreadyInUse, "associated account %s", ataInfo.Key)
	}
	rent, err := sysvar.RentFromAccount(rentInfo)
	if err != nil {
		return err
	}

	signer := append(seeds(wallet.Key, mint.Key), []byte{bump})
	minimum := rent.MinimumBalance(token.AccountLen)
	if ataInfo.Lamports == 0 {
		create := system.CreateAccount(payer.Key, ataInfo.Key, minimum, token.AccountLen, token.ProgramID)
		if err := ctx.InvokeSigned(create, signer); err != nil {
			return errors.Wrap(err, "create associated account")
		}
	} else if err := allocate(ctx, payer, ataInfo, minimum, signer); err != nil {
		return err
	}
	if err := ctx.Invoke(token.InitializeAccount(ataInfo.Key, mint.Key, wallet.Key)); err != nil {
		return errors.Wrap(err, "initialize associated account")
	}
	ctx.Log("create associated account", "account", ataInfo.Key, "wallet", wallet.Key, "mint", mint.Key)
	return nil
}

// allocate 地址上已经有人转入了余额: 补足租金, 分配数据, 再转给 token 程序
func allocate(ctx dapp.Context, payer, ataInfo *dapp.AccountInfo, minimum uint64, signer [][]byte) error {
	if ataInfo.Owner != system.ProgramID || !ataInfo.DataIsEmpty() {
		return errors.Wrapf(dapp.ErrAccountAlreadyInUse, "associated account %s", ataInfo.Key)
	}
	prefunded := ataInfo.Lamports
	if prefunded < minimum {
		if err := ctx.Invoke(system.Transfer(payer.Key, ataInfo.Key, minimum-prefunded)); err != nil {
			return errors.Wrap(err, "fund associated account")
		}
	}
	if err := ctx.InvokeSigned(system.Allocate(ataInfo.Key, token.AccountLen), signer); err != nil {
		return errors.Wrap(err, "allocate associated account")
	}
	if err := ctx.InvokeSigned(system.Assign(ataInfo.Key, token.ProgramID), signer); err != nil {
		return errors.Wrap(err, "assign associated account")
	}
	alog.Info("allocate", "account", ataInfo.Key, "prefunded", prefunded)
	return nil
}
