// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package token 同质化资产程序: mint, 持有账户, 转账, 增发, 销户
package token

import (
	"github.com/33cn/lottery/system/dapp"
	"github.com/33cn/lottery/system/dapp/sysvar"
	"github.com/33cn/lottery/types"
	log "github.com/inconshreveable/log15"
	"github.com/pkg/errors"
)

var tlog = log.New("module", "execs.token")

// Name 程序名称
const Name = "token"

func init() {
	dapp.Register(ProgramID, Name, newToken)
}

type tokenProgram struct{}

func newToken() dapp.Driver {
	return &tokenProgram{}
}

func (t *tokenProgram) GetName() string {
	return Name
}

func (t *tokenProgram) Process(ctx dapp.Context, programID types.Pubkey, accounts []*dapp.AccountInfo, input []byte) error {
	if programID != ProgramID {
		return dapp.ErrIncorrectProgramID
	}
	if len(input) == 0 {
		return dapp.ErrInvalidInstructionData
	}
	iter := dapp.NewAccountIter(accounts)
	switch input[0] {
	case TyInitializeMint:
		if len(input) != 2+types.PubkeyLen {
			return dapp.ErrInvalidInstructionData
		}
		var authority types.Pubkey
		copy(authority[:], input[2:])
		return initializeMint(ctx, iter, input[1], authority)
	case TyInitializeAccount:
		return initializeAccount(ctx, iter)
	case TyTransfer:
		amount, err := decodeAmount(input)
		if err != nil {
			return err
		}
		return transfer(ctx, iter, amount)
	case TyMintTo:
		amount, err := decodeAmount(input)
		if err != nil {
			return err
		}
		return mintTo(ctx, iter, amount)
	case TyCloseAccount:
		return closeAccount(ctx, iter)
	}
	return dapp.ErrInvalidInstructionData
}

func nextN(iter *dapp.AccountIter, n int) ([]*dapp.AccountInfo, error) {
	out := make([]*dapp.AccountInfo, n)
	for i := range out {
		info, err := iter.Next()
		if err != nil {
			return nil, err
		}
		out[i] = info
	}
	return out, nil
}

func checkRent(rentInfo *dapp.AccountInfo, info *dapp.AccountInfo) error {
	rent, err := sysvar.RentFromAccount(rentInfo)
	if err != nil {
		return err
	}
	if !rent.IsExempt(info.Lamports, len(info.Data)) {
		return errors.Wrapf(ErrNotRentExempt, "account %s", info.Key)
	}
	return nil
}

func initializeMint(ctx dapp.Context, iter *dapp.AccountIter, decimals uint8, authority types.Pubkey) error {
	infos, err := nextN(iter, 2)
	if err != nil {
		return err
	}
	mintInfo, rentInfo := infos[0], infos[1]
	if mintInfo.Owner != ProgramID {
		return errors.Wrapf(dapp.ErrIncorrectProgramID, "mint %s owner", mintInfo.Key)
	}
	if len(mintInfo.Data) != MintLen {
		return errors.Wrapf(dapp.ErrInvalidAccountData, "mint %s length", mintInfo.Key)
	}
	if mintInfo.Data[41] != 0 {
		return errors.Wrapf(dapp.ErrAccountAlreadyInitialized, "mint %s", mintInfo.Key)
	}
	if err := checkRent(rentInfo, mintInfo); err != nil {
		return err
	}
	mint := &Mint{Authority: authority, Decimals: decimals, IsInitialized: true}
	ctx.Log("initialize mint", "mint", mintInfo.Key, "decimals", decimals)
	return mint.Pack(mintInfo.Data)
}

func initializeAccount(ctx dapp.Context, iter *dapp.AccountIter) error {
	infos, err := nextN(iter, 4)
	if err != nil {
		return err
	}
	accInfo, mintInfo, ownerInfo, rentInfo := infos[0], infos[1], infos[2], infos[3]
	if accInfo.Owner != ProgramID {
		return errors.Wrapf(dapp.ErrIncorrectProgramID, "account %s owner", accInfo.Key)
	}
	acc, err := UnpackAccountUnchecked(accInfo.Data)
	if err != nil {
		return errors.Wrapf(err, "account %s", accInfo.Key)
	}
	if acc.State != AccountUninitialized {
		return errors.Wrapf(dapp.ErrAccountAlreadyInitialized, "account %s", accInfo.Key)
	}
	if err := checkRent(rentInfo, accInfo); err != nil {
		return err
	}
	if mintInfo.Owner != ProgramID {
		return errors.Wrapf(dapp.ErrIncorrectProgramID, "mint %s owner", mintInfo.Key)
	}
	if _, err := UnpackMint(mintInfo.Data); err != nil {
		return errors.Wrapf(err, "mint %s", mintInfo.Key)
	}
	acc = &Account{Mint: mintInfo.Key, Owner: ownerInfo.Key, State: AccountInitialized}
	ctx.Log("initialize account", "account", accInfo.Key, "mint", mintInfo.Key, "owner", ownerInfo.Key)
	return acc.Pack(accInfo.Data)
}

func loadAccount(info *dapp.AccountInfo) (*Account, error) {
	if info.Owner != ProgramID {
		return nil, errors.Wrapf(dapp.ErrIncorrectProgramID, "account %s owner", info.Key)
	}
	acc, err := UnpackAccount(info.Data)
	if err != nil {
		return nil, errors.Wrapf(err, "account %s", info.Key)
	}
	return acc, nil
}

func checkAuthority(expected types.Pubkey, authority *dapp.AccountInfo) error {
	if expected != authority.Key {
		return errors.Wrapf(ErrOwnerMismatch, "authority %s want %s", authority.Key, expected)
	}
	if !authority.IsSigner {
		return errors.Wrapf(dapp.ErrMissingRequiredSignature, "authority %s", authority.Key)
	}
	return nil
}

func transfer(ctx dapp.Context, iter *dapp.AccountIter, amount uint64) error {
	infos, err := nextN(iter, 3)
	if err != nil {
		return err
	}
	srcInfo, dstInfo, authority := infos[0], infos[1], infos[2]
	src, err := loadAccount(srcInfo)
	if err != nil {
		return err
	}
	dst, err := loadAccount(dstInfo)
	if err != nil {
		return err
	}
	if src.Mint != dst.Mint {
		return errors.Wrapf(ErrMintMismatch, "%s -> %s", srcInfo.Key, dstInfo.Key)
	}
	if err := checkAuthority(src.Owner, authority); err != nil {
		return err
	}
	if src.Amount < amount {
		tlog.Debug("transfer", "from", srcInfo.Key, "have", src.Amount, "need", amount)
		return errors.Wrapf(ErrInsufficientFunds, "account %s have %d need %d", srcInfo.Key, src.Amount, amount)
	}
	if srcInfo.Key == dstInfo.Key {
		return nil
	}
	if dst.Amount+amount < dst.Amount {
		return ErrOverflow
	}
	src.Amount -= amount
	dst.Amount += amount
	if err := src.Pack(srcInfo.Data); err != nil {
		return err
	}
	ctx.Log("token transfer", "from", srcInfo.Key, "to", dstInfo.Key, "amount", amount)
	return dst.Pack(dstInfo.Data)
}

func mintTo(ctx dapp.Context, iter *dapp.AccountIter, amount uint64) error {
	infos, err := nextN(iter, 3)
	if err != nil {
		return err
	}
	mintInfo, dstInfo, authority := infos[0], infos[1], infos[2]
	if mintInfo.Owner != ProgramID {
		return errors.Wrapf(dapp.ErrIncorrectProgramID, "mint %s owner", mintInfo.Key)
	}
	mint, err := UnpackMint(mintInfo.Data)
	if err != nil {
		return errors.Wrapf(err, "mint %s", mintInfo.Key)
	}
	dst, err := loadAccount(dstInfo)
	if err != nil {
		return err
	}
	if dst.Mint != mintInfo.Key {
		return errors.Wrapf(ErrMintMismatch, "account %s", dstInfo.Key)
	}
	if err := checkAuthority(mint.Authority, authority); err != nil {
		return err
	}
	if mint.Supply+amount < mint.Supply || dst.Amount+amount < dst.Amount {
		return ErrOverflow
	}
	mint.Supply += amount
	dst.Amount += amount
	if err := mint.Pack(mintInfo.Data); err != nil {
		return err
	}
	ctx.Log("mint to", "mint", mintInfo.Key, "to", dstInfo.Key, "amount", amount)
	return dst.Pack(dstInfo.Data)
}

func closeAccount(ctx dapp.Context, iter *dapp.AccountIter) error {
	infos, err := nextN(iter, 3)
	if err != nil {
		return err
	}
	accInfo, dstInfo, authority := infos[0], infos[1], infos[2]
	acc, err := loadAccount(accInfo)
	if err != nil {
		return err
	}
	if acc.Amount != 0 {
		return errors.Wrapf(ErrNonNativeHasBalance, "account %s amount %d", accInfo.Key, acc.Amount)
	}
	if err := checkAuthority(acc.Owner, authority); err != nil {
		return err
	}
	if accInfo.Key == dstInfo.Key {
		return errors.Wrap(dapp.ErrInvalidAccountData, "close to itself")
	}
	if dstInfo.Lamports+accInfo.Lamports < dstInfo.Lamports {
		return ErrOverflow
	}
	dstInfo.Lamports += accInfo.Lamports
	accInfo.Lamports = 0
	accInfo.Data = nil
	ctx.Log("close account", "account", accInfo.Key, "to", dstInfo.Key)
	return nil
}
