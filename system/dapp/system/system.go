// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package system 系统程序: 创建账户, 原生币转账, 分配数据, 修改账户归属
package system

import (
	"github.com/33cn/lottery/system/dapp"
	"github.com/33cn/lottery/types"
	log "github.com/inconshreveable/log15"
	"github.com/pkg/errors"
)

var slog = log.New("module", "execs.system")

// Name 程序名称
const Name = "system"

func init() {
	dapp.Register(ProgramID, Name, newSystem)
}

type systemProgram struct{}

func newSystem() dapp.Driver {
	return &systemProgram{}
}

func (s *systemProgram) GetName() string {
	return Name
}

func (s *systemProgram) Process(ctx dapp.Context, programID types.Pubkey, accounts []*dapp.AccountInfo, input []byte) error {
	if programID != ProgramID {
		return dapp.ErrIncorrectProgramID
	}
	ty, payload, err := decodeInstruction(input)
	if err != nil {
		return err
	}
	iter := dapp.NewAccountIter(accounts)
	switch ty {
	case TyCreateAccount:
		ca := payload.(*createAccount)
		from, err := iter.Next()
		if err != nil {
			return err
		}
		to, err := iter.Next()
		if err != nil {
			return err
		}
		return createAccountExec(ctx, from, to, ca)
	case TyAssign:
		acc, err := iter.Next()
		if err != nil {
			return err
		}
		if !acc.IsSigner {
			return errors.Wrapf(dapp.ErrMissingRequiredSignature, "assign %s", acc.Key)
		}
		acc.Owner = payload.(types.Pubkey)
		return nil
	case TyTransfer:
		from, err := iter.Next()
		if err != nil {
			return err
		}
		to, err := iter.Next()
		if err != nil {
			return err
		}
		return transferExec(ctx, from, to, payload.(uint64))
	case TyAllocate:
		acc, err := iter.Next()
		if err != nil {
			return err
		}
		return allocateExec(ctx, acc, payload.(uint64))
	}
	return dapp.ErrInvalidInstructionData
}

func createAccountExec(ctx dapp.Context, from, to *dapp.AccountInfo, ca *createAccount) error {
	if !from.IsSigner {
		return errors.Wrapf(dapp.ErrMissingRequiredSignature, "funder %s", from.Key)
	}
	if !to.IsSigner {
		return errors.Wrapf(dapp.ErrMissingRequiredSignature, "new account %s", to.Key)
	}
	if to.Lamports != 0 || !to.DataIsEmpty() || to.Owner != ProgramID {
		slog.Error("CreateAccount", "account", to.Key, "err", "already in use")
		return errors.Wrapf(dapp.ErrAccountAlreadyInUse, "account %s", to.Key)
	}
	if ca.space > types.MaxAccountDataLen {
		return errors.Wrapf(dapp.ErrInvalidArgument, "space %d", ca.space)
	}
	if err := debit(from, ca.lamports); err != nil {
		return err
	}
	to.Lamports = ca.lamports
	to.Data = make([]byte, ca.space)
	to.Owner = ca.owner
	ctx.Log("create account", "account", to.Key, "space", ca.space, "owner", ca.owner)
	return nil
}

func allocateExec(ctx dapp.Context, acc *dapp.AccountInfo, space uint64) error {
	if !acc.IsSigner {
		return errors.Wrapf(dapp.ErrMissingRequiredSignature, "allocate %s", acc.Key)
	}
	if !acc.DataIsEmpty() || acc.Owner != ProgramID {
		slog.Error("Allocate", "account", acc.Key, "err", "already in use")
		return errors.Wrapf(dapp.ErrAccountAlreadyInUse, "account %s", acc.Key)
	}
	if space > types.MaxAccountDataLen {
		return errors.Wrapf(dapp.ErrInvalidArgument, "space %d", space)
	}
	acc.Data = make([]byte, space)
	ctx.Log("allocate", "account", acc.Key, "space", space)
	return nil
}

func transferExec(ctx dapp.Context, from, to *dapp.AccountInfo, lamports uint64) error {
	if !from.IsSigner {
		return errors.Wrapf(dapp.ErrMissingRequiredSignature, "transfer from %s", from.Key)
	}
	if err := debit(from, lamports); err != nil {
		return err
	}
	if to.Lamports+lamports < to.Lamports {
		return dapp.ErrArithmeticOverflow
	}
	to.Lamports += lamports
	ctx.Log("transfer", "from", from.Key, "to", to.Key, "lamports", lamports)
	return nil
}

// 只能从系统程序所有且没有数据的账户中扣款
func debit(from *dapp.AccountInfo, lamports uint64) error {
	if from.Owner != ProgramID || !from.DataIsEmpty() {
		return errors.Wrapf(dapp.ErrInvalidArgument, "from %s must be a system account without data", from.Key)
	}
	if from.Lamports < lamports {
		slog.Debug("debit", "from", from.Key, "have", from.Lamports, "need", lamports)
		return errors.Wrapf(dapp.ErrInsufficientFunds, "from %s have %d need %d", from.Key, from.Lamports, lamports)
	}
	from.Lamports -= lamports
	return nil
}
