// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import "errors"

// 账本宿主层面的错误, 程序自身的错误见 system/dapp.ProgramError
var (
	ErrNotFound              = errors.New("ErrNotFound")
	ErrPubkeyLength          = errors.New("ErrPubkeyLength")
	ErrPubkeyFormat          = errors.New("ErrPubkeyFormat")
	ErrDecode                = errors.New("ErrDecode")
	ErrNoBalance             = errors.New("ErrNoBalance")
	ErrAmount                = errors.New("ErrAmount")
	ErrSendSameToRecv        = errors.New("ErrSendSameToRecv")
	ErrEmptyTx               = errors.New("ErrEmptyTx")
	ErrTxSize                = errors.New("ErrTxSize")
	ErrNoSigner              = errors.New("ErrNoSigner")
	ErrSign                  = errors.New("ErrSign")
	ErrTxDup                 = errors.New("ErrTxDup")
	ErrProgramNotFound       = errors.New("ErrProgramNotFound")
	ErrCallDepth             = errors.New("ErrCallDepth")
	ErrReentrancy            = errors.New("ErrReentrancy")
	ErrUnbalancedInstruction = errors.New("ErrUnbalancedInstruction")
	ErrReadonlyModified      = errors.New("ErrReadonlyModified")
	ErrExternalDataModified  = errors.New("ErrExternalDataModified")
	ErrExternalLamportSpend  = errors.New("ErrExternalLamportSpend")
	ErrModifiedOwner         = errors.New("ErrModifiedOwner")
	ErrPrivilegeEscalation   = errors.New("ErrPrivilegeEscalation")
	ErrAccountNotInTx        = errors.New("ErrAccountNotInTx")
	ErrRentExempt            = errors.New("ErrRentExempt")
	ErrKeyFileFormat         = errors.New("ErrKeyFileFormat")
	ErrDBDriver              = errors.New("ErrDBDriver")
	ErrConfig                = errors.New("ErrConfig")
)
