// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"github.com/33cn/lottery/system/dapp"
	"github.com/33cn/lottery/types"
	"github.com/pkg/errors"
)

// lottery 自定义错误, 错误码不能修改
var (
	ErrInvalidInstruction    = dapp.NewCustomError(0, "ErrInvalidInstruction")
	ErrNotRentExempt         = dapp.NewCustomError(1, "ErrNotRentExempt")
	ErrAccountNotWritable    = dapp.NewCustomError(2, "ErrAccountNotWritable")
	ErrPoolSoldOut           = dapp.NewCustomError(3, "ErrPoolSoldOut")
	ErrLotteryExpired        = dapp.NewCustomError(4, "ErrLotteryExpired")
	ErrLotteryStatus         = dapp.NewCustomError(5, "ErrLotteryStatus")
	ErrLotteryNotDrawn       = dapp.NewCustomError(6, "ErrLotteryNotDrawn")
	ErrWrongWinner           = dapp.NewCustomError(7, "ErrWrongWinner")
	ErrLotteryEmpty          = dapp.NewCustomError(8, "ErrLotteryEmpty")
	ErrRandomnessUnavailable = dapp.NewCustomError(9, "ErrRandomnessUnavailable")
)

var customErrors = []*dapp.ProgramError{
	ErrInvalidInstruction,
	ErrNotRentExempt,
	ErrAccountNotWritable,
	ErrPoolSoldOut,
	ErrLotteryExpired,
	ErrLotteryStatus,
	ErrLotteryNotDrawn,
	ErrWrongWinner,
	ErrLotteryEmpty,
	ErrRandomnessUnavailable,
}

// ErrorFromCode 根据回执里的自定义错误码找到错误
func ErrorFromCode(code uint32) (*dapp.ProgramError, bool) {
	if int(code) >= len(customErrors) {
		return nil, false
	}
	return customErrors[code], true
}

// IsRetryable 补足资金或者等待之后可以重新提交的错误, 其它错误都是终态
func IsRetryable(err error) bool {
	switch errors.Cause(err) {
	case ErrNotRentExempt, ErrRandomnessUnavailable, types.ErrNoBalance:
		return true
	}
	return false
}
