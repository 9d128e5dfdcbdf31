// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dapp

import (
	"fmt"

	"github.com/pkg/errors"
)

// ProgramError 程序返回给调用者的错误, Custom 为 true 时 Code 是程序自定义的错误码
type ProgramError struct {
	Code   uint32
	Custom bool
	Name   string
}

func (e *ProgramError) Error() string {
	return e.Name
}

// String code 以及名称
func (e *ProgramError) String() string {
	if e.Custom {
		return fmt.Sprintf("custom program error: 0x%x (%s)", e.Code, e.Name)
	}
	return fmt.Sprintf("program error: %d (%s)", e.Code, e.Name)
}

// NewCustomError 程序自定义错误
func NewCustomError(code uint32, name string) *ProgramError {
	return &ProgramError{Code: code, Custom: true, Name: name}
}

func builtin(code uint32, name string) *ProgramError {
	return &ProgramError{Code: code, Name: name}
}

// 内置的程序错误
var (
	ErrInvalidArgument           = builtin(1, "ErrInvalidArgument")
	ErrInvalidInstructionData    = builtin(2, "ErrInvalidInstructionData")
	ErrInvalidAccountData        = builtin(3, "ErrInvalidAccountData")
	ErrAccountDataTooSmall       = builtin(4, "ErrAccountDataTooSmall")
	ErrInsufficientFunds         = builtin(5, "ErrInsufficientFunds")
	ErrIncorrectProgramID        = builtin(6, "ErrIncorrectProgramID")
	ErrMissingRequiredSignature  = builtin(7, "ErrMissingRequiredSignature")
	ErrAccountAlreadyInitialized = builtin(8, "ErrAccountAlreadyInitialized")
	ErrUninitializedAccount      = builtin(9, "ErrUninitializedAccount")
	ErrNotEnoughAccountKeys      = builtin(10, "ErrNotEnoughAccountKeys")
	ErrAccountAlreadyInUse       = builtin(11, "ErrAccountAlreadyInUse")
	ErrArithmeticOverflow        = builtin(12, "ErrArithmeticOverflow")
)

// AsProgramError 取出错误链最底层的 ProgramError
func AsProgramError(err error) (*ProgramError, bool) {
	pe, ok := errors.Cause(err).(*ProgramError)
	return pe, ok
}
