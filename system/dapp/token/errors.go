// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package token

import "github.com/33cn/lottery/system/dapp"

// token 程序自定义错误
var (
	ErrNotRentExempt       = dapp.NewCustomError(0, "ErrTokenNotRentExempt")
	ErrInsufficientFunds   = dapp.NewCustomError(1, "ErrTokenInsufficientFunds")
	ErrMintMismatch        = dapp.NewCustomError(2, "ErrTokenMintMismatch")
	ErrOwnerMismatch       = dapp.NewCustomError(3, "ErrTokenOwnerMismatch")
	ErrNonNativeHasBalance = dapp.NewCustomError(4, "ErrTokenNonNativeHasBalance")
	ErrOverflow            = dapp.NewCustomError(5, "ErrTokenOverflow")
)
