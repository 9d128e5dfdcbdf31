// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package token

import (
	"encoding/binary"

	"github.com/33cn/lottery/system/dapp"
	"github.com/33cn/lottery/system/dapp/sysvar"
	"github.com/33cn/lottery/types"
)

// ProgramID token 程序地址
var ProgramID = types.MustPubkeyFromString("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

// 指令标签
const (
	TyInitializeMint    = uint8(0)
	TyInitializeAccount = uint8(1)
	TyTransfer          = uint8(3)
	TyMintTo            = uint8(7)
	TyCloseAccount      = uint8(9)
)

// InitializeMint mint[w], rent
func InitializeMint(mint, authority types.Pubkey, decimals uint8) *types.Instruction {
	data := make([]byte, 2+types.PubkeyLen)
	data[0] = TyInitializeMint
	data[1] = decimals
	copy(data[2:], authority[:])
	return &types.Instruction{
		ProgramID: ProgramID,
		Accounts: []types.AccountMeta{
			types.NewAccountMeta(mint, false),
			types.NewReadonlyAccountMeta(sysvar.RentID, false),
		},
		Data: data,
	}
}

// InitializeAccount account[w], mint, owner, rent
func InitializeAccount(account, mint, owner types.Pubkey) *types.Instruction {
	return &types.Instruction{
		ProgramID: ProgramID,
		Accounts: []types.AccountMeta{
			types.NewAccountMeta(account, false),
			types.NewReadonlyAccountMeta(mint, false),
			types.NewReadonlyAccountMeta(owner, false),
			types.NewReadonlyAccountMeta(sysvar.RentID, false),
		},
		Data: []byte{TyInitializeAccount},
	}
}

// Transfer source[w], dest[w], authority[s]
func Transfer(source, dest, authority types.Pubkey, amount uint64) *types.Instruction {
	return &types.Instruction{
		ProgramID: ProgramID,
		Accounts: []types.AccountMeta{
			types.NewAccountMeta(source, false),
			types.NewAccountMeta(dest, false),
			types.NewReadonlyAccountMeta(authority, true),
		},
		Data: amountData(TyTransfer, amount),
	}
}

// MintTo mint[w], dest[w], authority[s]
func MintTo(mint, dest, authority types.Pubkey, amount uint64) *types.Instruction {
	return &types.Instruction{
		ProgramID: ProgramID,
		Accounts: []types.AccountMeta{
			types.NewAccountMeta(mint, false),
			types.NewAccountMeta(dest, false),
			types.NewReadonlyAccountMeta(authority, true),
		},
		Data: amountData(TyMintTo, amount),
	}
}

// CloseAccount account[w], dest[w], authority[s]; 余额必须为零, 账户的原生币转给 dest
func CloseAccount(account, dest, authority types.Pubkey) *types.Instruction {
	return &types.Instruction{
		ProgramID: ProgramID,
		Accounts: []types.AccountMeta{
			types.NewAccountMeta(account, false),
			types.NewAccountMeta(dest, false),
			types.NewReadonlyAccountMeta(authority, true),
		},
		Data: []byte{TyCloseAccount},
	}
}

func amountData(tag uint8, amount uint64) []byte {
	data := make([]byte, 9)
	data[0] = tag
	binary.LittleEndian.PutUint64(data[1:], amount)
	return data
}

func decodeAmount(input []byte) (uint64, error) {
	if len(input) != 9 {
		return 0, dapp.ErrInvalidInstructionData
	}
	return binary.LittleEndian.Uint64(input[1:]), nil
}
