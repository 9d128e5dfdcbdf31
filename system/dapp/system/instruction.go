// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package system

import (
	"encoding/binary"

	"github.com/33cn/lottery/system/dapp"
	"github.com/33cn/lottery/types"
)

// ProgramID 系统程序地址, 全零
var ProgramID = types.Pubkey{}

// 指令标签, 4 字节小端
const (
	TyCreateAccount = uint32(0)
	TyAssign        = uint32(1)
	TyTransfer      = uint32(2)
	TyAllocate      = uint32(3)
)

// CreateAccount 从 from 转 lamports 到新账户 to, 分配 space 字节数据, 并归属 owner 程序
func CreateAccount(from, to types.Pubkey, lamports uint64, space uint64, owner types.Pubkey) *types.Instruction {
	data := make([]byte, 4+8+8+types.PubkeyLen)
	binary.LittleEndian.PutUint32(data, TyCreateAccount)
	binary.LittleEndian.PutUint64(data[4:], lamports)
	binary.LittleEndian.PutUint64(data[12:], space)
	copy(data[20:], owner[:])
	return &types.Instruction{
		ProgramID: ProgramID,
		Accounts: []types.AccountMeta{
			types.NewAccountMeta(from, true),
			types.NewAccountMeta(to, true),
		},
		Data: data,
	}
}

// Assign 修改账户的所属程序
func Assign(account, owner types.Pubkey) *types.Instruction {
	data := make([]byte, 4+types.PubkeyLen)
	binary.LittleEndian.PutUint32(data, TyAssign)
	copy(data[4:], owner[:])
	return &types.Instruction{
		ProgramID: ProgramID,
		Accounts:  []types.AccountMeta{types.NewAccountMeta(account, true)},
		Data:      data,
	}
}

// Transfer 原生币转账
func Transfer(from, to types.Pubkey, lamports uint64) *types.Instruction {
	data := make([]byte, 4+8)
	binary.LittleEndian.PutUint32(data, TyTransfer)
	binary.LittleEndian.PutUint64(data[4:], lamports)
	return &types.Instruction{
		ProgramID: ProgramID,
		Accounts: []types.AccountMeta{
			types.NewAccountMeta(from, true),
			types.NewAccountMeta(to, false),
		},
		Data: data,
	}
}

// Allocate 为已有余额的空账户分配 space 字节数据, 账户需要签名
func Allocate(account types.Pubkey, space uint64) *types.Instruction {
	data := make([]byte, 4+8)
	binary.LittleEndian.PutUint32(data, TyAllocate)
	binary.LittleEndian.PutUint64(data[4:], space)
	return &types.Instruction{
		ProgramID: ProgramID,
		Accounts:  []types.AccountMeta{types.NewAccountMeta(account, true)},
		Data:      data,
	}
}

type createAccount struct {
	lamports uint64
	space    uint64
	owner    types.Pubkey
}

func decodeInstruction(input []byte) (uint32, interface{}, error) {
	if len(input) < 4 {
		return 0, nil, dapp.ErrInvalidInstructionData
	}
	ty := binary.LittleEndian.Uint32(input)
	rest := input[4:]
	switch ty {
	case TyCreateAccount:
		if len(rest) != 16+types.PubkeyLen {
			return 0, nil, dapp.ErrInvalidInstructionData
		}
		ca := &createAccount{
			lamports: binary.LittleEndian.Uint64(rest),
			space:    binary.LittleEndian.Uint64(rest[8:]),
		}
		copy(ca.owner[:], rest[16:])
		return ty, ca, nil
	case TyAssign:
		if len(rest) != types.PubkeyLen {
			return 0, nil, dapp.ErrInvalidInstructionData
		}
		var owner types.Pubkey
		copy(owner[:], rest)
		return ty, owner, nil
	case TyTransfer, TyAllocate:
		if len(rest) != 8 {
			return 0, nil, dapp.ErrInvalidInstructionData
		}
		return ty, binary.LittleEndian.Uint64(rest), nil
	}
	return 0, nil, dapp.ErrInvalidInstructionData
}
