// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package token

import (
	"encoding/binary"

	"github.com/33cn/lottery/system/dapp"
	"github.com/33cn/lottery/types"
)

// 记录长度
const (
	MintLen    = 42
	AccountLen = 73
)

// Mint 资产定义
type Mint struct {
	Authority     types.Pubkey
	Supply        uint64
	Decimals      uint8
	IsInitialized bool
}

// Pack 编码到 dst, 长度必须是 MintLen
func (m *Mint) Pack(dst []byte) error {
	if len(dst) != MintLen {
		return dapp.ErrInvalidAccountData
	}
	copy(dst[0:32], m.Authority[:])
	binary.LittleEndian.PutUint64(dst[32:40], m.Supply)
	dst[40] = m.Decimals
	dst[41] = boolByte(m.IsInitialized)
	return nil
}

// UnpackMint 解码, 未初始化的 mint 返回 ErrUninitializedAccount
func UnpackMint(data []byte) (*Mint, error) {
	if len(data) != MintLen {
		return nil, dapp.ErrInvalidAccountData
	}
	m := &Mint{
		Supply:        binary.LittleEndian.Uint64(data[32:40]),
		Decimals:      data[40],
		IsInitialized: data[41] == 1,
	}
	copy(m.Authority[:], data[0:32])
	if !m.IsInitialized {
		return nil, dapp.ErrUninitializedAccount
	}
	return m, nil
}

// 账户状态
const (
	AccountUninitialized = uint8(0)
	AccountInitialized   = uint8(1)
)

// Account 某个 owner 持有的某种资产的余额
type Account struct {
	Mint   types.Pubkey
	Owner  types.Pubkey
	Amount uint64
	State  uint8
}

// Pack 编码到 dst, 长度必须是 AccountLen
func (a *Account) Pack(dst []byte) error {
	if len(dst) != AccountLen {
		return dapp.ErrInvalidAccountData
	}
	copy(dst[0:32], a.Mint[:])
	copy(dst[32:64], a.Owner[:])
	binary.LittleEndian.PutUint64(dst[64:72], a.Amount)
	dst[72] = a.State
	return nil
}

// UnpackAccountUnchecked 解码, 不检查状态
func UnpackAccountUnchecked(data []byte) (*Account, error) {
	if len(data) != AccountLen {
		return nil, dapp.ErrInvalidAccountData
	}
	a := &Account{
		Amount: binary.LittleEndian.Uint64(data[64:72]),
		State:  data[72],
	}
	copy(a.Mint[:], data[0:32])
	copy(a.Owner[:], data[32:64])
	return a, nil
}

// UnpackAccount 解码已初始化的账户
func UnpackAccount(data []byte) (*Account, error) {
	a, err := UnpackAccountUnchecked(data)
	if err != nil {
		return nil, err
	}
	if a.State != AccountInitialized {
		return nil, dapp.ErrUninitializedAccount
	}
	return a, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
