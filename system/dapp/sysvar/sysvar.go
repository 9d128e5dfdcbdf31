// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sysvar 系统变量账户: 时钟, 租金, 最近的 slot 哈希
package sysvar

import (
	"encoding/binary"

	"github.com/33cn/lottery/system/dapp"
	"github.com/33cn/lottery/types"
)

// 系统变量账户地址
var (
	OwnerID      = types.MustPubkeyFromString("Sysvar1111111111111111111111111111111111111")
	ClockID      = types.MustPubkeyFromString("SysvarC1ock11111111111111111111111111111111")
	RentID       = types.MustPubkeyFromString("SysvarRent111111111111111111111111111111111")
	SlotHashesID = types.MustPubkeyFromString("SysvarS1otHashes111111111111111111111111111")
)

// accountStorageOverhead 计算租金时每个账户额外计入的字节
const accountStorageOverhead = 128

// Clock 逻辑时钟
type Clock struct {
	Slot          uint64
	UnixTimestamp int64
}

// ClockLen 编码长度
const ClockLen = 16

// Encode 编码
func (c *Clock) Encode() []byte {
	b := make([]byte, ClockLen)
	binary.LittleEndian.PutUint64(b[0:], c.Slot)
	binary.LittleEndian.PutUint64(b[8:], uint64(c.UnixTimestamp))
	return b
}

// DecodeClock 解码
func DecodeClock(b []byte) (*Clock, error) {
	if len(b) != ClockLen {
		return nil, dapp.ErrInvalidAccountData
	}
	return &Clock{
		Slot:          binary.LittleEndian.Uint64(b[0:]),
		UnixTimestamp: int64(binary.LittleEndian.Uint64(b[8:])),
	}, nil
}

// ClockFromAccount 从指令账户读取时钟, 地址不对时返回 ErrInvalidArgument
func ClockFromAccount(info *dapp.AccountInfo) (*Clock, error) {
	if info.Key != ClockID {
		return nil, dapp.ErrInvalidArgument
	}
	return DecodeClock(info.Data)
}

// Rent 租金参数
type Rent struct {
	LamportsPerByteYear uint64
	ExemptionYears      uint64
}

// RentLen 编码长度
const RentLen = 16

// Encode 编码
func (r *Rent) Encode() []byte {
	b := make([]byte, RentLen)
	binary.LittleEndian.PutUint64(b[0:], r.LamportsPerByteYear)
	binary.LittleEndian.PutUint64(b[8:], r.ExemptionYears)
	return b
}

// DecodeRent 解码
func DecodeRent(b []byte) (*Rent, error) {
	if len(b) != RentLen {
		return nil, dapp.ErrInvalidAccountData
	}
	return &Rent{
		LamportsPerByteYear: binary.LittleEndian.Uint64(b[0:]),
		ExemptionYears:      binary.LittleEndian.Uint64(b[8:]),
	}, nil
}

// RentFromAccount 从指令账户读取租金参数
func RentFromAccount(info *dapp.AccountInfo) (*Rent, error) {
	if info.Key != RentID {
		return nil, dapp.ErrInvalidArgument
	}
	return DecodeRent(info.Data)
}

// MinimumBalance 数据长度为 size 的账户免租需要的最小余额
func (r *Rent) MinimumBalance(size int) uint64 {
	return (accountStorageOverhead + uint64(size)) * r.LamportsPerByteYear * r.ExemptionYears
}

// IsExempt 余额是否足够免租
func (r *Rent) IsExempt(lamports uint64, size int) bool {
	return lamports >= r.MinimumBalance(size)
}

// SlotHash 一个 slot 以及它的哈希
type SlotHash struct {
	Slot uint64
	Hash [32]byte
}

// SlotHashes 最近的 slot 哈希, 新的在前
type SlotHashes []SlotHash

const slotHashLen = 40

// Encode 8 字节个数, 然后每项 slot(8) + hash(32)
func (s SlotHashes) Encode() []byte {
	b := make([]byte, 8+len(s)*slotHashLen)
	binary.LittleEndian.PutUint64(b, uint64(len(s)))
	for i, sh := range s {
		off := 8 + i*slotHashLen
		binary.LittleEndian.PutUint64(b[off:], sh.Slot)
		copy(b[off+8:off+slotHashLen], sh.Hash[:])
	}
	return b
}

// DecodeSlotHashes 解码
func DecodeSlotHashes(b []byte) (SlotHashes, error) {
	if len(b) < 8 {
		return nil, dapp.ErrInvalidAccountData
	}
	n := binary.LittleEndian.Uint64(b)
	if n > uint64(len(b)-8)/slotHashLen || uint64(len(b)) != 8+n*slotHashLen {
		return nil, dapp.ErrInvalidAccountData
	}
	s := make(SlotHashes, n)
	for i := range s {
		off := 8 + i*slotHashLen
		s[i].Slot = binary.LittleEndian.Uint64(b[off:])
		copy(s[i].Hash[:], b[off+8:off+slotHashLen])
	}
	return s, nil
}

// SlotHashesFromAccount 从指令账户读取
func SlotHashesFromAccount(info *dapp.AccountInfo) (SlotHashes, error) {
	if info.Key != SlotHashesID {
		return nil, dapp.ErrInvalidArgument
	}
	return DecodeSlotHashes(info.Data)
}

// Add 加入最新的哈希, 最多保留 max 项
func (s SlotHashes) Add(slot uint64, hash [32]byte, max int) SlotHashes {
	out := make(SlotHashes, 0, len(s)+1)
	out = append(out, SlotHash{Slot: slot, Hash: hash})
	out = append(out, s...)
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}
