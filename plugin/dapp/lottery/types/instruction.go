// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"encoding/binary"
)

// LotteryInstruction 指令: 第一个字节是操作码, 后面是小端的参数
type LotteryInstruction interface {
	Tag() uint8
	Pack() []byte
	lotteryInstruction()
}

// Initialize 创建一期抽奖, Cap 为总份额上限, Duration 为持续的 slot 数
type Initialize struct {
	Cap      uint64
	Duration uint64
}

// Contribute 购买 Amount 份
type Contribute struct {
	Amount uint64
}

// Draw 开奖
type Draw struct{}

// Settle 派奖以及收取手续费
type Settle struct{}

// Release 回收 ticket 账户的租金
type Release struct{}

// Cancel 过期且没有人购买的 lottery 直接关闭奖池
type Cancel struct{}

// Tag op
func (Initialize) Tag() uint8 { return LotteryActionInitialize }

// Tag op
func (Contribute) Tag() uint8 { return LotteryActionContribute }

// Tag op
func (Draw) Tag() uint8 { return LotteryActionDraw }

// Tag op
func (Settle) Tag() uint8 { return LotteryActionSettle }

// Tag op
func (Release) Tag() uint8 { return LotteryActionRelease }

// Tag op
func (Cancel) Tag() uint8 { return LotteryActionCancel }

func (Initialize) lotteryInstruction() {}
func (Contribute) lotteryInstruction() {}
func (Draw) lotteryInstruction()       {}
func (Settle) lotteryInstruction()     {}
func (Release) lotteryInstruction()    {}
func (Cancel) lotteryInstruction()     {}

// Pack 编码
func (i Initialize) Pack() []byte {
	b := make([]byte, 17)
	b[0] = i.Tag()
	binary.LittleEndian.PutUint64(b[1:], i.Cap)
	binary.LittleEndian.PutUint64(b[9:], i.Duration)
	return b
}

// Pack 编码
func (c Contribute) Pack() []byte {
	b := make([]byte, 9)
	b[0] = c.Tag()
	binary.LittleEndian.PutUint64(b[1:], c.Amount)
	return b
}

// Pack 编码
func (d Draw) Pack() []byte { return []byte{d.Tag()} }

// Pack 编码
func (s Settle) Pack() []byte { return []byte{s.Tag()} }

// Pack 编码
func (r Release) Pack() []byte { return []byte{r.Tag()} }

// Pack 编码
func (c Cancel) Pack() []byte { return []byte{c.Tag()} }

// DecodeInstruction 解码, 未知操作码或者长度不够返回 ErrInvalidInstruction.
// 多余的字节被忽略
func DecodeInstruction(input []byte) (LotteryInstruction, error) {
	if len(input) == 0 {
		return nil, ErrInvalidInstruction
	}
	rest := input[1:]
	switch input[0] {
	case LotteryActionInitialize:
		if len(rest) < 16 {
			return nil, ErrInvalidInstruction
		}
		return Initialize{
			Cap:      binary.LittleEndian.Uint64(rest),
			Duration: binary.LittleEndian.Uint64(rest[8:]),
		}, nil
	case LotteryActionContribute:
		if len(rest) < 8 {
			return nil, ErrInvalidInstruction
		}
		return Contribute{Amount: binary.LittleEndian.Uint64(rest)}, nil
	case LotteryActionDraw:
		return Draw{}, nil
	case LotteryActionSettle:
		return Settle{}, nil
	case LotteryActionRelease:
		return Release{}, nil
	case LotteryActionCancel:
		return Cancel{}, nil
	}
	return nil, ErrInvalidInstruction
}
