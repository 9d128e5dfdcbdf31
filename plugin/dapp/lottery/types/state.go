// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"encoding/binary"
	"fmt"

	"github.com/33cn/lottery/system/dapp"
	"github.com/33cn/lottery/types"
)

// Field 记录中的一个字段: 名称以及字节宽度
type Field struct {
	Name  string
	Width int
}

// Schema 有序的字段列表, 偏移由前面字段的宽度累加得到, 小端, 无填充
type Schema []Field

// Len 记录总长度
func (s Schema) Len() int {
	n := 0
	for _, f := range s {
		n += f.Width
	}
	return n
}

// Offset 字段偏移, 字段不存在时 panic
func (s Schema) Offset(name string) int {
	off := 0
	for _, f := range s {
		if f.Name == name {
			return off
		}
		off += f.Width
	}
	panic("lottery: unknown field " + name)
}

// LotterySchema 版本 2 的 Lottery 记录 (带 asset_type)
var LotterySchema = Schema{
	{"state", 1},
	{"authority", 32},
	{"escrow_address", 32},
	{"fee_address", 32},
	{"contribution_cap", 8},
	{"deadline", 8},
	{"draw_result", 8},
	{"total_contributed", 8},
	{"asset_type", 32},
}

// TicketSchema Ticket 记录
var TicketSchema = Schema{
	{"state", 1},
	{"lottery_ref", 32},
	{"owner", 32},
	{"range_start", 8},
	{"range_end", 8},
}

// cursor 按 schema 的顺序读写, 宽度不一致说明代码和 schema 不同步
type cursor struct {
	buf    []byte
	schema Schema
	field  int
	off    int
}

func newCursor(buf []byte, schema Schema) (*cursor, error) {
	if len(buf) != schema.Len() {
		return nil, dapp.ErrInvalidAccountData
	}
	return &cursor{buf: buf, schema: schema}, nil
}

func (c *cursor) next(width int) []byte {
	f := c.schema[c.field]
	if f.Width != width {
		panic(fmt.Sprintf("lottery: field %s width %d, got %d", f.Name, f.Width, width))
	}
	b := c.buf[c.off : c.off+width]
	c.field++
	c.off += width
	return b
}

func (c *cursor) putU8(v uint8)            { c.next(1)[0] = v }
func (c *cursor) putU64(v uint64)          { binary.LittleEndian.PutUint64(c.next(8), v) }
func (c *cursor) putPubkey(k types.Pubkey) { copy(c.next(types.PubkeyLen), k[:]) }
func (c *cursor) u8() uint8                { return c.next(1)[0] }
func (c *cursor) u64() uint64              { return binary.LittleEndian.Uint64(c.next(8)) }
func (c *cursor) pubkey() (k types.Pubkey) { copy(k[:], c.next(types.PubkeyLen)); return k }

// Lottery 一期抽奖
type Lottery struct {
	State            uint8        `json:"state"`
	Authority        types.Pubkey `json:"authority"`
	EscrowAddress    types.Pubkey `json:"escrowAddress"`
	FeeAddress       types.Pubkey `json:"feeAddress"`
	ContributionCap  uint64       `json:"contributionCap"`
	Deadline         uint64       `json:"deadline"`
	DrawResult       uint64       `json:"drawResult"`
	TotalContributed uint64       `json:"totalContributed"`
	AssetType        types.Pubkey `json:"assetType"`
}

// Pack 编码到 dst, 长度必须是 LotteryLen
func (l *Lottery) Pack(dst []byte) error {
	c, err := newCursor(dst, LotterySchema)
	if err != nil {
		return err
	}
	c.putU8(l.State)
	c.putPubkey(l.Authority)
	c.putPubkey(l.EscrowAddress)
	c.putPubkey(l.FeeAddress)
	c.putU64(l.ContributionCap)
	c.putU64(l.Deadline)
	c.putU64(l.DrawResult)
	c.putU64(l.TotalContributed)
	c.putPubkey(l.AssetType)
	return nil
}

// Bytes 编码
func (l *Lottery) Bytes() []byte {
	b := make([]byte, LotteryLen)
	if err := l.Pack(b); err != nil {
		panic(err)
	}
	return b
}

// UnpackLotteryUnchecked 解码, 不检查状态, 全零的记录也可以
func UnpackLotteryUnchecked(data []byte) (*Lottery, error) {
	c, err := newCursor(data, LotterySchema)
	if err != nil {
		return nil, err
	}
	return &Lottery{
		State:            c.u8(),
		Authority:        c.pubkey(),
		EscrowAddress:    c.pubkey(),
		FeeAddress:       c.pubkey(),
		ContributionCap:  c.u64(),
		Deadline:         c.u64(),
		DrawResult:       c.u64(),
		TotalContributed: c.u64(),
		AssetType:        c.pubkey(),
	}, nil
}

// UnpackLottery 解码已初始化的 Lottery
func UnpackLottery(data []byte) (*Lottery, error) {
	l, err := UnpackLotteryUnchecked(data)
	if err != nil {
		return nil, err
	}
	switch l.State {
	case StateOpen, StateDrawn, StateSettled:
		return l, nil
	case StateUninitialized:
		return nil, dapp.ErrUninitializedAccount
	}
	return nil, dapp.ErrInvalidAccountData
}

// IsFull 已经达到上限
func (l *Lottery) IsFull() bool {
	return l.TotalContributed >= l.ContributionCap
}

// IsExpired slot 已经超过截止时间
func (l *Lottery) IsExpired(slot uint64) bool {
	return slot > l.Deadline
}

// DrawEligible 可以开奖: 满额或者过期
func (l *Lottery) DrawEligible(slot uint64) bool {
	return l.IsFull() || l.IsExpired(slot)
}

// Ticket 一次购买, 拥有区间 [RangeStart, RangeEnd] 内的号码
type Ticket struct {
	State      uint8        `json:"state"`
	LotteryRef types.Pubkey `json:"lotteryRef"`
	Owner      types.Pubkey `json:"owner"`
	RangeStart uint64       `json:"rangeStart"`
	RangeEnd   uint64       `json:"rangeEnd"`
}

// Pack 编码到 dst, 长度必须是 TicketLen
func (t *Ticket) Pack(dst []byte) error {
	c, err := newCursor(dst, TicketSchema)
	if err != nil {
		return err
	}
	c.putU8(t.State)
	c.putPubkey(t.LotteryRef)
	c.putPubkey(t.Owner)
	c.putU64(t.RangeStart)
	c.putU64(t.RangeEnd)
	return nil
}

// Bytes 编码
func (t *Ticket) Bytes() []byte {
	b := make([]byte, TicketLen)
	if err := t.Pack(b); err != nil {
		panic(err)
	}
	return b
}

// UnpackTicketUnchecked 解码, 不检查状态
func UnpackTicketUnchecked(data []byte) (*Ticket, error) {
	c, err := newCursor(data, TicketSchema)
	if err != nil {
		return nil, err
	}
	return &Ticket{
		State:      c.u8(),
		LotteryRef: c.pubkey(),
		Owner:      c.pubkey(),
		RangeStart: c.u64(),
		RangeEnd:   c.u64(),
	}, nil
}

// UnpackTicket 解码已初始化的 Ticket
func UnpackTicket(data []byte) (*Ticket, error) {
	t, err := UnpackTicketUnchecked(data)
	if err != nil {
		return nil, err
	}
	switch t.State {
	case StateTicket:
		return t, nil
	case StateUninitialized:
		return nil, dapp.ErrUninitializedAccount
	}
	return nil, dapp.ErrInvalidAccountData
}

// Contains 号码是否在区间内
func (t *Ticket) Contains(number uint64) bool {
	return t.RangeStart <= number && number <= t.RangeEnd
}
