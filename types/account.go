// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"bytes"

	"google.golang.org/protobuf/encoding/protowire"
)

// Account 账本上的一个账户: 余额, 所属程序, 以及程序私有的数据
type Account struct {
	Lamports   uint64
	Owner      Pubkey
	Executable bool
	Data       []byte
}

// Clone 深拷贝
func (acc *Account) Clone() *Account {
	if acc == nil {
		return nil
	}
	c := *acc
	c.Data = append([]byte(nil), acc.Data...)
	return &c
}

// Equal 判断两个账户内容是否一致
func (acc *Account) Equal(other *Account) bool {
	if acc == nil || other == nil {
		return acc == other
	}
	return acc.Lamports == other.Lamports &&
		acc.Owner == other.Owner &&
		acc.Executable == other.Executable &&
		bytes.Equal(acc.Data, other.Data)
}

// Encode 存储编码
func (acc *Account) Encode() []byte {
	var b []byte
	b = appendVarintField(b, 1, acc.Lamports)
	b = appendBytesField(b, 2, acc.Owner[:])
	b = appendVarintField(b, 3, protowire.EncodeBool(acc.Executable))
	b = appendBytesField(b, 4, acc.Data)
	return b
}

// DecodeAccount 解码存储中的账户
func DecodeAccount(b []byte) (*Account, error) {
	acc := &Account{}
	err := decodeMessage(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeVarint(typ, b, &acc.Lamports)
		case 2:
			return consumePubkey(typ, b, &acc.Owner)
		case 3:
			var v uint64
			n, err := consumeVarint(typ, b, &v)
			acc.Executable = protowire.DecodeBool(v)
			return n, err
		case 4:
			return consumeBytes(typ, b, &acc.Data)
		}
		return 0, nil
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// KeyedAccount 带地址的账户, 查询接口返回
type KeyedAccount struct {
	Pubkey  Pubkey
	Account *Account
}

// Memcmp 按偏移比较账户数据
type Memcmp struct {
	Offset int
	Bytes  []byte
}

// AccountFilter 程序账户查询条件, Memcmp 与 DataSize 至少设置一个
type AccountFilter struct {
	Memcmp   *Memcmp
	DataSize *int
}

// FilterMemcmp 数据在 offset 处以 b 开头
func FilterMemcmp(offset int, b []byte) AccountFilter {
	return AccountFilter{Memcmp: &Memcmp{Offset: offset, Bytes: b}}
}

// FilterDataSize 数据长度等于 size
func FilterDataSize(size int) AccountFilter {
	return AccountFilter{DataSize: &size}
}

// Match 账户数据是否满足条件
func (f AccountFilter) Match(data []byte) bool {
	if f.DataSize != nil && len(data) != *f.DataSize {
		return false
	}
	if f.Memcmp != nil {
		end := f.Memcmp.Offset + len(f.Memcmp.Bytes)
		if f.Memcmp.Offset < 0 || end > len(data) {
			return false
		}
		if !bytes.Equal(data[f.Memcmp.Offset:end], f.Memcmp.Bytes) {
			return false
		}
	}
	return true
}
