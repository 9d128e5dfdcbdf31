// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// 账户, 交易, 回执的存储编码都是 protobuf wire 格式, 手写字段, 不依赖生成代码

type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

func decodeMessage(b []byte, field fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return errors.Wrap(ErrDecode, protowire.ParseError(n).Error())
		}
		b = b[n:]
		m, err := field(num, typ, b)
		if err != nil {
			return err
		}
		if m == 0 {
			// 未知字段直接跳过
			m = protowire.ConsumeFieldValue(num, typ, b)
		}
		if m < 0 {
			return errors.Wrapf(ErrDecode, "field %d: %s", num, protowire.ParseError(m))
		}
		b = b[m:]
	}
	return nil
}

func consumeVarint(typ protowire.Type, b []byte, v *uint64) (int, error) {
	if typ != protowire.VarintType {
		return 0, errors.Wrap(ErrDecode, "want varint")
	}
	x, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, errors.Wrap(ErrDecode, protowire.ParseError(n).Error())
	}
	*v = x
	return n, nil
}

func consumeBytes(typ protowire.Type, b []byte, v *[]byte) (int, error) {
	if typ != protowire.BytesType {
		return 0, errors.Wrap(ErrDecode, "want bytes")
	}
	x, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return 0, errors.Wrap(ErrDecode, protowire.ParseError(n).Error())
	}
	*v = append([]byte(nil), x...)
	return n, nil
}

func consumePubkey(typ protowire.Type, b []byte, key *Pubkey) (int, error) {
	var raw []byte
	n, err := consumeBytes(typ, b, &raw)
	if err != nil {
		return 0, err
	}
	*key, err = PubkeyFromBytes(raw)
	if err != nil {
		return 0, errors.Wrap(ErrDecode, err.Error())
	}
	return n, nil
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}
