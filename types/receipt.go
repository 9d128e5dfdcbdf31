// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import "google.golang.org/protobuf/encoding/protowire"

// Receipt 交易执行回执
type Receipt struct {
	// Ty ExecOk 执行成功; ExecPack 执行失败但手续费已扣
	Ty   int32
	Slot uint64
	Fee  uint64
	Logs []string
	Err  string
}

// Encode 存储编码
func (r *Receipt) Encode() []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(r.Ty))
	b = appendVarintField(b, 2, r.Slot)
	b = appendVarintField(b, 3, r.Fee)
	for _, l := range r.Logs {
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendString(b, l)
	}
	b = appendBytesField(b, 5, []byte(r.Err))
	return b
}

// DecodeReceipt 解码回执
func DecodeReceipt(b []byte) (*Receipt, error) {
	r := &Receipt{}
	err := decodeMessage(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		var v uint64
		var raw []byte
		switch num {
		case 1:
			n, err := consumeVarint(typ, b, &v)
			r.Ty = int32(v)
			return n, err
		case 2:
			return consumeVarint(typ, b, &r.Slot)
		case 3:
			return consumeVarint(typ, b, &r.Fee)
		case 4:
			n, err := consumeBytes(typ, b, &raw)
			r.Logs = append(r.Logs, string(raw))
			return n, err
		case 5:
			n, err := consumeBytes(typ, b, &raw)
			r.Err = string(raw)
			return n, err
		}
		return 0, nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}
