// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"bytes"
	"encoding/json"

	"github.com/decred/base58"
)

// PubkeyLen 账户地址长度
const PubkeyLen = 32

// Pubkey ed25519 公钥或者程序派生地址
type Pubkey [PubkeyLen]byte

// PubkeyFromBytes 从字节构造地址, 长度必须是32
func PubkeyFromBytes(b []byte) (Pubkey, error) {
	var key Pubkey
	if len(b) != PubkeyLen {
		return key, ErrPubkeyLength
	}
	copy(key[:], b)
	return key, nil
}

// PubkeyFromString base58 字符串转地址
func PubkeyFromString(s string) (Pubkey, error) {
	dec := base58.Decode(s)
	if len(dec) == 0 && s != "" {
		return Pubkey{}, ErrPubkeyFormat
	}
	return PubkeyFromBytes(dec)
}

// MustPubkeyFromString only for compiled-in constants
func MustPubkeyFromString(s string) Pubkey {
	key, err := PubkeyFromString(s)
	if err != nil {
		panic("bad pubkey " + s + ": " + err.Error())
	}
	return key
}

func (k Pubkey) String() string {
	return base58.Encode(k[:])
}

// Bytes returns a copy of the key bytes
func (k Pubkey) Bytes() []byte {
	b := make([]byte, PubkeyLen)
	copy(b, k[:])
	return b
}

// IsZero 是否是全零地址
func (k Pubkey) IsZero() bool {
	return k == Pubkey{}
}

// Less 字节序比较
func (k Pubkey) Less(other Pubkey) bool {
	return bytes.Compare(k[:], other[:]) < 0
}

// MarshalJSON base58
func (k Pubkey) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON base58
func (k *Pubkey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	key, err := PubkeyFromString(s)
	if err != nil {
		return err
	}
	*k = key
	return nil
}
