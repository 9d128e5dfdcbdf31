// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package address 程序派生地址 (没有私钥的地址, 只能由程序签名)
package address

import (
	"errors"

	"filippo.io/edwards25519"
	"github.com/33cn/lottery/common"
	"github.com/33cn/lottery/types"
	lru "github.com/hashicorp/golang-lru"
)

// 派生参数限制
const (
	MaxSeeds   = 16
	MaxSeedLen = 32
)

var pdaMarker = []byte("ProgramDerivedAddress")

var (
	ErrMaxSeedLengthExceeded = errors.New("ErrMaxSeedLengthExceeded")
	ErrInvalidSeeds          = errors.New("ErrInvalidSeeds")
)

var findCache *lru.Cache

func init() {
	findCache, _ = lru.New(10240)
}

// IsOnCurve 是否是合法的 ed25519 公钥点; 派生地址必须不在曲线上, 因此不存在对应私钥
func IsOnCurve(b []byte) bool {
	if len(b) != types.PubkeyLen {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// CreateProgramAddress sha256(seeds || programID || "ProgramDerivedAddress"), 结果在曲线上时失败
func CreateProgramAddress(seeds [][]byte, programID types.Pubkey) (types.Pubkey, error) {
	if len(seeds) > MaxSeeds {
		return types.Pubkey{}, ErrMaxSeedLengthExceeded
	}
	parts := make([][]byte, 0, len(seeds)+2)
	for _, seed := range seeds {
		if len(seed) > MaxSeedLen {
			return types.Pubkey{}, ErrMaxSeedLengthExceeded
		}
		parts = append(parts, seed)
	}
	parts = append(parts, programID[:], pdaMarker)
	hash := common.Sha256Multi(parts...)
	if IsOnCurve(hash) {
		return types.Pubkey{}, ErrInvalidSeeds
	}
	var key types.Pubkey
	copy(key[:], hash)
	return key, nil
}

type found struct {
	key  types.Pubkey
	bump uint8
}

// FindProgramAddress 从 255 开始递减尝试 bump 种子, 返回第一个可用的地址. 计算量有点大，做一次cache
func FindProgramAddress(seeds [][]byte, programID types.Pubkey) (types.Pubkey, uint8) {
	ckey := cacheKey(seeds, programID)
	if v, ok := findCache.Get(ckey); ok {
		f := v.(found)
		return f.key, f.bump
	}
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{uint8(bump)}
		key, err := CreateProgramAddress(withBump, programID)
		if err == nil {
			findCache.Add(ckey, found{key: key, bump: uint8(bump)})
			return key, uint8(bump)
		}
		if err == ErrMaxSeedLengthExceeded {
			break
		}
	}
	panic("unable to find a viable program address bump seed")
}

func cacheKey(seeds [][]byte, programID types.Pubkey) string {
	var buf []byte
	for _, seed := range seeds {
		buf = append(buf, byte(len(seed)))
		buf = append(buf, seed...)
	}
	buf = append(buf, programID[:]...)
	return string(buf)
}
