// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package crypto ed25519 私钥, 签名以及私钥文件
package crypto

import (
	"crypto/rand"

	"github.com/33cn/lottery/types"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ed25519"
)

// SignNameED25519 签名算法名称
const SignNameED25519 = "ed25519"

//PrivKey ed25519 私钥, 实现 types.Signer
type PrivKey struct {
	key ed25519.PrivateKey
}

// GenKey 随机生成私钥
func GenKey() (*PrivKey, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &PrivKey{key: priv}, nil
}

// PrivKeyFromBytes 64 字节私钥, 或者 32 字节种子
func PrivKeyFromBytes(b []byte) (*PrivKey, error) {
	switch len(b) {
	case ed25519.PrivateKeySize:
		priv := ed25519.NewKeyFromSeed(b[:ed25519.SeedSize])
		if !priv.Equal(ed25519.PrivateKey(b)) {
			return nil, errors.Wrap(types.ErrKeyFileFormat, "public half mismatch")
		}
		return &PrivKey{key: priv}, nil
	case ed25519.SeedSize:
		return &PrivKey{key: ed25519.NewKeyFromSeed(b)}, nil
	}
	return nil, errors.Wrapf(types.ErrKeyFileFormat, "key length %d", len(b))
}

//Bytes 64 字节 seed||pubkey
func (priv *PrivKey) Bytes() []byte {
	return append([]byte(nil), priv.key...)
}

//Sign 签名
func (priv *PrivKey) Sign(msg []byte) []byte {
	return ed25519.Sign(priv.key, msg)
}

//Pubkey 公钥即账户地址
func (priv *PrivKey) Pubkey() types.Pubkey {
	var key types.Pubkey
	copy(key[:], priv.key.Public().(ed25519.PublicKey))
	return key
}

// Verify 验证签名
func Verify(pub types.Pubkey, msg, sig []byte) bool {
	if len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub[:]), msg, sig)
}
