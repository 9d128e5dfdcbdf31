// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"github.com/33cn/lottery/common"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ed25519"
	"google.golang.org/protobuf/encoding/protowire"
)

// AccountMeta 指令引用的账户以及权限
type AccountMeta struct {
	Pubkey     Pubkey
	IsSigner   bool
	IsWritable bool
}

// NewAccountMeta 可写账户
func NewAccountMeta(key Pubkey, isSigner bool) AccountMeta {
	return AccountMeta{Pubkey: key, IsSigner: isSigner, IsWritable: true}
}

// NewReadonlyAccountMeta 只读账户
func NewReadonlyAccountMeta(key Pubkey, isSigner bool) AccountMeta {
	return AccountMeta{Pubkey: key, IsSigner: isSigner}
}

// Instruction 调用一个程序: 程序地址, 有序账户列表, 不透明的输入数据
type Instruction struct {
	ProgramID Pubkey
	Accounts  []AccountMeta
	Data      []byte
}

func (ix *Instruction) encode() []byte {
	var b []byte
	b = appendBytesField(b, 1, ix.ProgramID[:])
	for _, meta := range ix.Accounts {
		var m []byte
		m = appendBytesField(m, 1, meta.Pubkey[:])
		m = appendVarintField(m, 2, protowire.EncodeBool(meta.IsSigner))
		m = appendVarintField(m, 3, protowire.EncodeBool(meta.IsWritable))
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, m)
	}
	b = appendBytesField(b, 3, ix.Data)
	return b
}

// Signature 签名
type Signature struct {
	Pubkey    Pubkey
	Signature []byte
}

// Signer 能够对交易签名的私钥
type Signer interface {
	Pubkey() Pubkey
	Sign(msg []byte) []byte
}

// Transaction 一笔交易由若干指令组成, 要么全部成功, 要么全部回滚.
// Payer 为空时第一个签名者支付手续费
type Transaction struct {
	Instructions []*Instruction
	// Nonce 用于区分内容相同的两笔交易
	Nonce      uint64
	Payer      Pubkey
	Signatures []*Signature
}

// NewTransaction 构造交易
func NewTransaction(nonce uint64, ixs ...*Instruction) *Transaction {
	return &Transaction{Instructions: ixs, Nonce: nonce}
}

// Message 被签名的内容
func (tx *Transaction) Message() []byte {
	var b []byte
	for _, ix := range tx.Instructions {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, ix.encode())
	}
	b = appendVarintField(b, 2, tx.Nonce)
	if !tx.Payer.IsZero() {
		b = appendBytesField(b, 3, tx.Payer[:])
	}
	return b
}

// Hash 交易哈希
func (tx *Transaction) Hash() []byte {
	return common.Sha256(tx.Message())
}

// Signers 需要签名的地址, Payer 在最前, 其余按首次出现的顺序
func (tx *Transaction) Signers() []Pubkey {
	var keys []Pubkey
	seen := make(map[Pubkey]bool)
	if !tx.Payer.IsZero() {
		seen[tx.Payer] = true
		keys = append(keys, tx.Payer)
	}
	for _, ix := range tx.Instructions {
		for _, meta := range ix.Accounts {
			if meta.IsSigner && !seen[meta.Pubkey] {
				seen[meta.Pubkey] = true
				keys = append(keys, meta.Pubkey)
			}
		}
	}
	return keys
}

// FeePayer 手续费支付者
func (tx *Transaction) FeePayer() (Pubkey, error) {
	signers := tx.Signers()
	if len(signers) == 0 {
		return Pubkey{}, ErrNoSigner
	}
	return signers[0], nil
}

// Sign 用给定私钥签名, 不需要签名的私钥被忽略
func (tx *Transaction) Sign(keys ...Signer) {
	msg := tx.Message()
	required := make(map[Pubkey]bool)
	for _, key := range tx.Signers() {
		required[key] = true
	}
	for _, key := range keys {
		pub := key.Pubkey()
		if !required[pub] || tx.signedBy(pub) {
			continue
		}
		tx.Signatures = append(tx.Signatures, &Signature{Pubkey: pub, Signature: key.Sign(msg)})
	}
}

func (tx *Transaction) signedBy(key Pubkey) bool {
	for _, sig := range tx.Signatures {
		if sig.Pubkey == key {
			return true
		}
	}
	return false
}

// CheckSign 所有需要签名的地址都有有效签名
func (tx *Transaction) CheckSign() error {
	if len(tx.Instructions) == 0 {
		return ErrEmptyTx
	}
	signers := tx.Signers()
	if len(signers) == 0 {
		return ErrNoSigner
	}
	msg := tx.Message()
	valid := make(map[Pubkey]bool)
	for _, sig := range tx.Signatures {
		if len(sig.Signature) != ed25519.SignatureSize {
			return errors.Wrapf(ErrSign, "signature length %d", len(sig.Signature))
		}
		if !ed25519.Verify(ed25519.PublicKey(sig.Pubkey[:]), msg, sig.Signature) {
			return errors.Wrapf(ErrSign, "bad signature of %s", sig.Pubkey)
		}
		valid[sig.Pubkey] = true
	}
	for _, key := range signers {
		if !valid[key] {
			return errors.Wrapf(ErrSign, "missing signature of %s", key)
		}
	}
	return nil
}

// IsSigned 地址是否在交易中有有效签名 (CheckSign 之后调用)
func (tx *Transaction) IsSigned(key Pubkey) bool {
	return tx.signedBy(key)
}
