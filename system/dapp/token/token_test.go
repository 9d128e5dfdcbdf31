// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package token_test

import (
	"testing"

	"github.com/33cn/lottery/system/dapp"
	"github.com/33cn/lottery/system/dapp/ata"
	"github.com/33cn/lottery/system/dapp/system"
	"github.com/33cn/lottery/system/dapp/token"
	"github.com/33cn/lottery/types"
	"github.com/33cn/lottery/util/testnode"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintTransferClose(t *testing.T) {
	mock := testnode.New()
	defer mock.Close()

	auth := mock.NewFundedKey(types.LamportsPerSol)
	alice := mock.NewFundedKey(types.LamportsPerSol)
	bob := mock.NewFundedKey(types.LamportsPerSol)

	mint, err := mock.CreateMint(auth, auth.Pubkey(), 6)
	require.NoError(t, err)
	aliceAcc, err := mock.CreateAssociatedAccount(alice, alice.Pubkey(), mint)
	require.NoError(t, err)
	bobAcc, err := mock.CreateTokenAccount(bob, mint, bob.Pubkey())
	require.NoError(t, err)

	require.NoError(t, mock.MintTo(auth, mint, aliceAcc, 1000))
	assert.Equal(t, uint64(1000), mock.TokenBalance(aliceAcc))

	// 非 authority 不能增发
	err = mock.MintTo(alice, mint, aliceAcc, 1)
	assert.Equal(t, token.ErrOwnerMismatch, errors.Cause(err))

	_, err = mock.SendTx([]types.Signer{alice}, token.Transfer(aliceAcc, bobAcc, alice.Pubkey(), 400))
	require.NoError(t, err)
	assert.Equal(t, uint64(600), mock.TokenBalance(aliceAcc))
	assert.Equal(t, uint64(400), mock.TokenBalance(bobAcc))

	_, err = mock.SendTx([]types.Signer{alice}, token.Transfer(aliceAcc, bobAcc, alice.Pubkey(), 601))
	assert.Equal(t, token.ErrInsufficientFunds, errors.Cause(err))

	// bob 不是 alice 账户的 owner
	_, err = mock.SendTx([]types.Signer{bob}, token.Transfer(aliceAcc, bobAcc, bob.Pubkey(), 1))
	assert.Equal(t, token.ErrOwnerMismatch, errors.Cause(err))

	// 有余额不能关闭
	_, err = mock.SendTx([]types.Signer{bob}, token.CloseAccount(bobAcc, bob.Pubkey(), bob.Pubkey()))
	assert.Equal(t, token.ErrNonNativeHasBalance, errors.Cause(err))

	_, err = mock.SendTx([]types.Signer{bob}, token.Transfer(bobAcc, aliceAcc, bob.Pubkey(), 400))
	require.NoError(t, err)
	before := mock.Balance(bob.Pubkey())
	rent := mock.Balance(bobAcc)
	_, err = mock.SendTx([]types.Signer{bob}, token.CloseAccount(bobAcc, bob.Pubkey(), bob.Pubkey()))
	require.NoError(t, err)
	_, err = mock.GetExec().GetAccount(bobAcc)
	assert.Equal(t, types.ErrNotFound, err)
	assert.Equal(t, before+rent-mock.GetExec().TxFee(), mock.Balance(bob.Pubkey()))

	mintAcc, err := mock.GetExec().GetAccount(mint)
	require.NoError(t, err)
	m, err := token.UnpackMint(mintAcc.Data)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), m.Supply)
	assert.Equal(t, uint8(6), m.Decimals)
}

func TestAssociatedAccount(t *testing.T) {
	mock := testnode.New()
	defer mock.Close()

	payer := mock.NewFundedKey(types.LamportsPerSol)
	mint, err := mock.CreateMint(payer, payer.Pubkey(), 0)
	require.NoError(t, err)

	// 钱包地址可以是任意地址, 包括程序派生地址
	wallet := types.Pubkey{0x42}
	acc, err := mock.CreateAssociatedAccount(payer, wallet, mint)
	require.NoError(t, err)
	assert.Equal(t, ata.Address(wallet, mint), acc)

	info, err := mock.GetExec().GetAccount(acc)
	require.NoError(t, err)
	assert.Equal(t, token.ProgramID, info.Owner)
	assert.Equal(t, mock.GetExec().MinimumBalance(token.AccountLen), info.Lamports)
	tacc, err := token.UnpackAccount(info.Data)
	require.NoError(t, err)
	assert.Equal(t, wallet, tacc.Owner)
	assert.Equal(t, mint, tacc.Mint)

	_, err = mock.CreateAssociatedAccount(payer, wallet, mint)
	assert.Equal(t, dapp.ErrAccountAlreadyInUse, errors.Cause(err))

	// 地址不匹配
	bad := ata.Create(payer.Pubkey(), wallet, mint)
	bad.Accounts[1].Pubkey = types.Pubkey{0x43}
	_, err = mock.SendTx([]types.Signer{payer}, bad)
	assert.Equal(t, dapp.ErrInvalidArgument, errors.Cause(err))
}

func TestAssociatedAccountPrefunded(t *testing.T) {
	mock := testnode.New()
	defer mock.Close()

	payer := mock.NewFundedKey(types.LamportsPerSol)
	mint, err := mock.CreateMint(payer, payer.Pubkey(), 0)
	require.NoError(t, err)
	minimum := mock.GetExec().MinimumBalance(token.AccountLen)

	// 地址上预先有少量余额: 只补足差额
	wallet := types.Pubkey{0x45}
	addr := ata.Address(wallet, mint)
	_, err = mock.SendTx([]types.Signer{payer}, system.Transfer(payer.Pubkey(), addr, 1))
	require.NoError(t, err)
	before := mock.Balance(payer.Pubkey())
	_, err = mock.CreateAssociatedAccount(payer, wallet, mint)
	require.NoError(t, err)
	assert.Equal(t, before-mock.GetExec().TxFee()-(minimum-1), mock.Balance(payer.Pubkey()))
	info, err := mock.GetExec().GetAccount(addr)
	require.NoError(t, err)
	assert.Equal(t, token.ProgramID, info.Owner)
	assert.Equal(t, minimum, info.Lamports)
	tacc, err := token.UnpackAccount(info.Data)
	require.NoError(t, err)
	assert.Equal(t, wallet, tacc.Owner)

	// 余额已经超过租金: 不再转账
	wallet = types.Pubkey{0x46}
	addr = ata.Address(wallet, mint)
	_, err = mock.SendTx([]types.Signer{payer}, system.Transfer(payer.Pubkey(), addr, minimum+7))
	require.NoError(t, err)
	before = mock.Balance(payer.Pubkey())
	_, err = mock.CreateAssociatedAccount(payer, wallet, mint)
	require.NoError(t, err)
	assert.Equal(t, before-mock.GetExec().TxFee(), mock.Balance(payer.Pubkey()))
	assert.Equal(t, minimum+7, mock.Balance(addr))
	assert.Equal(t, uint64(0), mock.TokenBalance(addr))
}

func TestUninitializedMint(t *testing.T) {
	mock := testnode.New()
	defer mock.Close()

	payer := mock.NewFundedKey(types.LamportsPerSol)
	_, err := mock.CreateTokenAccount(payer, types.Pubkey{0x44}, payer.Pubkey())
	assert.Equal(t, dapp.ErrIncorrectProgramID, errors.Cause(err))
}
