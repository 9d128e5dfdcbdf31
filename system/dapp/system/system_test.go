// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package system

import (
	"testing"

	"github.com/33cn/lottery/system/dapp"
	"github.com/33cn/lottery/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logCtx struct {
	logs []string
}

func (c *logCtx) Invoke(ix *types.Instruction) error { return errors.New("no cpi") }
func (c *logCtx) InvokeSigned(ix *types.Instruction, seeds ...[][]byte) error {
	return errors.New("no cpi")
}
func (c *logCtx) Log(msg string, ctx ...interface{}) { c.logs = append(c.logs, msg) }

func infos(ix *types.Instruction, lamports ...uint64) []*dapp.AccountInfo {
	var out []*dapp.AccountInfo
	for i, meta := range ix.Accounts {
		info := &dapp.AccountInfo{Key: meta.Pubkey, IsSigner: meta.IsSigner, IsWritable: meta.IsWritable}
		if i < len(lamports) {
			info.Lamports = lamports[i]
		}
		out = append(out, info)
	}
	return out
}

func TestCreateAccount(t *testing.T) {
	from, to, owner := types.Pubkey{1}, types.Pubkey{2}, types.Pubkey{3}
	ix := CreateAccount(from, to, 100, 10, owner)
	accounts := infos(ix, 150)
	ctx := &logCtx{}
	require.NoError(t, newSystem().Process(ctx, ProgramID, accounts, ix.Data))
	assert.Equal(t, uint64(50), accounts[0].Lamports)
	assert.Equal(t, uint64(100), accounts[1].Lamports)
	assert.Len(t, accounts[1].Data, 10)
	assert.Equal(t, owner, accounts[1].Owner)
	assert.Len(t, ctx.logs, 1)

	// 再次创建同一个账户
	accounts[0].Lamports = 1000
	err := newSystem().Process(ctx, ProgramID, accounts, ix.Data)
	assert.Equal(t, dapp.ErrAccountAlreadyInUse, errors.Cause(err))
}

func TestCreateAccountErrors(t *testing.T) {
	from, to := types.Pubkey{1}, types.Pubkey{2}
	ix := CreateAccount(from, to, 100, 10, types.Pubkey{3})

	accounts := infos(ix, 99)
	err := newSystem().Process(&logCtx{}, ProgramID, accounts, ix.Data)
	assert.Equal(t, dapp.ErrInsufficientFunds, errors.Cause(err))

	accounts = infos(ix, 1000)
	accounts[1].IsSigner = false
	err = newSystem().Process(&logCtx{}, ProgramID, accounts, ix.Data)
	assert.Equal(t, dapp.ErrMissingRequiredSignature, errors.Cause(err))

	err = newSystem().Process(&logCtx{}, ProgramID, accounts[:1], ix.Data)
	assert.Equal(t, dapp.ErrNotEnoughAccountKeys, errors.Cause(err))

	err = newSystem().Process(&logCtx{}, types.Pubkey{9}, accounts, ix.Data)
	assert.Equal(t, dapp.ErrIncorrectProgramID, err)

	err = newSystem().Process(&logCtx{}, ProgramID, accounts, ix.Data[:10])
	assert.Equal(t, dapp.ErrInvalidInstructionData, err)
}

func TestTransferAndAssign(t *testing.T) {
	from, to := types.Pubkey{1}, types.Pubkey{2}
	ix := Transfer(from, to, 30)
	accounts := infos(ix, 100, 5)
	require.NoError(t, newSystem().Process(&logCtx{}, ProgramID, accounts, ix.Data))
	assert.Equal(t, uint64(70), accounts[0].Lamports)
	assert.Equal(t, uint64(35), accounts[1].Lamports)

	// 有数据的账户不能转出
	accounts[0].Data = []byte{1}
	err := newSystem().Process(&logCtx{}, ProgramID, accounts, ix.Data)
	assert.Equal(t, dapp.ErrInvalidArgument, errors.Cause(err))

	ix = Assign(from, types.Pubkey{7})
	accounts = infos(ix)
	require.NoError(t, newSystem().Process(&logCtx{}, ProgramID, accounts, ix.Data))
	assert.Equal(t, types.Pubkey{7}, accounts[0].Owner)
}

func TestAllocate(t *testing.T) {
	acc := types.Pubkey{4}
	ix := Allocate(acc, 73)
	accounts := infos(ix, 10)
	require.NoError(t, newSystem().Process(&logCtx{}, ProgramID, accounts, ix.Data))
	assert.Len(t, accounts[0].Data, 73)
	assert.Equal(t, uint64(10), accounts[0].Lamports)

	// 已有数据
	err := newSystem().Process(&logCtx{}, ProgramID, accounts, ix.Data)
	assert.Equal(t, dapp.ErrAccountAlreadyInUse, errors.Cause(err))

	accounts = infos(ix, 10)
	accounts[0].IsSigner = false
	err = newSystem().Process(&logCtx{}, ProgramID, accounts, ix.Data)
	assert.Equal(t, dapp.ErrMissingRequiredSignature, errors.Cause(err))

	accounts = infos(Allocate(acc, types.MaxAccountDataLen+1), 10)
	err = newSystem().Process(&logCtx{}, ProgramID, accounts, Allocate(acc, types.MaxAccountDataLen+1).Data)
	assert.Equal(t, dapp.ErrInvalidArgument, errors.Cause(err))
}
