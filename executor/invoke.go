// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor

import (
	"bytes"
	"fmt"
	"math/bits"
	"sort"
	"strings"

	"github.com/33cn/lottery/common/address"
	"github.com/33cn/lottery/metrics"
	"github.com/33cn/lottery/system/dapp"
	"github.com/33cn/lottery/types"
	"github.com/pkg/errors"
)

// frame 一条指令 (顶层或者跨程序调用) 的执行现场
type frame struct {
	programID types.Pubkey
	infos     []*dapp.AccountInfo
	byKey     map[types.Pubkey]*dapp.AccountInfo
	pre       map[types.Pubkey]*types.Account
}

func (f *frame) uniqueKeys() []types.Pubkey {
	keys := make([]types.Pubkey, 0, len(f.byKey))
	for k := range f.byKey {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// txContext 一笔交易的账户工作集以及调用栈, 实现 dapp.Context
type txContext struct {
	state    *StateDB
	accounts map[types.Pubkey]*types.Account
	// 首次加载时数据库中的账户, 用于维护程序索引
	orig  map[types.Pubkey]*types.Account
	stack []*frame
	logs  []string
}

func newTxContext(state *StateDB) *txContext {
	return &txContext{
		state:    state,
		accounts: make(map[types.Pubkey]*types.Account),
		orig:     make(map[types.Pubkey]*types.Account),
	}
}

func (c *txContext) load(key types.Pubkey) (*types.Account, error) {
	if acc, ok := c.accounts[key]; ok {
		return acc, nil
	}
	acc, err := loadAccount(c.state, key)
	if err == types.ErrNotFound {
		// 不存在的账户视为空账户, 归系统程序所有
		c.orig[key] = nil
		acc = &types.Account{}
	} else if err != nil {
		return nil, err
	} else {
		c.orig[key] = acc.Clone()
	}
	c.accounts[key] = acc
	return acc, nil
}

func (c *txContext) newFrame(programID types.Pubkey, metas []types.AccountMeta) (*frame, error) {
	f := &frame{
		programID: programID,
		byKey:     make(map[types.Pubkey]*dapp.AccountInfo),
		pre:       make(map[types.Pubkey]*types.Account),
	}
	for _, meta := range metas {
		if info, ok := f.byKey[meta.Pubkey]; ok {
			info.IsSigner = info.IsSigner || meta.IsSigner
			info.IsWritable = info.IsWritable || meta.IsWritable
			f.infos = append(f.infos, info)
			continue
		}
		acc, err := c.load(meta.Pubkey)
		if err != nil {
			return nil, err
		}
		info := &dapp.AccountInfo{
			Key:        meta.Pubkey,
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
			Lamports:   acc.Lamports,
			Owner:      acc.Owner,
			Executable: acc.Executable,
			Data:       append([]byte(nil), acc.Data...),
		}
		f.byKey[meta.Pubkey] = info
		f.pre[meta.Pubkey] = acc.Clone()
		f.infos = append(f.infos, info)
	}
	return f, nil
}

// execute 执行一条指令, 成功后把修改合并到工作集
func (c *txContext) execute(programID types.Pubkey, metas []types.AccountMeta, data []byte) error {
	if len(c.stack) >= types.MaxInstructionDepth {
		return errors.Wrapf(types.ErrCallDepth, "depth %d", len(c.stack)+1)
	}
	// 只允许直接调用自己, 不允许 A -> B -> A
	if n := len(c.stack); n > 0 && c.stack[n-1].programID != programID {
		for _, f := range c.stack {
			if f.programID == programID {
				return errors.Wrapf(types.ErrReentrancy, "program %s", programID)
			}
		}
	}
	driver, err := dapp.LoadDriver(programID)
	if err != nil {
		return errors.Wrapf(err, "program %s", programID)
	}
	f, err := c.newFrame(programID, metas)
	if err != nil {
		return err
	}
	name := driver.GetName()
	metrics.InstructionMeter(name).Mark(1)

	c.stack = append(c.stack, f)
	err = driver.Process(c, programID, f.infos, data)
	c.stack = c.stack[:len(c.stack)-1]
	if err != nil {
		metrics.InstructionFailMeter(name).Mark(1)
		elog.Debug("execute", "program", name, "depth", len(c.stack)+1, "err", err)
		c.logs = append(c.logs, fmt.Sprintf("%s failed: %v", name, err))
		return err
	}
	return c.commitFrame(f)
}

// verify 程序只能修改自己名下账户的数据和归属, 只能扣减自己名下账户的余额,
// 只读账户不能有任何修改, 整条指令余额守恒
func verify(f *frame) error {
	var preSum, postSum, carry uint64
	for _, key := range f.uniqueKeys() {
		info := f.byKey[key]
		pre := f.pre[key]
		post := info.Account()

		preSum, carry = bits.Add64(preSum, pre.Lamports, 0)
		if carry != 0 {
			return types.ErrUnbalancedInstruction
		}
		postSum, carry = bits.Add64(postSum, post.Lamports, 0)
		if carry != 0 {
			return types.ErrUnbalancedInstruction
		}

		if !info.IsWritable && !pre.Equal(post) {
			return errors.Wrapf(types.ErrReadonlyModified, "account %s", key)
		}
		if pre.Executable != post.Executable {
			return errors.Wrapf(types.ErrReadonlyModified, "executable flag of %s", key)
		}
		if len(post.Data) > types.MaxAccountDataLen {
			return errors.Wrapf(dapp.ErrInvalidArgument, "account %s data length %d", key, len(post.Data))
		}
		if pre.Owner == f.programID {
			continue
		}
		if pre.Owner != post.Owner {
			return errors.Wrapf(types.ErrModifiedOwner, "account %s", key)
		}
		if !bytes.Equal(pre.Data, post.Data) {
			return errors.Wrapf(types.ErrExternalDataModified, "account %s", key)
		}
		if post.Lamports < pre.Lamports {
			return errors.Wrapf(types.ErrExternalLamportSpend, "account %s", key)
		}
	}
	if preSum != postSum {
		return errors.Wrapf(types.ErrUnbalancedInstruction, "before %d after %d", preSum, postSum)
	}
	return nil
}

func (c *txContext) commitFrame(f *frame) error {
	if err := verify(f); err != nil {
		elog.Error("commitFrame", "program", dapp.ProgramName(f.programID), "err", err)
		return err
	}
	for key, info := range f.byKey {
		post := info.Account()
		c.accounts[key] = post
		f.pre[key] = post.Clone()
	}
	return nil
}

// refresh 跨程序调用返回后, 调用者看到被调用者的修改
func (c *txContext) refresh(f *frame) {
	for key, info := range f.byKey {
		acc := c.accounts[key]
		info.Lamports = acc.Lamports
		info.Owner = acc.Owner
		info.Executable = acc.Executable
		info.Data = append([]byte(nil), acc.Data...)
		f.pre[key] = acc.Clone()
	}
}

// Invoke dapp.Context
func (c *txContext) Invoke(ix *types.Instruction) error {
	return c.InvokeSigned(ix)
}

// InvokeSigned dapp.Context
func (c *txContext) InvokeSigned(ix *types.Instruction, signerSeeds ...[][]byte) error {
	if len(c.stack) == 0 {
		panic("InvokeSigned outside of an instruction")
	}
	caller := c.stack[len(c.stack)-1]
	// 先把调用者目前的修改合并进工作集
	if err := c.commitFrame(caller); err != nil {
		return err
	}
	signers := make(map[types.Pubkey]bool)
	for _, seeds := range signerSeeds {
		key, err := address.CreateProgramAddress(seeds, caller.programID)
		if err != nil {
			return errors.Wrapf(dapp.ErrInvalidArgument, "signer seeds: %v", err)
		}
		signers[key] = true
	}
	for _, meta := range ix.Accounts {
		info, ok := caller.byKey[meta.Pubkey]
		if !ok {
			return errors.Wrapf(types.ErrAccountNotInTx, "account %s", meta.Pubkey)
		}
		if meta.IsWritable && !info.IsWritable {
			return errors.Wrapf(types.ErrPrivilegeEscalation, "writable %s", meta.Pubkey)
		}
		if meta.IsSigner && !info.IsSigner && !signers[meta.Pubkey] {
			return errors.Wrapf(types.ErrPrivilegeEscalation, "signer %s", meta.Pubkey)
		}
	}
	if err := c.execute(ix.ProgramID, ix.Accounts, ix.Data); err != nil {
		return err
	}
	c.refresh(caller)
	return nil
}

// Log dapp.Context
func (c *txContext) Log(msg string, ctx ...interface{}) {
	program := "unknown"
	if len(c.stack) > 0 {
		program = dapp.ProgramName(c.stack[len(c.stack)-1].programID)
	}
	var sb strings.Builder
	sb.WriteString(program)
	sb.WriteString(": ")
	sb.WriteString(msg)
	for i := 0; i+1 < len(ctx); i += 2 {
		fmt.Fprintf(&sb, " %v=%v", ctx[i], ctx[i+1])
	}
	c.logs = append(c.logs, sb.String())
	elog.Debug(msg, append([]interface{}{"program", program}, ctx...)...)
}

// flush 把工作集写入状态, 零余额账户被删除, 同时维护 程序 -> 账户 的索引
func (c *txContext) flush() error {
	keys := make([]types.Pubkey, 0, len(c.accounts))
	for k := range c.accounts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	for _, key := range keys {
		acc := c.accounts[key]
		orig := c.orig[key]
		if orig != nil && orig.Equal(acc) {
			continue
		}
		if orig != nil && (acc.Lamports == 0 || orig.Owner != acc.Owner) {
			if err := c.state.Delete(types.OwnerIndexKey(orig.Owner, key)); err != nil {
				return err
			}
		}
		if acc.Lamports == 0 {
			if orig != nil {
				if err := c.state.Delete(types.AccountKey(key)); err != nil {
					return err
				}
			}
			continue
		}
		if err := saveAccount(c.state, key, acc); err != nil {
			return err
		}
		if orig == nil || orig.Owner != acc.Owner {
			if err := c.state.Set(types.OwnerIndexKey(acc.Owner, key), key.Bytes()); err != nil {
				return err
			}
		}
	}
	return nil
}

func loadAccount(state *StateDB, key types.Pubkey) (*types.Account, error) {
	value, err := state.Get(types.AccountKey(key))
	if err != nil {
		return nil, err
	}
	return types.DecodeAccount(value)
}

func saveAccount(state *StateDB, key types.Pubkey, acc *types.Account) error {
	return state.Set(types.AccountKey(key), acc.Encode())
}
