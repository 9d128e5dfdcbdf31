// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package executor 交易执行: 验签, 扣手续费, 逐条执行指令, 原子提交
package executor

import (
	"encoding/binary"
	"sort"
	"sync"
	"time"

	"github.com/33cn/lottery/common"
	dbm "github.com/33cn/lottery/common/db"
	"github.com/33cn/lottery/metrics"
	"github.com/33cn/lottery/system/dapp"
	"github.com/33cn/lottery/system/dapp/sysvar"
	"github.com/33cn/lottery/system/dapp/system"
	"github.com/33cn/lottery/types"
	log "github.com/inconshreveable/log15"
	"github.com/pkg/errors"
)

var elog = log.New("module", "execs")

// NativeLoaderID 内置程序账户的所属者
var NativeLoaderID = types.MustPubkeyFromString("NativeLoader1111111111111111111111111111111")

// Executor 单线程执行交易, 每笔交易之后状态落盘
type Executor struct {
	mu       sync.Mutex
	db       dbm.DB
	cfg      *types.Ledger
	clock    sysvar.Clock
	rent     sysvar.Rent
	lastHash []byte
}

// New 打开账本, 空数据库时写入创世状态
func New(db dbm.DB, cfg *types.Ledger) (*Executor, error) {
	if cfg == nil {
		cfg = &types.Ledger{}
	}
	if cfg.TxFee == 0 {
		cfg.TxFee = types.DefaultTxFee
	}
	e := &Executor{
		db:  db,
		cfg: cfg,
		rent: sysvar.Rent{
			LamportsPerByteYear: cfg.LamportsPerByteYear,
			ExemptionYears:      cfg.ExemptionYears,
		},
	}
	state := NewStateDB(db)
	acc, err := loadAccount(state, sysvar.ClockID)
	switch err {
	case nil:
		clock, err := sysvar.DecodeClock(acc.Data)
		if err != nil {
			return nil, errors.Wrap(err, "load clock")
		}
		e.clock = *clock
	case types.ErrNotFound:
		if err := e.genesis(state); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	// 程序账户随注册的驱动变化
	if err := e.registerPrograms(state); err != nil {
		return nil, err
	}
	if err := state.Flush(); err != nil {
		return nil, err
	}
	elog.Info("executor start", "slot", e.clock.Slot, "fee", cfg.TxFee)
	return e, nil
}

func (e *Executor) genesis(state *StateDB) error {
	e.clock = sysvar.Clock{Slot: 0, UnixTimestamp: e.cfg.GenesisTime}
	elog.Info("genesis", "time", e.cfg.GenesisTime)
	if err := e.saveSysvar(state, sysvar.RentID, e.rent.Encode()); err != nil {
		return err
	}
	if err := e.saveSysvar(state, sysvar.SlotHashesID, sysvar.SlotHashes{}.Encode()); err != nil {
		return err
	}
	return e.saveSysvar(state, sysvar.ClockID, e.clock.Encode())
}

func (e *Executor) registerPrograms(state *StateDB) error {
	for _, id := range dapp.RegisteredPrograms() {
		_, err := loadAccount(state, id)
		if err == nil {
			continue
		}
		if err != types.ErrNotFound {
			return err
		}
		acc := &types.Account{
			Lamports:   1,
			Owner:      NativeLoaderID,
			Executable: true,
			Data:       []byte(dapp.ProgramName(id)),
		}
		if err := saveAccount(state, id, acc); err != nil {
			return err
		}
		if err := state.Set(types.OwnerIndexKey(NativeLoaderID, id), id.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) saveSysvar(state *StateDB, key types.Pubkey, data []byte) error {
	acc, err := loadAccount(state, key)
	if err == types.ErrNotFound {
		acc = &types.Account{Lamports: 1, Owner: sysvar.OwnerID}
		if err := state.Set(types.OwnerIndexKey(sysvar.OwnerID, key), key.Bytes()); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	acc.Data = data
	return saveAccount(state, key, acc)
}

// advance 结束当前 slot, 记录它的哈希并推进时钟
func (e *Executor) advance(state *StateDB, n uint64) error {
	if n == 0 {
		return nil
	}
	acc, err := loadAccount(state, sysvar.SlotHashesID)
	if err != nil {
		return err
	}
	hashes, err := sysvar.DecodeSlotHashes(acc.Data)
	if err != nil {
		return err
	}
	max := e.cfg.SlotHashesMax
	if max <= 0 {
		max = 512
	}
	for i := uint64(0); i < n; i++ {
		var parent []byte
		if len(hashes) > 0 {
			parent = hashes[0].Hash[:]
		}
		var slot [8]byte
		binary.LittleEndian.PutUint64(slot[:], e.clock.Slot)
		var h [32]byte
		copy(h[:], common.Sha256Multi(parent, slot[:], e.lastHash))
		hashes = hashes.Add(e.clock.Slot, h, max)
		e.clock.Slot++
	}
	e.clock.UnixTimestamp = e.cfg.GenesisTime + int64(e.clock.Slot)*e.cfg.SlotMs/1000
	metrics.SlotGauge.Update(int64(e.clock.Slot))
	if err := e.saveSysvar(state, sysvar.SlotHashesID, hashes.Encode()); err != nil {
		return err
	}
	return e.saveSysvar(state, sysvar.ClockID, e.clock.Encode())
}

// AdvanceSlot 时钟前进 n 个 slot
func (e *Executor) AdvanceSlot(n uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	state := NewStateDB(e.db)
	if err := e.advance(state, n); err != nil {
		return err
	}
	return state.Flush()
}

// Slot 当前 slot
func (e *Executor) Slot() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock.Slot
}

// Rent 租金参数
func (e *Executor) Rent() sysvar.Rent {
	return e.rent
}

// MinimumBalance 数据长度为 size 的账户免租的最小余额
func (e *Executor) MinimumBalance(size int) uint64 {
	return e.rent.MinimumBalance(size)
}

// TxFee 每笔交易的手续费
func (e *Executor) TxFee() uint64 {
	return e.cfg.TxFee
}

// Airdrop 凭空给系统账户增加原生币, 仅用于本地账本
func (e *Executor) Airdrop(to types.Pubkey, lamports uint64) error {
	if lamports == 0 {
		return types.ErrAmount
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	state := NewStateDB(e.db)
	acc, err := loadAccount(state, to)
	if err == types.ErrNotFound {
		acc = &types.Account{Owner: system.ProgramID}
		if err := state.Set(types.OwnerIndexKey(system.ProgramID, to), to.Bytes()); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	if acc.Lamports+lamports < acc.Lamports {
		return types.ErrAmount
	}
	acc.Lamports += lamports
	if err := saveAccount(state, to, acc); err != nil {
		return err
	}
	elog.Info("airdrop", "to", to, "lamports", lamports)
	return state.Flush()
}

// GetAccount 查询账户, 不存在返回 types.ErrNotFound
func (e *Executor) GetAccount(key types.Pubkey) (*types.Account, error) {
	return loadAccount(NewStateDB(e.db), key)
}

// GetBalance 原生币余额, 账户不存在为 0
func (e *Executor) GetBalance(key types.Pubkey) uint64 {
	acc, err := e.GetAccount(key)
	if err != nil {
		return 0
	}
	return acc.Lamports
}

// GetProgramAccounts 查询某个程序名下满足全部条件的账户, 按地址排序
func (e *Executor) GetProgramAccounts(programID types.Pubkey, filters ...types.AccountFilter) ([]*types.KeyedAccount, error) {
	state := NewStateDB(e.db)
	values := dbm.NewListHelper(e.db).PrefixScan(types.OwnerIndexPrefix(programID))
	var out []*types.KeyedAccount
	for _, v := range values {
		key, err := types.PubkeyFromBytes(v)
		if err != nil {
			return nil, err
		}
		acc, err := loadAccount(state, key)
		if err == types.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		if acc.Owner != programID || !matchAll(filters, acc.Data) {
			continue
		}
		out = append(out, &types.KeyedAccount{Pubkey: key, Account: acc})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pubkey.Less(out[j].Pubkey) })
	return out, nil
}

func matchAll(filters []types.AccountFilter, data []byte) bool {
	for _, f := range filters {
		if !f.Match(data) {
			return false
		}
	}
	return true
}

// GetReceipt 交易回执
func (e *Executor) GetReceipt(hash []byte) (*types.Receipt, error) {
	value, err := e.db.Get(types.ReceiptKey(hash))
	if err == dbm.ErrNotFoundInDb {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return types.DecodeReceipt(value)
}

// ExecTx 执行交易.
// 验签或者手续费失败时交易被拒绝, 不留下任何记录;
// 指令失败时只扣手续费, 返回 ExecPack 回执以及指令错误.
func (e *Executor) ExecTx(tx *types.Transaction) (*types.Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer metrics.TxExecTimer.UpdateSince(time.Now())

	if err := e.checkTx(tx); err != nil {
		metrics.TxRejectMeter.Mark(1)
		return nil, err
	}
	hash := tx.Hash()
	state := NewStateDB(e.db)
	if err := e.chargeFee(state, tx); err != nil {
		metrics.TxRejectMeter.Mark(1)
		return nil, err
	}

	receipt := &types.Receipt{Ty: types.ExecOk, Slot: e.clock.Slot, Fee: e.cfg.TxFee}
	state.Begin()
	ctx := newTxContext(state)
	execErr := e.execInstructions(ctx, tx)
	if execErr == nil {
		execErr = ctx.flush()
	}
	receipt.Logs = ctx.logs
	if execErr != nil {
		state.Rollback()
		receipt.Ty = types.ExecPack
		receipt.Err = execErr.Error()
		metrics.TxFailMeter.Mark(1)
		elog.Info("ExecTx failed", "hash", common.ToHex(hash), "err", execErr)
	} else {
		state.Commit()
		metrics.TxOkMeter.Mark(1)
		elog.Debug("ExecTx ok", "hash", common.ToHex(hash), "logs", len(receipt.Logs))
	}

	if err := state.Set(types.ReceiptKey(hash), receipt.Encode()); err != nil {
		return nil, err
	}
	e.lastHash = hash
	if e.cfg.SlotPerTx {
		if err := e.advance(state, 1); err != nil {
			return nil, err
		}
	}
	if err := state.Flush(); err != nil {
		return nil, err
	}
	metrics.FeeCounter.Inc(int64(e.cfg.TxFee))
	return receipt, execErr
}

func (e *Executor) checkTx(tx *types.Transaction) error {
	if len(tx.Message()) > types.MaxTxSize {
		return errors.Wrapf(types.ErrTxSize, "size %d", len(tx.Message()))
	}
	if err := tx.CheckSign(); err != nil {
		return err
	}
	_, err := e.db.Get(types.ReceiptKey(tx.Hash()))
	if err == nil {
		return types.ErrTxDup
	}
	if err != dbm.ErrNotFoundInDb {
		return err
	}
	return nil
}

// 手续费由第一个签名者支付, 在指令执行之前扣除, 指令失败也不退还
func (e *Executor) chargeFee(state *StateDB, tx *types.Transaction) error {
	payer, err := tx.FeePayer()
	if err != nil {
		return err
	}
	acc, err := loadAccount(state, payer)
	if err == types.ErrNotFound {
		return errors.Wrapf(types.ErrNoBalance, "fee payer %s not found", payer)
	}
	if err != nil {
		return err
	}
	if acc.Owner != system.ProgramID || len(acc.Data) != 0 {
		return errors.Wrapf(types.ErrNoBalance, "fee payer %s is not a system account", payer)
	}
	if acc.Lamports < e.cfg.TxFee {
		return errors.Wrapf(types.ErrNoBalance, "fee payer %s have %d need %d", payer, acc.Lamports, e.cfg.TxFee)
	}
	acc.Lamports -= e.cfg.TxFee
	if acc.Lamports == 0 {
		if err := state.Delete(types.OwnerIndexKey(acc.Owner, payer)); err != nil {
			return err
		}
		return state.Delete(types.AccountKey(payer))
	}
	return saveAccount(state, payer, acc)
}

func (e *Executor) execInstructions(ctx *txContext, tx *types.Transaction) error {
	for i, ix := range tx.Instructions {
		if err := ctx.execute(ix.ProgramID, ix.Accounts, ix.Data); err != nil {
			return errors.WithMessagef(err, "instruction %d", i)
		}
	}
	return nil
}
