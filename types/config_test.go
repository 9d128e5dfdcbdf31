// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg, err := InitCfgString(GetDefaultCfgstring())
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Title)
	assert.Equal(t, "leveldb", cfg.Store.Driver)
	assert.Equal(t, uint64(5000), cfg.Ledger.TxFee)
	assert.Equal(t, 512, cfg.Ledger.SlotHashesMax)
	assert.Equal(t, "logs/lottery.log", cfg.Log.LogFile)
	assert.True(t, cfg.Ledger.SlotPerTx)
}

func TestMergeConfig(t *testing.T) {
	cfg, err := InitCfgString(`
Title="test"
[store]
driver="memdb"
[ledger]
txFee=10
`)
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Title)
	assert.Equal(t, "memdb", cfg.Store.Driver)
	// 未配置的键取默认值
	assert.Equal(t, "datadir", cfg.Store.DbPath)
	assert.Equal(t, uint64(10), cfg.Ledger.TxFee)
	assert.Equal(t, uint64(2), cfg.Ledger.ExemptionYears)
	assert.NotNil(t, cfg.Wallet)
}

func TestInitCfgError(t *testing.T) {
	_, err := InitCfgString(`Title=`)
	assert.Equal(t, ErrConfig, errors.Cause(err))

	_, err = InitCfg("does-not-exist.toml")
	assert.Equal(t, ErrConfig, errors.Cause(err))

	dir, err := ioutil.TempDir("", "cfg")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "lottery.toml")
	require.NoError(t, ioutil.WriteFile(path, []byte("Title=\"file\"\n"), 0600))
	cfg, err := InitCfg(path)
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Title)
}
