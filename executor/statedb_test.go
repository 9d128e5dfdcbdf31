// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor

import (
	"testing"

	dbm "github.com/33cn/lottery/common/db"
	"github.com/33cn/lottery/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemDB(t *testing.T) dbm.DB {
	db, err := dbm.OpenDB("test", dbm.MemDBBackendStr, "", 0)
	require.NoError(t, err)
	return db
}

func TestStateDBGet(t *testing.T) {
	db := NewStateDB(newMemDB(t))
	err := db.Set([]byte("k1"), []byte("v1"))
	assert.Nil(t, err)
	v, err := db.Get([]byte("k1"))
	assert.Nil(t, err)
	assert.Equal(t, v, []byte("v1"))

	err = db.Set([]byte("k1"), []byte("v11"))
	assert.Nil(t, err)
	v, err = db.Get([]byte("k1"))
	assert.Nil(t, err)
	assert.Equal(t, v, []byte("v11"))

	_, err = db.Get([]byte("k2"))
	assert.Equal(t, types.ErrNotFound, err)
}

func TestStateDBTxRollback(t *testing.T) {
	db := NewStateDB(newMemDB(t))
	db.Begin()
	err := db.Set([]byte("k1"), []byte("v1"))
	assert.Nil(t, err)
	v, err := db.Get([]byte("k1"))
	assert.Nil(t, err)
	assert.Equal(t, v, []byte("v1"))
	assert.Equal(t, []string{"k1"}, db.GetSetKeys())

	db.Rollback()
	v, err = db.Get([]byte("k1"))
	assert.Equal(t, err, types.ErrNotFound)
	assert.Equal(t, v, []byte(nil))
	assert.Nil(t, db.GetSetKeys())
}

func TestStateDBTxCommit(t *testing.T) {
	mem := newMemDB(t)
	db := NewStateDB(mem)
	require.NoError(t, db.Set([]byte("k0"), []byte("v0")))

	db.Begin()
	require.NoError(t, db.Set([]byte("k1"), []byte("v1")))
	require.NoError(t, db.Delete([]byte("k0")))
	db.Commit()

	_, err := db.Get([]byte("k0"))
	assert.Equal(t, types.ErrNotFound, err)
	v, err := db.Get([]byte("k1"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("v1"), v)

	// 落盘之前数据库里没有
	_, err = mem.Get([]byte("k1"))
	assert.Equal(t, dbm.ErrNotFoundInDb, err)

	require.NoError(t, db.Flush())
	v, err = mem.Get([]byte("k1"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("v1"), v)
	_, err = mem.Get([]byte("k0"))
	assert.Equal(t, dbm.ErrNotFoundInDb, err)
}

func TestStateDBFlushDropsOpenTx(t *testing.T) {
	mem := newMemDB(t)
	db := NewStateDB(mem)
	db.Begin()
	require.NoError(t, db.Set([]byte("k1"), []byte("v1")))
	require.NoError(t, db.Flush())
	_, err := mem.Get([]byte("k1"))
	assert.Equal(t, dbm.ErrNotFoundInDb, err)
}
