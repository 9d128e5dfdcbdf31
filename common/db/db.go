// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db 键值存储接口以及 memdb, goleveldb, badger 三种实现
package db

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrNotFoundInDb 键不存在
var ErrNotFoundInDb = errors.New("ErrNotFoundInDb")

//KV 读写接口, 状态层只依赖这个接口
type KV interface {
	Get(key []byte) ([]byte, error)
	Set(key []byte, value []byte) error
}

//IteratorDB 迭代
type IteratorDB interface {
	Iterator(prefix []byte, end []byte, reserver bool) Iterator
}

//DB db
type DB interface {
	KV
	IteratorDB
	SetSync([]byte, []byte) error
	Delete([]byte) error
	DeleteSync([]byte) error
	Close()
	NewBatch(sync bool) Batch
	Stats() map[string]string
}

//Batch 批量写入, Write 之前不可见
type Batch interface {
	Set(key, value []byte)
	Delete(key []byte)
	Write() error
	ValueSize() int // amount of data in the batch
	Reset()
}

//Iterator 迭代器
type Iterator interface {
	Rewind() bool
	Next() bool
	Valid() bool
	Seek(key []byte) bool
	Key() []byte
	Value() []byte
	ValueCopy() []byte
	Error() error
	Close()
}

//-----------------------------------------------------------------------------

// 后端名称
const (
	LevelDBBackendStr    = "leveldb" // legacy, defaults to goleveldb.
	GoLevelDBBackendStr  = "goleveldb"
	MemDBBackendStr      = "memdb"
	GoBadgerDBBackendStr = "gobadgerdb"
)

type dbCreator func(name string, dir string, cache int) (DB, error)

var backends = map[string]dbCreator{}

func registerDBCreator(backend string, creator dbCreator, force bool) {
	_, ok := backends[backend]
	if !force && ok {
		return
	}
	backends[backend] = creator
}

// OpenDB 打开数据库
func OpenDB(name string, backend string, dir string, cache int) (DB, error) {
	dbCreator, ok := backends[backend]
	if !ok {
		return nil, fmt.Errorf("unknown db backend %q", backend)
	}
	return dbCreator(name, dir, cache)
}

//NewDB 打开数据库, 失败时 panic
func NewDB(name string, backend string, dir string, cache int) DB {
	db, err := OpenDB(name, backend, dir, cache)
	if err != nil {
		fmt.Printf("Error initializing DB: %v\n", err)
		panic("initializing DB error")
	}
	return db
}

func cloneByte(v []byte) []byte {
	if v == nil {
		return nil
	}
	value := make([]byte, len(v))
	copy(value, v)
	return value
}

// bytesPrefix 返回前缀对应的 [start, limit) 区间
func bytesPrefix(prefix []byte) (start, limit []byte) {
	var l []byte
	for i := len(prefix) - 1; i >= 0; i-- {
		c := prefix[i]
		if c < 0xff {
			l = make([]byte, i+1)
			copy(l, prefix)
			l[i] = c + 1
			break
		}
	}
	return prefix, l
}

type itBase struct {
	start   []byte
	end     []byte
	reverse bool
}

// 键是否在迭代区间内, end 为空表示没有上界
func (it *itBase) checkKey(key []byte) bool {
	if !bytes.HasPrefix(key, it.start) {
		return false
	}
	if it.end == nil {
		return true
	}
	return bytes.Compare(key, it.end) <= 0
}

func itoa(n int) string {
	return fmt.Sprintf("%d", n)
}
