// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package log

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/33cn/lottery/types"
	log15 "github.com/inconshreveable/log15"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLevel(t *testing.T) {
	assert.Equal(t, log15.LvlDebug, getLevel("debug"))
	assert.Equal(t, log15.LvlInfo, getLevel("info"))
	assert.Equal(t, log15.LvlError, getLevel("nonsense"))
}

func TestSetFileLog(t *testing.T) {
	dir, err := ioutil.TempDir("", "log")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	defer Discard()

	file := filepath.Join(dir, "lottery.log")
	cfg := &types.Log{LogFile: file, Loglevel: "info", LogConsoleLevel: "crit", MaxFileSize: 1}
	SetFileLog(cfg)
	New("module", "test").Info("hello", "k", 1)
	New("module", "test").Debug("filtered")

	data, err := ioutil.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=hello")
	assert.Contains(t, string(data), "module=test")
	assert.NotContains(t, string(data), "filtered")

	console := &types.Log{}
	SetFileLog(console)
	assert.Equal(t, "eror", console.LogConsoleLevel)
}
