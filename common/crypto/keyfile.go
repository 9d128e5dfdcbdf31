// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crypto

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/33cn/lottery/types"
	"github.com/pkg/errors"
)

// 私钥文件是 64 个数字组成的 json 数组

// LoadKeyFile 读取私钥文件
func LoadKeyFile(path string) (*PrivKey, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw []int
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(types.ErrKeyFileFormat, err.Error())
	}
	b := make([]byte, len(raw))
	for i, v := range raw {
		if v < 0 || v > 255 {
			return nil, errors.Wrapf(types.ErrKeyFileFormat, "byte %d out of range", i)
		}
		b[i] = byte(v)
	}
	return PrivKeyFromBytes(b)
}

// SaveKeyFile 写入私钥文件, 仅本人可读
func SaveKeyFile(path string, priv *PrivKey) error {
	raw := make([]int, 0, len(priv.key))
	for _, v := range priv.key {
		raw = append(raw, int(v))
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	return ioutil.WriteFile(path, data, 0600)
}
