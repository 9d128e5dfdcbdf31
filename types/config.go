// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"bytes"
	"io/ioutil"

	tml "github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// InitCfg 读取配置文件, 未配置的项取默认值
func InitCfg(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(ErrConfig, err.Error())
	}
	return InitCfgString(string(data))
}

// InitCfgString 从字符串初始化配置, 未配置的项取默认值
func InitCfgString(cfgstring string) (*Config, error) {
	merged, err := mergeCfgString(cfgstring, GetDefaultCfgstring())
	if err != nil {
		return nil, err
	}
	return initCfgString(merged)
}

func initCfgString(cfgstring string) (*Config, error) {
	var cfg Config
	if _, err := tml.Decode(cfgstring, &cfg); err != nil {
		return nil, errors.Wrap(ErrConfig, err.Error())
	}
	if cfg.Title == "" {
		return nil, errors.Wrap(ErrConfig, "title is not set in cfg")
	}
	return &cfg, nil
}

func mergeCfgString(cfgstring, cfgdefault string) (string, error) {
	//1. defconfig
	def := make(map[string]interface{})
	if _, err := tml.Decode(cfgdefault, &def); err != nil {
		return "", errors.Wrap(ErrConfig, err.Error())
	}
	//2. userconfig
	conf := make(map[string]interface{})
	if _, err := tml.Decode(cfgstring, &conf); err != nil {
		return "", errors.Wrap(ErrConfig, err.Error())
	}
	mergeConfig(conf, def)
	buf := new(bytes.Buffer)
	if err := tml.NewEncoder(buf).Encode(conf); err != nil {
		return "", errors.Wrap(ErrConfig, err.Error())
	}
	return buf.String(), nil
}

// 用户配置优先, 缺失的键从默认配置补齐
func mergeConfig(conf map[string]interface{}, def map[string]interface{}) {
	for key1, value1 := range def {
		if vconf, ok := conf[key1]; ok {
			def1, ok1 := value1.(map[string]interface{})
			conf1, ok2 := vconf.(map[string]interface{})
			if ok1 && ok2 {
				mergeConfig(conf1, def1)
				conf[key1] = conf1
			}
		} else {
			conf[key1] = value1
		}
	}
}
