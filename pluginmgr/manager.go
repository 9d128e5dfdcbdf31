// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pluginmgr

import (
	"sort"
	"sync"

	"github.com/inconshreveable/log15"
	"github.com/spf13/cobra"
)

var (
	mgrlog      = log15.New("module", "plugin.manager")
	mu          sync.Mutex
	pluginItems = make(map[string]Plugin)
)

// Register 注册插件, 名称为空或者重复时 panic
func Register(p Plugin) {
	if p == nil {
		panic("plugin param is nil")
	}
	packageName := p.GetName()
	if len(packageName) == 0 {
		panic("plugin package name is empty")
	}
	mu.Lock()
	defer mu.Unlock()
	if _, ok := pluginItems[packageName]; ok {
		panic("execute plugin item is existed. name = " + packageName)
	}
	pluginItems[packageName] = p
	mgrlog.Debug("Register", "plugin", packageName, "exec", p.GetExecutorName())
}

// HasExec 是否有插件提供这个程序
func HasExec(name string) bool {
	mu.Lock()
	defer mu.Unlock()
	for _, item := range pluginItems {
		if item.GetExecutorName() == name {
			return true
		}
	}
	return false
}

// AddCmd 按插件名称顺序添加命令
func AddCmd(rootCmd *cobra.Command) {
	mu.Lock()
	names := make([]string, 0, len(pluginItems))
	for name := range pluginItems {
		names = append(names, name)
	}
	mu.Unlock()
	sort.Strings(names)
	for _, name := range names {
		pluginItems[name].AddCmd(rootCmd)
	}
}
