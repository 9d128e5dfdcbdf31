// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pluginmgr 插件登记: 插件在 init 中注册自己的程序名称以及命令行
package pluginmgr

import (
	"github.com/spf13/cobra"
)

// Plugin 插件
type Plugin interface {
	// 获取整个插件的包名，用以计算唯一值、做前缀等
	GetName() string
	// 获取插件中的程序名
	GetExecutorName() string
	AddCmd(rootCmd *cobra.Command)
}

// PluginBase 插件的默认实现
type PluginBase struct {
	Name     string
	ExecName string
	Cmd      func() *cobra.Command
}

// GetName 插件名称
func (p *PluginBase) GetName() string {
	return p.Name
}

// GetExecutorName 程序名称
func (p *PluginBase) GetExecutorName() string {
	return p.ExecName
}

// AddCmd 把插件的命令挂到 rootCmd 下
func (p *PluginBase) AddCmd(rootCmd *cobra.Command) {
	if p.Cmd != nil {
		cmd := p.Cmd()
		if cmd == nil {
			return
		}
		rootCmd.AddCommand(cmd)
	}
}
