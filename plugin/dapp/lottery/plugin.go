// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lottery 插件入口: 注册程序以及命令行
package lottery

import (
	"github.com/33cn/lottery/plugin/dapp/lottery/commands"
	"github.com/33cn/lottery/plugin/dapp/lottery/executor"
	"github.com/33cn/lottery/pluginmgr"
)

func init() {
	pluginmgr.Register(&pluginmgr.PluginBase{
		Name:     "lottery",
		ExecName: executor.GetName(),
		Cmd:      commands.LotteryCmd,
	})
}
