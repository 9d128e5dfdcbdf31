// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cli 命令行入口: 内置的账户, slot, 资产命令加上插件注册的命令
package cli

import (
	"fmt"
	"os"

	"github.com/33cn/lottery/common/log"
	"github.com/33cn/lottery/pluginmgr"
	"github.com/33cn/lottery/system/dapp/commands"
	"github.com/spf13/cobra"
)

// NewRootCmd 根命令, 插件命令按名称顺序挂载
func NewRootCmd(title string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   title + "-cli",
		Short: title + " client tools",
	}
	rootCmd.PersistentFlags().String("conf", title+".toml", "config file, default config if the file does not exist")
	rootCmd.PersistentFlags().String("key", "", "key file, default wallet.keyFile of the config")
	rootCmd.AddCommand(
		commands.KeygenCmd(),
		commands.AddressCmd(),
		commands.AirdropCmd(),
		commands.BalanceCmd(),
		commands.AccountCmd(),
		commands.SlotCmd(),
		commands.TokenCmd(),
	)
	pluginmgr.AddCmd(rootCmd)
	return rootCmd
}

//Run :
func Run(title string) {
	log.SetLogLevel("error")
	if err := NewRootCmd(title).Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
