// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"testing"

	"github.com/33cn/lottery/pluginmgr"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd(t *testing.T) {
	pluginmgr.Register(&pluginmgr.PluginBase{
		Name:     "clitest",
		ExecName: "clitest",
		Cmd: func() *cobra.Command {
			return &cobra.Command{Use: "clitest"}
		},
	})
	root := NewRootCmd("lottery")
	assert.Equal(t, "lottery-cli", root.Use)
	for _, name := range []string{"keygen", "address", "airdrop", "balance", "account", "slot", "token", "clitest"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
	conf := root.PersistentFlags().Lookup("conf")
	require.NotNil(t, conf)
	assert.Equal(t, "lottery.toml", conf.DefValue)
	cmd, _, err := root.Find([]string{"slot", "advance"})
	require.NoError(t, err)
	assert.Equal(t, "advance", cmd.Name())
}
