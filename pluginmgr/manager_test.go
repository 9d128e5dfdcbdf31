// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pluginmgr

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestRegister(t *testing.T) {
	Register(&PluginBase{
		Name:     "test.plugin",
		ExecName: "testexec",
		Cmd:      func() *cobra.Command { return &cobra.Command{Use: "testexec"} },
	})
	Register(&PluginBase{Name: "test.nocmd", ExecName: "nocmd"})
	assert.True(t, HasExec("testexec"))
	assert.False(t, HasExec("unknown"))
	assert.Panics(t, func() { Register(&PluginBase{Name: "test.plugin"}) })
	assert.Panics(t, func() { Register(&PluginBase{}) })

	root := &cobra.Command{Use: "root"}
	AddCmd(root)
	cmd, _, err := root.Find([]string{"testexec"})
	assert.NoError(t, err)
	assert.Equal(t, "testexec", cmd.Use)
}
