// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"fmt"

	"github.com/33cn/lottery/util/node"
	"github.com/spf13/cobra"
)

// SlotCmd 本地账本的时钟
func SlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slot",
		Short: "Show or advance the ledger clock",
		Run: WithNode(func(cmd *cobra.Command, args []string, n *node.Node) error {
			fmt.Println(n.GetExec().Slot())
			return nil
		}),
	}
	cmd.AddCommand(slotAdvanceCmd())
	return cmd
}

func slotAdvanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "advance",
		Short: "Advance the clock by n slots",
		Run: WithNode(func(cmd *cobra.Command, args []string, n *node.Node) error {
			count, _ := cmd.Flags().GetUint64("count")
			if err := n.GetExec().AdvanceSlot(count); err != nil {
				return err
			}
			fmt.Println(n.GetExec().Slot())
			return nil
		}),
	}
	cmd.Flags().Uint64P("count", "n", 1, "number of slots")
	return cmd
}
