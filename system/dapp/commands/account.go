// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"fmt"
	"os"

	"github.com/33cn/lottery/common/crypto"
	"github.com/33cn/lottery/types"
	"github.com/33cn/lottery/util/node"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// KeygenCmd 生成私钥文件
func KeygenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new key file",
		Run:   WithNode(keygen),
	}
	cmd.Flags().BoolP("force", "f", false, "overwrite an existing key file")
	return cmd
}

func keygen(cmd *cobra.Command, args []string, n *node.Node) error {
	path := KeyPath(cmd, n)
	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		return errors.Errorf("key file %s exists, use --force to overwrite", path)
	}
	priv, err := crypto.GenKey()
	if err != nil {
		return err
	}
	if err := crypto.SaveKeyFile(path, priv); err != nil {
		return err
	}
	fmt.Println(priv.Pubkey())
	return nil
}

// AddressCmd 私钥文件对应的地址
func AddressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "Show the address of the key file",
		Run: WithNode(func(cmd *cobra.Command, args []string, n *node.Node) error {
			priv, err := LoadSigner(cmd, n)
			if err != nil {
				return err
			}
			fmt.Println(priv.Pubkey())
			return nil
		}),
	}
}

// AirdropCmd 本地账本空投原生币
func AirdropCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "airdrop",
		Short: "Airdrop native coins to an address",
		Run:   WithNode(airdrop),
	}
	cmd.Flags().StringP("to", "t", "", "receiver address, default the key file address")
	cmd.Flags().StringP("amount", "a", "1", "amount in SOL")
	return cmd
}

func airdrop(cmd *cobra.Command, args []string, n *node.Node) error {
	to, err := addressOrSigner(cmd, n, "to")
	if err != nil {
		return err
	}
	s, _ := cmd.Flags().GetString("amount")
	lamports, err := ParseAmount(s, SolDecimals)
	if err != nil {
		return err
	}
	if err := n.GetExec().Airdrop(to, lamports); err != nil {
		return err
	}
	fmt.Println(FormatAmount(n.GetExec().GetBalance(to), SolDecimals))
	return nil
}

// BalanceCmd 原生币余额
func BalanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show native coin balance",
		Run: WithNode(func(cmd *cobra.Command, args []string, n *node.Node) error {
			addr, err := addressOrSigner(cmd, n, "addr")
			if err != nil {
				return err
			}
			fmt.Println(FormatAmount(n.GetExec().GetBalance(addr), SolDecimals))
			return nil
		}),
	}
	cmd.Flags().StringP("addr", "a", "", "account address, default the key file address")
	return cmd
}

// AccountCmd 账户详情
func AccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Show an account",
		Run: WithNode(func(cmd *cobra.Command, args []string, n *node.Node) error {
			addr, err := PubkeyFlag(cmd, "addr")
			if err != nil {
				return err
			}
			acc, err := n.GetExec().GetAccount(addr)
			if err != nil {
				return err
			}
			PrintJSON(&accountResult{
				Address:    addr,
				Lamports:   acc.Lamports,
				Owner:      acc.Owner,
				Executable: acc.Executable,
				DataLen:    len(acc.Data),
			})
			return nil
		}),
	}
	cmd.Flags().StringP("addr", "a", "", "account address")
	cmd.MarkFlagRequired("addr")
	return cmd
}

type accountResult struct {
	Address    types.Pubkey `json:"address"`
	Lamports   uint64       `json:"lamports"`
	Owner      types.Pubkey `json:"owner"`
	Executable bool         `json:"executable"`
	DataLen    int          `json:"dataLen"`
}

func addressOrSigner(cmd *cobra.Command, n *node.Node, flag string) (types.Pubkey, error) {
	s, _ := cmd.Flags().GetString(flag)
	if s != "" {
		return ParsePubkey(flag, s)
	}
	priv, err := LoadSigner(cmd, n)
	if err != nil {
		return types.Pubkey{}, err
	}
	return priv.Pubkey(), nil
}
