// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"fmt"

	"github.com/33cn/lottery/common/crypto"
	"github.com/33cn/lottery/system/dapp/ata"
	"github.com/33cn/lottery/system/dapp/system"
	"github.com/33cn/lottery/system/dapp/token"
	"github.com/33cn/lottery/types"
	"github.com/33cn/lottery/util/node"
	"github.com/spf13/cobra"
)

// TokenCmd 资产管理
func TokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Token management",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.AddCommand(
		createMintCmd(),
		createTokenAccountCmd(),
		mintToCmd(),
		tokenBalanceCmd(),
	)
	return cmd
}

func createMintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-mint",
		Short: "Create a mint, the key file is the mint authority",
		Run:   WithNode(createMint),
	}
	cmd.Flags().Uint8P("decimals", "d", 9, "decimals of the asset")
	return cmd
}

func createMint(cmd *cobra.Command, args []string, n *node.Node) error {
	payer, err := LoadSigner(cmd, n)
	if err != nil {
		return err
	}
	decimals, _ := cmd.Flags().GetUint8("decimals")
	mint, err := crypto.GenKey()
	if err != nil {
		return err
	}
	exec := n.GetExec()
	create := system.CreateAccount(payer.Pubkey(), mint.Pubkey(), exec.MinimumBalance(token.MintLen), token.MintLen, token.ProgramID)
	_, err = SendTx(exec, []types.Signer{payer, mint}, create, token.InitializeMint(mint.Pubkey(), payer.Pubkey(), decimals))
	if err != nil {
		return err
	}
	fmt.Println(mint.Pubkey())
	return nil
}

func createTokenAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-account",
		Short: "Create the associated token account of an owner",
		Run:   WithNode(createTokenAccount),
	}
	cmd.Flags().StringP("mint", "m", "", "mint address")
	cmd.MarkFlagRequired("mint")
	cmd.Flags().StringP("owner", "o", "", "wallet address, default the key file address")
	return cmd
}

func createTokenAccount(cmd *cobra.Command, args []string, n *node.Node) error {
	payer, err := LoadSigner(cmd, n)
	if err != nil {
		return err
	}
	mint, err := PubkeyFlag(cmd, "mint")
	if err != nil {
		return err
	}
	owner, err := addressOrSigner(cmd, n, "owner")
	if err != nil {
		return err
	}
	if _, err := SendTx(n.GetExec(), []types.Signer{payer}, ata.Create(payer.Pubkey(), owner, mint)); err != nil {
		return err
	}
	fmt.Println(ata.Address(owner, mint))
	return nil
}

func mintToCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mint-to",
		Short: "Mint tokens to a token account",
		Run:   WithNode(mintTo),
	}
	cmd.Flags().StringP("mint", "m", "", "mint address")
	cmd.MarkFlagRequired("mint")
	cmd.Flags().StringP("to", "t", "", "token account, default the associated account of the key file address")
	cmd.Flags().StringP("amount", "a", "", "amount in token units")
	cmd.MarkFlagRequired("amount")
	return cmd
}

func mintTo(cmd *cobra.Command, args []string, n *node.Node) error {
	authority, err := LoadSigner(cmd, n)
	if err != nil {
		return err
	}
	mint, err := PubkeyFlag(cmd, "mint")
	if err != nil {
		return err
	}
	exec := n.GetExec()
	decimals, err := MintDecimals(exec, mint)
	if err != nil {
		return err
	}
	s, _ := cmd.Flags().GetString("amount")
	amount, err := ParseAmount(s, decimals)
	if err != nil {
		return err
	}
	to := ata.Address(authority.Pubkey(), mint)
	if v, _ := cmd.Flags().GetString("to"); v != "" {
		if to, err = ParsePubkey("to", v); err != nil {
			return err
		}
	}
	if _, err := SendTx(exec, []types.Signer{authority}, token.MintTo(mint, to, authority.Pubkey(), amount)); err != nil {
		return err
	}
	return printTokenBalance(n, to, decimals)
}

func tokenBalanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the balance of a token account",
		Run: WithNode(func(cmd *cobra.Command, args []string, n *node.Node) error {
			addr, err := PubkeyFlag(cmd, "addr")
			if err != nil {
				return err
			}
			acc, err := n.GetExec().GetAccount(addr)
			if err != nil {
				return err
			}
			tacc, err := token.UnpackAccount(acc.Data)
			if err != nil {
				return err
			}
			decimals, err := MintDecimals(n.GetExec(), tacc.Mint)
			if err != nil {
				return err
			}
			return printTokenBalance(n, addr, decimals)
		}),
	}
	cmd.Flags().StringP("addr", "a", "", "token account address")
	cmd.MarkFlagRequired("addr")
	return cmd
}

func printTokenBalance(n *node.Node, addr types.Pubkey, decimals int32) error {
	acc, err := n.GetExec().GetAccount(addr)
	if err != nil {
		return err
	}
	tacc, err := token.UnpackAccount(acc.Data)
	if err != nil {
		return err
	}
	fmt.Println(FormatAmount(tacc.Amount, decimals))
	return nil
}
