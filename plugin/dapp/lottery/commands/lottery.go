// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package commands lottery 命令行
package commands

import (
	"fmt"
	"os"

	"github.com/33cn/lottery/common/crypto"
	"github.com/33cn/lottery/executor"
	"github.com/33cn/lottery/plugin/dapp/lottery/client"
	pty "github.com/33cn/lottery/plugin/dapp/lottery/types"
	"github.com/33cn/lottery/system/dapp/ata"
	"github.com/33cn/lottery/system/dapp/commands"
	"github.com/33cn/lottery/types"
	"github.com/33cn/lottery/util/node"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// LotteryCmd lottery 命令
func LotteryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lottery",
		Short: "Lottery management",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.AddCommand(
		LotteryCreateCmd(),
		LotteryBuyCmd(),
		LotteryDrawCmd(),
		LotteryWithdrawCmd(),
		LotteryCancelCmd(),
		LotteryCloseCmd(),
		LotteryFindCmd(),
		LotteryInfoCmd(),
		LotteryDrawAllCmd(),
		LotteryWithdrawAllCmd(),
		LotteryCloseAllCmd(),
		LotteryCloseEveryCmd(),
	)
	return cmd
}

// LotteryCreateCmd 创建
func LotteryCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a lottery, the key file is the authority",
		Run:   commands.WithNode(lotteryCreate),
	}
	cmd.Flags().StringP("mint", "m", "", "asset mint")
	cmd.MarkFlagRequired("mint")
	cmd.Flags().StringP("cap", "c", "", "pool cap in asset units")
	cmd.MarkFlagRequired("cap")
	cmd.Flags().Uint64P("duration", "d", 0, "duration in slots")
	cmd.MarkFlagRequired("duration")
	return cmd
}

func lotteryCreate(cmd *cobra.Command, args []string, n *node.Node) error {
	authority, err := commands.LoadSigner(cmd, n)
	if err != nil {
		return err
	}
	mint, err := commands.PubkeyFlag(cmd, "mint")
	if err != nil {
		return err
	}
	exec := n.GetExec()
	poolCap, err := amountFlag(cmd, exec, mint, "cap")
	if err != nil {
		return err
	}
	duration, _ := cmd.Flags().GetUint64("duration")
	key, ix, err := client.InitLottery(authority.Pubkey(), mint, poolCap, duration)
	if err != nil {
		return err
	}
	if _, err := commands.SendTx(exec, []types.Signer{authority, key}, ix); err != nil {
		return err
	}
	return printLottery(exec, key.Pubkey())
}

// LotteryBuyCmd 购买
func LotteryBuyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buy",
		Short: "Buy tickets of a lottery",
		Run:   commands.WithNode(lotteryBuy),
	}
	addLotteryFlag(cmd)
	cmd.Flags().StringP("amount", "a", "", "amount in asset units")
	cmd.MarkFlagRequired("amount")
	cmd.Flags().StringP("source", "s", "", "source token account, default the associated account of the key file address")
	return cmd
}

func lotteryBuy(cmd *cobra.Command, args []string, n *node.Node) error {
	contributor, err := commands.LoadSigner(cmd, n)
	if err != nil {
		return err
	}
	exec := n.GetExec()
	lottery, l, err := lotteryFlag(cmd, exec)
	if err != nil {
		return err
	}
	amount, err := amountFlag(cmd, exec, l.AssetType, "amount")
	if err != nil {
		return err
	}
	source := ata.Address(contributor.Pubkey(), l.AssetType)
	if s, _ := cmd.Flags().GetString("source"); s != "" {
		if source, err = commands.ParsePubkey("source", s); err != nil {
			return err
		}
	}
	ticket, err := crypto.GenKey()
	if err != nil {
		return err
	}
	ix := client.Buy(lottery, l, ticket.Pubkey(), contributor.Pubkey(), source, amount)
	if _, err := commands.SendTx(exec, []types.Signer{contributor, ticket}, ix); err != nil {
		return err
	}
	acc, err := exec.GetAccount(ticket.Pubkey())
	if err != nil {
		return err
	}
	t, err := pty.UnpackTicket(acc.Data)
	if err != nil {
		return err
	}
	commands.PrintJSON(pty.NewTicketInfo(ticket.Pubkey(), t))
	return nil
}

// LotteryDrawCmd 开奖
func LotteryDrawCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Draw a full or expired lottery",
		Run:   commands.WithNode(lotteryDraw),
	}
	addLotteryFlag(cmd)
	return cmd
}

func lotteryDraw(cmd *cobra.Command, args []string, n *node.Node) error {
	authority, err := commands.LoadSigner(cmd, n)
	if err != nil {
		return err
	}
	exec := n.GetExec()
	lottery, _, err := lotteryFlag(cmd, exec)
	if err != nil {
		return err
	}
	if _, err := commands.SendTx(exec, []types.Signer{authority}, client.Draw(lottery, authority.Pubkey())); err != nil {
		return err
	}
	return printLottery(exec, lottery)
}

// LotteryWithdrawCmd 派奖
func LotteryWithdrawCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Pay the prize of a drawn lottery",
		Run:   commands.WithNode(lotteryWithdraw),
	}
	addLotteryFlag(cmd)
	return cmd
}

func lotteryWithdraw(cmd *cobra.Command, args []string, n *node.Node) error {
	authority, err := commands.LoadSigner(cmd, n)
	if err != nil {
		return err
	}
	exec := n.GetExec()
	lottery, _, err := lotteryFlag(cmd, exec)
	if err != nil {
		return err
	}
	ix, err := client.Withdraw(exec, lottery, authority.Pubkey())
	if err != nil {
		return err
	}
	if _, err := commands.SendTx(exec, []types.Signer{authority}, ix); err != nil {
		return err
	}
	return printLottery(exec, lottery)
}

// LotteryCancelCmd 关闭没有人购买的过期 lottery
func LotteryCancelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Close an expired lottery nobody bought into, escrow rent goes back to the authority",
		Run:   commands.WithNode(lotteryCancel),
	}
	addLotteryFlag(cmd)
	return cmd
}

func lotteryCancel(cmd *cobra.Command, args []string, n *node.Node) error {
	authority, err := commands.LoadSigner(cmd, n)
	if err != nil {
		return err
	}
	exec := n.GetExec()
	lottery, l, err := lotteryFlag(cmd, exec)
	if err != nil {
		return err
	}
	ix, err := client.Cancel(lottery, l, authority.Pubkey())
	if err != nil {
		return err
	}
	if _, err := commands.SendTx(exec, []types.Signer{authority}, ix); err != nil {
		return err
	}
	return printLottery(exec, lottery)
}

// LotteryCloseCmd 回收 ticket
func LotteryCloseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close a ticket of a settled lottery, rent goes back to the owner",
		Run:   commands.WithNode(lotteryClose),
	}
	addLotteryFlag(cmd)
	cmd.Flags().StringP("ticket", "t", "", "ticket address")
	cmd.MarkFlagRequired("ticket")
	return cmd
}

func lotteryClose(cmd *cobra.Command, args []string, n *node.Node) error {
	payer, err := commands.LoadSigner(cmd, n)
	if err != nil {
		return err
	}
	exec := n.GetExec()
	lottery, err := commands.PubkeyFlag(cmd, "lottery")
	if err != nil {
		return err
	}
	ticket, err := commands.PubkeyFlag(cmd, "ticket")
	if err != nil {
		return err
	}
	acc, err := exec.GetAccount(ticket)
	if err != nil {
		return err
	}
	t, err := pty.UnpackTicket(acc.Data)
	if err != nil {
		return errors.Wrapf(err, "ticket %s", ticket)
	}
	_, err = commands.SendTx(exec, []types.Signer{payer}, client.Close(lottery, ticket, t.Owner))
	return err
}

// LotteryFindCmd 查询某一期的 ticket
func LotteryFindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find",
		Short: "List tickets of a lottery",
		Run: commands.WithNode(func(cmd *cobra.Command, args []string, n *node.Node) error {
			lottery, err := commands.PubkeyFlag(cmd, "lottery")
			if err != nil {
				return err
			}
			tickets, err := client.FindTickets(n.GetExec(), lottery)
			if err != nil {
				return err
			}
			commands.PrintJSON(tickets)
			return nil
		}),
	}
	addLotteryFlag(cmd)
	return cmd
}

// LotteryInfoCmd 查询 lottery
func LotteryInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show a lottery",
		Run: commands.WithNode(func(cmd *cobra.Command, args []string, n *node.Node) error {
			lottery, err := commands.PubkeyFlag(cmd, "lottery")
			if err != nil {
				return err
			}
			return printLottery(n.GetExec(), lottery)
		}),
	}
	addLotteryFlag(cmd)
	return cmd
}

// LotteryDrawAllCmd 开奖 authority 名下所有可以开奖的 lottery
func LotteryDrawAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "draw_all",
		Short: "Draw every ended lottery of the key file authority",
		Run: commands.WithNode(func(cmd *cobra.Command, args []string, n *node.Node) error {
			authority, err := commands.LoadSigner(cmd, n)
			if err != nil {
				return err
			}
			exec := n.GetExec()
			ended, err := client.GetEndedLotteries(exec, authority.Pubkey(), exec.Slot())
			if err != nil {
				return err
			}
			return batch(len(ended), func(i int) error {
				_, err := commands.SendTx(exec, []types.Signer{authority}, client.Draw(ended[i].Address, authority.Pubkey()))
				return errors.Wrapf(err, "draw %s", ended[i].Address)
			})
		}),
	}
}

// LotteryWithdrawAllCmd 派奖 authority 名下所有已开奖的 lottery
func LotteryWithdrawAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw_all",
		Short: "Settle every drawn lottery of the key file authority",
		Run: commands.WithNode(func(cmd *cobra.Command, args []string, n *node.Node) error {
			authority, err := commands.LoadSigner(cmd, n)
			if err != nil {
				return err
			}
			exec := n.GetExec()
			drawn, err := client.GetWithdrawableLotteries(exec, authority.Pubkey(), exec.Slot())
			if err != nil {
				return err
			}
			return batch(len(drawn), func(i int) error {
				ix, err := client.Withdraw(exec, drawn[i].Address, authority.Pubkey())
				if err == nil {
					_, err = commands.SendTx(exec, []types.Signer{authority}, ix)
				}
				return errors.Wrapf(err, "withdraw %s", drawn[i].Address)
			})
		}),
	}
}

// LotteryCloseAllCmd 回收 key file 地址的全部可回收 ticket
func LotteryCloseAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close_all",
		Short: "Close every closable ticket of the key file address",
		Run: commands.WithNode(func(cmd *cobra.Command, args []string, n *node.Node) error {
			owner, err := commands.LoadSigner(cmd, n)
			if err != nil {
				return err
			}
			tickets, err := client.FindClosableTickets(n.GetExec(), owner.Pubkey())
			if err != nil {
				return err
			}
			return closeTickets(n, owner, tickets)
		}),
	}
}

// LotteryCloseEveryCmd 回收所有可回收的 ticket, 由 key file 地址支付手续费
func LotteryCloseEveryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close_every",
		Short: "Close every closable ticket on the ledger",
		Run: commands.WithNode(func(cmd *cobra.Command, args []string, n *node.Node) error {
			payer, err := commands.LoadSigner(cmd, n)
			if err != nil {
				return err
			}
			tickets, err := client.FindAllClosableTickets(n.GetExec())
			if err != nil {
				return err
			}
			return closeTickets(n, payer, tickets)
		}),
	}
}

func closeTickets(n *node.Node, payer types.Signer, tickets []*pty.TicketInfo) error {
	exec := n.GetExec()
	return batch(len(tickets), func(i int) error {
		t := tickets[i]
		_, err := commands.SendTx(exec, []types.Signer{payer}, client.Close(t.LotteryRef, t.Address, t.Owner))
		return errors.Wrapf(err, "close %s", t.Address)
	})
}

// batch 逐个执行, 失败的记录下来继续, 最后返回第一个错误
func batch(count int, fn func(i int) error) error {
	var first error
	done := 0
	for i := 0; i < count; i++ {
		if err := fn(i); err != nil {
			fmt.Fprintln(os.Stderr, err)
			if first == nil {
				first = err
			}
			continue
		}
		done++
	}
	fmt.Printf("%d/%d done\n", done, count)
	return first
}

func addLotteryFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("lottery", "l", "", "lottery address")
	cmd.MarkFlagRequired("lottery")
}

func lotteryFlag(cmd *cobra.Command, r client.AccountReader) (types.Pubkey, *pty.Lottery, error) {
	lottery, err := commands.PubkeyFlag(cmd, "lottery")
	if err != nil {
		return types.Pubkey{}, nil, err
	}
	l, err := client.GetLottery(r, lottery)
	if err != nil {
		return types.Pubkey{}, nil, err
	}
	return lottery, l, nil
}

func amountFlag(cmd *cobra.Command, exec *executor.Executor, mint types.Pubkey, name string) (uint64, error) {
	decimals, err := commands.MintDecimals(exec, mint)
	if err != nil {
		return 0, err
	}
	s, _ := cmd.Flags().GetString(name)
	return commands.ParseAmount(s, decimals)
}

func printLottery(exec *executor.Executor, lottery types.Pubkey) error {
	l, err := client.GetLottery(exec, lottery)
	if err != nil {
		return err
	}
	commands.PrintJSON(pty.NewLotteryInfo(lottery, l, exec.Slot()))
	return nil
}
