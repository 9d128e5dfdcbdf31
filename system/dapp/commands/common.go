// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package commands 命令行: 本地账本的账户, slot 以及资产命令, 以及插件命令共用的辅助函数
package commands

import (
	"encoding/json"
	"fmt"
	"math/big"
	"math/rand"
	"os"
	"time"

	"github.com/33cn/lottery/common/crypto"
	"github.com/33cn/lottery/executor"
	"github.com/33cn/lottery/system/dapp/token"
	"github.com/33cn/lottery/types"
	"github.com/33cn/lottery/util/node"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// SolDecimals 原生币的精度
const SolDecimals = 9

var random = rand.New(rand.NewSource(time.Now().UnixNano()))

// OpenNode 按 --conf 打开本地账本, 配置文件不存在时使用默认配置
func OpenNode(cmd *cobra.Command) (*node.Node, error) {
	path, _ := cmd.Flags().GetString("conf")
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return node.NewFromFile(path)
		}
	}
	cfg, err := types.InitCfgString(types.GetDefaultCfgstring())
	if err != nil {
		return nil, err
	}
	return node.New(cfg, true)
}

// KeyPath --key, 没有指定时使用配置里的私钥文件
func KeyPath(cmd *cobra.Command, n *node.Node) string {
	path, _ := cmd.Flags().GetString("key")
	if path == "" && n.GetCfg().Wallet != nil {
		path = n.GetCfg().Wallet.KeyFile
	}
	return path
}

// LoadSigner 读取签名私钥
func LoadSigner(cmd *cobra.Command, n *node.Node) (*crypto.PrivKey, error) {
	path := KeyPath(cmd, n)
	priv, err := crypto.LoadKeyFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load key file %s", path)
	}
	return priv, nil
}

// SendTx 签名并执行, 第一个签名者支付手续费
func SendTx(exec *executor.Executor, signers []types.Signer, ixs ...*types.Instruction) (*types.Receipt, error) {
	tx := types.NewTransaction(random.Uint64(), ixs...)
	if len(signers) > 0 {
		tx.Payer = signers[0].Pubkey()
	}
	tx.Sign(signers...)
	receipt, err := exec.ExecTx(tx)
	if receipt != nil {
		for _, l := range receipt.Logs {
			fmt.Fprintln(os.Stderr, "  log:", l)
		}
	}
	return receipt, err
}

// ParsePubkey 地址, 出错时带上 flag 名称
func ParsePubkey(name, s string) (types.Pubkey, error) {
	key, err := types.PubkeyFromString(s)
	if err != nil {
		return types.Pubkey{}, errors.Wrapf(err, "%s %q", name, s)
	}
	return key, nil
}

// PubkeyFlag 读取地址类型的 flag
func PubkeyFlag(cmd *cobra.Command, name string) (types.Pubkey, error) {
	s, _ := cmd.Flags().GetString(name)
	return ParsePubkey(name, s)
}

// ParseAmount 十进制数量转换为最小单位, 小数位不能超过 decimals
func ParseAmount(s string, decimals int32) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errors.Wrapf(types.ErrAmount, "%q: %v", s, err)
	}
	v := d.Shift(decimals)
	if v.IsNegative() || !v.Equal(v.Truncate(0)) {
		return 0, errors.Wrapf(types.ErrAmount, "%q with %d decimals", s, decimals)
	}
	b := v.BigInt()
	if !b.IsUint64() {
		return 0, errors.Wrapf(types.ErrAmount, "%q overflows", s)
	}
	return b.Uint64(), nil
}

// FormatAmount 最小单位转换为十进制字符串
func FormatAmount(v uint64, decimals int32) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), -decimals).String()
}

// MintDecimals 资产精度
func MintDecimals(exec *executor.Executor, mint types.Pubkey) (int32, error) {
	acc, err := exec.GetAccount(mint)
	if err != nil {
		return 0, errors.Wrapf(err, "mint %s", mint)
	}
	if acc.Owner != token.ProgramID {
		return 0, errors.Wrapf(types.ErrNotFound, "%s is not a mint", mint)
	}
	m, err := token.UnpackMint(acc.Data)
	if err != nil {
		return 0, errors.Wrapf(err, "mint %s", mint)
	}
	return int32(m.Decimals), nil
}

// PrintJSON 缩进输出
func PrintJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Println(string(data))
}

// Fatal 输出错误并以非零状态退出
func Fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

// WithNode 打开账本, 执行 fn, 然后关闭
func WithNode(fn func(cmd *cobra.Command, args []string, n *node.Node) error) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		n, err := OpenNode(cmd)
		if err != nil {
			Fatal(err)
		}
		err = fn(cmd, args, n)
		n.Close()
		if err != nil {
			Fatal(err)
		}
	}
}
