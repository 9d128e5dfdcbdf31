// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor

import (
	"github.com/33cn/lottery/common/address"
	pty "github.com/33cn/lottery/plugin/dapp/lottery/types"
	"github.com/33cn/lottery/types"
)

// calcEscrowSeeds 奖池托管地址的种子: lottery 账户地址本身, 不带 bump
func calcEscrowSeeds(lottery types.Pubkey) [][]byte {
	return [][]byte{lottery.Bytes()}
}

// EscrowOwner 奖池资产账户的所有者, 由 lottery 地址派生, 只有本程序可以代它签名.
// 地址恰好在曲线上时返回错误, 客户端需要换一个 lottery 地址
func EscrowOwner(lottery types.Pubkey) (types.Pubkey, error) {
	return address.CreateProgramAddress(calcEscrowSeeds(lottery), pty.ProgramID)
}
