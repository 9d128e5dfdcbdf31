// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import "math/bits"

// SplitFee 奖池余额拆分为手续费和奖金, 手续费向下取整, 余数归奖金.
// 乘法使用 128 位中间值, 不会溢出
func SplitFee(balance uint64) (fee, prize uint64) {
	hi, lo := bits.Mul64(balance, FeeNumerator)
	fee, _ = bits.Div64(hi, lo, FeeDenominator)
	return fee, balance - fee
}

// WinningNumber 把 64 位随机数映射到 [1, total]: 1 + hi64(entropy * total).
// total 为 0 时返回 0; 偏差小于 total/2^64
func WinningNumber(entropy, total uint64) uint64 {
	if total == 0 {
		return 0
	}
	hi, _ := bits.Mul64(entropy, total)
	return hi + 1
}
