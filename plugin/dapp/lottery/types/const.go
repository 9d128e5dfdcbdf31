// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package types lottery 程序的地址, 记录格式, 指令以及错误
package types

import (
	"github.com/33cn/lottery/types"
)

// LotteryX 程序名称
const LotteryX = "lottery"

var (
	// ProgramID lottery 程序地址
	ProgramID = types.MustPubkeyFromString("42hrGQzkPQMXTmtpsE9hb9D7dTffzYXgqC4DHUHubJSv")
	// FeeCollector 手续费接收者, 编译时固定
	FeeCollector = types.MustPubkeyFromString("2wnEcArzCpX1QRdtpHRXxZ7k9b1UeK16mPt26LPWFZ6V")
)

//Lottery op
const (
	LotteryActionInitialize = uint8(iota)
	LotteryActionContribute
	LotteryActionDraw
	LotteryActionSettle
	LotteryActionRelease
	LotteryActionCancel
)

//Lottery status, 也是记录的第一个字节
const (
	StateUninitialized = uint8(iota)
	StateOpen
	StateTicket
	StateDrawn
	StateSettled
)

// 记录长度以及格式版本
const (
	LotteryLen           = 161
	TicketLen            = 81
	LotteryLayoutVersion = 2
)

// 手续费比例 20/100, 向下取整
const (
	FeeNumerator   = 20
	FeeDenominator = 100
)

// StateName 状态名称
func StateName(state uint8) string {
	switch state {
	case StateUninitialized:
		return "uninitialized"
	case StateOpen:
		return "open"
	case StateTicket:
		return "ticket"
	case StateDrawn:
		return "drawn"
	case StateSettled:
		return "settled"
	}
	return "unknown"
}
