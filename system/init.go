// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package system 注册内置程序: system, token, ata
package system

import (
	_ "github.com/33cn/lottery/system/dapp/ata"    //auto gen
	_ "github.com/33cn/lottery/system/dapp/system" //auto gen
	_ "github.com/33cn/lottery/system/dapp/token"  //auto gen
)
