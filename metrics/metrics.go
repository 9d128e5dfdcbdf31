// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics 执行统计
package metrics

import (
	"fmt"
	"time"

	"github.com/33cn/lottery/types"
	log15 "github.com/inconshreveable/log15"
	go_metrics "github.com/rcrowley/go-metrics"
)

var (
	log = log15.New("module", "lottery metrics")
)

// 执行器统计项
var (
	TxExecTimer   = go_metrics.GetOrRegisterTimer("executor/tx/exec", nil)
	TxOkMeter     = go_metrics.GetOrRegisterMeter("executor/tx/ok", nil)
	TxFailMeter   = go_metrics.GetOrRegisterMeter("executor/tx/fail", nil)
	TxRejectMeter = go_metrics.GetOrRegisterMeter("executor/tx/reject", nil)
	FeeCounter    = go_metrics.GetOrRegisterCounter("executor/fee", nil)
	SlotGauge     = go_metrics.GetOrRegisterGauge("executor/slot", nil)
)

// InstructionMeter 某个程序执行的指令数 (含跨程序调用)
func InstructionMeter(program string) go_metrics.Meter {
	return go_metrics.GetOrRegisterMeter("executor/ix/"+program, nil)
}

// InstructionFailMeter 某个程序失败的指令数
func InstructionFailMeter(program string) go_metrics.Meter {
	return go_metrics.GetOrRegisterMeter("executor/ix/"+program+"/fail", nil)
}

type logger struct{}

func (logger) Printf(format string, v ...interface{}) {
	log.Info(fmt.Sprintf(format, v...))
}

//StartMetrics 根据配置文件相关参数启动, 周期地把统计数据写到日志
func StartMetrics(cfg *types.Metrics) {
	if cfg == nil || !cfg.EnableMetrics {
		log.Info("Metrics data is not enabled to emit")
		return
	}
	interval := time.Duration(cfg.Interval) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	log.Info("StartMetrics", "interval", interval)
	go go_metrics.Log(go_metrics.DefaultRegistry, interval, logger{})
}
