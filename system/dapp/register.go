// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dapp

import (
	"sort"

	"github.com/33cn/lottery/types"
	log "github.com/inconshreveable/log15"
)

var elog = log.New("module", "execs")

// DriverCreate defines a drivercreate function
type DriverCreate func() Driver

type registered struct {
	name   string
	create DriverCreate
}

var execDrivers = make(map[types.Pubkey]*registered)

// Register 按程序地址注册驱动
func Register(programID types.Pubkey, name string, create DriverCreate) {
	if create == nil {
		panic("Execute: Register driver is nil")
	}
	if _, dup := execDrivers[programID]; dup {
		panic("Execute: Register called twice for driver " + name)
	}
	execDrivers[programID] = &registered{name: name, create: create}
}

// LoadDriver load driver
func LoadDriver(programID types.Pubkey) (Driver, error) {
	c, ok := execDrivers[programID]
	if !ok {
		elog.Debug("LoadDriver", "program", programID)
		return nil, types.ErrProgramNotFound
	}
	return c.create(), nil
}

// ProgramName 已注册程序的名称
func ProgramName(programID types.Pubkey) string {
	if c, ok := execDrivers[programID]; ok {
		return c.name
	}
	return programID.String()
}

// RegisteredPrograms 所有已注册的程序地址, 按字节序
func RegisteredPrograms() []types.Pubkey {
	ids := make([]types.Pubkey, 0, len(execDrivers))
	for id := range execDrivers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	return ids
}
