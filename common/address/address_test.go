// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package address

import (
	"testing"

	"github.com/33cn/lottery/common/crypto"
	"github.com/33cn/lottery/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var program = types.Pubkey{7, 7, 7}

func TestIsOnCurve(t *testing.T) {
	priv, err := crypto.GenKey()
	require.NoError(t, err)
	pub := priv.Pubkey()
	assert.True(t, IsOnCurve(pub[:]))
	assert.False(t, IsOnCurve([]byte{1, 2}))
}

func TestFindProgramAddress(t *testing.T) {
	seeds := [][]byte{[]byte("lottery"), {1, 2, 3}}
	key, bump := FindProgramAddress(seeds, program)
	assert.False(t, IsOnCurve(key[:]))

	// bump 补到种子之后可以重新计算出同一个地址
	again, err := CreateProgramAddress(append(seeds, []byte{bump}), program)
	require.NoError(t, err)
	assert.Equal(t, key, again)

	// cache
	cached, cbump := FindProgramAddress(seeds, program)
	assert.Equal(t, key, cached)
	assert.Equal(t, bump, cbump)

	other, _ := FindProgramAddress(seeds, types.Pubkey{8})
	assert.NotEqual(t, key, other)
}

func TestCreateProgramAddressLimits(t *testing.T) {
	_, err := CreateProgramAddress([][]byte{make([]byte, MaxSeedLen+1)}, program)
	assert.Equal(t, ErrMaxSeedLengthExceeded, err)

	seeds := make([][]byte, MaxSeeds+1)
	_, err = CreateProgramAddress(seeds, program)
	assert.Equal(t, ErrMaxSeedLengthExceeded, err)
}

func TestCreateProgramAddressOnCurve(t *testing.T) {
	// 大约一半的种子落在曲线上, 100 次里两种结果都应该出现
	var ok, bad int
	for i := 0; i < 100; i++ {
		_, err := CreateProgramAddress([][]byte{{byte(i)}}, program)
		if err == nil {
			ok++
		} else {
			assert.Equal(t, ErrInvalidSeeds, err)
			bad++
		}
	}
	assert.NotZero(t, ok)
	assert.NotZero(t, bad)
}
