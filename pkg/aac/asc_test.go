// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package aac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAscContextPackUnpack(t *testing.T) {
	ascCtx := AscContext{
		AudioObjectType:        2, // AAC LC
		SamplingFrequencyIndex: AscSamplingFrequencyIndex44100,
		ChannelConfiguration:   2,
	}
	packed := ascCtx.Pack()
	assert.Equal(t, 2, len(packed))

	got, err := NewAscContext(packed)
	assert.Nil(t, err)
	assert.Equal(t, ascCtx, *got)
}

func TestAscContextUnpackShort(t *testing.T) {
	_, err := NewAscContext([]byte{0x12})
	assert.Equal(t, ErrAac, err)
}

func TestGetSamplingFrequency(t *testing.T) {
	ascCtx := AscContext{SamplingFrequencyIndex: AscSamplingFrequencyIndex48000}
	freq, err := ascCtx.GetSamplingFrequency()
	assert.Nil(t, err)
	assert.Equal(t, 48000, freq)

	ascCtx.SamplingFrequencyIndex = 0x0F
	_, err = ascCtx.GetSamplingFrequency()
	assert.Equal(t, ErrAac, err)
}
