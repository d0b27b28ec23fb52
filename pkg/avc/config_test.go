// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package avc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildAvcC(sps, pps []byte) []byte {
	out := []byte{0x01, 0x64, 0x00, 0x1F, 0xFF}
	out = append(out, 0xE1) // numOfSps = 1
	out = append(out, byte(len(sps)>>8), byte(len(sps)))
	out = append(out, sps...)
	out = append(out, 0x01) // numOfPps = 1
	out = append(out, byte(len(pps)>>8), byte(len(pps)))
	out = append(out, pps...)
	return out
}

func TestParseDecoderConfigurationRecord(t *testing.T) {
	sps := []byte{0x67, 0x64, 0x00, 0x1F}
	pps := []byte{0x68, 0xEB}

	avcC := buildAvcC(sps, pps)
	gotSps, gotPps, err := ParseDecoderConfigurationRecord(avcC)
	assert.Nil(t, err)
	assert.Equal(t, sps, gotSps)
	assert.Equal(t, pps, gotPps)
}

func TestParseDecoderConfigurationRecordTooShort(t *testing.T) {
	_, _, err := ParseDecoderConfigurationRecord([]byte{0x01, 0x02})
	assert.Equal(t, ErrAvc, err)
}
