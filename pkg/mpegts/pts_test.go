// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodePts(t *testing.T) {
	cases := []uint64{0, 1, 90000, 1<<33 - 1, 123456789}
	for _, pts := range cases {
		enc := EncodePts(pts, PtsDtsMarkerPtsOnly)
		assert.Equal(t, pts, DecodePts(enc[:]))

		assert.Equal(t, uint8(1), enc[0]&0x01)
		assert.Equal(t, uint8(1), enc[2]&0x01)
		assert.Equal(t, uint8(1), enc[4]&0x01)
		assert.Equal(t, PtsDtsMarkerPtsOnly, enc[0]>>4)
	}
}

func TestEncodeDecodePcr(t *testing.T) {
	cases := []uint64{0, 1, 8100000000, uint64(1)<<33*300 - 1}
	for _, ticks := range cases {
		pcr := PcrTicks(ticks)
		enc := EncodePcr(pcr)
		assert.Equal(t, pcr, DecodePcr(enc[:]))
		assert.Equal(t, uint8(0x7E), enc[4]&0x7E)
	}
}

func TestNewPcrTicksFrom90khz(t *testing.T) {
	pcr := NewPcrTicks(90000)
	assert.Equal(t, PcrTicks(90000*300), pcr)
}
