// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package avc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func lengthPrefixed(nalus ...[]byte) []byte {
	var out []byte
	for _, n := range nalus {
		out = append(out, byte(len(n)>>24), byte(len(n)>>16), byte(len(n)>>8), byte(len(n)))
		out = append(out, n...)
	}
	return out
}

func TestLengthPrefixedToAnnexBNonIdr(t *testing.T) {
	nalu := []byte{0x41, 0xAA, 0xBB}
	payload := lengthPrefixed(nalu)

	got, err := LengthPrefixedToAnnexB(payload, nil, nil, false)
	assert.Nil(t, err)

	want := append(append([]byte{}, NaluStartCode...), nalu...)
	assert.Equal(t, want, got)
}

func TestLengthPrefixedToAnnexBIdrPrependsAudSpsPps(t *testing.T) {
	sps := []byte{0x67, 0x64, 0x00, 0x1F}
	pps := []byte{0x68, 0xEB}
	nalu := []byte{0x65, 0x88, 0x84}
	payload := lengthPrefixed(nalu)

	got, err := LengthPrefixedToAnnexB(payload, sps, pps, true)
	assert.Nil(t, err)

	assert.True(t, bytes.HasPrefix(got, AudNal))
	rest := got[len(AudNal):]
	assert.True(t, bytes.HasPrefix(rest, NaluStartCode))
	assert.Contains(t, string(got), string(sps))
	assert.Contains(t, string(got), string(pps))
	assert.Contains(t, string(got), string(nalu))
}

func TestLengthPrefixedToAnnexBMultipleNalus(t *testing.T) {
	n1 := []byte{0x06, 0x01}
	n2 := []byte{0x41, 0x02, 0x03}
	payload := lengthPrefixed(n1, n2)

	got, err := LengthPrefixedToAnnexB(payload, nil, nil, false)
	assert.Nil(t, err)

	want := append(append([]byte{}, NaluStartCode...), n1...)
	want = append(want, NaluStartCode...)
	want = append(want, n2...)
	assert.Equal(t, want, got)
}

func TestLengthPrefixedToAnnexBTruncated(t *testing.T) {
	_, err := LengthPrefixedToAnnexB([]byte{0x00, 0x00, 0x00, 0x10, 0x01}, nil, nil, false)
	assert.Equal(t, ErrAvc, err)
}

func TestCalcNaluType(t *testing.T) {
	assert.Equal(t, NaluUnitTypeIdrSlice, CalcNaluType([]byte{0x65}))
	assert.Equal(t, NaluUnitTypeSps, CalcNaluType([]byte{0x67}))
	assert.Equal(t, "IDR", CalcNaluTypeReadable([]byte{0x65}))
}
