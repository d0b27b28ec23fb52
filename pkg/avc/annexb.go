// Copyright 2019, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package avc

import (
	"errors"

	"github.com/q191201771/naza/pkg/bele"
	"github.com/q191201771/naza/pkg/nazabits"
)

var ErrAvc = errors.New("tsmux.avc: fxxk")

// NaluStartCode is the Annex-B start code every NAL unit is prefixed with.
var NaluStartCode = []byte{0x00, 0x00, 0x00, 0x01}

// AudNal is a full Annex-B access unit delimiter NAL (primary_pic_type=7,
// "any slice type may be used").
var AudNal = []byte{0x00, 0x00, 0x00, 0x01, 0x09, 0xF0}

var NaluUintTypeMapping = map[uint8]string{
	1: "SLICE",
	5: "IDR",
	6: "SEI",
	7: "SPS",
	8: "PPS",
	9: "AUD",
}

const (
	NaluUnitTypeSlice    uint8 = 1
	NaluUnitTypeIdrSlice uint8 = 5
	NaluUnitTypeSei      uint8 = 6
	NaluUnitTypeSps      uint8 = 7
	NaluUnitTypePps      uint8 = 8
	NaluUnitTypeAud      uint8 = 9
)

func CalcNaluType(nalu []byte) uint8 {
	return nalu[0] & 0x1F
}

func CalcNaluTypeReadable(nalu []byte) string {
	ret, ok := NaluUintTypeMapping[CalcNaluType(nalu)]
	if !ok {
		return "unknown"
	}
	return ret
}

// LengthPrefixedToAnnexB converts one access unit's worth of 4-byte
// length-prefixed NAL units (AVCC framing) to Annex-B start-code framing.
// When isIdr is true, an AUD NAL and the SPS/PPS from the current AVC
// configuration are prepended, each with its own start code.
func LengthPrefixedToAnnexB(payload, sps, pps []byte, isIdr bool) ([]byte, error) {
	out := make([]byte, 0, len(payload)+len(sps)+len(pps)+32)

	if isIdr {
		out = append(out, AudNal...)
		out = append(out, NaluStartCode...)
		out = append(out, sps...)
		out = append(out, NaluStartCode...)
		out = append(out, pps...)
	}

	for i := 0; i < len(payload); {
		if i+4 > len(payload) {
			return nil, ErrAvc
		}
		naluLen := int(bele.BeUint32(payload[i:]))
		i += 4
		if naluLen < 0 || i+naluLen > len(payload) {
			return nil, ErrAvc
		}
		out = append(out, NaluStartCode...)
		out = append(out, payload[i:i+naluLen]...)
		i += naluLen
	}

	return out, nil
}

// CalcSliceType reads slice_type, the golomb-coded field that follows
// first_mb_in_slice in a slice NAL's header, used only for diagnostics.
func CalcSliceType(nalu []byte) uint8 {
	br := nazabits.NewBitReader(nalu[1:])
	if _, err := br.ReadGolomb(); err != nil { // first_mb_in_slice
		return 0xFF
	}
	v, err := br.ReadGolomb()
	if err != nil {
		return 0xFF
	}
	return uint8(v % 5)
}
