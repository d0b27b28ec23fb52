// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

// PTS/DTS marker nibbles.
const (
	PtsDtsMarkerPtsOnly    uint8 = 0x2
	PtsDtsMarkerPtsWithDts uint8 = 0x3
	PtsDtsMarkerDts        uint8 = 0x1
)

// EncodePts packs a 33-bit 90kHz timestamp into the classic 5-byte
// 3|15|15 marker-bit-interleaved form used for both PTS and DTS fields.
// marker occupies the high nibble of the first byte.
func EncodePts(value uint64, marker uint8) [5]byte {
	var out [5]byte
	out[0] = (marker << 4) | uint8((value>>29)&0x0E) | 1

	v := uint16(((value>>15)&0x7FFF)<<1) | 1
	out[1] = byte(v >> 8)
	out[2] = byte(v)

	v = uint16((value&0x7FFF)<<1) | 1
	out[3] = byte(v >> 8)
	out[4] = byte(v)
	return out
}

// DecodePts is the inverse of EncodePts; used by tests to assert round-trips.
func DecodePts(b []byte) uint64 {
	var value uint64
	value |= uint64((b[0]>>1)&0x07) << 30
	value |= (uint64(b[1])<<8 | uint64(b[2])) >> 1 << 15
	value |= (uint64(b[3])<<8 | uint64(b[4])) >> 1
	return value
}

// PcrTicks is a PCR value expressed in 27MHz ticks, which is base*300+ext.
type PcrTicks uint64

// NewPcrTicks builds a PCR from a 90kHz base (e.g. a PTS/DTS value) with a
// zero 27MHz extension.
func NewPcrTicks(base90khz uint64) PcrTicks {
	return PcrTicks(base90khz * 300)
}

// EncodePcr packs the 33-bit base plus 9-bit extension into the 6-byte
// adaptation-field PCR form: base(33) | reserved(6 ones) | ext(9).
func EncodePcr(pcr PcrTicks) [6]byte {
	base := (uint64(pcr) / 300) & 0x1FFFFFFFF
	ext := uint16(uint64(pcr)%300) & 0x1FF

	var out [6]byte
	out[0] = byte(base >> 25)
	out[1] = byte(base >> 17)
	out[2] = byte(base >> 9)
	out[3] = byte(base >> 1)
	out[4] = byte(base<<7) | 0x7E | byte(ext>>8)
	out[5] = byte(ext)
	return out
}

// DecodePcr is the inverse of EncodePcr; used by tests.
func DecodePcr(b []byte) PcrTicks {
	base := uint64(b[0])<<25 | uint64(b[1])<<17 | uint64(b[2])<<9 | uint64(b[3])<<1 | uint64(b[4])>>7
	ext := uint64(b[4]&0x01)<<8 | uint64(b[5])
	return PcrTicks(base*300 + ext)
}
