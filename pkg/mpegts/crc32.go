// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

// CalcCrc32Mpeg2 computes CRC-32/MPEG-2 over buffer: polynomial 0x04C11DB7,
// init 0xFFFFFFFF, direct (non-reflected) bit order, no final XOR.
//
// hash/crc32's tables are built for the reflected IEEE variant, which is a
// different algorithm from the one PSI sections require; this is the
// straightforward bitwise form instead of a reflected table lookup.
func CalcCrc32Mpeg2(buffer []byte) uint32 {
	crc := uint32(0xFFFFFFFF)
	for _, b := range buffer {
		crc ^= uint32(b) << 24
		for i := 0; i < 8; i++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ 0x04C11DB7
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
