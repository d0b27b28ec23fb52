// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

// BuildPesHeader encodes a PES packet header for one access unit. dts is
// only written (and DTS present flag set) when hasDts is true; dts is not
// compared with pts here. unbounded controls whether PES_packet_length is emitted as 0
// (video, whose length is not known up front) or as the exact remaining
// length (audio).
func BuildPesHeader(streamId uint8, pts, dts uint64, hasDts bool, payloadLen int, unbounded bool) []byte {
	headerSize := uint8(5)
	flags := uint8(PtsDtsMarkerPtsOnly) << 6
	if hasDts {
		headerSize += 5
		flags = uint8(PtsDtsMarkerPtsWithDts) << 6
	}

	pesPacketLength := payloadLen + int(headerSize) + 3
	if unbounded || pesPacketLength > 0xFFFF {
		pesPacketLength = 0
	}

	out := make([]byte, 9+int(headerSize))
	out[0] = 0x00
	out[1] = 0x00
	out[2] = 0x01
	out[3] = streamId
	out[4] = uint8(pesPacketLength >> 8)
	out[5] = uint8(pesPacketLength & 0xFF)
	out[6] = 0x84 // '10' + data_alignment_indicator=1
	out[7] = flags
	out[8] = headerSize

	ptsBytes := EncodePts(pts, flags>>6)
	copy(out[9:], ptsBytes[:])

	if hasDts {
		dtsBytes := EncodePts(dts, uint8(PtsDtsMarkerDts))
		copy(out[14:], dtsBytes[:])
	}

	return out
}
