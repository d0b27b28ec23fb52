// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

import "errors"

// PacketLength is the fixed size of every MPEG-TS packet.
const PacketLength = 188

// SyncByte starts every TS packet.
const SyncByte uint8 = 0x47

// Fixed PIDs and defaults.
const (
	PidPat          uint16 = 0x0000
	PidPmtDefault   uint16 = 4095
	PidVideoDefault uint16 = 256
	PidAudioDefault uint16 = 257
)

// PES stream_id values.
const (
	StreamIdAudio uint8 = 0xC0
	StreamIdVideo uint8 = 0xE0
)

// PMT stream_type values this muxer emits.
const (
	StreamTypeAac  uint8 = 0x0F
	StreamTypeH264 uint8 = 0x1B
	// StreamTypeH265 (0x24) is not emitted; video is H.264 only for now.
)

// ProgramNumber is the single program this muxer describes.
const ProgramNumber uint16 = 1

var (
	ErrMpegts        = errors.New("tsmux.mpegts: fxxk")
	ErrShortPacket   = errors.New("tsmux.mpegts: packet shorter than 188 bytes")
	ErrPidOutOfRange = errors.New("tsmux.mpegts: pid exceeds 13 bits")
)
