// Copyright 2019, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package aac

import "github.com/q191201771/naza/pkg/nazabits"

// PackAdtsHeader synthesizes a fresh 7-byte ADTS header for one raw AAC
// access unit of frameLength bytes. Every access unit needs its own header
// since aac_frame_length depends on the frame's size.
func (ascCtx *AscContext) PackAdtsHeader(frameLength int) (out []byte) {
	out = make([]byte, AdtsHeaderLength)
	_ = ascCtx.PackToAdtsHeader(out, frameLength)
	return
}

// PackToAdtsHeader writes the ADTS header into out, which must be at least
// AdtsHeaderLength bytes. The caller retains ownership of out.
func (ascCtx *AscContext) PackToAdtsHeader(out []byte, frameLength int) error {
	if len(out) < AdtsHeaderLength {
		return ErrAac
	}

	// <ISO_IEC_14496-3.pdf>
	// <1.A.2.2.1 Fixed Header of ADTS>, <page 75/110>
	// <1.A.2.2.2 Variable Header of ADTS>, <page 76/110>
	// ----------------------------------------------------
	// Syncword                 [12b] '1111 1111 1111'
	// ID                       [1b]  1=MPEG-2 AAC 0=MPEG-4
	// Layer                    [2b]
	// protection_absent        [1b]  1=no crc check
	// Profile_ObjectType       [2b]
	// sampling_frequency_index [4b]
	// private_bit              [1b]
	// channel_configuration    [3b]
	// origin/copy              [1b]
	// home                     [1b]
	// copyright_identification_bit   [1b]
	// copyright_identification_start [1b]
	// aac_frame_length               [13b]
	// adts_buffer_fullness           [11b]
	// no_raw_data_blocks_in_frame    [2b]

	bw := nazabits.NewBitWriter(out)
	bw.WriteBits16(12, 0xFFF)
	bw.WriteBits8(4, 0x1)
	bw.WriteBits8(2, ascCtx.AudioObjectType-1)
	bw.WriteBits8(4, ascCtx.SamplingFrequencyIndex)
	bw.WriteBits8(1, 0)
	bw.WriteBits8(3, ascCtx.ChannelConfiguration)
	bw.WriteBits8(4, 0)
	bw.WriteBits16(13, uint16(frameLength+AdtsHeaderLength))
	bw.WriteBits16(11, 0x7FF)
	bw.WriteBits8(2, 0)
	return nil
}
