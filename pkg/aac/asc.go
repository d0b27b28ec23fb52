// Copyright 2019, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package aac

import (
	"errors"

	"github.com/q191201771/naza/pkg/nazabits"
	"github.com/q191201771/naza/pkg/nazalog"
)

var ErrAac = errors.New("tsmux.aac: fxxk")

const (
	AdtsHeaderLength = 7

	AscSamplingFrequencyIndex96000 = 0
	AscSamplingFrequencyIndex88200 = 1
	AscSamplingFrequencyIndex64000 = 2
	AscSamplingFrequencyIndex48000 = 3
	AscSamplingFrequencyIndex44100 = 4
	AscSamplingFrequencyIndex32000 = 5
	AscSamplingFrequencyIndex24000 = 6
	AscSamplingFrequencyIndex22050 = 7
	AscSamplingFrequencyIndex16000 = 8
	AscSamplingFrequencyIndex12000 = 9
	AscSamplingFrequencyIndex11025 = 10
	AscSamplingFrequencyIndex8000  = 11
)

const minAscLength = 2

var samplingFrequencyByIndex = map[uint8]int{
	AscSamplingFrequencyIndex96000: 96000,
	AscSamplingFrequencyIndex88200: 88200,
	AscSamplingFrequencyIndex64000: 64000,
	AscSamplingFrequencyIndex48000: 48000,
	AscSamplingFrequencyIndex44100: 44100,
	AscSamplingFrequencyIndex32000: 32000,
	AscSamplingFrequencyIndex24000: 24000,
	AscSamplingFrequencyIndex22050: 22050,
	AscSamplingFrequencyIndex16000: 16000,
	AscSamplingFrequencyIndex12000: 12000,
	AscSamplingFrequencyIndex11025: 11025,
	AscSamplingFrequencyIndex8000:  8000,
}

// AscContext is an AudioSpecificConfig: the two-byte descriptor an upstream
// audio encoder hands over once per configuration, from which every
// subsequent access unit's ADTS header is synthesized.
//
// <ISO_IEC_14496-3.pdf>
// <1.6.2.1 AudioSpecificConfig>, <page 33/110>
// <1.5.1.1 Audio Object type definition>, <page 23/110>
// <1.6.3.3 samplingFrequencyIndex>, <page 35/110>
// <1.6.3.4 channelConfiguration>
// --------------------------------------------------------
// audio object type      [5b] 1=AAC MAIN  2=AAC LC
// samplingFrequencyIndex [4b] 3=48000  4=44100  6=24000  5=32000  11=11025
// channelConfiguration   [4b] 1=center front speaker  2=left, right front speakers
type AscContext struct {
	AudioObjectType        uint8 // [5b]
	SamplingFrequencyIndex uint8 // [4b]
	ChannelConfiguration   uint8 // [4b]
}

func NewAscContext(asc []byte) (*AscContext, error) {
	var ascCtx AscContext
	if err := ascCtx.Unpack(asc); err != nil {
		return nil, err
	}
	return &ascCtx, nil
}

// Unpack reads the two-byte AudioSpecificConfig. The caller retains
// ownership of asc after the call returns.
func (ascCtx *AscContext) Unpack(asc []byte) error {
	if len(asc) < minAscLength {
		nazalog.Warnf("aac asc length invalid. len=%d", len(asc))
		return ErrAac
	}

	br := nazabits.NewBitReader(asc)
	ascCtx.AudioObjectType, _ = br.ReadBits8(5)
	ascCtx.SamplingFrequencyIndex, _ = br.ReadBits8(4)
	ascCtx.ChannelConfiguration, _ = br.ReadBits8(4)
	return nil
}

// Pack returns a freshly allocated two-byte AudioSpecificConfig.
func (ascCtx *AscContext) Pack() (asc []byte) {
	asc = make([]byte, minAscLength)
	bw := nazabits.NewBitWriter(asc)
	bw.WriteBits8(5, ascCtx.AudioObjectType)
	bw.WriteBits8(4, ascCtx.SamplingFrequencyIndex)
	bw.WriteBits8(4, ascCtx.ChannelConfiguration)
	return
}

func (ascCtx *AscContext) GetSamplingFrequency() (int, error) {
	if freq, ok := samplingFrequencyByIndex[ascCtx.SamplingFrequencyIndex]; ok {
		return freq, nil
	}
	nazalog.Errorf("GetSamplingFrequency failed. ascCtx=%+v", ascCtx)
	return -1, ErrAac
}
