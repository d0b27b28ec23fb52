// Copyright 2019, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package avc

import "github.com/q191201771/naza/pkg/bele"

// ParseDecoderConfigurationRecord extracts SPS and PPS from an AVC decoder
// configuration record (avcC), as delivered by an H.264 encoder's format
// description. Only the first SPS/PPS is kept; multi-SPS/PPS streams are
// not something this muxer's downstream (a single PAT/PMT program) needs
// to disambiguate between.
//
// H.264-AVC-ISO_IEC_14496-15.pdf, 5.2.4 Decoder configuration information.
func ParseDecoderConfigurationRecord(avcC []byte) (sps, pps []byte, err error) {
	if len(avcC) < 6 {
		err = ErrAvc
		return
	}

	// configurationVersion := avcC[0]
	// avcProfileIndication := avcC[1]
	// profileCompatibility := avcC[2]
	// avcLevelIndication := avcC[3]
	// lengthSizeMinusOne := avcC[4] & 0x03

	index := 5

	numOfSps := int(avcC[index] & 0x1F)
	index++
	for i := 0; i < numOfSps; i++ {
		if index+2 > len(avcC) {
			return nil, nil, ErrAvc
		}
		lenOfSps := int(bele.BeUint16(avcC[index:]))
		index += 2
		if index+lenOfSps > len(avcC) {
			return nil, nil, ErrAvc
		}
		if i == 0 {
			sps = append(sps, avcC[index:index+lenOfSps]...)
		}
		index += lenOfSps
	}

	if index >= len(avcC) {
		return nil, nil, ErrAvc
	}
	numOfPps := int(avcC[index] & 0x1F)
	index++
	for i := 0; i < numOfPps; i++ {
		if index+2 > len(avcC) {
			return nil, nil, ErrAvc
		}
		lenOfPps := int(bele.BeUint16(avcC[index:]))
		index += 2
		if index+lenOfPps > len(avcC) {
			return nil, nil, ErrAvc
		}
		if i == 0 {
			pps = append(pps, avcC[index:index+lenOfPps]...)
		}
		index += lenOfPps
	}

	return
}
