// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package hls

import "errors"

var (
	ErrHls               = errors.New("tsmux.hls: fxxk")
	ErrHlsNoAudioConfig  = errors.New("tsmux.hls: audio sample arrived before audio config")
	ErrHlsNoVideoConfig  = errors.New("tsmux.hls: video sample arrived before video config")
	ErrHlsAlreadyStarted = errors.New("tsmux.hls: muxer already started")
)
