// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package hls

import "fmt"

// PlaylistFilename is the fixed name of the live playlist within a
// muxer's output directory.
const PlaylistFilename = "ScreenRecording.m3u8"

const playlistBakFilename = PlaylistFilename + ".bak"

func getSegmentFilename(sequence int) string {
	return fmt.Sprintf("part%05d.ts", sequence)
}

func getSegmentPath(outPath string, sequence int) string {
	return fmt.Sprintf("%s%s", outPath, getSegmentFilename(sequence))
}

func getPlaylistPath(outPath string) string {
	return fmt.Sprintf("%s%s", outPath, PlaylistFilename)
}

func getPlaylistBakPath(outPath string) string {
	return fmt.Sprintf("%s%s", outPath, playlistBakFilename)
}
