// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package hls

import (
	"bytes"
	"testing"

	"github.com/q191201771/naza/pkg/filesystemlayer"
	"github.com/stretchr/testify/assert"
)

func TestBuildPlaylistBasic(t *testing.T) {
	files := []fileEntry{
		{filename: "part00000.ts", duration: 2.0},
		{filename: "part00001.ts", duration: 1.9},
	}
	content := buildPlaylist(files, 0, 2.0)

	assert.True(t, bytes.Contains(content, []byte("#EXTM3U\r\n")))
	assert.True(t, bytes.Contains(content, []byte("#EXT-X-VERSION:3\r\n")))
	assert.True(t, bytes.Contains(content, []byte("#EXT-X-MEDIA-SEQUENCE:0\r\n")))
	assert.True(t, bytes.Contains(content, []byte("#EXT-X-TARGETDURATION:2\r\n")))
	assert.True(t, bytes.Contains(content, []byte("#EXTINF:2.000,\r\npart00000.ts\r\n")))
	assert.False(t, bytes.Contains(content, []byte("#EXT-X-ENDLIST")))
}

func TestBuildPlaylistDiscontinuity(t *testing.T) {
	files := []fileEntry{
		{filename: "part00003.ts", duration: 2.0, isDiscontinuous: true},
	}
	content := buildPlaylist(files, 3, 2.0)
	assert.True(t, bytes.Contains(content, []byte("#EXT-X-MEDIA-SEQUENCE:3\r\n")))
	assert.True(t, bytes.Contains(content, []byte("#EXT-X-DISCONTINUITY\r\n#EXTINF:2.000,\r\npart00003.ts\r\n")))
}

func TestBuildPlaylistSkippedEntryOmitted(t *testing.T) {
	files := []fileEntry{
		{filename: "part00000.ts", duration: 2.0, isSkipped: true},
		{filename: "part00001.ts", duration: 2.0},
	}
	content := buildPlaylist(files, 0, 2.0)
	assert.False(t, bytes.Contains(content, []byte("part00000.ts")))
	assert.True(t, bytes.Contains(content, []byte("part00001.ts")))
}

func TestBuildPlaylistTargetDurationGrowsWithLongEntry(t *testing.T) {
	files := []fileEntry{
		{filename: "part00000.ts", duration: 5.4},
	}
	content := buildPlaylist(files, 0, 2.0)
	assert.True(t, bytes.Contains(content, []byte("#EXT-X-TARGETDURATION:7\r\n")))
}

func TestWritePlaylistBakThenRename(t *testing.T) {
	fsl := filesystemlayer.FslFactory(filesystemlayer.FslTypeMemory)
	err := writePlaylist(fsl, []byte("hello"), "/out/ScreenRecording.m3u8", "/out/ScreenRecording.m3u8.bak")
	assert.Nil(t, err)

	got, err := fsl.ReadFile("/out/ScreenRecording.m3u8")
	assert.Nil(t, err)
	assert.Equal(t, []byte("hello"), got)
}
