// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package hls

import (
	"bytes"
	"fmt"
	"math"

	"github.com/q191201771/naza/pkg/filesystemlayer"
	"github.com/q191201771/naza/pkg/nazaerrors"
)

// fileEntry is one completed segment as tracked for playlist rendering
// and disk pruning.
type fileEntry struct {
	filename        string
	duration        float64
	isDiscontinuous bool
	isSkipped       bool
}

// buildPlaylist renders the sliding-window m3u8 for files, whose
// zero-based ordinal of its first element is startSeq. CRLF line
// endings, no #EXT-X-ENDLIST: this is always a live, in-progress
// playlist.
func buildPlaylist(files []fileEntry, startSeq int, segmentDuration float64) []byte {
	target := int(math.Ceil(segmentDuration))
	maxDur := 0.0
	for _, f := range files {
		if f.duration > maxDur {
			maxDur = f.duration
		}
	}
	if maxDur > segmentDuration {
		if t := int(math.Ceil(maxDur)) + 1; t > target {
			target = t
		}
	}

	var b bytes.Buffer
	crlf := func(line string) {
		b.WriteString(line)
		b.WriteString("\r\n")
	}

	crlf("#EXTM3U")
	crlf("#EXT-X-VERSION:3")
	crlf("#EXT-X-ALLOW-CACHE:NO")
	crlf(fmt.Sprintf("#EXT-X-MEDIA-SEQUENCE:%d", startSeq))
	crlf(fmt.Sprintf("#EXT-X-TARGETDURATION:%d", target))

	for _, f := range files {
		if f.isSkipped {
			continue
		}
		if f.isDiscontinuous {
			crlf("#EXT-X-DISCONTINUITY")
		}
		crlf(fmt.Sprintf("#EXTINF:%.3f,", f.duration))
		crlf(f.filename)
	}

	return b.Bytes()
}

// writePlaylist writes content to filename by first writing to a
// sibling .bak path and renaming over the final name, so a concurrent
// reader never observes a half-written playlist.
func writePlaylist(fsl filesystemlayer.IFileSystemLayer, content []byte, filename, bakFilename string) error {
	if err := fsl.WriteFile(bakFilename, content, 0666); err != nil {
		return nazaerrors.Wrap(err)
	}
	if err := fsl.Rename(bakFilename, filename); err != nil {
		return nazaerrors.Wrap(err)
	}
	return nil
}
