// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package hls

// WriterErrorKind classifies the failure modes a Muxer can encounter
// while touching the filesystem. None of these abort the muxer; each
// is handled locally and reported through Delegate.OnWriterError.
type WriterErrorKind int

const (
	WriterErrorKindTempDirectory WriterErrorKind = iota
	WriterErrorKindRemoveItem
	WriterErrorKindWrite
	WriterErrorKindWriteToUrl
	WriterErrorKindSyncAndClose
)

func (k WriterErrorKind) String() string {
	switch k {
	case WriterErrorKindTempDirectory:
		return "tempDirectory"
	case WriterErrorKindRemoveItem:
		return "removeItem"
	case WriterErrorKindWrite:
		return "write"
	case WriterErrorKindWriteToUrl:
		return "writeToUrl"
	case WriterErrorKindSyncAndClose:
		return "syncAndClose"
	default:
		return "unknown"
	}
}

// Delegate receives every observable side effect a Muxer produces.
// Methods are called synchronously from several goroutines: OnOutput
// from whichever goroutine writes the bytes (the one feeding samples and
// configs, or the writer's lock queue for a new segment's PAT/PMT), the
// rest from the writer's lock queue, write queue and playlist
// goroutines, so calls may arrive concurrently. Implementations that
// need to do slow work should hand it off rather than block the caller.
type Delegate interface {
	// OnOutput is called with the raw TS bytes of every write, segment
	// boundaries included, regardless of whether OutPath is set.
	OnOutput(b []byte)

	// OnRotate is called once a rotation completes, with the PTS (in
	// 90kHz units) that triggered it.
	OnRotate(timestamp uint64)

	// OnGenerateTs is called with the path of a segment file once
	// rotation has moved past it and the playlist listing it has been
	// written; the file's final sync and close may still be in progress.
	// Not called in memory-only mode.
	OnGenerateTs(filename string)

	// OnGenerateM3u8 is called with the path of the playlist once it
	// has been rewritten. Not called in memory-only mode.
	OnGenerateM3u8(filename string)

	// OnWriterError reports a non-fatal I/O failure.
	OnWriterError(kind WriterErrorKind, logs string)
}

// NopDelegate is a Delegate that does nothing, useful as an embeddable
// default or for tests that only care about a subset of callbacks.
type NopDelegate struct{}

func (NopDelegate) OnOutput([]byte)                       {}
func (NopDelegate) OnRotate(uint64)                       {}
func (NopDelegate) OnGenerateTs(string)                   {}
func (NopDelegate) OnGenerateM3u8(string)                 {}
func (NopDelegate) OnWriterError(WriterErrorKind, string) {}
