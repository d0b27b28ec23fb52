// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package hls

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/q191201771/naza/pkg/filesystemlayer"
)

// segmentWriter owns segment file lifecycle and playlist rotation. fp,
// nextSequence, files, rotatedTimestamp and isDiscontinuity are all
// guarded by mu: they are read and written from the producer goroutine
// (WriteBytes, MaybeRotate), from jobs on lockQueue and writeQueue, and
// from the playlist goroutine that rotate starts.
//
// rotating is a non-blocking, value-1 counting semaphore: a rotation
// already in flight causes later triggers to be dropped rather than
// queued, since a segment boundary that arrives 40ms late is no worse
// than one that arrives on time.
type segmentWriter struct {
	cfg        MuxerConfig
	fsl        filesystemlayer.IFileSystemLayer
	delegate   Delegate
	memoryMode bool

	lockQueue  chan func()
	writeQueue chan func()

	rotating int32

	mu               sync.Mutex
	fp               *os.File
	nextSequence     int
	files            []fileEntry
	rotatedTimestamp uint64
	isDiscontinuity  bool
}

func newSegmentWriter(cfg MuxerConfig, delegate Delegate) *segmentWriter {
	if cfg.OutPath != "" && !strings.HasSuffix(cfg.OutPath, "/") {
		cfg.OutPath += "/"
	}
	memoryMode := cfg.OutPath == "" || cfg.UseMemoryFs
	return &segmentWriter{
		cfg:        cfg,
		fsl:        newFsl(memoryMode),
		delegate:   delegate,
		memoryMode: memoryMode,
		lockQueue:  make(chan func(), 16),
		writeQueue: make(chan func(), 256),
	}
}

// Start opens the first segment and writes buildPsi's PAT/PMT into it.
// buildPsi is supplied by the caller since only it knows the current
// PMT elementary stream list and continuity counter state.
func (w *segmentWriter) Start(buildPsi func() []byte) {
	go w.runQueue(w.lockQueue)
	go w.runQueue(w.writeQueue)

	if !w.memoryMode {
		if err := os.RemoveAll(w.cfg.OutPath); err != nil {
			w.delegate.OnWriterError(WriterErrorKindTempDirectory, err.Error())
			w.memoryMode = true
		} else if err := os.MkdirAll(w.cfg.OutPath, 0755); err != nil {
			w.delegate.OnWriterError(WriterErrorKindTempDirectory, err.Error())
			w.memoryMode = true
		}
	}

	if !w.memoryMode {
		fp, err := os.Create(getSegmentPath(w.cfg.OutPath, 0))
		if err != nil {
			w.delegate.OnWriterError(WriterErrorKindTempDirectory, err.Error())
			w.memoryMode = true
		} else {
			w.fp = fp
		}
	}
	w.nextSequence = 1

	w.WriteBytes(buildPsi())
}

func (w *segmentWriter) runQueue(q chan func()) {
	for job := range q {
		job()
	}
}

// WriteBytes fires the delegate's OnOutput immediately, then hands the
// actual file write off to writeQueue so the producer never blocks on
// disk I/O.
func (w *segmentWriter) WriteBytes(b []byte) {
	w.delegate.OnOutput(b)
	if w.memoryMode {
		return
	}
	w.writeQueue <- func() {
		w.mu.Lock()
		fp := w.fp
		w.mu.Unlock()
		if fp == nil {
			return
		}
		if _, err := fp.Write(b); err != nil {
			w.mu.Lock()
			w.isDiscontinuity = true
			w.mu.Unlock()
			w.delegate.OnWriterError(WriterErrorKindWrite, err.Error())
		}
	}
}

// MaybeRotate starts an async rotation if timestamp (a 90kHz PTS) is
// past the current segment's due time and no rotation is already in
// flight. buildPsi is called once the rotation barrier clears, on the
// newly opened file; it is expected to reset per-PID continuity
// counters as a side effect before returning the PAT/PMT bytes.
func (w *segmentWriter) MaybeRotate(timestamp uint64, buildPsi func() []byte) {
	w.mu.Lock()
	threshold := uint64(w.cfg.SegmentDuration * 90000)
	due := timestamp > w.rotatedTimestamp && timestamp-w.rotatedTimestamp > threshold
	w.mu.Unlock()
	if !due {
		return
	}
	if !atomic.CompareAndSwapInt32(&w.rotating, 0, 1) {
		return
	}
	w.lockQueue <- func() { w.rotate(timestamp, buildPsi) }
}

// rotate runs the rotation barrier: playlist generation/pruning proceeds
// on its own goroutine while the file-handle roll is posted onto
// writeQueue itself, behind any media writes already pending for the
// segment being closed, so a write never lands on a handle rollFile has
// already closed and never crosses into the wrong segment file. Only
// once both have joined does the new segment get its PAT/PMT and the
// rotation latch release.
func (w *segmentWriter) rotate(timestamp uint64, buildPsi func() []byte) {
	w.mu.Lock()
	prevSeq := w.nextSequence - 1
	duration := float64(timestamp-w.rotatedTimestamp) / 90000
	discont := w.isDiscontinuity
	w.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		w.generateAndPrune(prevSeq, duration, discont)
	}()
	w.writeQueue <- func() {
		defer wg.Done()
		w.rollFile()
	}
	wg.Wait()

	w.WriteBytes(buildPsi())

	w.mu.Lock()
	w.rotatedTimestamp = timestamp
	w.mu.Unlock()

	atomic.StoreInt32(&w.rotating, 0)
	w.delegate.OnRotate(timestamp)
}

func (w *segmentWriter) rollFile() {
	w.mu.Lock()
	curFp := w.fp
	nextSeq := w.nextSequence
	w.mu.Unlock()

	var nextFp *os.File
	if !w.memoryMode {
		fp, err := os.Create(getSegmentPath(w.cfg.OutPath, nextSeq))
		if err != nil {
			w.delegate.OnWriterError(WriterErrorKindWrite, err.Error())
		} else {
			nextFp = fp
		}
	}

	if curFp != nil {
		if err := curFp.Sync(); err != nil {
			w.delegate.OnWriterError(WriterErrorKindSyncAndClose, err.Error())
		}
		if err := curFp.Close(); err != nil {
			w.delegate.OnWriterError(WriterErrorKindSyncAndClose, err.Error())
		}
	}

	w.mu.Lock()
	w.fp = nextFp
	w.nextSequence = nextSeq + 1
	w.mu.Unlock()
}

// generateAndPrune appends the just-closed segment's entry, drops the
// oldest entries from the list once it holds more than SegmentMaxCount,
// rewrites the playlist, fires the generate callbacks, then deletes the
// dropped segments from disk.
func (w *segmentWriter) generateAndPrune(prevSeq int, duration float64, discont bool) {
	w.mu.Lock()
	if w.nextSequence >= 1 {
		w.files = append(w.files, fileEntry{
			filename:        getSegmentFilename(prevSeq),
			duration:        duration,
			isDiscontinuous: discont,
		})
		w.isDiscontinuity = false
	}
	var removed []string
	for len(w.files) > w.cfg.SegmentMaxCount {
		removed = append(removed, w.files[0].filename)
		w.files = w.files[1:]
	}
	startSeq := prevSeq + 1 - len(w.files)
	playlist := buildPlaylist(w.files, startSeq, w.cfg.SegmentDuration)
	w.mu.Unlock()

	if w.memoryMode {
		return
	}

	if err := writePlaylist(w.fsl, playlist, getPlaylistPath(w.cfg.OutPath), getPlaylistBakPath(w.cfg.OutPath)); err != nil {
		w.delegate.OnWriterError(WriterErrorKindWriteToUrl, err.Error())
	} else {
		w.delegate.OnGenerateTs(getSegmentPath(w.cfg.OutPath, prevSeq))
		w.delegate.OnGenerateM3u8(getPlaylistPath(w.cfg.OutPath))
	}

	for _, name := range removed {
		if err := w.fsl.RemoveAll(fmt.Sprintf("%s%s", w.cfg.OutPath, name)); err != nil {
			w.delegate.OnWriterError(WriterErrorKindRemoveItem, err.Error())
		}
	}
}

// Stop closes the current file once every write already queued on
// writeQueue has landed in it, then after the segment duration plus one
// second emits the final playlist entry.
func (w *segmentWriter) Stop(finalTimestamp uint64) {
	done := make(chan struct{})
	w.writeQueue <- func() {
		defer close(done)
		w.mu.Lock()
		fp := w.fp
		w.fp = nil
		w.mu.Unlock()
		if fp != nil {
			_ = fp.Sync()
			_ = fp.Close()
		}
	}
	<-done

	delay := time.Duration((w.cfg.SegmentDuration + 1) * float64(time.Second))
	time.AfterFunc(delay, func() {
		w.mu.Lock()
		prevSeq := w.nextSequence - 1
		duration := float64(finalTimestamp-w.rotatedTimestamp) / 90000
		discont := w.isDiscontinuity
		w.mu.Unlock()
		w.generateAndPrune(prevSeq, duration, discont)
	})
}
