// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package hls

import "sync"

// captureDelegate records every callback for assertion behind a mutex,
// since Delegate methods run on the writer's queue goroutines as well as
// the calling goroutine.
type captureDelegate struct {
	mu         sync.Mutex
	outputs    [][]byte
	rotates    []uint64
	tsFiles    []string
	m3u8Files  []string
	writerErrs []WriterErrorKind
}

func (d *captureDelegate) OnOutput(b []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := append([]byte{}, b...)
	d.outputs = append(d.outputs, cp)
}

func (d *captureDelegate) OnRotate(timestamp uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rotates = append(d.rotates, timestamp)
}

func (d *captureDelegate) OnGenerateTs(filename string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tsFiles = append(d.tsFiles, filename)
}

func (d *captureDelegate) OnGenerateM3u8(filename string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.m3u8Files = append(d.m3u8Files, filename)
}

func (d *captureDelegate) OnWriterError(kind WriterErrorKind, logs string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writerErrs = append(d.writerErrs, kind)
}

func (d *captureDelegate) outputCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.outputs)
}

func (d *captureDelegate) rotateCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.rotates)
}
