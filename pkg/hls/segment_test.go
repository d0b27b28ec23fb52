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
	"io/ioutil"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

func TestSegmentWriterStartWritesInitialPsi(t *testing.T) {
	dir, err := ioutil.TempDir("", "tsmux-segment-*")
	assert.Nil(t, err)
	defer os.RemoveAll(dir)

	cfg := NewDefaultMuxerConfig()
	cfg.OutPath = dir

	d := &captureDelegate{}
	w := newSegmentWriter(cfg, d)
	w.Start(func() []byte { return []byte("PSI0") })

	waitFor(t, time.Second, func() bool {
		content, err := ioutil.ReadFile(dir + "/part00000.ts")
		return err == nil && bytes.Contains(content, []byte("PSI0"))
	})
}

func TestSegmentWriterRotatesAndWritesPlaylist(t *testing.T) {
	dir, err := ioutil.TempDir("", "tsmux-segment-*")
	assert.Nil(t, err)
	defer os.RemoveAll(dir)

	cfg := NewDefaultMuxerConfig()
	cfg.OutPath = dir
	cfg.SegmentDuration = 0.001 // 90 ticks at 90kHz

	d := &captureDelegate{}
	w := newSegmentWriter(cfg, d)
	w.Start(func() []byte { return []byte("PSI0") })
	w.WriteBytes([]byte("payload-a"))

	w.MaybeRotate(200000, func() []byte { return []byte("PSI1") })
	waitFor(t, 2*time.Second, func() bool { return d.rotateCount() == 1 })

	waitFor(t, time.Second, func() bool {
		content, err := ioutil.ReadFile(dir + "/part00000.ts")
		return err == nil && bytes.Contains(content, []byte("payload-a"))
	})

	playlist, err := ioutil.ReadFile(dir + "/" + PlaylistFilename)
	assert.Nil(t, err)
	assert.True(t, bytes.Contains(playlist, []byte("part00000.ts")))
	assert.True(t, bytes.Contains(playlist, []byte("#EXT-X-MEDIA-SEQUENCE:0")))

	waitFor(t, time.Second, func() bool {
		_, err := os.Stat(dir + "/part00001.ts")
		return err == nil
	})
}

func TestSegmentWriterMemoryModeSkipsDisk(t *testing.T) {
	cfg := NewDefaultMuxerConfig()
	cfg.OutPath = ""

	d := &captureDelegate{}
	w := newSegmentWriter(cfg, d)
	assert.True(t, w.memoryMode)

	w.Start(func() []byte { return []byte("PSI0") })
	w.WriteBytes([]byte("hello"))

	waitFor(t, time.Second, func() bool { return d.outputCount() == 2 })
}

// A write queued immediately after MaybeRotate must land in the new
// segment file, not the one rollFile is about to close, since both are
// now serialized on the same writeQueue.
func TestSegmentWriterWriteAfterMaybeRotateLandsInNewSegment(t *testing.T) {
	dir, err := ioutil.TempDir("", "tsmux-segment-*")
	assert.Nil(t, err)
	defer os.RemoveAll(dir)

	cfg := NewDefaultMuxerConfig()
	cfg.OutPath = dir
	cfg.SegmentDuration = 0.001

	d := &captureDelegate{}
	w := newSegmentWriter(cfg, d)
	w.Start(func() []byte { return []byte("PSI0") })

	w.MaybeRotate(200000, func() []byte { return []byte("PSI1") })
	w.WriteBytes([]byte("idr-payload"))

	waitFor(t, 2*time.Second, func() bool { return d.rotateCount() == 1 })

	waitFor(t, time.Second, func() bool {
		content, err := ioutil.ReadFile(dir + "/part00001.ts")
		return err == nil && bytes.Contains(content, []byte("idr-payload"))
	})

	oldContent, err := ioutil.ReadFile(dir + "/part00000.ts")
	assert.Nil(t, err)
	assert.False(t, bytes.Contains(oldContent, []byte("idr-payload")))
}

func TestSegmentWriterSecondRotationTriggerWhileInFlightIsDropped(t *testing.T) {
	dir, err := ioutil.TempDir("", "tsmux-segment-*")
	assert.Nil(t, err)
	defer os.RemoveAll(dir)

	cfg := NewDefaultMuxerConfig()
	cfg.OutPath = dir
	cfg.SegmentDuration = 0.001

	d := &captureDelegate{}
	w := newSegmentWriter(cfg, d)
	w.Start(func() []byte { return []byte("PSI0") })

	w.MaybeRotate(200000, func() []byte { return []byte("PSI1") })
	w.MaybeRotate(200001, func() []byte { return []byte("PSI1") }) // dropped: rotation already in flight

	waitFor(t, 2*time.Second, func() bool { return d.rotateCount() >= 1 })
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, d.rotateCount())
}
