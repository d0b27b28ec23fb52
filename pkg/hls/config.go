// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package hls

import (
	"encoding/json"
	"io/ioutil"

	"github.com/q191201771/naza/pkg/nazajson"
	"github.com/q191201771/naza/pkg/nazalog"
)

// MediaKind names the two elementary streams this muxer understands.
type MediaKind uint8

const (
	MediaAudio MediaKind = iota
	MediaVideo
)

// MuxerConfig is the configuration surface a Muxer is constructed with.
// Every field has a default applied by LoadConfig when its JSON key is
// absent; the zero value of MuxerConfig is not itself a valid config,
// callers should go through LoadConfig or NewDefaultMuxerConfig.
type MuxerConfig struct {
	// OutPath is the directory segments and the playlist are written
	// under. Empty means memory-only: OnOutput still fires, but no
	// files are created and OnGenerateTs/OnGenerateM3u8 are skipped.
	OutPath string `json:"out_path"`

	// SegmentDuration is the nominal rotation period in seconds.
	SegmentDuration float64 `json:"segment_duration"`

	// SegmentMaxCount bounds the sliding window kept both on disk and
	// in the playlist; the oldest segment is pruned past this count.
	SegmentMaxCount int `json:"segment_max_count"`

	// ExpectedMedias gates output: nothing is written until every
	// listed media's codec config has arrived. An empty set means
	// emit on the first sample of whatever arrives.
	ExpectedMedias []string `json:"expected_medias"`

	// PmtPid, VideoPid, AudioPid are the only configurable PIDs: PAT
	// always lives on PID 0x0000 per mpegts.PidPat, mandated by the
	// container format itself rather than something a muxer can move.
	PmtPid   uint16 `json:"pmt_pid"`
	VideoPid uint16 `json:"video_pid"`
	AudioPid uint16 `json:"audio_pid"`

	// GateBacklog bounds how many access units are buffered while
	// waiting for can_write_for to become true, so early frames ahead
	// of a late codec config aren't lost.
	GateBacklog int `json:"gate_backlog"`

	// AudioCoalesceWindowMs, when non-zero, batches consecutive AAC
	// access units into fewer PES packets instead of one PES per
	// frame. Zero (the default) preserves one-AU-per-PES.
	AudioCoalesceWindowMs int `json:"audio_coalesce_window_ms"`

	// UseMemoryFs puts the writer in memory-only mode whatever OutPath
	// says, as an empty OutPath does: OnOutput still fires, but no
	// segment or playlist is written, neither to disk nor to the
	// in-memory filesystem backend.
	UseMemoryFs bool `json:"use_memory_fs"`
}

func NewDefaultMuxerConfig() MuxerConfig {
	return MuxerConfig{
		SegmentDuration: 2.0,
		SegmentMaxCount: 10000,
		PmtPid:          4095,
		VideoPid:        256,
		AudioPid:        257,
		GateBacklog:     32,
	}
}

func (c MuxerConfig) expectsMedia(kind MediaKind) bool {
	if len(c.ExpectedMedias) == 0 {
		return false
	}
	want := "audio"
	if kind == MediaVideo {
		want = "video"
	}
	for _, m := range c.ExpectedMedias {
		if m == want {
			return true
		}
	}
	return false
}

func (c MuxerConfig) gatingEnabled() bool {
	return len(c.ExpectedMedias) > 0
}

// LoadConfig reads a JSON config file into MuxerConfig, applying
// NewDefaultMuxerConfig's defaults for any key absent from the file.
func LoadConfig(confFile string) (MuxerConfig, error) {
	config := NewDefaultMuxerConfig()

	rawContent, err := ioutil.ReadFile(confFile)
	if err != nil {
		return config, err
	}
	if err = json.Unmarshal(rawContent, &config); err != nil {
		return config, err
	}

	j, err := nazajson.New(rawContent)
	if err != nil {
		return config, err
	}
	if !j.Exist("segment_duration") {
		config.SegmentDuration = 2.0
	}
	if !j.Exist("segment_max_count") {
		config.SegmentMaxCount = 10000
	}
	if !j.Exist("pmt_pid") {
		config.PmtPid = 4095
	}
	if !j.Exist("video_pid") {
		config.VideoPid = 256
	}
	if !j.Exist("audio_pid") {
		config.AudioPid = 257
	}
	if !j.Exist("gate_backlog") {
		config.GateBacklog = 32
	}

	if config.SegmentDuration <= 0 {
		nazalog.Warnf("hls: segment_duration=%v is non-positive, forcing default", config.SegmentDuration)
		config.SegmentDuration = 2.0
	}

	return config, nil
}
