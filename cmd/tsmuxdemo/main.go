// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

// tsmuxdemo synthesizes AAC and H.264 access units on a clock and
// feeds them to hls.Muxer, exercising the whole PSI/PES/TS/HLS
// pipeline without a real encoder upstream.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kaicast/tsmux/pkg/aac"
	"github.com/kaicast/tsmux/pkg/hls"
	"github.com/q191201771/naza/pkg/nazalog"
)

var (
	outPath         string
	segmentSeconds  float64
	runSeconds      int
	expectedMedias  []string
	useMemory       bool
	videoFrameRate  int
	audioSampleRate int
)

var rootCmd = &cobra.Command{
	Use:   "tsmuxdemo",
	Short: "Feeds synthetic AAC+H.264 access units through pkg/hls.Muxer",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&outPath, "out", "/tmp/tsmuxdemo/", "output directory for segments and playlist")
	rootCmd.Flags().Float64Var(&segmentSeconds, "segment-seconds", 2.0, "nominal segment duration")
	rootCmd.Flags().IntVar(&runSeconds, "run-seconds", 10, "how long to synthesize media for")
	rootCmd.Flags().StringSliceVar(&expectedMedias, "expected-medias", []string{"audio", "video"}, "media kinds that must be configured before output starts")
	rootCmd.Flags().BoolVar(&useMemory, "memory", false, "memory-only mode: emit TS bytes to the delegate without writing segments or playlist")
	rootCmd.Flags().IntVar(&videoFrameRate, "video-fps", 25, "synthetic video frame rate")
	rootCmd.Flags().IntVar(&audioSampleRate, "audio-fps", 47, "synthetic audio frame rate (roughly 1024 samples at 48kHz)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

type logDelegate struct{}

func (logDelegate) OnOutput(b []byte) {}

func (logDelegate) OnRotate(timestamp uint64) {
	nazalog.Infof("rotate. timestamp=%d", timestamp)
}

func (logDelegate) OnGenerateTs(filename string) {
	nazalog.Infof("generated ts. filename=%s", filename)
}

func (logDelegate) OnGenerateM3u8(filename string) {
	nazalog.Infof("generated m3u8. filename=%s", filename)
}

func (logDelegate) OnWriterError(kind hls.WriterErrorKind, logs string) {
	nazalog.Errorf("writer error. kind=%s logs=%s", kind, logs)
}

func run(cmd *cobra.Command, args []string) error {
	cfg := hls.NewDefaultMuxerConfig()
	cfg.OutPath = outPath
	cfg.SegmentDuration = segmentSeconds
	cfg.ExpectedMedias = expectedMedias
	cfg.UseMemoryFs = useMemory

	muxer := hls.NewMuxer(cfg, logDelegate{})
	muxer.Start()
	defer muxer.Stop()

	sps := synthSps()
	pps := synthPps()
	if err := muxer.OnVideoConfig(buildAvcC(sps, pps)); err != nil {
		return err
	}

	ascCtx := aac.AscContext{
		AudioObjectType:        2, // AAC LC
		SamplingFrequencyIndex: aac.AscSamplingFrequencyIndex48000,
		ChannelConfiguration:   2,
	}
	if err := muxer.OnAudioConfig(ascCtx.Pack()); err != nil {
		return err
	}

	videoTick := time.Second / time.Duration(videoFrameRate)
	audioTick := time.Second / time.Duration(audioSampleRate)
	videoTicker := time.NewTicker(videoTick)
	audioTicker := time.NewTicker(audioTick)
	defer videoTicker.Stop()
	defer audioTicker.Stop()

	deadline := time.After(time.Duration(runSeconds) * time.Second)

	var videoPts, audioPts uint64
	frameNum := 0

	for {
		select {
		case <-deadline:
			return nil
		case <-videoTicker.C:
			isIdr := frameNum%(videoFrameRate*2) == 0
			payload := lengthPrefixed(synthSlice(isIdr))
			if err := muxer.OnVideoSample(payload, videoPts, videoPts, isIdr); err != nil {
				nazalog.Errorf("OnVideoSample failed. err=%v", err)
			}
			videoPts += uint64(90000 / videoFrameRate)
			frameNum++
		case <-audioTicker.C:
			payload := make([]byte, 128)
			if err := muxer.OnAudioSample(payload, audioPts); err != nil {
				nazalog.Errorf("OnAudioSample failed. err=%v", err)
			}
			audioPts += uint64(90000 / audioSampleRate)
		}
	}
}

func lengthPrefixed(nalu []byte) []byte {
	n := len(nalu)
	out := []byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
	return append(out, nalu...)
}

func synthSlice(isIdr bool) []byte {
	if isIdr {
		return []byte{0x65, 0x88, 0x84, 0x00, 0x00} // IDR slice, placeholder RBSP
	}
	return []byte{0x41, 0x9A, 0x00, 0x00} // non-IDR slice
}

func synthSps() []byte {
	return []byte{0x67, 0x64, 0x00, 0x1F, 0xAC, 0xD9, 0x40}
}

func synthPps() []byte {
	return []byte{0x68, 0xEB, 0xE3, 0xCB}
}

func buildAvcC(sps, pps []byte) []byte {
	out := []byte{0x01, sps[1], sps[2], sps[3], 0xFF}
	out = append(out, 0xE1) // reserved(3) + numOfSps(5) = 1
	out = append(out, byte(len(sps)>>8), byte(len(sps)))
	out = append(out, sps...)
	out = append(out, 0x01) // numOfPps
	out = append(out, byte(len(pps)>>8), byte(len(pps)))
	out = append(out, pps...)
	return out
}
