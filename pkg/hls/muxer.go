// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package hls

import (
	"sync"

	"github.com/kaicast/tsmux/pkg/aac"
	"github.com/kaicast/tsmux/pkg/avc"
	"github.com/kaicast/tsmux/pkg/mpegts"
	"github.com/q191201771/naza/pkg/nazalog"
	"github.com/q191201771/naza/pkg/unique"
)

// pcrIntervalTicks is the minimum gap between PCR stampings, 20ms at
// the 90kHz clock PTS/DTS/PCR share.
const pcrIntervalTicks uint64 = 20 * 90

type pidState struct {
	firstTimestamp    uint64
	hasFirstTimestamp bool
}

// Muxer turns AAC/H.264 access units into a live MPEG-2 TS + HLS
// playlist. It plays the role the teacher splits across Streamer
// (build one PES-ready access unit) and Muxer (decide when to rotate
// and write) — here fused into one type, since our input contract
// (bare codec configs and samples, not RTMP messages) has no natural
// seam between the two.
type Muxer struct {
	UniqueKey string

	cfg      MuxerConfig
	delegate Delegate
	writer   *segmentWriter

	mu         sync.Mutex
	started    bool
	stopped    bool
	packetizer *mpegts.Packetizer

	pmtPid   uint16
	pcrPid   uint16
	videoPid uint16
	audioPid uint16

	elements []mpegts.PmtElement

	ascCtx   *aac.AscContext
	sps, pps []byte

	audioConfigured bool
	videoConfigured bool

	videoState pidState
	audioState pidState

	hasPcrTimestamp  bool
	pcrTimestamp     uint64
	hasLastPcr       bool
	lastPcrTimestamp uint64

	lastTimestamp uint64

	gate []func()

	audioCoalesceBuf      []byte
	audioCoalesceFirstPts uint64
	audioCoalescePending  bool
}

func NewMuxer(cfg MuxerConfig, delegate Delegate) *Muxer {
	if delegate == nil {
		delegate = NopDelegate{}
	}
	return &Muxer{
		UniqueKey: unique.GenUniqueKey("HLSMUXER"),
		cfg:       cfg,
		delegate:  delegate,
		writer:    newSegmentWriter(cfg, delegate),
		pmtPid:    cfg.PmtPid,
		pcrPid:    cfg.VideoPid,
		videoPid:  cfg.VideoPid,
		audioPid:  cfg.AudioPid,
	}
}

// Start arms the muxer: it opens the first segment and writes an
// initial (possibly empty) PAT/PMT into it. A second call is a no-op.
func (m *Muxer) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true
	m.packetizer = mpegts.NewPacketizer()
	m.writer.Start(m.buildProgramBytesLocked)
}

// Stop flushes the current segment and, after the segment duration plus
// one second, finalizes the playlist. A second call is a no-op.
func (m *Muxer) Stop() {
	m.mu.Lock()
	if !m.started || m.stopped {
		m.mu.Unlock()
		return
	}
	m.flushAudioCoalesceLocked()
	m.stopped = true
	finalTimestamp := m.lastTimestamp
	m.mu.Unlock()

	m.writer.Stop(finalTimestamp)
}

// OnAudioConfig latches a new AudioSpecificConfig, adding the AAC
// elementary stream to the PMT the first time it arrives.
func (m *Muxer) OnAudioConfig(asc []byte) error {
	ascCtx, err := aac.NewAscContext(asc)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.ascCtx = ascCtx
	if !m.hasElementLocked(m.audioPid) {
		m.elements = append(m.elements, mpegts.PmtElement{StreamType: mpegts.StreamTypeAac, Pid: m.audioPid})
	}
	if !m.videoConfigured {
		m.pcrPid = m.audioPid
	}
	m.audioConfigured = true
	m.audioState = pidState{}
	if m.packetizer != nil {
		m.packetizer.ResetPid(m.audioPid)
	}

	m.onConfigChangedLocked()
	return nil
}

// OnVideoConfig latches a new AVC decoder configuration record, adding
// the H.264 elementary stream to the PMT the first time it arrives.
// The PCR PID always follows the video PID once video has been
// configured, even if audio configured first.
func (m *Muxer) OnVideoConfig(avcC []byte) error {
	sps, pps, err := avc.ParseDecoderConfigurationRecord(avcC)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sps, m.pps = sps, pps
	if !m.hasElementLocked(m.videoPid) {
		m.elements = append(m.elements, mpegts.PmtElement{StreamType: mpegts.StreamTypeH264, Pid: m.videoPid})
	}
	m.pcrPid = m.videoPid
	m.videoConfigured = true
	m.videoState = pidState{}
	if m.packetizer != nil {
		m.packetizer.ResetPid(m.videoPid)
	}

	m.onConfigChangedLocked()
	return nil
}

// OnAudioSample wraps one AAC access unit in an ADTS header and writes
// it as a PES/TS payload. DTS is treated as absent (equal to PTS).
//
// When AudioCoalesceWindowMs is non-zero, frames are instead accumulated
// into a single PES spanning that many milliseconds of PTS, batching
// several small AAC access units into fewer, larger PES/TS packets. Each
// ADTS frame stays self-delimited, so a demuxer downstream still reads
// them out one at a time.
func (m *Muxer) OnAudioSample(payload []byte, pts uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ascCtx == nil {
		return ErrHlsNoAudioConfig
	}

	frame := m.ascCtx.PackAdtsHeader(len(payload))
	frame = append(frame, payload...)

	if m.cfg.AudioCoalesceWindowMs <= 0 {
		m.writeSampleLocked(m.audioPid, mpegts.StreamIdAudio, frame, pts, pts, false, true, false)
		return nil
	}

	if !m.audioCoalescePending {
		m.audioCoalesceFirstPts = pts
		m.audioCoalescePending = true
	}
	m.audioCoalesceBuf = append(m.audioCoalesceBuf, frame...)

	windowTicks := uint64(m.cfg.AudioCoalesceWindowMs) * 90 // ms -> 90kHz ticks
	if pts-m.audioCoalesceFirstPts >= windowTicks {
		m.flushAudioCoalesceLocked()
	}
	return nil
}

// flushAudioCoalesceLocked writes out whatever audio has accumulated in
// the coalescing buffer as a single PES, keyed on the first buffered
// frame's PTS. A no-op when nothing is pending.
func (m *Muxer) flushAudioCoalesceLocked() {
	if !m.audioCoalescePending {
		return
	}
	buf := m.audioCoalesceBuf
	pts := m.audioCoalesceFirstPts
	m.audioCoalesceBuf = nil
	m.audioCoalescePending = false

	if len(buf) == 0 {
		return
	}
	m.writeSampleLocked(m.audioPid, mpegts.StreamIdAudio, buf, pts, pts, false, true, false)
}

// OnVideoSample converts one length-prefixed H.264 access unit to
// Annex-B, prepending AUD+SPS+PPS when isSync marks it as an IDR, and
// writes it as a PES/TS payload.
func (m *Muxer) OnVideoSample(payload []byte, pts, dts uint64, isSync bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sps == nil || m.pps == nil {
		return ErrHlsNoVideoConfig
	}

	m.flushAudioCoalesceLocked()

	annexB, err := avc.LengthPrefixedToAnnexB(payload, m.sps, m.pps, isSync)
	if err != nil {
		return err
	}

	m.writeSampleLocked(m.videoPid, mpegts.StreamIdVideo, annexB, pts, dts, dts != pts, isSync, true)
	return nil
}

// canWriteLocked implements the can_write_for gate: with no expected
// medias configured, any sample may be emitted; otherwise every
// expected media's codec config must have arrived first.
func (m *Muxer) canWriteLocked() bool {
	if !m.cfg.gatingEnabled() {
		return true
	}
	if m.cfg.expectsMedia(MediaAudio) && !m.audioConfigured {
		return false
	}
	if m.cfg.expectsMedia(MediaVideo) && !m.videoConfigured {
		return false
	}
	return true
}

func (m *Muxer) onConfigChangedLocked() {
	if !m.started {
		return
	}
	if m.canWriteLocked() {
		m.writeProgramIfNeededLocked()
		m.flushGateLocked()
	}
}

// writeSampleLocked runs write immediately if the gate is open, or
// buffers it (dropping the oldest entry past GateBacklog) so an early
// access unit isn't lost while waiting on a late codec config.
func (m *Muxer) writeSampleLocked(pid uint16, streamId uint8, payload []byte, pts, dts uint64, hasDts, randomAccess, unbounded bool) {
	if !m.started || m.stopped {
		return
	}

	write := func() {
		m.doWriteSampleLocked(pid, streamId, payload, pts, dts, hasDts, randomAccess, unbounded)
	}

	if m.canWriteLocked() {
		write()
		return
	}

	if m.cfg.GateBacklog > 0 && len(m.gate) >= m.cfg.GateBacklog {
		nazalog.Warnf("hls: %s gate backlog full, dropping oldest buffered sample", m.UniqueKey)
		m.gate = m.gate[1:]
	}
	m.gate = append(m.gate, write)
}

func (m *Muxer) flushGateLocked() {
	pending := m.gate
	m.gate = nil
	for _, fn := range pending {
		fn()
	}
}

func (m *Muxer) doWriteSampleLocked(pid uint16, streamId uint8, payload []byte, pts, dts uint64, hasDts, randomAccess, unbounded bool) {
	state := m.stateForLocked(pid)
	if !state.hasFirstTimestamp {
		state.firstTimestamp = pts
		state.hasFirstTimestamp = true
	}

	// Rotation is resolved against this sample's own pts before a single
	// byte of it is written, so an IDR that crosses the segment-duration
	// threshold opens the new segment instead of closing out the old one.
	m.maybeRotateLocked(pid, pts, randomAccess)

	writePcr := false
	var pcr mpegts.PcrTicks
	if pid == m.pcrPid {
		if !m.hasPcrTimestamp {
			m.pcrTimestamp = pts
			m.hasPcrTimestamp = true
		}
		if !m.hasLastPcr || pts >= m.lastPcrTimestamp+pcrIntervalTicks {
			writePcr = true
			pcr = mpegts.NewPcrTicks(pts)
			m.lastPcrTimestamp = pts
			m.hasLastPcr = true
		}
	}

	packets := m.packetizer.PacketizeSample(mpegts.SampleParams{
		Pid:       pid,
		StreamId:  streamId,
		Pts:       pts,
		Dts:       dts,
		HasDts:    hasDts,
		Key:       randomAccess,
		WritePcr:  writePcr,
		Pcr:       pcr,
		Unbounded: unbounded,
		Payload:   payload,
	})
	for _, pkt := range packets {
		m.writer.WriteBytes(pkt)
	}

	m.lastTimestamp = pts
}

// maybeRotateLocked enforces that a segment boundary only lands on an
// IDR when video is one of the expected medias; an audio-only stream
// (or one with no gating configured) may rotate on any sample.
func (m *Muxer) maybeRotateLocked(pid uint16, pts uint64, randomAccess bool) {
	if m.cfg.expectsMedia(MediaVideo) {
		if pid != m.videoPid || !randomAccess {
			return
		}
	}
	m.writer.MaybeRotate(pts, m.buildPsiForNewSegment)
}

func (m *Muxer) stateForLocked(pid uint16) *pidState {
	if pid == m.videoPid {
		return &m.videoState
	}
	return &m.audioState
}

func (m *Muxer) hasElementLocked(pid uint16) bool {
	for _, e := range m.elements {
		if e.Pid == pid {
			return true
		}
	}
	return false
}

func (m *Muxer) writeProgramIfNeededLocked() {
	if !m.started {
		return
	}
	m.writer.WriteBytes(m.buildProgramBytesLocked())
}

func (m *Muxer) buildProgramBytesLocked() []byte {
	var out []byte
	out = append(out, m.packetizer.WritePat(m.pmtPid)...)
	out = append(out, m.packetizer.WritePmt(m.pmtPid, m.pcrPid, m.elements)...)
	return out
}

// buildPsiForNewSegment is handed to segmentWriter as the rotation
// callback: it runs on the writer's lock queue goroutine, not the
// sample-producer goroutine, so unlike buildProgramBytesLocked it
// takes the lock itself. Allocating a fresh Packetizer resets every
// PID's continuity counter to zero, as required at a segment boundary.
func (m *Muxer) buildPsiForNewSegment() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.packetizer = mpegts.NewPacketizer()
	m.videoState = pidState{}
	m.audioState = pidState{}
	m.hasLastPcr = false

	return m.buildProgramBytesLocked()
}
