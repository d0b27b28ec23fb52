// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPacketizerPatPmtShape(t *testing.T) {
	p := NewPacketizer()

	pat := p.WritePat(PidPmtDefault)
	assert.Equal(t, PacketLength, len(pat))
	assert.Equal(t, SyncByte, pat[0])
	assert.Equal(t, uint8(0x40), pat[1]&0x40) // payload_unit_start_indicator

	got := ParsePat(pat[5:])
	assert.True(t, got.SearchPid(PidPmtDefault))

	pmt := p.WritePmt(PidPmtDefault, PidVideoDefault, []PmtElement{
		{StreamType: StreamTypeH264, Pid: PidVideoDefault},
		{StreamType: StreamTypeAac, Pid: PidAudioDefault},
	})
	assert.Equal(t, PacketLength, len(pmt))

	gotPmt := ParsePmt(pmt[5:])
	assert.Equal(t, 2, len(gotPmt.ProgramElements))
	assert.NotNil(t, gotPmt.SearchPid(PidVideoDefault))
	assert.NotNil(t, gotPmt.SearchPid(PidAudioDefault))
}

func TestPacketizerContinuityCounterIncrementsPerPid(t *testing.T) {
	p := NewPacketizer()

	for i := 0; i < 3; i++ {
		p.WritePat(PidPmtDefault)
	}
	assert.Equal(t, uint8(3), p.ccByPid[PidPat]&0x0F)

	pkts := p.PacketizeSample(SampleParams{
		Pid:      PidAudioDefault,
		StreamId: StreamIdAudio,
		Pts:      90000,
		Payload:  make([]byte, 7+500),
	})
	assert.True(t, len(pkts) > 1)

	for i, pkt := range pkts {
		assert.Equal(t, PacketLength, len(pkt))
		assert.Equal(t, SyncByte, pkt[0])
		wantCc := uint8(i) & 0x0F
		assert.Equal(t, wantCc, pkt[3]&0x0F)
		if i == 0 {
			assert.Equal(t, uint8(0x40), pkt[1]&0x40)
		} else {
			assert.Equal(t, uint8(0), pkt[1]&0x40)
		}
	}
}

func TestPacketizeSampleWithPcrOnKeyFrame(t *testing.T) {
	p := NewPacketizer()

	// Payload sized so the TS header + adaptation field (PCR) + PES header
	// (PTS only) + payload exactly fill one 188-byte packet with no stuffing.
	pkts := p.PacketizeSample(SampleParams{
		Pid:       PidVideoDefault,
		StreamId:  StreamIdVideo,
		Pts:       180000,
		Dts:       180000,
		Key:       true,
		WritePcr:  true,
		Pcr:       NewPcrTicks(180000),
		Unbounded: true,
		Payload:   make([]byte, 162),
	})

	assert.Equal(t, 1, len(pkts))
	pkt := pkts[0]
	assert.Equal(t, uint8(0x30), pkt[3]&0x30) // adaptation + payload present
	assert.Equal(t, uint8(7), pkt[4])         // adaptation_field_length
	assert.Equal(t, uint8(0x50), pkt[5])      // random_access + PCR flag
}

// A small AAC frame on the PCR PID fits its whole PES inside the first
// packet's remaining space after the adaptation field, so the stuffing
// path runs on a packet that already carries a PCR.
func TestPacketizeSampleWithPcrAndStuffingKeepsPcrIntact(t *testing.T) {
	p := NewPacketizer()

	pcr := NewPcrTicks(90000)
	pkts := p.PacketizeSample(SampleParams{
		Pid:      PidAudioDefault,
		StreamId: StreamIdAudio,
		Pts:      90000,
		WritePcr: true,
		Pcr:      pcr,
		Payload:  make([]byte, 32),
	})

	assert.Equal(t, 1, len(pkts))
	pkt := pkts[0]
	assert.Equal(t, uint8(0x30), pkt[3]&0x30) // adaptation + payload present
	assert.True(t, pkt[4] >= 7)               // adaptation_field_length, padded with stuffing
	assert.Equal(t, pcr, DecodePcr(pkt[6:12]))

	base := 5 + int(pkt[4])
	assert.Equal(t, PacketLength, base+9+5+32) // PES header (no DTS) + raw payload
	for i := 12; i < base; i++ {
		assert.Equal(t, uint8(0xFF), pkt[i])
	}
}
