// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

// Packetizer turns access units into 188-byte TS packets, tracking a
// continuity counter per PID across the lifetime of one segment.
type Packetizer struct {
	ccByPid map[uint16]uint8
}

// NewPacketizer returns a Packetizer with all continuity counters at zero,
// as required at the start of every new segment.
func NewPacketizer() *Packetizer {
	return &Packetizer{ccByPid: make(map[uint16]uint8)}
}

// ResetPid zeroes pid's continuity counter, used by a muxer when that
// PID's codec configuration changes mid-stream.
func (p *Packetizer) ResetPid(pid uint16) {
	p.ccByPid[pid] = 0
}

// WritePat emits a PAT packet, advancing PID 0's continuity counter.
func (p *Packetizer) WritePat(pmtPid uint16) []byte {
	cc := p.ccByPid[PidPat]
	pkt := BuildPat(pmtPid, &cc)
	p.ccByPid[PidPat] = cc
	return pkt
}

// WritePmt emits a PMT packet, advancing the PMT PID's continuity counter.
func (p *Packetizer) WritePmt(pmtPid, pcrPid uint16, elements []PmtElement) []byte {
	cc := p.ccByPid[pmtPid]
	pkt := BuildPmt(pmtPid, pcrPid, elements, &cc)
	p.ccByPid[pmtPid] = cc
	return pkt
}

// SampleParams carries the per-access-unit values PacketizeSample needs.
type SampleParams struct {
	Pid       uint16
	StreamId  uint8
	Pts       uint64
	Dts       uint64
	HasDts    bool
	Key       bool
	WritePcr  bool
	Pcr       PcrTicks
	Unbounded bool // PES_packet_length written as 0 (video)
	Payload   []byte
}

// PacketizeSample fragments one access unit (already PES-payload-shaped,
// e.g. ADTS-framed AAC or Annex-B H.264 with AUD/SPS/PPS prepended on IDR
// access units) into a sequence of 188-byte TS packets.
func (p *Packetizer) PacketizeSample(sp SampleParams) [][]byte {
	pesHeader := BuildPesHeader(sp.StreamId, sp.Pts, sp.Dts, sp.HasDts, len(sp.Payload), sp.Unbounded)
	full := make([]byte, 0, len(pesHeader)+len(sp.Payload))
	full = append(full, pesHeader...)
	full = append(full, sp.Payload...)

	var packets [][]byte
	lpos := 0
	first := true

	for lpos < len(full) {
		packet := make([]byte, PacketLength)
		cc := p.ccByPid[sp.Pid]

		packet[0] = SyncByte
		packet[1] = 0
		if first {
			packet[1] = 0x40
		}
		packet[1] |= uint8((sp.Pid >> 8) & 0x1F)
		packet[2] = uint8(sp.Pid & 0xFF)
		packet[3] = 0x10 | (cc & 0x0F)
		p.ccByPid[sp.Pid] = cc + 1

		wpos := 4

		if first && sp.WritePcr {
			packet[3] |= 0x20
			packet[4] = 7
			packet[5] = 0x10 // PCR_flag
			if sp.Key {
				packet[5] |= 0x40 // random_access_indicator
			}
			pcrBytes := EncodePcr(sp.Pcr)
			copy(packet[6:], pcrBytes[:])
			wpos += 8
		}

		remaining := len(full) - lpos
		space := PacketLength - wpos

		if remaining >= space {
			copy(packet[wpos:], full[lpos:lpos+space])
			lpos += space
		} else {
			stuffSize := space - remaining

			if packet[3]&0x20 != 0 {
				base := 5 + int(packet[4])
				if wpos > base {
					copy(packet[base+stuffSize:], packet[base:wpos])
				}
				packet[4] += uint8(stuffSize)
				for i := 0; i < stuffSize; i++ {
					packet[base+i] = 0xFF
				}
				wpos = base + stuffSize
			} else {
				packet[3] |= 0x20
				base := 4
				if wpos > base {
					copy(packet[base+stuffSize:], packet[base:wpos])
				}
				packet[4] = uint8(stuffSize - 1)
				if stuffSize >= 2 {
					packet[5] = 0
					for i := 0; i < stuffSize-2; i++ {
						packet[6+i] = 0xFF
					}
				}
				wpos += stuffSize
			}

			copy(packet[wpos:], full[lpos:lpos+remaining])
			lpos += remaining
		}

		packets = append(packets, packet)
		first = false
	}

	return packets
}
