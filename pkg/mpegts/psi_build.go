// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

// PmtElement describes one elementary stream entry for BuildPmt.
type PmtElement struct {
	StreamType uint8
	Pid        uint16
}

// BuildPat encodes a single-program PAT section pointing programNumber at
// pmtPid, wrapped in its own 188-byte TS packet.
func BuildPat(pmtPid uint16, cc *uint8) []byte {
	psi := NewPsi()
	psi.sectionData.header.tableId = TsPsiIdPas
	psi.sectionData.header.sectionSyntaxIndicator = 1
	psi.sectionData.section.tableIdExtension = 1 // transport_stream_id
	psi.sectionData.section.versionNumber = 0
	psi.sectionData.section.currentNextIndicator = 1
	psi.sectionData.patData.pes = []PatProgramElement{
		{pn: ProgramNumber, pmpid: pmtPid},
	}

	_, section := psi.Pack()
	return wrapPsiPacket(PidPat, section, cc)
}

// BuildPmt encodes the PMT section for the given PCR PID and elementary
// streams, wrapped in its own 188-byte TS packet.
func BuildPmt(pmtPid, pcrPid uint16, elements []PmtElement, cc *uint8) []byte {
	psi := NewPsi()
	psi.sectionData.header.tableId = TsPsiIdPms
	psi.sectionData.header.sectionSyntaxIndicator = 1
	psi.sectionData.section.tableIdExtension = ProgramNumber
	psi.sectionData.section.versionNumber = 0
	psi.sectionData.section.currentNextIndicator = 1
	psi.sectionData.pmtData.pcrPid = pcrPid
	psi.sectionData.pmtData.programInfoLength = 0

	for _, e := range elements {
		psi.sectionData.pmtData.pes = append(psi.sectionData.pmtData.pes, PmtProgramElement{
			StreamType: e.StreamType,
			Pid:        e.Pid,
		})
	}

	_, section := psi.Pack()
	return wrapPsiPacket(pmtPid, section, cc)
}

// wrapPsiPacket places a PSI section (already carrying its pointer_field) as
// the sole payload of a single, freshly stuffed 188-byte packet.
func wrapPsiPacket(pid uint16, section []byte, cc *uint8) []byte {
	packet := make([]byte, PacketLength)
	for i := range packet {
		packet[i] = 0xFF
	}

	packet[0] = SyncByte
	packet[1] = 0x40 | uint8((pid>>8)&0x1F) // payload_unit_start_indicator=1
	packet[2] = uint8(pid & 0xFF)
	packet[3] = 0x10 | (*cc & 0x0F)
	*cc++

	copy(packet[4:], section)
	return packet
}
