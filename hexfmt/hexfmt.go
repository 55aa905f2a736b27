// Package hexfmt writes Intel-HEX records: ASCII lines of the form
// ":LLAAAATT<data>CC" describing a binary image for download to
// real or simulated hardware.
package hexfmt

import (
	"fmt"
	"strings"
)

// Record types.
const (
	RecData                  = 0x00
	RecEOF                   = 0x01
	RecExtendedSegmentAddr   = 0x02
	RecStartSegmentAddr      = 0x03
	RecExtendedLinearAddr    = 0x04
	RecStartLinearAddr       = 0x05
)

// maxDataPerRecord caps each data record's payload; 32 matches the
// conventional Intel-HEX line length (16-byte/64-char hex lines are
// common too, but 32 keeps records few without overflowing AAAA).
const maxDataPerRecord = 32

// Write renders image (to be loaded starting at loadAddress) as
// Intel-HEX text, using ulba (Upper Linear Address Base — the high
// 16 bits of loadAddress) for the Extended Linear Address record.
func Write(image []byte, loadAddress uint32) (string, error) {
	var b strings.Builder

	ulba := uint16(loadAddress >> 16)
	writeRecord(&b, 0, 0, RecExtendedLinearAddr, []byte{byte(ulba >> 8), byte(ulba)})

	offset := uint16(loadAddress)
	for i := 0; i < len(image); i += maxDataPerRecord {
		end := i + maxDataPerRecord
		if end > len(image) {
			end = len(image)
		}
		chunk := image[i:end]
		writeRecord(&b, offset, uint8(len(chunk)), RecData, chunk)
		offset += uint16(len(chunk))
	}

	writeRecord(&b, 0, 0, RecEOF, nil)
	return b.String(), nil
}

// WriteWithStart appends a Start Linear Address record (the entry
// point) after the data and before the EOF record.
func WriteWithStart(image []byte, loadAddress, startAddress uint32) (string, error) {
	var b strings.Builder

	ulba := uint16(loadAddress >> 16)
	writeRecord(&b, 0, 0, RecExtendedLinearAddr, []byte{byte(ulba >> 8), byte(ulba)})

	offset := uint16(loadAddress)
	for i := 0; i < len(image); i += maxDataPerRecord {
		end := i + maxDataPerRecord
		if end > len(image) {
			end = len(image)
		}
		chunk := image[i:end]
		writeRecord(&b, offset, uint8(len(chunk)), RecData, chunk)
		offset += uint16(len(chunk))
	}

	startBytes := []byte{
		byte(startAddress >> 24), byte(startAddress >> 16),
		byte(startAddress >> 8), byte(startAddress),
	}
	writeRecord(&b, 0, 0, RecStartLinearAddr, startBytes)

	writeRecord(&b, 0, 0, RecEOF, nil)
	return b.String(), nil
}

func writeRecord(b *strings.Builder, addr uint16, length uint8, recType byte, data []byte) {
	sum := int(length) + int(addr>>8) + int(addr&0xFF) + int(recType)
	for _, d := range data {
		sum += int(d)
	}
	checksum := byte((0x100 - (sum & 0xFF)) & 0xFF)

	fmt.Fprintf(b, ":%02X%04X%02X", length, addr, recType)
	for _, d := range data {
		fmt.Fprintf(b, "%02X", d)
	}
	fmt.Fprintf(b, "%02X\n", checksum)
}
