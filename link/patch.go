package link

import (
	"encoding/binary"

	"github.com/eliben/luz-cpu/encoding"
	"github.com/eliben/luz-cpu/objfile"
)

// patchCall rewrites the 26-bit destination of a single CALL word at
// patchAddr, preserving the CALL opcode. replace=true overwrites the
// destination outright (import resolution); replace=false adds
// mappedAddr/4 to whatever destination word is already encoded
// (relocation resolution).
func patchCall(segData map[string][]byte, patchAddr objfile.SegAddr, replace bool, mappedAddr uint32, symbolDesc string) error {
	data, ok := segData[patchAddr.Segment]
	if !ok || patchAddr.Offset+4 > len(data) {
		return errf("CALL patch for %s: address %v out of range", symbolDesc, patchAddr)
	}
	word := binary.LittleEndian.Uint32(data[patchAddr.Offset : patchAddr.Offset+4])
	op := encoding.Opcode(encoding.ExtractBitfield(word, 31, 26))
	if op != encoding.OpCall {
		return errf("CALL patch for %s: instruction at %v is not a CALL (opcode %s)", symbolDesc, patchAddr, op)
	}

	destWord := uint64(mappedAddr / 4)
	var newImm26 uint64
	if replace {
		newImm26 = destWord
	} else {
		existing := uint64(encoding.ExtractBitfield(word, 25, 0))
		newImm26 = existing + destWord
	}
	if newImm26 > 0x3FFFFFF {
		return errf("CALL patch for %s: target %d does not fit in 26 bits", symbolDesc, newImm26)
	}

	newWord := encoding.BuildBitfield(31, 26, uint32(encoding.OpCall)) | encoding.BuildBitfield(25, 0, uint32(newImm26))
	binary.LittleEndian.PutUint32(data[patchAddr.Offset:patchAddr.Offset+4], newWord)
	return nil
}

// patchLI rewrites the LUI/ORI word pair at patchAddr to encode a new
// 32-bit value, preserving both instructions' rd (and, for ORI, rs,
// which is always the same register as rd in a li expansion).
// replace=true overwrites the value outright; replace=false adds
// mappedAddr to whatever 32-bit value is already split across the
// pair.
func patchLI(segData map[string][]byte, patchAddr objfile.SegAddr, replace bool, mappedAddr uint32, symbolDesc string) error {
	data, ok := segData[patchAddr.Segment]
	if !ok || patchAddr.Offset+8 > len(data) {
		return errf("LI patch for %s: address %v out of range", symbolDesc, patchAddr)
	}
	luiWord := binary.LittleEndian.Uint32(data[patchAddr.Offset : patchAddr.Offset+4])
	oriWord := binary.LittleEndian.Uint32(data[patchAddr.Offset+4 : patchAddr.Offset+8])

	if op := encoding.Opcode(encoding.ExtractBitfield(luiWord, 31, 26)); op != encoding.OpLui {
		return errf("LI patch for %s: first instruction at %v is not LUI (opcode %s)", symbolDesc, patchAddr, op)
	}
	if op := encoding.Opcode(encoding.ExtractBitfield(oriWord, 31, 26)); op != encoding.OpOri {
		return errf("LI patch for %s: second instruction at %v is not ORI (opcode %s)", symbolDesc, patchAddr, op)
	}

	rd := encoding.ExtractBitfield(luiWord, 25, 21)

	var target uint64
	if replace {
		target = uint64(mappedAddr)
	} else {
		high := uint64(encoding.ExtractBitfield(luiWord, 15, 0))
		low := uint64(encoding.ExtractBitfield(oriWord, 15, 0))
		existing := (high << 16) | low
		target = existing + uint64(mappedAddr)
	}
	if target > 0xFFFFFFFF {
		return errf("LI patch for %s: target %d does not fit in 32 bits", symbolDesc, target)
	}

	high16 := uint32(target>>16) & 0xFFFF
	low16 := uint32(target) & 0xFFFF

	newLUI := encoding.BuildBitfield(31, 26, uint32(encoding.OpLui)) | encoding.BuildBitfield(25, 21, rd) | encoding.BuildBitfield(15, 0, high16)
	newORI := encoding.BuildBitfield(31, 26, uint32(encoding.OpOri)) | encoding.BuildBitfield(25, 21, rd) | encoding.BuildBitfield(20, 16, rd) | encoding.BuildBitfield(15, 0, low16)

	binary.LittleEndian.PutUint32(data[patchAddr.Offset:patchAddr.Offset+4], newLUI)
	binary.LittleEndian.PutUint32(data[patchAddr.Offset+4:patchAddr.Offset+8], newORI)
	return nil
}
