// Package link implements the Luz linker: multi-object segment
// layout, export/import symbol resolution, CALL/LI relocation
// patching, and startup-code injection, producing one contiguous
// binary image.
package link

import (
	"sort"

	"github.com/eliben/luz-cpu/objfile"
)

// Default base address and memory size for the produced image, per §4.4.
const (
	DefaultBaseAddress uint32 = 0x100000
	DefaultMemSize     uint32 = 0x40000
)

// SentinelByte fills the image buffer before segments are copied in.
// buildImage detects a gap or double-write by tracking which bytes
// were written, not by looking for leftover sentinel bytes.
const SentinelByte byte = 0xA5

// Linker lays out and links a set of object files into a binary
// image loadable at BaseAddress.
type Linker struct {
	BaseAddress uint32
	MemSize     uint32
}

// New returns a Linker configured with the default base address and
// memory size.
func New() *Linker {
	return &Linker{BaseAddress: DefaultBaseAddress, MemSize: DefaultMemSize}
}

type exportLoc struct {
	objIndex int
	objName  string
	addr     objfile.SegAddr
}

// Link combines objs (plus a synthesized startup object) into a
// single binary image, per §4.4.
func (l *Linker) Link(objs []*objfile.ObjectFile) ([]byte, error) {
	startup, err := buildStartupObject(l.BaseAddress, l.MemSize)
	if err != nil {
		return nil, errf("building startup object: %s", err)
	}
	all := make([]*objfile.ObjectFile, 0, len(objs)+1)
	all = append(all, objs...)
	all = append(all, startup)

	segOrder, segStart, totalSize := computeSegmentLayout(all, l.BaseAddress)
	segMaps := computeObjectSegmentMaps(all, segOrder, segStart)

	exports, err := collectExports(all, segMaps)
	if err != nil {
		return nil, err
	}

	if err := resolveImports(all, segMaps, exports); err != nil {
		return nil, err
	}
	if err := resolveRelocations(all, segMaps); err != nil {
		return nil, err
	}

	return buildImage(all, segMaps, l.BaseAddress, totalSize)
}

// computeSegmentLayout sums each segment's total size across every
// object and assigns each segment an absolute start address:
// __startup first, then all other segments lexicographically, then
// __heap last.
func computeSegmentLayout(objs []*objfile.ObjectFile, base uint32) (order []string, start map[string]uint32, total uint32) {
	size := make(map[string]int)
	seen := make(map[string]bool)
	var others []string

	for _, obj := range objs {
		for _, seg := range obj.SegmentNames() {
			size[seg] += len(obj.SegData[seg])
			if !seen[seg] {
				seen[seg] = true
				if seg != startupSegment && seg != heapSegment {
					others = append(others, seg)
				}
			}
		}
	}
	sort.Strings(others)

	order = nil
	if seen[startupSegment] {
		order = append(order, startupSegment)
	}
	order = append(order, others...)
	if seen[heapSegment] {
		order = append(order, heapSegment)
	}

	start = make(map[string]uint32, len(order))
	addr := base
	for _, seg := range order {
		start[seg] = addr
		addr += uint32(size[seg])
	}
	total = addr - base
	return order, start, total
}

// computeObjectSegmentMaps assigns each object a per-segment start
// address; objects sharing a segment name pack contiguously in
// object-list order.
func computeObjectSegmentMaps(objs []*objfile.ObjectFile, segOrder []string, segStart map[string]uint32) []map[string]uint32 {
	cursor := make(map[string]uint32, len(segOrder))
	for seg, addr := range segStart {
		cursor[seg] = addr
	}
	maps := make([]map[string]uint32, len(objs))
	for i, obj := range objs {
		m := make(map[string]uint32)
		for _, seg := range obj.SegmentNames() {
			m[seg] = cursor[seg]
			cursor[seg] += uint32(len(obj.SegData[seg]))
		}
		maps[i] = m
	}
	return maps
}

func collectExports(objs []*objfile.ObjectFile, segMaps []map[string]uint32) (map[string]exportLoc, error) {
	exports := make(map[string]exportLoc)
	for i, obj := range objs {
		for _, exp := range obj.ExportTable {
			if prior, dup := exports[exp.Symbol]; dup {
				return nil, errf("duplicate export %q in objects %q and %q", exp.Symbol, prior.objName, objName(obj, i))
			}
			exports[exp.Symbol] = exportLoc{objIndex: i, objName: objName(obj, i), addr: exp.Addr}
		}
	}
	return exports, nil
}

func objName(obj *objfile.ObjectFile, idx int) string {
	if obj.Name != "" {
		return obj.Name
	}
	return "<object " + itoa(idx) + ">"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func resolveImports(objs []*objfile.ObjectFile, segMaps []map[string]uint32, exports map[string]exportLoc) error {
	for i, obj := range objs {
		for _, imp := range obj.ImportTable {
			loc, ok := exports[imp.Symbol]
			if !ok {
				return errf("unresolved import %q (required by %q)", imp.Symbol, objName(obj, i))
			}
			mappedAddr := segMaps[loc.objIndex][loc.addr.Segment] + uint32(loc.addr.Offset)
			switch imp.Kind {
			case objfile.ImportCall:
				if err := patchCall(obj.SegData, imp.Addr, true, mappedAddr, imp.Symbol); err != nil {
					return err
				}
			case objfile.ImportLI:
				if err := patchLI(obj.SegData, imp.Addr, true, mappedAddr, imp.Symbol); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func resolveRelocations(objs []*objfile.ObjectFile, segMaps []map[string]uint32) error {
	for i, obj := range objs {
		for _, reloc := range obj.RelocTable {
			mappedAddr, ok := segMaps[i][reloc.RelocSegment]
			if !ok {
				return errf("relocation against unknown segment %q in object %q", reloc.RelocSegment, objName(obj, i))
			}
			switch reloc.Kind {
			case objfile.RelocCall:
				if err := patchCall(obj.SegData, reloc.Addr, false, mappedAddr, reloc.RelocSegment); err != nil {
					return err
				}
			case objfile.RelocLI:
				if err := patchLI(obj.SegData, reloc.Addr, false, mappedAddr, reloc.RelocSegment); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func buildImage(objs []*objfile.ObjectFile, segMaps []map[string]uint32, base uint32, total uint32) ([]byte, error) {
	image := make([]byte, total)
	for i := range image {
		image[i] = SentinelByte
	}
	written := make([]bool, total)

	for i, obj := range objs {
		for _, seg := range obj.SegmentNames() {
			data := obj.SegData[seg]
			start := segMaps[i][seg] - base
			for j, b := range data {
				idx := int(start) + j
				if written[idx] {
					return nil, errf("segment %q of object %q overlaps another segment at image offset %d", seg, objName(obj, i), idx)
				}
				written[idx] = true
				image[idx] = b
			}
		}
	}

	for idx, w := range written {
		if !w {
			return nil, errf("image has an unwritten gap at offset %d", idx)
		}
	}

	return image, nil
}
