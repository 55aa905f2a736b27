package encoding

// Format identifies which of the six fixed bit layouts an opcode uses.
type Format int

const (
	FormatR Format = iota
	FormatI
	FormatJ
	FormatOneReg
	FormatLUI
	FormatNoOperand
)

var formatOf = map[Opcode]Format{
	OpAdd: FormatR, OpSub: FormatR, OpMulu: FormatR, OpMul: FormatR,
	OpDivu: FormatR, OpDiv: FormatR, OpAnd: FormatR, OpOr: FormatR,
	OpNor: FormatR, OpXor: FormatR, OpSll: FormatR, OpSrl: FormatR,

	OpAddi: FormatI, OpSubi: FormatI, OpAndi: FormatI, OpOri: FormatI,
	OpSlli: FormatI, OpSrli: FormatI,
	OpLb: FormatI, OpLh: FormatI, OpLw: FormatI, OpLbu: FormatI, OpLhu: FormatI,
	OpSb: FormatI, OpSh: FormatI, OpSw: FormatI,
	OpBeq: FormatI, OpBne: FormatI, OpBge: FormatI, OpBgt: FormatI,
	OpBle: FormatI, OpBlt: FormatI,
	OpBgeu: FormatI, OpBgtu: FormatI, OpBleu: FormatI, OpBltu: FormatI,

	OpB: FormatJ, OpCall: FormatJ,

	OpJr: FormatOneReg,

	OpLui: FormatLUI,

	OpEret: FormatNoOperand, OpHalt: FormatNoOperand,
}

// FormatOf returns the bit layout used by op. Callers should check
// op.Valid() first; an unrecognised opcode reports FormatNoOperand.
func FormatOf(op Opcode) Format {
	if f, ok := formatOf[op]; ok {
		return f
	}
	return FormatNoOperand
}

// RType is the decoded form of a 3-register instruction word:
// [31:26] op | [25:21] rd | [20:16] rs | [15:11] rt | [10:0] 0.
type RType struct {
	Op         Opcode
	Rd, Rs, Rt int
}

func EncodeRType(f RType) uint32 {
	return BuildBitfield(31, 26, uint32(f.Op)) |
		BuildBitfield(25, 21, uint32(f.Rd)) |
		BuildBitfield(20, 16, uint32(f.Rs)) |
		BuildBitfield(15, 11, uint32(f.Rt))
}

func DecodeRType(word uint32) RType {
	return RType{
		Op: Opcode(ExtractBitfield(word, 31, 26)),
		Rd: int(ExtractBitfield(word, 25, 21)),
		Rs: int(ExtractBitfield(word, 20, 16)),
		Rt: int(ExtractBitfield(word, 15, 11)),
	}
}

// IType is the decoded form of a 2-register + 16-bit-immediate word:
// [31:26] op | [25:21] rd | [20:16] rs | [15:0] imm16.
type IType struct {
	Op      Opcode
	Rd, Rs  int
	Imm16   uint32
}

func EncodeIType(f IType) uint32 {
	return BuildBitfield(31, 26, uint32(f.Op)) |
		BuildBitfield(25, 21, uint32(f.Rd)) |
		BuildBitfield(20, 16, uint32(f.Rs)) |
		BuildBitfield(15, 0, f.Imm16)
}

func DecodeIType(word uint32) IType {
	return IType{
		Op:    Opcode(ExtractBitfield(word, 31, 26)),
		Rd:    int(ExtractBitfield(word, 25, 21)),
		Rs:    int(ExtractBitfield(word, 20, 16)),
		Imm16: ExtractBitfield(word, 15, 0),
	}
}

// JType is the decoded form of a 26-bit-immediate word:
// [31:26] op | [25:0] imm26.
type JType struct {
	Op    Opcode
	Imm26 uint32
}

func EncodeJType(f JType) uint32 {
	return BuildBitfield(31, 26, uint32(f.Op)) | BuildBitfield(25, 0, f.Imm26)
}

func DecodeJType(word uint32) JType {
	return JType{
		Op:    Opcode(ExtractBitfield(word, 31, 26)),
		Imm26: ExtractBitfield(word, 25, 0),
	}
}

// OneRegType is the decoded form of JR: [31:26] op | [25:21] rd | [20:0] 0.
type OneRegType struct {
	Op Opcode
	Rd int
}

func EncodeOneRegType(f OneRegType) uint32 {
	return BuildBitfield(31, 26, uint32(f.Op)) | BuildBitfield(25, 21, uint32(f.Rd))
}

func DecodeOneRegType(word uint32) OneRegType {
	return OneRegType{
		Op: Opcode(ExtractBitfield(word, 31, 26)),
		Rd: int(ExtractBitfield(word, 25, 21)),
	}
}

// LUIType is the decoded form of LUI: [31:26] op | [25:21] rd | [20:16] 0 | [15:0] imm16.
type LUIType struct {
	Op    Opcode
	Rd    int
	Imm16 uint32
}

func EncodeLUIType(f LUIType) uint32 {
	return BuildBitfield(31, 26, uint32(f.Op)) |
		BuildBitfield(25, 21, uint32(f.Rd)) |
		BuildBitfield(15, 0, f.Imm16)
}

func DecodeLUIType(word uint32) LUIType {
	return LUIType{
		Op:    Opcode(ExtractBitfield(word, 31, 26)),
		Rd:    int(ExtractBitfield(word, 25, 21)),
		Imm16: ExtractBitfield(word, 15, 0),
	}
}

// EncodeNoOperand encodes an opcode-only word (ERET, HALT).
func EncodeNoOperand(op Opcode) uint32 {
	return BuildBitfield(31, 26, uint32(op))
}
