package sim

import (
	"github.com/eliben/luz-cpu/encoding"
)

type opHandler func(c *CPU, instr uint32) error

var opTable map[encoding.Opcode]opHandler

func init() {
	opTable = map[encoding.Opcode]opHandler{
		encoding.OpAdd:  execAdd,
		encoding.OpSub:  execSub,
		encoding.OpMulu: execMulu,
		encoding.OpMul:  execMul,
		encoding.OpDivu: execDivu,
		encoding.OpDiv:  execDiv,
		encoding.OpLui:  execLui,
		encoding.OpSll:  execSll,
		encoding.OpSrl:  execSrl,
		encoding.OpAnd:  execAnd,
		encoding.OpOr:   execOr,
		encoding.OpNor:  execNor,
		encoding.OpXor:  execXor,
		encoding.OpLb:   execLoad(1, true),
		encoding.OpLh:   execLoad(2, true),
		encoding.OpLw:   execLoad(4, false),
		encoding.OpLbu:  execLoad(1, false),
		encoding.OpLhu:  execLoad(2, false),
		encoding.OpSb:   execStore(1),
		encoding.OpSh:   execStore(2),
		encoding.OpSw:   execStore(4),
		encoding.OpB:    execB,
		encoding.OpJr:   execJr,
		encoding.OpBeq:  execBranch(func(rd, rs int32) bool { return rd == rs }),
		encoding.OpBne:  execBranch(func(rd, rs int32) bool { return rd != rs }),
		encoding.OpBge:  execBranch(func(rd, rs int32) bool { return rd >= rs }),
		encoding.OpBgt:  execBranch(func(rd, rs int32) bool { return rd > rs }),
		encoding.OpBle:  execBranch(func(rd, rs int32) bool { return rd <= rs }),
		encoding.OpBlt:  execBranch(func(rd, rs int32) bool { return rd < rs }),
		encoding.OpBgeu: execBranchU(func(rd, rs uint32) bool { return rd >= rs }),
		encoding.OpBgtu: execBranchU(func(rd, rs uint32) bool { return rd > rs }),
		encoding.OpBleu: execBranchU(func(rd, rs uint32) bool { return rd <= rs }),
		encoding.OpBltu: execBranchU(func(rd, rs uint32) bool { return rd < rs }),
		encoding.OpCall: execCall,
		encoding.OpAddi: execAddi,
		encoding.OpSubi: execSubi,
		encoding.OpAndi: execAndi,
		encoding.OpOri:  execOri,
		encoding.OpSlli: execSlli,
		encoding.OpSrli: execSrli,
		encoding.OpEret: execEret,
		encoding.OpHalt: execHalt,
	}
}

func execAdd(c *CPU, instr uint32) error {
	f := encoding.DecodeRType(instr)
	c.setReg(f.Rd, c.GPR[f.Rs]+c.GPR[f.Rt])
	c.PC += 4
	return nil
}

func execSub(c *CPU, instr uint32) error {
	f := encoding.DecodeRType(instr)
	c.setReg(f.Rd, c.GPR[f.Rs]-c.GPR[f.Rt])
	c.PC += 4
	return nil
}

func execMulu(c *CPU, instr uint32) error {
	f := encoding.DecodeRType(instr)
	product := uint64(c.GPR[f.Rs]) * uint64(c.GPR[f.Rt])
	c.setReg(f.Rd, uint32(product))
	c.setReg(f.Rd+1, uint32(product>>32))
	c.PC += 4
	return nil
}

func execMul(c *CPU, instr uint32) error {
	f := encoding.DecodeRType(instr)
	product := int64(int32(c.GPR[f.Rs])) * int64(int32(c.GPR[f.Rt]))
	if product >= -(1<<31) && product <= (1<<31)-1 {
		c.setReg(f.Rd, uint32(int32(product)))
		c.setReg(f.Rd+1, 0)
	} else {
		u := uint64(product)
		c.setReg(f.Rd, uint32(u))
		c.setReg(f.Rd+1, uint32(u>>32))
	}
	c.PC += 4
	return nil
}

func execDivu(c *CPU, instr uint32) error {
	f := encoding.DecodeRType(instr)
	rt := c.GPR[f.Rt]
	if rt == 0 {
		return errDivisionByZero
	}
	c.setReg(f.Rd, c.GPR[f.Rs]/rt)
	c.setReg(f.Rd+1, c.GPR[f.Rs]%rt)
	c.PC += 4
	return nil
}

func execDiv(c *CPU, instr uint32) error {
	f := encoding.DecodeRType(instr)
	rt := int32(c.GPR[f.Rt])
	if rt == 0 {
		return errDivisionByZero
	}
	quot, rem := divFloor32(int32(c.GPR[f.Rs]), rt)
	c.setReg(f.Rd, uint32(quot))
	c.setReg(f.Rd+1, uint32(rem))
	c.PC += 4
	return nil
}

func execLui(c *CPU, instr uint32) error {
	f := encoding.DecodeLUIType(instr)
	c.setReg(f.Rd, f.Imm16<<16)
	c.PC += 4
	return nil
}

func execSll(c *CPU, instr uint32) error {
	f := encoding.DecodeRType(instr)
	c.setReg(f.Rd, c.GPR[f.Rs]<<(c.GPR[f.Rt]&0x1F))
	c.PC += 4
	return nil
}

func execSrl(c *CPU, instr uint32) error {
	f := encoding.DecodeRType(instr)
	c.setReg(f.Rd, c.GPR[f.Rs]>>(c.GPR[f.Rt]&0x1F))
	c.PC += 4
	return nil
}

func execAnd(c *CPU, instr uint32) error {
	f := encoding.DecodeRType(instr)
	c.setReg(f.Rd, c.GPR[f.Rs]&c.GPR[f.Rt])
	c.PC += 4
	return nil
}

func execOr(c *CPU, instr uint32) error {
	f := encoding.DecodeRType(instr)
	c.setReg(f.Rd, c.GPR[f.Rs]|c.GPR[f.Rt])
	c.PC += 4
	return nil
}

func execNor(c *CPU, instr uint32) error {
	f := encoding.DecodeRType(instr)
	c.setReg(f.Rd, ^(c.GPR[f.Rs] | c.GPR[f.Rt]))
	c.PC += 4
	return nil
}

func execXor(c *CPU, instr uint32) error {
	f := encoding.DecodeRType(instr)
	c.setReg(f.Rd, c.GPR[f.Rs]^c.GPR[f.Rt])
	c.PC += 4
	return nil
}

func execAddi(c *CPU, instr uint32) error {
	f := encoding.DecodeIType(instr)
	c.setReg(f.Rd, c.GPR[f.Rs]+f.Imm16)
	c.PC += 4
	return nil
}

func execSubi(c *CPU, instr uint32) error {
	f := encoding.DecodeIType(instr)
	c.setReg(f.Rd, c.GPR[f.Rs]-f.Imm16)
	c.PC += 4
	return nil
}

func execAndi(c *CPU, instr uint32) error {
	f := encoding.DecodeIType(instr)
	c.setReg(f.Rd, c.GPR[f.Rs]&(f.Imm16&0xFFFF))
	c.PC += 4
	return nil
}

func execOri(c *CPU, instr uint32) error {
	f := encoding.DecodeIType(instr)
	c.setReg(f.Rd, c.GPR[f.Rs]|(f.Imm16&0xFFFF))
	c.PC += 4
	return nil
}

func execSlli(c *CPU, instr uint32) error {
	f := encoding.DecodeIType(instr)
	c.setReg(f.Rd, c.GPR[f.Rs]<<(f.Imm16&0x1F))
	c.PC += 4
	return nil
}

func execSrli(c *CPU, instr uint32) error {
	f := encoding.DecodeIType(instr)
	c.setReg(f.Rd, c.GPR[f.Rs]>>(f.Imm16&0x1F))
	c.PC += 4
	return nil
}

func execLoad(width int, signed bool) opHandler {
	return func(c *CPU, instr uint32) error {
		f := encoding.DecodeIType(instr)
		addr := c.GPR[f.Rs] + uint32(encoding.SignExtend(f.Imm16, 16))
		value, err := c.Mem.ReadMem(addr, width)
		if err != nil {
			return err
		}
		if signed {
			value = uint32(encoding.SignExtend(value, uint(width*8)))
		}
		c.setReg(f.Rd, value)
		c.PC += 4
		return nil
	}
}

func execStore(width int) opHandler {
	mask := uint32(0xFFFFFFFF)
	switch width {
	case 1:
		mask = 0xFF
	case 2:
		mask = 0xFFFF
	}
	return func(c *CPU, instr uint32) error {
		f := encoding.DecodeIType(instr)
		addr := c.GPR[f.Rd] + uint32(encoding.SignExtend(f.Imm16, 16))
		if err := c.Mem.WriteMem(addr, width, c.GPR[f.Rs]&mask); err != nil {
			return err
		}
		c.PC += 4
		return nil
	}
}

func execJr(c *CPU, instr uint32) error {
	f := encoding.DecodeOneRegType(instr)
	c.PC = c.GPR[f.Rd]
	return nil
}

func execCall(c *CPU, instr uint32) error {
	f := encoding.DecodeJType(instr)
	c.setReg(31, c.PC+4)
	c.PC = (f.Imm26 * 4)
	return nil
}

func execB(c *CPU, instr uint32) error {
	f := encoding.DecodeJType(instr)
	c.PC += 4 * uint32(encoding.SignExtend(f.Imm26, 26))
	return nil
}

func execBranch(cond func(rd, rs int32) bool) opHandler {
	return func(c *CPU, instr uint32) error {
		f := encoding.DecodeIType(instr)
		if cond(int32(c.GPR[f.Rd]), int32(c.GPR[f.Rs])) {
			c.PC += 4 * uint32(encoding.SignExtend(f.Imm16, 16))
		} else {
			c.PC += 4
		}
		return nil
	}
}

func execBranchU(cond func(rd, rs uint32) bool) opHandler {
	return func(c *CPU, instr uint32) error {
		f := encoding.DecodeIType(instr)
		if cond(c.GPR[f.Rd], c.GPR[f.Rs]) {
			c.PC += 4 * uint32(encoding.SignExtend(f.Imm16, 16))
		} else {
			c.PC += 4
		}
		return nil
	}
}

func execEret(c *CPU, instr uint32) error {
	c.exit()
	return nil
}

func execHalt(c *CPU, instr uint32) error {
	c.Halted = true
	return nil
}
