package parser

import (
	"fmt"
	"strings"

	"go.creack.net/chipple/op"
)

type Program struct {
	p *Parser

	Base int // Load address, labels resolve relative to it.

	buf              []byte
	idx              int
	labels           map[string]int
	hasLabelIndex    bool
	hasMissingLabels bool
}

func NewProgram(p *Parser, base int) *Program {
	return &Program{
		p:    p,
		Base: base,

		buf:              make([]byte, op.MemSize-base),
		idx:              0,
		labels:           nil, // Keeping as nil to indicate that we don't have any labels yet.
		hasLabelIndex:    false,
		hasMissingLabels: false,
	}
}

func (p Program) Size() int {
	return p.idx
}

// Nodes returns the parsed nodes.
func (p Program) Nodes() []Node {
	return p.p.Nodes
}

// Label returns the address of the given label, after Encode.
func (p Program) Label(name string) (int, bool) {
	addr, ok := p.labels[name]
	return addr, ok
}

// grow makes sure n more bytes fit in the program space.
func (p *Program) grow(n int) error {
	if p.idx+n > len(p.buf) {
		return fmt.Errorf("program exceeds memory, %d bytes available from 0x%03X", len(p.buf), p.Base)
	}
	return nil
}

// resolve returns the numeric value of the parameter,
// looking up label references.
func (p *Program) resolve(param *Parameter) (int, error) {
	if param.Typ != TLab {
		return param.Value, nil
	}
	if addr, ok := p.labels[param.RawValue]; ok {
		return addr, nil
	}
	// If we don't know the label while having
	// the labels index, error out.
	if p.hasLabelIndex {
		return 0, fmt.Errorf("unknown label %q", param.RawValue)
	}
	// Otherwise, keep going, it will be known the second time.
	p.hasMissingLabels = true
	return 0, nil
}

// matches reports whether the operand types fit the opcode layout.
func matches(l op.Layout, params []*Parameter) bool {
	var want []OperandType
	switch l {
	case op.LayoutNone:
	case op.LayoutAddr:
		want = []OperandType{TNum | TLab}
	case op.LayoutIndexAddr:
		want = []OperandType{TIndex, TNum | TLab}
	case op.LayoutRegByte:
		want = []OperandType{TReg, TNum}
	case op.LayoutRegReg:
		want = []OperandType{TReg, TReg}
	case op.LayoutRegRegNibble:
		want = []OperandType{TReg, TReg, TNum}
	}
	if len(want) != len(params) {
		return false
	}
	for i, param := range params {
		if param.Typ&want[i] == 0 {
			return false
		}
	}
	return true
}

// Instruction resolves the statement into its instruction.
func (s Statement) Instruction(p *Program) (Instruction, error) {
	var opc *op.OpCode
	for _, elem := range op.ByName(s.Name) {
		if matches(elem.Layout, s.Params) {
			opc = &elem
			break
		}
	}
	if opc == nil {
		layouts := []string{}
		for _, elem := range op.ByName(s.Name) {
			layouts = append(layouts, elem.Layout.String())
		}
		return nil, fmt.Errorf("invalid operands %s for %q, expect %s", s, s.Name, strings.Join(layouts, " or "))
	}

	vals := make([]int, len(s.Params))
	for i, param := range s.Params {
		v, err := p.resolve(param)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}

	switch opc.Layout {
	case op.LayoutAddr, op.LayoutIndexAddr:
		addr := vals[len(vals)-1]
		if err := checkRange("address", addr, 12); err != nil {
			return nil, err
		}
		switch opc.Class {
		case op.ClassJump:
			return Jump{Addr: uint16(addr)}, nil
		case op.ClassCall:
			return Call{Addr: uint16(addr)}, nil
		default:
			return SetIndex{Value: uint16(addr)}, nil
		}
	case op.LayoutRegByte:
		if err := checkRange("immediate", vals[1], 8); err != nil {
			return nil, err
		}
		x, kk := uint8(vals[0]), uint8(vals[1])
		switch opc.Class {
		case op.ClassSkipEqImm, op.ClassSkipNeImm:
			return CompareImmediate{X: x, Imm: kk, WantEqual: opc.Class == op.ClassSkipEqImm}, nil
		case op.ClassSetImm:
			return SetImmediate{Register: x, Value: kk}, nil
		default:
			return AddImmediate{Register: x, Value: kk}, nil
		}
	case op.LayoutRegReg:
		return CompareRegisters{X: uint8(vals[0]), Y: uint8(vals[1]), WantEqual: true}, nil
	case op.LayoutRegRegNibble:
		if err := checkRange("height", vals[2], 4); err != nil {
			return nil, err
		}
		return Draw{X: uint8(vals[0]), Y: uint8(vals[1]), Height: uint8(vals[2])}, nil
	}
	if opc.Sub == op.SubReturn {
		return Return{}, nil
	}
	return ClearScreen{}, nil
}

func (s Statement) Encode(p *Program) ([]byte, error) {
	ins, err := s.Instruction(p)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", s.Line, err)
	}
	if err := p.grow(op.InstructionSize); err != nil {
		return nil, err
	}
	op.Endian.PutUint16(p.buf[p.idx:], ins.Encode())
	p.idx += op.InstructionSize
	return p.buf[p.idx-op.InstructionSize : p.idx], nil
}

func (p *Program) encode() error {
	// If we have labels, it means we already encoded once and have the labels index.
	// Error out if we encounter a label that we don't know
	p.hasLabelIndex = p.labels != nil
	if !p.hasLabelIndex {
		p.labels = map[string]int{}
	}
	p.idx = 0
	for _, n := range p.p.Nodes {
		if _, err := n.Encode(p); err != nil {
			return fmt.Errorf("failed to encode %s: %w", n, err)
		}
	}

	return nil
}

func (p *Program) Encode() ([]byte, error) {
	if err := p.encode(); err != nil {
		return nil, fmt.Errorf("failed to first encode program: %w", err)
	}

	// If we don't have any missing labels, we don't need to re-encode.
	if !p.hasMissingLabels {
		return p.buf[:p.idx], nil
	}

	// If we have missing labels, we need to re-encode the program.
	if err := p.encode(); err != nil {
		return nil, fmt.Errorf("failed to re-encode program: %w", err)
	}

	return p.buf[:p.idx], nil
}
