package parser

import (
	"fmt"
	"strconv"
	"strings"

	"go.creack.net/chipple/op"
)

// OperandType enum type.
type OperandType int

// OperandType values.
const (
	TReg   OperandType = 1 << iota // Register, V0 to VF.
	TIndex                         // The index register, I.
	TNum                           // Immediate number.
	TLab                           // Label reference, resolved to an address.
)

func (ot OperandType) String() string {
	var parts []string
	if ot&TReg != 0 {
		parts = append(parts, "register")
	}
	if ot&TIndex != 0 {
		parts = append(parts, "index")
	}
	if ot&TNum != 0 {
		parts = append(parts, "number")
	}
	if ot&TLab != 0 {
		parts = append(parts, "label")
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, "|")
}

// Parameter represents an operand in a statement.
type Parameter struct {
	Typ      OperandType
	RawValue string // As written in the source.
	Value    int    // Register number or number value. Labels get resolved on encode.
}

func (p Parameter) String() string {
	switch p.Typ {
	case TReg:
		return fmt.Sprintf("V%X", p.Value)
	case TIndex:
		return "I"
	case TNum:
		return fmt.Sprintf("$%X", p.Value)
	case TLab:
		return p.RawValue
	default:
		return fmt.Sprintf("unknown param type %d", p.Typ)
	}
}

// parseParameter classifies an identifier or number token.
func parseParameter(it item) (*Parameter, error) {
	switch it.typ {
	case itemNumber:
		n, err := parseNumber(it.val)
		if err != nil {
			return nil, err
		}
		return &Parameter{Typ: TNum, RawValue: it.val, Value: n}, nil
	case itemIdentifier:
		if strings.EqualFold(it.val, op.IndexRegister) {
			return &Parameter{Typ: TIndex, RawValue: it.val}, nil
		}
		if r, ok := parseRegister(it.val); ok {
			return &Parameter{Typ: TReg, RawValue: it.val, Value: r}, nil
		}
		return &Parameter{Typ: TLab, RawValue: it.val}, nil
	default:
		return nil, fmt.Errorf("expected operand, got %s", it)
	}
}

// parseRegister matches V0 to VF, case insensitive.
func parseRegister(s string) (int, bool) {
	if len(s) != 2 || (s[0] != op.RegisterChar && s[0] != op.RegisterChar-'a'+'A') {
		return 0, false
	}
	n, err := strconv.ParseUint(s[1:], 16, 8)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

// parseNumber handles decimal, 0x/$ hex and 0b binary.
func parseNumber(s string) (int, error) {
	digits, base := strings.ReplaceAll(s, "_", ""), 10
	switch lower := strings.ToLower(digits); {
	case strings.HasPrefix(lower, string(op.HexChar)):
		digits, base = digits[1:], 16
	case strings.HasPrefix(lower, "0x"):
		digits, base = digits[2:], 16
	case strings.HasPrefix(lower, "0b"):
		digits, base = digits[2:], 2
	}
	n, err := strconv.ParseUint(digits, base, 16)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return int(n), nil
}

// checkRange validates the value fits in the given number of bits.
func checkRange(what string, v, bits int) error {
	if v < 0 || v >= 1<<bits {
		return fmt.Errorf("%s %d (0x%X) does not fit in %d bits", what, v, v, bits)
	}
	return nil
}
