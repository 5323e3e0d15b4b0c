package parser

import (
	"fmt"
	"strings"

	"go.creack.net/chipple/op"
)

// Size in bytes of each value, per directive.
var directiveSizes = map[string]int{
	"byte": 1,
	"word": 2,
}

// Directive emits raw data, e.g. sprite rows.
type Directive struct {
	Name   string
	Params []*Parameter
}

func (d Directive) String() string {
	return fmt.Sprintf("<%c%s %d values>", op.DirectiveChar, d.Name, len(d.Params))
}

func (d *Directive) PrettyPrint(_ []Node) string {
	values := make([]string, 0, len(d.Params))
	for _, param := range d.Params {
		if param.Typ == TNum && strings.EqualFold(d.Name, "byte") {
			values = append(values, fmt.Sprintf("$%02X", param.Value))
			continue
		}
		values = append(values, param.String())
	}
	return "\t" + string(op.DirectiveChar) + strings.ToLower(d.Name) + " " + strings.Join(values, string(op.SeparatorChar)+" ")
}

func (d Directive) Encode(p *Program) ([]byte, error) {
	startIdx := p.idx
	size := directiveSizes[strings.ToLower(d.Name)]

	for _, param := range d.Params {
		v, err := p.resolve(param)
		if err != nil {
			return nil, err
		}
		if err := checkRange("value", v, 8*size); err != nil {
			return nil, err
		}
		if err := p.grow(size); err != nil {
			return nil, err
		}
		if size == 1 {
			p.buf[p.idx] = byte(v)
		} else {
			op.Endian.PutUint16(p.buf[p.idx:], uint16(v))
		}
		p.idx += size
	}

	return p.buf[startIdx:p.idx], nil
}
