package parser

import (
	"fmt"
	"strings"

	"go.creack.net/chipple/op"
)

// Node is an element of a parsed source.
type Node interface {
	Encode(p *Program) ([]byte, error)
	PrettyPrint(nodes []Node) string
}

// Statement is a source instruction, before label resolution.
type Statement struct {
	Name   string       // Mnemonic as written.
	Params []*Parameter // Operands.
	Line   int          // Source line, for error reports.
}

func (s Statement) String() string {
	paramStrs := make([]string, 0, len(s.Params))
	for _, param := range s.Params {
		paramStrs = append(paramStrs, param.String())
	}
	if len(paramStrs) == 0 {
		return "<" + s.Name + ">"
	}
	return "<" + s.Name + " (" + strings.Join(paramStrs, string(op.SeparatorChar)+" ") + ")>"
}

func (s *Statement) PrettyPrint(_ []Node) string {
	paramStrs := make([]string, 0, len(s.Params))
	for _, param := range s.Params {
		paramStrs = append(paramStrs, param.String())
	}
	out := "\t" + strings.ToUpper(s.Name)
	if len(paramStrs) == 0 {
		return out
	}
	return fmt.Sprintf("%- 8s %s", out, strings.Join(paramStrs, string(op.SeparatorChar)+" "))
}

// Parser structure
type Parser struct {
	lexer     *lexer
	currToken item
	peekToken item

	Nodes []Node
}

// NewParser creates a new parser
func NewParser(name, input string) *Parser {
	p := &Parser{
		lexer: NewLexer(name, input),
	}
	// Preload the next token.
	p.nextToken()
	return p
}

func (p *Parser) parseLabel() error {
	for _, n := range p.Nodes {
		if l, ok := n.(*Label); ok && strings.EqualFold(l.Name, p.currToken.val) {
			return fmt.Errorf("duplicate label %q", p.currToken.val)
		}
	}
	if _, ok := parseRegister(p.currToken.val); ok || strings.EqualFold(p.currToken.val, op.IndexRegister) {
		return fmt.Errorf("label %q shadows a register", p.currToken.val)
	}
	p.Nodes = append(p.Nodes, &Label{Name: p.currToken.val})
	return nil
}

// parseParameters consumes a comma separated operand list up to the end of line.
func (p *Parser) parseParameters() ([]*Parameter, error) {
	var params []*Parameter
	expectOperand := false
	for {
		p.nextToken()
		switch {
		case p.currToken.typ.isEOL():
			if expectOperand {
				return nil, fmt.Errorf("unexpected end of line after comma")
			}
			return params, nil
		case p.currToken.typ == itemComa:
			if expectOperand || len(params) == 0 {
				return nil, fmt.Errorf("unexpected comma")
			}
			expectOperand = true
		default:
			if !expectOperand && len(params) > 0 {
				return nil, fmt.Errorf("missing comma before %s", p.currToken)
			}
			param, err := parseParameter(p.currToken)
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			expectOperand = false
		}
	}
}

func (p *Parser) parseDirective() error {
	d := &Directive{Name: strings.TrimPrefix(p.currToken.val, string(op.DirectiveChar))}
	if _, ok := directiveSizes[strings.ToLower(d.Name)]; !ok {
		return fmt.Errorf("unknown directive %q", p.currToken.val)
	}
	params, err := p.parseParameters()
	if err != nil {
		return fmt.Errorf("directive %q: %w", d.Name, err)
	}
	if len(params) == 0 {
		return fmt.Errorf("directive %q: missing values", d.Name)
	}
	d.Params = params
	p.Nodes = append(p.Nodes, d)
	return nil
}

func (p *Parser) parseStatement() error {
	s := &Statement{Name: p.currToken.val, Line: p.currToken.line}
	if len(op.ByName(s.Name)) == 0 {
		return fmt.Errorf("unknown instruction %q", s.Name)
	}
	params, err := p.parseParameters()
	if err != nil {
		return fmt.Errorf("instruction %q: %w", s.Name, err)
	}
	s.Params = params
	p.Nodes = append(p.Nodes, s)
	return nil
}

// nextToken advances to the next token
func (p *Parser) nextToken() {
	p.currToken = p.peekToken
	p.peekToken = p.lexer.nextItem()
}

func (p *Parser) Parse() error {
	for {
		p.nextToken()
		item := p.currToken
		if item.typ == itemEOF {
			break
		}
		if item.typ == itemError {
			return fmt.Errorf("[%d:%d]: %s", item.line, item.pos, item.val)
		}

		var err error
		switch item.typ {
		case itemNewline, itemComment:
			continue
		case itemLabel:
			err = p.parseLabel()
		case itemDirective:
			err = p.parseDirective()
		case itemIdentifier:
			err = p.parseStatement()
		default:
			return fmt.Errorf("[%d:%d]: unexpected item %s", item.line, item.pos, item)
		}
		if err != nil {
			return fmt.Errorf("[%d:%d]: %w", item.line, item.pos, err)
		}
	}

	return nil
}
