// Package asm assembles source programs into raw images.
package asm

import (
	"fmt"
	"strings"

	"go.creack.net/chipple/asm/parser"
	"go.creack.net/chipple/op"
)

// Compile parses and encodes the input.
// base is the address the image will be loaded at, labels resolve against it.
// A zero base means op.ProgramStart.
func Compile(inputName, inputData string, base int) ([]byte, *parser.Program, error) {
	if base == 0 {
		base = op.ProgramStart
	}
	if base < 0 || base > op.MaxAddress {
		return nil, nil, fmt.Errorf("invalid base address 0x%X", base)
	}

	// Parse the input.
	p := parser.NewParser(inputName, inputData)
	if err := p.Parse(); err != nil {
		return nil, nil, fmt.Errorf("failed to parse: %w", err)
	}

	// Encode the program.
	pr := parser.NewProgram(p, base)
	program, err := pr.Encode()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode program: %w", err)
	}
	if len(program) == 0 {
		return nil, nil, fmt.Errorf("empty program")
	}

	return program, pr, nil
}

// Listing returns the pretty printed source of the compiled program.
func Listing(pr *parser.Program) string {
	nodes := pr.Nodes()
	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(n.PrettyPrint(nodes))
		sb.WriteByte('\n')
	}
	return sb.String()
}
