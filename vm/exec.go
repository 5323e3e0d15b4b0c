package vm

import (
	"fmt"

	"go.creack.net/chipple/asm/parser"
	"go.creack.net/chipple/op"
)

// Exec applies one instruction to the machine.
// The PC is expected to already point to the next instruction.
// On error, the machine is left untouched.
func (m *Machine) Exec(ins parser.Instruction) error {
	switch ins := ins.(type) {
	case parser.ClearScreen:
		m.Screen.Clear()

	case parser.Jump:
		if err := checkTarget(ins.Addr); err != nil {
			return fmt.Errorf("jump: %w", err)
		}
		m.PC = ins.Addr

	case parser.Call:
		if len(m.Stack) >= op.StackSize {
			return fmt.Errorf("call 0x%03X with %d frames: %w", ins.Addr, len(m.Stack), ErrStackOverflow)
		}
		if err := checkTarget(ins.Addr); err != nil {
			return fmt.Errorf("call: %w", err)
		}
		m.Stack = append(m.Stack, m.PC)
		m.PC = ins.Addr

	case parser.Return:
		if len(m.Stack) == 0 {
			return fmt.Errorf("return: %w", ErrStackUnderflow)
		}
		m.PC = m.Stack[len(m.Stack)-1]
		m.Stack = m.Stack[:len(m.Stack)-1]

	case parser.CompareImmediate:
		if (m.Registers[ins.X] == ins.Imm) == ins.WantEqual {
			m.PC += op.InstructionSize
		}

	case parser.CompareRegisters:
		if (m.Registers[ins.X] == m.Registers[ins.Y]) == ins.WantEqual {
			m.PC += op.InstructionSize
		}

	case parser.AddImmediate:
		// uint8 arithmetic wraps, VF is not touched.
		m.Registers[ins.Register] += ins.Value

	case parser.SetImmediate:
		m.Registers[ins.Register] = ins.Value

	case parser.SetIndex:
		m.I = ins.Value

	case parser.Draw:
		return m.draw(ins)

	default:
		return fmt.Errorf("%w: unsupported instruction %T", parser.ErrInvalidOpcode, ins)
	}
	return nil
}

// checkTarget validates a jump or call target.
// Instructions are word aligned, an odd target can't be fetched.
func checkTarget(addr uint16) error {
	if addr > op.MaxAddress || addr%op.InstructionSize != 0 {
		return fmt.Errorf("target 0x%03X: %w", addr, ErrInvalidAddress)
	}
	return nil
}

// draw xors the sprite at I onto the screen.
// The origin wraps into the grid, the sprite itself is clipped at the edges.
// VF is set to 1 if any lit cell got turned off, 0 otherwise.
func (m *Machine) draw(ins parser.Draw) error {
	sprite, err := m.Ram.Read(m.I, int(ins.Height))
	if err != nil {
		return fmt.Errorf("draw %d rows at I=0x%03X: %w", ins.Height, m.I, ErrOutOfBoundsRead)
	}

	x0 := int(m.Registers[ins.X]) % op.ScreenWidth
	y0 := int(m.Registers[ins.Y]) % op.ScreenHeight

	var collision uint8
	for r, row := range sprite {
		for c := range op.SpriteWidth {
			if row&(0x80>>c) == 0 {
				continue
			}
			x, y := x0+c, y0+r
			if !m.Screen.Contains(x, y) {
				continue
			}
			if m.Screen.Toggle(x, y) {
				collision = 1
			}
		}
	}
	m.Registers[op.FlagRegister] = collision
	return nil
}
