// Package tui is the terminal debugger, built on tview.
package tui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/retroenv/retrogolib/log"
	"github.com/rivo/tview"

	"go.creack.net/chipple/cli"
	"go.creack.net/chipple/disasm"
	"go.creack.net/chipple/host"
	"go.creack.net/chipple/op"
	"go.creack.net/chipple/vm"
)

const (
	pageMain   = "main"
	pageMemory = "memory"
	pageSource = "source"

	frameRate = 60
)

type Debugger struct {
	app *tview.Application

	root *tview.Pages

	screenView *tview.TextView
	stateView  *tview.TextView
	codeView   *tview.Table
	logsView   *tview.TextView
	memoryView *tview.TextView

	session *host.Session
	rom     *cli.ROM

	ctx    context.Context
	cancel context.CancelFunc
}

func NewDebugger(ctx context.Context, session *host.Session, rom *cli.ROM) *Debugger {
	app := tview.NewApplication()

	newTextView := func(title string) *tview.TextView {
		v := tview.NewTextView().SetDynamicColors(true)
		v.SetTitle(title).SetBorder(true)
		return v
	}

	screenView := newTextView("Screen")
	screenView.SetWrap(false)

	stateView := newTextView("State")

	logsView := newTextView("Logs")
	logsView.SetMaxLines(500)
	logsView.ScrollToEnd()

	codeView := tview.NewTable().SetBorders(false)
	codeView.SetTitle("Code").SetBorder(true)

	memoryView := newTextView("Memory")

	sourceView := newTextView(rom.ShortName)
	sourceView.SetDynamicColors(false)
	sourceView.SetText(disasm.Disam(rom.ShortName, rom.Data, rom.Lines[0].Addr))

	leftPane := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(screenView, op.ScreenHeight/2+2, 0, false).
		AddItem(logsView, 0, 1, false)

	rightPane := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(stateView, 0, 2, false).
		AddItem(codeView, 0, 3, false)

	flex := tview.NewFlex().
		AddItem(leftPane, op.ScreenWidth+2, 0, false).
		AddItem(rightPane, 0, 1, false)

	pages := tview.NewPages()
	pages.AddPage(pageMain, flex, true, true)
	pages.AddPage(pageMemory, memoryView, true, false)
	pages.AddPage(pageSource, sourceView, true, false)

	ctx, cancel := context.WithCancel(ctx)

	return &Debugger{
		app: app,

		root: pages,

		screenView: screenView,
		stateView:  stateView,
		codeView:   codeView,
		logsView:   logsView,
		memoryView: memoryView,

		session: session,
		rom:     rom,

		ctx:    ctx,
		cancel: cancel,
	}
}

func (d *Debugger) Stop() {
	d.app.Stop()
	d.cancel()
}

func (d *Debugger) handleKey(event *tcell.EventKey) *tcell.EventKey {
	curPage, _ := d.root.GetFrontPage()
	switch event.Key() {
	case tcell.KeyCtrlC:
		d.Stop()
		return nil
	case tcell.KeyEscape, tcell.KeyEnter:
		if curPage != pageMain {
			d.root.SwitchToPage(pageMain)
			return nil
		}
		if event.Key() == tcell.KeyEscape {
			d.Stop()
			return nil
		}
		return event
	}
	switch event.Rune() {
	case 'n':
		d.session.StepOnce()
	case ' ':
		d.session.TogglePause()
	case 'r':
		d.session.Reset()
		d.logsView.Clear()
	case 'm':
		d.root.SwitchToPage(pageMemory)
	case 's':
		d.root.SwitchToPage(pageSource)
	case 'q':
		if curPage != pageMain {
			d.root.SwitchToPage(pageMain)
			return nil
		}
		d.Stop()
	default:
		return event
	}
	return nil
}

func (d *Debugger) Init() {
	d.root.SetInputCapture(d.handleKey)
	go func() {
		for {
			select {
			case msg := <-d.session.Messages():
				d.app.QueueUpdateDraw(func() {
					if msg.Type == vm.MsgReset {
						d.logsView.Clear()
					}
					fmt.Fprintln(d.logsView, formatMessage(msg))
				})
			case <-d.ctx.Done():
				return
			}
		}
	}()
}

var messageColors = map[vm.MessageType]tcell.Color{
	vm.MsgDebug: tcell.ColorGray,
	vm.MsgClear: tcell.ColorTeal,
	vm.MsgDraw:  tcell.ColorGreen,
	vm.MsgHalt:  tcell.ColorRed,
	vm.MsgReset: tcell.ColorYellow,
}

func formatMessage(msg vm.Message) string {
	// NOTE: Seems like there is a bug with tview, we can't reset the color to default
	// with [:] or [:::], so we use tcell default.
	colorCode := "[" + tcell.ColorDefault.String() + ":::]"
	if c, ok := messageColors[msg.Type]; ok {
		colorCode = "[" + c.String() + ":::]"
	}
	text := tview.Escape(strings.TrimSuffix(msg.Message, "\n"))
	return fmt.Sprintf("%s[%05d] 0x%03X %s %s[:::]", colorCode, msg.Cycle, msg.PC, msg.Type, text)
}

func (d *Debugger) drawState(st host.State) {
	d.stateView.Clear()

	state := "[green]running[-]"
	switch {
	case st.Err != nil:
		state = "[red]" + tview.Escape(st.Err.Error()) + "[-]"
	case st.Paused:
		state = "[yellow]paused[-]"
	}
	fmt.Fprintf(d.stateView, "%s\n\n", state)
	fmt.Fprintf(d.stateView, "Cycle: %d\n", st.Cycle)
	fmt.Fprintf(d.stateView, "PC:    0x%03X\n", st.PC)
	fmt.Fprintf(d.stateView, "I:     0x%03X\n\n", st.I)
	fmt.Fprint(d.stateView, tview.Escape(registers(st.Registers)))
	fmt.Fprintf(d.stateView, "\nStack (%d/%d):", len(st.Stack), op.StackSize)
	for i := len(st.Stack) - 1; i >= 0; i-- {
		fmt.Fprintf(d.stateView, " %03X", st.Stack[i])
	}
	fmt.Fprint(d.stateView, "\n\n[::d][space] pause [n] step [r] reset [m] memory [s] source [q] quit[::-]")
}

// registers lays the registers out 4 per line.
func registers(regs [op.RegisterCount]uint8) string {
	var sb strings.Builder
	for i, v := range regs {
		fmt.Fprintf(&sb, "V%X=%02X", i, v)
		if i%4 == 3 {
			sb.WriteByte('\n')
		} else {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

func (d *Debugger) drawCode(st host.State) {
	d.codeView.Clear()
	for i, l := range d.rom.Lines {
		cell := tview.NewTableCell(tview.Escape(l.String()))
		if l.Ins == nil {
			cell.SetTextColor(tcell.ColorDimGray)
		}
		if l.Addr == st.PC {
			cell.SetAttributes(tcell.AttrReverse)
		}
		d.codeView.SetCell(i, 0, cell)
	}
	if i, ok := disasm.At(d.rom.Lines, st.PC); ok {
		_, _, _, h := d.codeView.GetInnerRect()
		d.codeView.SetOffset(max(i-h/2, 0), 0)
	}
}

func (d *Debugger) Draw() {
	st := d.session.Snapshot()

	d.screenView.SetText(host.HalfBlocks(&st.Screen))
	d.drawState(st)
	d.drawCode(st)
	d.memoryView.SetText(dumpMemory(d.session.Memory(0, op.MemSize), st.PC, st.I))
}

// dumpMemory renders a hex dump, 16 bytes per line, collapsing runs of zero lines.
// The PC and I bytes are highlighted.
func dumpMemory(data []byte, pc, index uint16) string {
	out := &strings.Builder{}
	const width = 16
	zz := make([]byte, width)
	for i := 0; i < len(data); {
		if i%width == 0 {
			if i+width <= len(data) && bytes.Equal(data[i:i+width], zz) && !(int(pc) >= i && int(pc) < i+width) {
				fmt.Fprintf(out, "*\n")
				for ; i+width <= len(data) && bytes.Equal(data[i:i+width], zz) && !(int(pc) >= i && int(pc) < i+width); i += width {
				}
				continue
			}
			fmt.Fprintf(out, "0x%04X:", i)
		}
		if i%(width/2) == 0 {
			fmt.Fprintf(out, " ")
		}
		switch i {
		case int(pc):
			fmt.Fprintf(out, " [::r]%02x[::-]", data[i])
		case int(index):
			fmt.Fprintf(out, " [::u]%02x[::-]", data[i])
		default:
			fmt.Fprintf(out, " %02x", data[i])
		}
		i++
		if i%width == 0 {
			fmt.Fprintf(out, "\n")
		}
	}
	return out.String()
}

// Run starts the debugger, paused, and blocks until it is closed.
func Run(ctx context.Context, logger *log.Logger, in *vm.Interpreter, rom *cli.ROM, cyclesPerFrame int) error {
	d := NewDebugger(ctx, host.NewSession(in, cyclesPerFrame, true), rom)
	d.Init()

	go func() {
		defer func() {
			if e := recover(); e != nil {
				d.app.Stop()
				logger.Error("Recovered from panic", log.String("panic", fmt.Sprint(e)))
				debug.PrintStack()
			}
		}()

		ticker := time.NewTicker(time.Second / frameRate)
		defer ticker.Stop()
		for {
			// Halted sessions stay up for inspection, the state view shows why.
			_, _ = d.session.Tick(d.ctx)
			d.app.QueueUpdateDraw(d.Draw)

			select {
			case <-ticker.C:
			case <-d.ctx.Done():
				return
			}
		}
	}()

	if err := d.app.SetRoot(d.root, true).SetFocus(d.root).Run(); err != nil {
		return fmt.Errorf("run app: %w", err)
	}
	d.cancel()

	if err := d.session.Snapshot().Err; err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
