// Package main is the entry point of the program.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"go.creack.net/chipple/asm"
	"go.creack.net/chipple/assets"
	"go.creack.net/chipple/cli"
	"go.creack.net/chipple/disasm"
	"go.creack.net/chipple/host"
	"go.creack.net/chipple/tui"
	"go.creack.net/chipple/viewer"
	"go.creack.net/chipple/vm"
)

func pathArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// load reads the program and creates the interpreter.
func load(cfg cli.Config, args []string) (*cli.ROM, *vm.Interpreter, error) {
	rom, err := cfg.Load(pathArg(args))
	if err != nil {
		return nil, nil, err
	}
	in, err := vm.NewInterpreter(cfg.VMConfig(rom))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create interpreter: %w", err)
	}
	return rom, in, nil
}

// traceMessages logs the interpreter messages until ctx is done.
func traceMessages(ctx context.Context, logger *log.Logger, in *vm.Interpreter) {
	go func() {
		for {
			select {
			case msg := <-in.Messages:
				logger.Debug(msg.Type.String(),
					log.Int("cycle", msg.Cycle),
					log.Hex("pc", msg.PC),
					log.String("message", msg.Message))
			case <-ctx.Done():
				return
			}
		}
	}()
}

// haltStatus reports the halt reason, end of program is a normal exit.
func haltStatus(err error) error {
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func runCmd(ctx context.Context) *cobra.Command {
	cfg := cli.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "run [rom]",
		Short: "Run a program in a window",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rom, in, err := load(cfg, args)
			if err != nil {
				return err
			}
			logger := cfg.NewLogger()
			if cfg.Trace {
				traceMessages(ctx, logger, in)
			}
			return viewer.Run(ctx, in, cfg.CyclesPerFrame, viewer.Options{
				Title:  "chipple - " + rom.ShortName,
				Scale:  cfg.Scale,
				Logger: logger,
			})
		},
	}
	cfg.RegisterFlags(cmd.Flags())
	return cmd
}

func tuiCmd(ctx context.Context) *cobra.Command {
	cfg := cli.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "tui [rom]",
		Short: "Debug a program in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := cfg.NewLogger()
			cfg.Trace = true // The debugger shows the trace in its logs pane.
			rom, in, err := load(cfg, args)
			if err != nil {
				return err
			}
			return tui.Run(ctx, logger, in, rom, cfg.CyclesPerFrame)
		},
	}
	cfg.RegisterFlags(cmd.Flags())
	return cmd
}

func dumpCmd(ctx context.Context) *cobra.Command {
	cfg := cli.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "dump [rom]",
		Short: "Run a program headless and print the screen",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, in, err := load(cfg, args)
			if err != nil {
				return err
			}
			logger := cfg.NewLogger()
			if cfg.Trace {
				traceMessages(ctx, logger, in)
			}
			n, runErr := in.Run(ctx, cfg.MaxCycles)
			if errors.Is(runErr, context.Canceled) {
				return runErr
			}
			printScreen(cmd.OutOrStdout(), &in.Machine.Screen)
			logger.Info("Run complete",
				log.Int("cycles", n),
				log.Hex("pc", in.Machine.PC))
			return haltStatus(runErr)
		},
	}
	cfg.RegisterFlags(cmd.Flags())
	return cmd
}

// printScreen uses half blocks on terminals wide enough, plain ascii otherwise.
func printScreen(w io.Writer, screen *vm.Screen) {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width >= screen.Width() {
			fmt.Fprint(w, host.HalfBlocks(screen))
			return
		}
	}
	fmt.Fprint(w, screen.String())
}

func disasmCmd() *cobra.Command {
	cfg := cli.DefaultConfig()
	raw := false
	cmd := &cobra.Command{
		Use:   "disasm [rom]",
		Short: "Disassemble a program",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rom, err := cfg.Load(pathArg(args))
			if err != nil {
				return err
			}
			base := rom.Lines[0].Addr
			if raw {
				fmt.Fprint(cmd.OutOrStdout(), disasm.Format(rom.Lines))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), disasm.Disam(rom.ShortName, rom.Data, base))
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "skip the known sources lookup")
	cfg.RegisterFlags(cmd.Flags())
	return cmd
}

func asmCmd() *cobra.Command {
	cfg := cli.DefaultConfig()
	output := ""
	listing := false
	cmd := &cobra.Command{
		Use:   "asm <source.s>",
		Short: "Assemble a source file into a program image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			data, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			buf, pr, err := asm.Compile(input, string(data), int(cfg.LoadAddress))
			if err != nil {
				return fmt.Errorf("failed to compile %q: %w", input, err)
			}
			if listing {
				fmt.Fprint(cmd.OutOrStdout(), asm.Listing(pr))
			}
			if output == "" {
				output = strings.TrimSuffix(input, assets.SourceExt) + cli.BinaryExts[0]
			}
			if err := os.WriteFile(output, buf, 0o644); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			cfg.NewLogger().Info("Program assembled",
				log.String("output", output),
				log.Int("bytes", len(buf)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, defaults to the input with the .ch8 extension")
	cmd.Flags().BoolVarP(&listing, "listing", "l", false, "print the pretty printed source")
	cmd.Flags().Uint16Var(&cfg.LoadAddress, "load-address", cfg.LoadAddress, "address the program is loaded at")
	cmd.Flags().BoolVarP(&cfg.Quiet, "quiet", "q", cfg.Quiet, "only log errors")
	return cmd
}

func samplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "samples",
		Short: "List the embedded sample programs",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range assets.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

func newRootCmd(ctx context.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "chipple",
		Short:         "A CHIP-8 style interpreter",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(
		runCmd(ctx),
		tuiCmd(ctx),
		dumpCmd(ctx),
		disasmCmd(),
		asmCmd(),
		samplesCmd(),
	)
	return rootCmd
}

func main() {
	ctx := app.Context()

	if err := newRootCmd(ctx).Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger := log.NewWithConfig(log.DefaultConfig())
		logger.Fatal(err.Error())
	}
}
