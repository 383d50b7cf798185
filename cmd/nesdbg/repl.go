package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"nescore/internal/debugserver"
)

const callTimeout = 10 * time.Second

// debugger is the part of debugserver.Client the commands use
type debugger interface {
	Registers(ctx context.Context) (debugserver.Registers, error)
	ReadMemory(ctx context.Context, address uint16, size int) ([]byte, error)
	Step(ctx context.Context, count uint32) (debugserver.Registers, error)
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Reset(ctx context.Context) error
	Frame(ctx context.Context) ([]byte, error)
}

// repl reads commands from in until quit or end of input
func repl(d debugger, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "(nesdbg) ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !execute(d, strings.Fields(line), out) {
			return
		}
	}
}

// execute runs one command and reports whether the session goes on
func execute(d debugger, parts []string, out io.Writer) bool {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	cmd := parts[0]
	switch {
	case cmd == "help" || cmd == "h":
		fmt.Fprintln(out, "Commands:")
		fmt.Fprintln(out, "  run, c         - Resume execution")
		fmt.Fprintln(out, "  pause, p       - Pause execution")
		fmt.Fprintln(out, "  step, s [n]    - Step n instructions")
		fmt.Fprintln(out, "  regs, r        - Print registers")
		fmt.Fprintln(out, "  x[/n] <addr>   - Examine n bytes of memory (hex address)")
		fmt.Fprintln(out, "  reset          - Press reset")
		fmt.Fprintln(out, "  frame <file>   - Save the last frame as PNG")
		fmt.Fprintln(out, "  quit, q        - Exit")
	case cmd == "quit" || cmd == "q" || cmd == "exit":
		return false
	case cmd == "pause" || cmd == "p":
		if report(out, d.Pause(ctx)) {
			fmt.Fprintln(out, "Emulator paused.")
			printRegs(ctx, d, out)
		}
	case cmd == "run" || cmd == "c" || cmd == "continue":
		if report(out, d.Resume(ctx)) {
			fmt.Fprintln(out, "Emulator running...")
		}
	case cmd == "step" || cmd == "s":
		count := uint64(1)
		if len(parts) > 1 {
			n, err := strconv.ParseUint(parts[1], 10, 32)
			if err != nil {
				fmt.Fprintf(out, "Invalid count: %s\n", parts[1])
				break
			}
			count = n
		}
		regs, err := d.Step(ctx, uint32(count))
		if report(out, err) {
			fmt.Fprintln(out, regs)
		}
	case cmd == "regs" || cmd == "r":
		printRegs(ctx, d, out)
	case cmd == "reset":
		if report(out, d.Reset(ctx)) {
			fmt.Fprintln(out, "Reset.")
		}
	case cmd == "frame":
		if len(parts) < 2 {
			fmt.Fprintln(out, "Usage: frame <file>")
			break
		}
		data, err := d.Frame(ctx)
		if report(out, err) && report(out, os.WriteFile(parts[1], data, 0644)) {
			fmt.Fprintf(out, "Wrote %s (%d bytes).\n", parts[1], len(data))
		}
	case cmd == "x" || strings.HasPrefix(cmd, "x/"):
		addr, count, err := parseExamine(parts)
		if err != nil {
			fmt.Fprintln(out, err)
			break
		}
		data, err := d.ReadMemory(ctx, addr, count)
		if report(out, err) {
			hexDump(out, addr, data)
		}
	default:
		fmt.Fprintf(out, "Unknown command: %s\n", cmd)
	}
	return true
}

// parseExamine decodes "x <addr>" and "x/<count> <addr>"
func parseExamine(parts []string) (uint16, int, error) {
	count := 1
	if c := strings.TrimPrefix(parts[0], "x/"); c != parts[0] {
		n, err := strconv.Atoi(c)
		if err != nil || n <= 0 {
			return 0, 0, fmt.Errorf("Invalid count: %s", c)
		}
		count = n
	}
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("Usage: x <addr> or x/<count> <addr>")
	}

	s := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(parts[1]), "0x"), "$")
	addr, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("Invalid address: %s", parts[1])
	}
	return uint16(addr), count, nil
}

func printRegs(ctx context.Context, d debugger, out io.Writer) {
	regs, err := d.Registers(ctx)
	if report(out, err) {
		fmt.Fprintln(out, regs)
	}
}

// report prints err and returns whether there was none
func report(out io.Writer, err error) bool {
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return false
	}
	return true
}

func hexDump(out io.Writer, start uint16, data []byte) {
	for i := 0; i < len(data); i += 16 {
		fmt.Fprintf(out, "%04X:", start+uint16(i))
		end := i + 16
		if end > len(data) {
			end = len(data)
		}
		for j := i; j < end; j++ {
			fmt.Fprintf(out, " %02X", data[j])
		}
		fmt.Fprintln(out)
	}
}
