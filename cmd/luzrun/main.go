// Command luzrun loads a Luz binary image (or assembles and links
// .lasm inputs directly) and runs it on the simulator, with an
// optional interactive debug REPL and instruction trace.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/eliben/luz-cpu/asm"
	"github.com/eliben/luz-cpu/asmparse"
	"github.com/eliben/luz-cpu/disasm"
	"github.com/eliben/luz-cpu/internal/logx"
	"github.com/eliben/luz-cpu/link"
	"github.com/eliben/luz-cpu/objfile"
	"github.com/eliben/luz-cpu/sim"
)

func main() {
	fs := flag.NewFlagSet("luzrun", flag.ExitOnError)
	debugMode := fs.Bool("debug", false, "enter interactive step/breakpoint mode")
	trace := fs.Bool("trace", false, "disassemble each executed instruction to stderr")
	fs.Parse(os.Args[1:])

	log := logx.New()
	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "luzrun: at least one input file is required")
		os.Exit(1)
	}

	image, err := loadImage(files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "luzrun: %s\n", err)
		os.Exit(1)
	}

	cpu := sim.New(image)
	log.Info("loaded image", "bytes", len(image))

	if *debugMode {
		runDebugMode(cpu)
		return
	}
	runProgram(cpu, *trace)
}

func loadImage(files []string) ([]byte, error) {
	if len(files) == 1 && strings.HasSuffix(files[0], ".bin") {
		return os.ReadFile(files[0])
	}

	allLasm := true
	for _, f := range files {
		if !strings.HasSuffix(f, ".lasm") {
			allLasm = false
			break
		}
	}
	if !allLasm {
		return os.ReadFile(files[0])
	}

	var objs []*objfile.ObjectFile
	for _, path := range files {
		source, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		lines, err := asmparse.Parse(string(source))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		obj, err := asm.New(path).Assemble(lines)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		objs = append(objs, obj)
	}
	return link.New().Link(objs)
}

// runProgram runs cpu to completion, disabling the garbage collector
// for the duration of the tight step loop exactly as the teacher's
// RunProgram does, and watches for Ctrl-C on a second goroutine so
// the run can be interrupted cleanly.
func runProgram(cpu *sim.CPU, trace bool) {
	gcPercent := debug.SetGCPercent(-1)
	defer debug.SetGCPercent(gcPercent)

	var stopRequested atomic.Bool
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		stopRequested.Store(true)
	}()
	defer signal.Stop(sigCh)

	for !cpu.Halted {
		if stopRequested.Load() {
			fmt.Fprintln(os.Stderr, "luzrun: interrupted")
			return
		}
		if trace {
			instr, err := cpu.Mem.ReadInstruction(cpu.PC)
			if err == nil {
				fmt.Fprintf(os.Stderr, "0x%08X: %s\n", cpu.PC, disasm.Disassemble(instr))
			}
		}
		cpu.Step()
	}
	fmt.Fprintf(os.Stderr, "luzrun: halted at pc=0x%08X\n", cpu.PC)
}

func runDebugMode(cpu *sim.CPU) {
	fmt.Println("Commands:\n\tn or next: execute next instruction\n\tr or run: run program\n\tb or break <addr>: break at address (or remove break)\n\tq or quit: exit")
	printState(cpu)

	reader := bufio.NewReader(os.Stdin)
	running := false
	breakpoints := make(map[uint32]struct{})

	for !cpu.Halted {
		if running {
			if _, ok := breakpoints[cpu.PC]; ok {
				fmt.Printf("breakpoint at 0x%08X\n", cpu.PC)
				running = false
				printState(cpu)
				continue
			}
			cpu.Step()
			continue
		}

		fmt.Print("\n-> ")
		line, _ := reader.ReadString('\n')
		line = strings.ToLower(strings.TrimSpace(line))

		switch {
		case line == "n" || line == "next":
			cpu.Step()
			printState(cpu)
		case line == "r" || line == "run":
			running = true
		case line == "q" || line == "quit":
			return
		case strings.HasPrefix(line, "b"):
			fields := strings.Fields(line)
			if len(fields) != 2 {
				fmt.Println("usage: b <addr>")
				continue
			}
			addr, err := strconv.ParseUint(strings.TrimPrefix(fields[1], "0x"), 16, 32)
			if err != nil {
				fmt.Println("unknown address:", err)
				continue
			}
			if _, ok := breakpoints[uint32(addr)]; ok {
				delete(breakpoints, uint32(addr))
			} else {
				breakpoints[uint32(addr)] = struct{}{}
			}
		default:
			fmt.Println("unknown command")
		}
	}
	fmt.Printf("halted at pc=0x%08X\n", cpu.PC)
}

func printState(cpu *sim.CPU) {
	fmt.Printf("pc=0x%08X halted=%v in_exception=%v\n", cpu.PC, cpu.Halted, cpu.InException)
	for i := 0; i < 32; i += 4 {
		fmt.Printf("  r%-2d=0x%08X r%-2d=0x%08X r%-2d=0x%08X r%-2d=0x%08X\n",
			i, cpu.RegValue(i), i+1, cpu.RegValue(i+1), i+2, cpu.RegValue(i+2), i+3, cpu.RegValue(i+3))
	}
}
