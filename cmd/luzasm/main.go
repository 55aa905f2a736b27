// Command luzasm assembles and links one or more .lasm files into a
// binary image or an Intel-HEX file.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/eliben/luz-cpu/asm"
	"github.com/eliben/luz-cpu/asmparse"
	"github.com/eliben/luz-cpu/hexfmt"
	"github.com/eliben/luz-cpu/internal/logx"
	"github.com/eliben/luz-cpu/link"
	"github.com/eliben/luz-cpu/objfile"
)

func main() {
	fs := flag.NewFlagSet("luzasm", flag.ExitOnError)
	out := fs.String("o", "a.out", "output file path")
	ulbaHex := fs.String("ulba", "", "upper linear base address (hex) for --format hex, default derived from the link base address")
	format := fs.String("format", "raw", "output format: raw|hex")
	fs.Parse(os.Args[1:])

	log := logx.New()
	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "luzasm: at least one .lasm input file is required")
		os.Exit(1)
	}

	var objs []*objfile.ObjectFile
	for _, path := range files {
		obj, err := assembleFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "luzasm: %s\n", err)
			os.Exit(1)
		}
		log.Debug("assembled", "file", path, "segments", obj.SegmentNames())
		objs = append(objs, obj)
	}

	linker := link.New()
	image, err := linker.Link(objs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "luzasm: %s\n", err)
		os.Exit(1)
	}
	log.Info("linked image", "bytes", len(image), "base", fmt.Sprintf("0x%X", linker.BaseAddress))

	switch *format {
	case "raw":
		if err := os.WriteFile(*out, image, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "luzasm: writing %s: %s\n", *out, err)
			os.Exit(1)
		}
	case "hex":
		loadAddress := linker.BaseAddress
		if *ulbaHex != "" {
			ulba, err := strconv.ParseUint(*ulbaHex, 16, 16)
			if err != nil {
				fmt.Fprintf(os.Stderr, "luzasm: bad --ulba value %q: %s\n", *ulbaHex, err)
				os.Exit(1)
			}
			loadAddress = (uint32(ulba) << 16) | (loadAddress & 0xFFFF)
		}
		text, err := hexfmt.Write(image, loadAddress)
		if err != nil {
			fmt.Fprintf(os.Stderr, "luzasm: %s\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, []byte(text), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "luzasm: writing %s: %s\n", *out, err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "luzasm: unknown --format %q (want raw or hex)\n", *format)
		os.Exit(1)
	}
}

func assembleFile(path string) (*objfile.ObjectFile, error) {
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
	return obj, nil
}
