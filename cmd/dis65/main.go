package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/grimdork/climate/arg"

	"github.com/Urethramancer/asm6502/config"
	"github.com/Urethramancer/asm6502/disassembler"
	"github.com/Urethramancer/asm6502/elf"
)

func main() {
	opt := arg.New("dis65")
	opt.SetDefaultHelp(true)
	opt.SetOption(arg.GroupDefault, "O", "origin", "Load address of a raw binary, e.g. $0600.", "", false, arg.VarString, nil)
	opt.SetOption(arg.GroupDefault, "l", "listing", "Prefix lines with address and bytes.", false, false, arg.VarBool, nil)
	opt.SetPositional("INPUT", "ELF image or raw binary.", "", true, arg.VarString)
	opt.SetPositional("OUTPUT", "Output file. Defaults to standard output.", "", false, arg.VarString)

	err := opt.Parse(os.Args[1:])
	if err != nil {
		if err == arg.ErrNoArgs {
			opt.PrintHelp()
			return
		}
		fail(err)
	}

	data, err := os.ReadFile(opt.GetPosString("INPUT"))
	if err != nil {
		fail(err)
	}

	origin := uint16(config.Default().Origin)
	if s := opt.GetString("origin"); s != "" {
		a, err := config.ParseAddress(s)
		if err != nil {
			fail(err)
		}
		origin = uint16(a)
	}

	code := data
	h, image, err := elf.ReadImage(data)
	switch {
	case err == nil:
		code, origin = image, uint16(h.Entry)
	case !errors.Is(err, elf.ErrNotImage):
		fail(err)
	}

	text, err := disassembler.Disassemble(code, disassembler.Options{
		Origin:  origin,
		Listing: opt.GetBool("listing"),
	})
	if err != nil {
		fail(err)
	}

	out := opt.GetPosString("OUTPUT")
	if out == "" {
		fmt.Print(text)
		return
	}
	if err := os.WriteFile(out, []byte(text), 0644); err != nil {
		fail(err)
	}
	fmt.Printf("Disassembly written to %s\n", out)
}

func fail(err error) {
	color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
