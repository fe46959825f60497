package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/grimdork/climate/arg"
	"github.com/k0kubun/pp/v3"

	"github.com/Urethramancer/asm6502/assembler"
	"github.com/Urethramancer/asm6502/config"
	"github.com/Urethramancer/asm6502/disassembler"
	"github.com/Urethramancer/asm6502/elf"
	"github.com/Urethramancer/asm6502/linker"
)

func main() {
	opt := arg.New("asm65")
	opt.SetDefaultHelp(true)
	opt.SetOption(arg.GroupDefault, "o", "output", "Output file. Defaults to the source name with the format's extension.", "", false, arg.VarString, nil)
	opt.SetOption(arg.GroupDefault, "c", "config", "TOML build configuration.", "", false, arg.VarString, nil)
	opt.SetOption(arg.GroupDefault, "f", "format", "Output format.", "", false, arg.VarString, []any{config.FormatELF, config.FormatBin})
	opt.SetOption(arg.GroupDefault, "O", "origin", "Load address, e.g. $0600.", "", false, arg.VarString, nil)
	opt.SetOption(arg.GroupDefault, "l", "listing", "Print a listing of the linked code.", false, false, arg.VarBool, nil)
	opt.SetOption(arg.GroupDefault, "d", "dump", "Dump the symbol and relocation tables.", false, false, arg.VarBool, nil)
	opt.SetOption(arg.GroupDefault, "v", "verbose", "Report what was written.", false, false, arg.VarBool, nil)
	opt.SetPositional("SOURCE", "Assembly source file.", "", true, arg.VarString)

	err := opt.Parse(os.Args[1:])
	if err != nil {
		if err == arg.ErrNoArgs {
			opt.PrintHelp()
			return
		}
		fail(err)
	}

	cfg, err := loadConfig(opt)
	if err != nil {
		fail(err)
	}

	src := opt.GetPosString("SOURCE")
	data, err := os.ReadFile(src)
	if err != nil {
		fail(err)
	}

	p, err := assembler.Assemble(string(data))
	if err != nil {
		fail(fmt.Errorf("%s: %w", src, err))
	}
	if opt.GetBool("dump") {
		pp.Println(p.Symbols())
		pp.Println(p.Relocations())
	}

	origin := uint16(cfg.Origin)
	code, err := linker.Link(p, origin, cfg.ExternMap())
	if err != nil {
		fail(fmt.Errorf("%s: %w", src, err))
	}

	if opt.GetBool("listing") {
		symbols := make(map[string]uint16)
		for name, off := range p.Symbols() {
			symbols[name] = origin + off
		}
		text, err := disassembler.Disassemble(code, disassembler.Options{
			Origin:  origin,
			Symbols: symbols,
			Listing: true,
		})
		if err != nil {
			fail(err)
		}
		fmt.Print(text)
	}

	out := cfg.Output
	if out == "" {
		out = strings.TrimSuffix(src, filepath.Ext(src)) + "." + cfg.Format
	}
	err = elf.WriteFile(out, func(w io.Writer) error {
		if cfg.Format == config.FormatBin {
			_, err := w.Write(code)
			return err
		}
		return elf.WriteImage(w, uint32(origin), code)
	})
	if err != nil {
		fail(err)
	}

	if opt.GetBool("verbose") {
		fmt.Printf("Wrote %d bytes at $%04X to %s\n", len(code), origin, out)
	}
}

// loadConfig reads the configuration file, if any, and applies flag overrides.
func loadConfig(opt *arg.Options) (*config.Config, error) {
	cfg := config.Default()
	if path := opt.GetString("config"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	}

	if s := opt.GetString("output"); s != "" {
		cfg.Output = s
	}
	if s := opt.GetString("format"); s != "" {
		cfg.Format = s
	}
	if s := opt.GetString("origin"); s != "" {
		a, err := config.ParseAddress(s)
		if err != nil {
			return nil, err
		}
		cfg.Origin = a
	}
	return cfg, cfg.Validate()
}

func fail(err error) {
	color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
