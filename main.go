// Command vip runs CHIP-8 programs.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	"github.com/nf/vip/chip8"
	"github.com/nf/vip/cosmac"
)

func main() {
	log.SetPrefix("vip: ")
	log.SetFlags(0)

	var (
		o = defaultOptions()

		configFlag = flag.String("config", "", "read settings from Starlark `file`")
		keysFlag   = flag.String("keys", "", "host `keys` for keypad keys 0 through F, as 16 characters")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
	)
	flag.BoolVar(&o.cli, "cli", false, "run without a display")
	flag.BoolVar(&o.gui, "gui", false, "show the display in a window instead of the terminal")
	flag.BoolVar(&o.dev, "dev", false, "enable developer mode (reload the program when the file changes)")
	flag.BoolVar(&o.trace, "trace", false, "log every instruction executed")
	flag.BoolVar(&o.dump, "dump", false, "print the final display on exit (with -cli)")
	flag.BoolVar(&o.wrap, "wrap", false, "wrap sprites around the display edges instead of clipping them")
	flag.IntVar(&o.clock, "clock", o.clock, "instructions per `second`")
	flag.IntVar(&o.cycles, "cycles", 0, "stop after `n` instructions (0 for no limit)")
	flag.IntVar(&o.scale, "scale", o.scale, "window pixels per display pixel (with -gui)")
	flag.DurationVar(&o.keyHold, "key_hold", o.keyHold, "how long a terminal key press holds a keypad key down")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-cli | -gui] [-dev] [-config file] [flags] <program.ch8>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}

	if *configFlag != "" {
		// Settings from the file apply first, and then any flags given
		// explicitly on the command line override them.
		fileOpts := o
		if err := loadConfig(&fileOpts, *configFlag, nil); err != nil {
			log.Fatal(err)
		}
		set := map[string]bool{}
		flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
		o = mergeOptions(fileOpts, o, set)
	}
	if *keysFlag != "" {
		k, err := cosmac.ParseKeymap(*keysFlag)
		if err != nil {
			log.Fatal(err)
		}
		o.keys = k
	}

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			log.Fatalf("creating CPU profile file: %v", err)
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	err := run(flag.Arg(0), o)

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		log.Fatal(err)
	}
}

// mergeOptions returns file with the settings named in set taken from flags.
func mergeOptions(file, flags options, set map[string]bool) options {
	o := file
	for name, use := range map[string]func(){
		"clock":    func() { o.clock = flags.clock },
		"wrap":     func() { o.wrap = flags.wrap },
		"scale":    func() { o.scale = flags.scale },
		"key_hold": func() { o.keyHold = flags.keyHold },
		"cycles":   func() { o.cycles = flags.cycles },
		"trace":    func() { o.trace = flags.trace },
		"dev":      func() { o.dev = flags.dev },
		"cli":      func() { o.cli = flags.cli },
		"gui":      func() { o.gui = flags.gui },
		"dump":     func() { o.dump = flags.dump },
	} {
		if set[name] {
			use()
		}
	}
	return o
}

func run(romFile string, o options) error {
	if o.cli && o.gui {
		return errors.New("-cli and -gui are mutually exclusive")
	}
	rom, err := os.ReadFile(romFile)
	if err != nil {
		return err
	}
	if limit := chip8.MemSize - chip8.ProgramStart; len(rom) > limit {
		log.Printf("%s is %d bytes; only the first %d are loaded", romFile, len(rom), limit)
	}

	m := chip8.NewMachine(rom)
	m.Wrap = o.wrap
	r := cosmac.NewRunner(m, cosmac.Config{
		Clock:  o.clock,
		Cycles: o.cycles,
		Trace:  o.trace,
		Dev:    o.dev,
	})

	title := filepath.Base(romFile)
	var fe cosmac.Frontend
	switch {
	case o.cli:
		fe = &cosmac.Headless{}
	case o.gui:
		fe = &cosmac.Window{Title: title, Keys: o.keys, Scale: o.scale}
	default:
		fe = &cosmac.Terminal{
			Title:   fmt.Sprintf("%s  %d Hz", title, o.clock),
			Keys:    o.keys,
			KeyHold: o.keyHold,
		}
	}

	if o.dev {
		stop, err := devWatch(romFile, r, 100*time.Millisecond)
		if err != nil {
			return err
		}
		defer stop()
	}

	err = r.Run(fe)
	if hl, ok := fe.(*cosmac.Headless); ok && o.dump {
		d, _ := hl.Last()
		fmt.Print(d.String())
	}
	return err
}
