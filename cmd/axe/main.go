// Command axe is the minimal entrypoint wiring configuration, logging
// and the scheduler loop (spec §6 EXTERNAL INTERFACES). The guest
// instruction decoder and the ELF/XE/SE image loaders are external
// collaborators (spec §1): this binary validates the flag surface and
// drives core.SystemState, but does not implement either.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jameshanlon/tool-axe/internal/axelog"
	"github.com/jameshanlon/tool-axe/internal/config"
	"github.com/jameshanlon/tool-axe/internal/core"
	"github.com/jameshanlon/tool-axe/internal/simerr"
	"github.com/jameshanlon/tool-axe/internal/stats"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("axe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	trace := fs.Bool("t", false, "enable per-instruction tracing")
	se := fs.Bool("s", false, "treat the image as an SE container rather than XE")
	sysStats := fs.Bool("S", false, "print system stats at the end of the run")
	instrStats := fs.Bool("I", false, "print per-instruction stats at the end of the run")
	configPath := fs.String("c", "", "configuration file")
	echoConfigPath := fs.String("C", "", "configuration file, also echoed to stdout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	_ = se // image-container flavour selection belongs to the external loader

	path := *configPath
	echo := false
	if *echoConfigPath != "" {
		path = *echoConfigPath
		echo = true
	}

	var cfg *config.Config
	if path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	} else {
		cfg = config.New()
	}
	if echo {
		cfg.Display(stdout)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(stderr, "usage: axe [-h] [-t] [-s] [-S] [-I] [-c configFile | -C configFile] <image>")
		return 1
	}
	image := fs.Arg(0)
	if _, err := os.Stat(image); err != nil {
		fmt.Fprintln(stderr, &simerr.ConfigError{Path: image, Cause: err})
		return 1
	}

	logger := axelog.New(stderr, *trace)
	sys := core.NewSystemState(cfg)
	sys.SetLogger(logger)
	sys.SetProtocolErrorHandler(func(err error) { axelog.Protocol(logger, 0, err) })

	var systemStats *stats.SystemStats
	if *sysStats || *instrStats {
		// peak clock rate: CyclesPerTick cycles per 100MHz tick.
		systemStats = stats.NewSystemStats(float64(cfg.CyclesPerTick) * 100e6)
	}

	node := core.NewNode(0)
	c := core.NewCore(uint32(1)<<cfg.RAMSizeLog, cfg.RAMBase)
	if systemStats != nil {
		c.Stats = systemStats.AddCore(0, core.NumThreads)
	}
	node.AddCore(c)
	sys.AddNode(node)

	// Loading image into c.Memory and wiring a core.Program per thread
	// is the external ELF/XE/SE loader and instruction decoder (spec
	// §1); absent one, the run drains immediately with no runnable
	// threads.

	start := time.Now()
	status, err := sys.Run()
	wall := time.Since(start).Seconds()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if systemStats != nil {
		if *sysStats {
			systemStats.WriteReport(stdout, wall, float64(cfg.CyclesPerTick))
		}
		if *instrStats {
			systemStats.WriteInstructionReport(stdout)
		}
	}

	return status
}
