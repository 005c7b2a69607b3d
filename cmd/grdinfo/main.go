// Diagnostic tool for inspecting Petra GRD files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/derrickturk/go-petra-grid/grd"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: grdinfo <file.grd> [file.grd ...]\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	failed := false
	for _, path := range flag.Args() {
		g, err := grd.ReadGrid(path)
		if err != nil {
			failed = true
			var derr *grd.DecodeError
			if errors.As(err, &derr) {
				// The stage and offset are the starting point for
				// poking at unexplained format variants in a hex
				// editor.
				log.Error().
					Str("file", path).
					Str("stage", string(derr.Stage)).
					Int64("offset", derr.Offset).
					Msg(derr.Error())
			} else {
				log.Error().Str("file", path).Err(err).Msg("read failed")
			}
			continue
		}

		for _, d := range g.Diagnostics() {
			log.Warn().Str("file", path).Msg(d.String())
		}

		fmt.Printf("=== %s ===\n%s\n", path, g)
	}

	if failed {
		os.Exit(1)
	}
}
