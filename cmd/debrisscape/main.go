// Command debrisscape plays debris records from a GeoJSON file as a
// generative soundscape.
//
// Usage:
//
//	debrisscape [flags] records.geojson
//
// Keys: 1-9 select a record, space stops, +/- volume, [/] filter,
// </> divergence, q quits. With -addr the engine is also controllable
// over a websocket (see internal/control).
//
// Examples:
//
//	debrisscape testdata/pacific.geojson
//	debrisscape -addr :8080 -seed 42 testdata/pacific.geojson
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/cwbudde/algo-soundscape/debris"
	"github.com/cwbudde/algo-soundscape/device"
	"github.com/cwbudde/algo-soundscape/dsp/core"
	"github.com/cwbudde/algo-soundscape/internal/control"
	"github.com/cwbudde/algo-soundscape/soundscape"
)

func main() {
	addr := flag.String("addr", "", "serve the websocket control surface on this address")
	rate := flag.Float64("rate", 48000, "sample rate in Hz")
	block := flag.Int("block", 128, "render block size in frames")
	bufferSize := flag.Duration("buffer", 40*time.Millisecond, "device buffer length")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	quiet := flag.Bool("quiet", false, "suppress engine logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: debrisscape [flags] records.geojson\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	records, err := debris.LoadGeoJSONFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("load records: %v", err)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	engineLogger := logger
	if *quiet {
		engineLogger = log.New(io.Discard, "", 0)
	}

	engine, err := soundscape.New(
		soundscape.WithProcessorOptions(core.WithSampleRate(*rate), core.WithBlockSize(*block)),
		soundscape.WithSeed(*seed),
		soundscape.WithOutput(device.New(device.WithBufferSize(*bufferSize))),
		soundscape.WithLogger(engineLogger),
	)
	if err != nil {
		log.Fatalf("engine: %v", err)
	}
	defer engine.Close()

	engine.Initialize()

	if *addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/ws", control.NewHandler(engine, records, logger))
		go func() {
			logger.Printf("control surface on ws://%s/ws", *addr)
			if err := http.ListenAndServe(*addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Printf("control server: %v", err)
			}
		}()
	}

	printRecords(records)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	quit := make(chan struct{})
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		restore, err := readKeys(fd, engine, records, quit)
		if err != nil {
			logger.Printf("keyboard disabled: %v", err)
		} else {
			defer restore()
		}
	}

	select {
	case <-sig:
	case <-quit:
	}
	engine.StopAll()
}

func printRecords(records []debris.Datum) {
	for i, r := range records {
		if i >= 9 {
			fmt.Printf("(%d more records, websocket only)\n", len(records)-9)
			break
		}
		name := r.Name
		if name == "" {
			name = r.ID
		}
		fmt.Printf("%d  %-32s %-8s %8.1f/km2  %s\n", i+1, name, r.Severity, r.Density, r.Composition.Dominant())
	}
}
