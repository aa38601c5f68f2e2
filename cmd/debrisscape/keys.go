package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/cwbudde/algo-soundscape/debris"
	"github.com/cwbudde/algo-soundscape/dsp/core"
	"github.com/cwbudde/algo-soundscape/soundscape"
)

const (
	volumeStep     = 0.05
	filterStep     = 0.05
	divergenceStep = 0.1
)

// controller is the part of the engine the keyboard drives.
type controller interface {
	PlayData(debris.Datum)
	StopAll()
	SetVolume(float64)
	SetFilterFrequency(float64)
	SetDissonance(float64)
	Parameters() soundscape.EffectParameters
}

// handleKey applies one key press and reports whether it asks to quit.
func handleKey(c controller, records []debris.Datum, b byte) bool {
	p := c.Parameters()
	switch {
	case b == 'q' || b == 3: // ctrl-c in raw mode
		return true
	case b >= '1' && b <= '9':
		if i := int(b - '1'); i < len(records) {
			c.PlayData(records[i])
		}
	case b == ' ':
		c.StopAll()
	case b == '+' || b == '=':
		c.SetVolume(core.Clamp(p.Volume+volumeStep, 0, 1))
	case b == '-':
		c.SetVolume(core.Clamp(p.Volume-volumeStep, 0, 1))
	case b == ']':
		c.SetFilterFrequency(core.Clamp(p.FilterOpenness+filterStep, 0, 1))
	case b == '[':
		c.SetFilterFrequency(core.Clamp(p.FilterOpenness-filterStep, 0, 1))
	case b == '>' || b == '.':
		c.SetDissonance(core.Clamp(p.Dissonance+divergenceStep, 0.5, 2.5))
	case b == '<' || b == ',':
		c.SetDissonance(core.Clamp(p.Dissonance-divergenceStep, 0.5, 2.5))
	}
	return false
}

// readKeys puts the terminal in raw mode and feeds key presses to c until
// a quit key closes quit. The returned func restores the terminal.
func readKeys(fd int, c controller, records []debris.Datum, quit chan<- struct{}) (func(), error) {
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}

	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				close(quit)
				return
			}
			if n == 0 {
				continue
			}
			if handleKey(c, records, buf[0]) {
				close(quit)
				return
			}
			p := c.Parameters()
			fmt.Printf("\rvolume %.2f  cutoff %5.0f Hz  divergence %.1f   ",
				p.Volume, soundscape.FilterCutoff(p.FilterOpenness), p.Dissonance)
		}
	}()

	return func() { _ = term.Restore(fd, old) }, nil
}
