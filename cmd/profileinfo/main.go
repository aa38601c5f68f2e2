// Command profileinfo prints the synthesis profile table and the collision
// timing the engine derives from record densities.
//
// Usage:
//
//	profileinfo [flags] [density ...]
//
// Examples:
//
//	profileinfo
//	profileinfo 0 15 250 1000 1250
//	profileinfo -latitude 40 -profiles=false 500
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/cwbudde/algo-soundscape/debris"
	"github.com/cwbudde/algo-soundscape/soundscape"
)

var defaultDensities = []float64{0, 15, 100, 250, 500, 1000, 1250}

func main() {
	latitude := flag.Float64("latitude", 32, "record latitude used for voice frequencies")
	profiles := flag.Bool("profiles", true, "print the severity profile table")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: profileinfo [flags] [density ...]\n\n")
		fmt.Fprintf(os.Stderr, "Prints synthesis profiles and collision timing per density.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	densities, err := parseDensities(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *profiles {
		printProfiles(*latitude)
		fmt.Println()
	}
	printCollisions(densities)
}

func parseDensities(args []string) ([]float64, error) {
	if len(args) == 0 {
		return defaultDensities, nil
	}
	out := make([]float64, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid density %q", a)
		}
		out = append(out, v)
	}
	return out, nil
}

func printProfiles(latitude float64) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Tier\tVoices\tWaveform\tDissonance\tMod [Hz]\tDepth [Hz]\tRoot [Hz]\tGain/voice\n"); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output header: %v\n", err)
		return
	}
	if _, err := fmt.Fprintf(tw, "----\t------\t--------\t----------\t--------\t----------\t---------\t----------\n"); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output header: %v\n", err)
		return
	}

	for _, sev := range []debris.Severity{debris.Low, debris.Moderate, debris.High, debris.Critical} {
		p := soundscape.ProfileFor(sev)
		if _, err := fmt.Fprintf(tw, "%s\t%d\t%s\t%.3f\t%.2f\t%.0f\t%.1f\t%.4f\n",
			sev,
			p.Voices,
			p.Waveform,
			p.InherentDissonance,
			p.ModulationSpeed,
			soundscape.ModulationDepth(sev),
			soundscape.BaseFrequency(latitude),
			p.VoiceGain(),
		); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output row: %v\n", err)
			return
		}
	}
	if err := tw.Flush(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

func printCollisions(densities []float64) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Density\tIntensity\tRate [Hz]\tInterval [ms]\tJitter range [ms]\tClick centre [Hz]\tClick Q\n"); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output header: %v\n", err)
		return
	}
	if _, err := fmt.Fprintf(tw, "-------\t---------\t---------\t-------------\t-----------------\t-----------------\t-------\n"); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output header: %v\n", err)
		return
	}

	for _, d := range densities {
		x := soundscape.CollisionIntensity(d)
		ms := float64(soundscape.CollisionBaseInterval(d).Microseconds()) / 1000
		lo, hi := soundscape.ClickBand(x)
		if _, err := fmt.Fprintf(tw, "%.1f\t%.3f\t%.3f\t%.1f\t%.1f-%.1f\t%.0f-%.0f\t%.1f\n",
			d,
			x,
			soundscape.CollisionRate(d),
			ms,
			0.5*ms, 1.5*ms,
			lo, hi,
			soundscape.ClickQ(x),
		); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output row: %v\n", err)
			return
		}
	}
	if err := tw.Flush(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}
