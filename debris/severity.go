package debris

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSeverity is returned by ParseSeverity for unrecognised tiers.
var ErrUnknownSeverity = errors.New("debris: unknown severity")

// Severity is the ordinal impact tier of a record.
type Severity int

const (
	Low Severity = iota
	Moderate
	High
	Critical
)

func (s Severity) String() string {
	switch s {
	case Low:
		return "LOW"
	case Moderate:
		return "MODERATE"
	case High:
		return "HIGH"
	case Critical:
		return "CRITICAL"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ParseSeverity parses a tier name case-insensitively.
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "LOW":
		return Low, nil
	case "MODERATE":
		return Moderate, nil
	case "HIGH":
		return High, nil
	case "CRITICAL":
		return Critical, nil
	default:
		return Low, fmt.Errorf("%w: %q", ErrUnknownSeverity, name)
	}
}
