package signal

import (
	"fmt"
	"math/rand"
)

// WhiteNoise fills dst with uniform white noise in [-amplitude, amplitude]
// drawn from rng.
func WhiteNoise(dst []float64, amplitude float64, rng *rand.Rand) error {
	if amplitude < 0 {
		return fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}
	if rng == nil {
		return fmt.Errorf("noise source must not be nil")
	}
	for i := range dst {
		dst[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return nil
}
