// Package soundscape sonifies marine debris records.
//
// An [Engine] owns a persistent audio graph (master gain, shared low-pass
// filter, echo send/return) and, per selected record, one session: a drone
// ensemble of modulated oscillator voices plus a jittered stream of
// band-passed noise clicks whose rate follows the record's density.
// Listener controls (volume, filter openness, harmonic divergence) are
// applied as short parameter ramps.
//
// Typical use:
//
//	e, err := soundscape.New(soundscape.WithOutput(device.New()))
//	if err != nil {
//		return err
//	}
//	defer e.Close()
//
//	e.Initialize() // from a user action
//	e.PlayData(record)
//	e.SetDissonance(1.8)
//
// Engine methods never return errors: before Initialize they only record
// control values, and failures of the output device are logged and absorbed.
package soundscape
