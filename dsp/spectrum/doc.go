// Package spectrum provides a running FFT analyser for display readback.
//
// An [Analyser] is fed from the render path one block at a time and keeps a
// smoothed magnitude spectrum in dBFS that a UI can sample at arbitrary
// frequencies with [Analyser.CurveDB].
package spectrum
