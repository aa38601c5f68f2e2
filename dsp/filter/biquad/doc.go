// Package biquad provides the second-order IIR section used by the
// soundscape filters.
//
// A [Section] implements Direct Form II Transposed processing for
// [Coefficients]. Coefficients can be swapped between blocks while the
// filter runs; the delay state is kept so parameter sweeps stay click-free.
//
// Coefficient design (low-pass, band-pass) lives in dsp/filter/design.
package biquad
