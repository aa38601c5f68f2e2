// Package design provides the RBJ biquad coefficient designers used by the
// soundscape graph: a resonant low-pass for the shared spectral filter and a
// constant-peak band-pass for transient noise bursts.
package design
