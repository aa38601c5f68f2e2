// Package device plays a graph context through the system audio device
// using oto.
package device
