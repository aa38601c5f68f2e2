// Package debris defines the marine debris records the soundscape engine
// sonifies and loads them from GeoJSON point collections.
package debris
