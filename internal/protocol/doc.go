// Package protocol groups the transmission wire format.
//
// Ownership boundary:
// - bits: hex expansion and fixed-width bit fields
// - packet: packet tree decode, encode and evaluation
package protocol
