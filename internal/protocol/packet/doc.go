// Package packet decodes and evaluates nested transmission packets.
//
// Wire layout, all fields big-endian:
// - header: 3-bit version, 3-bit type tag
// - type 4 (literal): 5-bit groups, leading bit set while more groups follow
// - any other type (operator): 1-bit length mode, then a 15-bit total
//   subpacket bit length or an 11-bit subpacket count, then the subpackets
//
// A decoded tree is immutable. Eval and VersionSum only read it and may
// run concurrently against the same tree.
package packet
