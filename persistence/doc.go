// Package persistence frames generator snapshots.
//
// A snapshot is a fixed header, the name of the codec that encoded the
// payload, and the (optionally compressed) payload:
//
//	offset size field
//	0      4    magic "NNJ1"
//	4      2    format version
//	6      1    compression type
//	7      1    codec name length
//	8      8    uncompressed payload size
//	16     8    stored payload size
//	24     4    CRC32C of the uncompressed payload
//	28     n    codec name
//	28+n   ...  payload
//
// All integers are little-endian.
package persistence
