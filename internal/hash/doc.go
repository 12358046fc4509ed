// Package hash computes the CRC32-Castagnoli checksum shared by snapshot
// framing and S3 uploads.
//
// The standard crc32 package uses SSE4.2 or the ARM CRC extension when the
// CPU has them.
package hash
