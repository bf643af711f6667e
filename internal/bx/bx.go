// Package bx holds small little-endian byte helpers shared by the heap and
// btree packages' on-disk headers. Kept separate from encoding/binary for the
// hot-path fixed-width codecs, where a direct slice index beats the
// reflection-driven binary.Read/Write path.
package bx

import "encoding/binary"

var LE = binary.LittleEndian

func U16(b []byte) uint16 { return LE.Uint16(b) }
func U32(b []byte) uint32 { return LE.Uint32(b) }
func U64(b []byte) uint64 { return LE.Uint64(b) }
func I32(b []byte) int32  { return int32(U32(b)) }

func PutU16(b []byte, v uint16) { LE.PutUint16(b, v) }
func PutU32(b []byte, v uint32) { LE.PutUint32(b, v) }
func PutU64(b []byte, v uint64) { LE.PutUint64(b, v) }
func PutI32(b []byte, v int32)  { LE.PutUint32(b, uint32(v)) }
