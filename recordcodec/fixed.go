package recordcodec

import (
	"encoding/binary"
	"math"
)

func appendFixed64(dst []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(dst, buf[:]...)
}

func appendFixed32(dst []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(dst, buf[:]...)
}

func float64ToBits(f float64) uint64 { return math.Float64bits(f) }
func bitsToFloat64(u uint64) float64 { return math.Float64frombits(u) }

func float32ToBits(f float32) uint32 { return math.Float32bits(f) }
func bitsToFloat32(u uint32) float32 { return math.Float32frombits(u) }
