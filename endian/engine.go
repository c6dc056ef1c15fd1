// Package endian provides byte order utilities for array serialization.
//
// Arrays are held in memory in little-endian order. Files written by other
// tools may declare big-endian element order in their headers, so decoders
// pick an engine from the declared order and convert on load.
//
// # Basic Usage
//
//	engine, err := endian.FromDescrByte('<')
//	v := engine.Uint32(buf)
//
// # Thread Safety
//
// All functions in this package are safe for concurrent use. The returned
// EndianEngine values are immutable and stateless.
package endian

import (
	"encoding/binary"
	"fmt"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. On a little-endian host the low byte (0x00) comes first.
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// FromDescrByte maps a numpy dtype byte-order character to an engine.
//
//   - '<': little-endian
//   - '>': big-endian
//   - '=': native order of the host
//   - '|': not applicable (single-byte types); little-endian is returned
func FromDescrByte(c byte) (EndianEngine, error) {
	switch c {
	case '<', '|':
		return binary.LittleEndian, nil
	case '>':
		return binary.BigEndian, nil
	case '=':
		if IsNativeLittleEndian() {
			return binary.LittleEndian, nil
		}

		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("unknown byte order character %q", c)
	}
}
