package packets

import (
	"fmt"
)

// appendVarInt appends the Variable Byte Integer encoding of value to dst.
// This is used for the Remaining Length field in the Fixed Header.
// Algorithm from MQTT v3.1.1 spec section 2.2.3
func appendVarInt(dst []byte, value int) []byte {
	if value < 0 || value > MaxRemainingLength { // Max value: 0xFF, 0xFF, 0xFF, 0x7F
		panic(fmt.Sprintf("value %d out of range for variable byte integer", value))
	}

	for {
		digit := byte(value % 128)
		value /= 128
		if value > 0 {
			digit |= 0x80
		}
		dst = append(dst, digit)
		if value == 0 {
			break
		}
	}
	return dst
}
