package packets

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf8"
)

// appendString appends a UTF-8 string with a 2-byte length prefix (MSB first).
// This is the standard MQTT string encoding format.
func appendString(dst []byte, s string) []byte {
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(s)))
	return append(dst, s...)
}

// appendBinary appends length-prefixed binary data to dst.
func appendBinary(dst []byte, data []byte) []byte {
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(data)))
	return append(dst, data...)
}

// validateString checks the content rules for MQTT UTF-8 strings.
func validateString(s string) error {
	if strings.Contains(s, "\x00") {
		return malformed("string contains null byte")
	}
	if !utf8.ValidString(s) {
		return malformed("invalid UTF-8 string")
	}
	return nil
}

// checkFieldLength rejects strings and binary fields that do not fit a
// 2-byte length prefix.
func checkFieldLength(field string, n int) error {
	if n > maxStringLength {
		return fmt.Errorf("%s length %d exceeds %d", field, n, maxStringLength)
	}
	return nil
}
