package packets

import (
	"bytes"
	"errors"
	"testing"
)

func TestAppendVarInt(t *testing.T) {
	tests := []struct {
		name     string
		value    int
		expected []byte
	}{
		{"zero", 0, []byte{0x00}},
		{"127", 127, []byte{0x7F}},
		{"128", 128, []byte{0x80, 0x01}},
		{"16383", 16383, []byte{0xFF, 0x7F}},
		{"16384", 16384, []byte{0x80, 0x80, 0x01}},
		{"2097151", 2097151, []byte{0xFF, 0xFF, 0x7F}},
		{"2097152", 2097152, []byte{0x80, 0x80, 0x80, 0x01}},
		{"268435455", 268435455, []byte{0xFF, 0xFF, 0xFF, 0x7F}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := appendVarInt(nil, tt.value)
			if !bytes.Equal(result, tt.expected) {
				t.Errorf("appendVarInt(%d) = %v, want %v", tt.value, result, tt.expected)
			}
		})
	}
}

func TestAppendVarIntOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("appendVarInt(268435456) did not panic")
		}
	}()
	appendVarInt(nil, MaxRemainingLength+1)
}

func TestReadVarInt(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected int
		wantErr  error
	}{
		{"zero", []byte{0x00}, 0, nil},
		{"127", []byte{0x7F}, 127, nil},
		{"128", []byte{0x80, 0x01}, 128, nil},
		{"16383", []byte{0xFF, 0x7F}, 16383, nil},
		{"16384", []byte{0x80, 0x80, 0x01}, 16384, nil},
		{"2097151", []byte{0xFF, 0xFF, 0x7F}, 2097151, nil},
		{"2097152", []byte{0x80, 0x80, 0x80, 0x01}, 2097152, nil},
		{"268435455", []byte{0xFF, 0xFF, 0xFF, 0x7F}, 268435455, nil},
		{"too long", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x7F}, 0, ErrMalformedPacket},
		{"incomplete", []byte{0x80}, 0, ErrEndOfStream},
		{"empty", []byte{}, 0, ErrEndOfStream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewBuffer(tt.input).ReadVarInt()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ReadVarInt() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadVarInt() error = %v", err)
			}
			if result != tt.expected {
				t.Errorf("ReadVarInt() = %d, want %d", result, tt.expected)
			}
		})
	}
}
