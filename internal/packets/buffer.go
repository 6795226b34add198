package packets

import (
	"encoding/binary"
	"fmt"
)

// Buffer is an append-only byte buffer with a read cursor.
//
// Writes always append. Reads move the cursor forward and never remove data,
// so a failed read attempt can be undone with ResetTo. Bytes are only dropped
// by Commit (or Cut), which discards everything before a mark and makes the
// mark the new start of the buffer.
//
// A Buffer is not safe for concurrent use.
type Buffer struct {
	buf      []byte
	pos      int
	maxFrame int
}

// Mark is a cursor position saved with Buffer.Mark.
type Mark int

// shrinkThreshold is the capacity above which an emptied buffer releases its
// storage instead of keeping it for reuse.
const shrinkThreshold = 64 * 1024

// NewBuffer returns a Buffer whose unread content is data. The buffer takes
// ownership of data.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{buf: data}
}

// Len returns the total number of bytes held, read or not.
func (b *Buffer) Len() int {
	return len(b.buf)
}

// Position returns the cursor offset from the start of the buffer.
func (b *Buffer) Position() int {
	return b.pos
}

// Remaining returns the number of bytes after the cursor.
func (b *Buffer) Remaining() int {
	return len(b.buf) - b.pos
}

// Bytes returns the unread bytes. The slice aliases the buffer storage and is
// only valid until the next Write or Commit.
func (b *Buffer) Bytes() []byte {
	return b.buf[b.pos:]
}

// SetMaxFrame limits the remaining length a fixed header may announce.
// A value <= 0 or above MaxRemainingLength selects MaxRemainingLength.
func (b *Buffer) SetMaxFrame(n int) {
	b.maxFrame = n
}

// MaxFrame returns the effective remaining length limit.
func (b *Buffer) MaxFrame() int {
	if b.maxFrame <= 0 || b.maxFrame > MaxRemainingLength {
		return MaxRemainingLength
	}
	return b.maxFrame
}

// Write appends p to the buffer. It never fails.
func (b *Buffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// WriteByte appends c to the buffer. It never fails.
func (b *Buffer) WriteByte(c byte) error {
	b.buf = append(b.buf, c)
	return nil
}

// ReadByte returns the byte at the cursor and advances past it.
func (b *Buffer) ReadByte() (byte, error) {
	if b.pos >= len(b.buf) {
		return 0, ErrEndOfStream
	}
	c := b.buf[b.pos]
	b.pos++
	return c, nil
}

// Seek moves the cursor by delta bytes. Moving outside the buffer is a
// programming error and panics.
func (b *Buffer) Seek(delta int) {
	pos := b.pos + delta
	if pos < 0 || pos > len(b.buf) {
		panic(fmt.Sprintf("packets: seek to %d outside buffer of %d bytes", pos, len(b.buf)))
	}
	b.pos = pos
}

// Mark returns the current cursor position.
func (b *Buffer) Mark() Mark {
	return Mark(b.pos)
}

// ResetTo moves the cursor back (or forward) to m.
func (b *Buffer) ResetTo(m Mark) {
	b.Seek(int(m) - b.pos)
}

// Commit discards every byte before m. The cursor keeps pointing at the same
// byte, which is now at offset Position()-m. m must not be past the cursor.
func (b *Buffer) Commit(m Mark) {
	if m < 0 || int(m) > b.pos {
		panic(fmt.Sprintf("packets: commit at %d with cursor at %d", m, b.pos))
	}
	if m == 0 {
		return
	}
	n := copy(b.buf, b.buf[m:])
	b.buf = b.buf[:n]
	b.pos -= int(m)

	if n == 0 && cap(b.buf) > shrinkThreshold {
		b.buf = nil
	}
}

// Cut discards every byte before the cursor.
func (b *Buffer) Cut() {
	b.Commit(b.Mark())
}

// Reset empties the buffer.
func (b *Buffer) Reset() {
	b.buf = b.buf[:0]
	b.pos = 0
}

// ReadBytes returns the next n bytes and advances past them. The returned
// slice aliases the buffer storage; callers that keep it must copy it.
func (b *Buffer) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, malformed("negative length %d", n)
	}
	if b.Remaining() < n {
		return nil, ErrEndOfStream
	}
	data := b.buf[b.pos : b.pos+n : b.pos+n]
	b.pos += n
	return data, nil
}

// ReadUint16 reads a big-endian two byte integer.
func (b *Buffer) ReadUint16() (uint16, error) {
	data, err := b.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(data), nil
}

// ReadString reads an MQTT UTF-8 string (2-byte length + data).
func (b *Buffer) ReadString() (string, error) {
	data, err := b.readPrefixed()
	if err != nil {
		return "", err
	}
	s := string(data)
	if err := validateString(s); err != nil {
		return "", err
	}
	return s, nil
}

// ReadBinary reads length-prefixed binary data. The result is a copy.
func (b *Buffer) ReadBinary() ([]byte, error) {
	data, err := b.readPrefixed()
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (b *Buffer) readPrefixed() ([]byte, error) {
	length, err := b.ReadUint16()
	if err != nil {
		return nil, err
	}
	return b.ReadBytes(int(length))
}

// ReadVarInt reads a Variable Byte Integer (1-4 bytes).
func (b *Buffer) ReadVarInt() (int, error) {
	value := 0
	multiplier := 1
	for i := 0; i < 4; i++ {
		c, err := b.ReadByte()
		if err != nil {
			return 0, err
		}
		value += int(c&0x7F) * multiplier
		if c&0x80 == 0 {
			return value, nil
		}
		multiplier *= 128
	}
	return 0, malformed("variable byte integer exceeds 4 bytes")
}
