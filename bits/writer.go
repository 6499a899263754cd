package bits

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Writer is a small endian-aware positional binary writer over a caller-
// supplied byte slice. Header encoding uses it against a fixed 16-byte
// buffer (growing disabled, so an out-of-bounds write is a programming
// error and panics loudly); jump-table encoding likewise sizes its buffer
// to the table up front. EnableGrowing lets the buffer grow on demand
// instead.
type Writer struct {
	pos   int
	data  []byte
	size  int
	order binary.ByteOrder

	growingEnabled bool
}

func NewWriter(buf []byte, order binary.ByteOrder) Writer {
	return Writer{
		data:  buf,
		pos:   0,
		size:  len(buf),
		order: order,
	}
}

func (w *Writer) EnableGrowing() {
	w.growingEnabled = true
}

func (w Writer) Position() int {
	return w.pos
}

func (w *Writer) grow(atLeast int) {
	newSize := w.size * 2
	if atLeast > newSize {
		newSize += atLeast
	}

	newBuf := make([]byte, newSize)
	copy(newBuf, w.data[:w.pos])
	w.data = newBuf
	w.size = newSize
}

func (w *Writer) tryGrow(n int) {
	if (w.pos + n) > w.size {
		if w.growingEnabled {
			w.grow(n)
		} else {
			panic(fmt.Sprintf("bits: writer overflow at pos %d, tried to write %d more bytes into a buffer of size %d", w.pos, n, w.size))
		}
	}
}

func (w *Writer) Write(p []byte) (n int, err error) {
	want := len(p)
	w.tryGrow(want)

	n = copy(w.data[w.pos:], p)
	if n != want {
		return n, errors.New("bits: short write")
	}

	w.pos += n
	return n, nil
}

func (w *Writer) Bytes() []byte {
	return w.data[:w.pos]
}

func (w *Writer) PutUint8(v uint8) {
	w.tryGrow(1)
	w.data[w.pos] = v
	w.pos++
}

func (w *Writer) PutUint64(v uint64) {
	w.tryGrow(8)
	w.order.PutUint64(w.data[w.pos:], v)
	w.pos += 8
}
