package bits

import (
	"encoding/binary"
	"errors"
	"io"
)

var ErrReadMismatch = errors.New("bits: read size mismatch")

const maxReaderBufferSize = 8

// Reader is a small endian-aware binary reader over an io.Reader, used to
// decode the fixed-size header and the jump table. It deliberately reads
// one field at a time rather than buffering the whole stream: the header
// and jump-table codecs own their I/O sizing, not this reader.
type Reader struct {
	readBuffer [maxReaderBufferSize]byte

	buf   io.Reader
	order binary.ByteOrder
}

func NewReader(buf io.Reader, order binary.ByteOrder) *Reader {
	return &Reader{buf: buf, order: order}
}

func (r *Reader) readNextBytesIntoReadBuffer(size int) error {
	readBytes, err := io.ReadFull(r.buf, r.readBuffer[:size])
	if err != nil {
		return err
	}

	if readBytes != size {
		return ErrReadMismatch
	}

	return nil
}

func (r *Reader) ReadU8() (uint8, error) {
	err := r.readNextBytesIntoReadBuffer(1)
	if err != nil {
		return 0, err
	}

	return r.readBuffer[0], nil
}

func (r *Reader) MustReadU8() uint8 {
	u, err := r.ReadU8()
	if err != nil {
		panic(err)
	}
	return u
}

func (r *Reader) ReadU64() (uint64, error) {
	err := r.readNextBytesIntoReadBuffer(8)
	if err != nil {
		return 0, err
	}

	return r.order.Uint64(r.readBuffer[:8]), nil
}

func (r *Reader) MustReadU64() uint64 {
	u, err := r.ReadU64()
	if err != nil {
		panic(err)
	}
	return u
}

// ReadBytes fills out completely or returns an error; unlike a bare
// io.Reader.Read it never returns a short read.
func (r *Reader) ReadBytes(out []byte) error {
	n, err := io.ReadFull(r.buf, out)
	if err != nil {
		return err
	}
	if n != len(out) {
		return ErrReadMismatch
	}
	return nil
}
