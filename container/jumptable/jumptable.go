// Package jumptable implements the per-block offset table that follows
// the header in a compressed container: entry k is the absolute file
// offset of the end of the k-th encoded block (equivalently, the start
// of block k+1), enabling O(1) seek to any block without decoding the
// ones before it.
package jumptable

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/scalableminds/webknossos-wrap/bits"
	wblock "github.com/scalableminds/webknossos-wrap/block"
	"github.com/scalableminds/webknossos-wrap/wkwerrors"
)

// Len is the number of entries a full-container jump table holds, one
// per block.
const Len = wblock.Total

// Table holds the decoded jump-table entries, each an absolute file
// offset.
type Table []uint64

// Span returns the byte range [start, end) of block k's encoded payload
// within the file, given the data-segment base offset (table[-1] in the
// format's own notation).
func (t Table) Span(dataOffset uint64, k int) (start, end uint64) {
	if k == 0 {
		return dataOffset, t[0]
	}
	return t[k-1], t[k]
}

// Read decodes n little-endian u64 entries from r.
func Read(r io.Reader, n int) (Table, error) {
	buf := make([]byte, n*8)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, wkwerrors.Wrap(wkwerrors.ShortIO, err)
	}

	rd := bits.NewReader(bytes.NewReader(buf), binary.LittleEndian)
	table := make(Table, n)
	for i := range table {
		v, err := rd.ReadU64()
		if err != nil {
			return nil, wkwerrors.Wrap(wkwerrors.ShortIO, err)
		}
		table[i] = v
	}
	return table, nil
}

// Write encodes the table as n little-endian u64 entries to w.
func Write(w io.Writer, t Table) error {
	buf := make([]byte, len(t)*8)
	wr := bits.NewWriter(buf, binary.LittleEndian)
	for _, v := range t {
		wr.PutUint64(v)
	}
	_, err := w.Write(wr.Bytes())
	if err != nil {
		return wkwerrors.Wrap(wkwerrors.ShortIO, err)
	}
	return nil
}
