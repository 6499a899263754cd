// Package header implements the fixed-size, packed file header every
// container begins with: magic, version, packed geometry nibble, block
// and voxel type tags, voxel size, and the data segment's offset.
package header

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/scalableminds/webknossos-wrap/bits"
	wblock "github.com/scalableminds/webknossos-wrap/block"
	"github.com/scalableminds/webknossos-wrap/voxel"
	"github.com/scalableminds/webknossos-wrap/wkwerrors"
)

// Magic is the literal 3-byte tag every container's header must carry.
var Magic = [3]byte{'W', 'K', 'W'}

// Version is the only header version this package understands.
const Version uint8 = 1

// BlockType is the on-disk block encoding tag.
type BlockType uint8

const (
	BlockInvalid BlockType = iota
	BlockRaw
	BlockLZ4
	BlockLZ4HC
	BlockUnknown
)

func (t BlockType) Valid() bool {
	return t > BlockInvalid && t < BlockUnknown
}

// Size is the on-disk byte size of the packed header: 3 (magic) + 1
// (version) + 1 (lensLog2) + 1 (blockType) + 1 (voxelType) + 1
// (voxelSize) + 8 (dataOffset).
const Size = 3 + 1 + 1 + 1 + 1 + 1 + 8

// Header is the decoded, validated form of the on-disk header.
type Header struct {
	BlockType  BlockType
	VoxelType  voxel.Type
	VoxelSize  uint8
	DataOffset uint64

	// NumChannels and IsMultiChannel are derived, not part of the wire
	// format: a container is single-channel by definition in this
	// format (the byte-level layout carries no channel dimension), so
	// NumChannels is always 1 and IsMultiChannel always false. They
	// exist so callers migrating from multi-channel-aware datasets
	// have a stable field to read instead of special-casing this type.
	NumChannels    int
	IsMultiChannel bool
}

// New builds a Header for a fresh container of the given voxel type,
// with the data segment placed immediately after the header.
func New(blockType BlockType, voxelType voxel.Type) Header {
	return Header{
		BlockType:   blockType,
		VoxelType:   voxelType,
		VoxelSize:   voxelType.Size(),
		DataOffset:  uint64(Size),
		NumChannels: 1,
	}
}

// Read decodes and validates a header from r. Distinct error kinds are
// returned for a short read, a magic mismatch, an unsupported version,
// an invalid voxel or block type, unsupported geometry, and an invalid
// data offset.
func Read(r io.Reader) (Header, error) {
	buf := make([]byte, Size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Header{}, wkwerrors.Wrap(wkwerrors.ShortIO, err)
	}

	rd := bits.NewReader(bytes.NewReader(buf), binary.LittleEndian)

	var magic [3]byte
	if err := rd.ReadBytes(magic[:]); err != nil {
		return Header{}, wkwerrors.Wrap(wkwerrors.ShortIO, err)
	}
	if magic != Magic {
		return Header{}, wkwerrors.New(wkwerrors.BadMagic, "got %q, want %q", magic, Magic)
	}

	version, err := rd.ReadU8()
	if err != nil {
		return Header{}, wkwerrors.Wrap(wkwerrors.ShortIO, err)
	}
	if version != Version {
		return Header{}, wkwerrors.New(wkwerrors.BadVersion, "got %d, want %d", version, Version)
	}

	lensLog2, err := rd.ReadU8()
	if err != nil {
		return Header{}, wkwerrors.Wrap(wkwerrors.ShortIO, err)
	}
	if bits.HighNibble(lensLog2) != wblock.Fl || bits.LowNibble(lensLog2) != wblock.Bb {
		return Header{}, wkwerrors.New(wkwerrors.BadGeometry, "lensLog2 %#x does not encode Fl=%d, Bb=%d", lensLog2, wblock.Fl, wblock.Bb)
	}

	blockTypeByte, err := rd.ReadU8()
	if err != nil {
		return Header{}, wkwerrors.Wrap(wkwerrors.ShortIO, err)
	}
	blockType := BlockType(blockTypeByte)
	if !blockType.Valid() {
		return Header{}, wkwerrors.New(wkwerrors.BadBlockType, "tag %d", blockTypeByte)
	}

	voxelTypeByte, err := rd.ReadU8()
	if err != nil {
		return Header{}, wkwerrors.Wrap(wkwerrors.ShortIO, err)
	}
	voxelType := voxel.Type(voxelTypeByte)
	if !voxelType.Valid() {
		return Header{}, wkwerrors.New(wkwerrors.BadVoxelType, "tag %d", voxelTypeByte)
	}

	voxelSize, err := rd.ReadU8()
	if err != nil {
		return Header{}, wkwerrors.Wrap(wkwerrors.ShortIO, err)
	}
	if voxelSize != voxelType.Size() {
		return Header{}, wkwerrors.New(wkwerrors.BadVoxelType, "voxelSize %d disagrees with type %v (%d)", voxelSize, voxelType, voxelType.Size())
	}

	dataOffset, err := rd.ReadU64()
	if err != nil {
		return Header{}, wkwerrors.Wrap(wkwerrors.ShortIO, err)
	}
	if dataOffset < uint64(Size) {
		return Header{}, wkwerrors.New(wkwerrors.BadDataOffset, "dataOffset %d < header size %d", dataOffset, Size)
	}

	return Header{
		BlockType:      blockType,
		VoxelType:      voxelType,
		VoxelSize:      voxelSize,
		DataOffset:     dataOffset,
		NumChannels:    1,
		IsMultiChannel: false,
	}, nil
}

// Write serializes h at the writer's current position, then flushes if
// w supports it.
func Write(w io.Writer, h Header) error {
	buf := make([]byte, Size)
	wr := bits.NewWriter(buf, binary.LittleEndian)

	if _, err := wr.Write(Magic[:]); err != nil {
		return wkwerrors.Wrap(wkwerrors.ShortIO, err)
	}
	wr.PutUint8(Version)
	wr.PutUint8(bits.PackNibbles(wblock.Fl, wblock.Bb))
	wr.PutUint8(uint8(h.BlockType))
	wr.PutUint8(uint8(h.VoxelType))
	wr.PutUint8(h.VoxelType.Size())
	wr.PutUint64(h.DataOffset)

	if _, err := w.Write(wr.Bytes()); err != nil {
		return wkwerrors.Wrap(wkwerrors.ShortIO, err)
	}
	if f, ok := w.(interface{ Sync() error }); ok {
		return f.Sync()
	}
	return nil
}
