// Package wkw implements the webknossos-wrap voxel container format: a
// single-file, Morton-indexed, optionally LZ4-compressed dense 3-D
// array store with O(1) random-access block reads. The four entry
// points below — Read, WriteRaw, Compress, GetHeader — mirror the
// reference implementation's core operations one-for-one; everything
// else in this module is a supporting component one of them dispatches
// into.
package wkw

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/scalableminds/webknossos-wrap/bits"
	"github.com/scalableminds/webknossos-wrap/block"
	wcodec "github.com/scalableminds/webknossos-wrap/codec/lz4"
	"github.com/scalableminds/webknossos-wrap/container/header"
	"github.com/scalableminds/webknossos-wrap/container/jumptable"
	"github.com/scalableminds/webknossos-wrap/morton"
	"github.com/scalableminds/webknossos-wrap/voxel"
	"github.com/scalableminds/webknossos-wrap/wkwerrors"
)

// validateCube checks the constraints every (x,y,z,C) tuple must
// satisfy: C is a power of two in [block.B, block.F], and each
// coordinate is a non-negative multiple of C not exceeding F.
func validateCube(x, y, z, c int) error {
	if c < block.B || c > block.F || !bits.IsPowerOfTwo(uint64(c)) {
		return wkwerrors.New(wkwerrors.BadCubeSize, "C=%d must be a power of two in [%d, %d]", c, block.B, block.F)
	}
	for _, v := range [3]int{x, y, z} {
		if v < 0 || v > block.F || v%c != 0 {
			return wkwerrors.New(wkwerrors.BadAlignment, "coordinate %d is not a multiple of C=%d within [0, %d]", v, c, block.F)
		}
	}
	return nil
}

// startBlockIndex computes the Morton block index of the block
// anchored at (x,y,z), which must already be block.B-aligned.
func startBlockIndex(x, y, z int) (uint32, error) {
	bx, by, bz := x/block.B, y/block.B, z/block.B
	idx := morton.Encode3(uint32(bx), uint32(by), uint32(bz))
	if idx >= block.Total {
		return 0, wkwerrors.New(wkwerrors.BadBlockIndex, "block index %d out of bounds (max %d)", idx, block.Total-1)
	}
	return idx, nil
}

func sideLog2(c int) uint {
	lg, _ := bits.Log2(uint64(c))
	return lg
}

// Read fills out with the C³ voxels of type T anchored at (x,y,z),
// dispatching to the raw or LZ4 block decoder according to the
// container's header.
func Read[T voxel.Numeric](path string, x, y, z, c int, out []T) error {
	if err := validateCube(x, y, z, c); err != nil {
		return err
	}
	if len(out) != c*c*c {
		return wkwerrors.New(wkwerrors.BadCubeSize, "out has %d elements, want %d", len(out), c*c*c)
	}

	f, err := os.Open(path)
	if err != nil {
		return wkwerrors.Wrap(wkwerrors.OpenFailed, err)
	}
	defer f.Close()

	h, err := header.Read(f)
	if err != nil {
		return err
	}
	if err := checkVoxelType[T](h); err != nil {
		return err
	}

	startBlk, err := startBlockIndex(x, y, z)
	if err != nil {
		return err
	}

	switch h.BlockType {
	case header.BlockRaw:
		return readRaw[T](f, h, startBlk, c, out)
	case header.BlockLZ4, header.BlockLZ4HC:
		return readLZ4[T](f, h, startBlk, c, out)
	default:
		return wkwerrors.New(wkwerrors.BadBlockType, "unreachable: header validated blockType %v", h.BlockType)
	}
}

func checkVoxelType[T voxel.Numeric](h header.Header) error {
	tag := voxel.TagOf[T]()
	if h.VoxelType != tag {
		return wkwerrors.New(wkwerrors.VoxelMismatch, "container voxel type is %v, caller asked for %v", h.VoxelType, tag)
	}
	if h.VoxelSize != tag.Size() {
		return wkwerrors.New(wkwerrors.VoxelMismatch, "container voxel size is %d, want %d", h.VoxelSize, tag.Size())
	}
	return nil
}

func blocksPerSide(c int) int {
	return c / block.B
}

func readRaw[T voxel.Numeric](f io.ReaderAt, h header.Header, startBlk uint32, c int, out []T) error {
	n := blocksPerSide(c)
	numBlocks := n * n * n
	scratch := make([]T, block.Voxels)
	blockBytes := int64(block.Voxels) * int64(voxel.TagOf[T]().Size())

	for k := 0; k < numBlocks; k++ {
		off := int64(h.DataOffset) + (int64(startBlk)+int64(k))*blockBytes
		if err := readFullAt(f, voxel.AsBytes(scratch), off); err != nil {
			return wkwerrors.Wrap(wkwerrors.ShortIO, err)
		}
		natural := block.FromMortonOrder(scratch)
		dstOff := block.BlockPtr(sideLog2(c), uint32(k))
		block.CopyBlock(natural, block.Bb, out[dstOff:], sideLog2(c))
	}
	return nil
}

func readLZ4[T voxel.Numeric](f io.ReaderAt, h header.Header, startBlk uint32, c int, out []T) error {
	n := blocksPerSide(c)
	numBlocks := n * n * n

	// table entries [startBlk-1 .. startBlk+numBlocks), where entry
	// startBlk-1 is read from the slot just before the header's own
	// table base: that slot holds dataOffset when startBlk==0.
	tableOff := int64(header.Size) - 8 + int64(startBlk)*8
	tableBuf := make([]byte, (numBlocks+1)*8)
	if err := readFullAt(f, tableBuf, tableOff); err != nil {
		return wkwerrors.Wrap(wkwerrors.ShortIO, err)
	}
	table, err := jumptable.Read(bytes.NewReader(tableBuf), numBlocks+1)
	if err != nil {
		return err
	}

	scratch := make([]T, block.Voxels)

	for k := 0; k < numBlocks; k++ {
		start, end := table[k], table[k+1]
		if end < start {
			return wkwerrors.New(wkwerrors.CodecFailure, "jump table entry %d is decreasing (%d -> %d)", k, start, end)
		}
		encoded := make([]byte, end-start)
		if err := readFullAt(f, encoded, int64(start)); err != nil {
			return wkwerrors.Wrap(wkwerrors.ShortIO, err)
		}

		decoded := voxel.AsBytes(scratch)
		if _, err := wcodec.DecompressSafe(encoded, decoded); err != nil {
			return err
		}

		natural := block.FromMortonOrder(scratch)
		dstOff := block.BlockPtr(sideLog2(c), uint32(k))
		block.CopyBlock(natural, block.Bb, out[dstOff:], sideLog2(c))
	}
	return nil
}

// WriteRaw writes the C³ voxels of in to the container at path, at
// offset (x,y,z), creating a fresh raw container if none exists.
func WriteRaw[T voxel.Numeric](path string, x, y, z, c int, in []T) error {
	if err := validateCube(x, y, z, c); err != nil {
		return err
	}
	if len(in) != c*c*c {
		return wkwerrors.New(wkwerrors.BadCubeSize, "in has %d elements, want %d", len(in), c*c*c)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o664)
	if err != nil {
		return wkwerrors.Wrap(wkwerrors.OpenFailed, err)
	}
	defer f.Close()

	h, err := openOrInitRawHeader[T](f)
	if err != nil {
		return err
	}

	startBlk, err := startBlockIndex(x, y, z)
	if err != nil {
		return err
	}

	n := blocksPerSide(c)
	numBlocks := n * n * n
	blockBytes := int64(block.Voxels) * int64(voxel.TagOf[T]().Size())

	for k := 0; k < numBlocks; k++ {
		srcOff := block.BlockPtr(sideLog2(c), uint32(k))
		scratch := make([]T, block.Voxels)
		block.CopyBlock(in[srcOff:], sideLog2(c), scratch, block.Bb)
		mortonOrder := block.ToMortonOrder(scratch)

		off := int64(h.DataOffset) + (int64(startBlk)+int64(k))*blockBytes
		if _, err := f.WriteAt(voxel.AsBytes(mortonOrder), off); err != nil {
			return wkwerrors.Wrap(wkwerrors.ShortIO, err)
		}
	}
	return nil
}

// openOrInitRawHeader reads and validates f's existing header,
// requiring it describe a raw container of voxel type T; if f is empty
// (freshly created), it writes a new raw header for T and truncates f
// to its full sparse capacity.
func openOrInitRawHeader[T voxel.Numeric](f *os.File) (header.Header, error) {
	info, err := f.Stat()
	if err != nil {
		return header.Header{}, wkwerrors.Wrap(wkwerrors.OpenFailed, err)
	}

	if info.Size() > 0 {
		h, err := header.Read(f)
		if err != nil {
			return header.Header{}, err
		}
		if h.BlockType != header.BlockRaw {
			return header.Header{}, wkwerrors.New(wkwerrors.BadBlockType, "container is not raw (blockType=%v)", h.BlockType)
		}
		if err := checkVoxelType[T](h); err != nil {
			return header.Header{}, err
		}
		return h, nil
	}

	h := header.New(header.BlockRaw, voxel.TagOf[T]())
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return header.Header{}, wkwerrors.Wrap(wkwerrors.ShortIO, err)
	}
	if err := header.Write(f, h); err != nil {
		return header.Header{}, err
	}
	totalSize := int64(h.DataOffset) + int64(block.F)*int64(block.F)*int64(block.F)*int64(h.VoxelSize)
	if err := f.Truncate(totalSize); err != nil {
		return header.Header{}, wkwerrors.Wrap(wkwerrors.ShortIO, err)
	}
	return h, nil
}

// Compress reads the raw container at srcPath and writes an
// LZ4-HC-encoded equivalent at dstPath, including a fresh jump table.
func Compress(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return wkwerrors.Wrap(wkwerrors.OpenFailed, err)
	}
	defer src.Close()

	srcHeader, err := header.Read(src)
	if err != nil {
		return err
	}
	if srcHeader.BlockType != header.BlockRaw {
		return wkwerrors.New(wkwerrors.BadBlockType, "source is not raw (blockType=%v)", srcHeader.BlockType)
	}

	dst, err := os.OpenFile(dstPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o664)
	if err != nil {
		return wkwerrors.Wrap(wkwerrors.OpenFailed, err)
	}
	defer dst.Close()

	dstDataOffset := uint64(header.Size) + uint64(block.Total)*8
	if _, err := dst.Seek(int64(dstDataOffset), io.SeekStart); err != nil {
		return wkwerrors.Wrap(wkwerrors.ShortIO, err)
	}

	rawBuf := make([]byte, int(block.Voxels)*int(srcHeader.VoxelSize))
	encBuf := make([]byte, wcodec.CompressBound(len(rawBuf)))
	table := make(jumptable.Table, block.Total)

	if _, err := src.Seek(int64(srcHeader.DataOffset), io.SeekStart); err != nil {
		return wkwerrors.Wrap(wkwerrors.ShortIO, err)
	}

	jumpEntry := dstDataOffset
	for k := 0; k < block.Total; k++ {
		if _, err := io.ReadFull(src, rawBuf); err != nil {
			return wkwerrors.Wrap(wkwerrors.ShortIO, err)
		}

		n, err := wcodec.CompressHC(rawBuf, encBuf)
		if err != nil {
			return err
		}
		if _, err := dst.Write(encBuf[:n]); err != nil {
			return wkwerrors.Wrap(wkwerrors.ShortIO, err)
		}

		jumpEntry += uint64(n)
		table[k] = jumpEntry
	}

	dstHeader := srcHeader
	dstHeader.BlockType = header.BlockLZ4HC
	dstHeader.DataOffset = dstDataOffset

	if _, err := dst.Seek(0, io.SeekStart); err != nil {
		return wkwerrors.Wrap(wkwerrors.ShortIO, err)
	}
	if err := header.Write(dst, dstHeader); err != nil {
		return err
	}
	if err := jumptable.Write(dst, table); err != nil {
		return err
	}
	return nil
}

// GetHeader opens path read-only and returns its decoded, validated
// header without reading any block data.
func GetHeader(path string) (header.Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return header.Header{}, wkwerrors.Wrap(wkwerrors.OpenFailed, err)
	}
	defer f.Close()

	return header.Read(f)
}

func readFullAt(r io.ReaderAt, buf []byte, off int64) error {
	n, err := r.ReadAt(buf, off)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return fmt.Errorf("short read at offset %d: got %d bytes, want %d", off, n, len(buf))
	}
	return nil
}
