// Package lz4 wraps the block-level (not streaming) LZ4 codec the
// compress pipeline and the LZ4 read path need: each block is
// compressed independently and in full, so its encoded length can be
// recorded in the jump table and decoded again with a single bounded
// call. This mirrors the reference implementation's compress_bound /
// compress_hc / decompress_safe primitives rather than the teacher's
// streaming lz4.NewWriter usage, which has no notion of a single
// bounded block.
package lz4

import (
	"github.com/pierrec/lz4/v4"

	"github.com/scalableminds/webknossos-wrap/wkwerrors"
)

// CompressBound returns the maximum number of bytes CompressHC could
// possibly produce for a block of srcSize raw bytes, sized so the
// caller can allocate its destination buffer once, up front.
func CompressBound(srcSize int) int {
	return lz4.CompressBlockBound(srcSize)
}

// CompressHC encodes src into dst using LZ4-HC (high compression) and
// returns the number of bytes written. dst must be at least
// CompressBound(len(src)) bytes. A CodecFailure is returned if the
// encoder reports an error or produces an incompressible result larger
// than dst (the v1 format never falls back to storing blocks raw within
// the LZ4 path; that tradeoff is made once, at the block-type level).
func CompressHC(src, dst []byte) (int, error) {
	var c lz4.CompressorHC
	n, err := c.CompressBlock(src, dst)
	if err != nil {
		return 0, wkwerrors.Wrap(wkwerrors.CodecFailure, err)
	}
	if n == 0 && len(src) > 0 {
		return 0, wkwerrors.New(wkwerrors.CodecFailure, "block did not compress (incompressible or destination too small)")
	}
	return n, nil
}

// DecompressSafe decodes an LZ4 (or LZ4-HC, decoding is identical)
// block from src into dst, which must be exactly the known decoded
// size. Returns the number of bytes written, which is always
// len(dst) on success.
func DecompressSafe(src, dst []byte) (int, error) {
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return 0, wkwerrors.Wrap(wkwerrors.CodecFailure, err)
	}
	if n != len(dst) {
		return n, wkwerrors.New(wkwerrors.CodecFailure, "decoded %d bytes, want %d", n, len(dst))
	}
	return n, nil
}
