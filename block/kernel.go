package block

import (
	"fmt"

	"github.com/scalableminds/webknossos-wrap/morton"
	"github.com/scalableminds/webknossos-wrap/voxel"
)

// CopyBlock copies one B×B×B sub-block, anchored at the origin of each
// buffer, from src to dst. Both buffers are cubes in natural (X-fastest)
// order with side 2^srcSideLog2 and 2^dstSideLog2 respectively; src and
// dst may start at a block origin inside a larger cube, but must each
// extend at least to the far corner of the copied block. The kernel is symmetric: the
// caller decides direction by choosing which side is the B-side block
// buffer and which is the full cube — it is used both to pack
// (natural→block-local) and unpack (block-local→natural).
func CopyBlock[T voxel.Numeric](src []T, srcSideLog2 uint, dst []T, dstSideLog2 uint) {
	srcStride := 1 << srcSideLog2
	dstStride := 1 << dstSideLog2
	srcPlane := srcStride * srcStride
	dstPlane := dstStride * dstStride

	for z := 0; z < B; z++ {
		srcPlaneBase := z * srcPlane
		dstPlaneBase := z * dstPlane
		for y := 0; y < B; y++ {
			srcRow := srcPlaneBase + y*srcStride
			dstRow := dstPlaneBase + y*dstStride
			copy(dst[dstRow:dstRow+B], src[srcRow:srcRow+B])
		}
	}
}

// BlockPtr yields the voxel offset, within a cube buffer of side
// 2^sideLog2, of the origin of block blkIdx, where blkIdx is the
// Morton-encoded block-grid coordinate.
func BlockPtr(sideLog2 uint, blkIdx uint32) int {
	bx, by, bz := morton.Decode3(blkIdx)
	side := 1 << sideLog2
	return int(bx)*B + int(by)*B*side + int(bz)*B*side*side
}

// ToMortonOrder returns a copy of a B³-voxel block buffer currently in
// natural order, permuted into Morton-voxel order: the voxel at natural
// offset x + y·B + z·B² moves to linear offset morton.Encode3(x,y,z),
// i.e. element i of the result is the voxel whose natural-order
// coordinate has Morton code i.
func ToMortonOrder[T voxel.Numeric](natural []T) []T {
	if len(natural) != Voxels {
		panic(fmt.Sprintf("block: ToMortonOrder requires a %d-voxel buffer, got %d", Voxels, len(natural)))
	}
	out := make([]T, Voxels)
	for code := 0; code < Voxels; code++ {
		x, y, z := morton.Decode3(uint32(code))
		out[code] = natural[int(x)+int(y)*B+int(z)*B*B]
	}
	return out
}

// FromMortonOrder is the exact inverse of ToMortonOrder.
func FromMortonOrder[T voxel.Numeric](mortonOrder []T) []T {
	if len(mortonOrder) != Voxels {
		panic(fmt.Sprintf("block: FromMortonOrder requires a %d-voxel buffer, got %d", Voxels, len(mortonOrder)))
	}
	out := make([]T, Voxels)
	for code := 0; code < Voxels; code++ {
		x, y, z := morton.Decode3(uint32(code))
		out[int(x)+int(y)*B+int(z)*B*B] = mortonOrder[code]
	}
	return out
}
