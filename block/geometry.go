// Package block implements the strided copy kernel that moves one
// Morton-order block between a serialized block buffer and a caller's
// logical cube, plus the block-addressing arithmetic both the read and
// write pipelines share.
package block

// B is the fixed block side length, in voxels: the unit of serialization
// and compression. F is the container side length a single file spans.
// Both are powers of two; Bb and Fb are their base-2 logarithms, and Fl
// is the container side length expressed in blocks (log2).
const (
	B  = 32
	F  = 1024
	Bb = 5
	Fb = 10
	Fl = Fb - Bb
)

// Count is the number of blocks along one axis of a full container,
// F/B.
const Count = 1 << Fl

// Voxels is the number of voxels in one block, B³.
const Voxels = B * B * B

// Total is the number of blocks in a full container, (F/B)³.
const Total = Count * Count * Count
