package block

import "testing"

func TestCopyBlockSameSide(t *testing.T) {
	side := 1 << Bb
	src := make([]uint8, side*side*side)
	for i := range src {
		src[i] = uint8(i)
	}
	dst := make([]uint8, side*side*side)

	CopyBlock(src, Bb, dst, Bb)

	for i := range src {
		if dst[i] != src[i] {
			t.Fatalf("dst[%d] = %d, want %d", i, dst[i], src[i])
		}
	}
}

func TestCopyBlockIntoLargerCube(t *testing.T) {
	cubeSideLog2 := uint(Bb + 1) // side 64, holds 8 blocks
	cubeSide := 1 << cubeSideLog2

	block := make([]uint16, Voxels)
	for i := range block {
		block[i] = uint16(i + 1)
	}

	cube := make([]uint16, cubeSide*cubeSide*cubeSide)
	CopyBlock(block, Bb, cube, cubeSideLog2)

	// spot-check: row 0 of the block landed at the origin of the cube.
	for x := 0; x < B; x++ {
		if cube[x] != block[x] {
			t.Fatalf("cube[%d] = %d, want %d", x, cube[x], block[x])
		}
	}
	// row 1 of the block (natural offset B) must land at cube row 1,
	// which starts at cubeSide, not B.
	if cube[cubeSide] != block[B] {
		t.Fatalf("cube[%d] = %d, want %d", cubeSide, cube[cubeSide], block[B])
	}
	// a voxel past the block's extent along x, same row, must be untouched.
	if cube[B] != 0 {
		t.Fatalf("cube[%d] = %d, want 0 (outside copied block)", B, cube[B])
	}
}

func TestBlockPtr(t *testing.T) {
	// block index 0 always sits at the cube origin.
	if got := BlockPtr(Fb, 0); got != 0 {
		t.Errorf("BlockPtr(Fb, 0) = %d, want 0", got)
	}
}

func TestMortonOrderRoundTrip(t *testing.T) {
	natural := make([]uint32, Voxels)
	for i := range natural {
		natural[i] = uint32(i)
	}

	mortonOrder := ToMortonOrder(natural)
	back := FromMortonOrder(mortonOrder)

	for i := range natural {
		if back[i] != natural[i] {
			t.Fatalf("round trip mismatch at %d: got %d, want %d", i, back[i], natural[i])
		}
	}
}

func TestMortonOrderOriginMapsToOrigin(t *testing.T) {
	natural := make([]uint8, Voxels)
	natural[0] = 0xaa // voxel (0,0,0)

	mortonOrder := ToMortonOrder(natural)
	if mortonOrder[0] != 0xaa {
		t.Errorf("mortonOrder[0] = %#x, want 0xaa (code 0 is always (0,0,0))", mortonOrder[0])
	}
}
