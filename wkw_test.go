package wkw

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/scalableminds/webknossos-wrap/block"
	"github.com/scalableminds/webknossos-wrap/morton"
	"github.com/scalableminds/webknossos-wrap/wkwerrors"
)

func TestFreshCreateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "container.wkw")

	in := make([]uint8, block.B*block.B*block.B)
	for v := range in {
		in[v] = uint8(v % 251)
	}

	if err := WriteRaw(path, 0, 0, 0, block.B, in); err != nil {
		t.Fatalf("WriteRaw: %v", err)
	}

	h, err := GetHeader(path)
	if err != nil {
		t.Fatalf("GetHeader: %v", err)
	}
	wantSize := int64(h.DataOffset) + int64(block.F)*int64(block.F)*int64(block.F)
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != wantSize {
		t.Errorf("file size = %d, want %d", info.Size(), wantSize)
	}

	out := make([]uint8, len(in))
	if err := Read(path, 0, 0, 0, block.B, out); err != nil {
		t.Fatalf("Read: %v", err)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("out[%d] = %d, want %d", i, out[i], in[i])
		}
	}
}

func TestFullContainerMortonFill(t *testing.T) {
	path := filepath.Join(t.TempDir(), "container.wkw")

	n := block.F / block.B
	blockVoxels := block.B * block.B * block.B
	buf := make([]uint8, blockVoxels)

	for bz := 0; bz < n; bz++ {
		for by := 0; by < n; by++ {
			for bx := 0; bx < n; bx++ {
				idx := morton.Encode3(uint32(bx), uint32(by), uint32(bz))
				val := uint8(idx % 256)
				for i := range buf {
					buf[i] = val
				}
				if err := WriteRaw(path, bx*block.B, by*block.B, bz*block.B, block.B, buf); err != nil {
					t.Fatalf("WriteRaw(%d,%d,%d): %v", bx, by, bz, err)
				}
			}
		}
	}

	out := make([]uint8, block.F*block.F*block.F)
	if err := Read(path, 0, 0, 0, block.F, out); err != nil {
		t.Fatalf("Read full container: %v", err)
	}

	// spot-check a handful of natural-order positions p = x + F*y + F^2*z.
	checks := []struct{ x, y, z int }{
		{0, 0, 0},
		{32, 0, 0},
		{0, 32, 0},
		{0, 0, 32},
		{992, 992, 992},
	}
	for _, c := range checks {
		p := c.x + block.F*c.y + block.F*block.F*c.z
		want := uint8(morton.Encode3(uint32(c.x/block.B), uint32(c.y/block.B), uint32(c.z/block.B)) % 256)
		if out[p] != want {
			t.Errorf("out[%d] (x=%d,y=%d,z=%d) = %d, want %d", p, c.x, c.y, c.z, out[p], want)
		}
	}
}

func TestCompressThenRead(t *testing.T) {
	rawPath := filepath.Join(t.TempDir(), "raw.wkw")
	compressedPath := filepath.Join(t.TempDir(), "compressed.wkw")

	blockVoxels := block.B * block.B * block.B
	buf := make([]uint8, blockVoxels)

	n := block.F / block.B
	for bz := 0; bz < n; bz++ {
		for by := 0; by < n; by++ {
			for bx := 0; bx < n; bx++ {
				idx := morton.Encode3(uint32(bx), uint32(by), uint32(bz))
				val := uint8(idx % 256)
				for i := range buf {
					buf[i] = val
				}
				if err := WriteRaw(rawPath, bx*block.B, by*block.B, bz*block.B, block.B, buf); err != nil {
					t.Fatalf("WriteRaw: %v", err)
				}
			}
		}
	}

	if err := Compress(rawPath, compressedPath); err != nil {
		t.Fatalf("Compress: %v", err)
	}

	out := make([]uint8, blockVoxels)
	if err := Read(compressedPath, block.B, 0, 0, block.B, out); err != nil {
		t.Fatalf("Read compressed: %v", err)
	}
	want := uint8(morton.Encode3(1, 0, 0) % 256)
	for i, v := range out {
		if v != want {
			t.Fatalf("out[%d] = %d, want %d", i, v, want)
		}
	}
}

func TestHeaderRejectMutatedMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "container.wkw")
	buf := make([]uint8, block.B*block.B*block.B)
	if err := WriteRaw(path, 0, 0, 0, block.B, buf); err != nil {
		t.Fatalf("WriteRaw: %v", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("open for mutation: %v", err)
	}
	if _, err := f.WriteAt([]byte{'X'}, 0); err != nil {
		t.Fatalf("mutate magic: %v", err)
	}
	f.Close()

	out := make([]uint8, block.B*block.B*block.B)
	err = Read(path, 0, 0, 0, block.B, out)
	if err == nil {
		t.Fatal("Read succeeded after mutated magic, want error")
	}
	assertKind(t, err, wkwerrors.BadMagic)
}

func TestMisalignedOffsetRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "container.wkw")
	buf := make([]uint8, block.B*block.B*block.B)
	if err := WriteRaw(path, 0, 0, 0, block.B, buf); err != nil {
		t.Fatalf("WriteRaw: %v", err)
	}

	out := make([]uint8, block.B*block.B*block.B)
	err := Read(path, 1, 0, 0, block.B, out)
	if err == nil {
		t.Fatal("Read succeeded on misaligned offset, want error")
	}
	assertKind(t, err, wkwerrors.BadAlignment)
}

func TestWrongVoxelTypeRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "container.wkw")
	buf := make([]uint8, block.B*block.B*block.B)
	if err := WriteRaw(path, 0, 0, 0, block.B, buf); err != nil {
		t.Fatalf("WriteRaw: %v", err)
	}

	out := make([]uint16, block.B*block.B*block.B)
	err := Read(path, 0, 0, 0, block.B, out)
	if err == nil {
		t.Fatal("Read succeeded with mismatched voxel type, want error")
	}
	assertKind(t, err, wkwerrors.VoxelMismatch)
}

func TestIdempotentWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "container.wkw")
	buf := make([]uint8, block.B*block.B*block.B)
	for i := range buf {
		buf[i] = uint8(i)
	}

	if err := WriteRaw(path, 0, 0, 0, block.B, buf); err != nil {
		t.Fatalf("WriteRaw 1: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}

	if err := WriteRaw(path, 0, 0, 0, block.B, buf); err != nil {
		t.Fatalf("WriteRaw 2: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}

	if string(first) != string(second) {
		t.Fatal("writing the same cube twice produced different file contents")
	}
}

func TestHeaderDeterministic(t *testing.T) {
	rawPath := filepath.Join(t.TempDir(), "raw.wkw")
	buf := make([]uint8, block.B*block.B*block.B)
	if err := WriteRaw(rawPath, 0, 0, 0, block.B, buf); err != nil {
		t.Fatalf("WriteRaw: %v", err)
	}

	dst1 := filepath.Join(t.TempDir(), "c1.wkw")
	dst2 := filepath.Join(t.TempDir(), "c2.wkw")
	if err := Compress(rawPath, dst1); err != nil {
		t.Fatalf("Compress 1: %v", err)
	}
	if err := Compress(rawPath, dst2); err != nil {
		t.Fatalf("Compress 2: %v", err)
	}

	b1, err := os.ReadFile(dst1)
	if err != nil {
		t.Fatalf("read dst1: %v", err)
	}
	b2, err := os.ReadFile(dst2)
	if err != nil {
		t.Fatalf("read dst2: %v", err)
	}
	if string(b1) != string(b2) {
		t.Fatal("compressing the same raw container twice produced different bytes")
	}
}

func assertKind(t *testing.T, err error, want wkwerrors.Kind) {
	t.Helper()
	var werr *wkwerrors.Error
	if !errors.As(err, &werr) {
		t.Fatalf("error %v is not a *wkwerrors.Error", err)
	}
	if werr.Kind != want {
		t.Errorf("kind = %v, want %v", werr.Kind, want)
	}
}
