package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"

	wkw "github.com/scalableminds/webknossos-wrap"
	"github.com/scalableminds/webknossos-wrap/block"
)

func timed(label string, cb func() error) {
	before := time.Now()
	if err := cb(); err != nil {
		color.Red(" !!! %s failed: %v", label, err)
		os.Exit(1)
	}
	color.Green(" +++ %s took %s", label, time.Since(before))
}

func main() {
	dir, err := os.MkdirTemp("", "wkwdemo")
	if err != nil {
		log.Fatalf("MkdirTemp: %v", err)
	}
	defer os.RemoveAll(dir)

	rawPath := filepath.Join(dir, "raw.wkw")
	compressedPath := filepath.Join(dir, "compressed.wkw")

	cube := make([]uint8, block.B*block.B*block.B)
	for i := range cube {
		cube[i] = uint8(i % 251)
	}

	timed("write_raw", func() error {
		return wkw.WriteRaw(rawPath, 0, 0, 0, block.B, cube)
	})

	timed("compress", func() error {
		return wkw.Compress(rawPath, compressedPath)
	})

	out := make([]uint8, len(cube))
	timed("read (compressed)", func() error {
		return wkw.Read(compressedPath, 0, 0, 0, block.B, out)
	})

	for i := range cube {
		if out[i] != cube[i] {
			color.Red(" !!! round trip mismatch at voxel %d: got %d, want %d", i, out[i], cube[i])
			os.Exit(1)
		}
	}

	h, err := wkw.GetHeader(compressedPath)
	if err != nil {
		log.Fatalf("GetHeader: %v", err)
	}
	color.Green(" +++ round trip verified, container header: %+v", h)

	if err := wkw.DumpJumpTable(compressedPath); err != nil {
		log.Fatalf("DumpJumpTable: %v", err)
	}
}
