package wkw

import (
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"

	"github.com/scalableminds/webknossos-wrap/container/header"
	"github.com/scalableminds/webknossos-wrap/container/jumptable"
	"github.com/scalableminds/webknossos-wrap/wkwerrors"
)

func openForTableRead(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wkwerrors.Wrap(wkwerrors.OpenFailed, err)
	}
	if _, err := f.Seek(int64(header.Size), io.SeekStart); err != nil {
		f.Close()
		return nil, wkwerrors.Wrap(wkwerrors.ShortIO, err)
	}
	return f, nil
}

// DumpHeader decodes and validates path's header, then dumps its
// fields via go-spew. Intended for interactive debugging, not for
// parsing.
func DumpHeader(path string) error {
	h, err := GetHeader(path)
	if err != nil {
		return err
	}
	spew.Dump("wkw header", h)
	return nil
}

// DumpJumpTable decodes path's header and, if it describes a
// compressed container, its full jump table, dumping both via go-spew.
func DumpJumpTable(path string) error {
	h, err := GetHeader(path)
	if err != nil {
		return err
	}
	spew.Dump("wkw header", h)
	if h.BlockType != header.BlockLZ4 && h.BlockType != header.BlockLZ4HC {
		spew.Dump("no jump table: container is raw")
		return nil
	}

	f, err := openForTableRead(path)
	if err != nil {
		return err
	}
	defer f.Close()

	table, err := jumptable.Read(f, jumptable.Len)
	if err != nil {
		return err
	}
	spew.Dump("wkw jump table", table)
	return nil
}
