package lz4

import (
	"bytes"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	src := bytes.Repeat([]byte("abcdefgh"), 4096) // 32768 bytes, compresses well

	dst := make([]byte, CompressBound(len(src)))
	n, err := CompressHC(src, dst)
	if err != nil {
		t.Fatalf("CompressHC: %v", err)
	}
	encoded := dst[:n]

	if n >= len(src) {
		t.Errorf("encoded size %d not smaller than input %d for highly repetitive input", n, len(src))
	}

	decoded := make([]byte, len(src))
	dn, err := DecompressSafe(encoded, decoded)
	if err != nil {
		t.Fatalf("DecompressSafe: %v", err)
	}
	if dn != len(src) {
		t.Fatalf("decoded %d bytes, want %d", dn, len(src))
	}
	if !bytes.Equal(decoded, src) {
		t.Fatal("decoded bytes do not match source")
	}
}

func TestDecompressSafeRejectsGarbage(t *testing.T) {
	garbage := []byte{0xff, 0xff, 0xff, 0xff}
	dst := make([]byte, 32)
	if _, err := DecompressSafe(garbage, dst); err == nil {
		t.Error("DecompressSafe succeeded on garbage input, want error")
	}
}
