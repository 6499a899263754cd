// Package wkwerrors defines the failure kinds the core returns,
// reconciling idiomatic Go error handling with the stable negative
// result-code contract bindings in other languages rely on: each Kind
// carries a fixed Code, and Error implements the standard error
// interface so callers that only want Go semantics never see the codes.
package wkwerrors

import "fmt"

// Kind names one failure category. The numeric value of each constant
// is part of the interface contract and must never be renumbered once
// shipped; append new kinds at the end.
type Kind int

const (
	OpenFailed Kind = iota + 1
	ShortIO
	BadMagic
	BadVersion
	BadVoxelType
	BadBlockType
	BadGeometry
	BadDataOffset
	VoxelMismatch
	BadCubeSize
	BadAlignment
	BadBlockIndex
	CodecFailure
)

var names = map[Kind]string{
	OpenFailed:    "open failed",
	ShortIO:       "short i/o",
	BadMagic:      "bad magic",
	BadVersion:    "unsupported version",
	BadVoxelType:  "invalid voxel type",
	BadBlockType:  "invalid block type",
	BadGeometry:   "unsupported geometry",
	BadDataOffset: "invalid data offset",
	VoxelMismatch: "voxel type mismatch",
	BadCubeSize:   "invalid cube size",
	BadAlignment:  "misaligned offset",
	BadBlockIndex: "block index out of bounds",
	CodecFailure:  "codec failure",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return fmt.Sprintf("wkwerrors.Kind(%d)", int(k))
}

// Code returns the stable negative result code for k, matching the
// binding contract: 0 means success, and every failure kind maps to a
// distinct negative integer equal to -int(k).
func (k Kind) Code() int {
	return -int(k)
}

// Error is a failure with a Kind and an optional human-readable detail.
// Two Errors with the same Kind compare unequal under errors.Is unless
// they are the identical value; callers that need to branch on category
// should use errors.As and inspect Kind, not compare Error values.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Code returns the stable negative result code of the error's Kind.
func (e *Error) Code() int {
	return e.Kind.Code()
}

// New builds an Error of the given kind with a formatted detail.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind around an underlying cause.
func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Detail: err.Error(), Err: err}
}
