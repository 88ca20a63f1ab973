package codegen

import "errors"

var (
	ErrRedefinition        = errors.New("already defined")
	ErrOperatorUndefined   = errors.New("operator not defined for type")
	ErrLocalOutsideRoutine = errors.New("local declared outside a routine")
	ErrBadPatch            = errors.New("patch of an unreserved cell")
)
