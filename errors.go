package main

import "errors"

// Sentinel error kinds produced by the assembler core (spec section 7).
var (
	ErrInvalidInstruction  = errors.New("invalid assembler instruction")
	ErrOutOfMemory         = errors.New("insufficient memory")
	ErrCompressionOverflow = errors.New("compression buffer overflow")
	ErrWriteFailed         = errors.New("disk full or write error")
	ErrSymbolNotFound      = errors.New("symbol not found")
	ErrDuplicateLabel      = errors.New("label already defined")
	ErrUnresolvedLabel     = errors.New("label referenced but never defined")
	ErrNoMain              = errors.New("no entry point (main) found in symbol table")
)
