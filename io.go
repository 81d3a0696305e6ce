package main

import (
	"io"
	"os"
)

// Sink is the byte I/O layer the driver writes the image through: plain
// appends for the code/data/debug sections, positional writes for
// back-patching fixup tables and the header, and truncation for the
// compact-encoding overflow restart (spec section 2 item 1, section 5
// "resource policy"). Mirrors the teacher's Writer interface (main.go) —
// generalized from byte-at-a-time ELF emission to also support the
// seek-and-backpatch pattern an append-only sink otherwise can't express.
type Sink interface {
	io.Writer
	io.WriterAt
	// Truncate discards everything at or beyond size.
	Truncate(size int64) error
	// Len reports the current content length.
	Len() int64
}

// MemSink is an in-memory Sink, used by tests and by any caller that wants
// the finished image as a []byte rather than a file on disk.
type MemSink struct {
	buf []byte
}

func NewMemSink() *MemSink { return &MemSink{} }

func (s *MemSink) Write(p []byte) (int, error) {
	s.buf = append(s.buf, p...)
	return len(p), nil
}

func (s *MemSink) WriteAt(p []byte, off int64) (int, error) {
	end := off + int64(len(p))
	if end > int64(len(s.buf)) {
		grown := make([]byte, end)
		copy(grown, s.buf)
		s.buf = grown
	}
	copy(s.buf[off:end], p)
	return len(p), nil
}

func (s *MemSink) Truncate(size int64) error {
	if size < 0 {
		size = 0
	}
	if size >= int64(len(s.buf)) {
		return nil
	}
	s.buf = s.buf[:size]
	return nil
}

func (s *MemSink) Len() int64 { return int64(len(s.buf)) }

func (s *MemSink) Bytes() []byte { return s.buf }

// FileSink is a Sink backed by a real file, so that back-patching happens
// via real positional writes rather than buffering the whole image in
// memory. The CLI does not use it: it assembles into a MemSink and writes
// the finished image in one go.
type FileSink struct {
	f    *os.File
	size int64
}

func NewFileSink(f *os.File) *FileSink { return &FileSink{f: f} }

func (s *FileSink) Write(p []byte) (int, error) {
	n, err := s.f.WriteAt(p, s.size)
	s.size += int64(n)
	return n, err
}

func (s *FileSink) WriteAt(p []byte, off int64) (int, error) {
	n, err := s.f.WriteAt(p, off)
	if off+int64(n) > s.size {
		s.size = off + int64(n)
	}
	return n, err
}

func (s *FileSink) Truncate(size int64) error {
	if err := s.f.Truncate(size); err != nil {
		return err
	}
	s.size = size
	return nil
}

func (s *FileSink) Len() int64 { return s.size }

// byteWriter provides the small fixed-width write helpers the header and
// fixup-table writers build records out of. Grounded directly on the
// teacher's BufferWrapper (emit.go): Write/Write2/Write4/Write8 plus the
// byte-slice escape hatch, but targeting the generic Sink abstraction
// (positional or appending) instead of a single in-process bytes.Buffer.
type byteWriter struct {
	sink Sink
	pos  int64
	err  error
}

func newByteWriter(sink Sink, pos int64) *byteWriter {
	return &byteWriter{sink: sink, pos: pos}
}

func (w *byteWriter) writeBytes(b []byte) {
	if w.err != nil {
		return
	}
	n, err := w.sink.WriteAt(b, w.pos)
	w.pos += int64(n)
	if err != nil {
		w.err = err
	} else if n != len(b) {
		w.err = ErrWriteFailed
	}
}

func (w *byteWriter) u8(v uint8)   { w.writeBytes([]byte{v}) }
func (w *byteWriter) i8(v int8)    { w.u8(uint8(v)) }
func (w *byteWriter) u16(v uint16) { b := make([]byte, 2); putLittle16(b, v); w.writeBytes(b) }
func (w *byteWriter) i16(v int16)  { w.u16(uint16(v)) }
func (w *byteWriter) u32(v uint32) { b := make([]byte, 4); putLittle32(b, v); w.writeBytes(b) }
func (w *byteWriter) i32(v int32)  { w.u32(uint32(v)) }
func (w *byteWriter) u64(v uint64) { b := make([]byte, 8); putLittle64(b, v); w.writeBytes(b) }
