// Package flushio provides buffered writers that must be flushed explicitly.
package flushio

import (
	"bufio"
	"io"
)

// WriteFlusher is a flush-able io.Writer.
type WriteFlusher interface {
	io.Writer
	Flush() error
}

// Discard is a WriteFlusher that drops everything.
var Discard WriteFlusher = nopFlusher{io.Discard}

// NewWriteFlusher returns w if it is already a WriteFlusher, a no-op flushing
// wrapper if it is io.Discard or an in-memory buffer, and a new bufio.Writer
// otherwise.
func NewWriteFlusher(w io.Writer) WriteFlusher {
	switch impl := w.(type) {
	case nil:
		return Discard
	case WriteFlusher:
		return impl
	}
	if w == io.Discard {
		return Discard
	}
	// types like bytes.Buffer and strings.Builder hold everything in memory
	type buffer interface {
		io.Writer
		Len() int
		Grow(n int)
		Reset()
	}
	if _, isBuffer := w.(buffer); isBuffer {
		return nopFlusher{w}
	}
	return bufio.NewWriter(w)
}

type nopFlusher struct{ io.Writer }

func (nf nopFlusher) Flush() error { return nil }

// WriteFlushers combines any number of WriteFlusher-s into a single one that
// writes into and flushes all of them. Nil entries are skipped.
func WriteFlushers(wfs ...WriteFlusher) WriteFlusher {
	var all multi
	for _, wf := range wfs {
		switch impl := wf.(type) {
		case nil:
		case multi:
			all = append(all, impl...)
		default:
			all = append(all, impl)
		}
	}
	switch len(all) {
	case 0:
		return Discard
	case 1:
		return all[0]
	}
	return all
}

type multi []WriteFlusher

func (wfs multi) Write(p []byte) (int, error) {
	for _, wf := range wfs {
		n, err := wf.Write(p)
		if err == nil && n != len(p) {
			err = io.ErrShortWrite
		}
		if err != nil {
			return n, err
		}
	}
	return len(p), nil
}

func (wfs multi) WriteByte(b byte) error {
	_, err := wfs.Write([]byte{b})
	return err
}

// Flush flushes every writer, returning the first error.
func (wfs multi) Flush() (err error) {
	for _, wf := range wfs {
		if ferr := wf.Flush(); err == nil {
			err = ferr
		}
	}
	return err
}
