package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jcorbin/goforth/internal/byteio"
	"github.com/jcorbin/goforth/internal/fileinput"
	"github.com/jcorbin/goforth/internal/flushio"
)

type ioCore struct {
	logging
	in      fileinput.Input
	out     flushio.WriteFlusher
	errOut  flushio.WriteFlusher
	closers []io.Closer
}

func (core *ioCore) Close() (err error) {
	for i := len(core.closers) - 1; i >= 0; i-- {
		if cerr := core.closers[i].Close(); err == nil {
			err = cerr
		}
	}
	core.closers = nil
	if cerr := core.in.Close(); err == nil {
		err = cerr
	}
	return err
}

func (core *ioCore) halt(err error) {
	// ignore any panics while trying to flush output
	func() {
		defer func() { recover() }()
		for _, wf := range []flushio.WriteFlusher{core.out, core.errOut} {
			if wf != nil {
				if ferr := wf.Flush(); err == nil {
					err = ferr
				}
			}
		}
	}()

	// ignore any panics while logging
	func() {
		defer func() { recover() }()
		if err == io.EOF {
			core.logf("#", "halt EOF")
		} else {
			core.logf("#", "halt error: %v", err)
		}
	}()

	panic(haltError{err})
}

func (core *ioCore) haltif(err error) {
	if err != nil {
		core.halt(err)
	}
}

// readByte flushes output, then reads the next input byte; end of input halts.
func (core *ioCore) readByte() byte {
	core.haltif(core.out.Flush())
	b, err := core.in.ReadByte()
	if err == io.EOF {
		core.halt(err)
	} else if err != nil {
		core.halt(inputError{err})
	}
	return b
}

// nextByte reads the next input byte, reporting false at end of input
// rather than halting.
func (core *ioCore) nextByte() (byte, bool) {
	b, err := core.in.ReadByte()
	if err == io.EOF {
		return 0, false
	} else if err != nil {
		core.halt(inputError{err})
	}
	return b, true
}

func (core *ioCore) writeByte(b byte) {
	core.haltif(byteio.WriteByte(core.out, b))
}

func (core *ioCore) write(p []byte) {
	_, err := core.out.Write(p)
	core.haltif(err)
}

func (core *ioCore) diagnose(parts ...[]byte) {
	core.haltif(core.out.Flush())
	for _, p := range parts {
		_, err := core.errOut.Write(p)
		core.haltif(err)
	}
	core.haltif(core.errOut.Flush())
}

type logging struct {
	logfn func(mess string, args ...interface{})

	markWidth int
}

func (log *logging) logf(mark, mess string, args ...interface{}) {
	if log.logfn == nil {
		return
	}
	if n := log.markWidth - len(mark); n > 0 {
		mark = strings.Repeat(mark[:1], n) + mark
	} else if n < 0 {
		log.markWidth = len(mark)
	}
	if len(args) > 0 {
		mess = fmt.Sprintf(mess, args...)
	}
	log.logfn("%v %v", mark, mess)
}
