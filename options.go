package main

import (
	"io"
	"sync"

	"github.com/jcorbin/goforth/internal/flushio"
	"github.com/jcorbin/goforth/internal/image"
	"github.com/jcorbin/goforth/internal/sysgate"
)

type VMOption interface{ apply(vm *VM) }

// VMOptions combines zero or more options into one, dropping nils.
func VMOptions(opts ...VMOption) VMOption {
	var res options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil:
		case options:
			res = append(res, impl...)
		default:
			res = append(res, impl)
		}
	}
	if len(res) == 1 {
		return res[0]
	}
	return res
}

type options []VMOption

func (opts options) apply(vm *VM) {
	for _, opt := range opts {
		opt.apply(vm)
	}
}

var defaultOptions = VMOptions(
	withOutput(nil),
	withErrOutput(nil),
	withMemLimit(defaultMemLimit),
	withStackDepth(defaultStackDepth, defaultStackDepth),
)

type withLogfn func(mess string, args ...interface{})

func (logfn withLogfn) apply(vm *VM) {
	vm.logfn = logfn
}

type inputOption struct{ io.Reader }
type inputWriterOption struct{ io.WriterTo }
type outputOption struct{ io.Writer }
type errOutputOption struct{ io.Writer }
type teeOption struct{ io.Writer }
type memLimitOption uint
type pageSizeOption uint
type stackDepthOption struct{ data, ret uint }
type syscallOption struct{ sysgate.Gateway }
type argsOption []string
type imageOption struct{ *image.Image }

func withInput(r io.Reader) inputOption               { return inputOption{r} }
func withInputWriter(w io.WriterTo) inputWriterOption { return inputWriterOption{w} }
func withOutput(w io.Writer) outputOption             { return outputOption{w} }
func withErrOutput(w io.Writer) errOutputOption       { return errOutputOption{w} }
func withTee(w io.Writer) teeOption                   { return teeOption{w} }
func withMemLimit(limit uint) memLimitOption          { return memLimitOption(limit) }
func withPageSize(size uint) pageSizeOption           { return pageSizeOption(size) }
func withStackDepth(data, ret uint) stackDepthOption  { return stackDepthOption{data, ret} }
func withSyscalls(sys sysgate.Gateway) syscallOption  { return syscallOption{sys} }
func withArgs(args ...string) argsOption              { return argsOption(args) }
func withImage(img *image.Image) imageOption          { return imageOption{img} }

func (i inputOption) apply(vm *VM) {
	vm.in.Queue = append(vm.in.Queue, i.Reader)
}

func (i inputWriterOption) apply(vm *VM) {
	vm.in.Queue = append(vm.in.Queue, &writerToReader{WriterTo: i.WriterTo})
}

func (o outputOption) apply(vm *VM) {
	if vm.out != nil {
		vm.out.Flush()
	}
	vm.out = flushio.NewWriteFlusher(o.Writer)
}

func (o errOutputOption) apply(vm *VM) {
	if vm.errOut != nil {
		vm.errOut.Flush()
	}
	vm.errOut = flushio.NewWriteFlusher(o.Writer)
}

func (o teeOption) apply(vm *VM) {
	vm.out = flushio.WriteFlushers(vm.out, flushio.NewWriteFlusher(o.Writer))
}

func (lim memLimitOption) apply(vm *VM) { vm.arena.Limit = uint(lim) }

func (size pageSizeOption) apply(vm *VM) { vm.arena.PageSize = uint(size) }

func (depth stackDepthOption) apply(vm *VM) {
	vm.dataDepth = depth.data
	vm.retDepth = depth.ret
}

func (o syscallOption) apply(vm *VM) { vm.sys = o.Gateway }

func (args argsOption) apply(vm *VM) { vm.args = append([]string(nil), args...) }

func (o imageOption) apply(vm *VM) { vm.img = o.Image }

// writerToReader adapts an io.WriterTo, such as a source library, into a
// reader by running it through a pipe on first read.
type writerToReader struct {
	io.WriterTo

	once sync.Once
	pr   *io.PipeReader
}

func (wtr *writerToReader) Name() string {
	if nom, ok := wtr.WriterTo.(interface{ Name() string }); ok {
		return nom.Name()
	}
	return "<writer>"
}

func (wtr *writerToReader) Read(p []byte) (int, error) {
	wtr.once.Do(func() {
		pr, pw := io.Pipe()
		wtr.pr = pr
		go func() {
			_, err := wtr.WriterTo.WriteTo(pw)
			pw.CloseWithError(err)
		}()
	})
	return wtr.pr.Read(p)
}

func (wtr *writerToReader) Close() error {
	if wtr.pr != nil {
		return wtr.pr.Close()
	}
	return nil
}
