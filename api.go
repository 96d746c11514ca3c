package main

import (
	"context"
	"errors"
	"io"

	"github.com/jcorbin/goforth/internal/image"
	"github.com/jcorbin/goforth/internal/panicerr"
	"github.com/jcorbin/goforth/internal/sysgate"
)

// New creates a VM; nothing is allocated until it first runs.
func New(opts ...VMOption) *VM {
	var vm VM
	defaultOptions.apply(&vm)
	VMOptions(opts...).apply(&vm)
	if vm.sys == nil {
		host := &sysgate.Host{}
		vm.sys = host
		vm.closers = append(vm.closers, host)
	}
	return &vm
}

// Run boots the VM and runs QUIT until input ends, returning nil in that
// case. SYS_EXIT returns its sysgate.ExitError; any other fatal condition
// returns a halt error wrapping its cause.
func (vm *VM) Run(ctx context.Context) error {
	err := panicerr.Recover("VM", func() error {
		vm.run(ctx)
		return nil
	})
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var exit sysgate.ExitError
	if errors.As(err, &exit) {
		return exit
	}
	var halt haltError
	if errors.As(err, &halt) {
		return halt
	}
	return err
}

// Compiling returns true when the VM is defining a word.
func (vm *VM) Compiling() bool {
	state, err := vm.arena.LoadCell(regState)
	return err == nil && state != 0
}

// Snapshot captures the VM's memory and layout for later restore through
// WithImage.
func (vm *VM) Snapshot() (img *image.Image, err error) {
	err = panicerr.Recover("Snapshot", func() error {
		vm.boot()
		img = vm.snapshot()
		return nil
	})
	return img, err
}

func WithInput(r io.Reader) VMOption            { return withInput(r) }
func WithInputWriter(w io.WriterTo) VMOption    { return withInputWriter(w) }
func WithOutput(w io.Writer) VMOption           { return withOutput(w) }
func WithErrOutput(w io.Writer) VMOption        { return withErrOutput(w) }
func WithTee(w io.Writer) VMOption              { return withTee(w) }
func WithMemLimit(limit uint) VMOption          { return withMemLimit(limit) }
func WithPageSize(size uint) VMOption           { return withPageSize(size) }
func WithStackDepth(data, ret uint) VMOption    { return withStackDepth(data, ret) }
func WithSyscalls(sys sysgate.Gateway) VMOption { return withSyscalls(sys) }
func WithArgs(args ...string) VMOption          { return withArgs(args...) }
func WithImage(img *image.Image) VMOption       { return withImage(img) }

func WithLogf(logfn func(mess string, args ...interface{})) VMOption { return withLogfn(logfn) }
