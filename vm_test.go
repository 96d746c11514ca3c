package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/jcorbin/goforth/internal/image"
	"github.com/jcorbin/goforth/internal/logio"
	"github.com/jcorbin/goforth/internal/panicerr"
	"github.com/jcorbin/goforth/internal/sysgate"
)

type vmTestCases []vmTestCase

func (vmts vmTestCases) run(t *testing.T) {
	{
		var exclusive []vmTestCase
		for _, vmt := range vmts {
			if vmt.exclusive {
				exclusive = append(exclusive, vmt)
			}
		}
		if len(exclusive) > 0 {
			vmts = exclusive
		}
	}
	for _, vmt := range vmts {
		if !t.Run(vmt.name, vmt.run) {
			return
		}
	}
}

func vmTest(name string) (vmt vmTestCase) {
	vmt.name = name
	return vmt
}

type vmTestCase struct {
	name    string
	opts    []interface{}
	setup   []func(vm *VM)
	ops     []func(vm *VM)
	expect  []func(t *testing.T, vm *VM)
	timeout time.Duration
	wantErr error

	exclusive   bool
	nextInputID int
}

func (vmt vmTestCase) apply(wraps ...func(vmTestCase) vmTestCase) vmTestCase {
	for _, wrap := range wraps {
		vmt = wrap(vmt)
	}
	return vmt
}

func (vmt vmTestCase) exclusiveTest() vmTestCase {
	vmt.exclusive = true
	return vmt
}

func (vmt vmTestCase) withOptions(opts ...VMOption) vmTestCase {
	for _, opt := range opts {
		vmt.opts = append(vmt.opts, opt)
	}
	return vmt
}

// withStack pushes values once the VM has booted.
func (vmt vmTestCase) withStack(values ...int) vmTestCase {
	vmt.setup = append(vmt.setup, func(vm *VM) {
		for _, val := range values {
			vm.push(val)
		}
	})
	return vmt
}

func (vmt vmTestCase) withRStack(values ...int) vmTestCase {
	vmt.setup = append(vmt.setup, func(vm *VM) {
		for _, val := range values {
			vm.pushr(val)
		}
	})
	return vmt
}

func (vmt vmTestCase) withMemAt(addr uint, values ...int) vmTestCase {
	vmt.setup = append(vmt.setup, func(vm *VM) {
		vm.stor(addr, values...)
	})
	return vmt
}

func (vmt vmTestCase) withBytesAt(addr uint, data string) vmTestCase {
	vmt.setup = append(vmt.setup, func(vm *VM) {
		vm.storByte(addr, []byte(data)...)
	})
	return vmt
}

func (vmt vmTestCase) withIP(ip uint) vmTestCase {
	vmt.setup = append(vmt.setup, func(vm *VM) {
		vm.ip = ip
	})
	return vmt
}

func (vmt vmTestCase) withMemLimit(limit uint) vmTestCase {
	vmt.opts = append(vmt.opts, WithMemLimit(limit))
	return vmt
}

func (vmt vmTestCase) withStackDepth(data, ret uint) vmTestCase {
	vmt.opts = append(vmt.opts, WithStackDepth(data, ret))
	return vmt
}

func (vmt vmTestCase) withArgs(args ...string) vmTestCase {
	vmt.opts = append(vmt.opts, WithArgs(args...))
	return vmt
}

func (vmt vmTestCase) withSyscalls(sys sysgate.Gateway) vmTestCase {
	vmt.opts = append(vmt.opts, WithSyscalls(sys))
	return vmt
}

func (vmt vmTestCase) withImage(img *image.Image) vmTestCase {
	vmt.opts = append(vmt.opts, WithImage(img))
	return vmt
}

func (vmt vmTestCase) withInput(input string) vmTestCase {
	vmt.opts = append(vmt.opts, func(vmt *vmTestCase, t *testing.T) VMOption {
		name := t.Name() + "/input"
		if id := vmt.nextInputID; id > 0 {
			name += "_" + strconv.Itoa(id+1)
		}
		vmt.nextInputID++
		return WithInput(namedReader{strings.NewReader(input), name})
	})
	return vmt
}

func (vmt vmTestCase) withNamedInput(name string, input string) vmTestCase {
	vmt.opts = append(vmt.opts, WithInput(namedReader{strings.NewReader(input), name}))
	return vmt
}

func (vmt vmTestCase) withInputWriter(w io.WriterTo) vmTestCase {
	vmt.opts = append(vmt.opts, WithInputWriter(w))
	return vmt
}

func (vmt vmTestCase) withPrelude() vmTestCase {
	return vmt.withInputWriter(preludeKernel)
}

func (vmt vmTestCase) do(ops ...func(vm *VM)) vmTestCase {
	vmt.ops = append(vmt.ops, ops...)
	return vmt
}

func (vmt vmTestCase) withTimeout(timeout time.Duration) vmTestCase {
	vmt.timeout = timeout
	return vmt
}

func (vmt vmTestCase) expectError(err error) vmTestCase {
	vmt.wantErr = err
	return vmt
}

func (vmt vmTestCase) expectIP(ip uint) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		assert.Equal(t, ip, vm.ip, "expected instruction pointer")
	})
	return vmt
}

func (vmt vmTestCase) expectStack(values ...int) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		if values == nil {
			values = []int{}
		}
		assert.Equal(t, values, vm.stack(), "expected stack values")
	})
	return vmt
}

func (vmt vmTestCase) expectRStack(values ...int) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		if values == nil {
			values = []int{}
		}
		assert.Equal(t, values, vm.rstack(), "expected return stack values")
	})
	return vmt
}

func (vmt vmTestCase) expectMemAt(addr uint, values ...int) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		buf := make([]int, len(values))
		for i := range buf {
			buf[i], _ = vm.arena.LoadCell(addr + uint(i)*cellSize)
		}
		assert.Equal(t, values, buf, "expected memory values @%v", addr)
	})
	return vmt
}

func (vmt vmTestCase) expectBytesAt(addr uint, data string) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		buf, err := vm.arena.Bytes(addr, uint(len(data)))
		if assert.NoError(t, err, "expected readable memory @%v", addr) {
			assert.Equal(t, data, string(buf), "expected memory bytes @%v", addr)
		}
	})
	return vmt
}

func (vmt vmTestCase) expectState(state int) vmTestCase {
	return vmt.expectMemAt(regState, state)
}

// expectWordDump compares the dumper's rendering of the named word; hidden
// words are found too, the newest definition wins.
func (vmt vmTestCase) expectWordDump(name string, want string) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		dump := vmDumper{vm: vm}
		dump.scanWords()
		for i := len(dump.words) - 1; i >= 0; i-- {
			if string(vm.wordName(dump.words[i])) == name {
				var buf strings.Builder
				dump.formatWord(&buf, i)
				if diff := cmp.Diff(want, buf.String()); diff != "" {
					t.Errorf("unexpected %q dump (-want +got):\n%s", name, diff)
				}
				return
			}
		}
		t.Errorf("word %q not found", name)
	})
	return vmt
}

func (vmt vmTestCase) expectWordFlags(name string, flags byte) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		var found uint
		for _, word := range vm.words() {
			if string(vm.wordName(word)) == name {
				found = word
				break
			}
		}
		if assert.NotEqual(t, uint(0), found, "expected word %q", name) {
			assert.Equal(t, flags, vm.wordFlags(found)&^flagLenMask, "expected %q flags", name)
		}
	})
	return vmt
}

func (vmt vmTestCase) expectOutput(output string) vmTestCase {
	var out strings.Builder
	vmt.opts = append(vmt.opts, WithOutput(&out))
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		assert.Equal(t, output, out.String(), "expected output")
	})
	return vmt
}

func (vmt vmTestCase) expectErrOutput(output string) vmTestCase {
	var out strings.Builder
	vmt.opts = append(vmt.opts, WithErrOutput(&out))
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		assert.Equal(t, output, out.String(), "expected error output")
	})
	return vmt
}

func (vmt vmTestCase) expectDump(dump string) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		var out strings.Builder
		vmDumper{vm: vm, out: &out}.dump()
		if diff := cmp.Diff(dump, out.String()); diff != "" {
			t.Errorf("unexpected dump (-want +got):\n%s", diff)
		}
	})
	return vmt
}

func (vmt vmTestCase) withTestLog() vmTestCase {
	vmt.opts = append(vmt.opts, func(vmt *vmTestCase, t *testing.T) VMOption {
		return WithLogf(t.Logf)
	})
	return vmt
}

func (vmt vmTestCase) withTestOutput() vmTestCase {
	vmt.opts = append(vmt.opts, func(vmt *vmTestCase, t *testing.T) VMOption {
		return WithTee(&logio.Writer{Logf: t.Logf, Prefix: "out: "})
	})
	return vmt
}

func (vmt vmTestCase) run(t *testing.T) {
	const defaultTimeout = 5 * time.Second
	timeout := vmt.timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	vm := vmt.buildVM(t)
	defer func() {
		if t.Failed() {
			vmt.dumpToTest(t, vm)
		}
	}()

	if err := vmt.runVM(ctx, vm); vmt.wantErr != nil {
		assert.True(t, errors.Is(err, vmt.wantErr), "expected error: %v\ngot: %+v", vmt.wantErr, err)
	} else {
		assert.NoError(t, err, "unexpected VM run error")
	}

	if !t.Failed() {
		for _, expect := range vmt.expect {
			expect(t, vm)
		}
	}
}

func (vmt vmTestCase) runVM(ctx context.Context, vm *VM) (rerr error) {
	defer func() {
		if err := vm.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("vm.Close failed: %w", err)
		}
	}()

	names := make([]string, len(vmt.ops))
	for i, op := range vmt.ops {
		names[i] = runtime.FuncForPC(reflect.ValueOf(op).Pointer()).Name()
	}
	err := panicerr.Recover("vmTestCase.ops", func() error {
		vm.boot()
		for _, setup := range vmt.setup {
			setup(vm)
		}
		for i, op := range vmt.ops {
			vm.logf(">", "do[%v] %v", i, names[i])
			op(vm)
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil && len(vmt.ops) == 0 {
		err = vm.Run(ctx)
	}
	if errors.Is(err, io.EOF) {
		err = nil
	}
	return err
}

func (vmt vmTestCase) buildVM(t *testing.T) *VM {
	var opts []VMOption
	for _, o := range vmt.opts {
		switch impl := o.(type) {
		case func(vmt *vmTestCase, t *testing.T) VMOption:
			opts = append(opts, impl(&vmt, t))
		case VMOption:
			opts = append(opts, impl)
		default:
			t.Logf("unsupported vmTestCase opt type %T", o)
			t.FailNow()
		}
	}
	// tests default to a sandbox unless they ask for a particular gateway
	return New(append([]VMOption{WithSyscalls(sysgate.Null{})}, opts...)...)
}

func (vmt vmTestCase) dumpToTest(t *testing.T, vm *VM) {
	lw := logio.Writer{Logf: t.Logf}
	defer lw.Close()
	vmDumper{vm: vm, out: &lw}.dump()
}

//// utilities

type namedReader struct {
	io.Reader
	name string
}

func (nr namedReader) Name() string { return nr.name }

func lines(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}
