package main

import (
	"github.com/jcorbin/goforth/internal/image"
	"github.com/jcorbin/goforth/internal/mem"
	"github.com/jcorbin/goforth/internal/sysgate"
)

// Memory is a single byte addressed arena laid out as:
//
//	0         reserved null cell
//	8 .. 64   registers: STATE HERE LATEST S0 BASE, and the CFAs of LIT and QUIT
//	64 .. 96  the WORD token buffer
//	128 ..    parameter stack, growing down from S0
//	S0 ..     return stack, growing down from R0
//	R0 ..     the program argument table
//	+4096 ..  the dictionary, growing up from HERE
const (
	cellSize = mem.CellSize

	regState  = 1 * cellSize
	regHere   = 2 * cellSize
	regLatest = 3 * cellSize
	regS0     = 4 * cellSize
	regBase   = 5 * cellSize
	regLit    = 6 * cellSize
	regQuit   = 7 * cellSize

	wordBuf     = 64
	wordBufSize = 32
	stackBase   = 128
	argsSize    = 4096

	defaultStackDepth = 1024
	defaultMemLimit   = 4 << 20
	defaultBase       = 10

	version = 47 // pushed by VERSION
)

// VM is a threaded code interpreter: every word in its dictionary is either
// a primitive, named by a code cell, or a list of code field addresses run
// by the inner interpreter.
type VM struct {
	ioCore
	memLayout
	arena mem.Arena

	ip  uint // next code cell
	sp  uint // top parameter stack cell, s0 when empty
	rsp uint // top return stack cell, r0 when empty
	cfa uint // code field being dispatched

	sys  sysgate.Gateway
	args []string
	img  *image.Image

	booted bool
}

type memLayout struct {
	dataDepth uint
	retDepth  uint

	s0      uint // parameter stack occupies [stackBase, s0)
	r0      uint // return stack occupies [s0, r0)
	argBase uint // argument table occupies [r0, memBase)
	memBase uint
}

func (lay *memLayout) setDepth(dataDepth, retDepth uint) {
	lay.dataDepth = dataDepth
	lay.retDepth = retDepth
	lay.s0 = stackBase + dataDepth*cellSize
	lay.r0 = lay.s0 + retDepth*cellSize
	lay.argBase = lay.r0
	lay.memBase = lay.argBase + argsSize
}

//// Memory access; any fault halts the VM.

func (vm *VM) load(addr uint) int {
	val, err := vm.arena.LoadCell(addr)
	vm.haltif(err)
	return val
}

func (vm *VM) stor(addr uint, values ...int) {
	vm.haltif(vm.arena.StorCell(addr, values...))
}

func (vm *VM) loadByte(addr uint) byte {
	b, err := vm.arena.LoadByte(addr)
	vm.haltif(err)
	return b
}

func (vm *VM) storByte(addr uint, data ...byte) {
	vm.haltif(vm.arena.StorByte(addr, data...))
}

// bytes returns a view of n bytes of memory, valid until memory next grows.
func (vm *VM) bytes(addr uint, n int) []byte {
	if n < 0 {
		vm.halt(lengthError(n))
	}
	buf, err := vm.arena.Bytes(addr, uint(n))
	vm.haltif(err)
	return buf
}

func (vm *VM) here() uint       { return uint(vm.load(regHere)) }
func (vm *VM) latest() uint     { return uint(vm.load(regLatest)) }
func (vm *VM) state() int       { return vm.load(regState) }
func (vm *VM) setHere(h uint)   { vm.stor(regHere, int(h)) }
func (vm *VM) setLatest(w uint) { vm.stor(regLatest, int(w)) }

func (vm *VM) loadProg() int {
	val := vm.load(vm.ip)
	vm.ip += cellSize
	return val
}

func (vm *VM) compile(values ...int) {
	vm.stor(vm.allocate(uint(len(values))*cellSize), values...)
}

//// Stacks

func (vm *VM) push(val int) {
	if vm.sp < stackBase+cellSize {
		vm.halt(errStackOverflow)
	}
	vm.sp -= cellSize
	vm.stor(vm.sp, val)
}

func (vm *VM) pop() int {
	if vm.sp+cellSize > vm.s0 {
		vm.halt(errStackUnderflow)
	}
	val := vm.load(vm.sp)
	vm.sp += cellSize
	return val
}

func (vm *VM) pushr(val int) {
	if vm.rsp < vm.s0+cellSize {
		vm.halt(errRetOverflow)
	}
	vm.rsp -= cellSize
	vm.stor(vm.rsp, val)
}

func (vm *VM) popr() int {
	if vm.rsp+cellSize > vm.r0 {
		vm.halt(errRetUnderflow)
	}
	val := vm.load(vm.rsp)
	vm.rsp += cellSize
	return val
}

// stack returns the parameter stack bottom first.
func (vm *VM) stack() []int { return vm.cells(vm.sp, vm.s0) }

// rstack returns the return stack bottom first.
func (vm *VM) rstack() []int { return vm.cells(vm.rsp, vm.r0) }

func (vm *VM) cells(top, base uint) []int {
	values := []int{}
	for addr := base; addr >= top+cellSize; {
		addr -= cellSize
		val, _ := vm.arena.LoadCell(addr)
		values = append(values, val)
	}
	return values
}

func boolFlag(b bool) int {
	if b {
		return -1
	}
	return 0
}
