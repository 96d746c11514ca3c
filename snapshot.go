package main

import (
	"fmt"

	"github.com/jcorbin/goforth/internal/image"
)

// snapshot copies memory up to HERE; the stacks are not preserved.
func (vm *VM) snapshot() *image.Image {
	here := vm.here()
	buf := make([]byte, here)
	copy(buf, vm.bytes(0, int(here)))
	// resume interpreting
	for i := regState; i < regState+cellSize; i++ {
		buf[i] = 0
	}
	return &image.Image{
		Version:   version,
		CellSize:  cellSize,
		DataDepth: vm.dataDepth,
		RetDepth:  vm.retDepth,
		Memory:    buf,
	}
}

func (vm *VM) restore(img *image.Image) {
	if img.CellSize != cellSize {
		vm.halt(imageError(fmt.Sprintf("cell size %v, expected %v", img.CellSize, cellSize)))
	}
	if img.Version != version {
		vm.halt(imageError(fmt.Sprintf("version %v, expected %v", img.Version, version)))
	}
	vm.setDepth(img.DataDepth, img.RetDepth)
	if uint(len(img.Memory)) < vm.memBase {
		vm.halt(imageError(fmt.Sprintf("memory ends before dictionary @%v", vm.memBase)))
	}
	vm.haltif(vm.arena.Reset(img.Memory))
	if s0 := uint(vm.load(regS0)); s0 != vm.s0 {
		vm.halt(imageError(fmt.Sprintf("S0 register %v does not match layout %v", s0, vm.s0)))
	}
	vm.sp, vm.rsp = vm.s0, vm.r0
	vm.installArgs()
	vm.logf("#", "restore here:%v latest:%v", vm.here(), vm.latest())
}
