package main

import "bytes"

// A word header at address w is:
//
//	w      link to the previously defined word, 0 ends the chain
//	w+8    flags byte: F_IMMED, F_HIDDEN, and the name length
//	w+9    name bytes
//	cfa    the code field, at the next cell boundary after the name
const (
	flagImmediate = 0x80
	flagHidden    = 0x20
	flagLenMask   = 0x1f
)

func align(n uint) uint { return (n + cellSize - 1) &^ (cellSize - 1) }

func codeField(word uint, nameLen int) uint {
	return align(word + cellSize + 1 + uint(nameLen))
}

// allocate reserves n bytes at HERE, returning their address.
func (vm *VM) allocate(n uint) uint {
	h := vm.here()
	vm.haltif(vm.arena.Grow(h + n))
	vm.setHere(h + n)
	return h
}

// create appends a new word header at the next aligned address after HERE,
// leaving HERE at its code field.
func (vm *VM) create(name []byte) uint {
	if len(name) > flagLenMask {
		vm.halt(nameError(name))
	}
	name = append([]byte(nil), name...)

	word := align(vm.here())
	cfa := codeField(word, len(name))
	vm.stor(word, int(vm.latest()))
	vm.storByte(word+cellSize, byte(len(name)))
	vm.storByte(word+cellSize+1, name...)
	if end := word + cellSize + 1 + uint(len(name)); end < cfa {
		vm.storByte(end, make([]byte, cfa-end)...)
	}
	vm.setHere(cfa)
	vm.setLatest(word)
	vm.logf(":", "create %s @%v cfa:%v", name, word, cfa)
	return word
}

func (vm *VM) wordFlags(word uint) byte { return vm.loadByte(word + cellSize) }

func (vm *VM) wordName(word uint) []byte {
	n := vm.wordFlags(word) & flagLenMask
	return vm.bytes(word+cellSize+1, int(n))
}

func (vm *VM) toCFA(word uint) uint {
	return codeField(word, int(vm.wordFlags(word)&flagLenMask))
}

func (vm *VM) toggleFlag(word uint, flag byte) {
	vm.storByte(word+cellSize, vm.wordFlags(word)^flag)
}

// find searches from LATEST for a visible word with the given name. Links
// must point to lower addresses, so a damaged chain ends the search.
func (vm *VM) find(name []byte) uint {
	for word := vm.latest(); word != 0; {
		flags := vm.wordFlags(word)
		if int(flags&(flagHidden|flagLenMask)) == len(name) &&
			bytes.Equal(vm.bytes(word+cellSize+1, len(name)), name) {
			return word
		}
		next := uint(vm.load(word))
		if next >= word {
			break
		}
		word = next
	}
	return 0
}

func (vm *VM) lookup(name string) uint { return vm.find([]byte(name)) }

// words returns every word in the dictionary, newest first, including hidden ones.
func (vm *VM) words() (words []uint) {
	for word := vm.latest(); word != 0; {
		words = append(words, word)
		next, err := vm.arena.LoadCell(word)
		if err != nil || uint(next) >= word {
			break
		}
		word = uint(next)
	}
	return words
}
