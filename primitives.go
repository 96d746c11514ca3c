package main

import "github.com/jcorbin/goforth/internal/byteio"

//// Primitives
//
// Each primitive is a VM method run by dispatch when a code field holds its
// code. Stack effects are written ( before -- after ), top of stack rightmost.

//// Interpreter codes.

// docol runs a colon definition: save the return point and start running
// the code cells after the code field.
func (vm *VM) docol() {
	vm.pushr(int(vm.ip))
	vm.ip = vm.cfa + cellSize
}

// doconst pushes the value held in the cell after the code field.
func (vm *VM) doconst() { vm.push(vm.load(vm.cfa + cellSize)) }

//// Stack manipulation

// DROP ( a -- )
func (vm *VM) drop() { vm.pop() }

// SWAP ( a b -- b a )
func (vm *VM) swap() { b, a := vm.pop(), vm.pop(); vm.push(b); vm.push(a) }

// DUP ( a -- a a )
func (vm *VM) dup() { a := vm.pop(); vm.push(a); vm.push(a) }

// OVER ( a b -- a b a )
func (vm *VM) over() { b, a := vm.pop(), vm.pop(); vm.push(a); vm.push(b); vm.push(a) }

// ROT ( a b c -- b c a )
func (vm *VM) rot() {
	c, b, a := vm.pop(), vm.pop(), vm.pop()
	vm.push(b)
	vm.push(c)
	vm.push(a)
}

// -ROT ( a b c -- c a b )
func (vm *VM) nrot() {
	c, b, a := vm.pop(), vm.pop(), vm.pop()
	vm.push(c)
	vm.push(a)
	vm.push(b)
}

// 2DROP ( a b -- )
func (vm *VM) twoDrop() { vm.pop(); vm.pop() }

// 2DUP ( a b -- a b a b )
func (vm *VM) twoDup() {
	b, a := vm.pop(), vm.pop()
	vm.push(a)
	vm.push(b)
	vm.push(a)
	vm.push(b)
}

// 2SWAP ( a b c d -- c d a b )
func (vm *VM) twoSwap() {
	d, c, b, a := vm.pop(), vm.pop(), vm.pop(), vm.pop()
	vm.push(c)
	vm.push(d)
	vm.push(a)
	vm.push(b)
}

// ?DUP ( a -- a a | 0 )
func (vm *VM) qdup() {
	a := vm.pop()
	vm.push(a)
	if a != 0 {
		vm.push(a)
	}
}

//// Arithmetic

func (vm *VM) incr()     { vm.push(vm.pop() + 1) }
func (vm *VM) decr()     { vm.push(vm.pop() - 1) }
func (vm *VM) incrCell() { vm.push(vm.pop() + cellSize) }
func (vm *VM) decrCell() { vm.push(vm.pop() - cellSize) }

func (vm *VM) add() { b, a := vm.pop(), vm.pop(); vm.push(a + b) }
func (vm *VM) sub() { b, a := vm.pop(), vm.pop(); vm.push(a - b) }
func (vm *VM) mul() { b, a := vm.pop(), vm.pop(); vm.push(a * b) }

// /MOD ( a b -- rem quot ) truncates toward zero.
func (vm *VM) divmod() {
	b, a := vm.pop(), vm.pop()
	if b == 0 {
		vm.halt(errDivZero)
	}
	vm.push(a % b)
	vm.push(a / b)
}

//// Comparison, flags are -1 for true and 0 for false.

func (vm *VM) equ()  { b, a := vm.pop(), vm.pop(); vm.push(boolFlag(a == b)) }
func (vm *VM) nequ() { b, a := vm.pop(), vm.pop(); vm.push(boolFlag(a != b)) }
func (vm *VM) lt()   { b, a := vm.pop(), vm.pop(); vm.push(boolFlag(a < b)) }
func (vm *VM) gt()   { b, a := vm.pop(), vm.pop(); vm.push(boolFlag(a > b)) }
func (vm *VM) le()   { b, a := vm.pop(), vm.pop(); vm.push(boolFlag(a <= b)) }
func (vm *VM) ge()   { b, a := vm.pop(), vm.pop(); vm.push(boolFlag(a >= b)) }

func (vm *VM) zequ()  { vm.push(boolFlag(vm.pop() == 0)) }
func (vm *VM) znequ() { vm.push(boolFlag(vm.pop() != 0)) }
func (vm *VM) zlt()   { vm.push(boolFlag(vm.pop() < 0)) }
func (vm *VM) zgt()   { vm.push(boolFlag(vm.pop() > 0)) }
func (vm *VM) zle()   { vm.push(boolFlag(vm.pop() <= 0)) }
func (vm *VM) zge()   { vm.push(boolFlag(vm.pop() >= 0)) }

//// Bitwise

func (vm *VM) and()    { b, a := vm.pop(), vm.pop(); vm.push(a & b) }
func (vm *VM) or()     { b, a := vm.pop(), vm.pop(); vm.push(a | b) }
func (vm *VM) xor()    { b, a := vm.pop(), vm.pop(); vm.push(a ^ b) }
func (vm *VM) invert() { vm.push(^vm.pop()) }

//// Threading

// EXIT returns from a colon definition.
func (vm *VM) exit() { vm.ip = uint(vm.popr()) }

// LIT ( -- n ) pushes the next code cell and skips it.
func (vm *VM) lit() { vm.push(vm.loadProg()) }

// ' ( -- cfa ) is compile only: it pushes the next code cell, which holds
// the code field compiled after it, and skips it.
func (vm *VM) tick() { vm.push(vm.loadProg()) }

// BRANCH adds the next code cell to ip, relative to that cell.
func (vm *VM) branch() { vm.ip = uint(int(vm.ip) + vm.load(vm.ip)) }

// 0BRANCH ( flag -- ) branches when flag is zero, skipping the offset otherwise.
func (vm *VM) zbranch() {
	if vm.pop() == 0 {
		vm.branch()
	} else {
		vm.ip += cellSize
	}
}

// LITSTRING ( -- addr len ) pushes the string compiled after its length cell
// and skips it, rounded up to a cell boundary.
func (vm *VM) litstring() {
	n := vm.loadProg()
	if n < 0 {
		vm.halt(lengthError(n))
	}
	vm.push(int(vm.ip))
	vm.push(n)
	vm.ip += align(uint(n))
}

// EXECUTE ( cfa -- ) dispatches to the given code field.
func (vm *VM) execute() { vm.dispatch(uint(vm.pop())) }

//// Memory

// ! ( x addr -- )
func (vm *VM) store() { addr := uint(vm.pop()); vm.stor(addr, vm.pop()) }

// @ ( addr -- x )
func (vm *VM) fetch() { vm.push(vm.load(uint(vm.pop()))) }

// +! ( n addr -- )
func (vm *VM) addstore() {
	addr := uint(vm.pop())
	vm.stor(addr, vm.load(addr)+vm.pop())
}

// -! ( n addr -- )
func (vm *VM) substore() {
	addr := uint(vm.pop())
	vm.stor(addr, vm.load(addr)-vm.pop())
}

// C! ( c addr -- )
func (vm *VM) storebyte() { addr := uint(vm.pop()); vm.storByte(addr, byte(vm.pop())) }

// C@ ( addr -- c ) reads an unsigned byte.
func (vm *VM) fetchbyte() { vm.push(int(vm.loadByte(uint(vm.pop())))) }

// C@C! ( dst src -- dst ) copies one byte.
func (vm *VM) ccopy() {
	src := uint(vm.pop())
	dst := uint(vm.pop())
	vm.storByte(dst, vm.loadByte(src))
	vm.push(int(dst))
}

// CMOVE ( src dst len -- ) copies len bytes, overlap safe.
func (vm *VM) cmove() {
	n := vm.pop()
	dst := uint(vm.pop())
	src := uint(vm.pop())
	if n < 0 {
		vm.halt(lengthError(n))
	}
	vm.haltif(vm.arena.Move(dst, src, uint(n)))
}

//// Return stack

// >R ( a -- ) ( R: -- a )
func (vm *VM) tor() { vm.pushr(vm.pop()) }

// R> ( -- a ) ( R: a -- )
func (vm *VM) fromr() { vm.push(vm.popr()) }

// RSP@ ( -- addr )
func (vm *VM) rspfetch() { vm.push(int(vm.rsp)) }

// RSP! ( addr -- )
func (vm *VM) rspstore() {
	addr := vm.pop()
	if !inStack(addr, vm.s0, vm.r0) {
		vm.halt(cursorError{"return", addr})
	}
	vm.rsp = uint(addr)
}

// RDROP ( R: a -- )
func (vm *VM) rdrop() { vm.popr() }

//// Parameter stack

// DSP@ ( -- addr ) pushes the address of the top cell, or S0 when empty.
func (vm *VM) dspfetch() { vm.push(int(vm.sp)) }

// DSP! ( addr -- )
func (vm *VM) dspstore() {
	addr := vm.pop()
	if !inStack(addr, stackBase, vm.s0) {
		vm.halt(cursorError{"parameter", addr})
	}
	vm.sp = uint(addr)
}

func inStack(addr int, base, top uint) bool {
	return addr >= int(base) && addr <= int(top) && (int(top)-addr)%cellSize == 0
}

//// Input and output

// KEY ( -- c )
func (vm *VM) key() {
	b := vm.readByte()
	vm.logf("<", "key %v", byteio.Name(b))
	vm.push(int(b))
}

// EMIT ( c -- )
func (vm *VM) emit() {
	b := byte(vm.pop())
	vm.logf("<", "emit %v", byteio.Name(b))
	vm.writeByte(b)
}

// WORD ( -- addr len ) reads the next token into the token buffer.
func (vm *VM) word() {
	n := vm.scanWord()
	vm.push(wordBuf)
	vm.push(n)
}

// NUMBER ( addr len -- n unparsed )
func (vm *VM) number() {
	n := vm.pop()
	addr := uint(vm.pop())
	val, unparsed := parseNumber(vm.bytes(addr, n), vm.load(regBase))
	vm.push(val)
	vm.push(unparsed)
}

// TELL ( addr len -- )
func (vm *VM) tell() {
	n := vm.pop()
	addr := uint(vm.pop())
	vm.write(vm.bytes(addr, n))
}

// CHAR ( -- c ) pushes the first byte of the next token.
func (vm *VM) char() {
	vm.scanWord()
	vm.push(int(vm.loadByte(wordBuf)))
}

//// Dictionary and compiler

// FIND ( addr len -- word | 0 )
func (vm *VM) findWord() {
	n := vm.pop()
	addr := uint(vm.pop())
	vm.push(int(vm.find(vm.bytes(addr, n))))
}

// >CFA ( word -- cfa )
func (vm *VM) tcfa() { vm.push(int(vm.toCFA(uint(vm.pop())))) }

// CREATE ( addr len -- ) appends a header for a new word named by the string.
func (vm *VM) createWord() {
	n := vm.pop()
	addr := uint(vm.pop())
	vm.create(vm.bytes(addr, n))
}

// , ( x -- ) compiles x at HERE.
func (vm *VM) comma() { vm.compile(vm.pop()) }

// [ enters interpret mode.
func (vm *VM) lbrac() { vm.stor(regState, 0) }

// ] enters compile mode.
func (vm *VM) rbrac() { vm.stor(regState, 1) }

// IMMEDIATE toggles the immediate flag of the latest word.
func (vm *VM) immediate() { vm.toggleFlag(vm.latest(), flagImmediate) }

// HIDDEN ( word -- ) toggles the hidden flag of the given word.
func (vm *VM) hidden() { vm.toggleFlag(uint(vm.pop()), flagHidden) }

//// System interface

func (vm *VM) syscall0() { vm.syscall(0) }
func (vm *VM) syscall1() { vm.syscall(1) }
func (vm *VM) syscall2() { vm.syscall(2) }
func (vm *VM) syscall3() { vm.syscall(3) }

// SYSCALLn ( argn .. arg1 num -- result ) calls the gateway; arg1 is the
// cell just below the call number.
func (vm *VM) syscall(n int) {
	num := vm.pop()
	var args [3]int
	for i := 0; i < n; i++ {
		args[i] = vm.pop()
	}
	res, err := vm.sys.Call(&vm.arena, num, args[:n]...)
	vm.haltif(err)
	vm.logf("$", "syscall %v%v -> %v", num, args[:n], res)
	vm.push(res)
}

// ARGC ( -- n )
func (vm *VM) argc() {
	vm.push(vm.load(vm.argBase))
}

// ARGV ( n -- addr len ) pushes the nth program argument, or 0 0 when out
// of range.
func (vm *VM) argv() {
	n := vm.pop()
	if n < 0 || n >= vm.load(vm.argBase) {
		vm.push(0)
		vm.push(0)
		return
	}
	entry := vm.argBase + cellSize + uint(n)*2*cellSize
	vm.push(vm.load(entry))
	vm.push(vm.load(entry + cellSize))
}

// installArgs writes the program arguments into the argument table below the
// dictionary: a count, then address and length pairs, then the bytes.
func (vm *VM) installArgs() {
	strs := vm.argBase + cellSize + uint(len(vm.args))*2*cellSize
	need := strs - vm.argBase
	for _, arg := range vm.args {
		need += uint(len(arg))
	}
	if need > argsSize {
		vm.halt(argsError(need))
	}
	vm.storByte(vm.argBase, make([]byte, argsSize)...)
	vm.stor(vm.argBase, len(vm.args))
	for i, arg := range vm.args {
		vm.stor(vm.argBase+cellSize+uint(i)*2*cellSize, int(strs), len(arg))
		vm.storByte(strs, []byte(arg)...)
		strs += uint(len(arg))
	}
}

//// Code table

const (
	vmCodeDocol = iota
	vmCodeConst

	vmCodeDrop
	vmCodeSwap
	vmCodeDup
	vmCodeOver
	vmCodeRot
	vmCodeNrot
	vmCodeTwoDrop
	vmCodeTwoDup
	vmCodeTwoSwap
	vmCodeQdup

	vmCodeIncr
	vmCodeDecr
	vmCodeIncrCell
	vmCodeDecrCell
	vmCodeAdd
	vmCodeSub
	vmCodeMul
	vmCodeDivmod

	vmCodeEqu
	vmCodeNequ
	vmCodeLt
	vmCodeGt
	vmCodeLe
	vmCodeGe
	vmCodeZequ
	vmCodeZnequ
	vmCodeZlt
	vmCodeZgt
	vmCodeZle
	vmCodeZge

	vmCodeAnd
	vmCodeOr
	vmCodeXor
	vmCodeInvert

	vmCodeExit
	vmCodeLit
	vmCodeTick
	vmCodeBranch
	vmCodeZbranch
	vmCodeLitstring
	vmCodeExecute

	vmCodeStore
	vmCodeFetch
	vmCodeAddstore
	vmCodeSubstore
	vmCodeStorebyte
	vmCodeFetchbyte
	vmCodeCcopy
	vmCodeCmove

	vmCodeTor
	vmCodeFromr
	vmCodeRspfetch
	vmCodeRspstore
	vmCodeRdrop
	vmCodeDspfetch
	vmCodeDspstore

	vmCodeKey
	vmCodeEmit
	vmCodeWord
	vmCodeNumber
	vmCodeTell
	vmCodeChar

	vmCodeFind
	vmCodeTcfa
	vmCodeCreate
	vmCodeComma
	vmCodeLbrac
	vmCodeRbrac
	vmCodeImmediate
	vmCodeHidden
	vmCodeInterpret

	vmCodeSyscall0
	vmCodeSyscall1
	vmCodeSyscall2
	vmCodeSyscall3
	vmCodeArgc
	vmCodeArgv

	vmCodeMax
)

var vmCodeTable [vmCodeMax]func(vm *VM)
var vmCodeNames [vmCodeMax]string

func init() {
	vmCodeTable = [vmCodeMax]func(vm *VM){
		vmCodeDocol: (*VM).docol,
		vmCodeConst: (*VM).doconst,

		vmCodeDrop:    (*VM).drop,
		vmCodeSwap:    (*VM).swap,
		vmCodeDup:     (*VM).dup,
		vmCodeOver:    (*VM).over,
		vmCodeRot:     (*VM).rot,
		vmCodeNrot:    (*VM).nrot,
		vmCodeTwoDrop: (*VM).twoDrop,
		vmCodeTwoDup:  (*VM).twoDup,
		vmCodeTwoSwap: (*VM).twoSwap,
		vmCodeQdup:    (*VM).qdup,

		vmCodeIncr:     (*VM).incr,
		vmCodeDecr:     (*VM).decr,
		vmCodeIncrCell: (*VM).incrCell,
		vmCodeDecrCell: (*VM).decrCell,
		vmCodeAdd:      (*VM).add,
		vmCodeSub:      (*VM).sub,
		vmCodeMul:      (*VM).mul,
		vmCodeDivmod:   (*VM).divmod,

		vmCodeEqu:   (*VM).equ,
		vmCodeNequ:  (*VM).nequ,
		vmCodeLt:    (*VM).lt,
		vmCodeGt:    (*VM).gt,
		vmCodeLe:    (*VM).le,
		vmCodeGe:    (*VM).ge,
		vmCodeZequ:  (*VM).zequ,
		vmCodeZnequ: (*VM).znequ,
		vmCodeZlt:   (*VM).zlt,
		vmCodeZgt:   (*VM).zgt,
		vmCodeZle:   (*VM).zle,
		vmCodeZge:   (*VM).zge,

		vmCodeAnd:    (*VM).and,
		vmCodeOr:     (*VM).or,
		vmCodeXor:    (*VM).xor,
		vmCodeInvert: (*VM).invert,

		vmCodeExit:      (*VM).exit,
		vmCodeLit:       (*VM).lit,
		vmCodeTick:      (*VM).tick,
		vmCodeBranch:    (*VM).branch,
		vmCodeZbranch:   (*VM).zbranch,
		vmCodeLitstring: (*VM).litstring,
		vmCodeExecute:   (*VM).execute,

		vmCodeStore:     (*VM).store,
		vmCodeFetch:     (*VM).fetch,
		vmCodeAddstore:  (*VM).addstore,
		vmCodeSubstore:  (*VM).substore,
		vmCodeStorebyte: (*VM).storebyte,
		vmCodeFetchbyte: (*VM).fetchbyte,
		vmCodeCcopy:     (*VM).ccopy,
		vmCodeCmove:     (*VM).cmove,

		vmCodeTor:      (*VM).tor,
		vmCodeFromr:    (*VM).fromr,
		vmCodeRspfetch: (*VM).rspfetch,
		vmCodeRspstore: (*VM).rspstore,
		vmCodeRdrop:    (*VM).rdrop,
		vmCodeDspfetch: (*VM).dspfetch,
		vmCodeDspstore: (*VM).dspstore,

		vmCodeKey:    (*VM).key,
		vmCodeEmit:   (*VM).emit,
		vmCodeWord:   (*VM).word,
		vmCodeNumber: (*VM).number,
		vmCodeTell:   (*VM).tell,
		vmCodeChar:   (*VM).char,

		vmCodeFind:      (*VM).findWord,
		vmCodeTcfa:      (*VM).tcfa,
		vmCodeCreate:    (*VM).createWord,
		vmCodeComma:     (*VM).comma,
		vmCodeLbrac:     (*VM).lbrac,
		vmCodeRbrac:     (*VM).rbrac,
		vmCodeImmediate: (*VM).immediate,
		vmCodeHidden:    (*VM).hidden,
		vmCodeInterpret: (*VM).interpret,

		vmCodeSyscall0: (*VM).syscall0,
		vmCodeSyscall1: (*VM).syscall1,
		vmCodeSyscall2: (*VM).syscall2,
		vmCodeSyscall3: (*VM).syscall3,
		vmCodeArgc:     (*VM).argc,
		vmCodeArgv:     (*VM).argv,
	}

	vmCodeNames = [vmCodeMax]string{
		vmCodeDocol: "docol",
		vmCodeConst: "const",

		vmCodeDrop:    "drop",
		vmCodeSwap:    "swap",
		vmCodeDup:     "dup",
		vmCodeOver:    "over",
		vmCodeRot:     "rot",
		vmCodeNrot:    "nrot",
		vmCodeTwoDrop: "2drop",
		vmCodeTwoDup:  "2dup",
		vmCodeTwoSwap: "2swap",
		vmCodeQdup:    "qdup",

		vmCodeIncr:     "incr",
		vmCodeDecr:     "decr",
		vmCodeIncrCell: "incrcell",
		vmCodeDecrCell: "decrcell",
		vmCodeAdd:      "add",
		vmCodeSub:      "sub",
		vmCodeMul:      "mul",
		vmCodeDivmod:   "divmod",

		vmCodeEqu:   "equ",
		vmCodeNequ:  "nequ",
		vmCodeLt:    "lt",
		vmCodeGt:    "gt",
		vmCodeLe:    "le",
		vmCodeGe:    "ge",
		vmCodeZequ:  "zequ",
		vmCodeZnequ: "znequ",
		vmCodeZlt:   "zlt",
		vmCodeZgt:   "zgt",
		vmCodeZle:   "zle",
		vmCodeZge:   "zge",

		vmCodeAnd:    "and",
		vmCodeOr:     "or",
		vmCodeXor:    "xor",
		vmCodeInvert: "invert",

		vmCodeExit:      "exit",
		vmCodeLit:       "lit",
		vmCodeTick:      "tick",
		vmCodeBranch:    "branch",
		vmCodeZbranch:   "zbranch",
		vmCodeLitstring: "litstring",
		vmCodeExecute:   "execute",

		vmCodeStore:     "store",
		vmCodeFetch:     "fetch",
		vmCodeAddstore:  "addstore",
		vmCodeSubstore:  "substore",
		vmCodeStorebyte: "storebyte",
		vmCodeFetchbyte: "fetchbyte",
		vmCodeCcopy:     "ccopy",
		vmCodeCmove:     "cmove",

		vmCodeTor:      "tor",
		vmCodeFromr:    "fromr",
		vmCodeRspfetch: "rspfetch",
		vmCodeRspstore: "rspstore",
		vmCodeRdrop:    "rdrop",
		vmCodeDspfetch: "dspfetch",
		vmCodeDspstore: "dspstore",

		vmCodeKey:    "key",
		vmCodeEmit:   "emit",
		vmCodeWord:   "word",
		vmCodeNumber: "number",
		vmCodeTell:   "tell",
		vmCodeChar:   "char",

		vmCodeFind:      "find",
		vmCodeTcfa:      "tcfa",
		vmCodeCreate:    "create",
		vmCodeComma:     "comma",
		vmCodeLbrac:     "lbrac",
		vmCodeRbrac:     "rbrac",
		vmCodeImmediate: "immediate",
		vmCodeHidden:    "hidden",
		vmCodeInterpret: "interpret",

		vmCodeSyscall0: "syscall0",
		vmCodeSyscall1: "syscall1",
		vmCodeSyscall2: "syscall2",
		vmCodeSyscall3: "syscall3",
		vmCodeArgc:     "argc",
		vmCodeArgv:     "argv",
	}
}
