package main

import (
	"github.com/jcorbin/goforth/internal/sysgate"
)

// builtin describes one word of the initial dictionary. A primitive has
// a code and no data; a constant has vmCodeConst and one data cell; a colon
// word has vmCodeDocol and a body where each string compiles the CFA of that
// already defined word and each int compiles a raw cell.
type builtin struct {
	name  string
	flags byte
	code  int
	data  []interface{}
}

func prim(name string, code int) builtin { return builtin{name: name, code: code} }

func constant(name string, value int) builtin {
	return builtin{name: name, code: vmCodeConst, data: []interface{}{value}}
}

func colon(name string, body ...interface{}) builtin {
	return builtin{name: name, code: vmCodeDocol, data: body}
}

func (b builtin) immediate() builtin { b.flags |= flagImmediate; return b }

var primitiveWords = []builtin{
	prim("DROP", vmCodeDrop),
	prim("SWAP", vmCodeSwap),
	prim("DUP", vmCodeDup),
	prim("OVER", vmCodeOver),
	prim("ROT", vmCodeRot),
	prim("-ROT", vmCodeNrot),
	prim("2DROP", vmCodeTwoDrop),
	prim("2DUP", vmCodeTwoDup),
	prim("2SWAP", vmCodeTwoSwap),
	prim("?DUP", vmCodeQdup),

	prim("1+", vmCodeIncr),
	prim("1-", vmCodeDecr),
	prim("8+", vmCodeIncrCell),
	prim("8-", vmCodeDecrCell),
	prim("+", vmCodeAdd),
	prim("-", vmCodeSub),
	prim("*", vmCodeMul),
	prim("/MOD", vmCodeDivmod),

	prim("=", vmCodeEqu),
	prim("<>", vmCodeNequ),
	prim("<", vmCodeLt),
	prim(">", vmCodeGt),
	prim("<=", vmCodeLe),
	prim(">=", vmCodeGe),
	prim("0=", vmCodeZequ),
	prim("0<>", vmCodeZnequ),
	prim("0<", vmCodeZlt),
	prim("0>", vmCodeZgt),
	prim("0<=", vmCodeZle),
	prim("0>=", vmCodeZge),

	prim("AND", vmCodeAnd),
	prim("OR", vmCodeOr),
	prim("XOR", vmCodeXor),
	prim("INVERT", vmCodeInvert),

	prim("EXIT", vmCodeExit),
	prim("LIT", vmCodeLit),
	prim("'", vmCodeTick),
	prim("BRANCH", vmCodeBranch),
	prim("0BRANCH", vmCodeZbranch),
	prim("LITSTRING", vmCodeLitstring),
	prim("EXECUTE", vmCodeExecute),

	prim("!", vmCodeStore),
	prim("@", vmCodeFetch),
	prim("+!", vmCodeAddstore),
	prim("-!", vmCodeSubstore),
	prim("C!", vmCodeStorebyte),
	prim("C@", vmCodeFetchbyte),
	prim("C@C!", vmCodeCcopy),
	prim("CMOVE", vmCodeCmove),

	prim(">R", vmCodeTor),
	prim("R>", vmCodeFromr),
	prim("RSP@", vmCodeRspfetch),
	prim("RSP!", vmCodeRspstore),
	prim("RDROP", vmCodeRdrop),
	prim("DSP@", vmCodeDspfetch),
	prim("DSP!", vmCodeDspstore),

	prim("KEY", vmCodeKey),
	prim("EMIT", vmCodeEmit),
	prim("WORD", vmCodeWord),
	prim("NUMBER", vmCodeNumber),
	prim("TELL", vmCodeTell),
	prim("CHAR", vmCodeChar),

	prim("FIND", vmCodeFind),
	prim(">CFA", vmCodeTcfa),
	prim("CREATE", vmCodeCreate),
	prim(",", vmCodeComma),
	prim("[", vmCodeLbrac).immediate(),
	prim("]", vmCodeRbrac),
	prim("IMMEDIATE", vmCodeImmediate).immediate(),
	prim("HIDDEN", vmCodeHidden),
	prim("INTERPRET", vmCodeInterpret),

	prim("SYSCALL0", vmCodeSyscall0),
	prim("SYSCALL1", vmCodeSyscall1),
	prim("SYSCALL2", vmCodeSyscall2),
	prim("SYSCALL3", vmCodeSyscall3),
}

// colonWords are compiled after the constants, so their bodies may name any
// earlier word.
var colonWords = []builtin{
	colon(">DFA", ">CFA", "8+", "EXIT"),
	colon("HIDE", "WORD", "FIND", "HIDDEN", "EXIT"),
	colon(":", "WORD", "CREATE", "LIT", vmCodeDocol, ",", "LATEST", "@", "HIDDEN", "]", "EXIT"),
	colon(";", "LIT", "EXIT", ",", "LATEST", "@", "HIDDEN", "[", "EXIT").immediate(),
	colon("QUIT", "R0", "RSP!", "INTERPRET", "BRANCH", -2*cellSize),

	{name: "ARGC", code: vmCodeArgc},
	{name: "ARGV", code: vmCodeArgv},
}

func (vm *VM) constantWords() []builtin {
	words := []builtin{
		constant("STATE", regState),
		constant("HERE", regHere),
		constant("LATEST", regLatest),
		constant("S0", regS0),
		constant("BASE", regBase),
		constant("R0", int(vm.r0)),
		constant("VERSION", version),
		constant("DOCOL", vmCodeDocol),
		constant("F_IMMED", flagImmediate),
		constant("F_HIDDEN", flagHidden),
		constant("F_LENMASK", flagLenMask),
	}
	for _, c := range sysgate.Calls {
		words = append(words, constant(c.Name, c.Value))
	}
	for _, c := range sysgate.OpenFlags {
		words = append(words, constant(c.Name, c.Value))
	}
	return words
}

func (vm *VM) define(b builtin) {
	word := vm.create([]byte(b.name))
	if b.flags != 0 {
		vm.toggleFlag(word, b.flags)
	}
	vm.compile(b.code)
	for _, d := range b.data {
		switch v := d.(type) {
		case int:
			vm.compile(v)
		case string:
			w := vm.lookup(v)
			if w == 0 {
				panic("builtin " + b.name + " refers to undefined word " + v)
			}
			vm.compile(int(vm.toCFA(w)))
		default:
			panic("invalid builtin data")
		}
	}
}

// boot prepares memory for a run: either restoring an image, or laying out
// the registers and compiling the initial dictionary.
func (vm *VM) boot() {
	if vm.booted {
		return
	}
	vm.booted = true

	if vm.img != nil {
		vm.restore(vm.img)
		return
	}

	vm.setDepth(vm.dataDepth, vm.retDepth)
	vm.stor(regState, 0, int(vm.memBase), 0, int(vm.s0), defaultBase)
	vm.sp, vm.rsp = vm.s0, vm.r0

	for _, b := range primitiveWords {
		vm.define(b)
	}
	for _, b := range vm.constantWords() {
		vm.define(b)
	}
	for _, b := range colonWords {
		vm.define(b)
	}
	vm.stor(regLit, int(vm.toCFA(vm.lookup("LIT"))))
	vm.stor(regQuit, int(vm.toCFA(vm.lookup("QUIT"))))
	vm.installArgs()
	vm.logf("#", "boot here:%v latest:%v", vm.here(), vm.latest())
}
