package main

import (
	"context"
)

func (vm *VM) run(ctx context.Context) {
	vm.boot()

	// enter QUIT with a null return point; QUIT resets the return stack itself
	vm.ip = 0
	vm.dispatch(uint(vm.load(regQuit)))
	vm.exec(ctx)
}

func (vm *VM) exec(ctx context.Context) {
	for {
		vm.step()
		vm.haltif(ctx.Err())
	}
}

// step is NEXT: fetch the code field address at ip and dispatch it.
func (vm *VM) step() {
	vm.dispatch(uint(vm.loadProg()))
}

func (vm *VM) dispatch(cfa uint) {
	code := vm.load(cfa)
	if code < 0 || code >= vmCodeMax {
		vm.halt(codeError{cfa, code})
	}
	vm.cfa = cfa
	if vm.logfn != nil {
		vm.logf(">", "@%v %v -- r:%v s:%v", cfa, vm.codeName(cfa, code), vm.rstack(), vm.stack())
	}
	vmCodeTable[code](vm)
}

// codeName names a code field for tracing: its word name if one can be found
// just before it, otherwise the primitive name.
func (vm *VM) codeName(cfa uint, code int) string {
	for _, word := range vm.words() {
		if vm.toCFA(word) == cfa {
			return string(vm.wordName(word))
		}
		if word < cfa {
			break
		}
	}
	return vmCodeNames[code]
}

// scanWord reads the next whitespace delimited token into the token buffer,
// returning its length. A backslash where a token would start comments out
// the rest of the line. End of input while skipping halts; end of input
// within a token ends the token.
func (vm *VM) scanWord() int {
	var b byte
	for {
		b = vm.readByte()
		if b == '\\' {
			for b != '\n' {
				b = vm.readByte()
			}
			continue
		}
		if b > ' ' {
			break
		}
	}

	n := 0
	for {
		if n >= wordBufSize {
			vm.halt(wordError(vm.bytes(wordBuf, n)))
		}
		vm.storByte(wordBuf+uint(n), b)
		n++
		var ok bool
		if b, ok = vm.nextByte(); !ok || b <= ' ' {
			break
		}
	}
	return n
}

// parseNumber converts token in the given base, returning the value and the
// count of trailing bytes that could not be parsed.
func parseNumber(token []byte, base int) (val, unparsed int) {
	if len(token) == 0 {
		return 0, 0
	}
	neg := false
	i := 0
	switch token[0] {
	case '-':
		neg = true
		fallthrough
	case '+':
		i++
		if len(token) == 1 {
			return 0, 1
		}
	}
	for ; i < len(token); i++ {
		d := digitValue(token[i])
		if d < 0 || d >= base {
			break
		}
		val = val*base + d
	}
	if neg {
		val = -val
	}
	return val, len(token) - i
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	return -1
}

// interpret is the outer interpreter, run once for each token by QUIT.
func (vm *VM) interpret() {
	n := vm.scanWord()
	token := vm.bytes(wordBuf, n)

	if word := vm.find(token); word != 0 {
		cfa := vm.toCFA(word)
		if vm.wordFlags(word)&flagImmediate != 0 || vm.state() == 0 {
			vm.dispatch(cfa)
		} else {
			vm.logf("+", "compile %s @%v", token, vm.here())
			vm.compile(int(cfa))
		}
		return
	}

	val, unparsed := parseNumber(token, vm.load(regBase))
	if unparsed > 0 {
		vm.parseError(token)
		return
	}
	if vm.state() != 0 {
		vm.logf("+", "compile literal %v @%v", val, vm.here())
		vm.compile(vm.load(regLit), val)
	} else {
		vm.push(val)
	}
}

func (vm *VM) parseError(token []byte) {
	line := &vm.in.Scan
	if line.Len() == 0 {
		line = &vm.in.Last
	}
	vm.logf("!", "parse error %q at %v", token, line.Location)
	vm.diagnose([]byte("PARSE ERROR: "), token, []byte("\n"))
}
