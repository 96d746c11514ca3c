package main

import (
	"bytes"
	"io"
)

//// Prelude: the rest of the language, written in itself.

var preludeKernel = preludeSource{}

type preludeSource struct{}

func (preludeSource) Name() string { return "prelude.fs" }

// The builtin dictionary only has primitives. Everything a programmer
// expects of control flow, comments, strings, and number printing is built
// here out of IMMEDIATE words that compile branches by hand.
func (preludeSource) WriteTo(w io.Writer) (n int64, err error) {
	var buf bytes.Buffer
	line := func(parts ...string) {
		if err != nil {
			return
		}
		for _, s := range parts {
			buf.WriteString(s)
		}
		buf.WriteByte('\n')
		var m int64
		m, err = buf.WriteTo(w)
		n += m
	}

	// Character constants and small helpers.
	line(`: '\n' 10 ;`)
	line(`: BL 32 ;`)
	line(`: CR '\n' EMIT ;`)
	line(`: SPACE BL EMIT ;`)
	line(`: NEGATE 0 SWAP - ;`)
	line(`: TRUE -1 ;`)
	line(`: FALSE 0 ;`)
	line(`: NOT 0= ;`)

	// LITERAL compiles the value on top of the stack. Since ' quotes the
	// next compiled cell, "' LIT ," compiles LIT itself.
	line(`: LITERAL IMMEDIATE ' LIT , , ;`)

	// Now CHAR can be run at compile time to build the rest of the
	// character constants.
	line(`: ':' [ CHAR : ] LITERAL ;`)
	line(`: ';' [ CHAR ; ] LITERAL ;`)
	line(`: '(' [ CHAR ( ] LITERAL ;`)
	line(`: ')' [ CHAR ) ] LITERAL ;`)
	line(`: '"' [ CHAR " ] LITERAL ;`)
	line(`: 'A' [ CHAR A ] LITERAL ;`)
	line(`: '0' [ CHAR 0 ] LITERAL ;`)
	line(`: '-' [ CHAR - ] LITERAL ;`)
	line(`: '.' [ CHAR . ] LITERAL ;`)

	// [COMPILE] compiles an immediate word rather than running it.
	line(`: [COMPILE] IMMEDIATE WORD FIND >CFA , ;`)

	// A word is hidden while it is being defined, so it cannot simply name
	// itself.
	line(`: RECURSE IMMEDIATE LATEST @ >CFA , ;`)

	// Control structures. Forward branches leave the address of their
	// offset cell on the stack for THEN (or REPEAT) to patch; backward
	// branches compile the offset from BEGIN's address. Offsets are relative
	// to the offset cell itself.
	line(`: IF IMMEDIATE ' 0BRANCH , HERE @ 0 , ;`)
	line(`: THEN IMMEDIATE DUP HERE @ SWAP - SWAP ! ;`)
	line(`: ELSE IMMEDIATE ' BRANCH , HERE @ 0 , SWAP DUP HERE @ SWAP - SWAP ! ;`)
	line(`: BEGIN IMMEDIATE HERE @ ;`)
	line(`: UNTIL IMMEDIATE ' 0BRANCH , HERE @ - , ;`)
	line(`: AGAIN IMMEDIATE ' BRANCH , HERE @ - , ;`)
	line(`: WHILE IMMEDIATE ' 0BRANCH , HERE @ 0 , ;`)
	line(`: REPEAT IMMEDIATE ' BRANCH , SWAP HERE @ - , DUP HERE @ SWAP - SWAP ! ;`)

	// Nesting parenthesized comments.
	line(`: ( IMMEDIATE 1 BEGIN KEY DUP '(' = IF DROP 1+ ELSE ')' = IF 1- THEN THEN DUP 0= UNTIL DROP ;`)

	line(`: / /MOD SWAP DROP ;`)
	line(`: MOD /MOD DROP ;`)

	// Number printing in the current BASE.
	line(`: U. ( u -- )`,
		` BASE @ /MOD ?DUP IF RECURSE THEN`,
		` DUP 10 < IF '0' ELSE 10 - 'A' THEN + EMIT ;`)
	line(`: . ( n -- ) DUP 0< IF '-' EMIT NEGATE THEN U. SPACE ;`)

	// .S prints the stack top first, DEPTH counts it.
	line(`: .S ( -- ) DSP@ BEGIN DUP S0 @ < WHILE DUP @ U. SPACE 8+ REPEAT DROP ;`)
	line(`: DEPTH ( -- n ) S0 @ DSP@ - 8- 8 / ;`)
	line(`: SPACES ( n -- ) BEGIN DUP 0> WHILE SPACE 1- REPEAT DROP ;`)

	// Memory allocation.
	line(`: C, ( c -- ) HERE @ C! 1 HERE +! ;`)
	line(`: ALIGNED ( addr -- addr ) 7 + 7 INVERT AND ;`)
	line(`: ALIGN ( -- ) HERE @ ALIGNED HERE ! ;`)
	line(`: CELLS ( n -- n ) 8 * ;`)
	line(`: ALLOT ( n -- addr ) HERE @ SWAP HERE +! ;`)
	line(`: VARIABLE 1 CELLS ALLOT WORD CREATE DOCOL , ' LIT , , ' EXIT , ;`)
	line(`: CONSTANT WORD CREATE DOCOL , ' LIT , , ' EXIT , ;`)

	// String literals: compiled inline after LITSTRING, or when
	// interpreting, read into scratch space at HERE.
	line(`: S" IMMEDIATE ( -- addr len )`,
		` STATE @ IF`,
		` ' LITSTRING , HERE @ 0 ,`,
		` BEGIN KEY DUP '"' <> WHILE C, REPEAT DROP`,
		` DUP HERE @ SWAP - 8- SWAP ! ALIGN`,
		` ELSE`,
		` HERE @ BEGIN KEY DUP '"' <> WHILE OVER C! 1+ REPEAT DROP`,
		` HERE @ - HERE @ SWAP`,
		` THEN ;`)
	line(`: ." IMMEDIATE ( -- )`,
		` STATE @ IF`,
		` [COMPILE] S" ' TELL ,`,
		` ELSE`,
		` BEGIN KEY DUP '"' = IF DROP EXIT THEN EMIT AGAIN`,
		` THEN ;`)

	return n, err
}
