package main

import (
	"errors"
	"fmt"
)

var (
	errStackOverflow  = stackError{"parameter", "overflow"}
	errStackUnderflow = stackError{"parameter", "underflow"}
	errRetOverflow    = stackError{"return", "overflow"}
	errRetUnderflow   = stackError{"return", "underflow"}

	errDivZero = errors.New("division by zero")
)

type stackError struct{ stack, problem string }

func (err stackError) Error() string { return err.stack + " stack " + err.problem }

type cursorError struct {
	stack string
	addr  int
}

func (err cursorError) Error() string {
	return fmt.Sprintf("%v stack pointer out of range @%v", err.stack, err.addr)
}

type codeError struct {
	cfa  uint
	code int
}

func (err codeError) Error() string { return fmt.Sprintf("invalid code %v @%v", err.code, err.cfa) }

type nameError string

func (name nameError) Error() string {
	return fmt.Sprintf("word name too long (%v > %v bytes): %q", len(name), flagLenMask, string(name))
}

type wordError string

func (token wordError) Error() string {
	return fmt.Sprintf("token exceeds %v bytes: %q...", wordBufSize, string(token))
}

type lengthError int

func (n lengthError) Error() string { return fmt.Sprintf("invalid length %v", int(n)) }

type argsError int

func (n argsError) Error() string {
	return fmt.Sprintf("program arguments need %v bytes, only %v available", int(n), argsSize)
}

type imageError string

func (mess imageError) Error() string { return "invalid image: " + string(mess) }

type inputError struct{ error }

func (err inputError) Error() string { return fmt.Sprintf("input error: %v", err.error) }
func (err inputError) Unwrap() error { return err.error }

type haltError struct{ error }

func (err haltError) Error() string {
	if err.error != nil {
		return fmt.Sprintf("halted: %v", err.error)
	}
	return "halted"
}
func (err haltError) Unwrap() error { return err.error }
