// Package sysgate implements the system call gateway behind the SYSCALL0..3
// words: integer call numbers and arguments in, one integer result out, with
// failures reported as negated errno values.
package sysgate

import "fmt"

// Call numbers, following the Linux x86-64 table.
const (
	SysRead    = 0
	SysWrite   = 1
	SysOpen    = 2
	SysClose   = 3
	SysBrk     = 12
	SysGetpid  = 39
	SysExit    = 60
	SysCreat   = 85
	SysGetppid = 110
)

// Memory is the narrow view of VM memory that calls may touch.
type Memory interface {
	Bytes(addr, n uint) ([]byte, error)
	CString(addr uint) (string, error)
	Brk(addr uint) (uint, error)
}

// Gateway performs system calls on behalf of a VM. A non-nil error halts the
// VM; ordinary call failures are returned as negative results instead.
type Gateway interface {
	Call(mem Memory, num int, args ...int) (int, error)
}

// ExitError halts a VM with the given exit status.
type ExitError int

func (code ExitError) Error() string { return fmt.Sprintf("exit status %d", int(code)) }

// Const names an integer constant exposed to programs as a word.
type Const struct {
	Name  string
	Value int
}

// Calls lists the call number constants.
var Calls = []Const{
	{"SYS_EXIT", SysExit},
	{"SYS_OPEN", SysOpen},
	{"SYS_CLOSE", SysClose},
	{"SYS_READ", SysRead},
	{"SYS_WRITE", SysWrite},
	{"SYS_CREAT", SysCreat},
	{"SYS_BRK", SysBrk},
}

// Null is a sandbox gateway: only exit and brk are served, everything else
// fails with ENOSYS.
type Null struct{}

// Call implements Gateway.
func (Null) Call(mem Memory, num int, args ...int) (int, error) {
	switch num {
	case SysExit:
		return 0, ExitError(arg(args, 0))
	case SysBrk:
		return brk(mem, arg(args, 0))
	}
	return -ENOSYS, nil
}

func arg(args []int, i int) int {
	if i < len(args) {
		return args[i]
	}
	return 0
}

func brk(mem Memory, addr int) (int, error) {
	if addr < 0 {
		return -EINVAL, nil
	}
	size, err := mem.Brk(uint(addr))
	return int(size), err
}
