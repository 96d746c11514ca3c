//go:build !unix

package sysgate

// Errno values returned by the gateway itself, numbered as on Linux.
const (
	EBADF  = 9
	EFAULT = 14
	EINVAL = 22
	ENOSYS = 38
)

// OpenFlags lists open(2) flag constants, numbered as on Linux.
var OpenFlags = []Const{
	{"O_RDONLY", 0x0},
	{"O_WRONLY", 0x1},
	{"O_RDWR", 0x2},
	{"O_CREAT", 0x40},
	{"O_EXCL", 0x80},
	{"O_TRUNC", 0x200},
	{"O_APPEND", 0x400},
	{"O_NONBLOCK", 0x800},
}

// Host falls back to the Null gateway where there is no unix system call
// interface.
type Host struct{ Null }

// Close is a no-op.
func (h *Host) Close() error { return nil }
