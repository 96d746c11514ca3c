//go:build unix

package sysgate

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Errno values returned by the gateway itself.
const (
	EBADF  = int(unix.EBADF)
	EFAULT = int(unix.EFAULT)
	EINVAL = int(unix.EINVAL)
	ENOSYS = int(unix.ENOSYS)
)

// OpenFlags lists the host's open(2) flag constants.
var OpenFlags = []Const{
	{"O_RDONLY", unix.O_RDONLY},
	{"O_WRONLY", unix.O_WRONLY},
	{"O_RDWR", unix.O_RDWR},
	{"O_CREAT", unix.O_CREAT},
	{"O_EXCL", unix.O_EXCL},
	{"O_TRUNC", unix.O_TRUNC},
	{"O_APPEND", unix.O_APPEND},
	{"O_NONBLOCK", unix.O_NONBLOCK},
}

// Host performs calls against the operating system. Descriptors opened
// through it are tracked so that Close can release any left open.
type Host struct {
	files map[int]struct{}
}

// Call implements Gateway.
func (h *Host) Call(mem Memory, num int, args ...int) (int, error) {
	switch num {
	case SysExit:
		return 0, ExitError(arg(args, 0))

	case SysBrk:
		return brk(mem, arg(args, 0))

	case SysRead, SysWrite:
		buf, err := mem.Bytes(uint(arg(args, 1)), uint(arg(args, 2)))
		if err != nil || arg(args, 2) < 0 {
			return -EFAULT, nil
		}
		var n int
		if num == SysRead {
			n, err = unix.Read(arg(args, 0), buf)
		} else {
			n, err = unix.Write(arg(args, 0), buf)
		}
		return result(n, err), nil

	case SysOpen, SysCreat:
		path, err := mem.CString(uint(arg(args, 0)))
		if err != nil {
			return -EFAULT, nil
		}
		flags, mode := arg(args, 1), arg(args, 2)
		if num == SysCreat {
			flags, mode = unix.O_CREAT|unix.O_WRONLY|unix.O_TRUNC, arg(args, 1)
		}
		fd, err := unix.Open(path, flags|unix.O_CLOEXEC, uint32(mode))
		if err == nil {
			if h.files == nil {
				h.files = make(map[int]struct{})
			}
			h.files[fd] = struct{}{}
		}
		return result(fd, err), nil

	case SysClose:
		fd := arg(args, 0)
		if _, opened := h.files[fd]; !opened {
			return -EBADF, nil
		}
		delete(h.files, fd)
		return result(0, unix.Close(fd)), nil

	case SysGetpid:
		return unix.Getpid(), nil

	case SysGetppid:
		return unix.Getppid(), nil
	}
	return -ENOSYS, nil
}

// Close closes any descriptors still open.
func (h *Host) Close() (err error) {
	for fd := range h.files {
		if cerr := unix.Close(fd); err == nil {
			err = cerr
		}
		delete(h.files, fd)
	}
	return err
}

func result(n int, err error) int {
	if err == nil {
		return n
	}
	var errno unix.Errno
	if errors.As(err, &errno) {
		return -int(errno)
	}
	return -int(unix.EIO)
}
