package mem

import (
	"encoding/binary"
	"fmt"
)

// CellSize is the size in bytes of one little-endian integer cell.
const CellSize = 8

// DefaultPageSize is the growth increment used when Arena.PageSize is zero.
const DefaultPageSize = 4096

// Arena implements a flat byte addressed memory that grows in page sized
// increments up to an optional Limit. Loads from unallocated space under the
// limit read as zero, stores allocate.
type Arena struct {
	PageSize uint
	Limit    uint

	buf []byte
}

// LimitError is returned when an access falls outside of an Arena's limit.
type LimitError struct {
	Addr uint
	Op   string
}

func (lim LimitError) Error() string {
	return fmt.Sprintf("memory limit exceeded by %v @%v", lim.Op, lim.Addr)
}

// Size returns the number of allocated bytes.
func (m *Arena) Size() uint { return uint(len(m.buf)) }

// Grow allocates memory so that at least size bytes are addressable,
// rounding up to the next page boundary but never past Limit.
func (m *Arena) Grow(size uint) error {
	if size <= uint(len(m.buf)) {
		return nil
	}
	if m.Limit != 0 && size > m.Limit {
		return LimitError{size, "grow"}
	}
	pageSize := m.PageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if size%pageSize != 0 {
		size += pageSize - size%pageSize
	}
	if m.Limit != 0 && size > m.Limit {
		size = m.Limit
	}
	if uint(cap(m.buf)) >= size {
		m.buf = m.buf[:size]
		return nil
	}
	buf := make([]byte, size)
	copy(buf, m.buf)
	m.buf = buf
	return nil
}

// Reset replaces the arena's contents with a copy of data.
func (m *Arena) Reset(data []byte) error {
	if m.Limit != 0 && uint(len(data)) > m.Limit {
		return LimitError{uint(len(data)), "reset"}
	}
	m.buf = m.buf[:0]
	if err := m.Grow(uint(len(data))); err != nil {
		return err
	}
	copy(m.buf, data)
	for i := len(data); i < len(m.buf); i++ {
		m.buf[i] = 0
	}
	return nil
}

func (m *Arena) check(addr, n uint, op string) (end uint, err error) {
	end = addr + n
	if end < addr {
		return 0, LimitError{addr, op}
	}
	if m.Limit != 0 && end > m.Limit {
		return 0, LimitError{addr, op}
	}
	return end, nil
}

// LoadCell reads the cell at addr.
func (m *Arena) LoadCell(addr uint) (int, error) {
	end, err := m.check(addr, CellSize, "load")
	if err != nil {
		return 0, err
	}
	if end <= uint(len(m.buf)) {
		return int(binary.LittleEndian.Uint64(m.buf[addr:end])), nil
	}
	var tmp [CellSize]byte
	if addr < uint(len(m.buf)) {
		copy(tmp[:], m.buf[addr:])
	}
	return int(binary.LittleEndian.Uint64(tmp[:])), nil
}

// StorCell writes values into consecutive cells starting at addr.
func (m *Arena) StorCell(addr uint, values ...int) error {
	end, err := m.check(addr, uint(len(values))*CellSize, "stor")
	if err != nil {
		return err
	}
	if err := m.Grow(end); err != nil {
		return err
	}
	for _, val := range values {
		binary.LittleEndian.PutUint64(m.buf[addr:addr+CellSize], uint64(val))
		addr += CellSize
	}
	return nil
}

// LoadByte reads the byte at addr.
func (m *Arena) LoadByte(addr uint) (byte, error) {
	if _, err := m.check(addr, 1, "load"); err != nil {
		return 0, err
	}
	if addr < uint(len(m.buf)) {
		return m.buf[addr], nil
	}
	return 0, nil
}

// StorByte writes data starting at addr.
func (m *Arena) StorByte(addr uint, data ...byte) error {
	end, err := m.check(addr, uint(len(data)), "stor")
	if err != nil {
		return err
	}
	if err := m.Grow(end); err != nil {
		return err
	}
	copy(m.buf[addr:end], data)
	return nil
}

// Bytes returns a view of n bytes starting at addr, allocating them if
// necessary. The view aliases arena memory until the next Grow or Reset.
func (m *Arena) Bytes(addr, n uint) ([]byte, error) {
	end, err := m.check(addr, n, "slice")
	if err != nil {
		return nil, err
	}
	if err := m.Grow(end); err != nil {
		return nil, err
	}
	return m.buf[addr:end:end], nil
}

// CString reads a NUL terminated string starting at addr.
func (m *Arena) CString(addr uint) (string, error) {
	for end := addr; ; end++ {
		b, err := m.LoadByte(end)
		if err != nil {
			return "", err
		}
		if b == 0 {
			if end > uint(len(m.buf)) {
				end = uint(len(m.buf))
			}
			if addr >= end {
				return "", nil
			}
			return string(m.buf[addr:end]), nil
		}
	}
}

// Move copies n bytes from src to dst, handling overlap like the builtin copy.
func (m *Arena) Move(dst, src, n uint) error {
	if n == 0 {
		return nil
	}
	srcEnd, err := m.check(src, n, "move")
	if err != nil {
		return err
	}
	dstEnd, err := m.check(dst, n, "move")
	if err != nil {
		return err
	}
	need := dstEnd
	if srcEnd > need {
		need = srcEnd
	}
	if err := m.Grow(need); err != nil {
		return err
	}
	copy(m.buf[dst:dstEnd], m.buf[src:srcEnd])
	return nil
}

// Brk implements a program break over the arena: 0 queries the allocated
// size, any other address grows the arena to cover it. The resulting size is
// returned; growth past the limit leaves the size unchanged.
func (m *Arena) Brk(addr uint) (uint, error) {
	if addr != 0 {
		if err := m.Grow(addr); err != nil {
			if _, isLimit := err.(LimitError); !isLimit {
				return m.Size(), err
			}
		}
	}
	return m.Size(), nil
}
