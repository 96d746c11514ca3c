package byteio

import (
	"strconv"
	"strings"
)

var c0Names = [32]string{
	"<NUL>", "<SOH>", "<STX>", "<ETX>", "<EOT>", "<ENQ>", "<ACK>", "<BEL>",
	"<BS>", "<HT>", "<NL>", "<VT>", "<NP>", "<CR>", "<SO>", "<SI>",
	"<DLE>", "<DC1>", "<DC2>", "<DC3>", "<DC4>", "<NAK>", "<SYN>", "<ETB>",
	"<CAN>", "<EM>", "<SUB>", "<ESC>", "<FS>", "<GS>", "<RS>", "<US>",
}

// Mnemonic returns the control mnemonic for b, like "<NL>", or "" if b is
// not a control byte; space and delete count.
func Mnemonic(b byte) string {
	switch {
	case b < 0x20:
		return c0Names[b]
	case b == 0x20:
		return "<SP>"
	case b == 0x7f:
		return "<DEL>"
	}
	return ""
}

// Name returns the mnemonic of a control byte, or else b quoted.
func Name(b byte) string {
	if m := Mnemonic(b); m != "" {
		return m
	}
	return Quote([]byte{b})
}

// CaretForm computes the ^-escaped printable form of a C0 control byte.
func CaretForm(b byte) string {
	if b < 0x20 || b == 0x7f {
		return "^" + string(rune(b^0x40))
	}
	return ""
}

// Quote renders arbitrary bytes as a double quoted string, writing control
// bytes in caret form and other non-ASCII bytes as hex escapes.
func Quote(p []byte) string {
	var sb strings.Builder
	sb.Grow(len(p) + 2)
	sb.WriteByte('"')
	for _, b := range p {
		switch {
		case b == '"' || b == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(b)
		case b < 0x20 || b == 0x7f:
			sb.WriteString(CaretForm(b))
		case b >= 0x80:
			sb.WriteString(`\x`)
			sb.WriteString(strconv.FormatUint(uint64(b)>>4, 16))
			sb.WriteString(strconv.FormatUint(uint64(b)&0xf, 16))
		default:
			sb.WriteByte(b)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
