// Package console adapts an interactive line editor into the byte stream that
// a VM reads its input from.
package console

import (
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"
)

// Config configures a Console.
type Config struct {
	// Prompt, if set, is called before each line is read; when nil the
	// prompt is DefaultPrompt.
	Prompt func() string

	HistoryFile string
	Stdin       io.ReadCloser
	Stdout      io.Writer
}

// DefaultPrompt is shown before each line when Config.Prompt is nil.
const DefaultPrompt = "> "

// LineReader reads edited lines; *readline.Instance implements it.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Close() error
}

// Console implements io.Reader over a LineReader: each line read is
// delivered followed by a line feed. An interrupt discards the line being
// edited; end of file is passed through.
type Console struct {
	lines  LineReader
	prompt func() string
	buf    []byte
}

// IsTerminal reports whether f is connected to a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Open creates a Console over a new readline instance.
func Open(cfg Config) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          DefaultPrompt,
		HistoryFile:     cfg.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "bye",
		Stdin:           cfg.Stdin,
		Stdout:          cfg.Stdout,
	})
	if err != nil {
		return nil, err
	}
	return New(rl, cfg.Prompt), nil
}

// New creates a Console around any LineReader; prompt may be nil.
func New(lines LineReader, prompt func() string) *Console {
	return &Console{lines: lines, prompt: prompt}
}

// Name identifies console input in diagnostics.
func (con *Console) Name() string { return "<console>" }

// Read implements io.Reader.
func (con *Console) Read(p []byte) (int, error) {
	for len(con.buf) == 0 {
		if con.prompt != nil {
			con.lines.SetPrompt(con.prompt())
		}
		line, err := con.lines.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err != nil {
			return 0, err
		}
		con.buf = append(append(con.buf[:0], line...), '\n')
	}
	n := copy(p, con.buf)
	con.buf = con.buf[n:]
	return n, nil
}

// Close closes the underlying line reader.
func (con *Console) Close() error { return con.lines.Close() }
