package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/goforth/internal/logio"
	"github.com/jcorbin/goforth/internal/sysgate"
)

func Test_exitCode(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
		code int
	}{
		{"clean", nil, 0},
		{"exit", sysgate.ExitError(3), 3},
		{"exit zero", sysgate.ExitError(0), 0},
		{"wrapped exit", fmt.Errorf("oops: %w", sysgate.ExitError(5)), 5},
		{"negative exit", sysgate.ExitError(-1), 255},
		{"large exit", sysgate.ExitError(258), 2},
		{"input", haltError{inputError{io.ErrUnexpectedEOF}}, 1},
		{"halt", haltError{errDivZero}, 2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, exitCode(tc.err))
		})
	}
}

type mainTest struct {
	name  string
	args  []string
	files map[string]string
	stdin string

	code   int
	out    string
	errOut []string
}

func (mt mainTest) run(t *testing.T, dir string) {
	var log logio.Logger
	var out, errOut strings.Builder
	log.SetOutput(&errOut)

	for name, content := range mt.files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	args := make([]string, len(mt.args))
	for i, arg := range mt.args {
		args[i] = strings.ReplaceAll(arg, "$DIR", dir)
	}

	code := run(context.Background(), &log, stdio{strings.NewReader(mt.stdin), &out, &errOut}, args)
	assert.Equal(t, mt.code, code, "expected exit code")
	assert.Equal(t, mt.out, out.String(), "expected output")
	for _, want := range mt.errOut {
		assert.Contains(t, errOut.String(), want, "expected error output")
	}
	if len(mt.errOut) == 0 && code == 0 {
		assert.Equal(t, "", errOut.String(), "expected no error output")
	}
}

func Test_main(t *testing.T) {
	for _, mt := range []mainTest{
		{name: "stdin", stdin: `2 3 + .`, out: "5 "},
		{name: "empty stdin"},
		{
			name:  "file",
			args:  []string{"-no-stdin", "$DIR/prog.fs"},
			files: map[string]string{"prog.fs": lines(`: SQUARE DUP * ;`, `7 SQUARE . CR`)},
			out:   "49 \n",
		},
		{
			name:  "files then stdin",
			args:  []string{"$DIR/a.fs", "$DIR/b.fs"},
			files: map[string]string{"a.fs": lines(`: A 65 EMIT ;`), "b.fs": lines(`: B A 66 EMIT ;`)},
			stdin: `B`,
			out:   "AB",
		},
		{
			name:  "program arguments",
			args:  []string{"-no-stdin", "$DIR/args.fs"},
			files: map[string]string{"args.fs": `ARGC . 0 ARGV TELL`},
			out:   "2 goforth",
		},
		{name: "exit status", stdin: `7 SYS_EXIT SYSCALL1`, code: 7},
		{name: "negative exit status", stdin: `-1 SYS_EXIT SYSCALL1`, code: 255},
		{name: "sandbox still exits", args: []string{"-sandbox"}, stdin: `SYS_WRITE SYSCALL0 . 3 SYS_EXIT SYSCALL1`, out: fmt.Sprintf("%d ", -sysgate.ENOSYS), code: 3},
		{
			name:   "no prelude",
			args:   []string{"-prelude=false"},
			stdin:  `1 .`,
			errOut: []string{"PARSE ERROR: .\n"},
		},
		{name: "fatal error", stdin: `1 0 /MOD`, code: 2, errOut: []string{"division by zero"}},
		{name: "timeout", args: []string{"-timeout", "50ms"}, stdin: `: SPIN BRANCH [ -8 , ] ; SPIN`, code: 2, errOut: []string{"deadline exceeded"}},
		{name: "stack depth", args: []string{"-stack", "2", "-prelude=false"}, stdin: `1 2 3`, code: 2, errOut: []string{"parameter stack overflow"}},
		{name: "dump", args: []string{"-dump"}, stdin: `1 2`, errOut: []string{"# VM Dump\n", "  stack: [1 2]\n"}},
		{name: "bad flag", args: []string{"-nope"}, code: 2, errOut: []string{"flag provided but not defined"}},
		{name: "missing file", args: []string{"$DIR/nope.fs"}, code: 1, errOut: []string{"nope.fs"}},
		{name: "load without image", args: []string{"-load", "base"}, code: 2, errOut: []string{"need an -image"}},
		{name: "list without image", args: []string{"-list-images"}, code: 2, errOut: []string{"need an -image"}},
	} {
		t.Run(mt.name, func(t *testing.T) { mt.run(t, t.TempDir()) })
	}
}

func Test_main_config(t *testing.T) {
	dir := t.TempDir()
	for _, mt := range []mainTest{
		{
			name:   "from file",
			args:   []string{"-config", "$DIR/goforth.toml"},
			files:  map[string]string{"goforth.toml": lines(`prelude = false`, `stack = 2`)},
			stdin:  `1 2 3`,
			code:   2,
			errOut: []string{"parameter stack overflow"},
		},
		{
			name:  "flags win",
			args:  []string{"-config", "$DIR/goforth.toml", "-stack", "16", "-prelude"},
			stdin: `1 2 3 .S`,
			out:   "3 2 1 ",
		},
		{
			name:   "yaml",
			args:   []string{"-config", "$DIR/goforth.yaml"},
			files:  map[string]string{"goforth.yaml": lines(`prelude: false`)},
			stdin:  `.`,
			errOut: []string{"PARSE ERROR: .\n"},
		},
	} {
		t.Run(mt.name, func(t *testing.T) { mt.run(t, dir) })
	}
}

func Test_main_images(t *testing.T) {
	dir := t.TempDir()
	for _, mt := range []mainTest{
		{
			name:   "save",
			args:   []string{"-image", "$DIR/images.db", "-save", "square"},
			stdin:  `: SQUARE DUP * ;`,
			errOut: []string{`saved image "square"`},
		},
		{
			name:  "load",
			args:  []string{"-image", "$DIR/images.db", "-load", "square"},
			stdin: `7 SQUARE .`,
			out:   "49 ",
		},
		{
			name:   "load missing",
			args:   []string{"-image", "$DIR/images.db", "-load", "cube"},
			code:   1,
			errOut: []string{"image not found"},
		},
		{
			name:   "failed runs are not saved",
			args:   []string{"-image", "$DIR/images.db", "-save", "cube"},
			stdin:  `: CUBE DUP DUP * * ; 1 0 /MOD`,
			code:   2,
			errOut: []string{"division by zero"},
		},
		{
			name:  "exit failures are not saved",
			args:  []string{"-image", "$DIR/images.db", "-save", "quad"},
			stdin: `: QUAD DUP * DUP * ; -1 SYS_EXIT SYSCALL1`,
			code:  255,
		},
		{
			name:   "quad missing",
			args:   []string{"-image", "$DIR/images.db", "-load", "quad"},
			code:   1,
			errOut: []string{"image not found"},
		},
		{
			name:   "still missing",
			args:   []string{"-image", "$DIR/images.db", "-load", "cube"},
			code:   1,
			errOut: []string{"image not found"},
		},
		{
			name:   "save another",
			args:   []string{"-image", "$DIR/images.db", "-save", "answer", "-no-stdin", "$DIR/answer.fs"},
			files:  map[string]string{"answer.fs": `: ANSWER 42 ;`},
			errOut: []string{`saved image "answer"`},
		},
		{
			name: "list",
			args: []string{"-image", "$DIR/images.db", "-list-images"},
			out:  "answer\nsquare\n",
		},
		{
			name:   "delete",
			args:   []string{"-image", "$DIR/images.db", "-delete-image", "square", "-list-images"},
			out:    "answer\n",
			errOut: []string{`deleted image "square"`},
		},
		{
			name:   "deleted",
			args:   []string{"-image", "$DIR/images.db", "-load", "square"},
			code:   1,
			errOut: []string{"image not found"},
		},
		{
			name:  "list does not run",
			args:  []string{"-image", "$DIR/images.db", "-list-images"},
			stdin: `1 0 /MOD`,
			out:   "answer\n",
		},
	} {
		t.Run(mt.name, func(t *testing.T) { mt.run(t, dir) })
	}
}
