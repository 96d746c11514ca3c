//go:build ignore

// gen_vm_expects writes a free function wrapper for every vmTestCase
// with... and expect... builder method, so that layered kernel tests can
// pass them around as func(vmTestCase) vmTestCase values.
//
// Usage: go run scripts/gen_vm_expects.go -- vm_test.go vm_expects_test.go
package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/net/context"
	"golang.org/x/sync/errgroup"
)

var inName = "vm_test.go"

var (
	out     io.Writer = os.Stdout
	outFile *os.File
)

func parseFlags() {
	flag.Parse()
	args := flag.Args()
	if len(args) > 0 {
		inName, args = args[0], args[1:]
	}
	if len(args) > 0 {
		f, err := os.Create(args[0])
		if err != nil {
			log.Fatalf("failed to create %v: %v", args[0], err)
		}
		outFile = f
		out = f
	}
}

func main() {
	ctx := context.Background()
	parseFlags()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	src, err := generate()
	if err != nil {
		log.Fatalln(err)
	}

	eg, ctx := errgroup.WithContext(ctx)
	pr, pw := io.Pipe()

	eg.Go(func() error {
		fmter := exec.CommandContext(ctx, "goimports")
		fmter.Stdin = pr
		fmter.Stdout = out
		fmter.Stderr = os.Stderr
		if err := fmter.Run(); err != nil {
			return fmt.Errorf("goimports run failed: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		_, err := pw.Write(src)
		pw.CloseWithError(err)
		return err
	})

	err = eg.Wait()
	if outFile != nil {
		if cerr := outFile.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		log.Fatalln(err)
	}
}

func generate() ([]byte, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, inName, nil, 0)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("package main\n\n")
	buf.WriteString("// @generated from ")
	buf.WriteString(inName)
	buf.WriteString("\n\n")
	if args := flag.Args(); len(args) >= 2 {
		buf.WriteString("//go:generate go run scripts/gen_vm_expects.go --")
		for _, arg := range args {
			buf.WriteByte(' ')
			buf.WriteString(arg)
		}
		buf.WriteString("\n\n")
	}

	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || !isBuilder(fn) {
			continue
		}
		name := fn.Name.Name
		base, what := "with", strings.TrimPrefix(name, "with")
		if strings.HasPrefix(name, "expect") {
			base, what = "expect", strings.TrimPrefix(name, "expect")
		}

		var params, call []string
		for _, field := range fn.Type.Params.List {
			typ := exprString(fset, field.Type)
			for _, id := range field.Names {
				params = append(params, id.Name+" "+typ)
				if _, variadic := field.Type.(*ast.Ellipsis); variadic {
					call = append(call, id.Name+"...")
				} else {
					call = append(call, id.Name)
				}
			}
		}

		fmt.Fprintf(&buf, "func %vVM%v(%v) func(vmTestCase) vmTestCase {\n", base, what, strings.Join(params, ", "))
		fmt.Fprintf(&buf, "\treturn func(vmt vmTestCase) vmTestCase {\n")
		fmt.Fprintf(&buf, "\t\treturn vmt.%v(%v)\n", name, strings.Join(call, ", "))
		fmt.Fprintf(&buf, "\t}\n}\n\n")
	}
	return buf.Bytes(), nil
}

// isBuilder matches methods like
//
//	func (vmt vmTestCase) withX(args...) vmTestCase
//	func (vmt vmTestCase) expectX(args...) vmTestCase
//
// that take at least one argument.
func isBuilder(fn *ast.FuncDecl) bool {
	if fn.Recv == nil || len(fn.Recv.List) != 1 {
		return false
	}
	if id, ok := fn.Recv.List[0].Type.(*ast.Ident); !ok || id.Name != "vmTestCase" {
		return false
	}
	if res := fn.Type.Results; res == nil || len(res.List) != 1 {
		return false
	} else if id, ok := res.List[0].Type.(*ast.Ident); !ok || id.Name != "vmTestCase" {
		return false
	}
	if fn.Type.Params.NumFields() == 0 {
		return false
	}
	name := fn.Name.Name
	return strings.HasPrefix(name, "with") || strings.HasPrefix(name, "expect")
}

func exprString(fset *token.FileSet, expr ast.Expr) string {
	var buf bytes.Buffer
	printer.Fprint(&buf, fset, expr)
	return buf.String()
}
