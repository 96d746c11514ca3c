package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/jcorbin/goforth/internal/config"
	"github.com/jcorbin/goforth/internal/console"
	"github.com/jcorbin/goforth/internal/image"
	"github.com/jcorbin/goforth/internal/logio"
	"github.com/jcorbin/goforth/internal/sysgate"
)

func main() {
	var log logio.Logger
	log.SetOutput(os.Stderr)
	code := run(context.Background(), &log, stdio{os.Stdin, os.Stdout, os.Stderr}, os.Args[1:])
	if lc := log.ExitCode(); code == 0 && lc != 0 {
		code = lc
	}
	os.Exit(code)
}

type stdio struct {
	in       io.Reader
	out, err io.Writer
}

func run(ctx context.Context, log *logio.Logger, std stdio, args []string) int {
	flags := flag.NewFlagSet("goforth", flag.ContinueOnError)
	flags.SetOutput(std.err)

	cfg := config.Default()
	var (
		configPath  string
		dump        bool
		noStdin     bool
		listImages  bool
		deleteImage string
	)
	flags.StringVar(&configPath, "config", "", "load settings from a TOML or YAML file")
	flags.BoolVar(&cfg.Trace, "trace", cfg.Trace, "enable trace logging")
	flags.DurationVar(&cfg.Timeout.Duration, "timeout", cfg.Timeout.Duration, "specify a time limit")
	flags.UintVar(&cfg.MemLimit, "mem-limit", cfg.MemLimit, "memory limit in bytes")
	flags.UintVar(&cfg.PageSize, "page-size", cfg.PageSize, "memory growth increment in bytes")
	flags.UintVar(&cfg.Stack, "stack", cfg.Stack, "parameter stack depth in cells")
	flags.UintVar(&cfg.RStack, "rstack", cfg.RStack, "return stack depth in cells")
	flags.BoolVar(&cfg.Prelude, "prelude", cfg.Prelude, "load the prelude library")
	flags.BoolVar(&cfg.Sandbox, "sandbox", cfg.Sandbox, "deny host system calls other than exit and brk")
	flags.StringVar(&cfg.History, "history", cfg.History, "console history file")
	flags.StringVar(&cfg.Image.Path, "image", cfg.Image.Path, "image database path")
	flags.StringVar(&cfg.Image.Load, "load", cfg.Image.Load, "restore the named image instead of booting")
	flags.StringVar(&cfg.Image.Save, "save", cfg.Image.Save, "save an image under this name after a clean run")
	flags.BoolVar(&listImages, "list-images", false, "print the names of saved images and exit")
	flags.StringVar(&deleteImage, "delete-image", "", "delete the named image and exit")
	flags.BoolVar(&dump, "dump", false, "print a VM dump to stderr after running")
	flags.BoolVar(&noStdin, "no-stdin", false, "do not read standard input after any files")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	if configPath != "" {
		fileCfg, err := config.Load(configPath)
		if err != nil {
			log.Errorf("%v", err)
			return 1
		}
		// explicit flags win over the file
		explicit := cfg
		cfg = *fileCfg
		flags.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "trace":
				cfg.Trace = explicit.Trace
			case "timeout":
				cfg.Timeout = explicit.Timeout
			case "mem-limit":
				cfg.MemLimit = explicit.MemLimit
			case "page-size":
				cfg.PageSize = explicit.PageSize
			case "stack":
				cfg.Stack = explicit.Stack
			case "rstack":
				cfg.RStack = explicit.RStack
			case "prelude":
				cfg.Prelude = explicit.Prelude
			case "sandbox":
				cfg.Sandbox = explicit.Sandbox
			case "history":
				cfg.History = explicit.History
			case "image":
				cfg.Image.Path = explicit.Image.Path
			case "load":
				cfg.Image.Load = explicit.Image.Load
			case "save":
				cfg.Image.Save = explicit.Image.Save
			}
		})
	}

	var vm *VM
	opts := []VMOption{
		WithOutput(std.out),
		WithErrOutput(std.err),
		WithMemLimit(cfg.MemLimit),
		WithPageSize(cfg.PageSize),
		WithStackDepth(cfg.Stack, cfg.RStack),
		WithArgs(append([]string{flags.Name()}, flags.Args()...)...),
	}
	if cfg.Trace {
		opts = append(opts, WithLogf(log.Leveledf("TRACE")))
	}
	if cfg.Sandbox {
		opts = append(opts, WithSyscalls(sysgate.Null{}))
	}

	var store *image.Store
	if cfg.Image.Path != "" {
		var err error
		if store, err = image.Open(cfg.Image.Path); err != nil {
			log.Errorf("%v", err)
			return 1
		}
		defer func() { log.ErrorIf(store.Close()) }()
	} else if cfg.Image.Load != "" || cfg.Image.Save != "" || listImages || deleteImage != "" {
		log.Errorf("-load, -save, -list-images and -delete-image need an -image database")
		return 2
	}
	if listImages || deleteImage != "" {
		return manageImages(log, std.out, store, listImages, deleteImage)
	}
	if cfg.Image.Load != "" {
		img, err := store.Load(cfg.Image.Load)
		if err != nil {
			log.Errorf("%v", err)
			return 1
		}
		opts = append(opts, WithImage(img))
	} else if cfg.Prelude {
		opts = append(opts, WithInputWriter(preludeKernel))
	}

	files := flags.Args()
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			log.Errorf("%v", err)
			return 1
		}
		opts = append(opts, WithInput(f))
	}
	if !noStdin {
		if f, isFile := std.in.(*os.File); isFile && len(files) == 0 && console.IsTerminal(f) {
			con, err := console.Open(console.Config{
				HistoryFile: cfg.History,
				Prompt: func() string {
					if vm != nil && vm.Compiling() {
						return "] "
					}
					return console.DefaultPrompt
				},
			})
			if err != nil {
				log.Errorf("%v", err)
				return 1
			}
			opts = append(opts, WithInput(con))
		} else {
			opts = append(opts, WithInput(io.NopCloser(std.in)))
		}
	}

	vm = New(opts...)
	defer func() { log.ErrorIf(vm.Close()) }()

	if cfg.Timeout.Duration != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout.Duration)
		defer cancel()
	}

	err := vm.Run(ctx)
	if dump {
		vmDumper{vm: vm, out: std.err}.dump()
	}

	code := exitCode(err)
	if code != 0 {
		var exit sysgate.ExitError
		if !errors.As(err, &exit) {
			log.Errorf("%+v", err)
		}
		return code
	}

	if cfg.Image.Save != "" {
		img, err := vm.Snapshot()
		if err == nil {
			err = store.Save(cfg.Image.Save, img)
		}
		if err != nil {
			log.Errorf("%v", err)
			return 1
		}
		log.Printf("", "saved image %q", cfg.Image.Save)
	}
	return 0
}

// exitCode maps a Run result to a process exit status.
func manageImages(log *logio.Logger, out io.Writer, store *image.Store, list bool, del string) int {
	if del != "" {
		if err := store.Delete(del); err != nil {
			log.Errorf("%v", err)
			return 1
		}
		log.Printf("", "deleted image %q", del)
	}
	if list {
		names, err := store.List()
		if err != nil {
			log.Errorf("%v", err)
			return 1
		}
		for _, name := range names {
			fmt.Fprintln(out, name)
		}
	}
	return 0
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exit sysgate.ExitError
	if errors.As(err, &exit) {
		return int(exit) & 0xff
	}
	var inErr inputError
	if errors.As(err, &inErr) {
		return 1
	}
	return 2
}
