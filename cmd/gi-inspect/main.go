package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/gireflect/gi"
	"github.com/wippyai/gireflect/luahost"
	"github.com/wippyai/gireflect/typelib"
)

type options struct {
	namespace string
	version   string
	dir       string
	path      string
	symbol    string
	script    string
	chunk     string
	noDefault bool
	verbose   bool
}

func main() {
	var (
		opts        options
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.StringVar(&opts.namespace, "ns", "", "Namespace to load")
	flag.StringVar(&opts.version, "version", "", "Namespace version (optional)")
	flag.StringVar(&opts.dir, "dir", "", "Directory holding the namespace; dependencies still use the search path")
	flag.StringVar(&opts.path, "path", "", "Extra search directories (comma-separated)")
	flag.StringVar(&opts.symbol, "symbol", "", "Describe one symbol (dotted for members: Object.signals.notify)")
	flag.StringVar(&opts.script, "lua", "", "Run a Lua script with the gi table installed")
	flag.StringVar(&opts.chunk, "e", "", "Run a Lua chunk with the gi table installed")
	flag.BoolVar(&opts.noDefault, "no-default-path", false, "Ignore GI_TYPELIB_PATH and system directories")
	flag.BoolVar(&opts.verbose, "v", false, "Verbose logging")
	flag.Parse()

	if opts.namespace == "" && opts.script == "" && opts.chunk == "" {
		fmt.Fprintln(os.Stderr, "Usage: gi-inspect -ns <Namespace> [-version V] [-dir D] [-symbol S]")
		fmt.Fprintln(os.Stderr, "       gi-inspect -lua <script.lua> | -e <chunk>")
		fmt.Fprintln(os.Stderr, "       gi-inspect -ns <Namespace> -i  (interactive mode)")
		os.Exit(1)
	}

	log := zap.NewNop()
	if opts.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		log = l
	}
	defer log.Sync() //nolint:errcheck

	st := newState(opts, log)
	defer st.Close()

	var err error
	switch {
	case opts.script != "" || opts.chunk != "":
		err = runLua(st, opts, log)
	case *interactive:
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			err = fmt.Errorf("interactive mode needs a terminal")
			break
		}
		err = runInteractive(st, opts)
	default:
		err = run(st, opts, term.IsTerminal(int(os.Stdout.Fd())))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newState(opts options, log *zap.Logger) *gi.State {
	repoOpts := []typelib.Option{typelib.WithLogger(log)}
	if opts.noDefault {
		repoOpts = append(repoOpts, typelib.WithoutDefaultPath())
	}
	if opts.path != "" {
		repoOpts = append(repoOpts, typelib.WithSearchPath(strings.Split(opts.path, ",")...))
	}
	return gi.NewState(typelib.NewRepository(repoOpts...), gi.WithLogger(log))
}

func run(st *gi.State, opts options, styled bool) error {
	ns, err := st.Require(opts.namespace, opts.version, opts.dir)
	if err != nil {
		return fmt.Errorf("require %s: %w", opts.namespace, err)
	}

	p := newPrinter(os.Stdout, styled)
	if opts.symbol == "" {
		p.namespace(ns)
		return nil
	}

	info, err := resolve(ns, opts.symbol)
	if err != nil {
		return err
	}
	defer info.Release()
	p.info(info)
	return nil
}

// resolve walks a dotted path: the first element is a top-level symbol, the
// rest alternate between a collection property and a member name.
func resolve(ns *gi.Namespace, path string) (*gi.Info, error) {
	parts := strings.Split(path, ".")
	info, ok := ns.Get(parts[0]).(*gi.Info)
	if !ok {
		return nil, fmt.Errorf("%s.%s not found", ns.Name(), parts[0])
	}
	for i := 1; i < len(parts); i += 2 {
		v, ok := info.Index(parts[i]).(*gi.Infos)
		if !ok {
			info.Release()
			return nil, fmt.Errorf("%s has no collection %q", info.FullName(), parts[i])
		}
		info.Release()
		if i+1 >= len(parts) {
			v.Release()
			return nil, fmt.Errorf("missing member name after %q", parts[i])
		}
		next, err := v.Get(parts[i+1])
		v.Release()
		if err != nil {
			return nil, err
		}
		info = next
	}
	return info, nil
}

func runLua(st *gi.State, opts options, log *zap.Logger) error {
	L := lua.NewState()
	defer L.Close()

	h := luahost.Open(L, st, luahost.WithLogger(log))
	defer h.Close()

	if opts.script != "" {
		if err := L.DoFile(opts.script); err != nil {
			return fmt.Errorf("run %s: %w", opts.script, err)
		}
	}
	if opts.chunk != "" {
		if err := L.DoString(opts.chunk); err != nil {
			return fmt.Errorf("run chunk: %w", err)
		}
	}
	return nil
}
