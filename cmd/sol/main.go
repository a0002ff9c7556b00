// SOL CLI - runs SOL25 programs given in SOL-XML form
package main

import (
	"bufio"
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/sol/cache"
	"github.com/chazu/sol/loader"
	"github.com/chazu/sol/manifest"
	"github.com/chazu/sol/pkg/ast"
	"github.com/chazu/sol/vm"

	_ "github.com/tliron/commonlog/simple"
)

// imageExt marks precompiled program images.
const imageExt = ".solc"

var log = commonlog.GetLogger("sol")

type options struct {
	source  string
	input   string
	entry   string
	compile string
	noCache bool
	verbose bool
}

func main() {
	var opts options
	flag.StringVar(&opts.source, "source", "", "SOL-XML source or .solc image (default: manifest, else stdin)")
	flag.StringVar(&opts.input, "input", "", "File read by String read (default: manifest, else stdin)")
	flag.StringVar(&opts.entry, "entry", "", "Entry point as Class.selector (default Main.run)")
	flag.StringVar(&opts.compile, "compile", "", "Write the loaded program as an image to this file and exit")
	flag.BoolVar(&opts.noCache, "no-cache", false, "Do not use the program image cache")
	flag.BoolVar(&opts.verbose, "v", false, "Verbose output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sol [options]\n\n")
		fmt.Fprintf(os.Stderr, "Loads a SOL25 program and runs its entry method.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  sol -source prog.xml -input data.txt   # Run Main.run\n")
		fmt.Fprintf(os.Stderr, "  sol -source prog.xml -entry App.start  # Run App.start\n")
		fmt.Fprintf(os.Stderr, "  sol -source prog.xml -compile prog.solc\n")
		fmt.Fprintf(os.Stderr, "  sol -source prog.solc < data.txt\n")
	}
	flag.Parse()

	os.Exit(run(opts))
}

// run executes the CLI and returns the process status.
func run(opts options) int {
	m, err := manifest.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return vm.StatusHost
	}
	if m == nil {
		m = manifest.Default()
	}

	configureLogging(m, opts.verbose)

	sourcePath := opts.source
	if sourcePath == "" {
		sourcePath = m.SourcePath()
	}
	inputPath := opts.input
	if inputPath == "" {
		inputPath = m.InputPath()
	}
	if sourcePath == "" && inputPath == "" {
		fmt.Fprintf(os.Stderr, "Error: at least one of -source and -input is required\n")
		flag.Usage()
		return vm.StatusHost
	}

	className, selector, err := parseEntry(opts.entry, m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return vm.StatusHost
	}

	prog, err := loadProgram(sourcePath, m, opts.noCache)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return vm.StatusOf(err)
	}

	if opts.compile != "" {
		if err := writeImage(opts.compile, prog); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return vm.StatusHost
		}
		if opts.verbose {
			fmt.Fprintf(os.Stderr, "Wrote %s\n", opts.compile)
		}
		return vm.StatusOK
	}

	var in io.Reader = os.Stdin
	if inputPath != "" {
		f, err := os.Open(inputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot read input: %v\n", err)
			return vm.StatusHost
		}
		defer f.Close()
		in = f
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	machine := vm.NewVM(
		vm.WithInput(vm.NewLineReader(in)),
		vm.WithOutput(out),
	)
	if _, err := machine.RunProgram(prog, className, selector); err != nil {
		out.Flush()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return vm.StatusOf(err)
	}
	return vm.StatusOK
}

func configureLogging(m *manifest.Manifest, verbose bool) {
	verbosity := m.Log.Verbosity
	if verbose && verbosity < 2 {
		verbosity = 2
	}
	var path *string
	if p := m.LogPath(); p != "" {
		path = &p
	}
	commonlog.Configure(verbosity, path)
}

// parseEntry splits "Class.selector"; either part may be omitted.
func parseEntry(entry string, m *manifest.Manifest) (string, string, error) {
	className, selector := m.Program.EntryClass, m.Program.EntrySelector
	if entry == "" {
		return className, selector, nil
	}
	if !strings.Contains(entry, ".") {
		return entry, selector, nil
	}
	parts := strings.SplitN(entry, ".", 2)
	if parts[0] != "" {
		className = parts[0]
	}
	if parts[1] != "" {
		selector = parts[1]
	}
	if strings.Contains(selector, ".") {
		return "", "", fmt.Errorf("invalid entry point %q", entry)
	}
	return className, selector, nil
}

// loadProgram reads the program from path, or from stdin when path is
// empty. Images are decoded directly; SOL-XML goes through the cache.
func loadProgram(path string, m *manifest.Manifest, noCache bool) (*ast.Program, error) {
	var data []byte
	var err error
	if path == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read source: %w", err)
	}

	if filepath.Ext(path) == imageExt {
		p, err := ast.UnmarshalProgram(data)
		if err != nil {
			return nil, fmt.Errorf("cannot load image %s: %w", path, err)
		}
		return p, nil
	}

	if noCache || !m.CacheEnabled() {
		return loader.Load(bytes.NewReader(data))
	}

	store, err := openCache(m)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	digest := cache.Digest(data)
	p, err := store.Get(digest)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, cache.ErrNotFound) {
		log.Warningf("ignoring cache: %v", err)
	}

	p, err = loader.Load(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := store.Put(digest, p); err != nil {
		return nil, err
	}
	return p, nil
}

// openCache opens the image cache and drops images older than the
// manifest's max-age.
func openCache(m *manifest.Manifest) (*cache.Store, error) {
	maxAge, err := m.CacheMaxAge()
	if err != nil {
		return nil, err
	}
	store, err := cache.Open(m.CachePath())
	if err != nil {
		return nil, err
	}
	log.Debugf("using image cache %s", store.Path())
	if maxAge > 0 {
		if _, err := store.Prune(maxAge); err != nil {
			store.Close()
			return nil, err
		}
	}
	return store, nil
}

func writeImage(path string, p *ast.Program) error {
	data, err := ast.MarshalProgram(p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write image: %w", err)
	}
	return nil
}
