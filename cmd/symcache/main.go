// Command symcache builds and inspects SymCache files: compact,
// memory-mappable artifacts mapping instruction addresses to source
// locations.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"syscall"
)

var (
	debug      = flag.Bool("debug", false, "format error messages with additional detail")
	cpuprofile = flag.String("cpuprofile", "", "path to store a CPU profile at")
	memprofile = flag.String("memprofile", "", "path to store a memory profile at when the command fails")
)

type cmd struct {
	fn func(ctx context.Context, args []string) error
}

func funcmain() error {
	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return err
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	verbs := map[string]cmd{
		"build":   {cmdBuild},
		"inspect": {cmdInspect},
		"lookup":  {cmdLookup},
		"export":  {cmdExport},
		"serve":   {cmdServe},
	}

	args := flag.Args()
	verb := "inspect"
	if len(args) > 0 {
		verb, args = args[0], args[1:]
	}

	if verb == "help" {
		fmt.Fprintf(os.Stderr, "symcache [-flags] <command> [-flags] <args>\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "\tbuild   - build a SymCache file from a YAML debug session fixture\n")
		fmt.Fprintf(os.Stderr, "\tinspect - print a SymCache file's header\n")
		fmt.Fprintf(os.Stderr, "\tlookup  - resolve an address against a SymCache file\n")
		fmt.Fprintf(os.Stderr, "\texport  - gzip-compress a SymCache file for distribution\n")
		fmt.Fprintf(os.Stderr, "\tserve   - serve a directory of SymCache files over HTTP\n")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v, ok := verbs[verb]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", verb)
		fmt.Fprintf(os.Stderr, "syntax: symcache <command> [options]\n")
		os.Exit(2)
	}

	if err := v.fn(ctx, args); err != nil {
		if *memprofile != "" {
			f, ferr := os.Create(*memprofile)
			if ferr != nil {
				log.Fatal("could not create memory profile: ", ferr)
			}
			defer f.Close()
			runtime.GC()
			if werr := pprof.WriteHeapProfile(f); werr != nil {
				log.Fatal("could not write memory profile: ", werr)
			}
		}
		if *debug {
			return fmt.Errorf("%s: %+v", verb, err)
		}
		return fmt.Errorf("%s: %v", verb, err)
	}

	return nil
}

func main() {
	if err := funcmain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
