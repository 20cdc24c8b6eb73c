package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/symc/symcache/lookup"
)

const inspectHelp = `symcache inspect file.symcache

Inspect prints a SymCache file's header fields: debug id, architecture
and table sizes.`

func cmdInspect(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("inspect", flag.ExitOnError)
	fset.Usage = usage(fset, inspectHelp)
	if err := fset.Parse(args); err != nil {
		return err
	}
	if fset.NArg() != 1 {
		fset.Usage()
		return fmt.Errorf("inspect: exactly one file argument required")
	}

	sc, err := lookup.OpenFile(fset.Arg(0))
	if err != nil {
		return err
	}
	defer sc.Close()

	fmt.Printf("debug id:  %s\n", sc.DebugId())
	fmt.Printf("arch:      %s\n", sc.Arch())
	fmt.Printf("files:     %d\n", sc.NumFiles())
	fmt.Printf("functions: %d\n", sc.NumFunctions())
	fmt.Printf("ranges:    %d\n", sc.NumRanges())
	return nil
}
