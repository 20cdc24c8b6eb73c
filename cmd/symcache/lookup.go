package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"golang.org/x/xerrors"

	"github.com/symc/symcache"
	"github.com/symc/symcache/lookup"
)

const lookupHelp = `symcache lookup file.symcache 0xADDR [0xADDR...]

Lookup resolves one or more relative addresses against a SymCache file
and prints the inline call chain covering each, innermost frame first.`

func cmdLookup(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("lookup", flag.ExitOnError)
	fset.Usage = usage(fset, lookupHelp)
	if err := fset.Parse(args); err != nil {
		return err
	}
	if fset.NArg() < 2 {
		fset.Usage()
		return fmt.Errorf("lookup: a file and at least one address are required")
	}

	sc, err := lookup.OpenFile(fset.Arg(0))
	if err != nil {
		return err
	}
	defer sc.Close()

	for _, arg := range fset.Args()[1:] {
		addr, err := strconv.ParseUint(arg, 0, 32)
		if err != nil {
			return xerrors.Errorf("parsing address %q: %w", arg, err)
		}
		frames, err := lookup.Frames(sc, symcache.RelativeAddress(addr))
		if err != nil {
			return xerrors.Errorf("resolving %s: %w", arg, err)
		}
		fmt.Printf("%s:\n", arg)
		if len(frames) == 0 {
			fmt.Printf("  <no coverage>\n")
			continue
		}
		for _, fr := range frames {
			fmt.Printf("  %s at %s:%d (%s)\n", fr.FunctionName, fr.File, fr.Line, fr.Language)
		}
	}
	return nil
}
