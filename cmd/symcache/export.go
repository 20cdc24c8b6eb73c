package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/renameio"
	"github.com/klauspost/pgzip"
)

const exportHelp = `symcache export -out out.symcache.gz file.symcache

Export gzip-compresses a SymCache file for distribution via the serve command or a
plain static file server, using parallel gzip so large caches compress
quickly.`

func cmdExport(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("export", flag.ExitOnError)
	out := fset.String("out", "", "path to write the compressed file to")
	fset.Usage = usage(fset, exportHelp)
	if err := fset.Parse(args); err != nil {
		return err
	}
	if *out == "" || fset.NArg() != 1 {
		fset.Usage()
		return fmt.Errorf("export: -out and exactly one input file are required")
	}

	in, err := os.Open(fset.Arg(0))
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := renameio.TempFile("", *out)
	if err != nil {
		return err
	}
	defer tmp.Cleanup()

	zw := pgzip.NewWriter(tmp)
	if _, err := io.Copy(zw, in); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	if err := tmp.CloseAtomicallyReplace(); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", *out)
	return nil
}
