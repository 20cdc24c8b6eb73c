package main

import (
	"context"
	"flag"
	"fmt"

	"golang.org/x/xerrors"

	"github.com/symc/symcache/internal/fixture"
	"github.com/symc/symcache/writer"
)

const buildHelp = `symcache build -fixture session.yaml -out out.symcache

Build builds a SymCache file from a YAML debug session fixture (see
internal/fixture for the schema) and writes it atomically to -out.`

func cmdBuild(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("build", flag.ExitOnError)
	fixturePath := fset.String("fixture", "", "path to a YAML debug session fixture")
	out := fset.String("out", "", "path to write the SymCache file to")
	fset.Usage = usage(fset, buildHelp)
	if err := fset.Parse(args); err != nil {
		return err
	}
	if *fixturePath == "" || *out == "" {
		fset.Usage()
		return fmt.Errorf("build: -fixture and -out are required")
	}

	sess, err := fixture.LoadFile(*fixturePath)
	if err != nil {
		return err
	}

	w := writer.New()
	if err := w.Build(sess); err != nil {
		return xerrors.Errorf("building cache: %w", err)
	}
	if err := w.WriteFile(*out); err != nil {
		return xerrors.Errorf("writing %s: %w", *out, err)
	}
	fmt.Printf("wrote %s\n", *out)
	return nil
}
