package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/Connoropolous/multiblob"
)

func (c maincmd) put(ctx context.Context, fs *flag.FlagSet, args []string) error {
	expect := fs.String("expect", "", "fail unless the content hashes to this ref")
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	in := os.Stdin
	if fs.NArg() > 0 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			return errors.Wrapf(err, "opening %s", fs.Arg(0))
		}
		defer f.Close()
		in = f
	}

	ref, err := multiblob.Put(ctx, c.s, in, multiblob.Ref(*expect))
	if err != nil {
		return errors.Wrap(err, "storing blob")
	}

	fmt.Println(ref)
	return nil
}

func (c maincmd) rm(ctx context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}
	if fs.NArg() == 0 {
		return errors.New("missing ref")
	}
	for _, arg := range fs.Args() {
		if err = c.s.Rm(ctx, multiblob.Ref(arg)); err != nil {
			return errors.Wrapf(err, "removing %s", arg)
		}
	}
	return nil
}
