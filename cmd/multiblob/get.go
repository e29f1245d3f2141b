package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/Connoropolous/multiblob"
)

func (c maincmd) get(ctx context.Context, fs *flag.FlagSet, args []string) error {
	var (
		size = fs.Int64("size", -1, "fail unless the blob has exactly this size")
		max  = fs.Int64("max", -1, "fail if the blob is larger than this")
	)
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}
	if fs.NArg() != 1 {
		return errors.New("usage: get [-size N] [-max N] REF")
	}
	ref := multiblob.Ref(fs.Arg(0))

	var q multiblob.Query = ref
	if *size >= 0 || *max >= 0 {
		opts := multiblob.GetOptions{Ref: ref}
		if *size >= 0 {
			opts.Size = size
		}
		if *max >= 0 {
			opts.Max = max
		}
		q = opts
	}

	r, err := c.s.Get(ctx, q)
	if err != nil {
		return errors.Wrapf(err, "getting blob %s", ref)
	}
	defer r.Close()

	_, err = io.Copy(os.Stdout, r)
	return errors.Wrap(err, "writing blob to stdout")
}

// resolve prints the file holding a blob,
// for stores that keep blobs in files.
func (c maincmd) resolve(ctx context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}
	if fs.NArg() == 0 {
		return errors.New("missing ref")
	}

	resolver, ok := c.s.(interface {
		Resolve(multiblob.Ref) (string, error)
	})
	if !ok {
		return fmt.Errorf("a %T store does not keep blobs in files", c.s)
	}

	for _, arg := range fs.Args() {
		path, err := resolver.Resolve(multiblob.Ref(arg))
		if err != nil {
			return errors.Wrapf(err, "resolving %s", arg)
		}
		fmt.Println(path)
	}
	return nil
}
