package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/Connoropolous/multiblob"
)

func (c maincmd) ls(ctx context.Context, fs *flag.FlagSet, args []string) error {
	var (
		old  = fs.Bool("old", true, "list existing blobs")
		live = fs.Bool("live", false, "follow new blobs until interrupted")
		long = fs.Bool("long", false, "show size and creation time")
		meta = fs.Bool("meta", false, "same as -long")
		size = fs.Bool("size", false, "same as -long")
	)
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	opts := multiblob.LsOptions{Old: *old, Live: *live, Meta: *long || *meta || *size}
	err = c.s.Ls(ctx, opts, func(e multiblob.Entry) error {
		switch {
		case e.Sync:
			log.Print("listed existing blobs, following new ones")
		case e.Meta != nil:
			fmt.Printf("%s %d %s\n", e.Ref, e.Meta.Size, e.Meta.Created.Format(time.RFC3339))
		default:
			fmt.Println(e.Ref)
		}
		return nil
	})
	if *live && errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
