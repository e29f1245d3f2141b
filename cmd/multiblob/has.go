package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/h2non/filetype"
	"github.com/pkg/errors"

	"github.com/Connoropolous/multiblob"
)

func refArgs(fs *flag.FlagSet) ([]multiblob.Ref, error) {
	if fs.NArg() == 0 {
		return nil, errors.New("missing ref")
	}
	refs := make([]multiblob.Ref, 0, fs.NArg())
	for _, arg := range fs.Args() {
		refs = append(refs, multiblob.Ref(arg))
	}
	return refs, nil
}

func (c maincmd) has(ctx context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}
	refs, err := refArgs(fs)
	if err != nil {
		return err
	}

	has, err := multiblob.HasMulti(ctx, c.s, refs)
	for i, ref := range refs {
		fmt.Printf("%s %v\n", ref, has[i])
	}
	return err
}

func (c maincmd) size(ctx context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}
	refs, err := refArgs(fs)
	if err != nil {
		return err
	}

	sizes, found, err := multiblob.SizeMulti(ctx, c.s, refs)
	for i, ref := range refs {
		if found[i] {
			fmt.Printf("%s %d\n", ref, sizes[i])
		} else {
			fmt.Printf("%s -\n", ref)
		}
	}
	return err
}

// Enough of a blob's head for filetype to recognize it.
const sniffLen = 262

func (c maincmd) meta(ctx context.Context, fs *flag.FlagSet, args []string) error {
	sniff := fs.Bool("type", false, "also report the content type, from the blob's first bytes")
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}
	refs, err := refArgs(fs)
	if err != nil {
		return err
	}

	for _, ref := range refs {
		m, err := c.s.Meta(ctx, ref)
		if err != nil {
			return errors.Wrapf(err, "getting meta for %s", ref)
		}
		if m == nil {
			fmt.Printf("%s -\n", ref)
			continue
		}
		line := fmt.Sprintf("%s %d %s", ref, m.Size, m.Created.Format(time.RFC3339))
		if *sniff {
			typ, err := c.sniff(ctx, ref)
			if err != nil {
				return err
			}
			line += " " + typ
		}
		fmt.Println(line)
	}
	return nil
}

func (c maincmd) sniff(ctx context.Context, ref multiblob.Ref) (string, error) {
	r, err := c.s.Get(ctx, ref)
	if err != nil {
		return "", errors.Wrapf(err, "getting blob %s", ref)
	}
	defer r.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", errors.Wrapf(err, "reading blob %s", ref)
	}

	kind, err := filetype.Match(head[:n])
	if err != nil || kind == filetype.Unknown {
		return "application/octet-stream", nil
	}
	return kind.MIME.Value, nil
}
