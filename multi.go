package multiblob

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// HasMulti calls g.Has concurrently for each ref.
// The result is parallel to refs.
// The returned error, if any, is a MultiErr
// mapping individual refs to errors encountered checking them;
// every other position in the result is still filled in.
// Absent blobs are not errors.
func HasMulti(ctx context.Context, g Getter, refs []Ref) ([]bool, error) {
	type triple struct {
		i   int
		has bool
		err error
	}

	var (
		res = make([]bool, len(refs))
		ch  = make(chan triple)
	)

	for i, ref := range refs {
		i, ref := i, ref
		go func() {
			has, err := g.Has(ctx, ref)
			ch <- triple{i: i, has: has, err: err}
		}()
	}

	var errmap MultiErr

	for range refs {
		trip := <-ch
		if trip.err != nil {
			if errmap == nil {
				errmap = make(MultiErr)
			}
			errmap[refs[trip.i]] = trip.err
			continue
		}
		res[trip.i] = trip.has
	}

	if errmap != nil {
		return res, errmap
	}
	return res, nil
}

// SizeMulti calls g.Size concurrently for each ref.
// The results are parallel to refs:
// sizes[i] is meaningful only when found[i] is true.
// Errors are reported as in HasMulti.
func SizeMulti(ctx context.Context, g Getter, refs []Ref) (sizes []int64, found []bool, err error) {
	type quad struct {
		i     int
		size  int64
		found bool
		err   error
	}

	sizes = make([]int64, len(refs))
	found = make([]bool, len(refs))
	ch := make(chan quad)

	for i, ref := range refs {
		i, ref := i, ref
		go func() {
			size, ok, err := g.Size(ctx, ref)
			ch <- quad{i: i, size: size, found: ok, err: err}
		}()
	}

	var errmap MultiErr

	for range refs {
		q := <-ch
		if q.err != nil {
			if errmap == nil {
				errmap = make(MultiErr)
			}
			errmap[refs[q.i]] = q.err
			continue
		}
		sizes[q.i], found[q.i] = q.size, q.found
	}

	if errmap != nil {
		return sizes, found, errmap
	}
	return sizes, found, nil
}

// MultiErr is a type of error returned by HasMulti and SizeMulti.
// It maps individual refs to errors encountered checking them.
type MultiErr map[Ref]error

// Error implements the error interface.
func (e MultiErr) Error() string {
	strs := make([]string, 0, len(e))
	for ref, err := range e {
		strs = append(strs, fmt.Sprintf("%s: %s", ref, err))
	}
	sort.Strings(strs)
	return "error(s): " + strings.Join(strs, "; ")
}
