// Package sqlite3 implements a blob store in a Sqlite database.
package sqlite3

import (
	"bytes"
	"context"
	"database/sql"
	stderrs "errors"
	"fmt"
	"io"
	"time"

	"github.com/bobg/sqlutil"
	_ "github.com/mattn/go-sqlite3" // register the sqlite3 type for sql.Open
	"github.com/pkg/errors"

	"github.com/Connoropolous/multiblob"
	"github.com/Connoropolous/multiblob/store"
)

var _ multiblob.Store = &Store{}

// Store is a Sqlite-based blob store.
type Store struct {
	db       *sql.DB
	alg      string
	codec    multiblob.Codec
	notifier multiblob.Notifier
}

// Schema is the SQL that New executes.
// It creates the `blobs` table if it does not exist.
// (If it does exist, it must have the columns, constraints, and indexing described here.)
const Schema = `
CREATE TABLE IF NOT EXISTS blobs (
  ref TEXT PRIMARY KEY NOT NULL,
  size INTEGER NOT NULL,
  data BLOB NOT NULL,
  created TEXT NOT NULL
);
`

// Option configures a Store.
type Option func(*Store)

// WithAlg sets the hash algorithm for new blobs.
func WithAlg(alg string) Option {
	return func(s *Store) { s.alg = alg }
}

// WithCodec sets the codec for refs.
func WithCodec(c multiblob.Codec) Option {
	return func(s *Store) { s.codec = c }
}

// New produces a new Store using `db` for storage.
// It expects to create table `blobs`,
// or for that table already to exist with the correct schema.
// (See variable Schema.)
func New(ctx context.Context, db *sql.DB, opts ...Option) (*Store, error) {
	s := &Store{
		db:    db,
		alg:   multiblob.DefaultAlg,
		codec: multiblob.DefaultCodec,
	}
	for _, opt := range opts {
		opt(s)
	}
	_, err := db.ExecContext(ctx, Schema)
	return s, errors.Wrap(err, "creating schema")
}

// Get gets the blob selected by q.
func (s *Store) Get(ctx context.Context, q multiblob.Query) (io.ReadCloser, error) {
	var ref multiblob.Ref

	switch q := q.(type) {
	case multiblob.Ref:
		if _, err := s.codec.Decode(q); err != nil {
			return nil, err
		}
		ref = q

	case multiblob.GetOptions:
		if q.Ref == "" || !s.codec.IsRef(string(q.Ref)) {
			return nil, multiblob.ErrMissingRef
		}
		ref = q.Ref
		size, ok, err := s.Size(ctx, ref)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.Wrapf(multiblob.ErrNotFound, "getting %s", ref)
		}
		if err = q.Check(size); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unknown query type %T", q)
	}

	const sel = `SELECT data FROM blobs WHERE ref = $1`

	var data []byte
	err := s.db.QueryRowContext(ctx, sel, string(ref)).Scan(&data)
	if stderrs.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(multiblob.ErrNotFound, "getting %s", ref)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "getting %s", ref)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Has tells whether the blob with the given ref is present.
func (s *Store) Has(ctx context.Context, ref multiblob.Ref) (bool, error) {
	_, ok, err := s.Size(ctx, ref)
	return ok, err
}

// Size returns the size of the blob with the given ref.
func (s *Store) Size(ctx context.Context, ref multiblob.Ref) (int64, bool, error) {
	if _, err := s.codec.Decode(ref); err != nil {
		return 0, false, err
	}

	const q = `SELECT size FROM blobs WHERE ref = $1`

	var size int64
	err := s.db.QueryRowContext(ctx, q, string(ref)).Scan(&size)
	if stderrs.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrapf(err, "getting size of %s", ref)
	}
	return size, true, nil
}

// Meta describes the blob with the given ref.
func (s *Store) Meta(ctx context.Context, ref multiblob.Ref) (*multiblob.Meta, error) {
	if _, err := s.codec.Decode(ref); err != nil {
		return nil, err
	}

	const q = `SELECT size, created FROM blobs WHERE ref = $1`

	var (
		size       int64
		createdStr string
	)
	err := s.db.QueryRowContext(ctx, q, string(ref)).Scan(&size, &createdStr)
	if stderrs.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "getting meta for %s", ref)
	}
	return toMeta(ref, size, createdStr)
}

func toMeta(ref multiblob.Ref, size int64, createdStr string) (*multiblob.Meta, error) {
	created, err := time.Parse(time.RFC3339Nano, createdStr)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing time %s", createdStr)
	}
	return &multiblob.Meta{Ref: ref, Size: size, Created: created}, nil
}

// Add begins writing a new blob.
// The content is inserted in a single statement on Close.
func (s *Store) Add(ctx context.Context, expected multiblob.Ref) (multiblob.Writer, error) {
	d, err := multiblob.NewDigester(s.alg, s.codec, expected)
	if err != nil {
		return nil, err
	}
	return multiblob.NewBufferedWriter(d, func(ref multiblob.Ref, data []byte) error {
		return s.put(ctx, ref, data)
	}), nil
}

func (s *Store) put(ctx context.Context, ref multiblob.Ref, data []byte) error {
	const q = `INSERT INTO blobs (ref, size, data, created) VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING`

	now := time.Now().UTC()
	if data == nil {
		data = []byte{}
	}
	if _, err := s.db.ExecContext(ctx, q, string(ref), len(data), data, now.Format(time.RFC3339Nano)); err != nil {
		return errors.Wrapf(err, "inserting blob %s", ref)
	}

	s.notifier.Publish(multiblob.Meta{Ref: ref, Size: int64(len(data)), Created: now})
	return nil
}

// Rm removes the blob with the given ref.
func (s *Store) Rm(ctx context.Context, ref multiblob.Ref) error {
	if _, err := s.codec.Decode(ref); err != nil {
		return err
	}

	const q = `DELETE FROM blobs WHERE ref = $1`

	res, err := s.db.ExecContext(ctx, q, string(ref))
	if err != nil {
		return errors.Wrapf(err, "removing %s", ref)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "counting affected rows")
	}
	if aff == 0 {
		return errors.Wrapf(multiblob.ErrNotFound, "removing %s", ref)
	}
	return nil
}

// Ls lists blobs in lexicographic order of their refs,
// follows new ones,
// or both.
func (s *Store) Ls(ctx context.Context, opts multiblob.LsOptions, f func(multiblob.Entry) error) error {
	return multiblob.Feed(ctx, &s.notifier, opts, func(f func(multiblob.Entry) error) error {
		const q = `SELECT ref, size, created FROM blobs ORDER BY ref`
		return sqlutil.ForQueryRows(ctx, s.db, q, func(refStr string, size int64, createdStr string) error {
			e := multiblob.Entry{Ref: multiblob.Ref(refStr)}
			if opts.Meta {
				m, err := toMeta(e.Ref, size, createdStr)
				if err != nil {
					return err
				}
				e.Meta = m
			}
			return f(e)
		})
	}, f)
}

func init() {
	store.Register("sqlite3", func(ctx context.Context, conf map[string]interface{}) (multiblob.Store, error) {
		conn, ok := conf["conn"].(string)
		if !ok {
			return nil, errors.New(`missing "conn" parameter`)
		}
		alg, err := store.Alg(conf)
		if err != nil {
			return nil, err
		}
		codec, err := store.Codec(conf)
		if err != nil {
			return nil, err
		}
		db, err := sql.Open("sqlite3", conn)
		if err != nil {
			return nil, errors.Wrap(err, "opening db")
		}
		return New(ctx, db, WithAlg(alg), WithCodec(codec))
	})
}
