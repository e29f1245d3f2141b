package multiblob

import "bytes"

// NewBufferedWriter produces a Writer that holds content in memory.
// On Close it computes the ref with d
// and, if that succeeds, passes the ref and content to commit.
// It suits stores that write a blob in a single operation.
func NewBufferedWriter(d *Digester, commit func(ref Ref, data []byte) error) Writer {
	return &bufferedWriter{d: d, commit: commit}
}

type bufferedWriter struct {
	d      *Digester
	commit func(Ref, []byte) error
	buf    bytes.Buffer
	ref    Ref
	done   bool
	err    error
}

func (w *bufferedWriter) Write(p []byte) (int, error) {
	if w.done {
		return 0, ErrWriterClosed
	}
	w.d.Write(p)
	return w.buf.Write(p)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *bufferedWriter) Close() error {
	if w.done {
		return w.err
	}
	w.done = true

	ref, err := w.d.Finish()
	if err != nil {
		w.err = err
		return err
	}
	if err = w.commit(ref, w.buf.Bytes()); err != nil {
		w.err = err
		return err
	}
	w.ref = ref
	return nil
}

func (w *bufferedWriter) Abort() error {
	if !w.done {
		w.done = true
		w.err = ErrWriterClosed
		w.buf.Reset()
	}
	return nil
}

func (w *bufferedWriter) Ref() Ref {
	return w.ref
}
