package util

import (
	"bytes"
	"errors"
	"io"
)

const (
	// DefaultBufferSize is the per-stream buffer Equal uses unless told
	// otherwise.
	DefaultBufferSize = 8192
	// MinBufferSize is the smallest buffer Equal will use.
	MinBufferSize = 1024
)

// Source is a file whose length is known up front and whose contents can be
// streamed from the start. namespace.Entry and HostFile are Sources.
type Source interface {
	Size() (int64, error)
	Open() (io.ReadCloser, error)
	String() string
}

// EqualOption tunes Equal.
type EqualOption func(*equalOptions)

type equalOptions struct {
	bufferSize int
}

// WithBufferSize sets the buffer allocated for each stream. Sizes below
// MinBufferSize are raised to it.
func WithBufferSize(n int) EqualOption {
	return func(o *equalOptions) {
		o.bufferSize = n
	}
}

func newEqualOptions(opts []EqualOption) equalOptions {
	o := equalOptions{bufferSize: DefaultBufferSize}
	for _, opt := range opts {
		opt(&o)
	}
	o.bufferSize = max(o.bufferSize, MinBufferSize)
	return o
}

// Equal reports whether a and b hold the same bytes. Sources of different
// length are unequal without being opened. Otherwise both are streamed
// through fixed buffers and the comparison stops at the first difference.
// I/O failures are returned as a *PairError of kind ErrRead.
func Equal(a, b Source, opts ...EqualOption) (bool, error) {
	o := newEqualOptions(opts)

	sizeA, err := a.Size()
	if err != nil {
		return false, readError(a, b, err)
	}
	sizeB, err := b.Size()
	if err != nil {
		return false, readError(a, b, err)
	}
	if sizeA != sizeB {
		return false, nil
	}

	ra, err := a.Open()
	if err != nil {
		return false, readError(a, b, err)
	}
	defer ra.Close()
	rb, err := b.Open()
	if err != nil {
		return false, readError(a, b, err)
	}
	defer rb.Close()

	eq, err := EqualReaders(ra, rb, o.bufferSize)
	if err != nil {
		return false, readError(a, b, err)
	}
	return eq, nil
}

// EqualReaders compares two streams using buffers of bufferSize bytes. Each
// chunk read from a is matched by reading exactly as many bytes from b, so
// short reads on b are retried until the chunk is complete. The streams are
// equal only when both end together.
func EqualReaders(a, b io.Reader, bufferSize int) (bool, error) {
	bufferSize = max(bufferSize, MinBufferSize)
	bufA := make([]byte, bufferSize)
	bufB := make([]byte, bufferSize)

	for {
		n, errA := a.Read(bufA)
		if n > 0 {
			_, errB := io.ReadFull(b, bufB[:n])
			switch {
			case errors.Is(errB, io.EOF), errors.Is(errB, io.ErrUnexpectedEOF):
				return false, nil
			case errB != nil:
				return false, errB
			}
			if !bytes.Equal(bufA[:n], bufB[:n]) {
				return false, nil
			}
		}
		if errors.Is(errA, io.EOF) {
			break
		}
		if errA != nil {
			return false, errA
		}
	}

	// a is exhausted; b has to be as well.
	_, errB := io.ReadFull(b, bufB[:1])
	switch {
	case errors.Is(errB, io.EOF):
		return true, nil
	case errB == nil:
		return false, nil
	default:
		return false, errB
	}
}
