// Package iocontext provides injectable I/O streams via context for testability.
package iocontext

import (
	"bytes"
	"context"
	"io"
	"os"
)

// IO holds the input/output streams for commands.
type IO struct {
	Out    io.Writer // stdout
	ErrOut io.Writer // stderr
	In     io.Reader // stdin
}

// DefaultIO returns the standard IO streams.
func DefaultIO() *IO {
	return &IO{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
		In:     os.Stdin,
	}
}

// Buffers is an IO backed by in-memory buffers, for tests.
type Buffers struct {
	IO
	OutBuf *bytes.Buffer
	ErrBuf *bytes.Buffer
}

// NewBuffers returns an IO that captures output and reads stdin from in.
func NewBuffers(in string) *Buffers {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return &Buffers{
		IO:     IO{Out: out, ErrOut: errOut, In: bytes.NewBufferString(in)},
		OutBuf: out,
		ErrBuf: errOut,
	}
}

type ioKey struct{}

// WithIO adds IO streams to a context.
func WithIO(ctx context.Context, streams *IO) context.Context {
	return context.WithValue(ctx, ioKey{}, streams)
}

// GetIO retrieves IO streams from context, defaulting to standard streams.
func GetIO(ctx context.Context) *IO {
	if streams, ok := ctx.Value(ioKey{}).(*IO); ok && streams != nil {
		return streams
	}
	return DefaultIO()
}
