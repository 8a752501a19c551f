package iocontext

import (
	"context"
	"io"
	"os"
	"testing"
)

func TestGetIO_Default(t *testing.T) {
	streams := GetIO(context.Background())
	if streams.Out != os.Stdout || streams.ErrOut != os.Stderr || streams.In != os.Stdin {
		t.Error("expected standard streams")
	}
}

func TestWithIO_Buffers(t *testing.T) {
	bufs := NewBuffers("jack@hill.com\n")
	ctx := WithIO(context.Background(), &bufs.IO)

	streams := GetIO(ctx)
	_, _ = io.WriteString(streams.Out, "ok")
	_, _ = io.WriteString(streams.ErrOut, "warn")
	in, _ := io.ReadAll(streams.In)

	if bufs.OutBuf.String() != "ok" || bufs.ErrBuf.String() != "warn" {
		t.Errorf("unexpected output %q / %q", bufs.OutBuf.String(), bufs.ErrBuf.String())
	}
	if string(in) != "jack@hill.com\n" {
		t.Errorf("unexpected input %q", in)
	}
}
