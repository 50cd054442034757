package commands

import (
	"context"
	"net"
	nethttp "net/http"
	"testing"
	"time"
)

func TestNewServeCmd(t *testing.T) {
	cmd := NewServeCmd()

	if cmd.Name() != "serve" {
		t.Errorf("Name() = %q, want %q", cmd.Name(), "serve")
	}
	flag := cmd.Flags().Lookup("port")
	if flag == nil {
		t.Fatal("--port flag not found")
	}
	if flag.Shorthand != "p" || flag.DefValue != "" {
		t.Errorf("--port shorthand = %q default = %q", flag.Shorthand, flag.DefValue)
	}
	if err := cmd.Args(cmd, []string{"extra"}); err == nil {
		t.Error("serve should reject positional arguments")
	}
}

func TestRunServer_ShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &nethttp.Server{
		Addr:    "127.0.0.1:0",
		Handler: nethttp.NotFoundHandler(),
	}

	done := make(chan error, 1)
	go func() {
		done <- runServer(ctx, srv)
	}()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runServer() error = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runServer() did not return after cancel")
	}
}

func TestRunServer_ListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	srv := &nethttp.Server{
		Addr:    ln.Addr().String(),
		Handler: nethttp.NotFoundHandler(),
	}

	err = runServer(context.Background(), srv)
	if err == nil {
		t.Fatal("runServer() should fail when the address is in use")
	}
}
