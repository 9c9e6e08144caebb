package pipelink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/duplexio/pipelink/pipelink/crypto"
)

func testPipeName(t *testing.T) string {
	return fmt.Sprintf("pipelink-%s-%d", strings.ToLower(t.Name()), os.Getpid())
}

func echoHandler(c *Connection) error {
	for {
		msg, err := c.ReceiveBytes()
		if err != nil {
			return err
		}
		if err := c.SendBytes(msg); err != nil {
			return err
		}
	}
}

// startServer runs srv.Start on its own goroutine and tears it down with
// the test. The returned channel carries Start's result.
func startServer(t *testing.T, srv *Server, handler Handler) <-chan error {
	t.Helper()
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(handler) }()
	t.Cleanup(func() {
		srv.Close()
		select {
		case <-errCh:
		case <-time.After(5 * time.Second):
			t.Errorf("server did not stop")
		}
	})
	return errCh
}

func connect(t *testing.T, cl *Client) *Connection {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := cl.Connect(ctx)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestEchoPlaintext(t *testing.T) {
	name := testPipeName(t)
	srv, err := NewServer(name, Config{})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	startServer(t, srv, echoHandler)

	cl, err := NewClient(name, Config{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	conn := connect(t, cl)

	if err := conn.SendBytes([]byte("ping")); err != nil {
		t.Fatalf("SendBytes: %v", err)
	}
	got, err := conn.ReceiveBytes()
	if err != nil {
		t.Fatalf("ReceiveBytes: %v", err)
	}
	if !bytes.Equal(got, []byte("ping")) {
		t.Fatalf("got %q, want \"ping\"", got)
	}
}

func TestEncryptedEchoServerSeesPlaintext(t *testing.T) {
	name := testPipeName(t)
	key := bytes.Repeat([]byte{1}, crypto.KeySize)

	observed := make(chan []byte, 1)
	handler := func(c *Connection) error {
		msg, err := c.ReceiveBytes()
		if err != nil {
			return err
		}
		observed <- msg
		return c.SendBytes(msg)
	}

	srv, err := NewServer(name, Config{Key: key})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	startServer(t, srv, handler)

	cl, err := NewClient(name, Config{Key: key})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	conn := connect(t, cl)

	if err := conn.SendBytes([]byte("secret")); err != nil {
		t.Fatalf("SendBytes: %v", err)
	}
	got, err := conn.ReceiveBytes()
	if err != nil {
		t.Fatalf("ReceiveBytes: %v", err)
	}
	if !bytes.Equal(got, []byte("secret")) {
		t.Fatalf("echo mismatch: %q", got)
	}

	select {
	case msg := <-observed:
		if !bytes.Equal(msg, []byte("secret")) {
			t.Fatalf("server observed %q, want decrypted \"secret\"", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("handler never observed the message")
	}
}

func TestTenConcurrentClients(t *testing.T) {
	name := testPipeName(t)
	srv, err := NewServer(name, Config{})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	startServer(t, srv, echoHandler)

	const clients = 10
	var wg sync.WaitGroup
	errs := make(chan error, clients)

	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cl, err := NewClient(name, Config{})
			if err != nil {
				errs <- err
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			conn, err := cl.Connect(ctx)
			if err != nil {
				errs <- fmt.Errorf("client %d connect: %w", i, err)
				return
			}
			defer conn.Close()

			msg := []byte(fmt.Sprintf("client-%d-payload", i))
			for round := 0; round < 5; round++ {
				if err := conn.SendBytes(msg); err != nil {
					errs <- fmt.Errorf("client %d send: %w", i, err)
					return
				}
				got, err := conn.ReceiveBytes()
				if err != nil {
					errs <- fmt.Errorf("client %d receive: %w", i, err)
					return
				}
				if !bytes.Equal(got, msg) {
					errs <- fmt.Errorf("client %d cross-talk: got %q", i, got)
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("%v", err)
	}
}

func TestClientRetriesUntilServerStarts(t *testing.T) {
	name := testPipeName(t)
	cl, err := NewClient(name, Config{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	connCh := make(chan *Connection, 1)
	dialErr := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		conn, err := cl.Connect(ctx)
		if err != nil {
			dialErr <- err
			return
		}
		connCh <- conn
	}()

	time.Sleep(400 * time.Millisecond)

	srv, err := NewServer(name, Config{})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	startServer(t, srv, echoHandler)

	select {
	case conn := <-connCh:
		defer conn.Close()
		if err := conn.SendBytes([]byte("late")); err != nil {
			t.Fatalf("SendBytes: %v", err)
		}
		if got, err := conn.ReceiveBytes(); err != nil || !bytes.Equal(got, []byte("late")) {
			t.Fatalf("echo after retry: %q, %v", got, err)
		}
	case err := <-dialErr:
		t.Fatalf("Connect: %v", err)
	case <-time.After(10 * time.Second):
		t.Fatalf("Connect never completed")
	}
}

func TestCloseStopsAcceptLoopCleanly(t *testing.T) {
	name := testPipeName(t)
	srv, err := NewServer(name, Config{})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(echoHandler) }()

	// Prove the server is accepting before closing it.
	cl, _ := NewClient(name, Config{})
	conn := connect(t, cl)
	conn.Close()

	if err := srv.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Start after Close: got %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Start did not return after Close")
	}
}

func TestShutdownWaitsForHandlers(t *testing.T) {
	name := testPipeName(t)
	srv, err := NewServer(name, Config{})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	handlerDone := make(chan struct{})
	release := make(chan struct{})
	handler := func(c *Connection) error {
		<-release
		close(handlerDone)
		return nil
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(handler) }()

	cl, _ := NewClient(name, Config{})
	conn := connect(t, cl)
	defer conn.Close()

	shutdownDone := make(chan struct{})
	go func() {
		srv.Shutdown()
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		t.Fatalf("Shutdown returned while a handler was still running")
	case <-time.After(200 * time.Millisecond):
	}

	close(release)
	select {
	case <-shutdownDone:
	case <-time.After(5 * time.Second):
		t.Fatalf("Shutdown did not return after handlers finished")
	}
	<-handlerDone
	<-errCh
}

func TestHandlerErrorDoesNotStopServer(t *testing.T) {
	name := testPipeName(t)
	srv, err := NewServer(name, Config{})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	handler := func(c *Connection) error {
		if _, err := c.ReceiveBytes(); err != nil {
			return err
		}
		return errors.New("handler exploded")
	}
	startServer(t, srv, handler)

	// First connection triggers the handler error.
	cl, _ := NewClient(name, Config{})
	c1 := connect(t, cl)
	if err := c1.SendBytes([]byte("boom")); err != nil {
		t.Fatalf("SendBytes: %v", err)
	}
	c1.Close()

	// Server must still accept a second connection afterwards.
	c2 := connect(t, cl)
	c2.Close()
}

func TestConstructorValidation(t *testing.T) {
	if _, err := NewServer("", Config{}); err != ErrEmptyPipeName {
		t.Fatalf("NewServer(\"\"): got %v, want ErrEmptyPipeName", err)
	}
	if _, err := NewClient("", Config{}); err != ErrEmptyPipeName {
		t.Fatalf("NewClient(\"\"): got %v, want ErrEmptyPipeName", err)
	}
	if _, err := NewServer("x", Config{Key: make([]byte, 16)}); err != crypto.ErrBadKeySize {
		t.Fatalf("NewServer with short key: got %v, want ErrBadKeySize", err)
	}
	if _, err := NewClient("x", Config{Key: make([]byte, 31)}); err != crypto.ErrBadKeySize {
		t.Fatalf("NewClient with short key: got %v, want ErrBadKeySize", err)
	}
}
