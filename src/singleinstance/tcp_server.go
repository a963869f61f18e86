package singleinstance

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
	"time"
)

const (
	residentHost    = "127.0.0.1"
	pingRequest     = "PING\n"
	pongResponse    = "PONG\n"
	captureRequest  = "CAPTURE\n"
	successResponse = "SUCCESS\n"
	errorResponse   = "ERROR\n"
)

// tcpServer implements Server over TCP loopback.
type tcpServer struct {
	mu        sync.Mutex
	lis       net.Listener
	incoming  chan Conn
	port      int
	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

func newTCPServer(port int) *tcpServer {
	return &tcpServer{port: port, incoming: make(chan Conn, 8), done: make(chan struct{})}
}

func (s *tcpServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis != nil {
		return nil
	}
	addr := fmt.Sprintf("%s:%d", residentHost, s.port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("singleinstance: failed to bind %s: %v", addr, err)
		return err
	}
	s.lis = lis
	log.Printf("singleinstance: listening on %s", addr)
	s.wg.Add(1)
	go s.acceptLoop(ctx, lis)
	return nil
}

// Port returns the bound port (0 if not started).
func (s *tcpServer) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis == nil {
		return 0
	}
	return s.port
}

func (s *tcpServer) Requests() <-chan Conn { return s.incoming }

func (s *tcpServer) acceptLoop(ctx context.Context, lis net.Listener) {
	defer s.wg.Done()
	for {
		c, err := lis.Accept()
		if err != nil {
			return
		}
		remote := c.RemoteAddr().String()
		_ = c.SetDeadline(time.Now().Add(3 * time.Second))
		br := bufio.NewReader(c)
		line, _ := br.ReadString('\n')
		bw := bufio.NewWriter(c)

		switch line {
		case pingRequest:
			log.Printf("singleinstance: PING from %s -> PONG", remote)
			_, _ = bw.WriteString(pongResponse)
			_ = bw.Flush()
			_ = c.Close()
		case captureRequest:
			// The capture waits for the user, so the response has no deadline.
			_ = c.SetDeadline(time.Time{})
			log.Printf("singleinstance: capture request from %s", remote)
			select {
			case s.incoming <- &tcpConn{c: c, w: bw}:
			case <-ctx.Done():
				_ = c.Close()
				return
			case <-s.done:
				_ = c.Close()
				return
			}
		default:
			log.Printf("singleinstance: unknown request %q from %s", strings.TrimSpace(line), remote)
			_, _ = bw.WriteString(errorResponse + "unknown request")
			_ = bw.Flush()
			_ = c.Close()
		}
	}
}

func (s *tcpServer) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		if s.lis != nil {
			_ = s.lis.Close()
		}
		s.mu.Unlock()
		s.wg.Wait()
		close(s.incoming)
	})
	return nil
}

type tcpConn struct {
	c net.Conn
	w *bufio.Writer
}

func (tc *tcpConn) RespondSuccess(dir string) error {
	if _, err := tc.w.WriteString(successResponse + dir); err != nil {
		return err
	}
	return tc.w.Flush()
}

func (tc *tcpConn) RespondError(msg string) error {
	if _, err := tc.w.WriteString(errorResponse + msg); err != nil {
		return err
	}
	return tc.w.Flush()
}

func (tc *tcpConn) Close() error { return tc.c.Close() }
