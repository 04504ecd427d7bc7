package node

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fzft/bucketmap/db"
	"github.com/fzft/bucketmap/log"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const tcpKeepAlive = 15 * time.Second

// Server serves one keyspace over RESP, one goroutine per client.
type Server struct {
	addr     string
	db       *db.DB
	commands *db.HashTable[string, *RedisCommand] // read-only after NewServer

	mu      sync.Mutex
	ln      net.Listener
	clients *db.List[*Client]
	wg      sync.WaitGroup

	nextClientID     atomic.Uint64
	totalConnections atomic.Int64
	totalCommands    atomic.Int64
	protocolErrors   atomic.Int64
	dirty            atomic.Int64 // successful write commands since start
	startTime        time.Time
}

func NewServer(addr string, keyspace *db.DB) *Server {
	return &Server{
		addr:      addr,
		db:        keyspace,
		commands:  newCommandDict(commandTable),
		clients:   db.NewList[*Client](),
		startTime: time.Now(),
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	lc := listenConfig()
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		log.Logger.Error("listen error", zap.String("addr", s.addr), zap.Error(err))
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done or ln fails. On return
// the listener and every client connection are closed.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
		case <-stop:
		}
	}()

	log.Logger.Info("listening", zap.Stringer("addr", ln.Addr()))
	var acceptErr error
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() == nil {
				acceptErr = err
				log.Logger.Error("accept error", zap.Error(err))
			}
			break
		}
		s.accept(conn)
	}

	log.Logger.Info("shutting down server")
	closeErr := s.closeClients()
	s.wg.Wait()
	if errors.Is(acceptErr, net.ErrClosed) {
		acceptErr = nil
	}
	return multierr.Append(acceptErr, closeErr)
}

// Addr returns the listener address once Serve has started, nil before.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

func (s *Server) accept(conn net.Conn) {
	c := newClient(s.nextClientID.Add(1), conn, s)
	s.totalConnections.Add(1)

	s.mu.Lock()
	c.node = s.clients.AddNodeTail(c)
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		c.serve()
		if c.flags&ClientProtocolError != 0 {
			s.protocolErrors.Add(1)
		}
		s.unlinkClient(c)
		c.Close()
	}()
}

func (s *Server) unlinkClient(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.node != nil {
		s.clients.RemoveNode(c.node)
		c.node = nil
	}
}

// closeClients closes every connected client; their goroutines unlink them.
func (s *Server) closeClients() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	it := s.clients.Iterator(db.DIRECTION_HEAD)
	for node := it.Next(); node != nil; node = it.Next() {
		if cerr := node.Value.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = multierr.Append(err, cerr)
		}
	}
	return err
}

// ConnectedClients returns the number of open connections.
func (s *Server) ConnectedClients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clients.Len()
}

// lookupCommand resolves a command name case-insensitively.
func (s *Server) lookupCommand(name string) (*RedisCommand, bool) {
	return s.commands.Get(strings.ToLower(name))
}

// processCommand checks name and arity, runs the command and accounts for it.
func (s *Server) processCommand(c *Client) {
	s.totalCommands.Add(1)

	cmd, ok := s.lookupCommand(c.argv[0])
	if !ok {
		c.addReplyErrorFormat("%s '%s'", ErrUnknownCmd, c.argv[0])
		return
	}
	if !cmd.arityOK(len(c.argv)) {
		c.addReplyErrorFormat("%s for '%s' command", ErrWrongArgsNum, cmd.name)
		return
	}

	cmd.calls.Add(1)
	if err := cmd.proc(c); err != nil {
		cmd.failedCalls.Add(1)
		c.addReplyError(err.Error())
		return
	}
	if cmd.flags&CmdWrite != 0 {
		s.dirty.Add(1)
	}
}
