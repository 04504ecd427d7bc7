package node

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/fzft/bucketmap/db"
	"github.com/fzft/bucketmap/log"
	"github.com/fzft/bucketmap/resp"
	"go.uber.org/zap"
)

type ClientFlags uint64

const (
	ClientCloseAfterReply ClientFlags = 1 << iota // Close after writing entire reply.
	ClientProtocolError                           // Malformed request, stop reading.
)

// Client is one connection and its parsing state.
type Client struct {
	id     uint64
	flags  ClientFlags
	conn   net.Conn
	server *Server
	db     *db.DB
	rd     *resp.Reader
	wr     *resp.Writer
	argv   []string
	node   *db.ListNode[*Client] // position in server.clients
}

func newClient(id uint64, conn net.Conn, s *Server) *Client {
	return &Client{
		id:     id,
		conn:   conn,
		server: s,
		db:     s.db,
		rd:     resp.NewReader(conn),
		wr:     resp.NewWriter(conn),
	}
}

// Args returns the arguments of the current command, without its name.
func (c *Client) Args() []string {
	return c.argv[1:]
}

// serve runs the read, execute, reply loop until the peer disconnects, a
// protocol error occurs or the connection is closed by the server.
func (c *Client) serve() {
	logger := log.Logger.With(zap.Uint64("client", c.id), zap.Stringer("addr", c.conn.RemoteAddr()))
	logger.Debug("client connected")
	defer logger.Debug("client disconnected")

	for {
		argv, err := c.rd.ReadCommand()
		if err != nil {
			if errors.Is(err, resp.ErrProtocol) {
				c.flags |= ClientProtocolError
				c.addReplyError("Protocol error: " + strings.TrimPrefix(err.Error(), resp.ErrProtocol.Error()+": "))
				c.wr.Flush()
				logger.Info("closing client on protocol error", zap.Error(err))
			} else if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				logger.Debug("read failed", zap.Error(err))
			}
			return
		}
		if len(argv) == 0 {
			continue
		}

		c.argv = argv
		c.server.processCommand(c)

		// flush once the pipelined input is drained
		if c.rd.Buffered() == 0 || c.flags&ClientCloseAfterReply != 0 {
			if err := c.wr.Flush(); err != nil {
				logger.Debug("write failed", zap.Error(err))
				return
			}
		}
		if c.flags&ClientCloseAfterReply != 0 {
			return
		}
	}
}

func (c *Client) Close() error {
	return c.conn.Close()
}

/* -----------------------------------------------------------------------------
 * Low level functions to add more data to output buffers.
 * -------------------------------------------------------------------------- */

func (c *Client) addReplyStatus(s string) {
	c.wr.WriteSimple(s)
}

func (c *Client) addReplyError(msg string) {
	c.wr.WriteError("ERR " + msg)
}

func (c *Client) addReplyErrorFormat(format string, args ...any) {
	c.addReplyError(fmt.Sprintf(format, args...))
}

func (c *Client) addReplyLongLong(n int64) {
	c.wr.WriteInteger(n)
}

func (c *Client) addReplyBulk(b []byte) {
	c.wr.WriteBulk(b)
}

func (c *Client) addReplyBulkString(s string) {
	c.wr.WriteBulkString(s)
}

func (c *Client) addReplyNull() {
	c.wr.WriteNull()
}

// addReplyBulkOrNull replies with b when ok, the null bulk otherwise.
func (c *Client) addReplyBulkOrNull(b []byte, ok bool) {
	if ok {
		c.addReplyBulk(b)
	} else {
		c.addReplyNull()
	}
}

func (c *Client) addReplyArray(items []string) {
	c.wr.WriteBulkStrings(items)
}

func (c *Client) addReplyOK() {
	c.addReplyStatus("OK")
}
