package node

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/fzft/bucketmap/db"
	"github.com/fzft/bucketmap/resp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConn struct {
	t    *testing.T
	conn net.Conn
	rd   *resp.Reader
}

func startServer(t *testing.T, keyspace *db.DB) (*Server, string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := NewServer(ln.Addr().String(), keyspace)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})
	return s, ln.Addr().String()
}

func dial(t *testing.T, addr string) *testConn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &testConn{t: t, conn: conn, rd: resp.NewReader(conn)}
}

func (tc *testConn) do(args ...string) resp.Node {
	tc.t.Helper()
	_, err := tc.conn.Write(resp.EncodeCommand(args[0], args[1:]...))
	require.NoError(tc.t, err)
	return tc.read()
}

func (tc *testConn) read() resp.Node {
	tc.t.Helper()
	tc.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	node, err := tc.rd.ReadValue()
	require.NoError(tc.t, err)
	return node
}

func bulk(s string) resp.Node { return resp.BlobString{Value: s} }
func integer(n int64) resp.Node { return resp.Integer{Value: n} }

var okReply = resp.SimpleString{Value: "OK"}

func TestPingEcho(t *testing.T) {
	_, addr := startServer(t, db.New(0))
	c := dial(t, addr)

	assert.Equal(t, resp.SimpleString{Value: "PONG"}, c.do("PING"))
	assert.Equal(t, bulk("hi"), c.do("ping", "hi"))
	assert.Equal(t, bulk("x y"), c.do("ECHO", "x y"))
	assert.Equal(t, resp.Error{Message: "ERR wrong number of arguments for 'ping' command"}, c.do("PING", "a", "b"))
}

func TestSetGetDel(t *testing.T) {
	_, addr := startServer(t, db.New(0))
	c := dial(t, addr)

	assert.Equal(t, resp.Null{}, c.do("GET", "k"))
	assert.Equal(t, okReply, c.do("SET", "k", "v1"))
	assert.Equal(t, bulk("v1"), c.do("GET", "k"))
	assert.Equal(t, okReply, c.do("SET", "k", "v2"))
	assert.Equal(t, bulk("v2"), c.do("GET", "k"))
	assert.Equal(t, integer(1), c.do("DBSIZE"))

	assert.Equal(t, integer(1), c.do("DEL", "k", "missing"))
	assert.Equal(t, resp.Null{}, c.do("GET", "k"))
	assert.Equal(t, integer(0), c.do("DEL", "k"))
}

func TestEmptyValueIsNotNull(t *testing.T) {
	_, addr := startServer(t, db.New(0))
	c := dial(t, addr)

	assert.Equal(t, okReply, c.do("SET", "empty", ""))
	assert.Equal(t, bulk(""), c.do("GET", "empty"))
	assert.Equal(t, integer(1), c.do("EXISTS", "empty"))
}

func TestSetOptions(t *testing.T) {
	_, addr := startServer(t, db.New(0))
	c := dial(t, addr)

	assert.Equal(t, resp.Null{}, c.do("SET", "k", "v", "XX"))
	assert.Equal(t, okReply, c.do("SET", "k", "v", "nx"))
	assert.Equal(t, resp.Null{}, c.do("SET", "k", "other", "NX"))
	assert.Equal(t, bulk("v"), c.do("SET", "k", "w", "XX", "GET"))
	assert.Equal(t, bulk("w"), c.do("GETSET", "k", "z"))
	assert.Equal(t, resp.Null{}, c.do("GETSET", "new", "1"))
	assert.Equal(t, integer(0), c.do("SETNX", "k", "q"))
	assert.Equal(t, integer(1), c.do("SETNX", "fresh", "q"))
	assert.Equal(t, resp.Error{Message: "ERR syntax error"}, c.do("SET", "k", "v", "NX", "XX"))
	assert.Equal(t, resp.Error{Message: "ERR syntax error"}, c.do("SET", "k", "v", "EX"))
}

func TestAppendStrlen(t *testing.T) {
	_, addr := startServer(t, db.New(0))
	c := dial(t, addr)

	assert.Equal(t, integer(0), c.do("STRLEN", "k"))
	assert.Equal(t, integer(5), c.do("APPEND", "k", "hello"))
	assert.Equal(t, integer(11), c.do("APPEND", "k", " world"))
	assert.Equal(t, integer(11), c.do("STRLEN", "k"))
	assert.Equal(t, bulk("hello world"), c.do("GET", "k"))
}

func TestKeysExistsRandomFlush(t *testing.T) {
	_, addr := startServer(t, db.New(0))
	c := dial(t, addr)

	assert.Equal(t, resp.Null{}, c.do("RANDOMKEY"))
	c.do("SET", "user:1", "a")
	c.do("SET", "user:2", "b")
	c.do("SET", "order:1", "c")

	assert.Equal(t, integer(3), c.do("EXISTS", "user:1", "user:1", "order:1", "nope"))

	keys, isArray := c.do("KEYS", "order:*").(resp.Array)
	require.True(t, isArray)
	assert.Equal(t, []resp.Node{bulk("order:1")}, keys.Elements)

	random, isBulk := c.do("RANDOMKEY").(resp.BlobString)
	require.True(t, isBulk)
	assert.Contains(t, []string{"user:1", "user:2", "order:1"}, random.Value)

	assert.Equal(t, okReply, c.do("FLUSHDB"))
	assert.Equal(t, integer(0), c.do("DBSIZE"))
	assert.Equal(t, resp.Array{Elements: []resp.Node{}}, c.do("KEYS", "*"))
}

func TestCollidingKeysOverTheWire(t *testing.T) {
	opts := db.NewOptions[string]()
	opts.Size = 4
	opts.Hasher = db.CharSumHasher[string]()
	_, addr := startServer(t, db.NewWithOpts(0, &db.DBOptions{Table: opts}))
	c := dial(t, addr)

	c.do("SET", "a", "1")
	c.do("SET", "e", "2")
	assert.Equal(t, integer(1), c.do("DEL", "a"))
	assert.Equal(t, bulk("2"), c.do("GET", "e"))
	assert.Equal(t, resp.Null{}, c.do("GET", "a"))
}

func TestUnknownCommandAndArity(t *testing.T) {
	_, addr := startServer(t, db.New(0))
	c := dial(t, addr)

	assert.Equal(t, resp.Error{Message: "ERR unknown command 'FOO'"}, c.do("FOO"))
	assert.Equal(t, resp.Error{Message: "ERR wrong number of arguments for 'get' command"}, c.do("GET"))
	assert.Equal(t, resp.Error{Message: "ERR wrong number of arguments for 'set' command"}, c.do("SET", "k"))
}

func TestInlineAndPipelinedCommands(t *testing.T) {
	_, addr := startServer(t, db.New(0))
	c := dial(t, addr)

	_, err := c.conn.Write([]byte("SET a 1\r\nGET a\r\n" + string(resp.EncodeCommand("DBSIZE"))))
	require.NoError(t, err)
	assert.Equal(t, okReply, c.read())
	assert.Equal(t, bulk("1"), c.read())
	assert.Equal(t, integer(1), c.read())
}

func TestQuitClosesConnection(t *testing.T) {
	s, addr := startServer(t, db.New(0))
	c := dial(t, addr)

	assert.Equal(t, okReply, c.do("QUIT"))
	c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err := c.rd.ReadValue()
	assert.Error(t, err)

	assert.Eventually(t, func() bool { return s.ConnectedClients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestProtocolErrorClosesConnection(t *testing.T) {
	_, addr := startServer(t, db.New(0))
	c := dial(t, addr)

	_, err := c.conn.Write([]byte("*1\r\n$x\r\n"))
	require.NoError(t, err)
	reply, isErr := c.read().(resp.Error)
	require.True(t, isErr)
	assert.True(t, strings.HasPrefix(reply.Message, "ERR Protocol error"), reply.Message)

	c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err = c.rd.ReadValue()
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	s, addr := startServer(t, db.New(3))
	c := dial(t, addr)
	c.do("SET", "k", "v")

	info, isBulk := c.do("STATS").(resp.BlobString)
	require.True(t, isBulk)
	assert.Contains(t, info.Value, "db:3\r\n")
	assert.Contains(t, info.Value, "keys:1\r\n")
	assert.Contains(t, info.Value, "buckets:16\r\n")
	assert.Contains(t, info.Value, "connected_clients:1\r\n")
	assert.Contains(t, info.Value, "write_commands_processed:1\r\n")

	cmd, found := s.lookupCommand("SET")
	require.True(t, found)
	assert.Equal(t, int64(1), cmd.Calls())
}

func TestShutdownClosesClients(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := NewServer(ln.Addr().String(), db.New(0))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	c := dial(t, ln.Addr().String())
	assert.Equal(t, resp.SimpleString{Value: "PONG"}, c.do("PING"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err = c.rd.ReadValue()
	assert.Error(t, err)
	assert.Equal(t, 0, s.ConnectedClients())
}

func TestCommandDocs(t *testing.T) {
	docs := CommandDocs()
	require.Len(t, docs, len(commandTable))
	assert.Equal(t, "PING", docs[0].Name)
	assert.Equal(t, "connection", docs[0].Group)
}

func TestIncrDecr(t *testing.T) {
	_, addr := startServer(t, db.New(0))
	c := dial(t, addr)

	assert.Equal(t, integer(1), c.do("INCR", "n"))
	assert.Equal(t, integer(11), c.do("INCRBY", "n", "10"))
	assert.Equal(t, integer(10), c.do("DECR", "n"))
	assert.Equal(t, integer(-5), c.do("DECRBY", "n", "15"))
	assert.Equal(t, bulk("-5"), c.do("GET", "n"))

	notInt := resp.Error{Message: "ERR value is not an integer or out of range"}
	c.do("SET", "s", "abc")
	assert.Equal(t, notInt, c.do("INCR", "s"))
	assert.Equal(t, notInt, c.do("INCRBY", "n", "x"))

	c.do("SET", "max", "9223372036854775807")
	assert.Equal(t, resp.Error{Message: "ERR increment or decrement would overflow"}, c.do("INCR", "max"))
	assert.Equal(t, resp.Error{Message: "ERR increment or decrement would overflow"}, c.do("DECRBY", "n", "-9223372036854775808"))
}

func TestKeysGlobCrossesSlash(t *testing.T) {
	_, addr := startServer(t, db.New(0))
	c := dial(t, addr)

	c.do("SET", "user:a/b", "1")
	assert.Equal(t, resp.Array{Elements: []resp.Node{bulk("user:a/b")}}, c.do("KEYS", "user:*"))
}

func TestInlineBareLF(t *testing.T) {
	_, addr := startServer(t, db.New(0))
	c := dial(t, addr)

	_, err := c.conn.Write([]byte("SET a 1\nGET a\n"))
	require.NoError(t, err)
	assert.Equal(t, okReply, c.read())
	assert.Equal(t, bulk("1"), c.read())
}

func TestCommandCountersArePerServer(t *testing.T) {
	first, addr := startServer(t, db.New(0))
	second, _ := startServer(t, db.New(1))
	c := dial(t, addr)
	c.do("SET", "k", "v")
	c.do("INCR", "k")

	set1, _ := first.lookupCommand("set")
	set2, _ := second.lookupCommand("set")
	assert.NotSame(t, set1, set2)
	assert.Equal(t, int64(1), set1.Calls())
	assert.Equal(t, int64(0), set2.Calls())

	incr, _ := first.lookupCommand("incr")
	assert.Equal(t, int64(1), incr.FailedCalls())

	info, isBulk := c.do("STATS").(resp.BlobString)
	require.True(t, isBulk)
	assert.Contains(t, info.Value, "cmdstat_set:calls=1,failed_calls=0\r\n")
	assert.Contains(t, info.Value, "cmdstat_incr:calls=1,failed_calls=1\r\n")
	assert.NotContains(t, info.Value, "cmdstat_get:")
}

func TestProtocolErrorsCounted(t *testing.T) {
	s, addr := startServer(t, db.New(0))
	bad := dial(t, addr)
	_, err := bad.conn.Write([]byte("*1\r\n$x\r\n"))
	require.NoError(t, err)
	bad.read()

	assert.Eventually(t, func() bool { return s.protocolErrors.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	c := dial(t, addr)
	info, isBulk := c.do("STATS").(resp.BlobString)
	require.True(t, isBulk)
	assert.Contains(t, info.Value, "protocol_errors:1\r\n")
}
