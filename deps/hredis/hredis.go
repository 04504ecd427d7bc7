package hredis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/fzft/bucketmap/resp"
)

const defaultTimeout = 5 * time.Second

var ErrClosed = errors.New("hredis: connection closed")

// ReplyError is an -ERR reply sent by the server.
type ReplyError struct {
	Message string
}

func (e *ReplyError) Error() string {
	return e.Message
}

type RedisOpts struct {
	Addr    string
	Timeout time.Duration // per request read/write deadline, 0 for default
}

// RedisContext is a blocking connection to a RESP server. Requests are
// serialized; it is safe to share between goroutines.
type RedisContext struct {
	mu      sync.Mutex
	conn    net.Conn
	reader  *resp.Reader
	timeout time.Duration
	closed  bool
}

// RedisConnect dials addr with the default timeout.
func RedisConnect(ctx context.Context, addr string) (*RedisContext, error) {
	return NewRedisContextWithOpts(ctx, &RedisOpts{Addr: addr})
}

func NewRedisContextWithOpts(ctx context.Context, opts *RedisOpts) (*RedisContext, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	d := net.Dialer{Timeout: timeout, KeepAlive: 15 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", opts.Addr)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", opts.Addr, err)
	}
	return &RedisContext{
		conn:    conn,
		reader:  resp.NewReader(conn),
		timeout: timeout,
	}, nil
}

// Do sends one command and waits for its reply. Server error replies are
// returned as *ReplyError with a nil node.
func (c *RedisContext) Do(args ...string) (resp.Node, error) {
	if len(args) == 0 {
		return nil, errors.New("hredis: empty command")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}

	c.conn.SetDeadline(time.Now().Add(c.timeout))
	if _, err := c.conn.Write(resp.EncodeCommand(args[0], args[1:]...)); err != nil {
		return nil, err
	}
	node, err := c.reader.ReadValue()
	if err != nil {
		return nil, err
	}
	if e, ok := node.(resp.Error); ok {
		return nil, &ReplyError{Message: e.Message}
	}
	return node, nil
}

// RedisCommand formats a command the printf way and sends it. Only %s, %d
// and %b ([]byte) are understood; each word becomes one argument.
func (c *RedisContext) RedisCommand(format string, args ...any) (resp.Node, error) {
	argv, err := redisFormatCommand(format, args...)
	if err != nil {
		return nil, err
	}
	return c.Do(argv...)
}

func (c *RedisContext) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

func redisFormatCommand(format string, args ...any) ([]string, error) {
	var curArg []byte
	var argv []string

	argIndex := 0
	touched := false

	next := func() (any, error) {
		if argIndex >= len(args) {
			return nil, errors.New("not enough arguments")
		}
		arg := args[argIndex]
		argIndex++
		return arg, nil
	}

	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			if c == ' ' {
				if touched {
					argv = append(argv, string(curArg))
					curArg = curArg[:0]
					touched = false
				}
			} else {
				curArg = append(curArg, c)
				touched = true
			}
			continue
		}

		i++
		if i >= len(format) {
			return nil, errors.New("format string ended unexpectedly")
		}
		switch format[i] {
		case 's':
			arg, err := next()
			if err != nil {
				return nil, err
			}
			str, ok := arg.(string)
			if !ok {
				return nil, errors.New("expected a string argument")
			}
			curArg = append(curArg, str...)
		case 'b':
			arg, err := next()
			if err != nil {
				return nil, err
			}
			b, ok := arg.([]byte)
			if !ok {
				return nil, errors.New("expected a []byte argument")
			}
			curArg = append(curArg, b...)
		case 'd':
			arg, err := next()
			if err != nil {
				return nil, err
			}
			switch n := arg.(type) {
			case int:
				curArg = strconv.AppendInt(curArg, int64(n), 10)
			case int64:
				curArg = strconv.AppendInt(curArg, n, 10)
			default:
				return nil, errors.New("expected an integer argument")
			}
		case '%':
			curArg = append(curArg, '%')
		default:
			return nil, fmt.Errorf("unsupported format specifier: %c", format[i])
		}
		touched = true
	}

	if touched {
		argv = append(argv, string(curArg))
	}
	return argv, nil
}
