package node

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/fzft/bucketmap/db"
)

type StrSetType int

const (
	ObjNoFlags StrSetType = 0
	ObjSetNX   StrSetType = 1 << 0 // Set if key not exists.
	ObjSetXX   StrSetType = 1 << 1 // Set if key exists.
	ObjSetGet  StrSetType = 1 << 2 // Reply with the old value instead of OK.
)

// parseSetArgs reads the options following SET key value.
func parseSetArgs(args []string) (StrSetType, error) {
	flags := ObjNoFlags
	for _, opt := range args {
		switch strings.ToUpper(opt) {
		case "NX":
			if flags&ObjSetXX != 0 {
				return 0, ErrSyntax
			}
			flags |= ObjSetNX
		case "XX":
			if flags&ObjSetNX != 0 {
				return 0, ErrSyntax
			}
			flags |= ObjSetXX
		case "GET":
			flags |= ObjSetGet
		default:
			return 0, ErrSyntax
		}
	}
	return flags, nil
}

/* setGenericCommand implements SET, SETNX and GETSET.
 *
 * 'flags' changes the behavior of the command (NX, XX or GET).
 * Without GET the reply is +OK when the value was stored and a null bulk
 * when NX or XX prevented it. With GET the reply is the old value. */
func setGenericCommand(c *Client, flags StrSetType, key string, val []byte) {
	var setFlags db.SetFlags
	if flags&ObjSetNX != 0 {
		setFlags |= db.SetKeyNX
	}
	if flags&ObjSetXX != 0 {
		setFlags |= db.SetKeyXX
	}

	old, exist, written := c.db.SetKeyIf(key, val, setFlags)

	switch {
	case flags&ObjSetGet != 0:
		c.addReplyBulkOrNull(old, exist)
	case written:
		c.addReplyOK()
	default:
		c.addReplyNull()
	}
}

// SET key value [NX | XX] [GET]
func setCommand(c *Client) error {
	args := c.Args()
	flags, err := parseSetArgs(args[2:])
	if err != nil {
		return err
	}
	setGenericCommand(c, flags, args[0], []byte(args[1]))
	return nil
}

// SETNX key value
func setnxCommand(c *Client) error {
	args := c.Args()
	_, _, written := c.db.SetKeyIf(args[0], []byte(args[1]), db.SetKeyNX)
	if written {
		c.addReplyLongLong(1)
	} else {
		c.addReplyLongLong(0)
	}
	return nil
}

// GETSET key value
func getsetCommand(c *Client) error {
	args := c.Args()
	setGenericCommand(c, ObjSetGet, args[0], []byte(args[1]))
	return nil
}

// GET key
func getCommand(c *Client) error {
	c.addReplyBulkOrNull(c.db.LookupKey(c.Args()[0]))
	return nil
}

// APPEND key value
func appendCommand(c *Client) error {
	args := c.Args()
	c.addReplyLongLong(int64(c.db.Append(args[0], []byte(args[1]))))
	return nil
}

// STRLEN key
func strlenCommand(c *Client) error {
	val, _ := c.db.LookupKey(c.Args()[0])
	c.addReplyLongLong(int64(len(val)))
	return nil
}

func incrDecrCommand(c *Client, delta int64) error {
	n, err := c.db.IncrBy(c.Args()[0], delta)
	if err != nil {
		if errors.Is(err, db.ErrValueNotInteger) {
			return ErrNotInteger
		}
		return err
	}
	c.addReplyLongLong(n)
	return nil
}

// INCR key
func incrCommand(c *Client) error {
	return incrDecrCommand(c, 1)
}

// DECR key
func decrCommand(c *Client) error {
	return incrDecrCommand(c, -1)
}

// INCRBY key increment
func incrbyCommand(c *Client) error {
	delta, err := strconv.ParseInt(c.Args()[1], 10, 64)
	if err != nil {
		return ErrNotInteger
	}
	return incrDecrCommand(c, delta)
}

// DECRBY key decrement
func decrbyCommand(c *Client) error {
	delta, err := strconv.ParseInt(c.Args()[1], 10, 64)
	if err != nil {
		return ErrNotInteger
	}
	if delta == math.MinInt64 {
		return db.ErrOverflow
	}
	return incrDecrCommand(c, -delta)
}
