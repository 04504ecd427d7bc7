package node

import (
	"fmt"
	"strings"
	"time"
)

// DEL key [key ...]
func delCommand(c *Client) error {
	var deleted int64
	for _, key := range c.Args() {
		if c.db.GenericDelete(key) {
			deleted++
		}
	}
	c.addReplyLongLong(deleted)
	return nil
}

// EXISTS key [key ...]; a key named twice is counted twice.
func existsCommand(c *Client) error {
	var count int64
	for _, key := range c.Args() {
		if c.db.Exists(key) {
			count++
		}
	}
	c.addReplyLongLong(count)
	return nil
}

// KEYS pattern
func keysCommand(c *Client) error {
	c.addReplyArray(c.db.Keys(c.Args()[0]))
	return nil
}

// RANDOMKEY
func randomkeyCommand(c *Client) error {
	key, ok := c.db.RandomKey()
	c.addReplyBulkOrNull([]byte(key), ok)
	return nil
}

// DBSIZE
func dbsizeCommand(c *Client) error {
	c.addReplyLongLong(int64(c.db.DBSize()))
	return nil
}

// FLUSHDB
func flushdbCommand(c *Client) error {
	c.db.FlushDB()
	c.addReplyOK()
	return nil
}

// STATS replies with an INFO style "field:value" text block.
func statsCommand(c *Client) error {
	s := c.server
	st := c.db.Stats()

	var b strings.Builder
	b.WriteString("# Keyspace\r\n")
	fmt.Fprintf(&b, "db:%d\r\n", c.db.GetID())
	fmt.Fprintf(&b, "keys:%d\r\n", st.Entries)
	fmt.Fprintf(&b, "buckets:%d\r\n", st.Buckets)
	fmt.Fprintf(&b, "used_buckets:%d\r\n", st.UsedBuckets)
	fmt.Fprintf(&b, "max_chain:%d\r\n", st.MaxChain)
	fmt.Fprintf(&b, "load_factor:%.4f\r\n", st.LoadFactor)
	fmt.Fprintf(&b, "used_memory:%d\r\n", c.db.UsedMemory())
	fmt.Fprintf(&b, "evicted_keys:%d\r\n", c.db.EvictedKeys())
	b.WriteString("# Server\r\n")
	fmt.Fprintf(&b, "uptime_in_seconds:%d\r\n", int64(time.Since(s.startTime).Seconds()))
	fmt.Fprintf(&b, "connected_clients:%d\r\n", s.ConnectedClients())
	fmt.Fprintf(&b, "total_connections_received:%d\r\n", s.totalConnections.Load())
	fmt.Fprintf(&b, "total_commands_processed:%d\r\n", s.totalCommands.Load())
	fmt.Fprintf(&b, "write_commands_processed:%d\r\n", s.dirty.Load())
	fmt.Fprintf(&b, "protocol_errors:%d\r\n", s.protocolErrors.Load())
	b.WriteString("# Commandstats\r\n")
	for _, static := range commandTable {
		cmd, ok := s.lookupCommand(static.name)
		if !ok || cmd.Calls() == 0 {
			continue
		}
		fmt.Fprintf(&b, "cmdstat_%s:calls=%d,failed_calls=%d\r\n", cmd.Name(), cmd.Calls(), cmd.FailedCalls())
	}
	c.addReplyBulkString(b.String())
	return nil
}

// PING [message]
func pingCommand(c *Client) error {
	switch args := c.Args(); len(args) {
	case 0:
		c.addReplyStatus("PONG")
	case 1:
		c.addReplyBulkString(args[0])
	default:
		return fmt.Errorf("%w for 'ping' command", ErrWrongArgsNum)
	}
	return nil
}

// ECHO message
func echoCommand(c *Client) error {
	c.addReplyBulkString(c.Args()[0])
	return nil
}

// QUIT
func quitCommand(c *Client) error {
	c.flags |= ClientCloseAfterReply
	c.addReplyOK()
	return nil
}
