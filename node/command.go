package node

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fzft/bucketmap/db"
)

type CommandFlags uint64

const (
	CmdWrite CommandFlags = 1 << iota
	CmdReadOnly
	CmdAdmin
	CmdFast
)

type RedisCommandGroup uint8

const (
	RedisCommandGroupGeneric RedisCommandGroup = iota
	RedisCommandGroupString
	RedisCommandGroupConnection
	RedisCommandGroupServer
)

func (g RedisCommandGroup) String() string {
	switch g {
	case RedisCommandGroupGeneric:
		return "generic"
	case RedisCommandGroupString:
		return "string"
	case RedisCommandGroupConnection:
		return "connection"
	case RedisCommandGroupServer:
		return "server"
	default:
		return "unknown"
	}
}

var (
	ErrSyntax       = errors.New("syntax error")
	ErrNotInteger   = errors.New("value is not an integer or out of range")
	ErrUnknownCmd   = errors.New("unknown command")
	ErrWrongArgsNum = errors.New("wrong number of arguments")
)

// RedisCommandProc executes a command for c. A returned error is sent to the
// client as an -ERR reply; the proc must not have written a reply then.
type RedisCommandProc func(c *Client) error

type RedisCommand struct {
	name    string
	proc    RedisCommandProc
	group   RedisCommandGroup
	arity   int // exact argc when positive, minimum argc when negative
	flags   CommandFlags
	args    string
	summary string

	// Runtime populated data
	calls       atomic.Int64
	failedCalls atomic.Int64
}

func (cmd *RedisCommand) Name() string             { return cmd.name }
func (cmd *RedisCommand) Group() RedisCommandGroup { return cmd.group }
func (cmd *RedisCommand) Calls() int64             { return cmd.calls.Load() }
func (cmd *RedisCommand) FailedCalls() int64       { return cmd.failedCalls.Load() }

func (cmd *RedisCommand) arityOK(argc int) bool {
	if cmd.arity >= 0 {
		return argc == cmd.arity
	}
	return argc >= -cmd.arity
}

// commandTable is the static list every server registers at start. Servers
// register copies, so call counters are per server.
// It is populated in init because statsCommand reads it (initialization cycle).
var commandTable []*RedisCommand

func init() {
	commandTable = []*RedisCommand{
		{name: "ping", proc: pingCommand, group: RedisCommandGroupConnection, arity: -1, flags: CmdFast, args: "[message]", summary: "Returns the server's liveliness response."},
		{name: "echo", proc: echoCommand, group: RedisCommandGroupConnection, arity: 2, flags: CmdFast, args: "message", summary: "Returns the given string."},
		{name: "quit", proc: quitCommand, group: RedisCommandGroupConnection, arity: -1, flags: CmdFast, summary: "Closes the connection."},
		{name: "set", proc: setCommand, group: RedisCommandGroupString, arity: -3, flags: CmdWrite, args: "key value [NX | XX] [GET]", summary: "Sets the string value of a key, ignoring its type."},
		{name: "get", proc: getCommand, group: RedisCommandGroupString, arity: 2, flags: CmdReadOnly | CmdFast, args: "key", summary: "Returns the string value of a key."},
		{name: "getset", proc: getsetCommand, group: RedisCommandGroupString, arity: 3, flags: CmdWrite, args: "key value", summary: "Returns the previous string value of a key after setting it to a new value."},
		{name: "setnx", proc: setnxCommand, group: RedisCommandGroupString, arity: 3, flags: CmdWrite | CmdFast, args: "key value", summary: "Set the string value of a key only when the key doesn't exist."},
		{name: "append", proc: appendCommand, group: RedisCommandGroupString, arity: 3, flags: CmdWrite, args: "key value", summary: "Appends a string to the value of a key. Creates the key if it doesn't exist."},
		{name: "incr", proc: incrCommand, group: RedisCommandGroupString, arity: 2, flags: CmdWrite | CmdFast, args: "key", summary: "Increments the integer value of a key by one. Uses 0 as initial value if the key doesn't exist."},
		{name: "incrby", proc: incrbyCommand, group: RedisCommandGroupString, arity: 3, flags: CmdWrite | CmdFast, args: "key increment", summary: "Increments the integer value of a key by a number. Uses 0 as initial value if the key doesn't exist."},
		{name: "decr", proc: decrCommand, group: RedisCommandGroupString, arity: 2, flags: CmdWrite | CmdFast, args: "key", summary: "Decrements the integer value of a key by one. Uses 0 as initial value if the key doesn't exist."},
		{name: "decrby", proc: decrbyCommand, group: RedisCommandGroupString, arity: 3, flags: CmdWrite | CmdFast, args: "key decrement", summary: "Decrements a number from the integer value of a key. Uses 0 as initial value if the key doesn't exist."},
		{name: "strlen", proc: strlenCommand, group: RedisCommandGroupString, arity: 2, flags: CmdReadOnly | CmdFast, args: "key", summary: "Returns the length of a string value."},
		{name: "del", proc: delCommand, group: RedisCommandGroupGeneric, arity: -2, flags: CmdWrite, args: "key [key ...]", summary: "Deletes one or more keys."},
		{name: "exists", proc: existsCommand, group: RedisCommandGroupGeneric, arity: -2, flags: CmdReadOnly | CmdFast, args: "key [key ...]", summary: "Determines whether one or more keys exist."},
		{name: "keys", proc: keysCommand, group: RedisCommandGroupGeneric, arity: 2, flags: CmdReadOnly, args: "pattern", summary: "Returns all key names that match a glob-style pattern ('*' also matches '/')."},
		{name: "randomkey", proc: randomkeyCommand, group: RedisCommandGroupGeneric, arity: 1, flags: CmdReadOnly, summary: "Returns a random key name from the database."},
		{name: "dbsize", proc: dbsizeCommand, group: RedisCommandGroupServer, arity: 1, flags: CmdReadOnly | CmdFast, summary: "Returns the number of keys in the database."},
		{name: "flushdb", proc: flushdbCommand, group: RedisCommandGroupServer, arity: 1, flags: CmdWrite | CmdAdmin, summary: "Removes all keys from the current database."},
		{name: "stats", proc: statsCommand, group: RedisCommandGroupServer, arity: 1, flags: CmdReadOnly, summary: "Returns bucket and server statistics."},
	}
}

// newCommandDict indexes fresh copies of commands by lower-case name.
func newCommandDict(commands []*RedisCommand) *db.HashTable[string, *RedisCommand] {
	opts := db.NewOptions[string]()
	opts.Hasher = db.StringHasher
	dict := db.NewHashTableWithOpts[string, *RedisCommand](opts)
	for _, cmd := range commands {
		name := strings.ToLower(cmd.name)
		if dict.Contains(name) {
			panic(fmt.Sprintf("duplicate command %q", name))
		}
		dict.Put(name, &RedisCommand{
			name:    cmd.name,
			proc:    cmd.proc,
			group:   cmd.group,
			arity:   cmd.arity,
			flags:   cmd.flags,
			args:    cmd.args,
			summary: cmd.summary,
		})
	}
	return dict
}

// CommandDoc is the static help for one command.
type CommandDoc struct {
	Name    string
	Args    string
	Summary string
	Group   string
}

// CommandDocs lists the help entries of every built-in command.
func CommandDocs() []CommandDoc {
	docs := make([]CommandDoc, 0, len(commandTable))
	for _, cmd := range commandTable {
		docs = append(docs, CommandDoc{
			Name:    strings.ToUpper(cmd.Name()),
			Args:    cmd.args,
			Summary: cmd.summary,
			Group:   cmd.Group().String(),
		})
	}
	return docs
}
