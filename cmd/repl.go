package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/fzft/bucketmap/config"
	"github.com/fzft/bucketmap/deps/hredis"
	"github.com/fzft/bucketmap/deps/linenoise"
	"github.com/fzft/bucketmap/node"
	"github.com/fzft/bucketmap/resp"
	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

const (
	HistFileEnv     = "BUCKETMAP_HISTFILE"
	HistFileDefault = ".bucketmap_history"
)

var ErrInvalidArgs = errors.New("invalid argument(s)")

type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// Cli is an interactive session bound to one connection.
type Cli struct {
	conn     *hredis.RedisContext
	prompt   string
	out      io.Writer
	errColor *color.Color
	help     []CliHelpEntry
}

func newCli(conn *hredis.RedisContext, prompt string, out io.Writer, colored bool) *Cli {
	errColor := color.New(color.FgRed)
	if colored {
		errColor.EnableColor()
	} else {
		errColor.DisableColor()
	}
	return &Cli{
		conn:     conn,
		prompt:   prompt + "> ",
		out:      out,
		errColor: errColor,
		help:     initHelp(),
	}
}

func repl() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive shell",
		Long: "Start an interactive shell. Without --addr the shell runs against an\n" +
			"in-process keyspace built from the config file.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			addr, _ := cmd.Flags().GetString("addr")
			prompt := addr
			if addr == "" {
				conf, cerr := loadConfig(cmd)
				if cerr != nil {
					return cerr
				}
				local, stop, lerr := startLocal(ctx, conf)
				if lerr != nil {
					return lerr
				}
				defer func() { err = multierr.Append(err, stop()) }()
				addr, prompt = local, "local"
			}

			conn, err := hredis.RedisConnect(ctx, addr)
			if err != nil {
				return err
			}
			defer conn.Close()

			cli := newCli(conn, prompt, cmd.OutOrStdout(), isatty.IsTerminal(os.Stdout.Fd()))
			return cli.run()
		},
	}

	cmd.Flags().StringP("addr", "a", "", "Server address (default: in-process keyspace)")
	cmd.Flags().StringP("config", "c", "", "Config file for the in-process keyspace")
	return cmd
}

// startLocal serves a fresh keyspace on a loopback port until stop is called.
func startLocal(ctx context.Context, conf *config.Config) (string, func() error, error) {
	keyspace, err := newKeyspace(conf)
	if err != nil {
		return "", nil, err
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	s := node.NewServer(ln.Addr().String(), keyspace)
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	stop := func() error {
		cancel()
		return <-done
	}
	return ln.Addr().String(), stop, nil
}

func (cli *Cli) run() error {
	ln := linenoise.New()
	defer ln.Close()

	var historyFile string
	if isatty.IsTerminal(os.Stdin.Fd()) {
		historyFile = getDotfilePath(HistFileEnv, HistFileDefault)
		if historyFile != "" {
			if err := ln.HistoryLoad(historyFile); err != nil {
				fmt.Fprintf(cli.out, "Could not load history: %v\n", err)
			}
		}
		ln.SetWordCompleter(helpWords(cli.help))
	}

	err := cli.loop(ln)
	if historyFile != "" {
		if serr := ln.HistorySave(historyFile); serr != nil {
			fmt.Fprintf(cli.out, "Could not save history: %v\n", serr)
		}
	}
	return err
}

// loop reads lines until EOF, Ctrl-C or quit.
func (cli *Cli) loop(lr lineReader) error {
	for {
		line, err := lr.Prompt(cli.prompt)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				return nil
			}
			return err
		}
		if strings.TrimSpace(line) != "" {
			lr.AppendHistory(line)
		}
		if quit := cli.eval(line); quit {
			return nil
		}
	}
}

// eval runs one input line and reports whether the session should end.
func (cli *Cli) eval(line string) bool {
	argv, err := splitArgs(line)
	if err != nil {
		fmt.Fprintln(cli.out, "Invalid argument(s)")
		return false
	}
	if len(argv) == 0 {
		return false
	}

	// check if we have a repeat command option and need to skip the first arg
	repeat := 1
	if n, err := strconv.Atoi(argv[0]); err == nil && len(argv) > 1 {
		if n <= 0 {
			fmt.Fprintln(cli.out, "Invalid repeat command option value.")
			return false
		}
		repeat = n
		argv = argv[1:]
	}

	switch {
	case strings.EqualFold(argv[0], "quit") || strings.EqualFold(argv[0], "exit"):
		return true
	case len(argv) == 1 && strings.EqualFold(argv[0], "clear"):
		linenoise.ClearScreen(cli.out)
	case strings.EqualFold(argv[0], "help") || argv[0] == "?":
		outputHelp(cli.out, cli.help, argv[1:])
	default:
		for i := 0; i < repeat; i++ {
			if !cli.issueCommand(argv) {
				break
			}
		}
	}
	return false
}

// issueCommand prints the reply and reports whether the connection is usable.
func (cli *Cli) issueCommand(argv []string) bool {
	reply, err := cli.conn.Do(argv...)
	var replyErr *hredis.ReplyError
	switch {
	case errors.As(err, &replyErr):
		fmt.Fprintln(cli.out, cli.errColor.Sprintf("(error) %s", replyErr.Message))
		return true
	case err != nil:
		fmt.Fprintln(cli.out, cli.errColor.Sprintf("Error: %v", err))
		return false
	}
	fmt.Fprintln(cli.out, resp.Format(reply))
	return true
}

// splitArgs splits a line into words. Double quotes understand \n, \t, \r
// and \" escapes; single quotes only \'. A closing quote must end the word.
func splitArgs(line string) ([]string, error) {
	var (
		argv  []string
		cur   strings.Builder
		inArg bool
		quote byte
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			switch {
			case c == '\\' && i+1 < len(line) && quote == '"':
				i++
				switch line[i] {
				case 'n':
					cur.WriteByte('\n')
				case 't':
					cur.WriteByte('\t')
				case 'r':
					cur.WriteByte('\r')
				default:
					cur.WriteByte(line[i])
				}
			case c == '\\' && i+1 < len(line) && quote == '\'' && line[i+1] == '\'':
				i++
				cur.WriteByte('\'')
			case c == quote:
				quote = 0
				if i+1 < len(line) && line[i+1] != ' ' && line[i+1] != '\t' {
					return nil, ErrInvalidArgs
				}
			default:
				cur.WriteByte(c)
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			if inArg {
				argv = append(argv, cur.String())
				cur.Reset()
				inArg = false
			}
		case c == '"' || c == '\'':
			quote = c
			inArg = true
		default:
			cur.WriteByte(c)
			inArg = true
		}
	}
	if quote != 0 {
		return nil, ErrInvalidArgs
	}
	if inArg {
		argv = append(argv, cur.String())
	}
	return argv, nil
}

// getDotfilePath returns $envOverride, or dotFilename under the home
// directory. "/dev/null" disables the file.
func getDotfilePath(envOverride, dotFilename string) string {
	if path := os.Getenv(envOverride); path != "" {
		if path == "/dev/null" {
			return ""
		}
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, dotFilename)
}
