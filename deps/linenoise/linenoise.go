package linenoise

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/peterh/liner"
)

const clearSeq = "\x1b[H\x1b[2J"

// LineNoise is a line editor with history and completion.
type LineNoise struct {
	*liner.State
}

// New puts the terminal in raw mode. Close restores it.
func New() *LineNoise {
	ln := &LineNoise{liner.NewLiner()}
	ln.SetCtrlCAborts(true)
	return ln
}

// HistoryLoad reads history from path. A missing file is not an error.
func (ln *LineNoise) HistoryLoad(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	_, err = ln.ReadHistory(f)
	return err
}

func (ln *LineNoise) HistorySave(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := ln.WriteHistory(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SetWordCompleter completes the first word of a line from words.
func (ln *LineNoise) SetWordCompleter(words []string) {
	sorted := append([]string(nil), words...)
	sort.Strings(sorted)
	ln.SetCompleter(func(line string) []string {
		return Complete(sorted, line)
	})
}

// ClearScreen moves the cursor home and clears w.
func ClearScreen(w io.Writer) error {
	_, err := fmt.Fprint(w, clearSeq)
	return err
}

// Complete returns the words that extend line, matched case-insensitively
// and written in the case of the typed prefix.
func Complete(words []string, line string) []string {
	if line == "" || strings.ContainsAny(line, " \t") {
		return nil
	}
	lower := strings.ToLower(line)
	upper := line == strings.ToUpper(line) && line != lower

	var out []string
	for _, w := range words {
		if !strings.HasPrefix(strings.ToLower(w), lower) {
			continue
		}
		if upper {
			out = append(out, strings.ToUpper(w))
		} else {
			out = append(out, strings.ToLower(w))
		}
	}
	return out
}
