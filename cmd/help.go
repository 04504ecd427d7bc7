package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fzft/bucketmap/db"
	"github.com/fzft/bucketmap/node"
)

type CliHelpType uint8

const (
	CliHelpCommand CliHelpType = iota
	CliHelpGroup
)

type CliHelpEntry struct {
	tp   CliHelpType
	full string // "SET" or "@string"
	docs node.CommandDoc
}

// initHelp builds one entry per command and one per command group.
func initHelp() []CliHelpEntry {
	docs := node.CommandDocs()
	groups := db.NewSet[string](8)

	entries := make([]CliHelpEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, CliHelpEntry{tp: CliHelpCommand, full: d.Name, docs: d})
		groups.Add(d.Group)
	}

	names := groups.Members()
	sort.Strings(names)
	for _, g := range names {
		entries = append(entries, CliHelpEntry{tp: CliHelpGroup, full: "@" + g, docs: node.CommandDoc{Group: g}})
	}
	return entries
}

func outputCommandHelp(w io.Writer, d node.CommandDoc, withGroup bool) {
	fmt.Fprintf(w, "\n  %s %s\n", d.Name, d.Args)
	fmt.Fprintf(w, "  summary: %s\n", d.Summary)
	if withGroup {
		fmt.Fprintf(w, "  group: %s\n", d.Group)
	}
}

func outputGenericHelp(w io.Writer, entries []CliHelpEntry) {
	fmt.Fprintf(w, "%s\n"+
		"To get help about commands type:\n"+
		"      \"help @<group>\" to get a list of commands in <group>\n"+
		"      \"help <command>\" for help on <command>\n"+
		"      \"help <tab>\" to get a list of possible help topics\n"+
		"      \"quit\" to exit\n"+
		"\n"+
		"Groups:", versionString())
	for _, e := range entries {
		if e.tp == CliHelpGroup {
			fmt.Fprintf(w, " %s", e.full)
		}
	}
	fmt.Fprintln(w)
}

// outputHelp prints help for a command name or an @group.
func outputHelp(w io.Writer, entries []CliHelpEntry, argv []string) {
	if len(argv) == 0 {
		outputGenericHelp(w, entries)
		return
	}

	topic := argv[0]
	if strings.HasPrefix(topic, "@") {
		group := strings.ToLower(topic[1:])
		for _, e := range entries {
			if e.tp == CliHelpCommand && e.docs.Group == group {
				outputCommandHelp(w, e.docs, false)
			}
		}
		fmt.Fprintln(w)
		return
	}

	for _, e := range entries {
		if e.tp == CliHelpCommand && strings.EqualFold(e.full, topic) {
			outputCommandHelp(w, e.docs, true)
			fmt.Fprintln(w)
			return
		}
	}
	fmt.Fprintf(w, "No help for %q\n", topic)
}

// helpWords lists everything worth tab completing.
func helpWords(entries []CliHelpEntry) []string {
	words := []string{"help", "clear", "quit", "exit"}
	for _, e := range entries {
		if e.tp == CliHelpCommand {
			words = append(words, e.full)
		}
	}
	return words
}
