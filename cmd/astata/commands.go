package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/armon/go-radix"
)

// command is a sub-command of Stata. Any unique prefix of its name selects it.
type command struct {
	name string
	help string
	// usesWindow is set for commands that read the window, which must match the file patterns.
	usesWindow bool
	run        func(a *App, host *windowHost) error
}

var commands = radix.New()

func init() {
	for _, c := range []command{
		{
			name:       "run",
			help:       "run the current line or the selections",
			usesWindow: true,
			run:        func(a *App, h *windowHost) error { return a.runner.Run(h, false) },
		},
		{
			name:       "down",
			help:       "run the current line or the selections and move to the next line",
			usesWindow: true,
			run:        func(a *App, h *windowHost) error { return a.runner.Run(h, true) },
		},
		{
			name: "prev",
			help: "run the previous command again",
			run:  func(a *App, h *windowHost) error { return a.runner.RunPrevious() },
		},
		{
			name:       "all",
			help:       "run the whole file as a do file",
			usesWindow: true,
			run:        func(a *App, h *windowHost) error { return a.runner.RunAll(h) },
		},
		{
			name:       "batch",
			help:       "write the current line or the selections to a file and run it with do",
			usesWindow: true,
			run:        func(a *App, h *windowHost) error { return a.runner.RunBatch(h) },
		},
		{
			name:       "para",
			help:       "run the paragraph around the cursor",
			usesWindow: true,
			run:        func(a *App, h *windowHost) error { return a.runner.RunParagraph(h) },
		},
		{
			name:       "prog",
			help:       "run the program definition around the cursor",
			usesWindow: true,
			run:        func(a *App, h *windowHost) error { return a.runner.RunProgram(h) },
		},
		{
			name:       "cd",
			help:       "change Stata's working directory to the directory of the file",
			usesWindow: true,
			run:        func(a *App, h *windowHost) error { return a.runner.SetWorkingDirectory(h) },
		},
		{
			name: "history",
			help: "show the recently sent code",
			run: func(a *App, h *windowHost) error {
				csv, err := a.runner.History()
				if err == nil {
					a.out.Append(csv)
				}
				return err
			},
		},
		{
			name: "stop",
			help: "stop the Stata console or ssh session",
			run:  func(a *App, h *windowHost) error { return a.runner.Stop() },
		},
		{
			name: "help",
			help: "list the sub-commands",
			run: func(a *App, h *windowHost) error {
				a.out.Append(commandHelp())
				return nil
			},
		},
	} {
		commands.Insert(c.name, c)
	}
}

// lookupCommand finds the command named by name or a unique prefix of it.
func lookupCommand(name string) (c command, err error) {
	if v, ok := commands.Get(name); ok {
		return v.(command), nil
	}

	var matches []string
	commands.WalkPrefix(name, func(k string, v interface{}) bool {
		c = v.(command)
		matches = append(matches, k)
		return false
	})

	switch len(matches) {
	case 0:
		err = fmt.Errorf("unknown sub-command '%s'. Try 'Stata help'", name)
	case 1:
		return
	default:
		sort.Strings(matches)
		err = fmt.Errorf("'%s' is ambiguous: it could be %s", name, strings.Join(matches, ", "))
	}
	return
}

func commandHelp() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Usage: %s [sub-command]\n", commandName)
	commands.Walk(func(k string, v interface{}) bool {
		fmt.Fprintf(&buf, "  %-8s %s\n", k, v.(command).help)
		return false
	})
	return buf.String()
}
