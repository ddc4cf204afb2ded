package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Post(ctx context.Context, text string) error
	Feed(ctx context.Context) error
	Show(ctx context.Context, id string) error
	Mark(ctx context.Context, id, markType string) error
	Marked(ctx context.Context) error
	Remove(ctx context.Context, id string) error
	Verify(ctx context.Context) error
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Reset(ctx context.Context) error
}

const (
	helpAnonymous = "Available commands: register, login, feed, show <id>, verify, ping, migrate, reset, exit"
	helpLoggedIn  = "Available commands: post [text], feed, show <id>, mark <id> <type>, marked, rm <id>, whoami, logout, verify, ping, migrate, reset, exit"
)

// runREPL starts a simple read–eval–print loop for the IdeaBoard CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Errors returned by handlers are printed as
// they are. The loop exits on EOF or when the user types "exit" or "quit".
//
// Mark types: shitpost, spark, gonna_implement, ignored.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("ib %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpAnonymous)
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "post":
			cmdErr = a.Post(ctx, strings.Join(args, " "))

		case "feed":
			cmdErr = a.Feed(ctx)

		case "show":
			if len(args) != 1 {
				printlnFn("Usage: show <id>")
				continue
			}
			cmdErr = a.Show(ctx, args[0])

		case "mark":
			if len(args) != 2 {
				printlnFn("Usage: mark <id> <shitpost|spark|gonna_implement|ignored>")
				continue
			}
			cmdErr = a.Mark(ctx, args[0], args[1])

		case "marked":
			cmdErr = a.Marked(ctx)

		case "rm":
			if len(args) != 1 {
				printlnFn("Usage: rm <id>")
				continue
			}
			cmdErr = a.Remove(ctx, args[0])

		case "verify":
			cmdErr = a.Verify(ctx)

		case "ping":
			cmdErr = a.Ping(ctx)

		case "migrate":
			cmdErr = a.Migrate(ctx)

		case "reset":
			cmdErr = a.Reset(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr.Error())
		}
		if err != nil {
			return
		}
	}
}
