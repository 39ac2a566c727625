package cli

import (
	"bufio"
	"context"
	"fmt"
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
	Add(ctx context.Context) error
	List(ctx context.Context, args []string) error
	Favorites(ctx context.Context, args []string) error
	Save(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Sync(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Unsubscribe(ctx context.Context) error
}

func (a *App) getStatus() string {
	s := ""
	if a.session.UserName() != "" {
		s = a.session.UserName() + " "
	}
	s = s + string(a.mode())
	return fmt.Sprintf("(%s)", s)
}

// runREPL reads a line from the scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Errors returned by command handlers are printed and the loop continues;
// a failed command never takes the REPL down.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	printlnFn("Welcome to StoryShare CLI (type 'help' for commands)")

	for {
		fmt.Printf("story %s> ", statusFn())
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, add, favorites, save, delete, search, sync, subscribe, unsubscribe, logout, exit")
			} else {
				printlnFn("Available commands: (l)ist, add, favorites, save, delete, search, sync, register, login, exit")
			}

		case "register":
			err = a.Register(ctx)

		case "login":
			err = a.Login(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "add":
			err = a.Add(ctx)

		case "l", "list":
			err = a.List(ctx, args)

		case "favorites":
			err = a.Favorites(ctx, args)

		case "save":
			err = a.Save(ctx, args)

		case "delete":
			err = a.Delete(ctx, args)

		case "search":
			err = a.Search(ctx, args)

		case "sync":
			err = a.Sync(ctx)

		case "subscribe":
			err = a.Subscribe(ctx)

		case "unsubscribe":
			err = a.Unsubscribe(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}
