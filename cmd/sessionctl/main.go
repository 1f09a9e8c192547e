package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/taskpilot/taskpilot/backend/go-services/internal/session"
)

const usage = `sessionctl drives a client session against a running auth service.

usage: sessionctl [flags] <command> [args]

commands:
  signup <email> <password>   register a local account (does not log in)
  login <email> <password>    log in with a local credential
  google <id-token>           log in with a Google ID token
  whoami                      print the restored session, if any
  logout                      clear the stored session
`

func main() {
	server := flag.String("server", "http://localhost:5000", "auth service base URL")
	storePath := flag.String("store", defaultStorePath(), "session file path")
	timeout := flag.Duration("timeout", 10*time.Second, "request timeout")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	mgr := session.NewManager(session.NewClient(*server, *timeout), session.NewFileStore(*storePath))
	ctx := context.Background()

	switch args[0] {
	case "signup":
		if len(args) != 3 {
			flag.Usage()
			os.Exit(2)
		}
		client := session.NewClient(*server, *timeout)
		if err := client.Signup(ctx, args[1], args[2]); err != nil {
			log.Fatalf("signup failed: %v", err)
		}
		fmt.Println("user created")
	case "login":
		if len(args) != 3 {
			flag.Usage()
			os.Exit(2)
		}
		u, err := mgr.Login(ctx, args[1], args[2])
		if err != nil {
			log.Fatalf("login failed: %v", err)
		}
		fmt.Printf("logged in as %s <%s> (%s)\n", u.Name, u.Email, u.Provider)
	case "google":
		if len(args) != 2 {
			flag.Usage()
			os.Exit(2)
		}
		u, err := mgr.LoginWithGoogle(ctx, args[1])
		if err != nil {
			log.Fatalf("google login failed: %v", err)
		}
		fmt.Printf("logged in as %s <%s> (%s)\n", u.Name, u.Email, u.Provider)
	case "whoami":
		u, err := mgr.Restore()
		if err != nil {
			log.Fatalf("restore failed: %v", err)
		}
		if u == nil {
			fmt.Println("not logged in")
			return
		}
		fmt.Printf("%s <%s> (%s)\n", u.Name, u.Email, u.Provider)
	case "logout":
		mgr.Logout()
		fmt.Println("logged out")
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "session.json"
	}
	return filepath.Join(home, ".taskpilot", "session.json")
}
