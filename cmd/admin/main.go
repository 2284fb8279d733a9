// Command admin manages author accounts and token housekeeping.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"quill/internal/bootstrap"
	"quill/internal/cache"
	"quill/internal/config"
	"quill/internal/middleware"
	"quill/internal/repository"
)

const usageText = `Usage:
  go run ./cmd/admin promote <username>   - Grant the author flag
  go run ./cmd/admin demote <username>    - Revoke the author flag
  go run ./cmd/admin list-authors         - List all authors
  go run ./cmd/admin purge-tokens         - Delete expired blacklisted tokens`

var errUsage = errors.New(usageText)

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usageText)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	middleware.InitLogger(cfg.Env)

	db, rdb, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	store := cache.New(rdb)

	app := &adminApp{
		users:  repository.NewUserRepository(db, store),
		tokens: repository.NewTokenRepository(db, store),
		out:    os.Stdout,
		now:    time.Now,
	}
	if err := app.run(context.Background(), os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Println(usageText)
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

type adminApp struct {
	users  repository.UserRepository
	tokens repository.TokenRepository
	out    io.Writer
	now    func() time.Time
}

func (a *adminApp) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "promote", "demote":
		if len(args) < 2 {
			return errUsage
		}
		return a.setAuthor(ctx, args[1], args[0] == "promote")
	case "list-authors":
		return a.listAuthors(ctx)
	case "purge-tokens":
		n, err := a.tokens.PurgeExpired(ctx, a.now())
		if err != nil {
			return fmt.Errorf("purge tokens: %w", err)
		}
		fmt.Fprintf(a.out, "Removed %d expired blacklisted tokens\n", n)
		return nil
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func (a *adminApp) setAuthor(ctx context.Context, username string, isAuthor bool) error {
	user, err := a.users.SetAuthor(ctx, username, isAuthor)
	if err != nil {
		if repository.IsNotFound(err) {
			return fmt.Errorf("user %s not found", username)
		}
		return fmt.Errorf("update user: %w", err)
	}
	verb := "demoted from"
	if isAuthor {
		verb = "promoted to"
	}
	fmt.Fprintf(a.out, "%s (ID: %d) %s author\n", user.Username, user.ID, verb)
	return nil
}

func (a *adminApp) listAuthors(ctx context.Context) error {
	authors, err := a.users.ListAuthors(ctx)
	if err != nil {
		return fmt.Errorf("list authors: %w", err)
	}
	if len(authors) == 0 {
		fmt.Fprintln(a.out, "No authors found")
		return nil
	}
	fmt.Fprintf(a.out, "Authors (%d):\n", len(authors))
	for _, u := range authors {
		fmt.Fprintf(a.out, "  %d\t%s\t%s\n", u.ID, u.Username, u.Email)
	}
	return nil
}
