package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"

	"github.com/jrsteele09/go-auth-client/auth"
)

var errUsage = errors.New("usage")

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string, out io.Writer) error
}

var commands = map[string]command{
	"login":   {summary: "request a session: login -user <id> [-role <role>] [-tenant <id>]", run: runLogin},
	"refresh": {summary: "rotate the persisted session", run: runRefresh},
	"revoke":  {summary: "revoke every session of the current identity", run: runRevoke},
	"info":    {summary: "print the current session", run: runInfo},
	"health":  {summary: "check the API", run: runHealth},
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: authclient <command> [flags]")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-8s %s\n", name, commands[name].summary)
	}
}

func runLogin(ctx context.Context, a *app, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	userID := fs.String("user", "", "user id")
	role := fs.String("role", auth.DefaultRole, "role")
	tenantID := fs.String("tenant", "", "tenant id")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if *userID == "" {
		return fmt.Errorf("%w: -user is required", errUsage)
	}

	if _, err := a.service.Login(ctx, auth.Identity{UserID: *userID, Role: *role, TenantID: *tenantID}); err != nil {
		return err
	}
	return printInfo(a, out)
}

func runRefresh(ctx context.Context, a *app, _ []string, out io.Writer) error {
	if _, err := a.service.Refresh(ctx, nil); err != nil {
		return err
	}
	return printInfo(a, out)
}

func runRevoke(ctx context.Context, a *app, _ []string, out io.Writer) error {
	if err := a.service.RevokeCurrent(ctx); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out, "revoked")
	return err
}

func runInfo(_ context.Context, a *app, _ []string, out io.Writer) error {
	return printInfo(a, out)
}

func runHealth(ctx context.Context, a *app, _ []string, out io.Writer) error {
	result := a.sources.Health(ctx)
	if err := result.Err(); err != nil {
		return err
	}
	return writeJSON(out, result)
}

func printInfo(a *app, out io.Writer) error {
	info, ok := a.service.Info()
	if !ok {
		return auth.ErrNoSession
	}
	return writeJSON(out, info)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
