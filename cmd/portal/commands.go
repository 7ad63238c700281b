package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"os"
	"strings"

	"github.com/elobenin/rental-portal/internal/core/domain"
	"github.com/elobenin/rental-portal/internal/core/ports"
	"github.com/elobenin/rental-portal/internal/core/service"
	"github.com/elobenin/rental-portal/internal/view"
)

var errUsage = errors.New("usage")

type cli struct {
	lifecycle *service.SessionLifecycle
	out       io.Writer
}

func (c *cli) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "register":
		return c.register(ctx, args)
	case "login":
		return c.login(ctx, args)
	case "logout":
		return c.lifecycle.Logout(ctx)
	case "whoami":
		return c.print(c.lifecycle.Current())
	case "nav":
		return c.print(view.Compose(c.lifecycle.Current(), c.lifecycle.Capabilities()))
	case "capabilities":
		return c.print(c.lifecycle.Capabilities().Sorted())
	case "profile":
		return c.profile(ctx, args)
	case "role":
		return c.role(ctx, args)
	default:
		return errUsage
	}
}

func (c *cli) register(ctx context.Context, args []string) error {
	fs := newFlagSet("register")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password")
	confirm := fs.String("confirm", "", "password confirmation")
	name := fs.String("name", "", "display name (defaults to the email's local part)")
	role := fs.String("role", "", "owner, tenant or none")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	parsed, err := domain.ParseRole(*role)
	if err != nil {
		return err
	}
	session, err := c.lifecycle.Register(ctx, ports.RegisterInput{
		Email:           *email,
		Password:        *password,
		ConfirmPassword: *confirm,
		DisplayName:     *name,
		Role:            parsed,
	})
	if err != nil {
		return err
	}
	return c.print(session)
}

func (c *cli) login(ctx context.Context, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	session, err := c.lifecycle.Login(ctx, ports.LoginInput{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	return c.print(session)
}

func (c *cli) profile(ctx context.Context, args []string) error {
	fs := newFlagSet("profile")
	var update domain.ProfileUpdate
	optional(fs, &update.DisplayName, "name", "display name")
	optional(fs, &update.Email, "email", "email")
	optional(fs, &update.Bio, "bio", "short biography")
	optional(fs, &update.Location, "location", "city or region")
	optional(fs, &update.Phone, "phone", "phone number")
	optional(fs, &update.Website, "website", "personal website URL")
	optional(fs, &update.ProfilePicture, "picture", "profile picture URL")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	session, err := c.lifecycle.UpdateProfile(ctx, update)
	if err != nil {
		return err
	}
	return c.print(session)
}

func (c *cli) role(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	role, err := domain.ParseRole(args[0])
	if err != nil {
		return err
	}
	session, err := c.lifecycle.ChangeRole(ctx, role)
	if err != nil {
		return err
	}
	return c.print(session)
}

func (c *cli) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

// optionalString is a flag that records whether it was set.
type optionalString struct{ dst **string }

func (o optionalString) String() string {
	if o.dst == nil || *o.dst == nil {
		return ""
	}
	return **o.dst
}

func (o optionalString) Set(v string) error {
	v = strings.TrimSpace(v)
	*o.dst = &v
	return nil
}

func optional(fs *flag.FlagSet, dst **string, name, usage string) {
	fs.Var(optionalString{dst: dst}, name, usage)
}
