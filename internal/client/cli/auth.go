package cli

import (
	"context"
	"os"

	"github.com/dmitrijs2005/storyshare/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a name, email and password and creates an account.
// The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", os.Stdout)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.Register(ctx, name, email, string(password)); err != nil {
		return err
	}

	printlnFn("Success! You can log in now.")
	return nil
}

// Login prompts for credentials and authenticates against the server. On
// success the session is persisted, so a restart keeps the user signed in.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.Login(ctx, email, string(password)); err != nil {
		return err
	}

	printlnFn("Logged in as", a.session.UserName())
	return nil
}

// Logout ends the session. Local stories stay; they belong to the device,
// not the account.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	printlnFn("Logged out.")
	return nil
}
