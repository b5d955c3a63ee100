package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/threedev/studio/internal/auth"
	"github.com/threedev/studio/internal/database/users"
	"github.com/threedev/studio/internal/entrypoint"
)

const msgAllFieldsRequired = "All fields must be filled"

// SignUpCommand creates an account and signs it in
type SignUpCommand struct {
	app     *entrypoint.App
	console *Console

	Username string
}

func NewSignUpCommand(app *entrypoint.App, console *Console) *SignUpCommand {
	return &SignUpCommand{app: app, console: console}
}

func (cmd *SignUpCommand) ParseFlags(args []string) error {
	fs := cmd.console.newFlagSet("signup", "signup [options]")
	fs.StringVar(&cmd.Username, "username", "", "Username (prompted when omitted)")
	return fs.Parse(args)
}

func (cmd *SignUpCommand) Run(ctx context.Context) error {
	c := cmd.console
	username := cmd.Username
	if username == "" {
		var err error
		if username, err = c.Prompt("Username"); err != nil {
			return err
		}
	}
	password, err := c.Password("Password")
	if err != nil {
		return err
	}
	confirm, err := c.Password("Confirm password")
	if err != nil {
		return err
	}

	if username == "" || password == "" || confirm == "" {
		return c.reportRejected([]string{msgAllFieldsRequired})
	}

	res, err := cmd.app.Users.ValidateSignUp(ctx, username, password, confirm)
	if err != nil {
		return err
	}
	if !res.OK() {
		fmt.Fprintln(c.Out, "Sign up failed:")
		return c.reportRejected(res.Messages())
	}

	user, err := cmd.app.Users.CreateUser(ctx, username, password)
	if errors.Is(err, users.ErrUserExists) {
		fmt.Fprintln(c.Out, "Sign up failed:")
		return c.reportRejected([]string{auth.RuleUsernameAvailability.Message()})
	}
	if err != nil {
		return err
	}
	cmd.app.Log.Info("account created", "user_id", user.ID)

	if err := cmd.app.Sessions.SignIn(ctx, user); err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "Account created. Signed in as %s.\n", user.Username)
	return nil
}

// SignInCommand starts a session for an existing account
type SignInCommand struct {
	app     *entrypoint.App
	console *Console

	Username string
}

func NewSignInCommand(app *entrypoint.App, console *Console) *SignInCommand {
	return &SignInCommand{app: app, console: console}
}

func (cmd *SignInCommand) ParseFlags(args []string) error {
	fs := cmd.console.newFlagSet("signin", "signin [options]")
	fs.StringVar(&cmd.Username, "username", "", "Username (prompted when omitted)")
	return fs.Parse(args)
}

func (cmd *SignInCommand) Run(ctx context.Context) error {
	c := cmd.console
	username := cmd.Username
	if username == "" {
		var err error
		if username, err = c.Prompt("Username"); err != nil {
			return err
		}
	}
	password, err := c.Password("Password")
	if err != nil {
		return err
	}
	if username == "" || password == "" {
		return c.reportRejected([]string{msgAllFieldsRequired})
	}

	user, err := cmd.app.Users.Authenticate(ctx, username, password)
	if errors.Is(err, users.ErrUserNotFound) || errors.Is(err, users.ErrInvalidCredentials) {
		cmd.app.Log.Warn("sign in failed", "username", username)
		return c.reportRejected([]string{"Invalid username or password"})
	}
	if err != nil {
		return err
	}

	if err := cmd.app.Sessions.SignIn(ctx, user); err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "Signed in as %s.\n", user.Username)
	return nil
}

// SignOutCommand ends the current session
type SignOutCommand struct {
	app     *entrypoint.App
	console *Console
}

func NewSignOutCommand(app *entrypoint.App, console *Console) *SignOutCommand {
	return &SignOutCommand{app: app, console: console}
}

func (cmd *SignOutCommand) ParseFlags(args []string) error {
	return cmd.console.newFlagSet("signout", "signout").Parse(args)
}

func (cmd *SignOutCommand) Run(ctx context.Context) error {
	if err := cmd.app.Sessions.SignOut(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.console.Out, "Signed out.")
	return nil
}

// WhoAmICommand prints the signed-in account
type WhoAmICommand struct {
	app     *entrypoint.App
	console *Console
}

func NewWhoAmICommand(app *entrypoint.App, console *Console) *WhoAmICommand {
	return &WhoAmICommand{app: app, console: console}
}

func (cmd *WhoAmICommand) ParseFlags(args []string) error {
	return cmd.console.newFlagSet("whoami", "whoami").Parse(args)
}

func (cmd *WhoAmICommand) Run(ctx context.Context) error {
	out := cmd.console.Out

	user, err := cmd.app.CurrentUser(ctx)
	if errors.Is(err, auth.ErrNotSignedIn) {
		count, err := cmd.app.Users.CountUsers(ctx)
		if err != nil {
			return err
		}
		if count == 0 {
			fmt.Fprintf(out, "Not signed in. No accounts yet, run '%s signup' to create one.\n", programName())
			return nil
		}
		fmt.Fprintln(out, "Not signed in.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s (id %d, member since %s)\n", user.Username, user.ID, user.CreatedAt.Format("2006-01-02"))
	return nil
}

// AccountCommand renames, re-passwords or deletes the signed-in account
type AccountCommand struct {
	app     *entrypoint.App
	console *Console

	Action  string
	NewName string
	Yes     bool
}

func NewAccountCommand(app *entrypoint.App, console *Console) *AccountCommand {
	return &AccountCommand{app: app, console: console}
}

func (cmd *AccountCommand) ParseFlags(args []string) error {
	fs := cmd.console.newFlagSet("account", "account <rename|passwd|delete> [options]")
	fs.StringVar(&cmd.NewName, "to", "", "New username (rename)")
	fs.BoolVar(&cmd.Yes, "yes", false, "Skip the confirmation prompt (delete)")

	if len(args) == 0 {
		fs.Usage()
		return errors.New("missing action")
	}
	cmd.Action = args[0]
	switch cmd.Action {
	case "rename", "passwd", "delete":
	default:
		fs.Usage()
		return fmt.Errorf("unknown action %q", cmd.Action)
	}
	return fs.Parse(args[1:])
}

func (cmd *AccountCommand) Run(ctx context.Context) error {
	switch cmd.Action {
	case "rename":
		return cmd.rename(ctx)
	case "passwd":
		return cmd.passwd(ctx)
	case "delete":
		return cmd.delete(ctx)
	}
	return fmt.Errorf("unknown action %q", cmd.Action)
}

func (cmd *AccountCommand) rename(ctx context.Context) error {
	c := cmd.console
	user, err := requireUser(ctx, cmd.app)
	if err != nil {
		return err
	}

	name := cmd.NewName
	if name == "" {
		if name, err = c.Prompt("New username"); err != nil {
			return err
		}
	}
	if res := auth.ValidateUsername(name); !res.OK() {
		return c.reportRejected(res.Messages())
	}

	ok, err := cmd.app.Users.UpdateCredentials(ctx, user.ID, name, "")
	if errors.Is(err, users.ErrUserExists) {
		return c.reportRejected([]string{auth.RuleUsernameAvailability.Message()})
	}
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(c.Out, "No changes.")
		return nil
	}

	user.Username = name
	if err := cmd.app.Sessions.Refresh(ctx, user); err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "Username changed to %s.\n", name)
	return nil
}

func (cmd *AccountCommand) passwd(ctx context.Context) error {
	c := cmd.console
	user, err := requireUser(ctx, cmd.app)
	if err != nil {
		return err
	}

	current, err := c.Password("Current password")
	if err != nil {
		return err
	}
	if _, err := cmd.app.Users.Authenticate(ctx, user.Username, current); err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			return c.reportRejected([]string{"Current password is incorrect"})
		}
		return err
	}

	password, err := c.Password("New password")
	if err != nil {
		return err
	}
	confirm, err := c.Password("Confirm new password")
	if err != nil {
		return err
	}
	if password == "" || confirm == "" {
		return c.reportRejected([]string{msgAllFieldsRequired})
	}

	res := auth.ValidatePassword(password)
	res.Merge(auth.ValidateConfirmation(password, confirm))
	if !res.OK() {
		return c.reportRejected(res.Messages())
	}

	if _, err := cmd.app.Users.UpdateCredentials(ctx, user.ID, "", password); err != nil {
		return err
	}
	fmt.Fprintln(c.Out, "Password changed.")
	return nil
}

func (cmd *AccountCommand) delete(ctx context.Context) error {
	c := cmd.console
	user, err := requireUser(ctx, cmd.app)
	if err != nil {
		return err
	}

	if !cmd.Yes {
		fmt.Fprintln(c.Out, "This permanently deletes the account and all of its settings.")
		typed, err := c.Prompt(fmt.Sprintf("Type %q to confirm", user.Username))
		if err != nil {
			return err
		}
		if typed != user.Username {
			fmt.Fprintln(c.Out, "Cancelled.")
			return nil
		}
	}

	if err := cmd.app.Users.DeleteUser(ctx, user.ID); err != nil {
		return err
	}
	if err := cmd.app.Sessions.SignOut(ctx); err != nil {
		return err
	}
	cmd.app.Log.Info("account deleted", "user_id", user.ID)
	fmt.Fprintf(c.Out, "Account %s deleted.\n", user.Username)
	return nil
}
