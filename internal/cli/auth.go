package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docrepo/internal/combobox"
	"docrepo/internal/service"
	"docrepo/internal/session"
)

func (a *App) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password (prompted when empty)")
	if _, err := positional(fs, args, 0, "--email EMAIL [--password PASSWORD]"); err != nil {
		return err
	}
	if *email == "" {
		return fmt.Errorf("%w: --email is required", ErrUsage)
	}
	if *password == "" {
		p, err := a.prompt("Password: ")
		if err != nil {
			return err
		}
		*password = p
	}

	claims, err := a.auth.Login(ctx, service.LoginInput{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	name := claims.Name
	if name == "" {
		name = claims.Email
	}
	fmt.Fprintf(a.out, "Signed in as %s\n", name)
	return nil
}

func (a *App) logout(ctx context.Context, args []string) error {
	if _, err := positional(a.flags("logout"), args, 0, ""); err != nil {
		return err
	}
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *App) whoami(ctx context.Context, args []string) error {
	if _, err := positional(a.flags("whoami"), args, 0, ""); err != nil {
		return err
	}
	claims, err := a.auth.Session(ctx)
	if errors.Is(err, session.ErrNoSession) {
		return errors.New("not signed in; run: docrepo login --email EMAIL")
	}
	if err == nil && claims.Expired(a.now()) {
		return errors.New("session expired; run: docrepo login --email EMAIL")
	}

	user, err := a.auth.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s>\n", user.Name, user.Email)
	if user.Role != nil {
		fmt.Fprintf(a.out, "Role:       %s\n", *user.Role)
	}
	if user.DepartmentName != nil {
		fmt.Fprintf(a.out, "Department: %s\n", *user.DepartmentName)
	}
	if claims != nil && !claims.ExpiresAt.IsZero() {
		fmt.Fprintf(a.out, "Expires:    %s\n", claims.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password (prompted when empty)")
	confirm := fs.String("confirm", "", "password confirmation (prompted when empty)")
	department := fs.String("department", "", "department name or id")
	role := fs.String("role", "", "employee or manager (default employee)")
	if _, err := positional(fs, args, 0, "--name NAME --email EMAIL [--department DEPT] [--role ROLE]"); err != nil {
		return err
	}
	if strings.TrimSpace(*name) == "" || strings.TrimSpace(*email) == "" {
		return fmt.Errorf("%w: --name and --email are required", ErrUsage)
	}
	if *password == "" {
		p, err := a.prompt("Password: ")
		if err != nil {
			return err
		}
		*password = p
		if *confirm == "" {
			if *confirm, err = a.prompt("Confirm password: "); err != nil {
				return err
			}
		}
	}

	input := service.RegisterInput{
		Name:            *name,
		Email:           *email,
		Password:        *password,
		ConfirmPassword: *confirm,
		Role:            *role,
	}
	if *department != "" {
		sel := combobox.NewDepartmentSelector(combobox.LoadDepartments(ctx, a.api, a.log), nil, nil, a.selectorSettings()...)
		if err := selectDepartments(sel, []string{*department}); err != nil {
			return err
		}
		ids := combobox.DepartmentIDs(sel.Selected())
		input.DepartmentID = &ids[0]
	}

	user, err := a.auth.Register(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered %s <%s>; sign in with: docrepo login --email %s\n", user.Name, user.Email, user.Email)
	return nil
}
