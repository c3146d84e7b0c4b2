package main

import (
	"bufio"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jrsteele09/go-clinic-console/apiclient"
	clinicerrors "github.com/jrsteele09/go-clinic-console/internal/errors"
	"github.com/jrsteele09/go-clinic-console/users"
	"github.com/spf13/cobra"
)

// prompt reads one line from stdin when value is empty.
func (a *app) prompt(label, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprintf(a.out, "%s: ", label)
	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if password, err = a.prompt("Password", password); err != nil {
				return err
			}
			user, err := a.store.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("%s", clinicerrors.DisplayMessage(err, clinicerrors.MessageLoginFailed))
			}
			a.printf("Logged in as %s (%s)\n", user.DisplayName(), user.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.store.Logout(cmd.Context())
			a.printf("Logged out\n")
			return nil
		},
	}
}

type whoami struct {
	User      *users.User `json:"user"`
	ExpiresAt *time.Time  `json:"expiresAt,omitempty"`
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Re-validate the saved session and show who it belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.store.CheckAuth(cmd.Context()); err != nil {
				return fmt.Errorf("%s", clinicerrors.DisplayMessage(err, clinicerrors.MessageSessionExpired))
			}
			snap := a.store.Snapshot()
			if !snap.IsAuthenticated {
				return clinicerrors.ErrNotAuthenticated
			}

			info := whoami{User: snap.User}
			if token, err := a.store.Token(); err == nil {
				if exp, ok := apiclient.CredentialExpiry(token.AccessToken); ok {
					info.ExpiresAt = &exp
				}
			}
			return a.print(info, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "Name\t%s\n", snap.User.DisplayName())
				fmt.Fprintf(w, "Email\t%s\n", snap.User.Email)
				fmt.Fprintf(w, "Role\t%s\n", snap.User.Role)
				if info.ExpiresAt != nil {
					fmt.Fprintf(w, "Expires\t%s\n", info.ExpiresAt.Local().Format(time.RFC1123))
				}
			})
		},
	}
}

func (a *app) passwdCmd() *cobra.Command {
	var req users.ChangePassword
	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change the logged in user's password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if req.CurrentPassword, err = a.prompt("Current password", req.CurrentPassword); err != nil {
				return err
			}
			if req.NewPassword, err = a.prompt("New password", req.NewPassword); err != nil {
				return err
			}
			msg, err := a.api(cmd.Context()).ChangePassword(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.printf("%s\n", msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.CurrentPassword, "current", "", "Current password")
	cmd.Flags().StringVar(&req.NewPassword, "new", "", "New password")
	return cmd
}

func (a *app) profileCmd() *cobra.Command {
	var req users.UpdateProfile
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Edit the logged in user's name, email, phone or avatar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.store.CheckAuth(cmd.Context()); err != nil {
				return fmt.Errorf("%s", clinicerrors.DisplayMessage(err, clinicerrors.MessageSessionExpired))
			}
			current := a.store.Snapshot().User
			if current == nil {
				return clinicerrors.ErrNotAuthenticated
			}
			// Flags left unset keep the current value.
			flags := cmd.Flags()
			if !flags.Changed("first") {
				req.FirstName = current.FirstName
			}
			if !flags.Changed("last") {
				req.LastName = current.LastName
			}
			if !flags.Changed("email") {
				req.Email = current.Email
			}
			if !flags.Changed("phone") {
				req.Phone = current.Phone
			}
			if !flags.Changed("avatar") {
				req.Avatar = current.Avatar
			}

			user, err := a.api(cmd.Context()).UpdateProfile(cmd.Context(), req)
			if err != nil {
				return err
			}
			if err := a.store.CheckAuth(cmd.Context()); err != nil {
				return fmt.Errorf("%s", clinicerrors.DisplayMessage(err, clinicerrors.MessageSessionExpired))
			}
			a.printf("Profile updated for %s <%s>\n", user.DisplayName(), user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.FirstName, "first", "", "First name")
	cmd.Flags().StringVar(&req.LastName, "last", "", "Last name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "Phone")
	cmd.Flags().StringVar(&req.Avatar, "avatar", "", "Avatar image URL; empty removes it")
	return cmd
}
