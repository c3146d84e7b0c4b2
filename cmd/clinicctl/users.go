package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/jrsteele09/go-clinic-console/users"
	"github.com/spf13/cobra"
)

func (a *app) usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage staff accounts (admin only)",
	}
	cmd.AddCommand(a.usersListCmd(), a.usersCreateCmd(), a.usersRoleCmd(), a.usersStatusCmd())
	return cmd
}

func (a *app) printAccounts(accounts []*users.Account, v any) error {
	return a.print(v, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE\tSTATUS")
		for _, acc := range accounts {
			fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\t%s\n", acc.ID, acc.Email, acc.FirstName, acc.LastName, acc.Role, acc.Status)
		}
	})
}

func (a *app) usersListCmd() *cobra.Command {
	var params users.ListParams
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.api(cmd.Context()).ListUsers(cmd.Context(), params)
			if err != nil {
				return err
			}
			return a.printAccounts(list.Users, list)
		},
	}
	cmd.Flags().IntVar(&params.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&params.Limit, "limit", 10, "Accounts per page")
	cmd.Flags().StringVar(&params.Search, "search", "", "Match name or email")
	cmd.Flags().StringVar(&params.Role, "role", "", "Filter by role")
	cmd.Flags().StringVar(&params.Status, "status", "", "Filter by status")
	return cmd
}

func (a *app) usersCreateCmd() *cobra.Command {
	var (
		req  users.CreateAccount
		role string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account with a temporary password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := users.ParseAccountRole(role)
			if err != nil {
				return err
			}
			req.Role = parsed
			account, err := a.api(cmd.Context()).CreateUser(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.printAccounts([]*users.Account{account}, account)
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "Email")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&role, "role", "user", "admin, doctor, reception or user")
	cmd.Flags().StringVar(&req.TemporaryPassword, "temp-password", "", "Temporary password")
	for _, name := range []string{"email", "first-name", "last-name", "temp-password"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *app) usersRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "role <id> <role>",
		Short: "Change an account's role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := users.ParseAccountRole(args[1])
			if err != nil {
				return err
			}
			account, err := a.api(cmd.Context()).UpdateUserRole(cmd.Context(), args[0], role)
			if err != nil {
				return err
			}
			return a.printAccounts([]*users.Account{account}, account)
		},
	}
}

func (a *app) usersStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <active|inactive|banned>",
		Short: "Change an account's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := users.ParseStatus(args[1])
			if err != nil {
				return err
			}
			account, err := a.api(cmd.Context()).UpdateUserStatus(cmd.Context(), args[0], status)
			if err != nil {
				return err
			}
			return a.printAccounts([]*users.Account{account}, account)
		},
	}
}
