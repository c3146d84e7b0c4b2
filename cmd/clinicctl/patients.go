package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/jrsteele09/go-clinic-console/patients"
	"github.com/spf13/cobra"
)

func (a *app) patientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "Manage patient records",
	}
	cmd.AddCommand(a.patientsListCmd(), a.patientsCreateCmd(), a.patientsDeleteCmd())
	return cmd
}

func (a *app) printPatients(list []*patients.Patient, v any) error {
	return a.print(v, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tNAME\tGENDER\tPHONE\tBORN")
		for _, p := range list {
			fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\t%s\n", p.ID, p.FirstName, p.LastName, p.Gender, p.Phone, p.DateOfBirth)
		}
	})
}

func (a *app) patientsListCmd() *cobra.Command {
	var params patients.ListParams
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List patients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.api(cmd.Context()).ListPatients(cmd.Context(), params)
			if err != nil {
				return err
			}
			return a.printPatients(list.Patients, list)
		},
	}
	cmd.Flags().IntVar(&params.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&params.Limit, "limit", 10, "Patients per page")
	cmd.Flags().StringVar(&params.Search, "search", "", "Match name or phone")
	return cmd
}

func (a *app) patientsCreateCmd() *cobra.Command {
	var (
		in        patients.Input
		gender    string
		bloodType string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a patient",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.Gender = patients.Gender(gender)
			in.BloodType = patients.BloodType(bloodType)
			p, err := a.api(cmd.Context()).CreatePatient(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.printPatients([]*patients.Patient{p}, p)
		},
	}
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&gender, "gender", "", "MALE, FEMALE or OTHER")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "Contact phone")
	cmd.Flags().StringVar(&in.DateOfBirth, "dob", "", "Date of birth, YYYY-MM-DD")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email")
	cmd.Flags().StringVar(&in.Address, "address", "", "Address")
	cmd.Flags().StringVar(&bloodType, "blood-type", "", "Blood type, e.g. O_POSITIVE")
	for _, name := range []string{"first-name", "last-name", "gender", "phone"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *app) patientsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a patient record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.api(cmd.Context()).DeletePatient(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.printf("Deleted %s\n", args[0])
			return nil
		},
	}
}
