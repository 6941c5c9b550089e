// Copyright (c) 2026 ToeiRei
// AllSQLAdmin - database credential vault and connection broker
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toeirei/allsqladmin/internal/backend"
	"github.com/toeirei/allsqladmin/internal/core"
	"github.com/toeirei/allsqladmin/internal/i18n"
	"github.com/toeirei/allsqladmin/internal/profile"
	"github.com/toeirei/allsqladmin/internal/security"
)

// profileFlags are the editable fields of a profile.
type profileFlags struct {
	name, backend, host, port, database, user string

	passwordStdin  bool
	promptPassword bool
	clearPass      bool
}

func (f *profileFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.name, "name", "", "profile name")
	fs.StringVar(&f.backend, "backend", string(backend.DefaultKind), `backend ("PostgreSQL", "SQL Server", "MySQL")`)
	fs.StringVar(&f.host, "host", "", "server host")
	fs.StringVar(&f.port, "port", "", "server port (default: the backend's standard port)")
	fs.StringVar(&f.database, "database", "", "database name")
	fs.StringVar(&f.user, "user", "", "login name")
	fs.BoolVar(&f.passwordStdin, "password-stdin", false, "read the password from stdin")
	fs.BoolVar(&f.promptPassword, "prompt-password", false, "ask for the password on the terminal")
}

// apply copies the changed flags onto p. With all=true every flag is
// applied, as for a new profile.
func (f *profileFlags) apply(cmd *cobra.Command, p *profile.Profile, all bool) error {
	changed := func(name string) bool { return all || cmd.Flags().Changed(name) }
	if changed("name") {
		p.Name = f.name
	}
	if changed("backend") {
		kind, err := backend.ParseKind(f.backend)
		if err != nil {
			return err
		}
		if kind != p.Backend && !cmd.Flags().Changed("port") {
			// The old port belongs to the old backend.
			p.Port = ""
		}
		p.Backend = kind
	}
	if changed("host") {
		p.Host = f.host
	}
	if changed("port") {
		p.Port = f.port
	}
	if changed("database") {
		p.Database = f.database
	}
	if changed("user") {
		p.Username = f.user
	}
	if p.Port == "" {
		if d, err := backend.Lookup(p.Backend); err == nil {
			p.Port = d.DefaultPort()
		}
	}
	return nil
}

// password returns the new plaintext password and whether one was given.
func (f *profileFlags) password(cmd *cobra.Command, label string) (security.Secret, bool, error) {
	switch {
	case f.clearPass:
		return nil, true, nil
	case f.passwordStdin:
		pw, err := readPasswordLine(cmd.InOrStdin())
		return pw, true, err
	case f.promptPassword:
		pw, err := promptPassword(cmd.ErrOrStderr(), label)
		return pw, true, err
	}
	return nil, false, nil
}

func newProfilesCmd(st *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profiles",
		Aliases: []string{"favorites"},
		Short:   "Manage stored connection profiles",
	}
	cmd.AddCommand(newProfilesListCmd(st))
	cmd.AddCommand(newProfilesAddCmd(st))
	cmd.AddCommand(newProfilesEditCmd(st))
	cmd.AddCommand(newProfilesRemoveCmd(st))
	cmd.AddCommand(newProfilesShowCmd(st))
	return cmd
}

// loadApp returns the app and prints the profile load warning, if any.
func loadApp(cmd *cobra.Command, st *cliState) (*core.App, error) {
	a, err := st.App()
	if err != nil {
		return nil, err
	}
	if a.LoadWarning != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("profiles.load_warning", a.LoadWarning))
	}
	return a, nil
}

func newProfilesListCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, st)
			if err != nil {
				return err
			}
			list := a.Profiles.List()
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, i18n.T("profiles.none"))
				return nil
			}
			headers := []string{
				i18n.T("profiles.header_name"), i18n.T("profiles.header_backend"),
				i18n.T("profiles.header_host"), i18n.T("profiles.header_port"),
				i18n.T("profiles.header_database"), i18n.T("profiles.header_username"),
				i18n.T("profiles.header_password"),
			}
			rows := make([][]string, 0, len(list))
			for _, p := range list {
				pw := ""
				if p.HasPassword() {
					pw = "********"
				}
				rows = append(rows, []string{p.Name, string(p.Backend), p.Host, p.Port, p.Database, p.Username, pw})
			}
			renderTable(out, headers, rows)
			return nil
		},
	}
}

func newProfilesAddCmd(st *cliState) *cobra.Command {
	f := &profileFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, st)
			if err != nil {
				return err
			}
			var p profile.Profile
			if err := f.apply(cmd, &p, true); err != nil {
				return err
			}
			pw, _, err := f.password(cmd, p.Label())
			if err != nil {
				return err
			}
			defer pw.Zero()
			if err := a.Profiles.Add(p, pw); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("profiles.saved", p.Name))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newProfilesEditCmd(st *cliState) *cobra.Command {
	f := &profileFlags{}
	cmd := &cobra.Command{
		Use:   "edit NAME",
		Short: "Change a profile in place",
		Long: `Change the given fields of a profile. Fields whose flags are not set keep
their value. The stored password is kept unless a new one is given or
--clear-password is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, st)
			if err != nil {
				return err
			}
			p, err := a.Profiles.Get(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if err := f.apply(cmd, &p, false); err != nil {
				return err
			}
			pw, given, err := f.password(cmd, p.Label())
			if err != nil {
				return err
			}
			if !given {
				// Re-seal the current password.
				if pw, err = a.Profiles.DecryptPassword(p); err != nil {
					return err
				}
			}
			defer pw.Zero()
			if err := a.Profiles.Edit(args[0], p, pw); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("profiles.updated", p.Name))
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&f.clearPass, "clear-password", false, "remove the stored password")
	return cmd
}

func newProfilesRemoveCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:     "remove NAME",
		Aliases: []string{"rm"},
		Short:   "Remove a profile",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, st)
			if err != nil {
				return err
			}
			if err := a.Profiles.Remove(args[0]); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("profiles.removed", args[0]))
			return nil
		},
	}
}

func newProfilesShowCmd(st *cliState) *cobra.Command {
	var copyPassword bool
	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Show one profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, st)
			if err != nil {
				return err
			}
			p, err := a.Profiles.Get(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, p.Label())
			fmt.Fprintf(out, "  %s: %s\n", i18n.T("profiles.header_port"), p.Port)
			fmt.Fprintf(out, "  %s: %s\n", i18n.T("profiles.header_username"), p.Username)
			if !copyPassword {
				return nil
			}
			if !p.HasPassword() {
				fmt.Fprintln(out, i18n.T("profiles.no_password", p.Name))
				return nil
			}
			pw, err := a.Profiles.DecryptPassword(p)
			if err != nil {
				return fmt.Errorf("%s", i18n.T("profiles.decrypt_failed", p.Name, err))
			}
			defer pw.Zero()
			if err := pw.Use(func(b []byte) error { return clipboardWrite(string(b)) }); err != nil {
				return err
			}
			fmt.Fprintln(out, i18n.T("profiles.copied"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&copyPassword, "copy", false, "copy the decrypted password to the clipboard")
	return cmd
}
