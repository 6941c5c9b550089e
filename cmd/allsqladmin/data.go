// Copyright (c) 2026 ToeiRei
// AllSQLAdmin - database credential vault and connection broker
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/toeirei/allsqladmin/internal/backend"
	"github.com/toeirei/allsqladmin/internal/core"
	"github.com/toeirei/allsqladmin/internal/i18n"
	"github.com/toeirei/allsqladmin/internal/logging"
	"github.com/toeirei/allsqladmin/internal/security"
)

// targetFlags select what a data command connects to: a stored profile or
// manual parameters.
type targetFlags struct {
	profile       string
	backend       string
	host          string
	port          string
	database      string
	user          string
	passwordStdin bool
}

func (f *targetFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.profile, "profile", "p", "", "stored profile to connect with")
	fs.StringVar(&f.backend, "backend", string(backend.DefaultKind), "backend for a manual connection")
	fs.StringVar(&f.host, "host", "", "server host for a manual connection")
	fs.StringVar(&f.port, "port", "", "server port for a manual connection")
	fs.StringVar(&f.database, "database", "", "database for a manual connection")
	fs.StringVar(&f.user, "user", "", "login name for a manual connection")
	fs.BoolVar(&f.passwordStdin, "password-stdin", false, "read the password from stdin")
}

// connect opens the session selected by f on the app's broker.
func (f *targetFlags) connect(cmd *cobra.Command, a *core.App) error {
	ctx := cmd.Context()
	prompt := func(label string) (security.Secret, error) {
		if f.passwordStdin {
			return readPasswordLine(cmd.InOrStdin())
		}
		return promptPassword(cmd.ErrOrStderr(), label)
	}

	if f.profile != "" {
		s, err := a.ConnectProfile(ctx, f.profile, func(label string, cause error) (security.Secret, error) {
			fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("profiles.decrypt_failed", f.profile, cause))
			return prompt(label)
		})
		if err != nil {
			return err
		}
		logging.Debugf("%s", i18n.T("connect.connected", s.Label()))
		return nil
	}

	if f.host == "" || f.database == "" {
		return errors.New(i18n.T("connect.missing_target"))
	}
	kind, err := backend.ParseKind(f.backend)
	if err != nil {
		return err
	}
	d, err := backend.Lookup(kind)
	if err != nil {
		return err
	}
	params := backend.Params{Host: f.host, Port: f.port, Database: f.database, Username: f.user}
	if params.Port == "" {
		params.Port = d.DefaultPort()
	}
	label := fmt.Sprintf("%s@%s/%s", f.user, f.host, f.database)
	switch {
	case f.passwordStdin:
		params.Password, err = readPasswordLine(cmd.InOrStdin())
	case stdinIsTerminal():
		params.Password, err = promptPassword(cmd.ErrOrStderr(), label)
	}
	if err != nil {
		return err
	}
	defer params.Password.Zero()

	s, err := a.Connect(ctx, kind, params)
	if err != nil {
		return err
	}
	logging.Debugf("%s", i18n.T("connect.connected", s.Label()))
	return nil
}

func newTablesCmd(st *cliState) *cobra.Command {
	f := &targetFlags{}
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List the tables of a database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, st)
			if err != nil {
				return err
			}
			if err := f.connect(cmd, a); err != nil {
				return err
			}
			names, err := a.Engine.ListTables(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintln(out, i18n.T("tables.none"))
				return nil
			}
			for _, n := range names {
				fmt.Fprintln(out, n)
			}
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newSampleCmd(st *cliState) *cobra.Command {
	f := &targetFlags{}
	var limit int
	cmd := &cobra.Command{
		Use:   "sample TABLE",
		Short: "Show the first rows of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, st)
			if err != nil {
				return err
			}
			if err := f.connect(cmd, a); err != nil {
				return err
			}
			if !cmd.Flags().Changed("limit") {
				limit = a.Config.SampleLimit
			}
			res, err := a.Engine.SampleRows(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			renderResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum rows (default: sample_limit from the config)")
	return cmd
}

func newExecCmd(st *cliState) *cobra.Command {
	f := &targetFlags{}
	cmd := &cobra.Command{
		Use:   "exec STATEMENT...",
		Short: "Run one SQL statement",
		Long: `Run one SQL statement. Statements starting with SELECT print their rows
(at most 1000); any other statement prints the affected row count.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, st)
			if err != nil {
				return err
			}
			if err := f.connect(cmd, a); err != nil {
				return err
			}
			res, err := a.Engine.Execute(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			renderResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}
