// Copyright (c) 2026 ToeiRei
// AllSQLAdmin - database credential vault and connection broker
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface for AllSQLAdmin using Cobra.
// It defines the root command, the persistent flags shared by every
// subcommand and the lazily created application context.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/toeirei/allsqladmin/buildvars"
	"github.com/toeirei/allsqladmin/internal/config"
	"github.com/toeirei/allsqladmin/internal/core"
	"github.com/toeirei/allsqladmin/internal/i18n"
	"github.com/toeirei/allsqladmin/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Cobra has already printed the error.
		os.Exit(1)
	}
}

// cliState is shared by the commands of one root command instance.
type cliState struct {
	cfgFile string
	cfg     config.Config
	app     *core.App
}

// App returns the application context, creating it on first use so that
// commands such as `config init` never touch the key file.
func (s *cliState) App() (*core.App, error) {
	if s.app != nil {
		return s.app, nil
	}
	a, err := core.NewApp(s.cfg)
	if err != nil {
		return nil, err
	}
	s.app = a
	return a, nil
}

func (s *cliState) setup(cmd *cobra.Command, _ []string) error {
	var explicit *string
	if cmd.Flags().Changed("config") {
		explicit = &s.cfgFile
	}
	cfg, err := config.Load(cmd, explicit)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	s.cfg = cfg
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		logging.Warnf("%v", err)
	}
	i18n.Init(cfg.Language)
	return nil
}

func (s *cliState) teardown(*cobra.Command, []string) {
	if s.app == nil {
		return
	}
	if err := s.app.Close(); err != nil {
		logging.Warnf("close session: %v", err)
	}
}

// newRootCmd builds a fresh command tree. Tests create one per case.
func newRootCmd() *cobra.Command {
	st := &cliState{}
	cmd := &cobra.Command{
		Use:               "allsqladmin",
		Short:             i18n.T("app.short"),
		Long:              i18n.T("app.long"),
		Version:           buildvars.VersionOrDefault("dev"),
		SilenceUsage:      true,
		PersistentPreRunE: st.setup,
		PersistentPostRun: st.teardown,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&st.cfgFile, "config", "", "config file (default is <user config dir>/allsqladmin/allsqladmin.yaml)")
	pf.String("data-dir", "", "directory holding secret.key and the profile file")
	pf.String("log-level", "", `log level ("debug", "info", "warn", "error")`)
	pf.String("lang", "", `message language ("en", "pt")`)

	cmd.AddCommand(newProfilesCmd(st))
	cmd.AddCommand(newTablesCmd(st))
	cmd.AddCommand(newSampleCmd(st))
	cmd.AddCommand(newExecCmd(st))
	cmd.AddCommand(newConfigCmd(st))
	return cmd
}
