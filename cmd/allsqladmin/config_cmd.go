// Copyright (c) 2026 ToeiRei
// AllSQLAdmin - database credential vault and connection broker
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/toeirei/allsqladmin/internal/config"
	"github.com/toeirei/allsqladmin/internal/i18n"
)

func newConfigCmd(st *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	var (
		system bool
		force  bool
		path   string
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current configuration to a yaml file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := path
			if target == "" {
				p, err := config.GetConfigPath(system)
				if err != nil {
					return err
				}
				target = p
			}
			if _, err := os.Stat(target); err == nil && !force {
				return errors.New(i18n.T("config.exists", target))
			}
			c := st.cfg
			if err := config.WriteConfigFileTo(&c, target); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("config.written", target))
			return nil
		},
	}
	initCmd.Flags().BoolVar(&system, "system", false, "write the system-wide file instead of the user file")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	initCmd.Flags().StringVar(&path, "path", "", "write to this file")
	cmd.AddCommand(initCmd)
	return cmd
}
