// Copyright 2021-2024 hhorai. All rights reserved.
// Use of this source code is governed by a MIT license that can be found
// in the LICENSE file.

// Package commands implements the pdcpsim CLI commands.
package commands

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "pdcpsim",
	Short: "pdcpsim - drive a paired gNB/UE PDCP entity",
	Long: `pdcpsim builds a gNB-side and a UE-side PDCP entity sharing a
radio bearer, key and sequence-number configuration, pushes a run of SDUs
through the gNB entity's transmit path, and feeds the resulting PDUs into
the UE entity's receive path - optionally reordered, to exercise
COUNT/HFN reconstruction, the pending buffer and the t-Reordering timer.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once from main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a pdcpsim YAML config file")
	rootCmd.AddCommand(runCmd)
}
