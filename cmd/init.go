/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"fmt"

	"github.com/jacobarthurs/schemabench/internal/config"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with example template",
	Long: `Create the schemabench config file with an example template.

The config file stores named database connection profiles along with server
and simulation settings. If a config file already exists, it will not be
overwritten unless --force is given.`,
	Example: `  # Create default config
  schemabench init

  # Overwrite existing config
  schemabench init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		path, err := config.WriteTemplate(force)
		if err != nil {
			return err
		}

		fmt.Printf("Created config at %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolP("force", "f", false, "Overwrite existing config file")
}
