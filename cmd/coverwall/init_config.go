package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"coverwall/internal/config"
)

var initConfigCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "Write a config file with the default settings",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInitConfig,
}

func init() {
	initConfigCmd.Flags().Bool("force", false, "overwrite an existing file")
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	path := config.GetDefaultConfigPath()
	if len(args) == 1 {
		path = config.ExpandHome(args[0])
	}

	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
	}

	if err := config.SaveConfigFile(config.DefaultConfig(), path); err != nil {
		return err
	}

	successColor.Fprintf(cmd.OutOrStdout(), "Config file created: %s\n", path)
	fmt.Fprintln(cmd.OutOrStdout(), "Edit this file to customize providers, regions and ranking settings.")
	return nil
}
