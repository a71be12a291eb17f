package main

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

var checkconfigCmd = &cobra.Command{
	Use:   "checkconfig",
	Short: "Validate the configuration and print the effective values",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Loading already validated; print what the daemon would use.
		data, err := toml.Marshal(cfg)
		if err != nil {
			return err
		}

		fmt.Printf("# %s\n", effectiveConfigPath())
		fmt.Print(string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkconfigCmd)
}
