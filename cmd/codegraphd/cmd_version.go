package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const codegraphdVersion = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print codegraphd's version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("codegraphd " + codegraphdVersion)
		return nil
	},
}
