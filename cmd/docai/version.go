package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Jitesh17/docai/internal/common"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// No configuration or storage needed to print a version
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("DocAI version %s\n", common.GetFullVersion())
	},
}
