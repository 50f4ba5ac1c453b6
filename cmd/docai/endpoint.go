package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var endpointCmd = &cobra.Command{
	Use:   "endpoint",
	Short: "Show or switch the active backend endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("%s (%s)\n", application.Endpoints.Name(), application.Endpoints.Current())
		return nil
	},
}

var endpointToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch between the local and hosted endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		url := application.Endpoints.Toggle()
		fmt.Printf("Now using %s (%s)\n", application.Endpoints.Name(), url)

		// Document state fetched from the previous endpoint is meaningless
		// against the new one; refresh while keeping the selection intact.
		if application.Session.CurrentIdentity() != nil {
			if _, err := application.Registry.Refresh(cmd.Context()); err != nil {
				fmt.Printf("Warning: could not refresh documents from new endpoint: %v\n", err)
			}
		}
		return nil
	},
}

func init() {
	endpointCmd.AddCommand(endpointToggleCmd)
}
