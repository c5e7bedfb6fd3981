package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the post generator server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if apiClient == nil {
			return fmt.Errorf("health check needs the server; drop --offline")
		}

		status, err := apiClient.Health(context.Background())
		if err != nil {
			return fmt.Errorf("checking health: %w", err)
		}

		if jsonOutput {
			data, err := json.MarshalIndent(status, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Println(string(data))
		} else {
			label := successStyle.Render(status.Status)
			if status.Status != "healthy" {
				label = warningStyle.Render(status.Status)
			}
			fmt.Printf("%s %s\n", headerStyle.Render("Server:"), label)

			names := make([]string, 0, len(status.Services))
			for name := range status.Services {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("  %s: %s\n", name, status.Services[name])
			}
		}

		if status.Status != "healthy" {
			return fmt.Errorf("server is %s", status.Status)
		}
		return nil
	},
}
