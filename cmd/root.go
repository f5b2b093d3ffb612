/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "floodwatch",
	Short: "Disaster-alert and incident-reporting backend",
	Long: `floodwatch is the backend for the disaster-alert platform: user
registration and authentication, incident report submission, and
location-targeted flood alert broadcasts.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
