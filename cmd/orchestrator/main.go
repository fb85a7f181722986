package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Blizzyboii/calhacks/internal/version"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "orchestrator",
		Short: "Message-processing and provider-routing pipeline server",
		Long: "orchestrator relays chat messages to language-model providers, " +
			"enriching each exchange with short-term and long-term conversational " +
			"memory and visual-media understanding.",
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.toml")

	root.AddCommand(serveCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.GetInfo())
		},
	}
}
