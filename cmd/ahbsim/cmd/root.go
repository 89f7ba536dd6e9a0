// Package cmd provides the command-line interface of ahbsim.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ahbsim",
	Short: "ahbsim simulates AHB-Lite bus systems cycle by cycle.",
	Long: `ahbsim simulates AHB-Lite bus systems cycle by cycle. A system is ` +
		`described in a YAML file listing scripted masters, slaves and the ` +
		`buffering stages between them.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. The registered exit handlers run before the process exits.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
