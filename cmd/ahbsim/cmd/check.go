package cmd

import (
	"fmt"

	"github.com/sarchlab/ahbsim/config"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [config]",
	Short: "Validate a system description without running it.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(args[0])
		if err != nil {
			return err
		}

		if _, err := c.SlaveSpecs(); err != nil {
			return err
		}

		accesses := 0
		for _, m := range c.MasterSpecs() {
			accesses += len(m.Script)
		}

		fmt.Fprintf(cmd.OutOrStdout(),
			"%s: %d masters, %d slaves, %d accesses at %g MHz\n",
			args[0], len(c.Masters), len(c.Slaves), accesses, c.FrequencyMHz)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
