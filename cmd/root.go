package cmd

import (
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ipsqr",
		Short:         "Decode NBS IPS QR payment payloads",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newDecodeCmd())
	root.AddCommand(newServeCmd())
	return root
}

func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		root.PrintErrln("Error:", err)
		return err
	}
	return nil
}
