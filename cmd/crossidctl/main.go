package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "crossidctl",
		Short: "Inspect and debug cross-version item identity resolution",
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newHashCmd())
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newPayloadCmd())
	root.AddCommand(newFormatCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("crossidctl 0.1.0-dev")
		},
	}
}
