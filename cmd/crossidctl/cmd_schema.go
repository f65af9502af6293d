package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mapforge/crossid/internal/transfer"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Emit the JSON schema of the clipboard transfer payload",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := transfer.PayloadSchemaJSON()
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}
