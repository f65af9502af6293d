package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mapforge/crossid/internal/translate"
)

func newFormatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "format <version>",
		Short: "Classify a map format version's identifier scheme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[0], err)
			}

			desc := translate.DescribeFormat(version)
			scheme := "server-id native (no boundary translation)"
			if desc.ClientIDNative {
				scheme = "client-id native (translated at load/save)"
			}
			fmt.Printf("format v%d: %s\n", desc.Version, scheme)
			return nil
		},
	}
}
