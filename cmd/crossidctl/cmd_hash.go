package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mapforge/crossid/internal/domain/fingerprint"
)

func newHashCmd() *cobra.Command {
	var width, height int

	cmd := &cobra.Command{
		Use:   "hash <file>",
		Short: "Fingerprint a file's bytes, or RGBA pixel data with --width/--height",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var fp uint64
			if width > 0 || height > 0 {
				fp, err = fingerprint.HashSprite(data, width, height)
				if err != nil {
					return err
				}
			} else {
				fp = fingerprint.HashBytes(data)
			}

			fmt.Printf("input:       %s (%s)\n", args[0], humanize.Bytes(uint64(len(data))))
			fmt.Printf("fingerprint: %d (0x%016x)\n", fp, fp)
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 0, "sprite width in pixels (RGBA mode)")
	cmd.Flags().IntVar(&height, "height", 0, "sprite height in pixels (RGBA mode)")
	return cmd
}
