package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mapforge/crossid/internal/transfer"
)

func newPayloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "payload <file>",
		Short: "Decode and summarize a serialized clipboard payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			p, bad, err := transfer.Decode(data)
			if err != nil {
				return fmt.Errorf("payload rejected: %w", err)
			}

			fmt.Printf("frame:          %s compressed\n", humanize.Bytes(uint64(len(data))))
			fmt.Printf("schema:         %d\n", p.Schema)
			fmt.Printf("source version: %s\n", p.SourceVersion)
			fmt.Printf("records:        %s\n", humanize.Comma(int64(len(p.Records))))
			for _, rec := range p.Records {
				fmt.Printf("  id=%d subtype=%d fingerprint=0x%016x offset=(%d,%d,%d)\n",
					rec.OriginalID, rec.Subtype, rec.Fingerprint,
					rec.Offset.DX, rec.Offset.DY, rec.Offset.DZ)
			}
			if len(bad) > 0 {
				fmt.Printf("malformed:      %d\n", len(bad))
				for _, re := range bad {
					fmt.Printf("  record %d: %v\n", re.Index, re.Err)
				}
			}
			return nil
		},
	}
}
