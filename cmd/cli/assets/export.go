package assets

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/crucial707/it-inventory/cmd/cli/client"
	"github.com/crucial707/it-inventory/cmd/cli/output"
	"github.com/spf13/cobra"
)

// ==========================
// EXPORT
// ==========================
func exportCmd() *cobra.Command {
	var (
		filters []string
		outFile string
	)

	cmd := &cobra.Command{
		Use:   "export <table>",
		Short: "Download a table (optionally filtered) as an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.Authenticated()
			if err != nil {
				return err
			}
			q := url.Values{}
			for _, f := range filters {
				name, value, ok := strings.Cut(f, "=")
				if !ok || name == "" {
					return fmt.Errorf("expected column=value, got %q", f)
				}
				q.Set(name, value)
			}
			path := "/export/" + url.PathEscape(args[0])
			if len(q) > 0 {
				path += "?" + q.Encode()
			}

			body, name, err := c.Download(http.MethodGet, path, nil)
			if err != nil {
				return err
			}
			if outFile == "" {
				outFile = name
			}
			if outFile == "" {
				outFile = args[0] + "_inventory.xlsx"
			}
			if err := os.WriteFile(outFile, body, 0644); err != nil {
				return err
			}
			fmt.Fprintf(output.Out, "Saved %s (%d bytes)\n", outFile, len(body))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&filters, "filter", nil, "column=value filter (repeatable)")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default: name suggested by the server)")
	return cmd
}
