package assets

import (
	"fmt"

	"github.com/crucial707/it-inventory/cmd/cli/client"
	"github.com/crucial707/it-inventory/cmd/cli/output"
	"github.com/spf13/cobra"
)

// ==========================
// ASSET TAGS
// ==========================
func tagCmd() *cobra.Command {
	tag := &cobra.Command{
		Use:   "tag",
		Short: "Generate asset numbers and tags",
	}
	tag.AddCommand(tagNextCmd(), tagLastCmd())
	return tag
}

type tagFlags struct {
	company    string
	deviceType string
	machine    bool
}

func (f *tagFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.company, "company", "", "company code, e.g. ACME")
	cmd.Flags().StringVar(&f.deviceType, "device-type", "Laptop", "Laptop, All-in-one, Desktop, Workstation or Monitor")
	cmd.Flags().BoolVar(&f.machine, "machine", true, "number the machine (false for the monitor of a desktop)")
	cmd.MarkFlagRequired("company")
}

func tagNextCmd() *cobra.Command {
	var (
		f            tagFlags
		purchaseDate string
		serial       string
	)

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Reserve the next asset number and tag",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.Authenticated()
			if err != nil {
				return err
			}
			payload := map[string]any{
				"company":      f.company,
				"deviceType":   f.deviceType,
				"purchaseDate": purchaseDate,
				"serial":       serial,
				"isMachine":    f.machine,
			}
			var out struct {
				AssetNo       string `json:"assetNo"`
				AssetTag      string `json:"assetTag"`
				Counter       int    `json:"counter"`
				FinancialYear string `json:"financialYear"`
			}
			if err := c.Post("/assetTag/next", payload, &out); err != nil {
				return err
			}
			output.RenderTable([]string{"Asset No", "Asset Tag", "Counter", "FY"},
				[][]interface{}{{out.AssetNo, out.AssetTag, out.Counter, out.FinancialYear}})
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&purchaseDate, "purchase-date", "", "date of purchase (YYYY-MM-DD)")
	cmd.Flags().StringVar(&serial, "serial", "", "device serial number")
	cmd.MarkFlagRequired("purchase-date")
	cmd.MarkFlagRequired("serial")
	return cmd
}

func tagLastCmd() *cobra.Command {
	var f tagFlags

	cmd := &cobra.Command{
		Use:   "last",
		Short: "Show the last counter used for a company and device type",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.Authenticated()
			if err != nil {
				return err
			}
			var out struct {
				LastCounter int `json:"lastCounter"`
			}
			payload := map[string]any{"company": f.company, "deviceType": f.deviceType, "isMachine": f.machine}
			if err := c.Post("/fetchLastCounter", payload, &out); err != nil {
				return err
			}
			fmt.Fprintf(output.Out, "Last counter for %s %s: %d\n", f.company, f.deviceType, out.LastCounter)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}
