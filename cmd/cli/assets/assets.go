package assets

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/crucial707/it-inventory/cmd/cli/client"
	"github.com/crucial707/it-inventory/cmd/cli/output"
	"github.com/spf13/cobra"
)

// ==========================
// Init Assets
// ==========================
func InitAssets(rootCmd *cobra.Command) {

	assetsCmd := &cobra.Command{
		Use:   "assets",
		Short: "Browse and edit inventory assets",
	}

	assetsCmd.AddCommand(
		columnsCmd(),
		listAssetsCmd(),
		getAssetCmd(),
		addAssetCmd(),
		updateAssetCmd(),
		historyCmd(),
	)

	rootCmd.AddCommand(assetsCmd, exportCmd(), tagCmd())
}

// keyFlags identify one asset on the command line.
type keyFlags struct {
	table      string
	srNo       int64
	machineTag string
	monitorTag string
	assetTag   string
}

func (k *keyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&k.table, "table", "", "table type: systems or servers")
	cmd.Flags().Int64Var(&k.srNo, "sr", 0, "asset sr_no")
	cmd.Flags().StringVar(&k.machineTag, "machine-tag", "", "machine_asset_tag (systems)")
	cmd.Flags().StringVar(&k.monitorTag, "monitor-tag", "", "monitor_asset_tag (systems)")
	cmd.Flags().StringVar(&k.assetTag, "asset-tag", "", "asset_tag (servers)")
	cmd.MarkFlagRequired("table")
	cmd.MarkFlagRequired("sr")
}

func (k *keyFlags) key() map[string]any {
	key := map[string]any{"sr_no": k.srNo}
	if k.machineTag != "" {
		key["machine_asset_tag"] = k.machineTag
	}
	if k.monitorTag != "" {
		key["monitor_asset_tag"] = k.monitorTag
	}
	if k.assetTag != "" {
		key["asset_tag"] = k.assetTag
	}
	return key
}

// parseAssignments turns ["a=1", "b="] into a map. "null" as a value clears the field.
func parseAssignments(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("expected field=value, got %q", p)
		}
		if value == "null" {
			out[name] = nil
			continue
		}
		out[name] = value
	}
	return out, nil
}

// ==========================
// COLUMNS
// ==========================
func columnsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "columns <table>",
		Short: "List the columns of a table type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.Authenticated()
			if err != nil {
				return err
			}
			var out struct {
				Columns []string `json:"columns"`
			}
			if err := c.Get("/fetchColumns/"+url.PathEscape(args[0]), &out); err != nil {
				return err
			}
			rows := make([][]interface{}, len(out.Columns))
			for i, col := range out.Columns {
				rows[i] = []interface{}{i + 1, col}
			}
			output.RenderTable([]string{"#", "Column"}, rows)
			return nil
		},
	}
}

// ==========================
// LIST
// ==========================
func listAssetsCmd() *cobra.Command {
	var (
		filters []string
		columns []string
		limit   int
		offset  int
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "list <table>",
		Short: "List assets, optionally filtered by column values",
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
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
				q.Set("offset", strconv.Itoa(offset))
			}
			path := "/fetchData/" + url.PathEscape(args[0])
			if len(q) > 0 {
				path += "?" + q.Encode()
			}

			var rows []map[string]any
			if err := c.Get(path, &rows); err != nil {
				return err
			}
			if asJSON {
				return output.PrintJSON(rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(output.Out, "No assets found.")
				return nil
			}
			output.RenderRows(rows, columns)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&filters, "filter", nil, "column=value filter (repeatable)")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "columns to show (default all)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows (0 = all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	return cmd
}

// ==========================
// GET
// ==========================
func getAssetCmd() *cobra.Command {
	var k keyFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show one asset by its identity key",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.Authenticated()
			if err != nil {
				return err
			}
			var row map[string]any
			if err := c.Post("/assets/get", map[string]any{"tableType": k.table, "key": k.key()}, &row); err != nil {
				return err
			}
			if asJSON {
				return output.PrintJSON(row)
			}
			output.RenderRecord(fmt.Sprintf("%s #%d", k.table, k.srNo), row, []string{"sr_no"})
			return nil
		},
	}
	k.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

// ==========================
// ADD
// ==========================
func addAssetCmd() *cobra.Command {
	var table string
	var fields []string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an asset",
		Long: `Create an asset from field=value pairs, for example:

  inventory assets add --table systems --field sr_no=12 --field device_type=Laptop \
    --field machine_asset_tag=MT-12 --field date_of_purchase=2024-05-02`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := parseAssignments(fields)
			if err != nil {
				return err
			}
			c, err := client.Authenticated()
			if err != nil {
				return err
			}
			data["tableType"] = table

			var out struct {
				Message string         `json:"message"`
				Row     map[string]any `json:"row"`
			}
			if err := c.Post("/assets", data, &out); err != nil {
				return err
			}
			fmt.Fprintln(output.Out, out.Message)
			output.RenderRecord("", out.Row, []string{"sr_no"})
			return nil
		},
	}

	cmd.Flags().StringVar(&table, "table", "", "table type: systems or servers")
	cmd.Flags().StringArrayVar(&fields, "field", nil, "field=value (repeatable)")
	cmd.MarkFlagRequired("table")
	return cmd
}

// ==========================
// UPDATE
// ==========================
func updateAssetCmd() *cobra.Command {
	var k keyFlags
	var sets []string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update asset fields; every change is recorded in the asset's history",
		RunE: func(cmd *cobra.Command, args []string) error {
			updates, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			if len(updates) == 0 {
				return fmt.Errorf("nothing to update: pass at least one --set field=value")
			}
			c, err := client.Authenticated()
			if err != nil {
				return err
			}

			var out struct {
				Message string           `json:"message"`
				Changes []map[string]any `json:"changes"`
			}
			payload := map[string]any{"tableType": k.table, "key": k.key(), "updates": updates}
			if err := c.Post("/assets/updateByKey", payload, &out); err != nil {
				return err
			}
			fmt.Fprintln(output.Out, out.Message)
			if len(out.Changes) == 0 {
				fmt.Fprintln(output.Out, "No field values changed.")
				return nil
			}
			renderChanges(out.Changes)
			return nil
		},
	}
	k.register(cmd)
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value to change (repeatable); value null clears the field")
	return cmd
}

// ==========================
// HISTORY
// ==========================
func historyCmd() *cobra.Command {
	var k keyFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the change history of an asset, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.Authenticated()
			if err != nil {
				return err
			}
			payload := k.key()
			payload["tableType"] = k.table

			var out struct {
				History []map[string]any `json:"history"`
			}
			if err := c.Post("/assetHistory", payload, &out); err != nil {
				return err
			}
			if asJSON {
				return output.PrintJSON(out.History)
			}
			if len(out.History) == 0 {
				fmt.Fprintln(output.Out, "No history recorded for this asset.")
				return nil
			}
			renderChanges(out.History)
			return nil
		},
	}
	k.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func renderChanges(entries []map[string]any) {
	output.RenderRows(entries, []string{"change_date", "change_time", "changed_by", "field_name", "old_value", "new_value"})
}
