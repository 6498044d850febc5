package checklist

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/crucial707/it-inventory/cmd/cli/client"
	"github.com/crucial707/it-inventory/cmd/cli/config"
	"github.com/crucial707/it-inventory/cmd/cli/output"
	"github.com/spf13/cobra"
)

// StorePath is the checklist file. Tests point it elsewhere.
var StorePath = config.ChecklistPath

// InitChecklist registers the checklist commands on the root command.
func InitChecklist(rootCmd *cobra.Command) {
	checklistCmd := &cobra.Command{
		Use:   "checklist",
		Short: "Laptop issuance forms and hand-over checklists",
	}
	checklistCmd.AddCommand(saveCmd(), listCmd(), showCmd(), printCmd(), deleteCmd(), pushCmd())
	rootCmd.AddCommand(checklistCmd)
}

func srNoArg(args []string) (int, error) {
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("record number must be a positive integer, got %q", args[0])
	}
	return n, nil
}

// ==========================
// Save
// ==========================
func saveCmd() *cobra.Command {
	var (
		srNo      int
		rec       Record
		statuses  []string
		fromAsset bool
		push      bool
	)

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Create or edit an issuance record",
		Long: `Create an issuance record, or edit record --sr. On edit only the flags given change.

  inventory checklist save --asset-sr 12 --machine-tag MT-12 --monitor-tag MN-12 --from-asset \
    --username "J. Doe" --dept Finance --date-of-issue 2024-06-01 --system-name FIN-LT-12 \
    --status 1=OK --status 2=OK`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := Load(StorePath())
			if err != nil {
				return err
			}

			base := Record{}
			if srNo > 0 {
				if base, err = store.Get(srNo); err != nil {
					return err
				}
			}
			if err := applyFlags(cmd, &base, rec); err != nil {
				return err
			}
			if fromAsset {
				if err := fillFromAsset(&base); err != nil {
					return err
				}
			}
			if err := applyStatuses(&base, statuses); err != nil {
				return err
			}

			saved, changed, err := store.Save(base)
			if err != nil {
				return err
			}
			if err := store.Persist(); err != nil {
				return err
			}
			if changed {
				fmt.Fprintf(output.Out, "Saved checklist record %d.\n", saved.SrNo)
			} else {
				fmt.Fprintf(output.Out, "No changes detected for record %d.\n", saved.SrNo)
			}
			if push {
				return pushRecord(saved)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&srNo, "sr", 0, "record number to edit (omit to create)")
	f.StringVar(&rec.Username, "username", "", "user the laptop is issued to")
	f.StringVar(&rec.Department, "dept", "", "department")
	f.StringVar(&rec.DateOfIssue, "date-of-issue", "", "date of issue (YYYY-MM-DD)")
	f.StringVar(&rec.Laptop, "laptop", "", "laptop make and model")
	f.StringVar(&rec.SerialNo, "serial", "", "laptop serial number")
	f.StringVar(&rec.Configuration, "configuration", "", "hardware configuration")
	f.StringVar(&rec.Accessories, "accessories", "", "accessories handed over")
	f.StringVar(&rec.AssetTag, "asset-tag", "", "asset tag printed on the laptop")
	f.StringVar(&rec.IssuedBy, "issued-by", "", "person issuing the laptop")
	f.StringVar(&rec.Checklist.SystemName, "system-name", "", "system (host) name, mandatory")
	f.Int64Var(&rec.Asset.SrNo, "asset-sr", 0, "sr_no of the systems asset")
	f.StringVar(&rec.Asset.MachineAssetTag, "machine-tag", "", "machine_asset_tag of the systems asset")
	f.StringVar(&rec.Asset.MonitorAssetTag, "monitor-tag", "", "monitor_asset_tag of the systems asset")
	f.StringArrayVar(&statuses, "status", nil, "checklist item N=value (repeatable), e.g. 3=OK")
	f.BoolVar(&fromAsset, "from-asset", false, "prefill empty fields from the linked asset")
	f.BoolVar(&push, "push", false, "push the issuance details to the linked asset after saving")
	return cmd
}

// applyFlags copies the flags the user actually set from in onto r.
func applyFlags(cmd *cobra.Command, r *Record, in Record) error {
	set := map[string]func(){
		"username":      func() { r.Username = in.Username },
		"dept":          func() { r.Department = in.Department },
		"date-of-issue": func() { r.DateOfIssue = in.DateOfIssue },
		"laptop":        func() { r.Laptop = in.Laptop },
		"serial":        func() { r.SerialNo = in.SerialNo },
		"configuration": func() { r.Configuration = in.Configuration },
		"accessories":   func() { r.Accessories = in.Accessories },
		"asset-tag":     func() { r.AssetTag = in.AssetTag },
		"issued-by":     func() { r.IssuedBy = in.IssuedBy },
		"system-name":   func() { r.Checklist.SystemName = in.Checklist.SystemName },
		"asset-sr":      func() { r.Asset.SrNo = in.Asset.SrNo },
		"machine-tag":   func() { r.Asset.MachineAssetTag = in.Asset.MachineAssetTag },
		"monitor-tag":   func() { r.Asset.MonitorAssetTag = in.Asset.MonitorAssetTag },
	}
	for name, apply := range set {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}
	if r.DateOfIssue != "" {
		if _, err := time.Parse("2006-01-02", r.DateOfIssue); err != nil {
			return fmt.Errorf("date of issue must be YYYY-MM-DD, got %q", r.DateOfIssue)
		}
	}
	return nil
}

func applyStatuses(r *Record, pairs []string) error {
	if r.Checklist.Statuses == nil {
		r.Checklist.Statuses = DefaultStatuses()
	}
	for _, p := range pairs {
		item, value, ok := strings.Cut(p, "=")
		n, err := strconv.Atoi(strings.TrimSpace(item))
		if !ok || err != nil || n < 1 || n > StatusCount {
			return fmt.Errorf("status must be N=value with N in 1..%d, got %q", StatusCount, p)
		}
		r.Checklist.Statuses[StatusKey(n)] = strings.TrimSpace(value)
	}
	return nil
}

// fillFromAsset copies asset fields into empty form fields.
func fillFromAsset(r *Record) error {
	if !r.Asset.Linked() {
		return fmt.Errorf("--from-asset needs --asset-sr, --machine-tag and --monitor-tag")
	}
	c, err := client.Authenticated()
	if err != nil {
		return err
	}
	var row map[string]any
	if err := c.Post("/assets/get", map[string]any{"tableType": "systems", "key": r.Asset}, &row); err != nil {
		return err
	}
	fill := func(dst *string, column string) {
		if *dst == "" {
			if v, ok := row[column].(string); ok && v != "N/A" {
				*dst = v
			}
		}
	}
	fill(&r.Username, "user_name")
	fill(&r.Department, "department")
	fill(&r.DateOfIssue, "date_of_issue")
	fill(&r.Laptop, "model")
	fill(&r.SerialNo, "serial_number")
	fill(&r.Configuration, "configuration")
	fill(&r.Accessories, "accessories")
	fill(&r.AssetTag, "machine_asset_tag")
	return nil
}

// ==========================
// List / Show / Print
// ==========================
func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved issuance records",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := Load(StorePath())
			if err != nil {
				return err
			}
			records := store.List()
			if len(records) == 0 {
				fmt.Fprintln(output.Out, "No checklist records saved.")
				return nil
			}
			rows := make([][]interface{}, len(records))
			for i, r := range records {
				rows[i] = []interface{}{r.SrNo, r.Checklist.SystemName, r.Username, r.Department, r.DateOfIssue, r.AssetTag, r.Asset.Linked()}
			}
			output.RenderTable([]string{"#", "System", "User", "Department", "Issued", "Asset Tag", "Linked"}, rows)
			return nil
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <srNo>",
		Short: "Print a record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRecord(args)
			if err != nil {
				return err
			}
			return output.PrintJSON(r)
		},
	}
}

func printCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "print <srNo>",
		Short: "Render the issuing form and checklist for printing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRecord(args)
			if err != nil {
				return err
			}
			Render(output.Out, r, time.Now())
			return nil
		},
	}
}

func loadRecord(args []string) (Record, error) {
	n, err := srNoArg(args)
	if err != nil {
		return Record{}, err
	}
	store, err := Load(StorePath())
	if err != nil {
		return Record{}, err
	}
	return store.Get(n)
}

// ==========================
// Delete
// ==========================
func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <srNo>",
		Short: "Delete a saved record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := srNoArg(args)
			if err != nil {
				return err
			}
			store, err := Load(StorePath())
			if err != nil {
				return err
			}
			if err := store.Delete(n); err != nil {
				return err
			}
			if err := store.Persist(); err != nil {
				return err
			}
			fmt.Fprintf(output.Out, "Deleted checklist record %d.\n", n)
			return nil
		},
	}
}

// ==========================
// Push
// ==========================
func pushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push <srNo>",
		Short: "Write the issuance details (user, department, date, accessories) to the linked asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRecord(args)
			if err != nil {
				return err
			}
			return pushRecord(r)
		},
	}
}

func pushRecord(r Record) error {
	if !r.Asset.Linked() {
		return fmt.Errorf("record %d is not linked to an asset: save it with --asset-sr, --machine-tag and --monitor-tag", r.SrNo)
	}
	c, err := client.Authenticated()
	if err != nil {
		return err
	}
	var out struct {
		Message string           `json:"message"`
		Changes []map[string]any `json:"changes"`
	}
	payload := map[string]any{"tableType": "systems", "key": r.Asset, "updates": r.Updates()}
	if err := c.Post("/assets/updateByKey", payload, &out); err != nil {
		return err
	}
	fmt.Fprintf(output.Out, "%s (%d field(s) changed)\n", out.Message, len(out.Changes))
	return nil
}
