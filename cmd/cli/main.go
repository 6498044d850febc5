package main

import (
	"fmt"
	"os"

	"github.com/crucial707/it-inventory/cmd/cli/assets"
	"github.com/crucial707/it-inventory/cmd/cli/auth"
	"github.com/crucial707/it-inventory/cmd/cli/checklist"
	"github.com/crucial707/it-inventory/cmd/cli/root"
	"github.com/crucial707/it-inventory/cmd/cli/users"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	assets.InitAssets(rootCmd)
	users.InitUsers(rootCmd)
	checklist.InitChecklist(rootCmd)

	// Execute the root Cobra command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
