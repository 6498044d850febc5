package root

import (
	"github.com/spf13/cobra"
)

// Exported RootCmd
var RootCmd = &cobra.Command{
	Use:           "inventory",
	Short:         "IT Inventory CLI",
	Long:          "Command line interface for the IT asset inventory API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Optional helper to return the RootCmd
func GetRoot() *cobra.Command {
	return RootCmd
}
