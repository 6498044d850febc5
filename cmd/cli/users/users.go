package users

import (
	"fmt"

	"github.com/crucial707/it-inventory/cmd/cli/client"
	"github.com/crucial707/it-inventory/cmd/cli/output"
	"github.com/spf13/cobra"
)

type user struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// ==========================
// CLI Command Init
// ==========================
func InitUsers(rootCmd *cobra.Command) {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage login accounts (admin only)",
	}
	usersCmd.AddCommand(listUsersCmd(), createUserCmd())
	rootCmd.AddCommand(usersCmd)
}

// ==========================
// List Users
// ==========================
func listUsersCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List login accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.Authenticated()
			if err != nil {
				return err
			}
			var users []user
			if err := c.Get("/users", &users); err != nil {
				return err
			}
			if asJSON {
				return output.PrintJSON(users)
			}
			rows := make([][]interface{}, len(users))
			for i, u := range users {
				rows[i] = []interface{}{u.ID, u.Username, u.Role}
			}
			output.RenderTable([]string{"ID", "Username", "Role"}, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

// ==========================
// Create User
// ==========================
func createUserCmd() *cobra.Command {
	var username, password, role string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a login account",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.Authenticated()
			if err != nil {
				return err
			}
			var created user
			payload := map[string]string{"username": username, "password": password, "role": role}
			if err := c.Post("/users", payload, &created); err != nil {
				return err
			}
			fmt.Fprintf(output.Out, "Created user %s (id %d, role %s)\n", created.Username, created.ID, created.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&password, "password", "", "initial password (at least 8 characters)")
	cmd.Flags().StringVar(&role, "role", "viewer", "viewer or admin")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	return cmd
}
