package auth

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/crucial707/it-inventory/cmd/cli/client"
	"github.com/crucial707/it-inventory/cmd/cli/config"
	"github.com/crucial707/it-inventory/cmd/cli/output"
	"github.com/spf13/cobra"
)

// Input is read for prompted credentials. Tests replace it.
var Input io.Reader = os.Stdin

// InitAuth registers login, logout and whoami on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(loginCmd(), logoutCmd(), whoamiCmd())
}

// ==========================
// Login
// ==========================
func loginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the inventory API",
		Long:  "Authenticate with the inventory API and store a token for subsequent CLI commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(Input)
			if username == "" {
				username = prompt(reader, "Username: ")
			}
			if password == "" {
				password = prompt(reader, "Password: ")
			}
			if username == "" || password == "" {
				return fmt.Errorf("username and password are required")
			}

			var loginResp struct {
				Token string `json:"token"`
				User  struct {
					Username string `json:"username"`
					Role     string `json:"role"`
				} `json:"user"`
			}
			payload := map[string]string{"username": username, "password": password}
			if err := client.New().Post("/login", payload, &loginResp); err != nil {
				return fmt.Errorf("failed to login: %w", err)
			}
			if loginResp.Token == "" {
				return fmt.Errorf("login succeeded but no token returned")
			}

			if err := config.SaveToken(loginResp.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Fprintf(output.Out, "Logged in as %s (%s). Token stored locally.\n", loginResp.User.Username, loginResp.User.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username to authenticate as")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")

	return cmd
}

func prompt(r *bufio.Reader, label string) string {
	fmt.Fprint(output.Out, label)
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}

// ==========================
// Logout
// ==========================
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and remove the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.LoadToken(); err != nil {
				fmt.Fprintln(output.Out, "No user logged in.")
				return nil
			}
			// the server only holds browser sessions; failure here still clears the local token
			_ = client.New().Post("/logout", nil, nil)
			if err := config.ClearToken(); err != nil {
				return err
			}
			fmt.Fprintln(output.Out, "Logged out successfully.")
			return nil
		},
	}
}

// ==========================
// Who Am I
// ==========================
func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the user the stored token belongs to",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.Authenticated()
			if err != nil {
				return err
			}
			var out struct {
				Authenticated bool   `json:"authenticated"`
				Username      string `json:"username"`
				Role          string `json:"role"`
			}
			if err := c.Get("/check-auth", &out); err != nil {
				return err
			}
			if !out.Authenticated {
				return fmt.Errorf("stored token is no longer valid: run `inventory login`")
			}
			fmt.Fprintf(output.Out, "%s (%s)\n", out.Username, out.Role)
			return nil
		},
	}
}
