package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"aurora/internal/directory"
)

func newUsersCommand(ctx *commandContext) *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect the user directory",
	}
	usersCmd.AddCommand(newUsersListCommand(ctx))
	usersCmd.AddCommand(newUsersExportCommand(ctx))
	return usersCmd
}

type userView struct {
	ID        int64  `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	FirstSeen string `json:"first_seen"`
	LastSeen  string `json:"last_seen"`
}

func newUsersListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every user the bot has seen",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDirectory(func(store *directory.Store) error {
				users, err := store.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("list users: %w", err)
				}
				if asJSON {
					views := make([]userView, 0, len(users))
					for _, u := range users {
						views = append(views, userView{
							ID:        u.ID,
							FirstName: u.FirstName,
							LastName:  u.LastName,
							Username:  u.Username,
							FirstSeen: formatSeen(u.FirstSeen),
							LastSeen:  formatSeen(u.LastSeen),
						})
					}
					return writeJSON(cmd, views)
				}
				out := cmd.OutOrStdout()
				if len(users) == 0 {
					fmt.Fprintln(out, "No users recorded yet")
					return nil
				}
				rows := make([][]string, 0, len(users))
				for _, u := range users {
					rows = append(rows, []string{
						strconv.FormatInt(u.ID, 10),
						displayName(u),
						usernameLabel(u.Username),
						formatSeen(u.FirstSeen),
						formatSeen(u.LastSeen),
					})
				}
				headers := []string{"ID", "Name", "Username", "First Seen", "Last Seen"}
				fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignRight}))
				fmt.Fprintf(out, "%d users\n", len(users))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newUsersExportCommand(ctx *commandContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the user directory as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDirectory(func(store *directory.Store) error {
				target := strings.TrimSpace(outPath)
				var w io.Writer = cmd.OutOrStdout()
				var file *os.File
				if target != "" && target != "-" {
					f, err := os.Create(target)
					if err != nil {
						return fmt.Errorf("create export file: %w", err)
					}
					file = f
					w = f
				}
				count, err := store.WriteCSV(cmd.Context(), w)
				if file != nil {
					if closeErr := file.Close(); err == nil {
						err = closeErr
					}
					if err != nil {
						_ = os.Remove(target)
					}
				}
				if err != nil {
					return fmt.Errorf("export users: %w", err)
				}
				if file != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d users to %s\n", count, target)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Destination CSV file (default stdout)")
	return cmd
}

func (c *commandContext) withDirectory(fn func(*directory.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := directory.Open(cfg.DirectoryPath())
	if err != nil {
		return fmt.Errorf("open user directory: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func displayName(u directory.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return "-"
	}
	return name
}

func usernameLabel(username string) string {
	if username == "" {
		return "-"
	}
	return "@" + username
}

func formatSeen(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
