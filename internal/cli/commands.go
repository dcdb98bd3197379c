package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	apperrors "github.com/sadopc/taskr/internal/errors"
	"github.com/sadopc/taskr/internal/export"
)

var errNotLoggedIn = apperrors.NewValidationError("not logged in; run taskr to log in")

// userError keeps the log detail and returns what the user should read.
func (r *RootCommand) userError(op string, err error) error {
	r.env.Log.Error(op+" failed", "err", err)
	if _, ok := apperrors.AsAppError(err); ok {
		return fmt.Errorf("%s: %s", op, apperrors.GetUserMessage(err))
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (r *RootCommand) newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			env := r.env

			fmt.Fprintf(out, "API:      %s\n", env.Config.APIURL)
			if env.Config.PersistSession {
				fmt.Fprintf(out, "Storage:  %s\n", env.Config.DBPath)
			} else {
				fmt.Fprintln(out, "Storage:  memory (persist_session = false)")
			}

			if !env.Session.LoggedIn() {
				fmt.Fprintln(out, "Session:  not logged in")
				return nil
			}
			fmt.Fprintln(out, "Session:  logged in")

			exp, ok := env.Session.Expiry()
			switch {
			case !ok:
				fmt.Fprintln(out, "Expires:  unknown")
			case time.Until(exp) > 0:
				fmt.Fprintf(out, "Expires:  %s (in %s)\n",
					exp.Local().Format("2006-01-02 15:04:05"), time.Until(exp).Round(time.Second))
			default:
				fmt.Fprintf(out, "Expires:  %s (expired, refreshed on next request)\n",
					exp.Local().Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

func (r *RootCommand) newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the stored session",
		Long:  "Revoke the refresh token on the server and clear the stored session. The local session is cleared even if the server cannot be reached.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !r.env.Session.LoggedIn() {
				fmt.Fprintln(out, "Not logged in.")
				return nil
			}
			if err := r.env.Session.Logout(cmd.Context(), r.env.API); err != nil {
				fmt.Fprintln(out, "Logged out locally.")
				return r.userError("logout", err)
			}
			fmt.Fprintln(out, "Logged out.")
			return nil
		},
	}
}

func (r *RootCommand) newExportCommand() *cobra.Command {
	var (
		format string
		page   int
		dir    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a page of tasks to CSV or JSON",
		Long: `Fetch one page of tasks and write it to taskr-export-YYYY-MM-DD.csv or .json.

Examples:
  taskr export                       # first page as CSV in the home directory
  taskr export --format json --page 2
  taskr export --dir ./exports`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if page < 1 {
				return fmt.Errorf("invalid page %d: must be at least 1", page)
			}
			if !r.env.Session.LoggedIn() {
				return errNotLoggedIn
			}
			if dir == "" {
				if dir, err = os.UserHomeDir(); err != nil {
					return fmt.Errorf("find home directory: %w", err)
				}
			}

			p, err := r.env.API.ListTasks(cmd.Context(), page, r.env.Config.PageSize)
			if err != nil {
				return r.userError("export", err)
			}
			path, err := export.Write(f, p.Tasks, dir)
			if err != nil {
				return r.userError("export", err)
			}
			r.env.Log.Info("exported tasks", "path", path, "count", len(p.Tasks), "page", p.Page)
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tasks (page %d of %d) to %s\n",
				len(p.Tasks), p.Page, p.LastPage, path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatCSV), "Export format: csv or json")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page to export")
	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (default: home directory)")
	return cmd
}

func (r *RootCommand) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// No config or storage needed.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "taskr %s\n", r.version)
		},
	}
}
