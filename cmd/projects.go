package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/atelier/internal/config"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List and create projects without starting the TUI",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects, most recently opened first",
	Long: `List projects as tab-separated name and id, most recently opened first.

Examples:
  atelier projects list
  atelier projects list | cut -f1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configErr != nil {
			return configErr
		}
		return listProjects(cmd.Context(), cmd.OutOrStdout(), cfg)
	},
}

var projectsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new project and print its name",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configErr != nil {
			return configErr
		}
		return createProject(cmd.Context(), cmd.OutOrStdout(), cfg)
	},
}

func init() {
	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsCreateCmd)
	rootCmd.AddCommand(projectsCmd)
}

func listProjects(ctx context.Context, w io.Writer, c config.Config) error {
	b, err := openBackend(withoutWatch(c), "")
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	projects, err := b.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("listing projects: %w", err)
	}
	for _, p := range projects {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", p.Name, p.ID); err != nil {
			return err
		}
	}
	return nil
}

func createProject(ctx context.Context, w io.Writer, c config.Config) error {
	b, err := openBackend(withoutWatch(c), "")
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	p, err := b.Create(ctx)
	if err != nil {
		return fmt.Errorf("creating project: %w", err)
	}
	_, err = fmt.Fprintln(w, p.Name)
	return err
}

// withoutWatch disables the source watcher for one-shot commands.
func withoutWatch(c config.Config) config.Config {
	c.Backend.Watch = false
	return c
}
