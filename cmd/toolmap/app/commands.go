package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/toolmap/cmd/toolmap/cmd/collapse"
	"github.com/agentstation/toolmap/cmd/toolmap/cmd/enrich"
	"github.com/agentstation/toolmap/cmd/toolmap/cmd/tag"
	"github.com/agentstation/toolmap/cmd/toolmap/cmd/validate"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(a.CreateCollapseCommand())

	// Maintenance commands
	rootCmd.AddCommand(a.CreateTagCommand())
	rootCmd.AddCommand(a.CreateEnrichCommand())
	rootCmd.AddCommand(a.CreateValidateCommand())

	// Utility commands
	rootCmd.AddCommand(a.CreateVersionCommand())
}

// CreateCollapseCommand creates the collapse command with app dependencies.
func (a *App) CreateCollapseCommand() *cobra.Command {
	cmd := collapse.NewCommand(a)
	cmd.GroupID = "core"
	return cmd
}

// CreateTagCommand creates the tag command with app dependencies.
func (a *App) CreateTagCommand() *cobra.Command {
	cmd := tag.NewCommand(a)
	cmd.GroupID = "maintenance"
	return cmd
}

// CreateEnrichCommand creates the enrich command with app dependencies.
func (a *App) CreateEnrichCommand() *cobra.Command {
	cmd := enrich.NewCommand(a)
	cmd.GroupID = "maintenance"
	return cmd
}

// CreateValidateCommand creates the validate command with app dependencies.
func (a *App) CreateValidateCommand() *cobra.Command {
	cmd := validate.NewCommand(a)
	cmd.GroupID = "maintenance"
	return cmd
}

// CreateVersionCommand creates the version command.
func (a *App) CreateVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("toolmap %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
