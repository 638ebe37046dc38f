package cmd

import (
	"github.com/jzelinskie/cobrautil/v2"
	"github.com/spf13/cobra"

	"github.com/votingworks/paper-handler/internal/config"
)

const envPrefix = "PAPER_HANDLER"

func NewRootCommand() *cobra.Command {
	cfg := config.NewConfigurationWithOptionsAndDefaults()

	root := &cobra.Command{
		Use:               "paper-handler",
		Short:             "Drive a ballot scanner / paper handler and expose its status over HTTP",
		SilenceUsage:      true,
		PersistentPreRunE: cobrautil.SyncViperPreRunE(envPrefix),
	}

	root.AddCommand(
		NewRunCommand(cfg),
		NewStatusCommand(),
	)

	return root
}
