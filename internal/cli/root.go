package cli

import (
	"github.com/futig/survey-agent/internal/usecase/intake"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// AgentFactory builds an intake agent for the named environment
type AgentFactory func(environment string) (*intake.Agent, *zap.Logger, error)

// NewRootCmd creates the top-level "survey-cli" command
func NewRootCmd(newAgent AgentFactory) *cobra.Command {
	root := &cobra.Command{
		Use:           "survey-cli",
		Short:         "Design a survey through a guided intake interview",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("env", "local", "Environment to run (local, prod, or custom)")

	root.AddCommand(
		newInterviewCmd(newAgent),
	)

	return root
}
