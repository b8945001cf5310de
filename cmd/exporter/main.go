package main

import (
	"fmt"
	"io"
	"os"

	"github.com/VictorTadashi/AnimaFlow/internal/logger"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var logLevel string
	var log *zap.Logger
	getLogger := func() *zap.Logger {
		if log == nil {
			return zap.NewNop()
		}
		return log
	}

	cmd := &cobra.Command{
		Use:           "exporter",
		Short:         "Offline lesson plan tools: compile prompts, extract documents and convert them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logger.New(logLevel)
			if err != nil {
				return err
			}
			log = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = getLogger().Sync()
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn or error")

	cmd.AddCommand(
		newPromptCommand(getLogger),
		newExtractCommand(),
		newConvertCommand(getLogger),
	)
	return cmd
}

// readInput reads a file, or stdin when name is "-"
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}
