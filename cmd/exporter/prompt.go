package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/VictorTadashi/AnimaFlow/internal/catalog"
	"github.com/VictorTadashi/AnimaFlow/internal/models"
	"github.com/VictorTadashi/AnimaFlow/internal/services"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func newPromptCommand(log func() *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt <lesson.yaml>",
		Short: "Validate a lesson form and print the prompt sent to the assistant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			var req models.LessonRequest
			if err := yaml.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("failed to parse lesson form: %w", err)
			}

			prompt, err := services.NewLessonService(catalog.Default(), log()).CompilePrompt(req)
			if err != nil {
				var vErr *models.ValidationError
				if errors.As(err, &vErr) {
					printFieldErrors(cmd, vErr)
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), prompt)
			return nil
		},
	}
}

func printFieldErrors(cmd *cobra.Command, vErr *models.ValidationError) {
	fields := make([]string, 0, len(vErr.Fields))
	for field := range vErr.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	yellow := color.New(color.FgYellow, color.Bold)
	for _, field := range fields {
		yellow.Fprintf(cmd.ErrOrStderr(), "%s: ", field)
		fmt.Fprintln(cmd.ErrOrStderr(), vErr.Fields[field])
	}
}
