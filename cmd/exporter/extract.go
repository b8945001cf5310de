package main

import (
	"fmt"

	"github.com/VictorTadashi/AnimaFlow/internal/content"
	"github.com/spf13/cobra"
)

func newExtractCommand() *cobra.Command {
	var chat bool

	cmd := &cobra.Command{
		Use:   "extract <reply.txt|->",
		Short: "Print the HTML document carried by an assistant reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			if chat {
				fmt.Fprintln(cmd.OutOrStdout(), content.CleanChatMessage(string(data)))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), content.ExtractHTML(string(data)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&chat, "chat", false, "Print the chat text instead of the document")

	return cmd
}
