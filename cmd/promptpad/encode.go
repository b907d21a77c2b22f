package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joestump/promptpad/internal/prompt"
)

func newEncodeCmd(a *app) *cobra.Command {
	var instructionFile, messagesFile, model string

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Print the prompt sent to the model for a conversation",
		Long:  "Reads the instruction (a rendered template) and a JSON array of {role, content} messages, and prints the encoded prompt for the next assistant turn.",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := a.cfg.ModelCatalog()
			if err != nil {
				return err
			}
			m, err := catalog.Resolve(model)
			if err != nil {
				return err
			}

			var instruction []byte
			if instructionFile != "" {
				if instruction, err = os.ReadFile(instructionFile); err != nil {
					return fmt.Errorf("read instruction: %w", err)
				}
			}

			var history []prompt.Message
			if messagesFile != "" {
				raw, err := os.ReadFile(messagesFile)
				if err != nil {
					return fmt.Errorf("read messages: %w", err)
				}
				if err := json.Unmarshal(raw, &history); err != nil {
					return fmt.Errorf("parse messages: %w", err)
				}
				for i, msg := range history {
					if !msg.Role.Valid() {
						return fmt.Errorf("message %d: unknown role %q", i, msg.Role)
					}
				}
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), prompt.Encode(prompt.Request{
				Instruction: string(instruction),
				History:     history,
				Model:       m,
			}))
			return err
		},
	}
	cmd.Flags().StringVarP(&instructionFile, "instruction", "i", "", "file holding the rendered template")
	cmd.Flags().StringVarP(&messagesFile, "messages", "m", "", "JSON file of {role, content} messages")
	cmd.Flags().StringVar(&model, "model", "", "model id (default: configured default model)")
	return cmd
}
