package main

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

func newConfigureCmd(root *rootOptions) *cobra.Command {
	var reasoningKey, visionKey string

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Store the reasoning and vision API keys",
		Long: "Stores the API keys in the configured user-config backend.\n" +
			"Keys not passed as flags are prompted for; leave a prompt empty to keep the stored value.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if reasoningKey == "" && visionKey == "" {
				if err := promptKeys(&reasoningKey, &visionKey); err != nil {
					return err
				}
			}
			if reasoningKey == "" && visionKey == "" {
				return fmt.Errorf("at least one API key is required")
			}

			ctx := cmd.Context()
			e, err := root.setup(ctx, false)
			if err != nil {
				return err
			}
			defer e.close()

			manager, err := e.newManager()
			if err != nil {
				return err
			}

			active, err := manager.Configure(ctx, reasoningKey, visionKey)
			if err != nil {
				return err
			}

			if active {
				fmt.Fprintln(cmd.OutOrStdout(), "AI settings saved. Both keys are set and the designer can be used.")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "API keys saved. Set both keys to enable the AI features.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&reasoningKey, "reasoning-key", "", "API key for the reasoning model")
	cmd.Flags().StringVar(&visionKey, "vision-key", "", "API key for the vision model")
	return cmd
}

func promptKeys(reasoningKey, visionKey *string) error {
	questions := []*survey.Question{
		{
			Name:   "reasoning",
			Prompt: &survey.Password{Message: "Reasoning (OpenAI) API key:"},
		},
		{
			Name:   "vision",
			Prompt: &survey.Password{Message: "Vision (Gemini) API key:"},
		},
	}

	answers := struct {
		Reasoning string `survey:"reasoning"`
		Vision    string `survey:"vision"`
	}{}
	if err := survey.Ask(questions, &answers); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}

	*reasoningKey = answers.Reasoning
	*visionKey = answers.Vision
	return nil
}
