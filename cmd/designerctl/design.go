package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/bizmatters/agent-builder/circuit-designer/internal/models"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/orchestration"
)

func newDesignCmd(root *rootOptions) *cobra.Command {
	var (
		asJSON      bool
		interactive bool
		wordWrap    int
	)

	cmd := &cobra.Command{
		Use:   "design <request>",
		Short: "Design a circuit in the open schematic",
		Example: `  designerctl design "a blinking LED powered by USB"
  designerctl design --interactive "a 555 timer that drives a buzzer"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := root.setup(ctx, false)
			if err != nil {
				return err
			}
			defer e.close()

			if interactive {
				e.cfg.Designer.RequireApproval = true
			}

			manager, err := e.newManager()
			if err != nil {
				return err
			}
			if _, err := manager.Activate(ctx); err != nil {
				return err
			}
			orchestrator, err := manager.Current()
			if err != nil {
				return err
			}

			progress := &terminalProgress{out: cmd.ErrOrStderr(), interactive: interactive}
			resp, err := orchestrator.Process(ctx, strings.Join(args, " "), nil, progress)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			return renderExplanation(cmd.OutOrStdout(), resp, wordWrap)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full response as JSON")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "confirm each layout improvement before it is applied")
	cmd.Flags().IntVar(&wordWrap, "wrap", 100, "word wrap width for the rendered explanation")
	return cmd
}

// terminalProgress prints progress lines and asks for approvals on the terminal.
type terminalProgress struct {
	out         io.Writer
	interactive bool
}

func (p *terminalProgress) Report(_ context.Context, message string) {
	fmt.Fprintf(p.out, "• %s\n", message)
}

func (p *terminalProgress) RequestApproval(_ context.Context, s models.ImprovementSuggestion) (bool, error) {
	if !p.interactive {
		return false, nil
	}
	approved := false
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("%s %s? %s", s.Action, s.Component, s.Reason),
		Default: true,
	}
	if err := survey.AskOne(prompt, &approved); err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return approved, nil
}

var _ orchestration.Approver = (*terminalProgress)(nil)

func renderExplanation(w io.Writer, resp *models.DesignResponse, wordWrap int) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	out, err := renderer.Render(resp.Explanation.Markdown)
	if err != nil {
		return fmt.Errorf("failed to render explanation: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
