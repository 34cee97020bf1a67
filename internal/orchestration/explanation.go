package orchestration

import (
	"fmt"
	"strings"

	"github.com/bizmatters/agent-builder/circuit-designer/internal/models"
)

// buildExplanation writes the learner-facing summary of a finished design.
func buildExplanation(spec *models.DesignSpec, impl *models.CircuitImplementation, validation *models.ValidationResult) models.BeginnerExplanation {
	var b strings.Builder

	b.WriteString("# Your circuit is ready!\n")
	fmt.Fprintf(&b, "Placed %d parts and %d wires.\n", len(impl.ComponentIDs), len(impl.WireIDs))

	if spec != nil && len(spec.Schematic.Components) > 0 {
		b.WriteString("## Parts\n")
		for _, c := range spec.Schematic.Components {
			line := fmt.Sprintf("**%s** %s", c.ID, c.Type)
			if c.Value != "" {
				line += fmt.Sprintf(" %s %s", c.Value, c.Unit)
			}
			if c.Explanation != "" {
				line += ": " + c.Explanation
			}
			b.WriteString(strings.TrimSpace(line) + "\n")
		}
	}

	if spec != nil && len(spec.Schematic.Connections) > 0 {
		b.WriteString("## Connections\n")
		for _, conn := range spec.Schematic.Connections {
			fmt.Fprintf(&b, "**%s** %s pin %s to %s pin %s\n", conn.Net, conn.From.Component, conn.From.Pin, conn.To.Component, conn.To.Pin)
		}
	}

	if spec != nil && len(spec.SafetyNotes) > 0 {
		b.WriteString("## Safety\n")
		for _, note := range spec.SafetyNotes {
			b.WriteString(note + "\n")
		}
	}

	if spec != nil && len(spec.EducationalContent.Concepts) > 0 {
		b.WriteString("## What you will learn\n")
		for _, concept := range spec.EducationalContent.Concepts {
			b.WriteString(concept + "\n")
		}
	}

	if validation != nil {
		b.WriteString("## Layout check\n")
		fmt.Fprintf(&b, "**Score** %.0f (%s)", validation.Score, validation.Quality)
	}

	markdown := strings.TrimRight(b.String(), "\n")
	return models.BeginnerExplanation{
		Markdown:     markdown,
		HTMLRendered: SanitizeHTML(RenderMarkdown(markdown)),
	}
}
