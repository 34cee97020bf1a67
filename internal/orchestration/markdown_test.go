package orchestration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "title and bold",
			input:    "# Title\n**bold**",
			expected: "<h1>Title</h1><br><strong>bold</strong>",
		},
		{
			name:     "second level header",
			input:    "## Parts\n**R1** resistor",
			expected: "<h2>Parts</h2><br><strong>R1</strong> resistor",
		},
		{
			name:     "several bold spans on one line",
			input:    "**R1** to **D1**",
			expected: "<strong>R1</strong> to <strong>D1</strong>",
		},
		{
			name:     "lists are left alone",
			input:    "- item\n`code`",
			expected: "- item<br>`code`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RenderMarkdown(tt.input))
		})
	}
}

func TestSanitizeHTML(t *testing.T) {
	html := SanitizeHTML(RenderMarkdown("# Hi\n<script>alert(1)</script>**ok**"))

	assert.Contains(t, html, "<h1>Hi</h1>")
	assert.Contains(t, html, "<strong>ok</strong>")
	assert.NotContains(t, html, "<script>")
}
