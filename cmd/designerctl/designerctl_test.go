package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizmatters/agent-builder/circuit-designer/internal/config"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/models"
)

func TestValidateInputs(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		email    string
		password string
		wantErr  string
	}{
		{name: "valid", user: "Dev", email: "dev@example.com", password: "abcd1234"},
		{name: "missing name", user: "  ", email: "dev@example.com", password: "abcd1234", wantErr: "name is required"},
		{name: "bad email", user: "Dev", email: "dev@", password: "abcd1234", wantErr: "invalid email format"},
		{name: "short password", user: "Dev", email: "dev@example.com", password: "ab12", wantErr: "at least 8"},
		{name: "no digit", user: "Dev", email: "dev@example.com", password: "abcdefgh", wantErr: "one letter and one number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateInputs(tt.user, tt.email, tt.password)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAboutCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"about"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, config.ExtensionName+" v"+config.Version+"\n", out.String())
}

func TestTerminalProgress(t *testing.T) {
	var out bytes.Buffer
	p := &terminalProgress{out: &out}

	p.Report(context.Background(), "Placed D1")
	assert.Equal(t, "• Placed D1\n", out.String())

	approved, err := p.RequestApproval(context.Background(), models.ImprovementSuggestion{Component: "D1", Action: models.ActionMove})
	require.NoError(t, err)
	assert.False(t, approved)
}

func TestRenderExplanation(t *testing.T) {
	var out bytes.Buffer
	resp := &models.DesignResponse{
		Explanation: models.BeginnerExplanation{Markdown: "# Your circuit is ready!\n\n**D1** LED"},
	}

	require.NoError(t, renderExplanation(&out, resp, 80))
	assert.Contains(t, out.String(), "Your circuit is ready!")
	assert.Contains(t, out.String(), "D1")
}
