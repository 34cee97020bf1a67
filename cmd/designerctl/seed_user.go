package main

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"

	"github.com/bizmatters/agent-builder/circuit-designer/internal/store"
)

const (
	// MinPasswordLength is the minimum password length requirement
	MinPasswordLength = 8
	// BcryptCost is the cost factor for bcrypt hashing (10 = ~100ms)
	BcryptCost = 10
)

var (
	emailRegex  = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	letterRegex = regexp.MustCompile(`[a-zA-Z]`)
	numberRegex = regexp.MustCompile(`[0-9]`)
)

func newSeedUserCmd(root *rootOptions) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "seed-user",
		Short: "Create an operator account for the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateInputs(name, email, password); err != nil {
				return fmt.Errorf("validation error: %w", err)
			}

			ctx, span := otel.Tracer("designerctl").Start(cmd.Context(), "seed_user")
			defer span.End()

			e, err := root.setup(ctx, true)
			if err != nil {
				return err
			}
			defer e.close()

			hashed, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}

			normalized := strings.ToLower(strings.TrimSpace(email))
			userID, err := store.NewUserRepository(e.pool).Create(ctx, strings.TrimSpace(name), normalized, string(hashed))
			if err != nil {
				if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique constraint") {
					return fmt.Errorf("user with email %s already exists", normalized)
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "✓ Successfully created user")
			fmt.Fprintf(out, "  ID: %s\n", userID)
			fmt.Fprintf(out, "  Name: %s\n", name)
			fmt.Fprintf(out, "  Email: %s\n", normalized)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Full name of the user (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password (required, min 8 chars)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// validateInputs validates user input according to security requirements
func validateInputs(name, email, password string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required and cannot be empty")
	}

	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}

	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}

	if !letterRegex.MatchString(password) || !numberRegex.MatchString(password) {
		return fmt.Errorf("password must contain at least one letter and one number")
	}

	return nil
}
