package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"afipimport/internal/service"
)

var subjectFlag string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API token scoped to a company",
	RunE:  runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringVar(&companyFlag, "company", "", "Company ID the token grants access to")
	tokenCmd.Flags().StringVar(&subjectFlag, "subject", "afipimport", "Token subject")
	_ = tokenCmd.MarkFlagRequired("company")
}

func runToken(cmd *cobra.Command, _ []string) error {
	companyID, err := uuid.Parse(companyFlag)
	if err != nil {
		return fmt.Errorf("invalid company id %q: %w", companyFlag, err)
	}

	issued, err := service.NewAuthService(&cfg.JWT).IssueToken(companyID, subjectFlag)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), issued.Token)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", issued.ExpiresAt.Format(time.RFC3339))
	return nil
}
