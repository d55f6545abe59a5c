// Command planctl is the operator tool for migrations and manual plan
// changes.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"folio-backend/internal/config"
	"folio-backend/internal/domains/account"
	accountRepo "folio-backend/internal/domains/account/repository"
	accountService "folio-backend/internal/domains/account/service"
	"folio-backend/internal/domains/plan"
	"folio-backend/internal/infrastructure/database"
	"folio-backend/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()
	logger.Init(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the slice of the container planctl needs: Postgres and the
// account service. The caller must defer app.Close().
type app struct {
	db       *database.PostgresDB
	accounts account.Service
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	db := database.NewPostgresDB(cfg.DBConfig())
	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	quotas := plan.Quotas{Free: cfg.Storage.FreeQuotaBytes, Pro: cfg.Storage.ProQuotaBytes}
	svc := accountService.NewAccountService(
		accountRepo.NewPostgresRepository(db.Pool),
		nil,
		plan.SystemClock{},
		accountService.Config{Quotas: quotas},
	)
	return &app{db: db, accounts: svc}, nil
}

func (a *app) Close() {
	_ = a.db.Close()
}

var rootCmd = &cobra.Command{
	Use:          "planctl",
	Short:        "Folio operator tool",
	SilenceUsage: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.db.Migrate(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

var (
	grantEmail  string
	grantPeriod string
	grantUntil  string
	targetEmail string
)

var grantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Put an account on the pro plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := account.GrantRequest{Email: grantEmail, Period: plan.BillingPeriod(grantPeriod)}
		if grantUntil != "" {
			until, err := time.Parse(time.RFC3339, grantUntil)
			if err != nil {
				return fmt.Errorf("--until must be RFC3339: %w", err)
			}
			req.Until = &until
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		dto, err := a.accounts.GrantPlan(cmd.Context(), req)
		if err != nil {
			return err
		}
		printPlan(cmd, dto)
		return nil
	},
}

var revokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Put an account back on the free plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		dto, err := a.accounts.RevokePlan(cmd.Context(), targetEmail)
		if err != nil {
			return err
		}
		printPlan(cmd, dto)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print stored and effective plan of an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		dto, err := a.accounts.FindByEmail(cmd.Context(), targetEmail)
		if err != nil {
			return err
		}
		printPlan(cmd, dto)
		return nil
	},
}

func printPlan(cmd *cobra.Command, dto *account.AccountDTO) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Account:   %s (%s)\n", dto.Email, dto.ID)
	fmt.Fprintf(out, "Stored:    %s\n", dto.Plan)
	fmt.Fprintf(out, "Effective: %s\n", dto.EffectivePlan)
	if dto.BillingPeriod != nil {
		fmt.Fprintf(out, "Period:    %s\n", *dto.BillingPeriod)
	}
	if dto.SubscriptionEnd != nil {
		fmt.Fprintf(out, "Ends:      %s\n", dto.SubscriptionEnd.Format(time.RFC3339))
	}
	fmt.Fprintf(out, "Storage:   %d / %d bytes\n", dto.StorageUsed, dto.Entitlements.StorageQuota)
}

func init() {
	grantCmd.Flags().StringVar(&grantEmail, "email", "", "account email")
	grantCmd.Flags().StringVar(&grantPeriod, "period", string(plan.Monthly), "monthly or annual")
	grantCmd.Flags().StringVar(&grantUntil, "until", "", "subscription end (RFC3339), defaults to one period from now")
	_ = grantCmd.MarkFlagRequired("email")

	for _, c := range []*cobra.Command{revokeCmd, showCmd} {
		c.Flags().StringVar(&targetEmail, "email", "", "account email")
		_ = c.MarkFlagRequired("email")
	}

	rootCmd.AddCommand(migrateCmd, grantCmd, revokeCmd, showCmd)
}
