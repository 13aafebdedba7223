package cmd

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/rohnsht/PhoneNumber/internal/db"
	"github.com/rohnsht/PhoneNumber/internal/logger"
	"github.com/rohnsht/PhoneNumber/internal/model"
	"github.com/rohnsht/PhoneNumber/internal/repository"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with demo API clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		sqlDB, err := db.NewMySQL(sqlOpts(cfg.MySQL))
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer sqlDB.Close()

		logger.Log.Info("seeding demo clients")
		if err := seedClients(cmd.Context(), repository.NewTxRunner(sqlDB), repository.NewClientsRepository(sqlDB)); err != nil {
			return err
		}
		logger.Log.Info("seed completed")
		return nil
	},
}

func demoClients() []model.Client {
	return []model.Client{
		{Name: "Acme Corp", APIKey: "11111111111111111111111111111111", Status: "active", RateLimitRPS: intptr(20)},
		{Name: "Foobar LLC", APIKey: "22222222222222222222222222222222", Status: "active", RateLimitRPS: intptr(50)},
		{Name: "Beta Testers", APIKey: "33333333333333333333333333333333", Status: "active", RateLimitRPS: intptr(5)},
		{Name: "Suspended Inc", APIKey: "44444444444444444444444444444444", Status: "suspended"},
		{Name: "Bulk Partner", APIKey: "55555555555555555555555555555555", Status: "active", RateLimitRPS: intptr(100)},
	}
}

// seedClients upserts the demo clients on api_key in one transaction.
func seedClients(ctx context.Context, txr repository.TxRunner, clients repository.ClientsRepository) error {
	return txr.InTx(ctx, func(tx *sqlx.Tx) error {
		for _, c := range demoClients() {
			if err := clients.Upsert(ctx, tx, c); err != nil {
				return fmt.Errorf("upsert client %q: %w", c.Name, err)
			}
		}
		return nil
	})
}

func intptr(i int) *int { return &i }
