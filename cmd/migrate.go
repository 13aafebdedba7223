package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rohnsht/PhoneNumber/internal/config"
	"github.com/rohnsht/PhoneNumber/internal/db"
	"github.com/rohnsht/PhoneNumber/internal/logger"
)

var migrationsDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations (dev: DROP & CREATE tables)",
	RunE: func(cmd *cobra.Command, args []string) error {
		mysqlDB, err := db.NewMySQL(sqlOpts(cfg.MySQL))
		if err != nil {
			return fmt.Errorf("open mysql: %w", err)
		}
		defer mysqlDB.Close()

		if err := runScript(cmd.Context(), mysqlDB, filepath.Join(migrationsDir, "mysql", "001_init.sql")); err != nil {
			return err
		}

		chDB, err := db.NewClickHouse(sqlOpts(cfg.ClickHouse))
		if err != nil {
			return fmt.Errorf("open clickhouse: %w", err)
		}
		defer chDB.Close()

		if err := runScript(cmd.Context(), chDB, filepath.Join(migrationsDir, "clickhouse", "001_numbers.sql")); err != nil {
			return err
		}

		logger.Log.Info("migration complete")
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrationsDir, "dir", "migrations", "directory holding mysql/ and clickhouse/ scripts")
}

// runScript executes a ';'-separated SQL file one statement at a time, so
// neither driver needs multi-statement support.
func runScript(ctx context.Context, dbx *sqlx.DB, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration file %s: %w", path, err)
	}
	stmts := splitStatements(string(b))
	for i, stmt := range stmts {
		if _, err := dbx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: statement %d: %w", filepath.Base(path), i+1, err)
		}
	}
	logger.Log.Info("migration applied", zap.String("file", path), zap.Int("statements", len(stmts)))
	return nil
}

func splitStatements(script string) []string {
	var (
		out []string
		sb  strings.Builder
	)
	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
		if strings.HasSuffix(trimmed, ";") {
			if stmt := strings.TrimSuffix(strings.TrimSpace(sb.String()), ";"); stmt != "" {
				out = append(out, stmt)
			}
			sb.Reset()
		}
	}
	if rest := strings.TrimSpace(sb.String()); rest != "" {
		out = append(out, rest)
	}
	return out
}

func sqlOpts(c config.DatabaseConfig) db.SQLOpts {
	return db.SQLOpts{
		DSN:             c.DSN,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		ConnMaxIdleTime: c.ConnMaxIdleTime,
		PingTimeout:     c.PingTimeout,
	}
}
