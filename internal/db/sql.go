// Package db opens the stores behind the batch pipeline: MySQL for clients
// and jobs, ClickHouse for normalized numbers, Redis for rate limiting.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

type SQLOpts struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration // default 5s
}

var ErrEmptyDSN = errors.New("empty DSN")

// NewMySQL opens the jobs database, e.g.
// phonenum:secret@tcp(localhost:3306)/phonenum?parseTime=true
func NewMySQL(opts SQLOpts) (*sqlx.DB, error) {
	return open("mysql", opts)
}

// NewClickHouse opens the results database, e.g.
// clickhouse://default:@localhost:9000/phonenum?dial_timeout=5s&compress=true
func NewClickHouse(opts SQLOpts) (*sqlx.DB, error) {
	return open("clickhouse", opts)
}

func open(driver string, opts SQLOpts) (*sqlx.DB, error) {
	if opts.DSN == "" {
		return nil, fmt.Errorf("%s: %w", driver, ErrEmptyDSN)
	}
	db, err := sqlx.Open(driver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", driver, err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: ping: %w", driver, err)
	}
	return db, nil
}
