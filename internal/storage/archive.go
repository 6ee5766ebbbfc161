// internal/storage/archive.go
package storage

import (
	"context"
	"fmt"
	"time"

	"fwtrace.io/internal/models"
	"fwtrace.io/internal/pgsqlpool"
)

// Config holds configuration for the PostgreSQL archive
type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Host:            "localhost",
		Port:            5432,
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 2 * time.Minute,
	}
}

// Archive persists enriched firewall records to PostgreSQL. It is an
// optional sink: per-record failures are reported to the caller but do not
// stop the pipeline.
type Archive struct {
	pool           *pgsqlpool.Pool
	connectionName string
}

// NewArchive creates an archive over a named pool connection
func NewArchive(ctx context.Context, pool *pgsqlpool.Pool, connectionName string, config *Config) (*Archive, error) {
	connConfig := &pgsqlpool.ConnectionConfig{
		Host:            config.Host,
		Port:            config.Port,
		User:            config.User,
		Password:        config.Password,
		DBName:          config.DBName,
		SSLMode:         config.SSLMode,
		MaxOpenConns:    config.MaxOpenConns,
		MaxIdleConns:    config.MaxIdleConns,
		ConnMaxLifetime: config.ConnMaxLifetime,
		ConnMaxIdleTime: config.ConnMaxIdleTime,
	}

	if err := pool.AddConnection(ctx, connectionName, connConfig); err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	return &Archive{
		pool:           pool,
		connectionName: connectionName,
	}, nil
}

// EnsureSchema creates the events table if it does not exist
func (a *Archive) EnsureSchema(ctx context.Context) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS fw_events (
			id          BIGSERIAL PRIMARY KEY,
			ts          TEXT NOT NULL,
			action      TEXT NOT NULL,
			proto       TEXT,
			src_ip      TEXT NOT NULL,
			src_port    INTEGER,
			src_host    TEXT,
			src_net     TEXT,
			src_name    TEXT,
			src_country TEXT,
			src_error   TEXT,
			dst_ip      TEXT NOT NULL,
			dst_port    INTEGER,
			dst_iface   TEXT,
			dst_net     TEXT,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`

	if _, err := a.pool.Exec(ctx, a.connectionName, ddl); err != nil {
		return fmt.Errorf("failed to create events table: %w", err)
	}
	return nil
}

// Store inserts one enriched record
func (a *Archive) Store(ctx context.Context, rec *models.ActionRecord) error {
	sqlQuery := `
		INSERT INTO fw_events
			(ts, action, proto,
			 src_ip, src_port, src_host, src_net, src_name, src_country, src_error,
			 dst_ip, dst_port, dst_iface, dst_net)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := a.pool.Exec(ctx, a.connectionName, sqlQuery,
		rec.TS,
		rec.Action,
		rec.Proto,
		rec.Src.IP,
		rec.Src.Port,
		rec.Src.Host,
		rec.Src.Net,
		rec.Src.Name,
		rec.Src.Country,
		rec.Src.Err,
		rec.Dst.IP,
		rec.Dst.Port,
		rec.Dst.Iface,
		rec.Dst.Net,
	)
	if err != nil {
		return fmt.Errorf("failed to store record %s %s: %w", rec.TS, rec.Action, err)
	}

	return nil
}

// Health checks if the database connection is healthy
func (a *Archive) Health(ctx context.Context) error {
	return a.pool.HealthCheck(ctx, a.connectionName)
}

// Close closes the database connection pool
func (a *Archive) Close() error {
	return a.pool.Close()
}
