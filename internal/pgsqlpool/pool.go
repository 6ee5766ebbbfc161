// internal/pgsqlpool/pool.go
package pgsqlpool

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/lib/pq"
)

// ConnectionConfig holds configuration for a database connection
type ConnectionConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // disable, require, verify-ca, verify-full

	// Pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DSN returns the PostgreSQL data source name for this config
func (c *ConnectionConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// Validate checks if the connection config is valid
func (c *ConnectionConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if c.User == "" {
		return fmt.Errorf("user cannot be empty")
	}
	if c.DBName == "" {
		return fmt.Errorf("database name cannot be empty")
	}
	if c.MaxOpenConns <= 0 {
		return fmt.Errorf("max open connections must be greater than 0")
	}
	if c.MaxIdleConns < 0 {
		return fmt.Errorf("max idle connections cannot be negative")
	}
	return nil
}

// Pool manages named database connections
type Pool struct {
	mu          sync.RWMutex
	connections map[string]*sql.DB
}

// NewPool creates a new connection pool
func NewPool() *Pool {
	return &Pool{
		connections: make(map[string]*sql.DB),
	}
}

// AddConnection creates and adds a new named database connection
func (p *Pool) AddConnection(ctx context.Context, name string, config *ConnectionConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid config for connection %s: %w", name, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.connections[name]; exists {
		return fmt.Errorf("connection %s already exists", name)
	}

	db, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return fmt.Errorf("failed to open connection %s: %w", name, err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	// Test the connection before handing it out
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping connection %s: %w", name, err)
	}

	p.connections[name] = db
	return nil
}

// GetConnection returns a named database connection
func (p *Pool) GetConnection(name string) (*sql.DB, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	db, exists := p.connections[name]
	if !exists {
		return nil, fmt.Errorf("connection %s not found", name)
	}
	return db, nil
}

// HealthCheck checks if a named connection is healthy
func (p *Pool) HealthCheck(ctx context.Context, name string) error {
	db, err := p.GetConnection(name)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("health check failed for connection %s: %w", name, err)
	}
	return nil
}

// Exec executes a statement on a named connection
func (p *Pool) Exec(ctx context.Context, connectionName, query string, args ...interface{}) (sql.Result, error) {
	db, err := p.GetConnection(connectionName)
	if err != nil {
		return nil, err
	}
	return db.ExecContext(ctx, query, args...)
}

// Query executes a query on a named connection
func (p *Pool) Query(ctx context.Context, connectionName, query string, args ...interface{}) (*sql.Rows, error) {
	db, err := p.GetConnection(connectionName)
	if err != nil {
		return nil, err
	}
	return db.QueryContext(ctx, query, args...)
}

// Close closes all connections
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for name, db := range p.connections {
		if err := db.Close(); err != nil {
			lastErr = fmt.Errorf("failed to close connection %s: %w", name, err)
		}
	}

	p.connections = make(map[string]*sql.DB)
	return lastErr
}
