// Package database stores emitted runs in MySQL.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"regexp"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"

	"trxr/internal/config"
)

var validName = regexp.MustCompile(`^[A-Za-z0-9_]{1,64}$`)

// Manager connects to the results database and keeps its schema current
type Manager struct {
	log logrus.FieldLogger
	cfg config.DatabaseConfig
}

// NewManager creates a new Manager
func NewManager(log logrus.FieldLogger, cfg config.DatabaseConfig) *Manager {
	return &Manager{
		log: log.WithField("component", "database"),
		cfg: cfg,
	}
}

// DSN returns the connection string. The database name is left out when
// withDB is false so the server can be reached before the schema exists.
func (m *Manager) DSN(withDB bool) string {
	dsn := mysql.NewConfig()
	dsn.User = m.cfg.User
	dsn.Passwd = m.cfg.Password
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	dsn.ParseTime = true
	dsn.Loc = time.UTC
	if withDB {
		dsn.DBName = m.cfg.Name
	}
	return dsn.FormatDSN()
}

// Open connects to the results database and checks the connection
func (m *Manager) Open(ctx context.Context) (*sql.DB, error) {
	return m.open(ctx, true)
}

func (m *Manager) open(ctx context.Context, withDB bool) (*sql.DB, error) {
	db, err := sql.Open("mysql", m.DSN(withDB))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database server: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database server: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the database and its tables if they don't exist
func (m *Manager) EnsureSchema(ctx context.Context) error {
	if !isValidDatabaseName(m.cfg.Name) {
		return fmt.Errorf("invalid database name: %s", m.cfg.Name)
	}

	server, err := m.open(ctx, false)
	if err != nil {
		return err
	}
	exists, err := databaseExists(ctx, server, m.cfg.Name)
	if err == nil && !exists {
		_, err = server.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", m.cfg.Name))
		if err == nil {
			m.log.WithField("database", m.cfg.Name).Info("Created database")
		}
	}
	server.Close()
	if err != nil {
		return fmt.Errorf("failed to create database %s: %w", m.cfg.Name, err)
	}

	db, err := m.Open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	m.log.WithFields(logrus.Fields{
		"database":   m.cfg.Name,
		"statements": len(schema),
	}).Debug("Schema is up to date")

	return nil
}

// databaseExists checks if a database exists
func databaseExists(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?)"
	err := db.QueryRowContext(ctx, query, name).Scan(&exists)
	return exists, err
}

// isValidDatabaseName allows only names that are safe to quote into DDL
func isValidDatabaseName(name string) bool {
	return validName.MatchString(name)
}
