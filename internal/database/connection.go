package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	_ "github.com/lib/pq"
)

func Connect(ctx context.Context, databaseURL string, logger *slog.Logger) (*sql.DB, error) {
	// Log database connection attempt (without credentials)
	logger.Info("connecting to database", "url", safeDatabaseURL(databaseURL))

	if err := checkSSLFiles(databaseURL); err != nil {
		return nil, fmt.Errorf("failed to configure SSL: %w", err)
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Token lookups are short; a small pool is enough.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	logger.Info("database connection established")
	return db, nil
}

// safeDatabaseURL strips the password from a connection URL for logging
func safeDatabaseURL(databaseURL string) string {
	parsed, err := url.Parse(databaseURL)
	if err != nil {
		return "(unparseable database URL)"
	}

	safeURL := &url.URL{
		Scheme:   parsed.Scheme,
		Host:     parsed.Host,
		Path:     parsed.Path,
		RawQuery: parsed.RawQuery,
	}
	if parsed.User != nil {
		if username := parsed.User.Username(); username != "" {
			safeURL.User = url.User(username)
		}
	}
	return safeURL.String()
}

// checkSSLFiles fails early when a verifying SSL mode points at certificate files that are missing
func checkSSLFiles(databaseURL string) error {
	parsed, err := url.Parse(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse database URL: %w", err)
	}

	query := parsed.Query()
	switch mode := query.Get("sslmode"); mode {
	case "", "disable", "allow", "prefer", "require":
		return nil
	case "verify-ca", "verify-full":
		rootCert := query.Get("sslrootcert")
		if rootCert == "" {
			return fmt.Errorf("sslrootcert is required for %s mode", mode)
		}
		for _, f := range []string{rootCert, query.Get("sslcert"), query.Get("sslkey")} {
			if f == "" {
				continue
			}
			if _, err := os.Stat(f); err != nil {
				return fmt.Errorf("certificate file %s: %w", f, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported SSL mode: %s", mode)
	}
}
