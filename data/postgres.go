// postgres.go loads a Postgres query result as a dataset.
//
// SSH tunnel integration is handled transparently: if SSH is enabled,
// we first establish the tunnel, then connect pgx to the local endpoint.
package data

import (
	"context"
	"fmt"
	"strings"

	"github.com/DachengChen/paiData/applog"
	"github.com/DachengChen/paiData/config"
	"github.com/DachengChen/paiData/ssh"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Conn wraps a pgx connection pool and optional SSH tunnel.
type Conn struct {
	Pool   *pgxpool.Pool
	Tunnel *ssh.Tunnel
}

// Connect establishes a PostgreSQL connection, optionally through an SSH tunnel.
func Connect(ctx context.Context, cfg config.PostgresConfig) (*Conn, error) {
	c := &Conn{}

	if cfg.SSH.Enabled {
		tunnel, err := ssh.NewTunnel(cfg.SSH, cfg.Host, cfg.Port)
		if err != nil {
			return nil, fmt.Errorf("ssh tunnel: %w", err)
		}
		localAddr, err := tunnel.Start(ctx)
		if err != nil {
			return nil, fmt.Errorf("ssh tunnel start: %w", err)
		}
		c.Tunnel = tunnel

		// Override connection target with local tunnel endpoint
		cfg.Host = localAddr.Host
		cfg.Port = localAddr.Port
	}

	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("pgx connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		c.Close()
		return nil, fmt.Errorf("pgx ping: %w", err)
	}

	c.Pool = pool
	return c, nil
}

// Close shuts down the pool and SSH tunnel.
func (c *Conn) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
	if c.Tunnel != nil {
		c.Tunnel.Stop()
	}
}

// Query runs sql and collects at most maxRows rows (0 means unlimited).
func (c *Conn) Query(ctx context.Context, name, sql string, maxRows int) (*Dataset, error) {
	sql = strings.TrimSpace(sql)
	if sql == "" {
		return nil, fmt.Errorf("empty query")
	}

	rows, err := c.Pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for _, fd := range rows.FieldDescriptions() {
		columns = append(columns, fd.Name)
	}
	columns = uniqueColumns(columns)

	var out []Row
	truncated := false
	for rows.Next() {
		if maxRows > 0 && len(out) >= maxRows {
			truncated = true
			break
		}
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(Row, len(values))
		for i, v := range values {
			row[columns[i]] = normalizePG(v)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ds, err := newWithColumns(name, out, columns)
	if err != nil {
		return nil, err
	}
	ds.Truncated = truncated
	applog.Event("DATASET", "loaded query %s: %s (truncated=%v)", name, ds.Shape(), truncated)
	return ds, nil
}

// LoadPostgres connects, runs one query and disconnects.
func LoadPostgres(ctx context.Context, cfg config.PostgresConfig, name, sql string, maxRows int) (*Dataset, error) {
	conn, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return conn.Query(ctx, name, sql, maxRows)
}

// normalizePG turns pgx-decoded values into JSON-friendly ones.
func normalizePG(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case [16]byte:
		return uuid.UUID(x).String()
	case pgtype.Numeric:
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case int32:
		return int64(x)
	case int16:
		return int64(x)
	case float32:
		return float64(x)
	default:
		return x
	}
}
