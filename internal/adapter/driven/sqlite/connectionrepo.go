package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ericfisherdev/jenkinsinsights/internal/domain/model"
	"github.com/ericfisherdev/jenkinsinsights/internal/domain/port/driven"
)

// activeConnectionKey is the settings row holding the active connection ID.
const activeConnectionKey = "active_connection"

// Compile-time interface satisfaction check.
var _ driven.ConnectionStore = (*ConnectionRepo)(nil)

// ConnectionRepo is the SQLite implementation of the ConnectionStore port.
// Credential fields (token, password, ssoToken) are obfuscated before write
// and restored to plaintext after read.
type ConnectionRepo struct {
	db *DB
}

// NewConnectionRepo creates a new ConnectionRepo.
func NewConnectionRepo(db *DB) *ConnectionRepo {
	return &ConnectionRepo{db: db}
}

// Add persists a connection. A missing ID is generated and a missing auth
// type is inferred from the populated credential fields before validation.
func (r *ConnectionRepo) Add(ctx context.Context, conn model.Connection) (model.Connection, error) {
	if conn.ID == "" {
		conn.ID = uuid.NewString()
	}
	conn = conn.Normalize()
	if err := conn.Validate(); err != nil {
		return model.Connection{}, err
	}

	const query = `
		INSERT INTO connections (id, name, url, auth_type, username, token, password, sso_token, cookie_auth, folder, color)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.Writer.ExecContext(ctx, query,
		conn.ID, conn.Name, conn.URL, string(conn.AuthType), conn.Username,
		obfuscate(conn.Token), obfuscate(conn.Password), obfuscate(conn.SSOToken),
		conn.CookieAuth, conn.Folder, conn.Color,
	)
	if err != nil {
		return model.Connection{}, fmt.Errorf("add connection %q: %w", conn.Name, err)
	}

	stored, err := r.GetByID(ctx, conn.ID)
	if err != nil {
		return model.Connection{}, err
	}
	return *stored, nil
}

// GetByID returns the connection with the given ID.
func (r *ConnectionRepo) GetByID(ctx context.Context, id string) (*model.Connection, error) {
	const query = `
		SELECT id, name, url, auth_type, username, token, password, sso_token, cookie_auth, folder, color, created_at
		FROM connections WHERE id = ?`

	conn, err := scanConnection(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, driven.ErrConnectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get connection %q: %w", id, err)
	}
	return conn, nil
}

// ListAll returns all connections ordered by name.
func (r *ConnectionRepo) ListAll(ctx context.Context) ([]model.Connection, error) {
	const query = `
		SELECT id, name, url, auth_type, username, token, password, sso_token, cookie_auth, folder, color, created_at
		FROM connections ORDER BY name`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	defer rows.Close()

	var conns []model.Connection
	for rows.Next() {
		conn, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		conns = append(conns, *conn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate connections: %w", err)
	}

	return conns, nil
}

// Remove deletes the connection and clears the active selection when it
// pointed at the removed connection.
func (r *ConnectionRepo) Remove(ctx context.Context, id string) error {
	res, err := r.db.Writer.ExecContext(ctx, `DELETE FROM connections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove connection %q: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove connection %q: %w", id, err)
	}
	if affected == 0 {
		return driven.ErrConnectionNotFound
	}

	const clear = `DELETE FROM settings WHERE key = ? AND value = ?`
	if _, err := r.db.Writer.ExecContext(ctx, clear, activeConnectionKey, id); err != nil {
		return fmt.Errorf("clear active connection: %w", err)
	}
	return nil
}

// SetActive marks the given connection as active.
func (r *ConnectionRepo) SetActive(ctx context.Context, id string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}

	const query = `INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`
	if _, err := r.db.Writer.ExecContext(ctx, query, activeConnectionKey, id); err != nil {
		return fmt.Errorf("set active connection %q: %w", id, err)
	}
	return nil
}

// GetActive returns the active connection, or (nil, nil) when none is set.
func (r *ConnectionRepo) GetActive(ctx context.Context) (*model.Connection, error) {
	const query = `SELECT value FROM settings WHERE key = ?`

	var id string
	err := r.db.Reader.QueryRowContext(ctx, query, activeConnectionKey).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active connection: %w", err)
	}

	return r.GetByID(ctx, id)
}

// scanner abstracts sql.Row and sql.Rows for scanConnection.
type scanner interface {
	Scan(dest ...any) error
}

func scanConnection(s scanner) (*model.Connection, error) {
	var conn model.Connection
	var authType, token, password, ssoToken, createdAt string

	err := s.Scan(&conn.ID, &conn.Name, &conn.URL, &authType, &conn.Username,
		&token, &password, &ssoToken, &conn.CookieAuth, &conn.Folder, &conn.Color, &createdAt)
	if err != nil {
		return nil, err
	}

	conn.AuthType = model.AuthType(authType)
	conn.Token = deobfuscate(token)
	conn.Password = deobfuscate(password)
	conn.SSOToken = deobfuscate(ssoToken)

	conn.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &conn, nil
}
