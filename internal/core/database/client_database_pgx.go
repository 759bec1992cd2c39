package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/obinna-dev/drivesage/internal/config"
	"github.com/obinna-dev/drivesage/internal/core"
	"github.com/obinna-dev/drivesage/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Users

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, first_name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
	`
	_, err := c.db.ExecContext(ctx, q, user.ID, user.FirstName, user.Email, user.PasswordHash)
	return err
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, first_name, email, password_hash,
		       COALESCE(google_access_token, ''), COALESCE(google_refresh_token, ''),
		       COALESCE(google_token_expiry, 'epoch'::timestamptz),
		       created_at, updated_at
		FROM users WHERE email = $1
	`
	return c.scanUser(c.db.QueryRowContext(ctx, q, email))
}

func (c *DatabaseClient) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const q = `
		SELECT id, first_name, email, password_hash,
		       COALESCE(google_access_token, ''), COALESCE(google_refresh_token, ''),
		       COALESCE(google_token_expiry, 'epoch'::timestamptz),
		       created_at, updated_at
		FROM users WHERE id = $1
	`
	return c.scanUser(c.db.QueryRowContext(ctx, q, id))
}

func (c *DatabaseClient) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.FirstName, &u.Email, &u.PasswordHash,
		&u.GoogleAccessToken, &u.GoogleRefreshToken, &u.GoogleTokenExpiry,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *DatabaseClient) UpdateUserGoogleToken(ctx context.Context, userID, accessToken, refreshToken string, expiry time.Time) error {
	const q = `
		UPDATE users
		SET google_access_token = $2, google_refresh_token = $3, google_token_expiry = $4, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, userID, accessToken, refreshToken, expiry)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("user not found: %s", userID)
	}
	return nil
}

// Documents

// UpsertDocumentMetadata writes provider-owned metadata, leaving the
// locally owned analysis fields alone on conflict.
func (c *DatabaseClient) UpsertDocumentMetadata(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	const q = `
		INSERT INTO documents
			(id, user_id, name, mime_type, size, web_view_link, modified_time, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			mime_type = EXCLUDED.mime_type,
			size = EXCLUDED.size,
			web_view_link = EXCLUDED.web_view_link,
			modified_time = EXCLUDED.modified_time,
			updated_at = now()
	`
	_, err := c.db.ExecContext(ctx, q,
		doc.ID, doc.UserID, doc.Name, doc.MimeType, doc.Size, doc.WebViewLink, nullableTime(doc.ModifiedTime))
	return err
}

func (c *DatabaseClient) GetDocumentByID(ctx context.Context, id string) (*models.Document, error) {
	const q = `
		SELECT id, user_id, name, mime_type, size, web_view_link,
		       COALESCE(modified_time, 'epoch'::timestamptz),
		       content_text, content_summary, last_analyzed, created_at, updated_at
		FROM documents
		WHERE id = $1
	`
	var (
		d  models.Document
		la sql.NullTime
	)
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.UserID, &d.Name, &d.MimeType, &d.Size, &d.WebViewLink,
		&d.ModifiedTime, &d.ContentText, &d.ContentSummary, &la, &d.CreatedAt, &d.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if la.Valid {
		t := la.Time
		d.LastAnalyzed = &t
	}
	return &d, nil
}

func (c *DatabaseClient) ListDocumentsByUser(ctx context.Context, userID string) ([]models.Document, error) {
	const q = `
		SELECT id, user_id, name, mime_type, size, web_view_link,
		       COALESCE(modified_time, 'epoch'::timestamptz),
		       content_text, content_summary, last_analyzed, created_at, updated_at
		FROM documents
		WHERE user_id = $1
		ORDER BY name ASC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		var (
			d  models.Document
			la sql.NullTime
		)
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.Name, &d.MimeType, &d.Size, &d.WebViewLink,
			&d.ModifiedTime, &d.ContentText, &d.ContentSummary, &la, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if la.Valid {
			t := la.Time
			d.LastAnalyzed = &t
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpdateDocumentAnalysis replaces the analysis triple in one statement.
func (c *DatabaseClient) UpdateDocumentAnalysis(ctx context.Context, id, contentText, summary string, analyzedAt time.Time) error {
	const q = `
		UPDATE documents
		SET content_text = $2, content_summary = $3, last_analyzed = $4, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, contentText, summary, analyzedAt)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document not found: %s", id)
	}
	return nil
}

// Chat sessions and messages

func (c *DatabaseClient) CreateChatSession(ctx context.Context, session *models.ChatSession) error {
	if session == nil {
		return errors.New("nil session")
	}
	const q = `
		INSERT INTO chat_sessions (id, user_id, title, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
	`
	_, err := c.db.ExecContext(ctx, q, session.ID, session.UserID, session.Title)
	return err
}

func (c *DatabaseClient) GetChatSessionByID(ctx context.Context, id string) (*models.ChatSession, error) {
	const q = `
		SELECT id, user_id, title, created_at, updated_at
		FROM chat_sessions WHERE id = $1
	`
	var s models.ChatSession
	err := c.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.UserID, &s.Title, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *DatabaseClient) ListChatSessionsByUser(ctx context.Context, userID string) ([]models.ChatSession, error) {
	const q = `
		SELECT id, user_id, title, created_at, updated_at
		FROM chat_sessions
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChatSession
	for rows.Next() {
		var s models.ChatSession
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) TouchChatSession(ctx context.Context, id string) error {
	const q = `UPDATE chat_sessions SET updated_at = now() WHERE id = $1`
	_, err := c.db.ExecContext(ctx, q, id)
	return err
}

func (c *DatabaseClient) AddChatMessage(ctx context.Context, message *models.ChatMessage) error {
	if message == nil {
		return errors.New("nil message")
	}
	const q = `
		INSERT INTO chat_messages (id, session_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := c.db.ExecContext(ctx, q, message.ID, message.SessionID, string(message.Role), message.Content, message.CreatedAt)
	return err
}

func (c *DatabaseClient) GetMessagesBySession(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	const q = `
		SELECT id, session_id, role, content, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY created_at ASC
	`
	rows, err := c.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func nullableTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
