package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Prompt represents a row in the prompts table.
type Prompt struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ListOptions filters and pages List.
type ListOptions struct {
	// Search matches a case-insensitive substring of the name.
	Search string
	// After skips prompts up to and including this name (keyset cursor).
	After string
	// Limit caps the result size; zero means no limit.
	Limit int
}

// PromptStore is the sqlx-backed implementation of PromptStoreIface.
type PromptStore struct {
	db *sqlx.DB
}

func NewPromptStore(db *sqlx.DB) *PromptStore {
	return &PromptStore{db: db}
}

// q rebinds a query written with ? placeholders for the active driver.
func (s *PromptStore) q(query string) string { return s.db.Rebind(query) }

// List returns prompts ordered by name.
func (s *PromptStore) List(ctx context.Context, opts ListOptions) ([]*Prompt, error) {
	var (
		where []string
		args  []any
	)
	if search := strings.TrimSpace(opts.Search); search != "" {
		where = append(where, "LOWER(name) LIKE ?")
		args = append(args, "%"+strings.ToLower(search)+"%")
	}
	if opts.After != "" {
		where = append(where, "name > ?")
		args = append(args, opts.After)
	}

	query := `SELECT * FROM prompts`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name ASC"
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	var prompts []*Prompt
	if err := s.db.SelectContext(ctx, &prompts, s.q(query), args...); err != nil {
		return nil, err
	}
	return prompts, nil
}

// Count returns the number of prompts in the library.
func (s *PromptStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM prompts`); err != nil {
		return 0, err
	}
	return n, nil
}

// GetByID returns the prompt with id, or ErrNotFound.
func (s *PromptStore) GetByID(ctx context.Context, id string) (*Prompt, error) {
	return s.getOne(ctx, `SELECT * FROM prompts WHERE id = ?`, id)
}

// GetByName returns the prompt named name, or ErrNotFound.
func (s *PromptStore) GetByName(ctx context.Context, name string) (*Prompt, error) {
	return s.getOne(ctx, `SELECT * FROM prompts WHERE name = ?`, strings.TrimSpace(name))
}

func (s *PromptStore) getOne(ctx context.Context, query string, arg any) (*Prompt, error) {
	var p Prompt
	err := s.db.GetContext(ctx, &p, s.q(query), arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// TemplateBody returns the content of the prompt named name. It lets library
// prompts be included from other templates.
func (s *PromptStore) TemplateBody(ctx context.Context, name string) (string, error) {
	p, err := s.GetByName(ctx, name)
	if err != nil {
		return "", err
	}
	return p.Content, nil
}

// Create saves a new prompt. A blank name becomes "Prompt N", where N is one
// more than the current library size, advancing until the name is free.
func (s *PromptStore) Create(ctx context.Context, name, content string) (*Prompt, error) {
	if strings.TrimSpace(name) == "" {
		generated, err := s.nextDefaultName(ctx)
		if err != nil {
			return nil, err
		}
		name = generated
	}
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &Prompt{
		ID:        uuid.New().String(),
		Name:      name,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO prompts (id, name, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
	`), p.ID, p.Name, p.Content, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("%w: %q", ErrNameTaken, name)
		}
		return nil, err
	}
	return p, nil
}

func (s *PromptStore) nextDefaultName(ctx context.Context) (string, error) {
	n, err := s.Count(ctx)
	if err != nil {
		return "", err
	}
	for i := n + 1; ; i++ {
		name := fmt.Sprintf("Prompt %d", i)
		if _, err := s.GetByName(ctx, name); errors.Is(err, ErrNotFound) {
			return name, nil
		} else if err != nil {
			return "", err
		}
	}
}

// Rename changes a prompt's name. A blank name leaves the prompt unchanged.
func (s *PromptStore) Rename(ctx context.Context, id, name string) (*Prompt, error) {
	if strings.TrimSpace(name) == "" {
		return s.GetByID(ctx, id)
	}
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, s.q(`UPDATE prompts SET name = ?, updated_at = ? WHERE id = ?`),
		name, time.Now().UTC(), id)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("%w: %q", ErrNameTaken, name)
		}
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// UpdateContent replaces a prompt's template text.
func (s *PromptStore) UpdateContent(ctx context.Context, id, content string) (*Prompt, error) {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE prompts SET content = ?, updated_at = ? WHERE id = ?`),
		content, time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes a prompt, or returns ErrNotFound.
func (s *PromptStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM prompts WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Upsert creates the prompt named name, or replaces its content when it
// already exists.
func (s *PromptStore) Upsert(ctx context.Context, name, content string) (*Prompt, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	existing, err := s.GetByName(ctx, name)
	switch {
	case err == nil:
		return s.UpdateContent(ctx, existing.ID, content)
	case errors.Is(err, ErrNotFound):
		p, err := s.Create(ctx, name, content)
		if errors.Is(err, ErrNameTaken) {
			// Lost a race with another writer; update theirs.
			return s.Upsert(ctx, name, content)
		}
		return p, err
	default:
		return nil, err
	}
}

// requireRow maps a statement that touched no row to ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
