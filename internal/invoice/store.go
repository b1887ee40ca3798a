package invoice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-billing/internal/common"
)

// Document is a finalized invoice as persisted: the inputs plus a snapshot of
// the computed totals. Consumers (list views, PDF export) render the snapshot
// without recomputation.
//
// Backing table:
//
//	CREATE TABLE invoices (
//	    id            UUID PRIMARY KEY,
//	    customer_name TEXT NOT NULL DEFAULT '',
//	    customer_state TEXT NOT NULL,
//	    business_state TEXT NOT NULL,
//	    relationship  TEXT NOT NULL,
//	    payload       JSONB NOT NULL,
//	    totals        JSONB NOT NULL,
//	    grand_total   NUMERIC(14,2) NOT NULL,
//	    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type Document struct {
	ID                string         `json:"id"`
	CustomerName      string         `json:"customer_name"`
	CustomerStateCode string         `json:"customer_state_code"`
	BusinessStateCode string         `json:"business_state_code"`
	Relationship      string         `json:"relationship"`
	Payload           ComputeRequest `json:"payload"`
	Totals            DetailView     `json:"totals"`
	CreatedAt         time.Time      `json:"created_at"`
}

// ListRow is the reduced shape list endpoints return: identity plus the grand
// total, nothing else.
type ListRow struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customer_name"`
	Total        string    `json:"total"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store persists finalized invoice documents in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Create inserts the document and returns it with id and timestamp assigned.
func (s *Store) Create(ctx context.Context, doc Document) (Document, error) {
	if s == nil || s.pool == nil {
		return Document{}, errors.New("invoice store not configured")
	}
	payload, err := json.Marshal(doc.Payload)
	if err != nil {
		return Document{}, fmt.Errorf("marshal payload: %w", err)
	}
	totals, err := json.Marshal(doc.Totals)
	if err != nil {
		return Document{}, fmt.Errorf("marshal totals: %w", err)
	}
	doc.ID = uuid.NewString()
	row := s.pool.QueryRow(ctx, `
		INSERT INTO invoices (id, customer_name, customer_state, business_state, relationship, payload, totals, grand_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric)
		RETURNING created_at
	`, doc.ID, doc.CustomerName, doc.CustomerStateCode, doc.BusinessStateCode, doc.Relationship, payload, totals, doc.Totals.Total)
	if err := row.Scan(&doc.CreatedAt); err != nil {
		return Document{}, fmt.Errorf("insert invoice: %w", err)
	}
	return doc, nil
}

// Get loads one document by id.
func (s *Store) Get(ctx context.Context, id string) (Document, error) {
	if s == nil || s.pool == nil {
		return Document{}, errors.New("invoice store not configured")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Document{}, notFound(err)
	}
	var (
		doc     Document
		payload []byte
		totals  []byte
	)
	row := s.pool.QueryRow(ctx, `
		SELECT id, customer_name, customer_state, business_state, relationship, payload, totals, created_at
		FROM invoices
		WHERE id = $1
	`, id)
	err := row.Scan(&doc.ID, &doc.CustomerName, &doc.CustomerStateCode, &doc.BusinessStateCode, &doc.Relationship, &payload, &totals, &doc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, notFound(err)
		}
		return Document{}, fmt.Errorf("get invoice: %w", err)
	}
	if err := json.Unmarshal(payload, &doc.Payload); err != nil {
		return Document{}, fmt.Errorf("decode payload: %w", err)
	}
	if err := json.Unmarshal(totals, &doc.Totals); err != nil {
		return Document{}, fmt.Errorf("decode totals: %w", err)
	}
	return doc, nil
}

// List returns newest-first rows with pagination metadata.
func (s *Store) List(ctx context.Context, page, perPage int) ([]ListRow, int64, error) {
	if s == nil || s.pool == nil {
		return nil, 0, errors.New("invoice store not configured")
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM invoices`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, customer_name, grand_total::text, created_at
		FROM invoices
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	result := make([]ListRow, 0, perPage)
	for rows.Next() {
		var r ListRow
		if err := rows.Scan(&r.ID, &r.CustomerName, &r.Total, &r.CreatedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func notFound(err error) *common.AppError {
	return &common.AppError{Code: "NOT_FOUND", Message: "invoice not found", HTTPStatus: http.StatusNotFound, Err: err}
}
