package invoice

import (
	"context"
	"errors"
	"strings"

	"github.com/noah-isme/backend-billing/internal/obs"
	"github.com/noah-isme/backend-billing/internal/tax"
)

type documentStore interface {
	Create(ctx context.Context, doc Document) (Document, error)
	Get(ctx context.Context, id string) (Document, error)
	List(ctx context.Context, page, perPage int) ([]ListRow, int64, error)
}

// Service orchestrates validation, totals computation, caching, and
// persistence of finalized invoices.
type Service struct {
	store         documentStore
	cache         *Cache
	businessState string
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store             documentStore
	Cache             *Cache
	BusinessStateCode string
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	state := strings.TrimSpace(cfg.BusinessStateCode)
	if state == "" {
		return nil, errors.New("invoice: business state code is required")
	}
	return &Service{
		store:         cfg.Store,
		cache:         cfg.Cache,
		businessState: state,
	}, nil
}

// Preview validates the request and returns the computed totals without
// persisting anything. Results are memoised by content hash because the UI
// calls this on every field edit.
func (s *Service) Preview(ctx context.Context, req ComputeRequest) (DetailView, error) {
	if err := req.Validate(); err != nil {
		countCompute("preview", "invalid")
		return DetailView{}, err
	}
	rel := s.relationship(req)
	key := s.cache.Key(req, rel)
	if view, ok, err := s.cache.GetDetail(ctx, key); err == nil && ok {
		countCacheLookup("hit")
		return view, nil
	}
	countCacheLookup("miss")

	inv, err := req.ToInvoice(rel)
	if err != nil {
		countCompute("preview", "invalid")
		return DetailView{}, err
	}
	view := DetailOf(Compute(inv))
	_ = s.cache.SetDetail(ctx, key, view)
	countCompute("preview", "ok")
	return view, nil
}

// Finalize validates, computes, and persists an invoice document with its
// totals snapshot.
func (s *Service) Finalize(ctx context.Context, req ComputeRequest) (Document, error) {
	if err := req.Validate(); err != nil {
		countCompute("finalize", "invalid")
		return Document{}, err
	}
	rel := s.relationship(req)
	inv, err := req.ToInvoice(rel)
	if err != nil {
		countCompute("finalize", "invalid")
		return Document{}, err
	}
	doc := Document{
		CustomerName:      strings.TrimSpace(req.CustomerName),
		CustomerStateCode: strings.TrimSpace(req.CustomerStateCode),
		BusinessStateCode: s.effectiveBusinessState(req),
		Relationship:      string(rel),
		Payload:           req,
		Totals:            DetailOf(Compute(inv)),
	}
	created, err := s.store.Create(ctx, doc)
	if err != nil {
		countCompute("finalize", "error")
		return Document{}, err
	}
	countCompute("finalize", "ok")
	if obs.InvoicesFinalizedTotal != nil {
		obs.InvoicesFinalizedTotal.Inc()
	}
	return created, nil
}

// Get returns one stored document.
func (s *Service) Get(ctx context.Context, id string) (Document, error) {
	return s.store.Get(ctx, id)
}

// List returns stored list rows with pagination metadata.
func (s *Service) List(ctx context.Context, page, perPage int) ([]ListRow, int64, error) {
	return s.store.List(ctx, page, perPage)
}

func (s *Service) relationship(req ComputeRequest) tax.Relationship {
	return tax.Resolve(req.CustomerStateCode, s.effectiveBusinessState(req))
}

func (s *Service) effectiveBusinessState(req ComputeRequest) string {
	if state := strings.TrimSpace(req.BusinessStateCode); state != "" {
		return state
	}
	return s.businessState
}

func countCompute(source, result string) {
	if obs.InvoiceComputeTotal != nil {
		obs.InvoiceComputeTotal.WithLabelValues(source, result).Inc()
	}
}

func countCacheLookup(result string) {
	if obs.TotalsCacheTotal != nil {
		obs.TotalsCacheTotal.WithLabelValues(result).Inc()
	}
}
