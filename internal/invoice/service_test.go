package invoice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-billing/internal/common"
)

type stubStore struct {
	created []Document
	doc     Document
	getErr  error
	rows    []ListRow
	total   int64
}

func (s *stubStore) Create(_ context.Context, doc Document) (Document, error) {
	doc.ID = "7f6a2d1e-0000-4000-8000-000000000001"
	doc.CreatedAt = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	s.created = append(s.created, doc)
	return doc, nil
}

func (s *stubStore) Get(_ context.Context, id string) (Document, error) {
	if s.getErr != nil {
		return Document{}, s.getErr
	}
	return s.doc, nil
}

func (s *stubStore) List(_ context.Context, page, perPage int) ([]ListRow, int64, error) {
	return s.rows, s.total, nil
}

func newTestService(t *testing.T, store documentStore) *Service {
	t.Helper()
	svc, err := NewService(ServiceConfig{
		Store:             store,
		Cache:             NewCache(nil, 0),
		BusinessStateCode: "KA",
	})
	require.NoError(t, err)
	return svc
}

func TestNewServiceRequiresBusinessState(t *testing.T) {
	_, err := NewService(ServiceConfig{BusinessStateCode: "  "})
	require.Error(t, err)
}

func TestPreviewSingleItem(t *testing.T) {
	svc := newTestService(t, &stubStore{})
	view, err := svc.Preview(context.Background(), ComputeRequest{
		CustomerStateCode: "KA",
		Items:             []LineItemInput{{Description: "Consulting", Qty: 1, UnitRate: 100, TaxRate: 18}},
	})
	require.NoError(t, err)
	assert.Equal(t, "100.00", view.SubTotal)
	assert.Equal(t, "9.00", view.CGSTAmount)
	assert.Equal(t, "9.00", view.SGSTAmount)
	assert.Equal(t, "0.00", view.IGSTAmount)
	assert.Equal(t, "118.00", view.Total)
}

func TestPreviewRejectsNegativeAmounts(t *testing.T) {
	svc := newTestService(t, &stubStore{})
	_, err := svc.Preview(context.Background(), ComputeRequest{
		CustomerStateCode: "KA",
		Items:             []LineItemInput{{Qty: -1, UnitRate: 100, TaxRate: 18}},
	})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_AMOUNT", appErr.Code)
}

func TestPreviewRejectsUnknownTaxRate(t *testing.T) {
	svc := newTestService(t, &stubStore{})
	_, err := svc.Preview(context.Background(), ComputeRequest{
		CustomerStateCode: "KA",
		Items:             []LineItemInput{{Qty: 1, UnitRate: 100, TaxRate: 7}},
	})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestPreviewRejectsPercentDiscountAboveHundred(t *testing.T) {
	svc := newTestService(t, &stubStore{})
	_, err := svc.Preview(context.Background(), ComputeRequest{
		CustomerStateCode: "KA",
		Items:             []LineItemInput{{Qty: 1, UnitRate: 100, TaxRate: 18}},
		DiscountValue:     120,
		DiscountMode:      "percentage",
	})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_AMOUNT", appErr.Code)
}

func TestPreviewUsesCache(t *testing.T) {
	_, client := testRedis(t)
	svc, err := NewService(ServiceConfig{
		Store:             &stubStore{},
		Cache:             NewCache(client, time.Minute),
		BusinessStateCode: "KA",
	})
	require.NoError(t, err)

	req := ComputeRequest{
		CustomerStateCode: "MH",
		Items:             []LineItemInput{{Qty: 2, UnitRate: 50, TaxRate: 5}},
	}
	first, err := svc.Preview(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Preview(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	cached, ok, err := svc.cache.GetDetail(context.Background(), svc.cache.Key(req, svc.relationship(req)))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first, cached)
}

func TestFinalizePersistsSnapshot(t *testing.T) {
	store := &stubStore{}
	svc := newTestService(t, store)

	doc, err := svc.Finalize(context.Background(), ComputeRequest{
		CustomerName:      "Acme Traders",
		CustomerStateCode: "MH",
		Items:             []LineItemInput{{Description: "Transport", Qty: 1, UnitRate: 100, TaxRate: 18}},
	})
	require.NoError(t, err)
	require.Len(t, store.created, 1)

	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "Acme Traders", doc.CustomerName)
	assert.Equal(t, "MH", doc.CustomerStateCode)
	assert.Equal(t, "KA", doc.BusinessStateCode)
	assert.Equal(t, "inter", doc.Relationship)
	assert.Equal(t, "18.00", doc.Totals.IGSTAmount)
	assert.Equal(t, "0.00", doc.Totals.CGSTAmount)
	assert.Equal(t, "118.00", doc.Totals.Total)
}

func TestFinalizeUsesRequestBusinessStateOverride(t *testing.T) {
	store := &stubStore{}
	svc := newTestService(t, store)

	doc, err := svc.Finalize(context.Background(), ComputeRequest{
		CustomerStateCode: "MH",
		BusinessStateCode: "MH",
		Items:             []LineItemInput{{Qty: 1, UnitRate: 100, TaxRate: 18}},
	})
	require.NoError(t, err)
	assert.Equal(t, "MH", doc.BusinessStateCode)
	assert.Equal(t, "intra", doc.Relationship)
	assert.Equal(t, "9.00", doc.Totals.CGSTAmount)
}

func TestGetPropagatesStoreError(t *testing.T) {
	wantErr := errors.New("boom")
	svc := newTestService(t, &stubStore{getErr: wantErr})
	_, err := svc.Get(context.Background(), "any")
	require.ErrorIs(t, err, wantErr)
}
