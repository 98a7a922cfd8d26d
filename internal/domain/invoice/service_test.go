package invoice

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gaiafact/internal/core/apperror"
	"gaiafact/internal/core/id"
	"gaiafact/internal/domain/numbering"
	"gaiafact/internal/domain/product"
)

type fakeCatalog struct {
	mu    sync.Mutex
	items map[id.ID]*product.Product
}

func (f *fakeCatalog) Get(ctx context.Context, productID id.ID) (*product.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID)
	}
	clone := *p
	return &clone, nil
}

func (f *fakeCatalog) DecrementStock(ctx context.Context, productID id.ID, qty decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[productID]
	if !ok {
		return apperror.NewNotFound("product", productID)
	}
	if p.Quantity.LessThan(qty) {
		return apperror.NewInsufficientStock(productID.String(), qty.String(), p.Quantity.String())
	}
	p.Quantity = p.Quantity.Sub(qty)
	return nil
}

type fakeInvoices struct {
	mu      sync.Mutex
	created []*Invoice
}

func (f *fakeInvoices) Create(ctx context.Context, inv *Invoice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *inv
	f.created = append(f.created, &clone)
	return nil
}

func (f *fakeInvoices) Get(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.created {
		if inv.ID == invoiceID {
			clone := *inv
			return &clone, nil
		}
	}
	return nil, apperror.NewNotFound("invoice", invoiceID)
}

func (f *fakeInvoices) List(ctx context.Context, filter ListFilter) ([]*Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Invoice(nil), f.created...), nil
}

// fakeCounterStore is a single-prefix counter with the same relative-delta
// semantics as the database row.
type fakeCounterStore struct {
	mu    sync.Mutex
	state map[string]*numbering.CounterState
}

func (f *fakeCounterStore) IncrementAndGet(ctx context.Context, prefix string) (numbering.CounterState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.state[prefix]
	if !ok {
		return numbering.CounterState{}, apperror.NewNotFound("numbering counter", prefix)
	}
	s.CurrentNumber++
	return *s, nil
}

func (f *fakeCounterStore) Decrement(ctx context.Context, prefix string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.state[prefix]
	if !ok {
		return apperror.NewNotFound("numbering counter", prefix)
	}
	s.CurrentNumber--
	return nil
}

func (f *fakeCounterStore) Replace(ctx context.Context, prefix string, start, end int64, authRef string) (numbering.CounterState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &numbering.CounterState{Prefix: prefix, CurrentNumber: start, RangeEnd: end, AuthorizationRef: authRef}
	f.state[prefix] = s
	return *s, nil
}

func (f *fakeCounterStore) Get(ctx context.Context, prefix string) (numbering.CounterState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.state[prefix]
	if !ok {
		return numbering.CounterState{}, apperror.NewNotFound("numbering counter", prefix)
	}
	return *s, nil
}

type passTx struct{}

func (passTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type invFixture struct {
	svc     *Service
	catalog *fakeCatalog
	repo    *fakeInvoices
	oil     *product.Product
	flour   *product.Product
}

func newInvFixture(currentNumber, rangeEnd int64) *invFixture {
	oil := &product.Product{ID: id.New(), Code: "P-OIL", Name: "Olive oil 1L", Price: dec("100"), Quantity: dec("40")}
	flour := &product.Product{ID: id.New(), Code: "P-FLOUR", Name: "Flour 1kg", Price: dec("7.50"), Quantity: dec("200")}
	catalog := &fakeCatalog{items: map[id.ID]*product.Product{oil.ID: oil, flour.ID: flour}}
	repo := &fakeInvoices{}
	counters := &fakeCounterStore{state: map[string]*numbering.CounterState{
		DefaultPrefix: {Prefix: DefaultPrefix, CurrentNumber: currentNumber, RangeEnd: rangeEnd},
	}}
	svc := NewService(repo, catalog, numbering.NewService(counters), passTx{})
	return &invFixture{svc: svc, catalog: catalog, repo: repo, oil: oil, flour: flour}
}

func TestCreateComputesTotalsAndNumber(t *testing.T) {
	f := newInvFixture(57118, 57500)
	issuer := id.New()

	inv, err := f.svc.Create(context.Background(), Draft{
		CustomerName:  "Panaderia El Sol",
		CustomerTaxID: "900123456-7",
		Lines: []DraftLine{
			{ProductID: f.oil.ID, Quantity: dec("2")},
			{ProductID: f.flour.ID, Quantity: dec("10")},
		},
	}, issuer)
	require.NoError(t, err)

	assert.Equal(t, "F57119", inv.Number)
	assert.Equal(t, issuer, inv.IssuedBy)

	// 2*100 + 10*7.50 = 275; 19% VAT = 52.25; total 327.25.
	assert.True(t, inv.Subtotal.Equal(dec("275")), "subtotal %s", inv.Subtotal)
	assert.True(t, inv.Tax.Equal(dec("52.25")), "tax %s", inv.Tax)
	assert.True(t, inv.Total.Equal(dec("327.25")), "total %s", inv.Total)

	require.Len(t, inv.Lines, 2)
	assert.Equal(t, 1, inv.Lines[0].LineNo)
	assert.Equal(t, "Olive oil 1L", inv.Lines[0].Description)
	assert.True(t, inv.Lines[0].Amount.Equal(dec("200")))

	// Stock decremented.
	oil, _ := f.catalog.Get(context.Background(), f.oil.ID)
	assert.True(t, oil.Quantity.Equal(dec("38")))

	// Persisted.
	stored, err := f.repo.Get(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "F57119", stored.Number)
}

func TestCreateSequentialNumbers(t *testing.T) {
	f := newInvFixture(100, 500)
	draft := Draft{
		CustomerName: "Cliente",
		Lines:        []DraftLine{{ProductID: f.flour.ID, Quantity: dec("1")}},
	}

	first, err := f.svc.Create(context.Background(), draft, id.New())
	require.NoError(t, err)
	second, err := f.svc.Create(context.Background(), draft, id.New())
	require.NoError(t, err)

	assert.Equal(t, "F00101", first.Number)
	assert.Equal(t, "F00102", second.Number)
}

func TestCreateRangeExhaustedPropagates(t *testing.T) {
	f := newInvFixture(500, 500)

	_, err := f.svc.Create(context.Background(), Draft{
		CustomerName: "Cliente",
		Lines:        []DraftLine{{ProductID: f.oil.ID, Quantity: dec("1")}},
	}, id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsRangeExceeded(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "F00500", appErr.Details["last_valid_number"])

	// No invoice written, no stock touched.
	assert.Empty(t, f.repo.created)
	oil, _ := f.catalog.Get(context.Background(), f.oil.ID)
	assert.True(t, oil.Quantity.Equal(dec("40")))
}

func TestCreateInsufficientStock(t *testing.T) {
	f := newInvFixture(100, 500)

	_, err := f.svc.Create(context.Background(), Draft{
		CustomerName: "Cliente",
		Lines:        []DraftLine{{ProductID: f.oil.ID, Quantity: dec("41")}},
	}, id.New())
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Empty(t, f.repo.created)
}

func TestCreateValidation(t *testing.T) {
	f := newInvFixture(100, 500)
	ctx := context.Background()

	cases := []struct {
		name  string
		draft Draft
	}{
		{"no customer", Draft{Lines: []DraftLine{{ProductID: f.oil.ID, Quantity: dec("1")}}}},
		{"no lines", Draft{CustomerName: "Cliente"}},
		{"zero quantity", Draft{CustomerName: "Cliente", Lines: []DraftLine{{ProductID: f.oil.ID, Quantity: dec("0")}}}},
		{"negative quantity", Draft{CustomerName: "Cliente", Lines: []DraftLine{{ProductID: f.oil.ID, Quantity: dec("-1")}}}},
		{"nil product", Draft{CustomerName: "Cliente", Lines: []DraftLine{{Quantity: dec("1")}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tc.draft, id.New())
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
		})
	}

	// Validation failures must not consume numbers.
	inv, err := f.svc.Create(ctx, Draft{
		CustomerName: "Cliente",
		Lines:        []DraftLine{{ProductID: f.oil.ID, Quantity: dec("1")}},
	}, id.New())
	require.NoError(t, err)
	assert.Equal(t, "F00101", inv.Number)
}

func TestCreateUnknownProduct(t *testing.T) {
	f := newInvFixture(100, 500)

	_, err := f.svc.Create(context.Background(), Draft{
		CustomerName: "Cliente",
		Lines:        []DraftLine{{ProductID: id.New(), Quantity: dec("1")}},
	}, id.New())
	assert.True(t, apperror.IsNotFound(err))
}
