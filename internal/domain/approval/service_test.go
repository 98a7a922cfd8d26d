package approval

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gaiafact/internal/core/apperror"
	"gaiafact/internal/core/id"
	"gaiafact/internal/domain/audit"
	"gaiafact/internal/domain/product"
)

// --- In-memory collaborators ---

type memProducts struct {
	mu    sync.Mutex
	items map[id.ID]*product.Product
}

func newMemProducts(items ...*product.Product) *memProducts {
	m := &memProducts{items: make(map[id.ID]*product.Product)}
	for _, p := range items {
		m.items[p.ID] = p
	}
	return m
}

func (m *memProducts) Get(ctx context.Context, productID id.ID) (*product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[productID]
	if !ok || p.DeletionMark {
		return nil, apperror.NewNotFound("product", productID)
	}
	clone := *p
	return &clone, nil
}

func (m *memProducts) List(ctx context.Context, filter product.ListFilter) (product.ListResult, error) {
	return product.ListResult{}, nil
}

func (m *memProducts) Create(ctx context.Context, p *product.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[p.ID] = p
	return nil
}

func (m *memProducts) FindByCode(ctx context.Context, code string) (*product.Product, error) {
	return nil, apperror.NewNotFound("product", code)
}

func (m *memProducts) ApplyPatch(ctx context.Context, productID id.ID, patch product.Patch) (*product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID)
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Quantity != nil {
		p.Quantity = *patch.Quantity
	}
	clone := *p
	return &clone, nil
}

func (m *memProducts) ApplySensitive(ctx context.Context, productID id.ID, price, quantity *decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[productID]
	if !ok {
		return apperror.NewNotFound("product", productID)
	}
	if price != nil {
		p.Price = *price
	}
	if quantity != nil {
		p.Quantity = *quantity
	}
	return nil
}

func (m *memProducts) DecrementStock(ctx context.Context, productID id.ID, qty decimal.Decimal) error {
	return nil
}

func (m *memProducts) MarkDeleted(ctx context.Context, productID id.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[productID]
	if !ok {
		return apperror.NewNotFound("product", productID)
	}
	p.DeletionMark = true
	return nil
}

// raw returns the stored product, bypassing the deletion-mark filter.
func (m *memProducts) raw(productID id.ID) *product.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[productID]
}

// memRequests mirrors the database's check-and-set: the whole
// read-precondition-write of Resolve happens under one lock.
type memRequests struct {
	mu    sync.Mutex
	items map[id.ID]*ChangeRequest
}

func newMemRequests() *memRequests {
	return &memRequests{items: make(map[id.ID]*ChangeRequest)}
}

func (m *memRequests) Create(ctx context.Context, r *ChangeRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *r
	m.items[r.ID] = &clone
	return nil
}

func (m *memRequests) Get(ctx context.Context, requestID id.ID) (*ChangeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[requestID]
	if !ok {
		return nil, apperror.NewNotFound("change request", requestID)
	}
	clone := *r
	return &clone, nil
}

func (m *memRequests) Resolve(ctx context.Context, requestID, resolvedBy id.ID, status Status, resolvedAt time.Time) (*ChangeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[requestID]
	if !ok {
		return nil, apperror.NewNotFound("change request", requestID)
	}
	if r.Status != StatusPending {
		return nil, apperror.NewAlreadyResolved(requestID)
	}
	r.Status = status
	r.ApprovedBy = &resolvedBy
	r.ResolvedAt = &resolvedAt
	clone := *r
	return &clone, nil
}

func (m *memRequests) List(ctx context.Context, status *Status, limit, offset int) ([]*ChangeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*ChangeRequest
	for _, r := range m.items {
		if status == nil || r.Status == *status {
			clone := *r
			out = append(out, &clone)
		}
	}
	return out, nil
}

type memAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (m *memAudit) Record(ctx context.Context, e audit.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memAudit) kinds() []audit.ActionKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]audit.ActionKind, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Kind
	}
	return out
}

type memNotifier struct {
	mu    sync.Mutex
	sends int
	last  []string
}

func (m *memNotifier) NotifyReviewers(ctx context.Context, recipients []string, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends++
	m.last = recipients
	return nil
}

type memDirectory struct {
	reviewers map[string]string // userID -> email
	requester string
}

func (d *memDirectory) ReviewerEmails(ctx context.Context) ([]string, error) {
	var out []string
	for _, email := range d.reviewers {
		out = append(out, email)
	}
	return out, nil
}

func (d *memDirectory) UserEmail(ctx context.Context, userID id.ID) (string, error) {
	return d.requester, nil
}

// --- Fixtures ---

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string { return &s }

type fixture struct {
	svc      *Service
	products *memProducts
	requests *memRequests
	audit    *memAudit
	notifier *memNotifier
	product  *product.Product
	userID   id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	p := &product.Product{
		ID:       id.New(),
		Code:     "P-OLIVE01",
		Name:     "Olive oil 1L",
		Price:    dec("100"),
		Quantity: dec("40"),
	}
	products := newMemProducts(p)
	requests := newMemRequests()
	auditSink := &memAudit{}
	notifier := &memNotifier{}
	directory := &memDirectory{
		reviewers: map[string]string{"r1": "admin@gaiafact.test"},
		requester: "clerk@gaiafact.test",
	}
	svc := NewService(products, requests, auditSink, notifier, directory)
	return &fixture{
		svc:      svc,
		products: products,
		requests: requests,
		audit:    auditSink,
		notifier: notifier,
		product:  p,
		userID:   id.New(),
	}
}

// --- Tests ---

func TestProposeUpdateNonSensitiveAppliesDirectly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.svc.ProposeUpdate(ctx, f.product.ID, f.userID, product.Patch{
		Description: strPtr("extra virgin"),
	})
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Equal(t, "extra virgin", out.Product.Description)
	assert.Nil(t, out.RequestID)

	// No change request, no workflow audit entry, no notification.
	reqs, _ := f.requests.List(ctx, nil, 50, 0)
	assert.Empty(t, reqs)
	assert.Empty(t, f.audit.kinds())
	assert.Zero(t, f.notifier.sends)
}

func TestProposeUpdateEqualSensitiveValuesAppliesDirectly(t *testing.T) {
	// "100.00" as a string-normalized decimal equals the stored 100:
	// numeric equality, not identity, so no approval is needed.
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.svc.ProposeUpdate(ctx, f.product.ID, f.userID, product.Patch{
		Price: decPtr("100.00"),
		Name:  strPtr("Olive oil 1L premium"),
	})
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Equal(t, "Olive oil 1L premium", out.Product.Name)

	reqs, _ := f.requests.List(ctx, nil, 50, 0)
	assert.Empty(t, reqs)
}

func TestProposeUpdatePriceChangeDefersToApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.svc.ProposeUpdate(ctx, f.product.ID, f.userID, product.Patch{
		Price: decPtr("150"),
	})
	require.NoError(t, err)
	assert.False(t, out.Applied)
	require.NotNil(t, out.RequestID)

	// Product untouched until approval.
	current, err := f.products.Get(ctx, f.product.ID)
	require.NoError(t, err)
	assert.True(t, current.Price.Equal(dec("100")))

	req, err := f.requests.Get(ctx, *out.RequestID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, req.Status)
	assert.True(t, req.PriceOld.Equal(dec("100")))
	assert.True(t, req.PriceNew.Equal(dec("150")))
	assert.Nil(t, req.QuantityOld)

	assert.Equal(t, []audit.ActionKind{audit.ActionChangeRequested}, f.audit.kinds())
	assert.Equal(t, 1, f.notifier.sends)
	assert.Contains(t, f.notifier.last, "admin@gaiafact.test")
	assert.Contains(t, f.notifier.last, "clerk@gaiafact.test")
}

func TestProposeUpdateOmittedFieldIsUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.svc.ProposeUpdate(ctx, f.product.ID, f.userID, product.Patch{
		Quantity: decPtr("55"),
	})
	require.NoError(t, err)
	require.NotNil(t, out.RequestID)

	req, err := f.requests.Get(ctx, *out.RequestID)
	require.NoError(t, err)
	assert.Nil(t, req.PriceOld, "omitted price must not show up as a change")
	assert.True(t, req.QuantityOld.Equal(dec("40")))
	assert.True(t, req.QuantityNew.Equal(dec("55")))
}

func TestProposeUpdateProductNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ProposeUpdate(context.Background(), id.New(), f.userID, product.Patch{
		Price: decPtr("10"),
	})
	assert.True(t, apperror.IsNotFound(err))
}

func TestApproveAppliesChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.svc.ProposeUpdate(ctx, f.product.ID, f.userID, product.Patch{
		Price: decPtr("150"),
	})
	require.NoError(t, err)

	reviewer := id.New()
	resolved, err := f.svc.ResolveRequest(ctx, *out.RequestID, reviewer, DecisionApprove)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, resolved.Status)
	require.NotNil(t, resolved.ApprovedBy)
	assert.Equal(t, reviewer, *resolved.ApprovedBy)
	assert.NotNil(t, resolved.ResolvedAt)

	current, err := f.products.Get(ctx, f.product.ID)
	require.NoError(t, err)
	assert.True(t, current.Price.Equal(dec("150")))
	assert.True(t, current.Quantity.Equal(dec("40")), "quantity not in the request stays put")

	assert.Equal(t, []audit.ActionKind{audit.ActionChangeRequested, audit.ActionApproved}, f.audit.kinds())
}

func TestRejectLeavesProductAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.svc.ProposeUpdate(ctx, f.product.ID, f.userID, product.Patch{
		Price: decPtr("150"),
	})
	require.NoError(t, err)

	resolved, err := f.svc.ResolveRequest(ctx, *out.RequestID, id.New(), DecisionReject)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, resolved.Status)

	current, err := f.products.Get(ctx, f.product.ID)
	require.NoError(t, err)
	assert.True(t, current.Price.Equal(dec("100")))

	assert.Equal(t, []audit.ActionKind{audit.ActionChangeRequested, audit.ActionRejected}, f.audit.kinds())
}

func TestResolveIsIdempotentFailure(t *testing.T) {
	// First resolve wins; every later attempt, regardless of decision,
	// fails with already-resolved and changes nothing.
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.svc.ProposeUpdate(ctx, f.product.ID, f.userID, product.Patch{
		Price: decPtr("150"),
	})
	require.NoError(t, err)

	firstReviewer := id.New()
	_, err = f.svc.ResolveRequest(ctx, *out.RequestID, firstReviewer, DecisionApprove)
	require.NoError(t, err)

	for _, d := range []Decision{DecisionApprove, DecisionReject} {
		_, err := f.svc.ResolveRequest(ctx, *out.RequestID, id.New(), d)
		assert.True(t, apperror.IsAlreadyResolved(err), "decision %s: got %v", d, err)
	}

	req, err := f.requests.Get(ctx, *out.RequestID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, req.Status)
	assert.Equal(t, firstReviewer, *req.ApprovedBy)

	current, err := f.products.Get(ctx, f.product.ID)
	require.NoError(t, err)
	assert.True(t, current.Price.Equal(dec("150")))
}

func TestConcurrentResolversExactlyOneWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.svc.ProposeUpdate(ctx, f.product.ID, f.userID, product.Patch{
		Price: decPtr("150"),
	})
	require.NoError(t, err)

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		decision := DecisionApprove
		if i%2 == 1 {
			decision = DecisionReject
		}
		wg.Add(1)
		go func(d Decision) {
			defer wg.Done()
			_, err := f.svc.ResolveRequest(ctx, *out.RequestID, id.New(), d)
			errs <- err
		}(decision)
	}
	wg.Wait()
	close(errs)

	wins, losses := 0, 0
	for err := range errs {
		if err == nil {
			wins++
		} else if apperror.IsAlreadyResolved(err) {
			losses++
		} else {
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, attempts-1, losses)
}

func TestResolveUnknownRequest(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ResolveRequest(context.Background(), id.New(), id.New(), DecisionApprove)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeletionFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.svc.RequestDeletion(ctx, f.product.ID, f.userID)
	require.NoError(t, err)
	require.NotNil(t, out.RequestID)

	// Still live until approved.
	_, err = f.products.Get(ctx, f.product.ID)
	require.NoError(t, err)

	_, err = f.svc.ResolveRequest(ctx, *out.RequestID, id.New(), DecisionApprove)
	require.NoError(t, err)

	assert.True(t, f.products.raw(f.product.ID).DeletionMark)
	assert.Equal(t, []audit.ActionKind{audit.ActionDeletionRequested, audit.ActionDeletionApproved}, f.audit.kinds())
}

func TestParseDecision(t *testing.T) {
	for _, ok := range []string{"approve", "reject"} {
		if _, err := ParseDecision(ok); err != nil {
			t.Errorf("ParseDecision(%q) failed: %v", ok, err)
		}
	}
	if _, err := ParseDecision("maybe"); err == nil {
		t.Error("expected error for invalid decision")
	}
}
