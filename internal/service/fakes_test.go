package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"invoicer/internal/apperror"
	"invoicer/internal/events"
	"invoicer/internal/model"
	"invoicer/internal/repository"

	"github.com/google/uuid"
)

type fakeInvoiceRepo struct {
	mu       sync.Mutex
	invoices []model.Invoice
	listErr  error
}

func (r *fakeInvoiceRepo) Create(_ context.Context, inv *model.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.invoices {
		if existing.UserID == inv.UserID && existing.InvoiceNo == inv.InvoiceNo {
			return fmt.Errorf("%w: invoice_no", apperror.ErrDuplicateKey)
		}
	}
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	now := time.Now()
	inv.CreatedAt, inv.UpdatedAt = now, now
	r.invoices = append(r.invoices, *inv)
	return nil
}

func (r *fakeInvoiceRepo) FindByIDForUser(_ context.Context, userID string, id uuid.UUID) (*model.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.ID == id && inv.UserID == userID {
			found := inv
			return &found, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (r *fakeInvoiceRepo) ListByUser(_ context.Context, userID string, filter repository.InvoiceListFilter) ([]model.Invoice, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Invoice
	for _, inv := range r.invoices {
		if inv.UserID == userID && (filter.Status == "" || inv.Status == filter.Status) {
			out = append(out, inv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (r *fakeInvoiceRepo) ListForAnalytics(_ context.Context, userID string) ([]model.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []model.Invoice
	for _, inv := range r.invoices {
		if inv.UserID == userID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) Update(_ context.Context, inv *model.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.invoices {
		if r.invoices[i].ID == inv.ID {
			inv.UpdatedAt = time.Now()
			r.invoices[i] = *inv
			return nil
		}
	}
	return apperror.ErrNotFound
}

type fakeCounterRepo struct {
	mu   sync.Mutex
	seqs map[string]int64
	err  error
}

func (r *fakeCounterRepo) Increment(_ context.Context, userID, key string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	if r.seqs == nil {
		r.seqs = map[string]int64{}
	}
	r.seqs[userID+"/"+key]++
	return r.seqs[userID+"/"+key], nil
}

type fakeAuditRepo struct {
	mu   sync.Mutex
	logs []model.AuditLog
	err  error
}

func (r *fakeAuditRepo) Create(_ context.Context, log *model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.logs = append(r.logs, *log)
	return nil
}

func (r *fakeAuditRepo) ListByUser(_ context.Context, userID string, filter repository.AuditListFilter) ([]model.AuditLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.AuditLog
	for _, l := range r.logs {
		if l.UserID != userID {
			continue
		}
		if filter.EntityID != "" && l.EntityID != filter.EntityID {
			continue
		}
		if filter.Action != "" && l.Action != filter.Action {
			continue
		}
		out = append(out, l)
	}
	return out, int64(len(out)), nil
}

// fakeTxManager runs fn directly; repositories are not transactional.
type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}
