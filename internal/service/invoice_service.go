package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"invoicer/internal/apperror"
	"invoicer/internal/auth"
	"invoicer/internal/events"
	"invoicer/internal/logger"
	"invoicer/internal/model"
	"invoicer/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// --- DTOs ---

type PartyRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address" binding:"required"`
	City    string `json:"city" binding:"required"`
	Country string `json:"country" binding:"required"`
	Logo    string `json:"logo"`
}

type LineItemRequest struct {
	ID   string          `json:"id"`
	Name string          `json:"name" binding:"required"`
	Qty  decimal.Decimal `json:"qty"`
	Rate decimal.Decimal `json:"rate"`
}

// CreateInvoiceRequest is the client payload for a new invoice. The number,
// owner and status are always assigned by the server.
type CreateInvoiceRequest struct {
	IssueDate  string            `json:"issue_date" binding:"required"`
	DueDate    string            `json:"due_date"`
	From       PartyRequest      `json:"from" binding:"required"`
	To         PartyRequest      `json:"to" binding:"required"`
	Items      []LineItemRequest `json:"items" binding:"required,min=1,dive"`
	TaxType    string            `json:"tax_type"`
	Tax        decimal.Decimal   `json:"tax"`
	Discount   decimal.Decimal   `json:"discount"`
	Shipping   decimal.Decimal   `json:"shipping"`
	PaidAmount decimal.Decimal   `json:"paid_amount"`
	Notes      string            `json:"notes"`
	Terms      string            `json:"terms"`
	Currency   string            `json:"currency"`
	Theme      string            `json:"theme"`
	Color      string            `json:"color"`
}

// UpdateInvoiceRequest edits content fields. Nil fields are left unchanged.
type UpdateInvoiceRequest struct {
	IssueDate *string            `json:"issue_date"`
	DueDate   *string            `json:"due_date"`
	From      *PartyRequest      `json:"from"`
	To        *PartyRequest      `json:"to"`
	Items     *[]LineItemRequest `json:"items"`
	TaxType   *string            `json:"tax_type"`
	Tax       *decimal.Decimal   `json:"tax"`
	Discount  *decimal.Decimal   `json:"discount"`
	Shipping  *decimal.Decimal   `json:"shipping"`
	Notes     *string            `json:"notes"`
	Terms     *string            `json:"terms"`
	Currency  *string            `json:"currency"`
	Theme     *string            `json:"theme"`
	Color     *string            `json:"color"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type RecordPaymentRequest struct {
	PaidAmount decimal.Decimal `json:"paid_amount"`
}

type InvoiceFilter struct {
	Status string // draft, sent, paid or empty for all
	Page   int
	Limit  int
}

type InvoiceResponse struct {
	ID            string           `json:"id"`
	InvoiceNo     string           `json:"invoice_no"`
	UserID        string           `json:"user_id"`
	UserName      string           `json:"user_name"`
	UserEmail     string           `json:"user_email"`
	IssueDate     string           `json:"issue_date"`
	DueDate       string           `json:"due_date"`
	From          model.Party      `json:"from"`
	To            model.Party      `json:"to"`
	Items         []model.LineItem `json:"items"`
	TaxType       string           `json:"tax_type"`
	Tax           string           `json:"tax"`
	Discount      string           `json:"discount"`
	Shipping      string           `json:"shipping"`
	PaidAmount    string           `json:"paid_amount"`
	Subtotal      string           `json:"subtotal"`
	TaxAmount     string           `json:"tax_amount"`
	Total         string           `json:"total"`
	Outstanding   string           `json:"outstanding"`
	PaymentStatus string           `json:"payment_status"` // Paid, Due or Expired
	Notes         string           `json:"notes"`
	Terms         string           `json:"terms"`
	Currency      string           `json:"currency"`
	Theme         string           `json:"theme"`
	Color         string           `json:"color"`
	Status        string           `json:"status"`
	CreatedAt     string           `json:"created_at"`
	UpdatedAt     string           `json:"updated_at"`
}

// --- Interface ---

type InvoiceService interface {
	CreateInvoice(ctx context.Context, owner auth.Identity, req CreateInvoiceRequest) (InvoiceResponse, error)
	ListInvoices(ctx context.Context, userID string, filter InvoiceFilter) ([]InvoiceResponse, int64, error)
	GetInvoice(ctx context.Context, userID, id string) (InvoiceResponse, error)
	UpdateInvoice(ctx context.Context, userID, id string, req UpdateInvoiceRequest) (InvoiceResponse, error)
	UpdateStatus(ctx context.Context, userID, id string, req UpdateStatusRequest) (InvoiceResponse, error)
	RecordPayment(ctx context.Context, userID, id string, req RecordPaymentRequest) (InvoiceResponse, error)
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	auditRepo   repository.AuditRepository
	sequence    SequenceService
	txManager   repository.TransactionManager
	publisher   events.Publisher
	now         func() time.Time
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	auditRepo repository.AuditRepository,
	sequence SequenceService,
	txManager repository.TransactionManager,
	publisher events.Publisher,
) InvoiceService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		auditRepo:   auditRepo,
		sequence:    sequence,
		txManager:   txManager,
		publisher:   publisher,
		now:         time.Now,
	}
}

// --- Implementation ---

// CreateInvoice mints the owner's next number and inserts the invoice in one
// transaction, so a failed insert does not consume a number.
func (s *invoiceService) CreateInvoice(ctx context.Context, owner auth.Identity, req CreateInvoiceRequest) (InvoiceResponse, error) {
	if owner.UserID == "" {
		return InvoiceResponse{}, apperror.ErrUnauthorized
	}
	if err := validateCreate(req); err != nil {
		return InvoiceResponse{}, err
	}

	invoice := model.Invoice{
		UserID:     owner.UserID,
		UserName:   owner.Name,
		UserEmail:  owner.Email,
		IssueDate:  strings.TrimSpace(req.IssueDate),
		DueDate:    strings.TrimSpace(req.DueDate),
		From:       datatypes.NewJSONType(toParty(req.From)),
		To:         datatypes.NewJSONType(toParty(req.To)),
		Items:      toLineItems(req.Items),
		TaxType:    withDefault(req.TaxType, model.TaxTypePercentage),
		Tax:        req.Tax,
		Discount:   req.Discount,
		Shipping:   req.Shipping,
		PaidAmount: req.PaidAmount,
		Notes:      req.Notes,
		Terms:      req.Terms,
		Currency:   withDefault(req.Currency, model.DefaultCurrency),
		Theme:      withDefault(req.Theme, model.ThemeClassic),
		Color:      withDefault(req.Color, model.DefaultColor),
		Status:     model.InvoiceStatusDraft,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoiceNo, err := s.sequence.NextInvoiceNumber(txCtx, owner.UserID)
		if err != nil {
			return err
		}
		invoice.InvoiceNo = invoiceNo

		if err := s.invoiceRepo.Create(txCtx, &invoice); err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		return s.writeAudit(txCtx, &invoice, model.ActionCreateInvoice, map[string]interface{}{
			"issue_date": invoice.IssueDate,
			"items":      len(invoice.Items),
		})
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	s.publish(ctx, events.TypeInvoiceCreated, &invoice)
	return s.toInvoiceResponse(invoice), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, userID string, filter InvoiceFilter) ([]InvoiceResponse, int64, error) {
	if userID == "" {
		return nil, 0, apperror.ErrUnauthorized
	}
	if filter.Status != "" && !model.ValidInvoiceStatus(filter.Status) {
		return nil, 0, apperror.Validation("invalid status filter: " + filter.Status)
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	invoices, total, err := s.invoiceRepo.ListByUser(ctx, userID, repository.InvoiceListFilter{
		Status: filter.Status,
		Page:   filter.Page,
		Limit:  filter.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch invoices: %w", err)
	}

	result := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		result = append(result, s.toInvoiceResponse(inv))
	}
	return result, total, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, userID, id string) (InvoiceResponse, error) {
	invoice, err := s.find(ctx, userID, id)
	if err != nil {
		return InvoiceResponse{}, err
	}
	return s.toInvoiceResponse(*invoice), nil
}

func (s *invoiceService) UpdateInvoice(ctx context.Context, userID, id string, req UpdateInvoiceRequest) (InvoiceResponse, error) {
	invoiceID, err := s.checkAccess(userID, id)
	if err != nil {
		return InvoiceResponse{}, err
	}
	if err := validateUpdate(req); err != nil {
		return InvoiceResponse{}, err
	}

	var invoice *model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		invoice, findErr = s.invoiceRepo.FindByIDForUser(txCtx, userID, invoiceID)
		if findErr != nil {
			return fmt.Errorf("invoice not found: %w", findErr)
		}

		applyUpdate(invoice, req)

		if err := s.invoiceRepo.Update(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to update invoice: %w", err)
		}
		return s.writeAudit(txCtx, invoice, model.ActionUpdateInvoice, req)
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	s.publish(ctx, events.TypeInvoiceUpdated, invoice)
	return s.toInvoiceResponse(*invoice), nil
}

func (s *invoiceService) UpdateStatus(ctx context.Context, userID, id string, req UpdateStatusRequest) (InvoiceResponse, error) {
	if !model.ValidInvoiceStatus(req.Status) {
		return InvoiceResponse{}, apperror.Validation("status must be one of draft, sent, paid")
	}
	return s.mutate(ctx, userID, id, model.ActionUpdateStatus, events.TypeInvoiceStatusChanged, func(inv *model.Invoice) interface{} {
		previous := inv.Status
		inv.Status = req.Status
		return map[string]string{"from": previous, "to": req.Status}
	})
}

func (s *invoiceService) RecordPayment(ctx context.Context, userID, id string, req RecordPaymentRequest) (InvoiceResponse, error) {
	if req.PaidAmount.IsNegative() {
		return InvoiceResponse{}, apperror.Validation("paid_amount must not be negative")
	}
	return s.mutate(ctx, userID, id, model.ActionRecordPayment, events.TypeInvoicePaymentRecorded, func(inv *model.Invoice) interface{} {
		previous := inv.PaidAmount
		inv.PaidAmount = req.PaidAmount
		return map[string]string{"from": previous.String(), "to": req.PaidAmount.String()}
	})
}

// mutate loads the owner's invoice, applies change and persists it with an
// audit entry in one transaction, then publishes eventType.
func (s *invoiceService) mutate(ctx context.Context, userID, id, action, eventType string, change func(inv *model.Invoice) interface{}) (InvoiceResponse, error) {
	invoiceID, err := s.checkAccess(userID, id)
	if err != nil {
		return InvoiceResponse{}, err
	}

	var invoice *model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		invoice, findErr = s.invoiceRepo.FindByIDForUser(txCtx, userID, invoiceID)
		if findErr != nil {
			return fmt.Errorf("invoice not found: %w", findErr)
		}

		details := change(invoice)

		if err := s.invoiceRepo.Update(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to update invoice: %w", err)
		}
		return s.writeAudit(txCtx, invoice, action, details)
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	s.publish(ctx, eventType, invoice)
	return s.toInvoiceResponse(*invoice), nil
}

// --- Helpers ---

func (s *invoiceService) checkAccess(userID, id string) (uuid.UUID, error) {
	if userID == "" {
		return uuid.Nil, apperror.ErrUnauthorized
	}
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid invoice id")
	}
	return invoiceID, nil
}

func (s *invoiceService) find(ctx context.Context, userID, id string) (*model.Invoice, error) {
	invoiceID, err := s.checkAccess(userID, id)
	if err != nil {
		return nil, err
	}
	invoice, err := s.invoiceRepo.FindByIDForUser(ctx, userID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invoice not found: %w", err)
	}
	return invoice, nil
}

func (s *invoiceService) writeAudit(ctx context.Context, inv *model.Invoice, action string, details interface{}) error {
	err := s.auditRepo.Create(ctx, &model.AuditLog{
		UserID:     inv.UserID,
		Action:     action,
		EntityID:   inv.ID.String(),
		EntityName: inv.InvoiceNo,
		Details:    auditDetails(details),
	})
	if err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// publish is best-effort; the invoice is already committed.
func (s *invoiceService) publish(ctx context.Context, eventType string, inv *model.Invoice) {
	event := events.Event{
		Type:       eventType,
		UserID:     inv.UserID,
		InvoiceID:  inv.ID.String(),
		InvoiceNo:  inv.InvoiceNo,
		Status:     inv.Status,
		PaidAmount: inv.PaidAmount.String(),
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log := logger.WithComponent(logger.ComponentEvents)
		log.Warn().Err(err).Str("type", eventType).Str("invoice_id", event.InvoiceID).Msg("failed to publish invoice event")
	}
}

func validateCreate(req CreateInvoiceRequest) error {
	if _, ok := ParseInvoiceDate(strings.TrimSpace(req.IssueDate)); !ok {
		return apperror.Validation("issue_date must be a date such as 2024-03-15")
	}
	if due := strings.TrimSpace(req.DueDate); due != "" {
		if _, ok := ParseInvoiceDate(due); !ok {
			return apperror.Validation("due_date must be a date such as 2024-04-15")
		}
	}
	if err := validateParty("from", req.From); err != nil {
		return err
	}
	if err := validateParty("to", req.To); err != nil {
		return err
	}
	if len(req.Items) == 0 {
		return apperror.Validation("at least one item is required")
	}
	if err := validateItems(req.Items); err != nil {
		return err
	}
	if err := validateEnums(req.TaxType, req.Theme); err != nil {
		return err
	}
	return validateAmounts(map[string]decimal.Decimal{
		"tax":         req.Tax,
		"discount":    req.Discount,
		"shipping":    req.Shipping,
		"paid_amount": req.PaidAmount,
	})
}

func validateUpdate(req UpdateInvoiceRequest) error {
	if req.IssueDate != nil {
		if _, ok := ParseInvoiceDate(strings.TrimSpace(*req.IssueDate)); !ok {
			return apperror.Validation("issue_date must be a date such as 2024-03-15")
		}
	}
	if req.DueDate != nil {
		if due := strings.TrimSpace(*req.DueDate); due != "" {
			if _, ok := ParseInvoiceDate(due); !ok {
				return apperror.Validation("due_date must be a date such as 2024-04-15")
			}
		}
	}
	if req.From != nil {
		if err := validateParty("from", *req.From); err != nil {
			return err
		}
	}
	if req.To != nil {
		if err := validateParty("to", *req.To); err != nil {
			return err
		}
	}
	if req.Items != nil {
		if len(*req.Items) == 0 {
			return apperror.Validation("at least one item is required")
		}
		if err := validateItems(*req.Items); err != nil {
			return err
		}
	}
	var taxType, theme string
	if req.TaxType != nil {
		taxType = *req.TaxType
	}
	if req.Theme != nil {
		theme = *req.Theme
	}
	if err := validateEnums(taxType, theme); err != nil {
		return err
	}
	amounts := map[string]decimal.Decimal{}
	if req.Tax != nil {
		amounts["tax"] = *req.Tax
	}
	if req.Discount != nil {
		amounts["discount"] = *req.Discount
	}
	if req.Shipping != nil {
		amounts["shipping"] = *req.Shipping
	}
	return validateAmounts(amounts)
}

func validateParty(field string, p PartyRequest) error {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Address) == "" ||
		strings.TrimSpace(p.City) == "" || strings.TrimSpace(p.Country) == "" {
		return apperror.Validation(field + " requires name, address, city and country")
	}
	return nil
}

func validateItems(items []LineItemRequest) error {
	for i, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			return apperror.Validation(fmt.Sprintf("items[%d].name is required", i))
		}
		if item.Qty.IsNegative() || item.Rate.IsNegative() {
			return apperror.Validation(fmt.Sprintf("items[%d] qty and rate must not be negative", i))
		}
	}
	return nil
}

func validateEnums(taxType, theme string) error {
	if taxType != "" && !model.ValidTaxType(taxType) {
		return apperror.Validation("tax_type must be percentage or fixed")
	}
	if theme != "" && !model.ValidTheme(theme) {
		return apperror.Validation("unknown theme: " + theme)
	}
	return nil
}

func validateAmounts(amounts map[string]decimal.Decimal) error {
	for name, amount := range amounts {
		if amount.IsNegative() {
			return apperror.Validation(name + " must not be negative")
		}
	}
	return nil
}

func applyUpdate(inv *model.Invoice, req UpdateInvoiceRequest) {
	if req.IssueDate != nil {
		inv.IssueDate = strings.TrimSpace(*req.IssueDate)
	}
	if req.DueDate != nil {
		inv.DueDate = strings.TrimSpace(*req.DueDate)
	}
	if req.From != nil {
		inv.From = datatypes.NewJSONType(toParty(*req.From))
	}
	if req.To != nil {
		inv.To = datatypes.NewJSONType(toParty(*req.To))
	}
	if req.Items != nil {
		inv.Items = toLineItems(*req.Items)
	}
	if req.TaxType != nil {
		inv.TaxType = withDefault(*req.TaxType, model.TaxTypePercentage)
	}
	if req.Tax != nil {
		inv.Tax = *req.Tax
	}
	if req.Discount != nil {
		inv.Discount = *req.Discount
	}
	if req.Shipping != nil {
		inv.Shipping = *req.Shipping
	}
	if req.Notes != nil {
		inv.Notes = *req.Notes
	}
	if req.Terms != nil {
		inv.Terms = *req.Terms
	}
	if req.Currency != nil {
		inv.Currency = withDefault(*req.Currency, model.DefaultCurrency)
	}
	if req.Theme != nil {
		inv.Theme = withDefault(*req.Theme, model.ThemeClassic)
	}
	if req.Color != nil {
		inv.Color = withDefault(*req.Color, model.DefaultColor)
	}
}

func toParty(p PartyRequest) model.Party {
	return model.Party{
		Name:    strings.TrimSpace(p.Name),
		Address: strings.TrimSpace(p.Address),
		City:    strings.TrimSpace(p.City),
		Country: strings.TrimSpace(p.Country),
		Logo:    p.Logo,
	}
}

func toLineItems(items []LineItemRequest) datatypes.JSONSlice[model.LineItem] {
	out := make(datatypes.JSONSlice[model.LineItem], 0, len(items))
	for i, item := range items {
		id := item.ID
		if id == "" {
			id = fmt.Sprintf("%d", i+1)
		}
		out = append(out, model.LineItem{ID: id, Name: strings.TrimSpace(item.Name), Qty: item.Qty, Rate: item.Rate})
	}
	return out
}

func withDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

// --- Mapping ---

func (s *invoiceService) toInvoiceResponse(inv model.Invoice) InvoiceResponse {
	totals := ComputeTotals(inv)
	items := []model.LineItem(inv.Items)
	if items == nil {
		items = []model.LineItem{}
	}

	return InvoiceResponse{
		ID:            inv.ID.String(),
		InvoiceNo:     inv.InvoiceNo,
		UserID:        inv.UserID,
		UserName:      inv.UserName,
		UserEmail:     inv.UserEmail,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		From:          inv.From.Data(),
		To:            inv.To.Data(),
		Items:         items,
		TaxType:       inv.TaxType,
		Tax:           inv.Tax.StringFixed(4),
		Discount:      inv.Discount.StringFixed(4),
		Shipping:      inv.Shipping.StringFixed(4),
		PaidAmount:    inv.PaidAmount.StringFixed(4),
		Subtotal:      totals.Subtotal.StringFixed(4),
		TaxAmount:     totals.TaxAmount.StringFixed(4),
		Total:         totals.Total.StringFixed(4),
		Outstanding:   totals.Outstanding.StringFixed(4),
		PaymentStatus: classify(inv, s.now()),
		Notes:         inv.Notes,
		Terms:         inv.Terms,
		Currency:      inv.Currency,
		Theme:         inv.Theme,
		Color:         inv.Color,
		Status:        inv.Status,
		CreatedAt:     inv.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     inv.UpdatedAt.Format(time.RFC3339),
	}
}
