package holdings

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/trogers1052/networth-tracker/internal/models"
)

// Repository persists holdings per user
type Repository interface {
	CreateHolding(ctx context.Context, h *models.Holding) error
	GetHolding(ctx context.Context, userID, id string) (*models.Holding, error)
	ListHoldings(ctx context.Context, userID string) ([]models.Holding, error)
	UpdateHolding(ctx context.Context, h *models.Holding) error
	DeleteHolding(ctx context.Context, userID, id string) error
}

// CurrencyResolver decides the stored currency of a holding
type CurrencyResolver interface {
	ResolveCurrency(ctx context.Context, assetType models.AssetType, symbol string) string
}

// Notifier is told about every effective write
type Notifier interface {
	PublishHoldingEvent(ctx context.Context, event models.HoldingEvent) error
}

// Input is the user-editable part of a holding
type Input struct {
	Institution string           `json:"institution"`
	Type        models.AssetType `json:"type"`
	Symbol      string           `json:"symbol"`
	Quantity    decimal.Decimal  `json:"quantity"`
}

// ValidationError reports an invalid holding field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)

// Column limits of the holdings table
const (
	maxUserIDLen      = 128
	maxInstitutionLen = 255
	maxSymbolLen      = 32
	maxQuantityScale  = 10
)

// maxQuantity is the first value NUMERIC(28,10) cannot hold
var maxQuantity = decimal.New(1, 28-maxQuantityScale)

func tooLong(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return &ValidationError{Field: field, Message: fmt.Sprintf("longer than %d characters", limit)}
	}
	return nil
}

// normalize validates in and returns it trimmed and upper-cased where relevant
func normalize(userID string, in Input) (Input, error) {
	if strings.TrimSpace(userID) == "" {
		return in, &ValidationError{Field: "user_id", Message: "missing"}
	}
	if err := tooLong("user_id", userID, maxUserIDLen); err != nil {
		return in, err
	}
	in.Institution = strings.TrimSpace(in.Institution)
	if in.Institution == "" {
		return in, &ValidationError{Field: "institution", Message: "missing"}
	}
	if err := tooLong("institution", in.Institution, maxInstitutionLen); err != nil {
		return in, err
	}
	if !in.Type.Valid() {
		return in, &ValidationError{Field: "type", Message: fmt.Sprintf("unknown asset type %q", in.Type)}
	}
	in.Symbol = strings.ToUpper(strings.TrimSpace(in.Symbol))
	if in.Symbol == "" {
		return in, &ValidationError{Field: "symbol", Message: "missing"}
	}
	if err := tooLong("symbol", in.Symbol, maxSymbolLen); err != nil {
		return in, err
	}
	// the stored value must compare equal to the submitted one
	if !in.Quantity.Equal(in.Quantity.Truncate(maxQuantityScale)) {
		return in, &ValidationError{Field: "quantity", Message: fmt.Sprintf("more than %d decimal places", maxQuantityScale)}
	}
	if in.Quantity.Abs().GreaterThanOrEqual(maxQuantity) {
		return in, &ValidationError{Field: "quantity", Message: "too large"}
	}

	if in.Type.Priced() {
		if !in.Quantity.IsPositive() {
			return in, &ValidationError{Field: "quantity", Message: "must be positive"}
		}
		return in, nil
	}

	if !currencyCode.MatchString(in.Symbol) {
		return in, &ValidationError{Field: "symbol", Message: "must be a three letter currency code"}
	}
	if in.Quantity.IsNegative() {
		return in, &ValidationError{Field: "quantity", Message: "must not be negative"}
	}
	return in, nil
}

// Service manages holdings and announces changes
type Service struct {
	repo     Repository
	resolver CurrencyResolver
	notifier Notifier
	log      logrus.FieldLogger
}

// NewService creates a holdings service. notifier may be nil.
func NewService(repo Repository, resolver CurrencyResolver, notifier Notifier, log logrus.FieldLogger) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		notifier: notifier,
		log:      log,
	}
}

// Create validates and stores a new holding, resolving its currency first
func (s *Service) Create(ctx context.Context, userID string, in Input) (*models.Holding, error) {
	in, err := normalize(userID, in)
	if err != nil {
		return nil, err
	}

	h := &models.Holding{
		UserID:      userID,
		Institution: in.Institution,
		Type:        in.Type,
		Symbol:      in.Symbol,
		Quantity:    in.Quantity,
		Currency:    s.resolver.ResolveCurrency(ctx, in.Type, in.Symbol),
	}
	if err := s.repo.CreateHolding(ctx, h); err != nil {
		return nil, fmt.Errorf("failed to create holding: %w", err)
	}

	s.notify(ctx, models.EventHoldingCreated, h.UserID, h.ID, h)
	return h, nil
}

// Get returns one holding of the user
func (s *Service) Get(ctx context.Context, userID, id string) (*models.Holding, error) {
	return s.repo.GetHolding(ctx, userID, id)
}

// List returns every holding of the user
func (s *Service) List(ctx context.Context, userID string) ([]models.Holding, error) {
	return s.repo.ListHoldings(ctx, userID)
}

// Update applies in to an existing holding. When institution, type, symbol and quantity
// all match what is stored nothing is written and changed is false.
func (s *Service) Update(ctx context.Context, userID, id string, in Input) (*models.Holding, bool, error) {
	in, err := normalize(userID, in)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.repo.GetHolding(ctx, userID, id)
	if err != nil {
		return nil, false, err
	}

	updated := *existing
	updated.Institution = in.Institution
	updated.Type = in.Type
	updated.Symbol = in.Symbol
	updated.Quantity = in.Quantity

	if existing.SameContent(updated) {
		s.log.WithFields(logrus.Fields{"user_id": userID, "holding_id": id}).Debug("Holding unchanged, skipping update")
		return existing, false, nil
	}

	if updated.Type != existing.Type || updated.Symbol != existing.Symbol || updated.Currency == "" {
		updated.Currency = s.resolver.ResolveCurrency(ctx, updated.Type, updated.Symbol)
	}
	if err := s.repo.UpdateHolding(ctx, &updated); err != nil {
		return nil, false, fmt.Errorf("failed to update holding: %w", err)
	}

	s.notify(ctx, models.EventHoldingUpdated, userID, id, &updated)
	return &updated, true, nil
}

// Delete removes a holding of the user
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.DeleteHolding(ctx, userID, id); err != nil {
		return err
	}
	s.notify(ctx, models.EventHoldingDeleted, userID, id, nil)
	return nil
}

func (s *Service) notify(ctx context.Context, eventType, userID, holdingID string, h *models.Holding) {
	if s.notifier == nil {
		return
	}
	event := models.HoldingEvent{
		EventType: eventType,
		UserID:    userID,
		HoldingID: holdingID,
		Holding:   h,
		Timestamp: time.Now().UTC(),
	}
	if err := s.notifier.PublishHoldingEvent(ctx, event); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"user_id":    userID,
			"holding_id": holdingID,
			"event_type": eventType,
		}).Warn("Failed to publish holding event")
	}
}
