// Package services содержит бизнес-логику чеков: создание со значениями по
// умолчанию, чтение с кешированием, выборки и отметки о доставке.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/ereceipt/internal/cache"
	"github.com/magabrotheeeer/ereceipt/internal/delivery"
	"github.com/magabrotheeeer/ereceipt/internal/lib/sl"
	"github.com/magabrotheeeer/ereceipt/internal/models"
)

// Pagination limits for List.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
	MaxPage        = math.MaxInt32
)

const numberAttempts = 3

// ReceiptRepository определяет методы для работы с чеками в хранилище.
type ReceiptRepository interface {
	CreateReceipt(ctx context.Context, r models.Receipt) (*models.Receipt, error)
	GetReceipt(ctx context.Context, id, ownerID string) (*models.Receipt, error)
	GetReceiptByNumber(ctx context.Context, number, ownerID string) (*models.Receipt, error)
	ListReceipts(ctx context.Context, f models.ReceiptFilter) (*models.ReceiptPage, error)
	UpdateReceipt(ctx context.Context, id, ownerID string, p models.ReceiptPatch) (*models.Receipt, error)
	DeleteReceipt(ctx context.Context, id, ownerID string) error
	MarkEmailSent(ctx context.Context, id string) (delivery.Status, error)
	MarkSMSSent(ctx context.Context, id string) (delivery.Status, error)
	ReceiptStats(ctx context.Context, ownerID string) (*models.ReceiptStats, error)
	ListDeliveryEvents(ctx context.Context, receiptID, ownerID string) ([]models.DeliveryEvent, error)
}

// UserReader отдаёт владельца чека, чтобы применить его настройки.
type UserReader interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Version возвращает версию ключа, которую увеличивает каждая инвалидация.
	Version(ctx context.Context, key string) (int64, error)
	// SetIfVersion сохраняет значение, только если версия ключа не изменилась.
	SetIfVersion(ctx context.Context, key string, version int64, value any, expiration time.Duration) (bool, error)
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(ctx context.Context, key string) error
}

// ReceiptService реализует бизнес-логику работы с чеками, включая кеширование.
type ReceiptService struct {
	repo     ReceiptRepository
	users    UserReader
	cache    Cache
	cacheTTL time.Duration
	log      *slog.Logger
	now      func() time.Time
}

// NewReceiptService создает новый экземпляр ReceiptService.
func NewReceiptService(repo ReceiptRepository, users UserReader, cache Cache, cacheTTL time.Duration, log *slog.Logger) *ReceiptService {
	return &ReceiptService{
		repo:     repo,
		users:    users,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
		now:      time.Now,
	}
}

// GenerateNumber returns a number of the form REC-YYYYMMDD-XXXXXXX.
func GenerateNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:7]
	return "REC-" + now.UTC().Format("20060102") + "-" + suffix
}

// Create проверяет данные, подставляет значения по умолчанию и сохраняет чек.
// Сгенерированный номер повторяется при коллизии, номер клиента — нет.
func (s *ReceiptService) Create(ctx context.Context, ownerID string, in models.ReceiptInput) (*models.Receipt, error) {
	const op = "services.receipt.Create"

	if err := validateInput(in); err != nil {
		return nil, err
	}

	settings, err := s.ownerSettings(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r := models.Receipt{
		UserID:          ownerID,
		CustomerName:    strings.TrimSpace(in.CustomerName),
		CustomerEmail:   strings.TrimSpace(in.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(in.CustomerPhone),
		TransactionDate: in.TransactionDate,
		Items:           in.Items,
		Subtotal:        *in.Subtotal,
		TaxRate:         settings.DefaultTaxRate,
		Tax:             *in.Tax,
		Total:           *in.Total,
		Currency:        settings.Currency,
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   in.PaymentStatus,
		Notes:           in.Notes,
		Status:          delivery.StatusCreated,
	}
	if in.TaxRate != nil {
		r.TaxRate = *in.TaxRate
	}
	if in.Currency != "" {
		r.Currency = strings.ToUpper(in.Currency)
	}
	if r.PaymentMethod == "" {
		r.PaymentMethod = models.DefaultPaymentMethod
	}
	if r.PaymentStatus == "" {
		r.PaymentStatus = models.DefaultPaymentStatus
	}
	if r.TransactionDate == "" {
		r.TransactionDate = s.now().UTC().Format(models.DateLayout)
	}

	var created *models.Receipt
	if number := strings.TrimSpace(in.ReceiptNumber); number != "" {
		r.ReceiptNumber = number
		created, err = s.repo.CreateReceipt(ctx, r)
	} else {
		for attempt := 1; attempt <= numberAttempts; attempt++ {
			r.ReceiptNumber = GenerateNumber(s.now())
			created, err = s.repo.CreateReceipt(ctx, r)
			if !errors.Is(err, models.ErrDuplicateReceiptNumber) {
				break
			}
			s.log.Warn("receipt number collision", slog.String("number", r.ReceiptNumber), slog.Int("attempt", attempt))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("created new receipt", slog.String("id", created.ID), slog.String("number", created.ReceiptNumber))
	return created, nil
}

// Get возвращает чек владельца, используя кеш или репозиторий.
// Чек из кеша тоже проверяется на принадлежность владельцу. Снимок из
// репозитория попадает в кеш, только если ключ не инвалидировали во время чтения.
func (s *ReceiptService) Get(ctx context.Context, id, ownerID string) (*models.Receipt, error) {
	const op = "services.receipt.Get"
	key := cache.ReceiptKey(id)

	var cached models.Receipt
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", key), sl.Err(err))
	}
	if found {
		if ownerID != "" && cached.UserID != ownerID {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return &cached, nil
	}

	version, verr := s.cache.Version(ctx, key)
	if verr != nil {
		s.log.Warn("failed to read cache version", slog.String("key", key), sl.Err(verr))
	}

	r, err := s.repo.GetReceipt(ctx, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if verr == nil {
		s.store(ctx, r, version)
	}
	return r, nil
}

// GetByNumber возвращает чек владельца по номеру.
func (s *ReceiptService) GetByNumber(ctx context.Context, number, ownerID string) (*models.Receipt, error) {
	const op = "services.receipt.GetByNumber"
	r, err := s.repo.GetReceiptByNumber(ctx, strings.TrimSpace(number), ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// NormalizePage clamps page to 1..MaxPage and perPage to 1..MaxPerPage, with 0 meaning the default.
func NormalizePage(page, perPage int) (int, int) {
	switch {
	case page < 1:
		page = 1
	case page > MaxPage:
		page = MaxPage
	}
	switch {
	case perPage == 0:
		perPage = DefaultPerPage
	case perPage < 1:
		perPage = 1
	case perPage > MaxPerPage:
		perPage = MaxPerPage
	}
	return page, perPage
}

// List возвращает страницу чеков владельца, новые первыми.
func (s *ReceiptService) List(ctx context.Context, f models.ReceiptFilter) (*models.ReceiptPage, error) {
	const op = "services.receipt.List"
	if f.Status != "" && !f.Status.Valid() {
		return nil, models.NewValidationError("status", "Invalid status: %s", f.Status)
	}
	f.Page, f.PerPage = NormalizePage(f.Page, f.PerPage)
	f.Search = strings.TrimSpace(f.Search)

	page, err := s.repo.ListReceipts(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return page, nil
}

// Update меняет разрешённые поля чека и сбрасывает его из кеша.
func (s *ReceiptService) Update(ctx context.Context, id, ownerID string, p models.ReceiptPatch) (*models.Receipt, error) {
	const op = "services.receipt.Update"
	if p.Items != nil {
		if err := validateItems(*p.Items); err != nil {
			return nil, err
		}
	}
	if p.CustomerName != nil && strings.TrimSpace(*p.CustomerName) == "" {
		return nil, models.NewValidationError("customer_name", "Customer name cannot be empty")
	}

	r, err := s.repo.UpdateReceipt(ctx, id, ownerID, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, id)
	s.log.Info("updated receipt", slog.String("id", id))
	return r, nil
}

// Delete удаляет чек и инвалидирует кеш.
func (s *ReceiptService) Delete(ctx context.Context, id, ownerID string) error {
	const op = "services.receipt.Delete"
	if err := s.repo.DeleteReceipt(ctx, id, ownerID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, id)
	s.log.Info("deleted receipt", slog.String("id", id))
	return nil
}

// Stats returns the owner's aggregate figures.
func (s *ReceiptService) Stats(ctx context.Context, ownerID string) (*models.ReceiptStats, error) {
	const op = "services.receipt.Stats"
	stats, err := s.repo.ReceiptStats(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}

// MarkEmailSent отмечает доставку по email. Повторный вызов ничего не меняет.
func (s *ReceiptService) MarkEmailSent(ctx context.Context, id string) (delivery.Status, error) {
	const op = "services.receipt.MarkEmailSent"
	status, err := s.repo.MarkEmailSent(ctx, id)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, id)
	return status, nil
}

// MarkSMSSent отмечает доставку по SMS. Повторный вызов ничего не меняет.
func (s *ReceiptService) MarkSMSSent(ctx context.Context, id string) (delivery.Status, error) {
	const op = "services.receipt.MarkSMSSent"
	status, err := s.repo.MarkSMSSent(ctx, id)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, id)
	return status, nil
}

// ListDeliveries returns the delivery journal of an owned receipt, newest first.
func (s *ReceiptService) ListDeliveries(ctx context.Context, id, ownerID string) ([]models.DeliveryEvent, error) {
	const op = "services.receipt.ListDeliveries"
	if _, err := s.Get(ctx, id, ownerID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	events, err := s.repo.ListDeliveryEvents(ctx, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return events, nil
}

func (s *ReceiptService) ownerSettings(ctx context.Context, ownerID string) (models.UserSettings, error) {
	settings := models.DefaultSettings()
	user, err := s.users.GetUserByID(ctx, ownerID)
	if errors.Is(err, models.ErrNotFound) {
		return settings, nil
	}
	if err != nil {
		return settings, err
	}
	if user.Settings.Currency != "" {
		settings.Currency = user.Settings.Currency
	}
	settings.DefaultTaxRate = user.Settings.DefaultTaxRate
	return settings, nil
}

func (s *ReceiptService) store(ctx context.Context, r *models.Receipt, version int64) {
	key := cache.ReceiptKey(r.ID)
	stored, err := s.cache.SetIfVersion(ctx, key, version, r, s.cacheTTL)
	if err != nil {
		s.log.Warn("failed to cache receipt", slog.String("key", key), sl.Err(err))
		return
	}
	if !stored {
		s.log.Debug("receipt changed while reading, cache skipped", slog.String("key", key))
	}
}

func (s *ReceiptService) invalidate(ctx context.Context, id string) {
	key := cache.ReceiptKey(id)
	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", key), sl.Err(err))
	}
}
