// Package services доставляет чеки покупателям по email и SMS и отмечает
// успешную доставку в хранилище.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/magabrotheeeer/ereceipt/internal/delivery"
	"github.com/magabrotheeeer/ereceipt/internal/lib/phone"
	"github.com/magabrotheeeer/ereceipt/internal/lib/sl"
	"github.com/magabrotheeeer/ereceipt/internal/metrics"
	"github.com/magabrotheeeer/ereceipt/internal/models"
)

// DefaultMarkTimeout bounds the status write that follows a successful send.
const DefaultMarkTimeout = 10 * time.Second

// ReceiptStore отдаёт чек владельца и отмечает доставку.
type ReceiptStore interface {
	Get(ctx context.Context, id, ownerID string) (*models.Receipt, error)
	MarkEmailSent(ctx context.Context, id string) (delivery.Status, error)
	MarkSMSSent(ctx context.Context, id string) (delivery.Status, error)
}

// UserReader отдаёт владельца чека для оформления письма.
type UserReader interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// EmailSender делает одну попытку отправить письмо.
type EmailSender interface {
	Send(ctx context.Context, msg models.EmailMessage) error
}

// SMSSender делает одну попытку отправить SMS и возвращает id сообщения у провайдера.
type SMSSender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

// EventPublisher публикует событие доставки в журнал.
type EventPublisher interface {
	Publish(ctx context.Context, event models.DeliveryEvent) error
}

// NopPublisher discards events. Used when RabbitMQ is not configured.
type NopPublisher struct{}

// Publish does nothing.
func (NopPublisher) Publish(context.Context, models.DeliveryEvent) error { return nil }

// Options настраивают Dispatcher.
type Options struct {
	DefaultCountryCode   string
	BusinessFallbackName string
	TestEmail            string
	TestPhone            string
	EmailFrom            string
	SMSFrom              string
	MarkTimeout          time.Duration
}

// ChannelResult is the outcome of one channel. Provider failures are
// reported here and never returned as errors.
type ChannelResult struct {
	Channel    delivery.Channel `json:"channel"`
	Sent       bool             `json:"sent"`
	Message    string           `json:"message"`
	SentTo     string           `json:"sent_to,omitempty"`
	ProviderID string           `json:"provider_id,omitempty"`
	Status     delivery.Status  `json:"status,omitempty"`
}

// Failure returns the result as a ProviderError, or nil when it was sent.
func (r ChannelResult) Failure() error {
	if r.Sent {
		return nil
	}
	return &models.ProviderError{Channel: string(r.Channel), Reason: r.Message}
}

// BothResult is the outcome of SendBoth.
type BothResult struct {
	Success bool          `json:"success"`
	Email   ChannelResult `json:"email"`
	SMS     ChannelResult `json:"sms"`
}

// ProviderInfo describes one configured channel.
type ProviderInfo struct {
	Configured bool   `json:"configured"`
	Provider   string `json:"provider"`
	From       string `json:"from,omitempty"`
}

// ProviderStatus is returned by ProviderConfig.
type ProviderStatus struct {
	Email ProviderInfo `json:"email"`
	SMS   ProviderInfo `json:"sms"`
}

// Dispatcher отправляет чеки. Nil-отправитель означает, что канал не настроен.
type Dispatcher struct {
	receipts ReceiptStore
	users    UserReader
	email    EmailSender
	sms      SMSSender
	events   EventPublisher
	opts     Options
	log      *slog.Logger
	now      func() time.Time
}

// NewDispatcher создает новый экземпляр Dispatcher.
func NewDispatcher(receipts ReceiptStore, users UserReader, email EmailSender, sms SMSSender, events EventPublisher, opts Options, log *slog.Logger) *Dispatcher {
	if opts.MarkTimeout <= 0 {
		opts.MarkTimeout = DefaultMarkTimeout
	}
	if events == nil {
		events = NopPublisher{}
	}
	return &Dispatcher{
		receipts: receipts,
		users:    users,
		email:    email,
		sms:      sms,
		events:   events,
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

// ProviderConfig reports which channels can send.
func (d *Dispatcher) ProviderConfig() ProviderStatus {
	return ProviderStatus{
		Email: ProviderInfo{Configured: d.email != nil, Provider: "SMTP", From: d.opts.EmailFrom},
		SMS:   ProviderInfo{Configured: d.sms != nil, Provider: "Twilio", From: d.opts.SMSFrom},
	}
}

// SendEmail отправляет чек на email покупателя или на override.
func (d *Dispatcher) SendEmail(ctx context.Context, receiptID, ownerID, override string) (ChannelResult, error) {
	const op = "services.notification.SendEmail"
	r, b, err := d.load(ctx, receiptID, ownerID)
	if err != nil {
		return ChannelResult{}, fmt.Errorf("%s: %w", op, err)
	}
	res, err := d.emailReceipt(ctx, r, b, override, true)
	if err != nil {
		return ChannelResult{}, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// SendSMS отправляет чек по SMS на телефон покупателя или на override.
func (d *Dispatcher) SendSMS(ctx context.Context, receiptID, ownerID, override string) (ChannelResult, error) {
	const op = "services.notification.SendSMS"
	r, b, err := d.load(ctx, receiptID, ownerID)
	if err != nil {
		return ChannelResult{}, fmt.Errorf("%s: %w", op, err)
	}
	res, err := d.smsReceipt(ctx, r, b, override, true)
	if err != nil {
		return ChannelResult{}, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// SendBoth отправляет чек по обоим каналам параллельно. Успех, если
// доставлен хотя бы один канал. Ошибки контакта попадают в результат канала.
func (d *Dispatcher) SendBoth(ctx context.Context, receiptID, ownerID, emailOverride, phoneOverride string) (BothResult, error) {
	const op = "services.notification.SendBoth"
	r, b, err := d.load(ctx, receiptID, ownerID)
	if err != nil {
		return BothResult{}, fmt.Errorf("%s: %w", op, err)
	}

	var (
		wg     sync.WaitGroup
		result BothResult
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		res, err := d.emailReceipt(ctx, r, b, emailOverride, true)
		if err != nil {
			res = contactFailure(delivery.ChannelEmail, err)
		}
		result.Email = res
	}()
	go func() {
		defer wg.Done()
		res, err := d.smsReceipt(ctx, r, b, phoneOverride, true)
		if err != nil {
			res = contactFailure(delivery.ChannelSMS, err)
		}
		result.SMS = res
	}()
	wg.Wait()

	result.Success = result.Email.Sent || result.SMS.Sent
	return result, nil
}

// TestEmail отправляет образец чека TEST-001 без изменения данных.
func (d *Dispatcher) TestEmail(ctx context.Context, ownerID, to string) (ChannelResult, error) {
	const op = "services.notification.TestEmail"
	owner := d.owner(ctx, ownerID)
	to = firstNonEmpty(to, d.opts.TestEmail)
	if to == "" && owner != nil {
		to = owner.Email
	}
	sample := SampleReceipt(d.now())
	sample.CustomerEmail = to
	res, err := d.emailReceipt(ctx, sample, BrandingFor(owner, d.opts.BusinessFallbackName), "", false)
	if err != nil {
		return ChannelResult{}, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// TestSMS отправляет образец чека TEST-001 по SMS без изменения данных.
func (d *Dispatcher) TestSMS(ctx context.Context, ownerID, to string) (ChannelResult, error) {
	const op = "services.notification.TestSMS"
	owner := d.owner(ctx, ownerID)
	sample := SampleReceipt(d.now())
	sample.CustomerPhone = firstNonEmpty(to, d.opts.TestPhone)
	res, err := d.smsReceipt(ctx, sample, BrandingFor(owner, d.opts.BusinessFallbackName), "", false)
	if err != nil {
		return ChannelResult{}, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// SampleReceipt returns the fixed receipt used by provider smoke tests.
func SampleReceipt(now time.Time) *models.Receipt {
	return &models.Receipt{
		ReceiptNumber:   "TEST-001",
		CustomerName:    "Test Customer",
		TransactionDate: now.UTC().Format(models.DateLayout),
		Items: []models.Item{
			{Name: "Test Item 1", Quantity: 1, Price: 10},
			{Name: "Test Item 2", Quantity: 2, Price: 5},
		},
		Subtotal: 20,
		TaxRate:  10,
		Tax:      2,
		Total:    22,
		Currency: models.DefaultCurrency,
	}
}

func (d *Dispatcher) load(ctx context.Context, receiptID, ownerID string) (*models.Receipt, Branding, error) {
	r, err := d.receipts.Get(ctx, receiptID, ownerID)
	if err != nil {
		return nil, Branding{}, err
	}
	return r, BrandingFor(d.owner(ctx, ownerID), d.opts.BusinessFallbackName), nil
}

// owner returns nil when the owner cannot be read; branding then falls back.
func (d *Dispatcher) owner(ctx context.Context, ownerID string) *models.User {
	u, err := d.users.GetUserByID(ctx, ownerID)
	if err != nil {
		d.log.Warn("failed to load receipt owner", slog.String("user_id", ownerID), sl.Err(err))
		return nil
	}
	return u
}

func (d *Dispatcher) emailReceipt(ctx context.Context, r *models.Receipt, b Branding, override string, persist bool) (ChannelResult, error) {
	to := firstNonEmpty(override, r.CustomerEmail)
	if to == "" {
		return ChannelResult{}, fmt.Errorf("%w: no email address available for this receipt", models.ErrMissingContact)
	}
	res := ChannelResult{Channel: delivery.ChannelEmail}
	if d.email == nil {
		res.Message = "Email service not configured"
		d.finish(ctx, r, res, to, 0, persist)
		return res, nil
	}

	msg, err := RenderEmail(r, b)
	if err != nil {
		return ChannelResult{}, err
	}
	msg.To = to

	start := time.Now()
	err = d.email.Send(ctx, msg)
	took := time.Since(start)
	if err != nil {
		d.log.Error("failed to send receipt email", slog.String("receipt", r.ReceiptNumber), sl.Err(err))
		res.Message = providerReason("Email", err)
	} else {
		res.Sent = true
		res.Message = "Email sent successfully"
		res.SentTo = to
	}
	return d.finish(ctx, r, res, to, took, persist), nil
}

func (d *Dispatcher) smsReceipt(ctx context.Context, r *models.Receipt, b Branding, override string, persist bool) (ChannelResult, error) {
	raw := firstNonEmpty(override, r.CustomerPhone)
	if raw == "" {
		return ChannelResult{}, fmt.Errorf("%w: no phone number available for this receipt", models.ErrMissingContact)
	}
	to, err := phone.Normalize(raw, d.opts.DefaultCountryCode)
	if err != nil {
		return ChannelResult{}, fmt.Errorf("%w: %v", models.ErrInvalidContact, err)
	}
	res := ChannelResult{Channel: delivery.ChannelSMS}
	if d.sms == nil {
		res.Message = "SMS service not configured"
		d.finish(ctx, r, res, to, 0, persist)
		return res, nil
	}

	start := time.Now()
	sid, err := d.sms.Send(ctx, to, RenderSMS(r, b))
	took := time.Since(start)
	if err != nil {
		d.log.Error("failed to send receipt sms", slog.String("receipt", r.ReceiptNumber), sl.Err(err))
		res.Message = providerReason("SMS", err)
	} else {
		res.Sent = true
		res.Message = "SMS sent successfully"
		res.SentTo = to
		res.ProviderID = sid
	}
	return d.finish(ctx, r, res, to, took, persist), nil
}

// finish records metrics and, for stored receipts, marks the channel and
// journals the attempt. Both writes run on a context detached from the
// request and bounded by MarkTimeout.
func (d *Dispatcher) finish(ctx context.Context, r *models.Receipt, res ChannelResult, to string, took time.Duration, persist bool) ChannelResult {
	metrics.ObserveNotification(string(res.Channel), res.Sent, took)
	if !persist {
		return res
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.opts.MarkTimeout)
	defer cancel()

	if res.Sent {
		status, err := d.mark(ctx, res.Channel, r.ID)
		if err != nil {
			d.log.Error("failed to mark receipt delivered",
				slog.String("id", r.ID), slog.String("channel", string(res.Channel)), sl.Err(err))
		} else {
			res.Status = status
		}
	}

	event := models.DeliveryEvent{
		ReceiptID:  r.ID,
		UserID:     r.UserID,
		Channel:    string(res.Channel),
		Recipient:  to,
		Sent:       res.Sent,
		Message:    res.Message,
		ProviderID: res.ProviderID,
		OccurredAt: d.now().UTC(),
	}
	if err := d.events.Publish(ctx, event); err != nil {
		d.log.Warn("failed to publish delivery event", slog.String("id", r.ID), sl.Err(err))
	}
	return res
}

func (d *Dispatcher) mark(ctx context.Context, ch delivery.Channel, id string) (delivery.Status, error) {
	if ch == delivery.ChannelSMS {
		return d.receipts.MarkSMSSent(ctx, id)
	}
	return d.receipts.MarkEmailSent(ctx, id)
}

func contactFailure(ch delivery.Channel, err error) ChannelResult {
	res := ChannelResult{Channel: ch}
	switch {
	case errors.Is(err, models.ErrInvalidContact):
		res.Message = "Invalid phone number format"
	case errors.Is(err, models.ErrMissingContact) && ch == delivery.ChannelEmail:
		res.Message = "No email address provided"
	case errors.Is(err, models.ErrMissingContact):
		res.Message = "No phone number provided"
	default:
		res.Message = err.Error()
	}
	return res
}

func providerReason(label string, err error) string {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return label + " sending timed out"
	}
	return fmt.Sprintf("%s service error: %v", label, err)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
