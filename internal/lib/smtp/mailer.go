package smtp

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"strings"
	"time"

	"github.com/magabrotheeeer/ereceipt/internal/lib/sl"
	"github.com/magabrotheeeer/ereceipt/internal/models"
)

// Mailer отправляет письма с HTML и текстовой частью (multipart/alternative).
type Mailer struct {
	transport Connector
	from      mail.Address
	log       *slog.Logger
}

// NewMailer создаёт Mailer, отправляющий письма от имени from.
func NewMailer(transport Connector, from, fromName string, log *slog.Logger) *Mailer {
	return &Mailer{
		transport: transport,
		from:      mail.Address{Name: fromName, Address: from},
		log:       log,
	}
}

// Send делает одну попытку доставки письма. Повторов нет.
func (m *Mailer) Send(ctx context.Context, msg models.EmailMessage) error {
	const op = "smtp.Mailer.Send"

	raw, err := BuildMessage(m.from, msg, time.Now())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	client, err := m.transport.Connect(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = client.Close()
	}()

	if err = client.Mail(m.from.Address); err != nil {
		m.log.Error("failed to set MAIL FROM", slog.String("from", m.from.Address), sl.Err(err))
		return fmt.Errorf("%s: mail from: %w", op, err)
	}
	if err = client.Rcpt(msg.To); err != nil {
		m.log.Error("failed to set RCPT TO", slog.String("recipient", msg.To), sl.Err(err))
		return fmt.Errorf("%s: rcpt to: %w", op, err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("%s: data: %w", op, err)
	}
	if _, err = wc.Write(raw); err != nil {
		_ = wc.Close()
		return fmt.Errorf("%s: write body: %w", op, err)
	}
	if err = wc.Close(); err != nil {
		return fmt.Errorf("%s: close data: %w", op, err)
	}
	if err = client.Quit(); err != nil {
		m.log.Warn("failed to quit SMTP session", sl.Err(err))
	}

	m.log.Info("email sent", slog.String("to", msg.To))
	return nil
}

// BuildMessage собирает RFC 5322 сообщение с частями text/plain и text/html.
func BuildMessage(from mail.Address, msg models.EmailMessage, now time.Time) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	parts := []struct {
		contentType string
		content     string
	}{
		{contentType: "text/plain; charset=UTF-8", content: msg.TextBody},
		{contentType: "text/html; charset=UTF-8", content: msg.HTMLBody},
	}
	for _, p := range parts {
		pw, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {p.contentType},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(pw)
		if _, err = qp.Write([]byte(p.content)); err != nil {
			return nil, err
		}
		if err = qp.Close(); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	to := mail.Address{Address: msg.To}
	headers := []string{
		"From: " + from.String(),
		"To: " + to.String(),
		"Subject: " + mime.QEncoding.Encode("UTF-8", msg.Subject),
		"Date: " + now.Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q", mw.Boundary()),
		"",
		"",
	}

	var out bytes.Buffer
	out.WriteString(strings.Join(headers, "\r\n"))
	out.Write(body.Bytes())
	return out.Bytes(), nil
}
