package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/ereceipt/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/ereceipt/internal/models"
	services "github.com/magabrotheeeer/ereceipt/internal/services/journal"
)

type WriterMock struct {
	mock.Mock
}

func (m *WriterMock) InsertDeliveryEvent(ctx context.Context, e models.DeliveryEvent) (int64, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(int64), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const (
	receiptID = "1b4e28ba-2fa1-11d2-883f-0016d3cca427"
	userID    = "6fa459ea-ee8a-3ca4-894e-db77e160355e"
)

func TestJournalService_Record(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		setupMocks  func(m *WriterMock)
		wantErr     bool
		wantDiscard bool
	}{
		{
			name: "valid event",
			body: `{"receipt_id":"` + receiptID + `","user_id":"` + userID + `","channel":"email","recipient":"ann@example.com","sent":true,"message":"Email sent successfully"}`,
			setupMocks: func(m *WriterMock) {
				m.On("InsertDeliveryEvent", mock.Anything, mock.MatchedBy(func(e models.DeliveryEvent) bool {
					return e.ReceiptID == receiptID && e.Sent && !e.OccurredAt.IsZero()
				})).Return(int64(1), nil).Once()
			},
		},
		{
			name:        "malformed json",
			body:        `{"receipt_id":`,
			setupMocks:  func(_ *WriterMock) {},
			wantErr:     true,
			wantDiscard: true,
		},
		{
			name:        "bad receipt id",
			body:        `{"receipt_id":"nope","user_id":"` + userID + `","channel":"sms"}`,
			setupMocks:  func(_ *WriterMock) {},
			wantErr:     true,
			wantDiscard: true,
		},
		{
			name:        "unknown channel",
			body:        `{"receipt_id":"` + receiptID + `","user_id":"` + userID + `","channel":"fax"}`,
			setupMocks:  func(_ *WriterMock) {},
			wantErr:     true,
			wantDiscard: true,
		},
		{
			name: "storage failure is retried",
			body: `{"receipt_id":"` + receiptID + `","user_id":"` + userID + `","channel":"sms"}`,
			setupMocks: func(m *WriterMock) {
				m.On("InsertDeliveryEvent", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(WriterMock)
			tt.setupMocks(repo)
			svc := services.NewJournalService(repo, newNoopLogger())

			err := svc.Record(context.Background(), []byte(tt.body))
			if !tt.wantErr {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.wantDiscard, errors.Is(err, rabbitmq.ErrDiscard))
			}
			repo.AssertExpectations(t)
		})
	}
}
