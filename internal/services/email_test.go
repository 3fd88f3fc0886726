package services

import (
	"context"
	"errors"
	"testing"

	"eventticketing/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingMailer captures the last email handed to it.
type recordingMailer struct {
	to      string
	subject string
	html    string
	text    string
	err     error
}

func (m *recordingMailer) Send(to, subject, html, text string) error {
	m.to, m.subject, m.html, m.text = to, subject, html, text
	return m.err
}

// staticRenderer returns fixed content.
type staticRenderer struct {
	err error
}

func (r *staticRenderer) Render(templateName string, data any) (string, string, string, error) {
	if r.err != nil {
		return "", "", "", r.err
	}
	return "subject", "<p>html</p>", "text", nil
}

func TestEmailService_SendPurchaseConfirmation(t *testing.T) {
	ctx := context.Background()
	data := &domain.PurchaseConfirmationEmailData{Email: "ada@example.com", EventName: "Go Conf"}

	t.Run("renders and sends", func(t *testing.T) {
		mailer := &recordingMailer{}
		svc := NewEmailService(mailer, &staticRenderer{})
		require.NoError(t, svc.SendPurchaseConfirmation(ctx, data))
		assert.Equal(t, "ada@example.com", mailer.to)
		assert.Equal(t, "subject", mailer.subject)
	})

	t.Run("render failure", func(t *testing.T) {
		svc := NewEmailService(&recordingMailer{}, &staticRenderer{err: errors.New("missing template")})
		require.Error(t, svc.SendPurchaseConfirmation(ctx, data))
	})

	t.Run("send failure", func(t *testing.T) {
		svc := NewEmailService(&recordingMailer{err: errors.New("smtp down")}, &staticRenderer{})
		require.Error(t, svc.SendPurchaseConfirmation(ctx, data))
	})

	t.Run("nil data", func(t *testing.T) {
		svc := NewEmailService(&recordingMailer{}, &staticRenderer{})
		require.Error(t, svc.SendPurchaseConfirmation(ctx, nil))
	})
}
