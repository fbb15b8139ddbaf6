package mail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bizhub/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingTransport struct {
	from string
	to   []string
	msg  string
	err  error
}

func (r *recordingTransport) Send(_ context.Context, from string, to []string, msg []byte) error {
	r.from, r.to, r.msg = from, to, string(msg)
	return r.err
}

func TestMailer_SendVerification(t *testing.T) {
	tr := &recordingTransport{}
	m := NewMailer(config.SMTPConfig{
		From:          "no-reply@bizhub.app",
		FromName:      "BizHub",
		VerifyBaseURL: "https://bizhub.app/verify",
	}, tr, zap.NewNop())

	expires := time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC)
	require.NoError(t, m.SendVerification(context.Background(), "a@b.com", "a+b/c", expires))

	assert.Equal(t, "no-reply@bizhub.app", tr.from)
	assert.Equal(t, []string{"a@b.com"}, tr.to)
	assert.Contains(t, tr.msg, "To: a@b.com\r\n")
	assert.Contains(t, tr.msg, `href="https://bizhub.app/verify?token=a%2Bb%2Fc"`)
	assert.Contains(t, tr.msg, "10:30 UTC, 1 May 2026")
}

func TestMailer_TransportFailure(t *testing.T) {
	tr := &recordingTransport{err: errors.New("connection refused")}
	m := NewMailer(config.SMTPConfig{From: "x@y.com"}, tr, zap.NewNop())

	err := m.SendVerification(context.Background(), "a@b.com", "tok", time.Now())
	assert.ErrorContains(t, err, "connection refused")
}
