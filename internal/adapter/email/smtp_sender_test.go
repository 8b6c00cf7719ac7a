package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaibhavvatsbhartiya/storefront/internal/app/config"
	"github.com/vaibhavvatsbhartiya/storefront/internal/platform/logger"
)

func TestNewSMTPSender_RequiresHostAndSender(t *testing.T) {
	_, err := NewSMTPSender(config.SMTPConfig{Port: 587, SenderEmail: "shop@example.com"}, logger.NewNop())
	assert.Error(t, err)

	_, err = NewSMTPSender(config.SMTPConfig{Host: "smtp.example.com", Port: 587}, logger.NewNop())
	assert.Error(t, err)
}

func TestNewSMTPSender_Encryption(t *testing.T) {
	sender, err := NewSMTPSender(config.SMTPConfig{
		Host:        "smtp.example.com",
		Port:        465,
		SenderEmail: "shop@example.com",
		Encryption:  "SSL",
	}, logger.NewNop())
	require.NoError(t, err)

	s := sender.(*smtpSender)
	assert.True(t, s.d.SSL)
	require.NotNil(t, s.d.TLSConfig)
	assert.Equal(t, "smtp.example.com", s.d.TLSConfig.ServerName)
}

func TestSMTPSender_Send_Validation(t *testing.T) {
	sender, err := NewSMTPSender(config.SMTPConfig{Host: "smtp.example.com", Port: 587, SenderEmail: "shop@example.com"}, logger.NewNop())
	require.NoError(t, err)

	assert.Error(t, sender.Send(context.Background(), nil, "subject", "", "body"))
	assert.Error(t, sender.Send(context.Background(), []string{"a@b.c"}, "subject", "", ""))
}

func TestNoopSender(t *testing.T) {
	assert.NoError(t, NewNoopSender(logger.NewNop()).Send(context.Background(), []string{"a@b.c"}, "s", "", "b"))
}
