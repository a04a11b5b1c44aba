package notify

import (
	"fmt"
	"time"

	"github.com/ThimethZ03/utility-billing-system2/internal/domain/notification"
)

// Provider names
const (
	ProviderNone    = "none"
	ProviderSMTP    = "smtp"
	ProviderFormAPI = "web3forms"
)

// Config selects and configures a transport
type Config struct {
	Provider string
	SMTP     SMTPConfig

	FormAPIEndpoint  string
	FormAPIAccessKey string
	FromName         string

	Timeout time.Duration
}

// NewSender builds the sender for cfg.Provider
func NewSender(cfg Config) (notification.EmailSender, error) {
	switch cfg.Provider {
	case ProviderSMTP:
		smtpCfg := cfg.SMTP
		if smtpCfg.Timeout == 0 {
			smtpCfg.Timeout = cfg.Timeout
		}
		if smtpCfg.FromName == "" {
			smtpCfg.FromName = cfg.FromName
		}
		return NewSMTPSender(smtpCfg)
	case ProviderFormAPI:
		return NewFormAPISender(cfg.FormAPIAccessKey,
			WithEndpoint(cfg.FormAPIEndpoint),
			WithFromName(cfg.FromName),
		)
	case ProviderNone, "":
		return NewNoopSender(), nil
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.Provider)
	}
}
