package templates

import (
	"strconv"
	"time"

	"github.com/pokebase/pokebase-api/config"
)

// Option pattern
type Option func(*EmailData)

func WithExpiresIn(dur time.Duration) Option {
	return func(d *EmailData) {
		utc := time.Now().Add(dur).UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04 MST")
		d.ExpiresIn = humanDuration(dur)
	}
}

func WithSupportURL(url string) Option { return func(d *EmailData) { d.SupportURL = url } }

// NewBaseEmailData fills the branding fields from cfg and applies opts.
func NewBaseEmailData(cfg *config.Config, typ, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:  name,
		Email: email,
		Type:  typ,

		CompanyName: cfg.CompanyName,
		AppName:     cfg.AppName,
		SupportURL:  cfg.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewVerificationCodeData(cfg *config.Config, name, email, code string, opts ...Option) map[string]any {
	opts = append([]Option{WithExpiresIn(cfg.VerificationCodeTTL)}, opts...)
	d := NewBaseEmailData(cfg, VerificationCode, name, email, opts...)
	d.Code = code
	return ToMap(d)
}

func humanDuration(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "1 hour"
	case d > 0 && d%time.Hour == 0:
		return strconv.Itoa(int(d/time.Hour)) + " hours"
	case d > 0 && d%time.Minute == 0:
		return strconv.Itoa(int(d/time.Minute)) + " minutes"
	default:
		return d.String()
	}
}
