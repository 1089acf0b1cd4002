package mailer

import (
	"errors"
	"fmt"

	mailtpl "github.com/pokebase/pokebase-api/pkg/mailer/templates"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template (+Data) or the Subject/Text/HTML fields are set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "verification_code"
	Data     map[string]any `json:"data,omitempty"`
}

// ErrInvalidJob marks jobs that can never be delivered and should be dropped.
var ErrInvalidJob = errors.New("invalid email job")

// Prepare renders the job's template into Subject, Text and HTML.
func (j *EmailJob) Prepare() error {
	if j.To == "" {
		return fmt.Errorf("%w: missing recipient", ErrInvalidJob)
	}
	if j.Template == "" {
		if j.Subject == "" || (j.Text == "" && j.HTML == "") {
			return fmt.Errorf("%w: empty message", ErrInvalidJob)
		}
		return nil
	}
	s, t, h, err := mailtpl.Render(j.Template, j.Data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}
	j.Subject, j.Text, j.HTML = s, t, h
	return nil
}
