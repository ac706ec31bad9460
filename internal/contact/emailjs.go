package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// EmailJSRelay sends messages through the EmailJS REST API, filling the
// configured template with the form fields.
type EmailJSRelay struct {
	Endpoint   string
	ServiceID  string
	TemplateID string
	PublicKey  string
	Client     *http.Client
}

// NewEmailJSRelay returns a relay with an HTTP client bounded by timeout.
func NewEmailJSRelay(endpoint, serviceID, templateID, publicKey string, timeout time.Duration) *EmailJSRelay {
	return &EmailJSRelay{
		Endpoint:   endpoint,
		ServiceID:  serviceID,
		TemplateID: templateID,
		PublicKey:  publicKey,
		Client:     &http.Client{Timeout: timeout},
	}
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

// Name implements Relay.
func (r *EmailJSRelay) Name() string {
	return "emailjs"
}

// Send implements Relay.
func (r *EmailJSRelay) Send(ctx context.Context, m Message) error {
	if r.ServiceID == "" || r.TemplateID == "" || r.PublicKey == "" {
		return errors.New("emailjs identifiers not configured")
	}

	body, err := json.Marshal(emailJSRequest{
		ServiceID:  r.ServiceID,
		TemplateID: r.TemplateID,
		UserID:     r.PublicKey,
		TemplateParams: map[string]string{
			"from_nom":    m.Name,
			"from_prenom": m.Surname,
			"from_email":  m.Email,
			"message":     m.Text,
		},
	})
	if err != nil {
		return errors.Wrap(err, "encode emailjs request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build emailjs request")
	}
	req.Header.Set("Content-Type", "application/json")

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrap(err, "emailjs request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Errorf("emailjs responded %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	return nil
}
