package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"shopsphere/pkg/logger"

	"github.com/pobyzaarif/goshortcute"
)

type MailjetConfig struct {
	MailjetBaseURL           string
	MailjetBasicAuthUsername string
	MailjetBasicAuthPassword string
	MailjetSenderEmail       string
	MailjetSenderName        string
}

type MailjetRepository struct {
	cfg    MailjetConfig
	client *http.Client
}

func NewMailjetRepository(cfg MailjetConfig) *MailjetRepository {
	return &MailjetRepository{
		cfg:    cfg,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

type mailjetAddress struct {
	Email string `json:"Email"`
	Name  string `json:"Name"`
}

type mailjetMessage struct {
	From     mailjetAddress   `json:"From"`
	To       []mailjetAddress `json:"To"`
	Subject  string           `json:"Subject"`
	TextPart string           `json:"TextPart"`
	HTMLPart string           `json:"HTMLPart"`
}

type mailjetPayload struct {
	Messages []mailjetMessage `json:"Messages"`
}

func (r *MailjetRepository) SendEmail(toName, toEmail, subject, message string) error {
	payload := mailjetPayload{
		Messages: []mailjetMessage{{
			From: mailjetAddress{
				Email: r.cfg.MailjetSenderEmail,
				Name:  r.cfg.MailjetSenderName,
			},
			To:       []mailjetAddress{{Email: toEmail, Name: toName}},
			Subject:  subject,
			TextPart: message,
			HTMLPart: message,
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, r.cfg.MailjetBaseURL+"/v3.1/send", bytes.NewReader(body))
	if err != nil {
		return err
	}

	basicAuth := goshortcute.StringtoBase64Encode(r.cfg.MailjetBasicAuthUsername + ":" + r.cfg.MailjetBasicAuthPassword)
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Authorization", "Basic "+basicAuth)

	res, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode <= 299 {
		return nil
	}

	resBody, _ := io.ReadAll(res.Body)
	logger.Warn("mailer service returned negative response", "status", res.StatusCode, "body", string(resBody))

	return fmt.Errorf("mailer service return negative response %v", res.StatusCode)
}
