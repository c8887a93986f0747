package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ignatzorin/marketplace-backend/internal/logger"
)

// Mailer отправляет транзакционные письма.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// PlunkMailer отправляет письма через HTTP API Plunk.
type PlunkMailer struct {
	apiURL string
	apiKey string
	from   string
	client *http.Client
}

// NewPlunkMailer создаёт почтовый клиент.
// При пустом ключе возвращается nil: вызывающие обязаны проверять.
func NewPlunkMailer(apiURL, apiKey, from string) *PlunkMailer {
	if apiKey == "" {
		return nil
	}
	return &PlunkMailer{
		apiURL: apiURL,
		apiKey: apiKey,
		from:   from,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type plunkPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	From    string `json:"from,omitempty"`
}

// Send отправляет одно письмо.
func (m *PlunkMailer) Send(ctx context.Context, to, subject, body string) error {
	payload, err := json.Marshal(plunkPayload{To: to, Subject: subject, Body: body, From: m.from})
	if err != nil {
		return fmt.Errorf("mail: не удалось сериализовать письмо: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("mail: не удалось создать запрос: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("mail: запрос к plunk не удался: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("mail: plunk вернул статус %d", resp.StatusCode)
	}

	logger.Log.WithField("to", to).Debug("письмо отправлено")
	return nil
}
