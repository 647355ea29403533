package email

import (
	"context"

	"github.com/go-resty/resty/v2"

	"github.com/comeca-ai/leao-pet-vitality/internal/usecase"
)

// ResendClient dispatches transactional email through a Resend-compatible
// JSON API.
type ResendClient struct {
	http *resty.Client
	from string
}

func NewResendClient(apiBase, apiKey, from string) *ResendClient {
	c := resty.New().
		SetBaseURL(apiBase).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")
	return &ResendClient{http: c, from: from}
}

var _ usecase.EmailSender = (*ResendClient)(nil)

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type sendError struct {
	Message string `json:"message"`
}

func (c *ResendClient) Send(ctx context.Context, to, subject, html string) error {
	var fail sendError
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(sendRequest{From: c.from, To: []string{to}, Subject: subject, HTML: html}).
		SetError(&fail).
		Post("/emails")
	if err != nil {
		return usecase.Ef(usecase.KindNetwork, "reach email provider", err)
	}
	if resp.IsError() {
		msg := fail.Message
		if msg == "" {
			msg = resp.Status()
		}
		return usecase.E(usecase.KindInternal, "send email: "+msg)
	}
	return nil
}
