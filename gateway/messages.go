package gateway

import (
	"context"
	"fmt"
	"time"

	"fanhub/models"

	"github.com/go-resty/resty/v2"
)

// MessageGateway is the message storage backend. Every call requires
// the signed auth token.
type MessageGateway interface {
	Messages(ctx context.Context, auth models.AuthToken, groupID models.GroupID) ([]models.Message, error)
	Send(ctx context.Context, auth models.AuthToken, groupID models.GroupID, content string) error
}

// HTTPMessages talks to the message service REST API.
type HTTPMessages struct {
	client *resty.Client
}

// NewHTTPMessages creates a message gateway for the given API base URL.
func NewHTTPMessages(baseURL string) *HTTPMessages {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second)
	return &HTTPMessages{client: client}
}

func (g *HTTPMessages) Messages(ctx context.Context, auth models.AuthToken, groupID models.GroupID) ([]models.Message, error) {
	var messages []models.Message
	resp, err := g.client.R().
		SetContext(ctx).
		SetAuthToken(string(auth)).
		SetResult(&messages).
		Get(fmt.Sprintf("/groups/%d/messages", groupID))
	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch messages: unexpected status %s", resp.Status())
	}
	return messages, nil
}

func (g *HTTPMessages) Send(ctx context.Context, auth models.AuthToken, groupID models.GroupID, content string) error {
	resp, err := g.client.R().
		SetContext(ctx).
		SetAuthToken(string(auth)).
		SetBody(map[string]string{"content": content}).
		Post(fmt.Sprintf("/groups/%d/messages", groupID))
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("send message: unexpected status %s", resp.Status())
	}
	return nil
}
