package client

import (
	"bytes"
	"context"
	"encoding/json"
	"github.com/pkg/errors"
	"io"
	"net/http"
	"pricewatch/internal/misc"
)

const defaultTelegramAPIURL = "https://api.telegram.org"

type telegramSendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type telegramSendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// SendMessage delivers text to a chat through the Telegram Bot API using the
// user's own bot token. The token is never included in errors or logs.
func (c Client) SendMessage(ctx context.Context, botToken string, chatID string, text string) error {
	reqBody, err := json.Marshal(telegramSendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return errors.Wrapf(err, "SendMessage: error marshalling request for chat: %s", chatID)
	}

	baseURL := c.TelegramAPIURL
	if baseURL == "" {
		baseURL = defaultTelegramAPIURL
	}
	req, err := newRequest(http.MethodPost, baseURL+"/bot"+botToken+"/sendMessage", bytes.NewReader(reqBody))
	if err != nil {
		return errors.Wrapf(err, "SendMessage: error creating HTTP request for chat: %s", chatID)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req.WithContext(ctx))
	if err != nil {
		return errors.Wrapf(err, "SendMessage: error doing request for chat: %s", chatID)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.Logger.Errorf("SendMessage: error closing response body for chat: %s, err: %v", chatID, err)
		}
	}()

	body, err := io.ReadAll(http.MaxBytesReader(nil, resp.Body, 300000))
	if err != nil {
		return errors.Wrapf(err, "SendMessage: error reading Telegram response body for chat: %s", chatID)
	}
	tgResp := telegramSendMessageResponse{}
	if err = json.Unmarshal(body, &tgResp); err != nil {
		return errors.Wrapf(err, "SendMessage: error unmarshalling Telegram response body for chat: %s, status: %s, body: %s",
			chatID, resp.Status, misc.BytesLimit(body, 2000))
	}
	if !tgResp.OK {
		return errors.Errorf("SendMessage: Telegram API rejected message for chat: %s, status: %s, description: %s",
			chatID, resp.Status, tgResp.Description)
	}
	return nil
}
