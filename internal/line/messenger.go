// Package line wraps the LINE Messaging API client used to deliver replies.
package line

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// Messenger delivers messages back to LINE. Reply tokens are single-use and
// short-lived; when a reply fails the message is pushed to the source chat
// instead, and delivery failures never propagate to the webhook handler.
type Messenger struct {
	api    *messaging_api.MessagingApiAPI
	logger *slog.Logger
}

// NewMessenger creates a Messenger for the given channel access token.
func NewMessenger(channelToken string, logger *slog.Logger) (*Messenger, error) {
	api, err := messaging_api.NewMessagingApiAPI(channelToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create LINE messaging client: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Messenger{
		api:    api,
		logger: logger.With("component", "line_messenger"),
	}, nil
}

// Reply sends messages using the event's reply token, falling back to a push
// to chatID when the reply is rejected. Errors are logged and swallowed.
func (m *Messenger) Reply(ctx context.Context, replyToken, chatID string, messages ...messaging_api.MessageInterface) {
	if len(messages) == 0 {
		return
	}

	_, err := m.api.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   messages,
	})
	if err == nil {
		return
	}

	m.logger.WarnContext(ctx, "Reply failed, falling back to push", "chat_id", chatID, "error", err)

	if chatID == "" {
		return
	}
	if _, err := m.api.PushMessage(&messaging_api.PushMessageRequest{
		To:       chatID,
		Messages: messages,
	}, ""); err != nil {
		m.logger.ErrorContext(ctx, "Push fallback failed", "chat_id", chatID, "error", err)
	}
}

// ReplyText sends a single text message.
func (m *Messenger) ReplyText(ctx context.Context, replyToken, chatID, text string) {
	m.Reply(ctx, replyToken, chatID, &messaging_api.TextMessage{Text: text})
}
