package engine

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"fanhub/gateway"
	"fanhub/models"

	"go.uber.org/zap"
)

// Entry is a message annotated for presentation.
type Entry struct {
	models.Message
	// ShowDate marks a calendar-day boundary: true for the first
	// message and whenever the local day differs from the previous
	// message's.
	ShowDate bool
	// Own marks the caller's messages, by case-insensitive sender
	// equality.
	Own bool
}

// Annotate computes the presentation flags for an ordered message
// sequence. The input is assumed already in ascending-timestamp send
// order; no re-sorting happens here.
func Annotate(messages []models.Message, self models.Address) []Entry {
	entries := make([]Entry, len(messages))
	var lastDay string
	for i, msg := range messages {
		day := msg.Day()
		entries[i] = Entry{
			Message:  msg,
			ShowDate: i == 0 || day != lastDay,
			Own:      msg.Sender.Equal(self),
		}
		lastDay = day
	}
	return entries
}

// MessageStream owns the message read query and the send mutation for
// one group. The read is only active while the stream is activated
// (the gate yielded member) and the caller holds an auth token.
type MessageStream struct {
	engine *Engine
	gw     gateway.MessageGateway
	notify Notifier
	log    *zap.Logger

	auth    models.AuthToken
	groupID models.GroupID
	self    models.Address
	key     Key

	sendBusy atomic.Bool
}

// NewMessageStream registers the messages read, initially inactive.
func NewMessageStream(e *Engine, gw gateway.MessageGateway, notify Notifier, log *zap.Logger, auth models.AuthToken, groupID models.GroupID, self models.Address, pollInterval time.Duration) *MessageStream {
	s := &MessageStream{
		engine:  e,
		gw:      gw,
		notify:  notify,
		log:     log,
		auth:    auth,
		groupID: groupID,
		self:    self,
		key:     Key{Kind: KindMessages, GroupID: groupID},
	}
	e.Register(s.key, pollInterval, false, func(ctx context.Context) (any, error) {
		return gw.Messages(ctx, auth, groupID)
	})
	return s
}

// SetActive enables or disables the messages read. The UI activates the
// stream once the access gate yields member. Activation without an auth
// token is a no-op.
func (s *MessageStream) SetActive(active bool) {
	s.engine.SetEnabled(s.key, active && s.auth != "")
}

// Messages returns the last fetched message sequence.
func (s *MessageStream) Messages() []models.Message {
	msgs, _ := ValueAs[[]models.Message](s.engine, s.key)
	return msgs
}

// Entries returns the annotated message sequence for presentation.
func (s *MessageStream) Entries() []Entry {
	return Annotate(s.Messages(), s.self)
}

// Sending reports whether a send is in flight.
func (s *MessageStream) Sending() bool {
	return s.sendBusy.Load()
}

// Refresh synchronously re-reads the message list.
func (s *MessageStream) Refresh(ctx context.Context) error {
	return s.engine.Refetch(ctx, s.key)
}

// Send submits a message. Content must be non-empty after trimming;
// that is validated here, before any network activity, and surfaced
// inline rather than as a notification. On success the message list is
// refetched before returning, so the sent message is visible to the
// next render. On failure the composer keeps its content for a retry.
func (s *MessageStream) Send(ctx context.Context, content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyMessage
	}
	if s.auth == "" {
		s.notify.Error("Not authenticated")
		return ErrNotAuthenticated
	}
	s.sendBusy.Store(true)
	defer s.sendBusy.Store(false)

	if err := s.gw.Send(ctx, s.auth, s.groupID, content); err != nil {
		notifyMutationError(s.notify, s.log, "send message", err)
		return err
	}
	if err := s.engine.Refetch(ctx, s.key); err != nil {
		s.log.Warn("post-send refetch failed", zap.Error(err))
	}
	return nil
}
