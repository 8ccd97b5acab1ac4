// Package chat owns the ordered conversation log and reconciles it against the
// server's canonical history.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Role tags a message as authored by the user or the assistant.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn. Position in the log is turn order;
// messages carry no timestamps.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Failure kinds surfaced to callers. Both are non-fatal: the user may retry by
// repeating the action.
var (
	ErrHistoryLoad = errors.New("failed to load chat history")
	ErrSend        = errors.New("failed to send message")
)

// Service is the remote boundary the conversation depends on. SendMessage
// returns the server's full canonical log, which always supersedes local state.
type Service interface {
	GetHistory(ctx context.Context) ([]Message, error)
	SendMessage(ctx context.Context, text string, useRAG bool) ([]Message, error)
}

// Conversation maintains a client view of the conversation that is eventually
// exactly equal to the server's log, while showing user-authored turns
// immediately. It is owned by a single goroutine; the pending flag is the only
// concurrency guard and serializes loads and sends against each other.
type Conversation struct {
	service Service

	messages []Message
	pending  bool
	useRAG   bool
}

func NewConversation(service Service) *Conversation {
	return &Conversation{
		service: service,
		useRAG:  true,
	}
}

// Messages returns a snapshot of the conversation log. The returned slice is a
// copy; later reconciliations do not mutate it.
func (c *Conversation) Messages() []Message {
	return append([]Message(nil), c.messages...)
}

// Pending reports whether a round-trip is outstanding. It governs input
// affordances, not data validity.
func (c *Conversation) Pending() bool {
	return c.pending
}

func (c *Conversation) UseRAG() bool {
	return c.useRAG
}

func (c *Conversation) SetUseRAG(useRAG bool) {
	c.useRAG = useRAG
}

// LoadHistory fetches the canonical message sequence and replaces the local
// log wholesale. On failure the log keeps its prior value; there is no retry.
// A load while a round-trip is outstanding is a no-op.
func (c *Conversation) LoadHistory(ctx context.Context) error {
	if c.pending {
		return nil
	}
	c.pending = true
	defer func() { c.pending = false }()

	messages, err := c.service.GetHistory(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrHistoryLoad, err)
	}

	c.messages = messages
	return nil
}

// Send appends the user's turn optimistically, issues the request, and
// reconciles against the server's canonical log. Whitespace-only text is a
// no-op, as is a send while another is outstanding. On failure exactly the
// optimistic entry is removed and the log reverts to its pre-send state.
func (c *Conversation) Send(ctx context.Context, text string, useRAG bool) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if c.pending {
		// At most one outstanding send at a time
		return nil
	}

	c.messages = append(c.messages, Message{Role: RoleUser, Content: text})
	c.pending = true
	defer func() { c.pending = false }()

	history, err := c.service.SendMessage(ctx, text, useRAG)
	if err != nil {
		c.messages = c.messages[:len(c.messages)-1]
		return fmt.Errorf("%w: %w", ErrSend, err)
	}

	// The server's log includes the just-submitted turn and the generated
	// answer. Replace, never merge: the optimistic entry is superseded, not
	// patched in place.
	c.messages = history
	return nil
}
