package push

import (
	"context"

	"go.uber.org/zap"
)

// Message is a platform-neutral push payload.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

// Result summarizes one delivery. InvalidTokens lists tokens the provider
// rejected as unregistered and should be forgotten.
type Result struct {
	Sent          int
	Failed        int
	InvalidTokens []string
}

type Sender interface {
	Send(ctx context.Context, tokens []string, msg Message) (Result, error)
}

// NoopSender is used when push is disabled. It only logs.
type NoopSender struct {
	log *zap.Logger
}

func NewNoopSender(logger *zap.Logger) *NoopSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoopSender{log: logger}
}

func (s *NoopSender) Send(_ context.Context, tokens []string, msg Message) (Result, error) {
	s.log.Debug("push disabled, dropping message",
		zap.Int("tokens", len(tokens)),
		zap.String("title", msg.Title),
	)
	return Result{}, nil
}
