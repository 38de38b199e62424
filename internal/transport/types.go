package transport

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// ChatTarget addresses a chat either by numeric id or by public @username.
type ChatTarget struct {
	ChatID   int64
	Username string // "@channel"; used when ChatID is 0
	ThreadID int    // telegram forum topic thread id (0 if none)
}

func (t ChatTarget) IsZero() bool { return t.ChatID == 0 && t.Username == "" }

func (t ChatTarget) String() string {
	if t.Username != "" {
		return t.Username
	}
	return strconv.FormatInt(t.ChatID, 10)
}

// ParseChatTarget accepts "123456", "-100123456" or "@channel".
func ParseChatTarget(s string) (ChatTarget, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ChatTarget{}, errors.New("chat id is empty")
	}
	if strings.HasPrefix(s, "@") {
		if len(s) < 2 || strings.ContainsAny(s, " \t\n") {
			return ChatTarget{}, errors.New("invalid chat username: " + s)
		}
		return ChatTarget{Username: s}, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id == 0 {
		return ChatTarget{}, errors.New("chat id must be a non-zero integer or @username: " + s)
	}
	return ChatTarget{ChatID: id}, nil
}

type MessageRef struct {
	ChatID    int64
	ThreadID  int
	MessageID int
}

type SendOptions struct {
	ParseMode      string
	DisablePreview bool
}

// Sender delivers text to a chat. Implementations make exactly one delivery
// attempt per chunk and do not retry.
type Sender interface {
	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)
}
