package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	kit "homeworkbot/internal/transport"
	logx "homeworkbot/pkg/logx"
)

const defaultAPIURL = "https://api.telegram.org"

// Config for the send-only Telegram adapter.
type Config struct {
	Token string
	// APIURL overrides the Bot API base URL (self-hosted bot API server, tests).
	APIURL string
	// Timeout bounds a single HTTP call to the Bot API.
	Timeout time.Duration
}

// Adapter sends messages through the Telegram Bot API. It never polls for
// updates: the bot is created offline and only calls sendMessage.
type Adapter struct {
	cfg Config
	log logx.Logger
	bot *tele.Bot
}

var _ kit.Sender = (*Adapter)(nil)

func New(cfg Config, log logx.Logger) (*Adapter, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	apiURL := strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	b, err := tele.NewBot(tele.Settings{
		Token:   cfg.Token,
		URL:     apiURL,
		Client:  &http.Client{Timeout: timeout},
		Offline: true,
	})
	if err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	cfg.APIURL = apiURL
	cfg.Timeout = timeout
	return &Adapter{cfg: cfg, log: log.With(logx.String("comp", "telegram.adapter")), bot: b}, nil
}

// usernameRecipient addresses a public chat by "@name".
type usernameRecipient string

func (u usernameRecipient) Recipient() string { return string(u) }

func recipientOf(to kit.ChatTarget) tele.Recipient {
	if to.ChatID == 0 && to.Username != "" {
		return usernameRecipient(to.Username)
	}
	return tele.ChatID(to.ChatID)
}

const telegramTextLimit = 4000

// splitTelegramText splits long messages into chunks that are safe to send to Telegram.
// It prefers newline boundaries and (best-effort) avoids splitting inside HTML tags when ParseMode is HTML.
func splitTelegramText(s string, limit int, parseMode string) []string {
	if limit <= 0 {
		limit = telegramTextLimit
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return []string{s}
	}

	out := make([]string, 0, (len(rs)+limit-1)/limit)
	start := 0
	for start < len(rs) {
		end := start + limit
		if end > len(rs) {
			end = len(rs)
		}

		// Prefer splitting on a newline near the end of the window.
		if end < len(rs) {
			cut := -1
			for i := end - 1; i > start; i-- {
				if rs[i] == '\n' {
					// Avoid extremely small chunks.
					if i-start >= limit/3 {
						cut = i + 1
						break
					}
				}
			}
			if cut != -1 {
				end = cut
			}
		}

		// Best-effort: don't split inside a tag for HTML parse mode.
		if strings.EqualFold(parseMode, "HTML") && end < len(rs) {
			lastOpen := -1
			lastClose := -1
			for i := start; i < end; i++ {
				if rs[i] == '<' {
					lastOpen = i
				} else if rs[i] == '>' {
					lastClose = i
				}
			}
			if lastOpen > lastClose && lastOpen > start+1 {
				// Move end to the start of the dangling tag.
				end = lastOpen
				if end <= start {
					end = start + limit
					if end > len(rs) {
						end = len(rs)
					}
				}
			}
		}

		chunk := string(rs[start:end])
		chunk = strings.TrimRight(chunk, "\n")
		out = append(out, chunk)

		start = end
		// Skip leading newlines to avoid empty chunks.
		for start < len(rs) && rs[start] == '\n' {
			start++
		}
	}
	return out
}

// SendText sends text as one or more messages. Each chunk gets a single
// attempt; the first failure is returned. A chunk already in flight when ctx
// ends is waited for, and no further chunks are sent.
func (a *Adapter) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	if to.IsZero() {
		return kit.MessageRef{}, errors.New("telegram: empty chat target")
	}
	if opt == nil {
		opt = &kit.SendOptions{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	chunks := splitTelegramText(text, telegramTextLimit, opt.ParseMode)
	rcpt := recipientOf(to)

	var first kit.MessageRef
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return first, err
		}
		msg, err := a.send(ctx, rcpt, chunk, &tele.SendOptions{
			ParseMode:             opt.ParseMode,
			DisableWebPagePreview: opt.DisablePreview,
			ThreadID:              to.ThreadID,
		})
		if err != nil {
			return first, err
		}
		if i == 0 && msg != nil {
			first = kit.MessageRef{ChatID: to.ChatID, ThreadID: to.ThreadID, MessageID: msg.ID}
			if msg.Chat != nil {
				first.ChatID = msg.Chat.ID
			}
		}
		if len(chunks) > 1 {
			a.log.Debug("chunk sent", logx.Int("part", i+1), logx.Int("parts", len(chunks)))
		}
	}
	return first, nil
}

// send waits for bot.Send even when ctx ends first, so a message the API
// accepted is never reported as failed. telebot has no context-aware API; the
// call is bounded by Config.Timeout instead.
func (a *Adapter) send(ctx context.Context, to tele.Recipient, text string, opt *tele.SendOptions) (*tele.Message, error) {
	msg, err := a.bot.Send(to, text, opt)
	if err != nil && ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %w", ctx.Err(), err)
	}
	return msg, err
}
