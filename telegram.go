package main

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v3"
)

const notifyTimeout = 5 * time.Second

// Notifier announces new inquiries to the site owner.
type Notifier interface {
	NotifyInquiry(ctx context.Context, inquiry *Inquiry) error
}

type noopNotifier struct{}

func (noopNotifier) NotifyInquiry(context.Context, *Inquiry) error { return nil }

type telegramNotifier struct {
	bot     *tele.Bot
	chatIDs []int64
	limiter *rate.Limiter
}

// newNotifier returns a Telegram notifier, or a no-op one when the token or
// the chat ids are missing. apiURL may be empty to use the public API.
func newNotifier(token string, chatIDs []int64, apiURL string) (Notifier, error) {
	if token == "" || len(chatIDs) == 0 {
		return noopNotifier{}, nil
	}

	bot, err := tele.NewBot(tele.Settings{
		URL:     apiURL,
		Token:   token,
		Client:  &http.Client{Timeout: notifyTimeout},
		Offline: true,
	})
	if err != nil {
		return nil, err
	}

	return &telegramNotifier{
		bot:     bot,
		chatIDs: chatIDs,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}, nil
}

func (n *telegramNotifier) NotifyInquiry(ctx context.Context, inquiry *Inquiry) error {
	return n.sendToTelegram(ctx, inquiryMessage(inquiry))
}

func (n *telegramNotifier) sendToTelegram(ctx context.Context, msg string) error {
	opts := &tele.SendOptions{
		ParseMode:             tele.ModeHTML,
		DisableWebPagePreview: true,
	}

	var errs []error
	for _, id := range n.chatIDs {
		err := n.limiter.Wait(ctx)
		if err != nil {
			errs = append(errs, err)
			break
		}

		err = n.send(ctx, id, msg, opts)
		if err != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", id, err))
		}
		if ctx.Err() != nil {
			break
		}
	}
	return errors.Join(errs...)
}

// send delivers msg to one chat, giving up when ctx is done. The bot has
// no context support, so an abandoned request finishes in the background
// within the client timeout.
func (n *telegramNotifier) send(ctx context.Context, chatID int64, msg string, opts *tele.SendOptions) error {
	done := make(chan error, 1)
	go func() {
		_, err := n.bot.Send(&tele.Chat{ID: chatID}, msg, opts)
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func inquiryMessage(inquiry *Inquiry) string {
	track := "—"
	if inquiry.Track != nil {
		track = html.EscapeString(inquiry.Track.Title)
	}
	message := strings.TrimSpace(truncate(inquiry.Message, 500))
	if message == "" {
		message = "—"
	} else {
		message = html.EscapeString(message)
	}

	var b strings.Builder
	b.WriteString("🚨 <b>New inquiry</b>\n")
	fmt.Fprintf(&b, "🎵 Track: %s\n", track)
	fmt.Fprintf(&b, "👤 Name: %s\n", html.EscapeString(inquiry.Name))
	fmt.Fprintf(&b, "📬 Contact: %s\n", html.EscapeString(inquiry.Contact))
	fmt.Fprintf(&b, "🧾 License: %s\n", html.EscapeString(inquiry.LicenseType.Label()))
	fmt.Fprintf(&b, "💬 Message: %s", message)
	return b.String()
}
