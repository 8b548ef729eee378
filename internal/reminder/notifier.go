package reminder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"taskdeck/internal/model"
)

// Due is one reminder ready for delivery, with the task it belongs to.
type Due struct {
	Reminder model.Reminder
	Task     model.Task
}

// Text renders the message every sink delivers.
func (d Due) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reminder: %s", d.Task.Title)
	if d.Task.DueDate != "" {
		fmt.Fprintf(&b, " (due %s)", d.Task.DueDate)
	}
	return b.String()
}

type Notifier interface {
	Notify(ctx context.Context, d Due) error
}

type WriterNotifier struct {
	W io.Writer
}

func (n WriterNotifier) Notify(_ context.Context, d Due) error {
	_, err := fmt.Fprintln(n.W, d.Text())
	return err
}

type LogNotifier struct {
	Log zerolog.Logger
}

func (n LogNotifier) Notify(_ context.Context, d Due) error {
	n.Log.Info().
		Str("reminder", d.Reminder.ID).
		Str("task", d.Task.ID).
		Time("at", d.Reminder.ReminderTime).
		Msg(d.Text())
	return nil
}

// sender is the part of *tgbotapi.BotAPI the notifier uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramNotifier struct {
	api    sender
	chatID int64
}

// NewTelegramNotifier logs in with token (one getMe round trip).
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if chatID == 0 {
		return nil, errors.New("telegram chat id is not set")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	return &TelegramNotifier{api: api, chatID: chatID}, nil
}

func (n *TelegramNotifier) Notify(_ context.Context, d Due) error {
	msg := tgbotapi.NewMessage(n.chatID, d.Text())
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// Multi delivers to every sink and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, d Due) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
