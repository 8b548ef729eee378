package reminder

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"taskdeck/internal/model"
	"taskdeck/internal/remote"
	"taskdeck/internal/remote/remotetest"
)

var clock = time.Date(2030, 3, 10, 12, 0, 0, 0, time.UTC)

type captured struct {
	got []Due
	err error
}

func (c *captured) Notify(_ context.Context, d Due) error {
	if c.err != nil {
		return c.err
	}
	c.got = append(c.got, d)
	return nil
}

func seed(t *testing.T, fake *remotetest.Fake, taskID string, at time.Time) model.Reminder {
	t.Helper()
	r, err := fake.CreateReminder(context.Background(), model.ReminderInput{TaskID: taskID, ReminderTime: at, ReminderType: model.Reminder1Hour})
	if err != nil {
		t.Fatalf("CreateReminder: %v", err)
	}
	return r
}

func TestScanner_DeliversDueReminders(t *testing.T) {
	t.Parallel()

	fake := remotetest.New(
		model.Task{ID: "1", Title: "Pay rent", DueDate: "2030-03-11"},
		model.Task{ID: "2", Title: "Later"},
	)
	past := seed(t, fake, "1", clock.Add(-time.Minute))
	seed(t, fake, "2", clock.Add(time.Hour))
	seed(t, fake, "ghost", clock.Add(-time.Hour))

	sink := &captured{}
	s := NewScanner(fake, sink, zerolog.Nop(), func() time.Time { return clock })

	n, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if n != 1 || len(sink.got) != 1 {
		t.Fatalf("expected exactly one delivery, got n=%d sink=%+v", n, sink.got)
	}
	if sink.got[0].Reminder.ID != past.ID || sink.got[0].Task.ID != "1" {
		t.Fatalf("unexpected delivery: %+v", sink.got[0])
	}
	if got := sink.got[0].Text(); got != "Reminder: Pay rent (due 2030-03-11)" {
		t.Fatalf("unexpected text %q", got)
	}

	// Already sent reminders are not delivered twice.
	n, err = s.Scan(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("second scan: got n=%d err=%v", n, err)
	}

	rems, _ := fake.ListReminders(context.Background())
	for _, r := range rems {
		if r.ID == past.ID && (r.SentAt == nil || !r.SentAt.Equal(clock)) {
			t.Fatalf("expected reminder marked sent at %v, got %v", clock, r.SentAt)
		}
	}
}

func TestScanner_FailedDeliveryStaysUnsent(t *testing.T) {
	t.Parallel()

	fake := remotetest.New(model.Task{ID: "1", Title: "a"})
	seed(t, fake, "1", clock.Add(-time.Minute))

	s := NewScanner(fake, &captured{err: errors.New("offline")}, zerolog.Nop(), func() time.Time { return clock })
	n, err := s.Scan(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("Scan: got n=%d err=%v", n, err)
	}
	if calls := fake.Calls("MarkReminderSent"); calls != 0 {
		t.Fatalf("expected no MarkReminderSent calls, got %d", calls)
	}
}

func TestScanner_ListFailure(t *testing.T) {
	t.Parallel()

	fake := remotetest.New()
	fake.Before = remotetest.RejectWith("ListReminders", remote.TransientError{Op: "list", Err: errors.New("down")})
	s := NewScanner(fake, &captured{}, zerolog.Nop(), func() time.Time { return clock })
	if _, err := s.Scan(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestTimeFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		due     string
		typ     model.ReminderType
		want    time.Time
		wantErr bool
	}{
		{name: "10min", due: "2030-03-11", typ: model.Reminder10Min, want: time.Date(2030, 3, 10, 23, 50, 0, 0, time.UTC)},
		{name: "1h", due: "2030-03-11", typ: model.Reminder1Hour, want: time.Date(2030, 3, 10, 23, 0, 0, 0, time.UTC)},
		{name: "1d", due: "2030-03-11", typ: model.Reminder1Day, want: time.Date(2030, 3, 10, 0, 0, 0, 0, time.UTC)},
		{name: "no due date", due: "", typ: model.Reminder1Day, wantErr: true},
		{name: "bad date", due: "11/03/2030", typ: model.Reminder1Day, wantErr: true},
		{name: "bad type", due: "2030-03-11", typ: "2w", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := TimeFor(tc.due, tc.typ)
			if tc.wantErr {
				if !remote.IsValidation(err) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("TimeFor: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

type fakeSender struct {
	sent []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func TestTelegramNotifier_SendsToChat(t *testing.T) {
	t.Parallel()

	fs := &fakeSender{}
	n := &TelegramNotifier{api: fs, chatID: 42}
	d := Due{Task: model.Task{ID: "1", Title: "Call mom"}}
	if err := n.Notify(context.Background(), d); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(fs.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(fs.sent))
	}
	msg, ok := fs.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("unexpected chattable %T", fs.sent[0])
	}
	if msg.ChatID != 42 || msg.Text != "Reminder: Call mom" {
		t.Fatalf("unexpected message: chat=%d text=%q", msg.ChatID, msg.Text)
	}
}

func TestNewTelegramNotifier_RequiresConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewTelegramNotifier("", 1); err == nil {
		t.Fatalf("expected error for empty token")
	}
	if _, err := NewTelegramNotifier("token", 0); err == nil {
		t.Fatalf("expected error for missing chat id")
	}
}

func TestMulti_JoinsErrors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	m := Multi{WriterNotifier{W: &buf}, &captured{err: errors.New("nope")}}
	err := m.Notify(context.Background(), Due{Task: model.Task{Title: "x"}})
	if err == nil || !strings.Contains(err.Error(), "nope") {
		t.Fatalf("expected joined error, got %v", err)
	}
	if buf.String() != "Reminder: x\n" {
		t.Fatalf("writer sink still expected to run, got %q", buf.String())
	}
}

func TestScheduler_Every(t *testing.T) {
	t.Parallel()

	s := NewScheduler(time.UTC)
	if _, err := s.Every(0, func() {}); err == nil {
		t.Fatalf("expected error for zero interval")
	}
	if _, err := s.Every(500*time.Millisecond, func() {}); err != nil {
		t.Fatalf("sub-second interval should round up: %v", err)
	}

	ran := make(chan struct{}, 1)
	if _, err := s.Every(time.Second, func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	}); err != nil {
		t.Fatalf("Every: %v", err)
	}
	if s.Entries() != 2 {
		t.Fatalf("expected 2 entries, got %d", s.Entries())
	}
	s.Start()
	defer s.Stop()
	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatalf("job did not run")
	}
}
