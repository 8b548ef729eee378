package store

import (
	"crypto/rand"
	"encoding/base32"
	"strings"

	"github.com/google/uuid"
)

// idEncoding renders random bytes as lowercase, unpadded base32.
var idEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// newRandomID returns "<prefix>-" followed by 8 base32 characters (40 random
// bits). Task, subtask and category ids are short because people type them.
func newRandomID(prefix string) (string, error) {
	raw := make([]byte, 5)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return prefix + "-" + strings.ToLower(idEncoding.EncodeToString(raw)), nil
}

// newReminderID uses a UUID; reminders are never typed by hand.
func newReminderID() string {
	return "rem-" + uuid.NewString()
}
