// internal/domain/announcement/entity.go
package announcement

import (
	"errors"
	"strings"
	"time"
)

// Domain errors
var (
	ErrEmptyMessage = errors.New("announcement: message cannot be empty")
	ErrNotOwner     = errors.New("announcement: only the owner may post")
)

// 既存データ互換: appSettings/messages の単一ドキュメント。
const (
	Collection = "appSettings"
	DocID      = "messages"
)

// Announcement is the single global banner shown to every employee.
// UpdatedBy/UpdatedAt は補助情報で、元データに無くても動作する。
type Announcement struct {
	CurrentMessage string    `firestore:"currentMessage" json:"currentMessage"`
	UpdatedBy      string    `firestore:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	UpdatedAt      time.Time `firestore:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// New validates and builds an announcement update.
func New(message, updatedBy string, now time.Time) (Announcement, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Announcement{}, ErrEmptyMessage
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return Announcement{
		CurrentMessage: message,
		UpdatedBy:      strings.TrimSpace(updatedBy),
		UpdatedAt:      now.UTC(),
	}, nil
}
