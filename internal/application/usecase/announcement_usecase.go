// internal/application/usecase/announcement_usecase.go
package usecase

import (
	"context"
	"log"
	"strings"
	"time"

	announcement "stockroom/internal/domain/announcement"
)

// AnnouncementUsecase reads and (owner-only) rewrites the single global
// announcement banner.
type AnnouncementUsecase struct {
	repo announcement.Repository

	// ownerEmail: 投稿を許可する固定のオペレータ identity（完全一致）。
	// ロールシステムではない粗い認可。
	ownerEmail string

	now func() time.Time
}

func NewAnnouncementUsecase(repo announcement.Repository, ownerEmail string) *AnnouncementUsecase {
	return &AnnouncementUsecase{
		repo:       repo,
		ownerEmail: strings.TrimSpace(ownerEmail),
		now:        time.Now,
	}
}

func (u *AnnouncementUsecase) WithNow(now func() time.Time) *AnnouncementUsecase {
	u.now = now
	return u
}

// Get returns the current banner (zero value when none was ever posted).
func (u *AnnouncementUsecase) Get(ctx context.Context) (announcement.Announcement, error) {
	return u.repo.Get(ctx)
}

// Post replaces the banner. Only the configured owner may post.
func (u *AnnouncementUsecase) Post(ctx context.Context, message, byEmail string) (announcement.Announcement, error) {
	byEmail = strings.TrimSpace(byEmail)
	if u.ownerEmail == "" || !strings.EqualFold(byEmail, u.ownerEmail) {
		return announcement.Announcement{}, announcement.ErrNotOwner
	}
	a, err := announcement.New(message, byEmail, u.now())
	if err != nil {
		return announcement.Announcement{}, err
	}
	if err := u.repo.Set(ctx, a); err != nil {
		return announcement.Announcement{}, err
	}
	log.Printf("[announcement] posted by=%s len=%d", byEmail, len(a.CurrentMessage))
	return a, nil
}

// CanPost reports whether the given principal may edit the banner.
// UI 側はこの判定で編集コントロール自体を出し分ける。
func (u *AnnouncementUsecase) CanPost(email string) bool {
	return u.ownerEmail != "" && strings.EqualFold(strings.TrimSpace(email), u.ownerEmail)
}
