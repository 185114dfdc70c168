package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	announcement "stockroom/internal/domain/announcement"
)

// fakeAnnouncementRepo is an in-memory announcement.Repository.
type fakeAnnouncementRepo struct {
	stored announcement.Announcement
	setErr error
}

func (f *fakeAnnouncementRepo) Get(_ context.Context) (announcement.Announcement, error) {
	return f.stored, nil
}

func (f *fakeAnnouncementRepo) Set(_ context.Context, a announcement.Announcement) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.stored = a
	return nil
}

const ownerEmail = "owner@example.com"

func TestPostOwnerOnly(t *testing.T) {
	repo := &fakeAnnouncementRepo{}
	uc := NewAnnouncementUsecase(repo, ownerEmail).
		WithNow(func() time.Time { return fixedNow })

	// 非オーナーは弾く
	if _, err := uc.Post(context.Background(), "hello", "intruder@example.com"); !errors.Is(err, announcement.ErrNotOwner) {
		t.Errorf("non-owner: got %v, want ErrNotOwner", err)
	}
	if repo.stored.CurrentMessage != "" {
		t.Error("banner written by non-owner")
	}

	// オーナーは大文字小文字を問わず通す
	a, err := uc.Post(context.Background(), "Closed on Monday", "Owner@Example.COM")
	if err != nil {
		t.Fatalf("owner post: %v", err)
	}
	if a.CurrentMessage != "Closed on Monday" {
		t.Errorf("CurrentMessage = %q", a.CurrentMessage)
	}
	if repo.stored.UpdatedBy != "Owner@Example.COM" {
		t.Errorf("UpdatedBy = %q", repo.stored.UpdatedBy)
	}
}

func TestPostEmptyMessage(t *testing.T) {
	uc := NewAnnouncementUsecase(&fakeAnnouncementRepo{}, ownerEmail)
	if _, err := uc.Post(context.Background(), "   ", ownerEmail); !errors.Is(err, announcement.ErrEmptyMessage) {
		t.Errorf("got %v, want ErrEmptyMessage", err)
	}
}

// オーナー未設定時は誰も投稿できない。
func TestPostNoOwnerConfigured(t *testing.T) {
	uc := NewAnnouncementUsecase(&fakeAnnouncementRepo{}, "")
	if _, err := uc.Post(context.Background(), "hello", ownerEmail); !errors.Is(err, announcement.ErrNotOwner) {
		t.Errorf("got %v, want ErrNotOwner", err)
	}
	if uc.CanPost(ownerEmail) {
		t.Error("CanPost = true with no owner configured")
	}
}

func TestCanPost(t *testing.T) {
	uc := NewAnnouncementUsecase(&fakeAnnouncementRepo{}, ownerEmail)
	if !uc.CanPost("OWNER@example.com") {
		t.Error("CanPost(owner) = false")
	}
	if uc.CanPost("someone@example.com") {
		t.Error("CanPost(non-owner) = true")
	}
}

func TestGetReturnsZeroValueWhenUnset(t *testing.T) {
	uc := NewAnnouncementUsecase(&fakeAnnouncementRepo{}, ownerEmail)
	a, err := uc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if a.CurrentMessage != "" {
		t.Errorf("CurrentMessage = %q, want empty", a.CurrentMessage)
	}
}
