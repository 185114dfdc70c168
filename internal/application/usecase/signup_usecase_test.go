package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	user "stockroom/internal/domain/user"
)

// fakeAuth implements AuthPort.
type fakeAuth struct {
	uid   string
	err   error
	calls int
}

func (f *fakeAuth) CreateUser(_ context.Context, _, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.uid, nil
}

// fakeUserRepo implements user.Repository.
type fakeUserRepo struct {
	profiles  map[string]user.Profile
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{profiles: map[string]user.Profile{}}
}

func (f *fakeUserRepo) GetByUID(_ context.Context, uid string) (user.Profile, error) {
	p, ok := f.profiles[uid]
	if !ok {
		return user.Profile{}, user.ErrNotFound
	}
	return p, nil
}

func (f *fakeUserRepo) Create(_ context.Context, p user.Profile) (user.Profile, error) {
	if f.createErr != nil {
		return user.Profile{}, f.createErr
	}
	f.profiles[p.UID] = p
	return p, nil
}

// fakeMailer implements SignupMailerPort.
type fakeMailer struct {
	sent []string
	err  error
}

func (f *fakeMailer) SendSignupNotice(_ context.Context, toEmail string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, toEmail)
	return nil
}

func TestSignUpCreatesPendingProfile(t *testing.T) {
	auth := &fakeAuth{uid: "uid-123"}
	users := newFakeUserRepo()
	mailer := &fakeMailer{}
	uc := NewSignupUsecase(auth, users, mailer).
		WithNow(func() time.Time { return fixedNow })

	p, err := uc.SignUp(context.Background(), "new@example.com", "secret99", "+821012345678", "emp-7")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if p.UID != "uid-123" {
		t.Errorf("UID = %q", p.UID)
	}
	if p.IsAllowed {
		t.Error("new profile must start pending approval (isAllowed=false)")
	}
	if p.EmployeeID != "emp-7" {
		t.Errorf("EmployeeID = %q", p.EmployeeID)
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != "new@example.com" {
		t.Errorf("mail sent to %v", mailer.sent)
	}
}

func TestSignUpValidation(t *testing.T) {
	auth := &fakeAuth{uid: "uid-123"}
	uc := NewSignupUsecase(auth, newFakeUserRepo(), nil)

	tests := []struct {
		name                    string
		email, password, mobile string
		want                    error
	}{
		{"no email", "", "secret99", "+821012345678", ErrMissingSignupArg},
		{"no password", "a@b.com", "", "+821012345678", ErrMissingSignupArg},
		{"no mobile", "a@b.com", "secret99", "", ErrMissingSignupArg},
		{"bad mobile", "a@b.com", "secret99", "not-a-number", user.ErrInvalidMobileNumber},
		{"too short mobile", "a@b.com", "secret99", "12345", user.ErrInvalidMobileNumber},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.SignUp(context.Background(), tt.email, tt.password, tt.mobile, "")
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
	if auth.calls != 0 {
		t.Errorf("auth.CreateUser called %d times on invalid input", auth.calls)
	}
}

func TestSignUpAuthErrorsPropagate(t *testing.T) {
	auth := &fakeAuth{err: ErrEmailInUse}
	users := newFakeUserRepo()
	uc := NewSignupUsecase(auth, users, nil)

	_, err := uc.SignUp(context.Background(), "dup@example.com", "secret99", "+821012345678", "")
	if !errors.Is(err, ErrEmailInUse) {
		t.Errorf("got %v, want ErrEmailInUse", err)
	}
	if len(users.profiles) != 0 {
		t.Error("profile created despite auth failure")
	}
}

// メール失敗はサインアップを失敗させない。
func TestSignUpMailFailureIsTolerated(t *testing.T) {
	auth := &fakeAuth{uid: "uid-9"}
	users := newFakeUserRepo()
	mailer := &fakeMailer{err: errors.New("sendgrid down")}
	uc := NewSignupUsecase(auth, users, mailer)

	if _, err := uc.SignUp(context.Background(), "a@b.com", "secret99", "+821012345678", ""); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if len(users.profiles) != 1 {
		t.Error("profile missing")
	}
}
