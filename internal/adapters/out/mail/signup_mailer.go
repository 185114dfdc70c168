// internal/adapters/out/mail/signup_mailer.go
package mail

import (
	"context"
	"fmt"
	"strings"

	"stockroom/internal/application/usecase"
)

// EmailClient は実際のメール送信クライアント（SMTP / SendGrid / SES など）を
// 抽象化した下位レベルのインターフェースです。
type EmailClient interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// SignupMailer は usecase.SignupMailerPort の具象実装で、
// 内部で EmailClient を利用してメール送信を行います。
//
// 新規登録直後は isAllowed=false のため、管理者承認待ちであることを
// 本人に伝えるのが目的。
type SignupMailer struct {
	client      EmailClient
	fromAddress string
	appBaseURL  string // 例: "https://stockroom.example.com"
}

func NewSignupMailer(client EmailClient, fromAddress, appBaseURL string) *SignupMailer {
	return &SignupMailer{
		client:      client,
		fromAddress: fromAddress,
		appBaseURL:  strings.TrimRight(appBaseURL, "/"),
	}
}

// Compile-time check
var _ usecase.SignupMailerPort = (*SignupMailer)(nil)

// SendSignupNotice sends the "account created, pending approval" notice.
func (m *SignupMailer) SendSignupNotice(ctx context.Context, toEmail string) error {
	subject := "Stockroom: account created"

	body := fmt.Sprintf(
		`Your Stockroom account has been created.

An administrator still has to approve it before you can sign in.
You will be able to use the app at:

  %s

If you did not request this account, you can ignore this message.

--
Stockroom`,
		m.appBaseURL,
	)

	return m.client.Send(ctx, m.fromAddress, strings.TrimSpace(toEmail), subject, body)
}
