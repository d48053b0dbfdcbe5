package mailer

import "log"

// Mailer is the outbound email contract. Delivery is fire-and-forget from
// the admission core's perspective: failures are logged by callers, never
// retried inline on the request path.
type Mailer interface {
	SendVerifyEmail(to, link string) error
	SendInviteEmail(to, link, role, tenantName string) error
	SendWelcomeEmail(to, tenantName string) error
}

// LogMailer writes outbound mail to the application log. The real template
// rendering and SMTP/SES delivery live in the notification service; this
// implementation stands in wherever that service is not configured.
type LogMailer struct{}

func NewLogMailer() *LogMailer { return &LogMailer{} }

func (m *LogMailer) SendVerifyEmail(to, link string) error {
	log.Printf("mail: verify-email to=%s link=%s", to, link)
	return nil
}

func (m *LogMailer) SendInviteEmail(to, link, role, tenantName string) error {
	log.Printf("mail: invite to=%s role=%s tenant=%q link=%s", to, role, tenantName, link)
	return nil
}

func (m *LogMailer) SendWelcomeEmail(to, tenantName string) error {
	log.Printf("mail: welcome to=%s tenant=%q", to, tenantName)
	return nil
}
