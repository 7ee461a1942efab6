package gmail

import (
	"context"
	"fmt"
	"time"

	"folioterm/internal/model"

	"go.uber.org/zap"
	gmailv1 "google.golang.org/api/gmail/v1"
)

// Notifier emails a submitter when their message is accepted or rejected.
type Notifier struct {
	svc  *gmailv1.Service
	from string
	log  *zap.Logger
	now  func() time.Time
}

func NewNotifier(svc *gmailv1.Service, from string, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{svc: svc, from: from, log: log, now: time.Now}
}

// StatusChanged sends the notification for msg's new status. Pending messages
// are not announced.
func (n *Notifier) StatusChanged(ctx context.Context, msg model.Message) error {
	e, ok := statusEmail(msg)
	if !ok {
		return nil
	}
	e.From = n.from
	raw, err := compose(e, n.now())
	if err != nil {
		return err
	}
	sent, err := SendMessage(ctx, n.svc, raw)
	if err != nil {
		return err
	}
	n.log.Info("notification sent",
		zap.Stringer("message_id", msg.ID),
		zap.String("status", string(msg.Status)),
		zap.String("gmail_id", sent),
	)
	return nil
}

func statusEmail(msg model.Message) (Email, bool) {
	var subject, body string
	switch msg.Status {
	case model.StatusAccepted:
		subject = "Your message was accepted"
		body = "Hi %s,\n\nThanks for getting in touch. Your message has been accepted and I will reply soon.\n\n> %s\n"
	case model.StatusRejected:
		subject = "About your message"
		body = "Hi %s,\n\nThanks for getting in touch. Unfortunately I cannot follow up on this message.\n\n> %s\n"
	default:
		return Email{}, false
	}
	return Email{
		To:      fmt.Sprintf("%s <%s>", msg.Name, msg.Email),
		Subject: subject,
		Body:    fmt.Sprintf(body, msg.Name, msg.Message),
	}, true
}

// SendMessage sends an RFC 2822 message as the authorised user and returns
// the Gmail message ID.
func SendMessage(ctx context.Context, svc *gmailv1.Service, rfc2822 string) (string, error) {
	user := "me"
	sent, err := svc.Users.Messages.Send(user, &gmailv1.Message{Raw: encodeRaw(rfc2822)}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	return sent.Id, nil
}
