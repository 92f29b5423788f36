package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

var subjects = map[TemplateKind]string{
	KindVerification:  "Verify your email address",
	KindPasswordReset: "Reset your password",
}

var bodies = map[TemplateKind]string{
	KindVerification:  "Follow the link to verify your email address: %s",
	KindPasswordReset: "Follow the link to reset your password: %s",
}

// SMTPNotifier delivers messages over plain SMTP.
type SMTPNotifier struct {
	addr string
	from string
}

func NewSMTPNotifier(addr, from string) *SMTPNotifier {
	return &SMTPNotifier{addr: addr, from: from}
}

func (n *SMTPNotifier) Send(ctx context.Context, address string, kind TemplateKind, payload map[string]string) error {
	subject, ok := subjects[kind]
	if !ok {
		return fmt.Errorf("unknown template kind: %s", kind)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", n.from)
	fmt.Fprintf(&msg, "To: %s\r\n", address)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("\r\n")
	fmt.Fprintf(&msg, bodies[kind], payload["link"])
	msg.WriteString("\r\n")

	if err := smtp.SendMail(n.addr, nil, n.from, []string{address}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send error: %w", err)
	}
	return nil
}
