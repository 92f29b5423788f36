// Package notifier abstracts outbound message delivery. The core treats
// delivery as fire-and-forget: a bounced message never undoes the state that
// triggered it, and re-requesting is the recovery path.
package notifier

import "context"

// TemplateKind selects which message is delivered.
type TemplateKind string

const (
	KindVerification  TemplateKind = "verification"
	KindPasswordReset TemplateKind = "password-reset"
)

// Notifier delivers a templated message to an address. The payload carries
// template parameters such as the redemption link.
type Notifier interface {
	Send(ctx context.Context, address string, kind TemplateKind, payload map[string]string) error
}
