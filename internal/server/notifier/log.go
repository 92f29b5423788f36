package notifier

import (
	"context"

	"github.com/dkotlyar/passfort/internal/logging"
)

// LogNotifier writes notifications to the log instead of delivering them.
// Used for local development and tests.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(l logging.Logger) *LogNotifier {
	return &LogNotifier{logger: l.With("module", "notifier")}
}

func (n *LogNotifier) Send(ctx context.Context, address string, kind TemplateKind, payload map[string]string) error {
	n.logger.Info(ctx, "notification", "to", address, "kind", string(kind), "link", payload["link"])
	return nil
}
