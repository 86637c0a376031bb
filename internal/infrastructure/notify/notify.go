// Package notify holds the pieces shared by the confirmation notifiers and
// the development notifier that only logs.
package notify

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// ConfirmationLink appends the escaped token as the last path segment of base.
func ConfirmationLink(base, token string) string {
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(token)
}

// Log writes confirmation links to the application log instead of delivering them.
type Log struct {
	log     *zap.Logger
	baseURL string
}

func NewLog(log *zap.Logger, baseURL string) *Log {
	return &Log{log: log, baseURL: baseURL}
}

func (n *Log) NotifyConfirmation(_ context.Context, to, token string) error {
	n.log.Info("confirmation link",
		zap.String("to", to),
		zap.String("link", ConfirmationLink(n.baseURL, token)),
	)
	return nil
}
