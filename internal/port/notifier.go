package port

import "context"

type Notifier interface {
	Send(ctx context.Context, subject, message string) error
}
