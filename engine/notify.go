package engine

import (
	"errors"

	"fanhub/gateway"

	"go.uber.org/zap"
)

// ErrNotAuthenticated is returned by mutations attempted without an
// auth token. The gateway is never called in that case.
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrEmptyMessage is returned when a message is empty after trimming.
// This is a local validation failure, surfaced inline at the composer
// rather than as a notification.
var ErrEmptyMessage = errors.New("message content is empty")

// Notifier receives user-visible outcome notifications from mutations.
// The UI implements it as status-bar toasts; tests record the calls.
type Notifier interface {
	Success(text string)
	Error(text string)
}

// notifyMutationError converts a gateway error into the user-visible
// notification: a signer rejection gets the friendly text, anything
// else is surfaced verbatim.
func notifyMutationError(n Notifier, log *zap.Logger, op string, err error) {
	log.Error(op+" failed", zap.Error(err))
	if gateway.IsUserRejected(err) {
		n.Error("User denied transaction signature.")
		return
	}
	n.Error(err.Error())
}
