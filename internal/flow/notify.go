package flow

import (
	"errors"

	"github.com/bigode/bigode-booking/pkg/logger"
)

type NotificationKind string

const (
	NotifyInfo    NotificationKind = "info"
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
	NotifyTurn    NotificationKind = "turn"
)

// Notification is a user-visible toast.
type Notification struct {
	Kind    NotificationKind
	Title   string
	Message string
}

type Notifier interface {
	Notify(n Notification)
}

type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

type logNotifier struct{}

func (logNotifier) Notify(n Notification) {
	logger.Info("notification", "kind", n.Kind, "title", n.Title, "message", n.Message)
}

// userMessager is implemented by backend errors that carry a message meant
// for the end user.
type userMessager interface {
	UserMessage() string
}

func errorNote(title string, err error, fallback string) Notification {
	msg := fallback
	var um userMessager
	if errors.As(err, &um) && um.UserMessage() != "" {
		msg = um.UserMessage()
	}
	return Notification{Kind: NotifyError, Title: title, Message: msg}
}
