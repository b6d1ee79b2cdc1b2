package mvvm

import (
	"log/slog"
)

// Base is embedded by view-models. It carries validation state, the
// notification sink and the logger. Construct it in place:
//
//	vm := &ArticleViewModel{Base: mvvm.Base{Notifier: n, Logger: l}}
type Base struct {
	Validatable

	Notifier Notifier
	Logger   *slog.Logger
}

// Notify forwards message to the notifier; without one it is only logged.
func (b *Base) Notify(message string) {
	if b.Notifier != nil {
		b.Notifier.Notify(message)
		return
	}
	b.logger().Info("notification", "message", message)
}

func (b *Base) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.Default()
	}
	return b.Logger
}
