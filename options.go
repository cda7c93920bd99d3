package algotick

import (
	"github.com/quantforge/algotick/core"
	"github.com/quantforge/algotick/ledger"
)

// Option is a functional option for configuring an Engine instance.
type Option func(*Engine)

// WithLogger replaces the default logger.
func WithLogger(log core.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithStorage persists fills and the equity curve to the given storage.
func WithStorage(storage core.RunStorage) Option {
	return func(e *Engine) {
		e.storage = storage
	}
}

// WithNotifier pushes run events (fills, completion, failure) to the
// given notifier.
func WithNotifier(notifier core.Notifier) Option {
	return func(e *Engine) {
		e.notifier = notifier
	}
}

// SetNotifier attaches a notifier after construction. Notifiers that
// report run status (eg. Telegram) take the engine itself as their
// source and therefore cannot exist before it.
func (e *Engine) SetNotifier(notifier core.Notifier) {
	e.notifier = notifier
}

// WithProgressBar displays tick progress during Run.
func WithProgressBar() Option {
	return func(e *Engine) {
		e.showProgress = true
	}
}

// WithLedgerOptions appends extra options to the run's ledger.
func WithLedgerOptions(options ...ledger.Option) Option {
	return func(e *Engine) {
		e.ledgerOptions = append(e.ledgerOptions, options...)
	}
}

// WithLogLevel adjusts the default logger's level.
func WithLogLevel(level core.Level) Option {
	return func(e *Engine) {
		e.log.SetLevel(level)
	}
}
