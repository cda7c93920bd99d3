// Package notification provides implementations for run event
// notification services.
package notification

import (
	"fmt"
	"time"

	tb "gopkg.in/tucnak/telebot.v2"

	"github.com/quantforge/algotick/core"
)

const pollingTimeout = 10 * time.Second

// Settings configures the Telegram notifier.
type Settings struct {
	Token string
	// Users are the authorized Telegram user IDs. Messages from anyone
	// else are dropped, and push notifications go to every listed user.
	Users []int
}

// StatusSource exposes the live run state the /status command reports.
type StatusSource interface {
	State() core.LifecycleState
	Ledger() core.Ledger
}

// Telegram implements core.NotifierWithStart over the Telegram bot API.
type Telegram struct {
	settings Settings
	source   StatusSource
	client   *tb.Bot
	log      core.Logger
}

// NewTelegram creates and wires a Telegram notifier.
func NewTelegram(source StatusSource, settings Settings, log core.Logger) (core.NotifierWithStart, error) {
	poller := &tb.LongPoller{Timeout: pollingTimeout}
	middleware := newAuthMiddleware(poller, settings, log)

	client, err := tb.NewBot(tb.Settings{
		ParseMode: tb.ModeMarkdown,
		Token:     settings.Token,
		Poller:    middleware,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	t := &Telegram{
		settings: settings,
		source:   source,
		client:   client,
		log:      log,
	}
	t.registerHandlers()

	return t, nil
}

// newAuthMiddleware drops updates from unauthorized users.
func newAuthMiddleware(poller *tb.LongPoller, settings Settings, log core.Logger) *tb.MiddlewarePoller {
	return tb.NewMiddlewarePoller(poller, func(u *tb.Update) bool {
		if u.Message == nil || u.Message.Sender == nil {
			log.Error("message or sender is nil ", u)
			return false
		}

		for _, user := range settings.Users {
			if u.Message.Sender.ID == user {
				return true
			}
		}

		log.Errorf("unauthorized telegram user: %d", u.Message.Sender.ID)
		return false
	})
}

func (t *Telegram) registerHandlers() {
	t.client.Handle("/status", func(m *tb.Message) {
		t.send(m.Sender, fmt.Sprintf("run state: *%s*", t.source.State()))
	})

	t.client.Handle("/portfolio", func(m *tb.Message) {
		book := t.source.Ledger()
		message := fmt.Sprintf("cash: %.2f\nrealized P&L: %.2f\n", book.Cash(), book.RealizedPnL())
		for _, pos := range book.Positions() {
			message += fmt.Sprintf("%s: %.4f @ %.4f\n", pos.Symbol, pos.Quantity, pos.AvgCost)
		}
		t.send(m.Sender, message)
	})
}

// Start begins the polling loop.
func (t *Telegram) Start() {
	go t.client.Start()
	t.log.Info("telegram notifier started")
}

// Notify implements core.Notifier.
func (t *Telegram) Notify(message string) {
	t.broadcast(message)
}

// OnFill implements core.Notifier.
func (t *Telegram) OnFill(fill core.Fill) {
	t.broadcast(fmt.Sprintf("fill: %s %+.4f @ %.4f (realized %.2f)",
		fill.Symbol, fill.Quantity, fill.Price, fill.Realized))
}

// OnError implements core.Notifier.
func (t *Telegram) OnError(err error) {
	t.broadcast(fmt.Sprintf("run error: `%v`", err))
}

func (t *Telegram) broadcast(message string) {
	for _, user := range t.settings.Users {
		t.send(&tb.User{ID: user}, message)
	}
}

func (t *Telegram) send(to tb.Recipient, message string) {
	if _, err := t.client.Send(to, message); err != nil {
		t.log.WithError(err).Error("failed to send telegram message")
	}
}
