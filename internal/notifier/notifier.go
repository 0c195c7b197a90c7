// Package notifier routes listing events to the chats that care about them.
package notifier

import (
	"fmt"
	"log/slog"

	"h2s_bot/internal/model"
	"h2s_bot/internal/storage"
)

const fetchFailureText = "An error occurred while fetching houses from holland2stay."

// Sender is the interface for delivering one message to one chat.
type Sender interface {
	SendMessage(chatID int64, text string) error
}

// Notifier fans events out over a Sender. Every send is best-effort: a
// failed delivery is logged and skipped, and never blocks delivery to
// other chats or other listings.
type Notifier struct {
	sender   Sender
	snapshot *storage.Snapshot
	log      *slog.Logger
}

// New creates a Notifier.
func New(sender Sender, snapshot *storage.Snapshot, log *slog.Logger) *Notifier {
	return &Notifier{sender: sender, snapshot: snapshot, log: log}
}

// NotifyNew sends each newly found listing to every chat watching the
// listing's city. observers is a copied view of the registry, so no lock
// is held during the fan-out.
func (n *Notifier) NotifyNew(listings []model.Listing, observers map[int64]model.CitySet) {
	for _, l := range listings {
		text := fmt.Sprintf("I found a new house! %s", l)
		for chatID, cities := range observers {
			if _, watching := cities[l.City]; !watching {
				continue
			}
			if err := n.sender.SendMessage(chatID, text); err != nil {
				n.log.Error("send new listing", "chat_id", chatID, "listing", l.Name, "error", err)
			}
		}
	}
}

// NotifyFetchFailure tells every currently registered chat, watched
// cities regardless, that this cycle's fetch failed. It is called at most
// once per failed cycle.
func (n *Notifier) NotifyFetchFailure(observers map[int64]model.CitySet) {
	for chatID := range observers {
		if err := n.sender.SendMessage(chatID, fetchFailureText); err != nil {
			n.log.Error("send fetch failure", "chat_id", chatID, "error", err)
		}
	}
}

// NotifyOnWatch sends every listing currently in the baseline snapshot
// matching city to the chat that just subscribed. The dump is not
// recorded anywhere, so the same listing is only ever re-sent if a future
// cycle re-detects it as new.
func (n *Notifier) NotifyOnWatch(chatID int64, city model.City) {
	for l := range n.snapshot.Current() {
		if l.City != city {
			continue
		}
		if err := n.sender.SendMessage(chatID, fmt.Sprintf("There is this house: %s", l)); err != nil {
			n.log.Error("send baseline listing", "chat_id", chatID, "listing", l.Name, "error", err)
		}
	}
}
