package bot

import (
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/go-cmp/cmp"

	"h2s_bot/internal/config"
	"h2s_bot/internal/model"
	"h2s_bot/internal/notifier"
	"h2s_bot/internal/storage"
)

// --- mocks ---

type sentMsg struct {
	ChatID int64
	Text   string
}

type mockAPI struct {
	mu   sync.Mutex
	sent []sentMsg
}

func (m *mockAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		m.mu.Lock()
		m.sent = append(m.sent, sentMsg{ChatID: msg.ChatID, Text: msg.Text})
		m.mu.Unlock()
	}
	return tgbotapi.Message{}, nil
}

func (m *mockAPI) GetUpdatesChan(_ tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(tgbotapi.UpdatesChannel)
}

func (m *mockAPI) StopReceivingUpdates() {}

func (m *mockAPI) lastText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1].Text
}

func (m *mockAPI) allTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	for i, s := range m.sent {
		out[i] = s.Text
	}
	return out
}

func (m *mockAPI) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
}

// --- helpers ---

func newTestBot(t *testing.T) (*Bot, *mockAPI, *storage.Registry, *storage.Snapshot) {
	t.Helper()
	api := &mockAPI{}
	registry := storage.NewRegistry()
	snapshot := storage.NewSnapshot()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	b := &Bot{
		api:      api,
		registry: registry,
		cfg:      &config.Config{},
		log:      log,
	}
	b.SetNotifier(notifier.New(b, snapshot, log))
	return b, api, registry, snapshot
}

func requireContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("reply missing %q, got:\n%s", want, got)
	}
}

// --- handler tests ---

func TestHandleWatch(t *testing.T) {
	b, api, registry, _ := newTestBot(t)

	b.handleWatch(100, "Delft")

	requireContains(t, api.lastText(), "You are now subscribed to houses in Delft.")
	if diff := cmp.Diff([]model.City{model.Delft}, registry.CitiesOf(100)); diff != "" {
		t.Errorf("registry mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleWatchDumpsBaseline(t *testing.T) {
	b, api, _, snapshot := newTestBot(t)
	snapshot.Replace(model.ListingSet{
		{Name: "A", City: model.Delft}:     {},
		{Name: "C", City: model.Eindhoven}: {},
	})

	b.handleWatch(100, "Delft")

	texts := api.allTexts()
	if diff := cmp.Diff(2, len(texts)); diff != "" {
		t.Fatalf("reply count mismatch (-want +got):\n%s", diff)
	}
	requireContains(t, texts[0], "You are now subscribed to houses in Delft.")
	requireContains(t, texts[1], "There is this house: Delft: A")
}

func TestHandleWatchInvalidCity(t *testing.T) {
	b, api, registry, _ := newTestBot(t)

	b.handleWatch(100, "Amsterdam")

	requireContains(t, api.lastText(), "Usage: /watch <city>")
	requireContains(t, api.lastText(), "Amsterdam")
	if !registry.IsEmpty() {
		t.Error("invalid watch must not touch the registry")
	}

	api.reset()
	b.handleWatch(100, "")
	requireContains(t, api.lastText(), "Usage: /watch <city>")
}

func TestHandleWatchIsCaseInsensitive(t *testing.T) {
	b, _, registry, _ := newTestBot(t)

	b.handleWatch(100, "rotterdam")

	if diff := cmp.Diff([]model.City{model.Rotterdam}, registry.CitiesOf(100)); diff != "" {
		t.Errorf("registry mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleUnwatch(t *testing.T) {
	b, api, registry, _ := newTestBot(t)
	registry.Watch(100, model.Delft)

	b.handleUnwatch(100, "Delft")
	requireContains(t, api.lastText(), "You are now unsubscribed from houses in Delft.")

	b.handleUnwatch(100, "Delft")
	requireContains(t, api.lastText(), "You were already unsubscribed from houses in Delft.")
}

func TestHandleUnsubscribe(t *testing.T) {
	b, api, registry, _ := newTestBot(t)
	registry.Watch(100, model.Rotterdam)
	registry.Watch(100, model.Delft)

	b.handleUnsubscribe(100)
	requireContains(t, api.lastText(), "You are now unsubscribed from Delft,Rotterdam.")
	if !registry.IsEmpty() {
		t.Error("unsubscribe should remove the whole entry")
	}

	b.handleUnsubscribe(100)
	requireContains(t, api.lastText(), "You were already unsubscribed.")
}

func TestHandleSubscriptions(t *testing.T) {
	b, api, registry, _ := newTestBot(t)

	b.handleSubscriptions(100)
	requireContains(t, api.lastText(), "You have no subscriptions.")

	registry.Watch(100, model.Eindhoven)
	registry.Watch(100, model.Delft)
	b.handleSubscriptions(100)
	requireContains(t, api.lastText(), "You are subscribed to Delft,Eindhoven.")
}

func TestHandleHelpListsCities(t *testing.T) {
	b, api, _, _ := newTestBot(t)

	b.handleHelp(100)

	for _, c := range model.AllCities {
		requireContains(t, api.lastText(), c.String())
	}
}

func TestHandleCommandUnknown(t *testing.T) {
	b, api, _, _ := newTestBot(t)

	msg := &tgbotapi.Message{
		Text:     "/frobnicate",
		Chat:     &tgbotapi.Chat{ID: 100},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 11}},
	}
	b.handleCommand(msg)

	requireContains(t, api.lastText(), "Unknown command")
}

func TestHandleCommandWatchWithArgs(t *testing.T) {
	b, api, registry, _ := newTestBot(t)

	msg := &tgbotapi.Message{
		Text:     "/watch Delft",
		Chat:     &tgbotapi.Chat{ID: 100},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
	}
	b.handleCommand(msg)

	requireContains(t, api.lastText(), "You are now subscribed to houses in Delft.")
	if diff := cmp.Diff([]model.City{model.Delft}, registry.CitiesOf(100)); diff != "" {
		t.Errorf("registry mismatch (-want +got):\n%s", diff)
	}
}
