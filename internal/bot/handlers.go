package bot

import (
	"fmt"
	"strings"

	"h2s_bot/internal/model"
)

func (b *Bot) handleStart(chatID int64) {
	b.reply(chatID, `Welcome to the Holland2Stay notify bot!

Watch cities and get a message the moment a new house shows up.

Quick start:
1. /watch Delft — get notified about new houses in Delft
2. /subscriptions — see what you are watching

Use /help for the full command reference.`)
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, fmt.Sprintf(`Commands:
/watch <city> — watch a city for new houses
/unwatch <city> — stop watching a city
/subscriptions — list the cities you watch
/unsubscribe — stop watching everything

Supported cities: %s`, model.CityNames()))
}

func (b *Bot) handleWatch(chatID int64, args string) {
	city, err := parseCityArg(args)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Usage: /watch <city>\n%v", err))
		return
	}

	b.registry.Watch(chatID, city)
	b.reply(chatID, fmt.Sprintf("You are now subscribed to houses in %s.", city))

	// Show what is already on the market right away; future cycles only
	// report listings that are new relative to the baseline.
	b.notify.NotifyOnWatch(chatID, city)
}

func (b *Bot) handleUnwatch(chatID int64, args string) {
	city, err := parseCityArg(args)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Usage: /unwatch <city>\n%v", err))
		return
	}

	if b.registry.Unwatch(chatID, city) {
		b.reply(chatID, fmt.Sprintf("You are now unsubscribed from houses in %s.", city))
	} else {
		b.reply(chatID, fmt.Sprintf("You were already unsubscribed from houses in %s.", city))
	}
}

func (b *Bot) handleUnsubscribe(chatID int64) {
	cities, ok := b.registry.UnsubscribeAll(chatID)
	if !ok {
		b.reply(chatID, "You were already unsubscribed.")
		return
	}
	b.reply(chatID, fmt.Sprintf("You are now unsubscribed from %s.", joinCities(cities)))
}

func (b *Bot) handleSubscriptions(chatID int64) {
	cities := b.registry.CitiesOf(chatID)
	if len(cities) == 0 {
		b.reply(chatID, "You have no subscriptions.")
		return
	}
	b.reply(chatID, fmt.Sprintf("You are subscribed to %s.", joinCities(cities)))
}

func parseCityArg(args string) (model.City, error) {
	s := strings.TrimSpace(args)
	if s == "" {
		return "", fmt.Errorf("city is required, supported: %s", model.CityNames())
	}
	return model.ParseCity(s)
}

func joinCities(cities []model.City) string {
	names := make([]string, len(cities))
	for i, c := range cities {
		names[i] = c.String()
	}
	return strings.Join(names, ",")
}
