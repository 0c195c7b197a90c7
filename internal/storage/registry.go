// Package storage holds the two shared mutable resources of the bot: the
// subscription registry and the baseline snapshot. Both live for the
// process lifetime only and are guarded by their own mutex so that the
// poller and concurrent command handlers never observe partial state.
package storage

import (
	"sort"
	"sync"

	"h2s_bot/internal/model"
)

// Registry maps chat IDs to the set of cities they watch.
// The zero value is not usable; create one with NewRegistry.
type Registry struct {
	mu        sync.Mutex
	observers map[int64]model.CitySet
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{observers: make(map[int64]model.CitySet)}
}

// Watch subscribes a chat to a city. Watching the same city twice is a no-op.
func (r *Registry) Watch(chatID int64, city model.City) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cities, ok := r.observers[chatID]
	if !ok {
		cities = make(model.CitySet)
		r.observers[chatID] = cities
	}
	cities[city] = struct{}{}
}

// Unwatch removes a city from a chat's watchlist. It reports whether the
// city was actually present.
func (r *Registry) Unwatch(chatID int64, city model.City) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cities, ok := r.observers[chatID]
	if !ok {
		return false
	}
	if _, ok := cities[city]; !ok {
		return false
	}
	delete(cities, city)
	return true
}

// UnsubscribeAll removes the chat's whole entry and returns the cities it
// was watching, sorted. The second result is false if the chat had no entry.
func (r *Registry) UnsubscribeAll(chatID int64) ([]model.City, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cities, ok := r.observers[chatID]
	if !ok {
		return nil, false
	}
	delete(r.observers, chatID)
	return sortedCities(cities), true
}

// CitiesOf returns the chat's watched cities, sorted. An unknown chat
// yields an empty list, never an error.
func (r *Registry) CitiesOf(chatID int64) []model.City {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortedCities(r.observers[chatID])
}

// AllWatchedCities returns the union of every subscriber's watchlist.
func (r *Registry) AllWatchedCities() model.CitySet {
	r.mu.Lock()
	defer r.mu.Unlock()
	union := make(model.CitySet)
	for _, cities := range r.observers {
		for c := range cities {
			union[c] = struct{}{}
		}
	}
	return union
}

// IsEmpty reports whether no chat is subscribed to anything.
func (r *Registry) IsEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.observers) == 0
}

// Observers returns a deep copy of the whole mapping. Callers that fetch
// or fan out work against the copy so no lock is held across network I/O.
func (r *Registry) Observers() map[int64]model.CitySet {
	r.mu.Lock()
	defer r.mu.Unlock()
	view := make(map[int64]model.CitySet, len(r.observers))
	for chatID, cities := range r.observers {
		cp := make(model.CitySet, len(cities))
		for c := range cities {
			cp[c] = struct{}{}
		}
		view[chatID] = cp
	}
	return view
}

func sortedCities(set model.CitySet) []model.City {
	if len(set) == 0 {
		return nil
	}
	cities := make([]model.City, 0, len(set))
	for c := range set {
		cities = append(cities, c)
	}
	sort.Slice(cities, func(i, j int) bool { return cities[i] < cities[j] })
	return cities
}
