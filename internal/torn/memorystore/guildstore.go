package memorystore

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// MemoryGuildStore holds subscriptions, last observed prices and message handles.
// State of a guild lives only while the guild is subscribed.
type MemoryGuildStore struct {
	globalMu sync.RWMutex
	data     map[string]*guildState
}

type guildState struct {
	mu        sync.Mutex
	channelID string
	prices    map[string]decimal.Decimal // instrument id -> price
	handles   map[string]Handle          // instrument id -> message
}

func NewGuildStore() *MemoryGuildStore {
	return &MemoryGuildStore{
		data: make(map[string]*guildState),
	}
}

func newGuildState(channelID string) *guildState {
	return &guildState{
		channelID: channelID,
		prices:    make(map[string]decimal.Decimal),
		handles:   make(map[string]Handle),
	}
}

// Subscribe points guildID at channelID. Moving a guild to another channel drops its
// prices and handles so the new channel gets fresh messages.
// It reports whether anything changed.
func (s *MemoryGuildStore) Subscribe(guildID, channelID string) bool {
	s.globalMu.Lock()
	defer s.globalMu.Unlock()

	if st, ok := s.data[guildID]; ok {
		st.mu.Lock()
		same := st.channelID == channelID
		st.mu.Unlock()
		if same {
			return false
		}
	}
	s.data[guildID] = newGuildState(channelID)
	return true
}

// Unsubscribe drops the guild with all of its state.
func (s *MemoryGuildStore) Unsubscribe(guildID string) bool {
	s.globalMu.Lock()
	defer s.globalMu.Unlock()

	if _, ok := s.data[guildID]; !ok {
		return false
	}
	delete(s.data, guildID)
	return true
}

func (s *MemoryGuildStore) Channel(guildID string) (string, bool) {
	st := s.get(guildID)
	if st == nil {
		return "", false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.channelID, true
}

// Subscriptions returns a copy ordered by guild id.
func (s *MemoryGuildStore) Subscriptions() []Subscription {
	s.globalMu.RLock()
	defer s.globalMu.RUnlock()

	out := make([]Subscription, 0, len(s.data))
	for guildID, st := range s.data {
		st.mu.Lock()
		out = append(out, Subscription{GuildID: guildID, ChannelID: st.channelID})
		st.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GuildID < out[j].GuildID })
	return out
}

func (s *MemoryGuildStore) Count() int {
	s.globalMu.RLock()
	defer s.globalMu.RUnlock()
	return len(s.data)
}

func (s *MemoryGuildStore) Price(guildID, instrumentID string) (decimal.Decimal, bool) {
	st := s.get(guildID)
	if st == nil {
		return decimal.Decimal{}, false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	p, ok := st.prices[instrumentID]
	return p, ok
}

// SetPrice stores price only while guildID is still subscribed to channelID.
func (s *MemoryGuildStore) SetPrice(guildID, channelID, instrumentID string, price decimal.Decimal) bool {
	st := s.get(guildID)
	if st == nil {
		return false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.channelID != channelID {
		return false
	}
	st.prices[instrumentID] = price
	return true
}

func (s *MemoryGuildStore) Handle(guildID, instrumentID string) (Handle, bool) {
	st := s.get(guildID)
	if st == nil {
		return Handle{}, false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	h, ok := st.handles[instrumentID]
	return h, ok
}

// SetHandle stores h only while guildID is still subscribed to channelID.
func (s *MemoryGuildStore) SetHandle(guildID, channelID, instrumentID string, h Handle) bool {
	st := s.get(guildID)
	if st == nil {
		return false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.channelID != channelID {
		return false
	}
	st.handles[instrumentID] = h
	return true
}

// Handles returns a copy of the guild's handles keyed by instrument id.
func (s *MemoryGuildStore) Handles(guildID string) map[string]Handle {
	st := s.get(guildID)
	if st == nil {
		return nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	cp := make(map[string]Handle, len(st.handles))
	for k, v := range st.handles {
		cp[k] = v
	}
	return cp
}

func (s *MemoryGuildStore) get(guildID string) *guildState {
	s.globalMu.RLock()
	defer s.globalMu.RUnlock()
	return s.data[guildID]
}
