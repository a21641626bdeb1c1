package broadcast

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"tornbot/internal/torn/memorystore"
	"tornbot/pkg/torn"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	mu     sync.Mutex
	stocks []torn.Stock
	err    error
	calls  int
}

func (f *fakeSource) Stocks(context.Context) ([]torn.Stock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]torn.Stock, len(f.stocks))
	copy(out, f.stocks)
	return out, nil
}

func (f *fakeSource) set(prices ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stocks = f.stocks[:0]
	for i, p := range prices {
		f.stocks = append(f.stocks, torn.Stock{
			ID:           fmt.Sprint(i + 1),
			Name:         fmt.Sprintf("Stock %d", i+1),
			Acronym:      fmt.Sprintf("S%d", i+1),
			CurrentPrice: decimal.RequireFromString(p),
		})
	}
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type message struct {
	channel string
	content string
}

type fakePublisher struct {
	mu       sync.Mutex
	next     int
	messages map[string]message
	sends    int
	edits    int
	failing  map[string]bool // channel ids that reject everything
	sent     func(channelID string)
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{messages: make(map[string]message), failing: make(map[string]bool)}
}

func (p *fakePublisher) Send(_ context.Context, channelID, content string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failing[channelID] {
		return "", errors.New("missing access")
	}
	p.next++
	id := fmt.Sprintf("m%d", p.next)
	p.messages[id] = message{channel: channelID, content: content}
	p.sends++
	if p.sent != nil {
		p.sent(channelID)
	}
	return id, nil
}

func (p *fakePublisher) Edit(_ context.Context, channelID, messageID, content string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failing[channelID] {
		return errors.New("missing access")
	}
	if _, ok := p.messages[messageID]; !ok {
		return ErrMessageNotFound
	}
	p.messages[messageID] = message{channel: channelID, content: content}
	p.edits++
	return nil
}

func (p *fakePublisher) delete(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.messages, id)
}

func testConfig(mode string) Config {
	return Config{
		Interval:         time.Hour,
		Epsilon:          decimal.NewFromFloat(0.001),
		FirstObservation: mode,
	}
}

func stock(price string) torn.Stock {
	return torn.Stock{ID: "1", Name: "Torn City Investments", Acronym: "TCI", CurrentPrice: decimal.RequireFromString(price)}
}

// go test -v --run TestRender
func TestRender(t *testing.T) {
	eps := decimal.NewFromFloat(0.001)
	base := "**Torn City Investments** (TCI): $1,077.37"

	t.Run("first observation omitted", func(t *testing.T) {
		assert.Equal(t, base, Render(stock("1077.37"), decimal.Zero, false, eps, FirstObservationOmit))
	})
	t.Run("first observation placeholder", func(t *testing.T) {
		assert.Equal(t, base+" 📈 +0.00", Render(stock("1077.37"), decimal.Zero, false, eps, FirstObservationPlaceholder))
	})
	t.Run("up", func(t *testing.T) {
		got := Render(stock("1077.37"), decimal.RequireFromString("1000"), true, eps, FirstObservationOmit)
		assert.Equal(t, base+" 📈 +77.37", got)
	})
	t.Run("down", func(t *testing.T) {
		got := Render(stock("1077.37"), decimal.RequireFromString("1100"), true, eps, FirstObservationOmit)
		assert.Equal(t, base+" 📉 -22.63", got)
	})
	t.Run("within epsilon", func(t *testing.T) {
		got := Render(stock("1077.37"), decimal.RequireFromString("1077.3705"), true, eps, FirstObservationPlaceholder)
		assert.Equal(t, base, got)
	})
}

// go test -v --run TestTickOneHandlePerInstrument
func TestTickOneHandlePerInstrument(t *testing.T) {
	source := &fakeSource{}
	pub := newFakePublisher()
	store := memorystore.NewGuildStore()
	store.Subscribe("g1", "c1")
	store.Subscribe("g2", "c2")
	b := New(testConfig(FirstObservationOmit), source, pub, store, zap.NewNop())

	ctx := context.Background()
	ticks := [][]string{{"10", "20"}, {"11", "19"}, {"12.5", "19"}}
	for _, prices := range ticks {
		source.set(prices...)
		require.NoError(t, b.Tick(ctx))
	}

	assert.Equal(t, 4, pub.sends, "one message per guild and instrument")
	assert.Equal(t, 8, pub.edits)

	for _, guild := range []string{"g1", "g2"} {
		handles := store.Handles(guild)
		require.Len(t, handles, 2)
		assert.Equal(t, "**Stock 1** (S1): $12.50 📈 +1.50", pub.messages[handles["1"].MessageID].content)
		assert.Equal(t, "**Stock 2** (S2): $19", pub.messages[handles["2"].MessageID].content)

		p, ok := store.Price(guild, "1")
		require.True(t, ok)
		assert.True(t, p.Equal(decimal.RequireFromString("12.5")))
	}
}

// go test -v --run TestTickRecreatesDeletedMessage
func TestTickRecreatesDeletedMessage(t *testing.T) {
	source := &fakeSource{}
	pub := newFakePublisher()
	store := memorystore.NewGuildStore()
	store.Subscribe("g1", "c1")
	b := New(testConfig(FirstObservationOmit), source, pub, store, zap.NewNop())

	source.set("10")
	require.NoError(t, b.Tick(context.Background()))
	first, ok := store.Handle("g1", "1")
	require.True(t, ok)

	pub.delete(first.MessageID)
	source.set("11")
	require.NoError(t, b.Tick(context.Background()))

	second, ok := store.Handle("g1", "1")
	require.True(t, ok)
	assert.NotEqual(t, first.MessageID, second.MessageID)
	assert.Equal(t, "**Stock 1** (S1): $11 📈 +1.00", pub.messages[second.MessageID].content)
}

// go test -v --run TestTickIsolatesDestinations
func TestTickIsolatesDestinations(t *testing.T) {
	source := &fakeSource{}
	pub := newFakePublisher()
	pub.failing["broken"] = true
	store := memorystore.NewGuildStore()
	store.Subscribe("bad", "broken")
	store.Subscribe("good", "c2")
	b := New(testConfig(FirstObservationOmit), source, pub, store, zap.NewNop())

	source.set("10", "20")
	err := b.Tick(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "guild bad")
	assert.NotContains(t, err.Error(), "guild good")

	assert.Len(t, store.Handles("good"), 2)
	assert.Empty(t, store.Handles("bad"))

	// prices advance even when rendering failed
	_, ok := store.Price("bad", "1")
	assert.True(t, ok)
}

// go test -v --run TestTickRecreatesDeletedMessageAtFlatPrice
func TestTickRecreatesDeletedMessageAtFlatPrice(t *testing.T) {
	source := &fakeSource{}
	pub := newFakePublisher()
	store := memorystore.NewGuildStore()
	store.Subscribe("g1", "c1")
	b := New(testConfig(FirstObservationOmit), source, pub, store, zap.NewNop())

	source.set("10")
	require.NoError(t, b.Tick(context.Background()))
	require.NoError(t, b.Tick(context.Background()))
	assert.Equal(t, 1, pub.sends)
	assert.Equal(t, 1, pub.edits, "unchanged text is still edited")

	first, ok := store.Handle("g1", "1")
	require.True(t, ok)
	pub.delete(first.MessageID)

	require.NoError(t, b.Tick(context.Background()))

	second, ok := store.Handle("g1", "1")
	require.True(t, ok)
	assert.NotEqual(t, first.MessageID, second.MessageID)
	assert.Equal(t, 2, pub.sends)
	assert.Equal(t, message{channel: "c1", content: "**Stock 1** (S1): $10"}, pub.messages[second.MessageID])
}

// go test -v --run TestTickAbandonsMovedDestination
func TestTickAbandonsMovedDestination(t *testing.T) {
	source := &fakeSource{}
	pub := newFakePublisher()
	store := memorystore.NewGuildStore()
	store.Subscribe("g1", "c1")
	b := New(testConfig(FirstObservationOmit), source, pub, store, zap.NewNop())

	// the guild moves to c2 right after the first message lands in c1
	pub.sent = func(channelID string) {
		if channelID == "c1" {
			store.Subscribe("g1", "c2")
		}
	}

	source.set("10", "20", "30")
	require.NoError(t, b.Tick(context.Background()))

	assert.Equal(t, 1, pub.sends, "remaining instruments are not sent to the old channel")
	assert.Empty(t, store.Handles("g1"))
	_, ok := store.Price("g1", "1")
	assert.False(t, ok, "old channel price does not leak into the new channel")

	pub.sent = nil
	source.set("11", "20", "30")
	require.NoError(t, b.Tick(context.Background()))

	handles := store.Handles("g1")
	require.Len(t, handles, 3)
	assert.Equal(t, message{channel: "c2", content: "**Stock 1** (S1): $11"}, pub.messages[handles["1"].MessageID])
}

// go test -v --run TestTickFetchError
func TestTickFetchError(t *testing.T) {
	source := &fakeSource{err: errors.New("torn down")}
	pub := newFakePublisher()
	store := memorystore.NewGuildStore()
	store.Subscribe("g1", "c1")
	b := New(testConfig(FirstObservationOmit), source, pub, store, zap.NewNop())

	err := b.Tick(context.Background())
	assert.ErrorContains(t, err, "torn down")
	assert.Zero(t, pub.sends)
}

// go test -v --run TestLoopLifecycle
func TestLoopLifecycle(t *testing.T) {
	source := &fakeSource{}
	source.set("10")
	pub := newFakePublisher()
	store := memorystore.NewGuildStore()
	b := New(testConfig(FirstObservationOmit), source, pub, store, zap.NewNop())
	defer b.Close()

	assert.False(t, b.Running())

	assert.True(t, b.Subscribe("g1", "c1"))
	assert.True(t, b.Running())
	assert.Eventually(t, func() bool { return source.callCount() >= 1 }, time.Second, 5*time.Millisecond,
		"first tick runs immediately")

	assert.True(t, b.Unsubscribe("g1"))
	assert.False(t, b.Running())
	assert.Zero(t, store.Count())

	calls := source.callCount()
	assert.True(t, b.Subscribe("g1", "c1"))
	assert.True(t, b.Running(), "re-subscribing restarts the loop")
	assert.Eventually(t, func() bool { return source.callCount() > calls }, time.Second, 5*time.Millisecond)
}

type blockingSource struct {
	fakeSource
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

// Stocks blocks on the first call until release is closed.
func (s *blockingSource) Stocks(ctx context.Context) ([]torn.Stock, error) {
	first := false
	s.once.Do(func() { first = true })
	if first {
		close(s.entered)
		<-s.release
	}
	return s.fakeSource.Stocks(ctx)
}

// go test -v --run TestCloseWaitsForRetiredLoops
func TestCloseWaitsForRetiredLoops(t *testing.T) {
	source := &blockingSource{entered: make(chan struct{}), release: make(chan struct{})}
	source.set("10")
	store := memorystore.NewGuildStore()
	b := New(testConfig(FirstObservationOmit), source, newFakePublisher(), store, zap.NewNop())

	b.Subscribe("g1", "c1")
	<-source.entered

	// the first loop is retired while its tick is still running
	b.Unsubscribe("g1")
	b.Subscribe("g1", "c1")

	closed := make(chan struct{})
	go func() {
		b.Close()
		close(closed)
	}()

	isClosed := func() bool {
		select {
		case <-closed:
			return true
		default:
			return false
		}
	}
	assert.Never(t, isClosed, 50*time.Millisecond, 5*time.Millisecond)

	close(source.release)
	assert.Eventually(t, isClosed, time.Second, 5*time.Millisecond)
}

// go test -v --run TestLoopPolls
func TestLoopPolls(t *testing.T) {
	source := &fakeSource{}
	source.set("10")
	pub := newFakePublisher()
	store := memorystore.NewGuildStore()
	cfg := testConfig(FirstObservationOmit)
	cfg.Interval = 10 * time.Millisecond
	b := New(cfg, source, pub, store, zap.NewNop())

	b.Subscribe("g1", "c1")
	assert.Eventually(t, func() bool { return source.callCount() >= 3 }, time.Second, 5*time.Millisecond)

	b.Close()
	assert.False(t, b.Running())

	b.Subscribe("g2", "c2")
	assert.False(t, b.Running(), "closed broadcaster stays idle")
}
