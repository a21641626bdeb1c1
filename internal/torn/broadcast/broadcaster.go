package broadcast

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tornbot/internal/torn/memorystore"
	"tornbot/pkg/torn"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Broadcaster mirrors the stock snapshot into one message per instrument for every
// subscribed guild. The polling goroutine only runs while at least one guild is subscribed.
type Broadcaster struct {
	cfg       Config
	source    SnapshotSource
	publisher Publisher
	store     *memorystore.MemoryGuildStore
	logger    *zap.Logger
	rec       Recorder

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	closed bool
	loops  sync.WaitGroup
}

type Option func(*Broadcaster)

func WithRecorder(r Recorder) Option {
	return func(b *Broadcaster) {
		if r != nil {
			b.rec = r
		}
	}
}

func New(cfg Config, source SnapshotSource, publisher Publisher, store *memorystore.MemoryGuildStore, logger *zap.Logger, opts ...Option) *Broadcaster {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 5
	}
	b := &Broadcaster{
		cfg:       cfg,
		source:    source,
		publisher: publisher,
		store:     store,
		logger:    logger,
		rec:       nopRecorder{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe routes guildID's stock messages to channelID and starts polling if idle.
// It reports whether the subscription changed.
func (b *Broadcaster) Subscribe(guildID, channelID string) bool {
	changed := b.store.Subscribe(guildID, channelID)
	b.rec.SetSubscribers(b.store.Count())

	b.mu.Lock()
	defer b.mu.Unlock()
	b.startLocked()

	if changed {
		b.logger.Info("guild subscribed", zap.String("guild", guildID), zap.String("channel", channelID))
	}
	return changed
}

// Unsubscribe drops guildID and stops polling when nobody is left.
func (b *Broadcaster) Unsubscribe(guildID string) bool {
	removed := b.store.Unsubscribe(guildID)
	b.rec.SetSubscribers(b.store.Count())

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.store.Count() == 0 {
		b.stopLocked()
	}

	if removed {
		b.logger.Info("guild unsubscribed", zap.String("guild", guildID))
	}
	return removed
}

// Running reports whether the polling goroutine is active.
func (b *Broadcaster) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cancel != nil
}

// Close stops polling and waits for every loop goroutine, including ones retired by
// an earlier Unsubscribe, to exit. Later subscriptions are recorded but do not
// restart the loop.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	b.closed = true
	b.stopLocked()
	b.mu.Unlock()

	b.loops.Wait()
}

func (b *Broadcaster) startLocked() {
	if b.closed || b.cancel != nil || b.store.Count() == 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.gen++
	b.cancel = cancel
	b.loops.Add(1)

	b.logger.Info("stock broadcast started", zap.Duration("interval", b.cfg.Interval))
	go b.run(ctx, b.gen)
}

func (b *Broadcaster) stopLocked() {
	if b.cancel == nil {
		return
	}
	b.cancel()
	b.cancel = nil
	b.logger.Info("stock broadcast stopped")
}

func (b *Broadcaster) run(ctx context.Context, gen uint64) {
	defer b.loops.Done()

	ticker := time.NewTicker(b.cfg.Interval)
	defer ticker.Stop()

	for {
		if !b.keepRunning(gen) {
			return
		}

		if err := b.Tick(ctx); err != nil && ctx.Err() == nil {
			b.logger.Warn("stock tick finished with errors", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// keepRunning retires the loop of generation gen once no guild is subscribed.
func (b *Broadcaster) keepRunning(gen uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.gen != gen || b.cancel == nil {
		return false
	}
	if b.store.Count() == 0 {
		b.stopLocked()
		return false
	}
	return true
}

// Tick fetches one snapshot and renders it for every subscribed guild.
// A failing guild does not stop the others; their errors are combined.
func (b *Broadcaster) Tick(ctx context.Context) error {
	stocks, err := b.source.Stocks(ctx)
	if err != nil {
		b.rec.ObserveTick(TickFetchError)
		return fmt.Errorf("fetch stocks: %w", err)
	}

	subs := b.store.Subscriptions()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs error
	)
	sem := make(chan struct{}, b.cfg.MaxConcurrency)

	for _, sub := range subs {
		sub := sub
		sem <- struct{}{}
		wg.Add(1)

		go func() {
			defer func() { <-sem; wg.Done() }()

			if err := b.publish(ctx, sub, stocks); err != nil {
				b.logger.Warn("failed to update stock messages",
					zap.String("guild", sub.GuildID),
					zap.String("channel", sub.ChannelID),
					zap.Error(err),
				)
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("guild %s: %w", sub.GuildID, err))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if errs != nil {
		b.rec.ObserveTick(TickPartial)
		return errs
	}
	b.rec.ObserveTick(TickOK)
	b.logger.Debug("stock tick done", zap.Int("instruments", len(stocks)), zap.Int("guilds", len(subs)))
	return nil
}

// publish stops as soon as the guild is unsubscribed or moved to another channel,
// so nothing is sent to a destination the store no longer tracks.
func (b *Broadcaster) publish(ctx context.Context, sub memorystore.Subscription, stocks []torn.Stock) error {
	var errs error
	for _, s := range stocks {
		if !b.current(sub) {
			b.logger.Debug("destination changed mid tick, abandoning",
				zap.String("guild", sub.GuildID), zap.String("channel", sub.ChannelID))
			return errs
		}

		prev, hasPrev := b.store.Price(sub.GuildID, s.ID)
		content := Render(s, prev, hasPrev, b.cfg.Epsilon, b.cfg.FirstObservation)

		if err := b.upsert(ctx, sub, s.ID, content); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("instrument %s: %w", s.ID, err))
		}

		b.store.SetPrice(sub.GuildID, sub.ChannelID, s.ID, s.CurrentPrice)
	}
	return errs
}

func (b *Broadcaster) current(sub memorystore.Subscription) bool {
	ch, ok := b.store.Channel(sub.GuildID)
	return ok && ch == sub.ChannelID
}

// upsert edits the existing message of the instrument or creates one.
// The edit is issued even when the text is unchanged; it is the only way to notice
// that the message was deleted.
func (b *Broadcaster) upsert(ctx context.Context, sub memorystore.Subscription, instrumentID, content string) error {
	h, ok := b.store.Handle(sub.GuildID, instrumentID)
	if ok {
		err := b.publisher.Edit(ctx, sub.ChannelID, h.MessageID, content)
		if err == nil {
			b.store.SetHandle(sub.GuildID, sub.ChannelID, instrumentID, memorystore.Handle{MessageID: h.MessageID, Content: content})
			b.rec.ObserveMessage(ActionEdit)
			return nil
		}
		if !errors.Is(err, ErrMessageNotFound) {
			b.rec.ObserveMessage(ActionError)
			return fmt.Errorf("edit message %s: %w", h.MessageID, err)
		}
		b.logger.Debug("stock message vanished, recreating",
			zap.String("guild", sub.GuildID), zap.String("message", h.MessageID))
	}

	id, err := b.publisher.Send(ctx, sub.ChannelID, content)
	if err != nil {
		b.rec.ObserveMessage(ActionError)
		return fmt.Errorf("send message: %w", err)
	}
	if !b.store.SetHandle(sub.GuildID, sub.ChannelID, instrumentID, memorystore.Handle{MessageID: id, Content: content}) {
		b.logger.Warn("stock message sent to a channel that is no longer subscribed",
			zap.String("guild", sub.GuildID), zap.String("channel", sub.ChannelID), zap.String("message", id))
	}
	if ok {
		b.rec.ObserveMessage(ActionRecreate)
	} else {
		b.rec.ObserveMessage(ActionCreate)
	}
	return nil
}
