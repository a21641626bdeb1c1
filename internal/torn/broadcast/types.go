package broadcast

import (
	"context"
	"errors"
	"time"

	"tornbot/pkg/torn"

	"github.com/shopspring/decimal"
)

// ErrMessageNotFound is returned by Publisher.Edit when the message was deleted.
var ErrMessageNotFound = errors.New("message not found")

// SnapshotSource returns every instrument price in one call.
type SnapshotSource interface {
	Stocks(ctx context.Context) ([]torn.Stock, error)
}

// Publisher creates and edits channel messages.
type Publisher interface {
	Send(ctx context.Context, channelID, content string) (messageID string, err error)
	Edit(ctx context.Context, channelID, messageID, content string) error
}

// Recorder receives loop counters. Implemented by the metrics package.
type Recorder interface {
	ObserveTick(outcome string)
	ObserveMessage(action string)
	SetSubscribers(n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveTick(string)    {}
func (nopRecorder) ObserveMessage(string) {}
func (nopRecorder) SetSubscribers(int)    {}

const (
	FirstObservationOmit        = "omit"
	FirstObservationPlaceholder = "placeholder"
)

type Config struct {
	Interval         time.Duration
	Epsilon          decimal.Decimal
	FirstObservation string // "omit" or "placeholder"
	MaxConcurrency   int    // destinations rendered in parallel per tick
}

// tick outcomes and message actions reported to the Recorder
const (
	TickOK         = "ok"
	TickFetchError = "fetch_error"
	TickPartial    = "partial"

	ActionCreate   = "create"
	ActionEdit     = "edit"
	ActionRecreate = "recreate"
	ActionError    = "error"
)
