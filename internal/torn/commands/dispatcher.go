package commands

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"tornbot/internal/torn/format"
	"tornbot/pkg/torn"

	"go.uber.org/zap"
)

type Config struct {
	TOSRequired          bool
	PromptKeyAfterAccept bool
	TermsText            string
	TrackingEnabled      bool          // a shared service key is configured
	TrackingInterval     time.Duration // shown in the tracking acknowledgment
	AppID                string
	Permissions          int64
}

type handlerFunc func(ctx context.Context, req Request, key string) (Reply, error)

type route struct {
	run        handlerFunc
	needsTOS   bool
	needsKey   bool
	needsGuild bool
}

// Dispatcher maps command names to handlers and enforces their preconditions.
type Dispatcher struct {
	cfg     Config
	store   CredentialStore
	api     GameAPI
	tracker Tracker
	logger  *zap.Logger
	rec     Recorder
	routes  map[string]route

	appMu sync.RWMutex
	appID string
}

type Option func(*Dispatcher)

func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.rec = r
		}
	}
}

func NewDispatcher(cfg Config, store CredentialStore, api GameAPI, tracker Tracker, logger *zap.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cfg:     cfg,
		store:   store,
		api:     api,
		tracker: tracker,
		logger:  logger,
		rec:     nopRecorder{},
		appID:   cfg.AppID,
	}
	for _, opt := range opts {
		opt(d)
	}

	tos := cfg.TOSRequired
	d.routes = map[string]route{
		CmdStart:       {run: d.start},
		CmdSetKey:      {run: d.setKey, needsTOS: tos},
		CmdChangeKey:   {run: d.changeKey, needsTOS: tos, needsKey: true},
		CmdRemoveKey:   {run: d.removeKey},
		CmdTOS:         {run: d.terms},
		CmdAcceptTOS:   {run: d.acceptTerms},
		CmdStock:       {run: d.startTracking, needsGuild: true},
		CmdStop:        {run: d.stopTracking, needsGuild: true},
		CmdInvite:      {run: d.invite},
		CmdProfile:     {run: d.authorizedFetch(torn.EndpointProfile, msgProfileFailed, renderProfile), needsTOS: tos, needsKey: true},
		CmdItems:       {run: d.authorizedFetch(torn.EndpointInventory, msgItemsFailed, renderInventory), needsTOS: tos, needsKey: true},
		CmdAdvise:      {run: d.authorizedFetch(torn.EndpointMarketItems, msgAdviseFailed, renderAdvise), needsTOS: tos, needsKey: true},
		CmdAdviseStock: {run: d.authorizedFetch(torn.EndpointStocks, msgStockFailed, renderStockDips), needsTOS: tos, needsKey: true},
		CmdTravel:      {run: d.authorizedFetch(torn.EndpointTravel, msgTravelFailed, renderTravel), needsTOS: tos, needsKey: true},
	}
	return d
}

// SetAppID records the application id once the gateway reports it.
func (d *Dispatcher) SetAppID(id string) {
	d.appMu.Lock()
	defer d.appMu.Unlock()
	d.appID = id
}

// Dispatch runs req and always returns a reply to show the user.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Reply {
	log := d.logger.With(zap.String("command", req.Command), zap.String("user", req.UserID))

	r, ok := d.routes[req.Command]
	if !ok {
		d.rec.ObserveCommand("unknown", OutcomeUnknown)
		return private(msgUnknownCommand)
	}

	reply, outcome := d.run(ctx, r, req, log)
	d.rec.ObserveCommand(req.Command, outcome)

	reply.Content = format.Truncate(reply.Content, MaxReplyLength)
	return reply
}

func (d *Dispatcher) run(ctx context.Context, r route, req Request, log *zap.Logger) (Reply, string) {
	if r.needsGuild && req.GuildID == "" {
		return private(msgGuildOnly), OutcomeDenied
	}

	if r.needsTOS {
		accepted, err := d.store.HasAcceptedTOS(ctx, req.UserID)
		if err != nil {
			log.Error("failed to check tos acceptance", zap.Error(err))
			return private(msgInternalError), OutcomeError
		}
		if !accepted {
			return private(msgNeedTOS), OutcomeDenied
		}
	}

	var key string
	if r.needsKey {
		k, ok, err := d.store.Key(ctx, req.UserID)
		if err != nil {
			log.Error("failed to load api key", zap.Error(err))
			return private(msgInternalError), OutcomeError
		}
		if !ok {
			return private(msgNeedKey), OutcomeDenied
		}
		key = k
	}

	reply, err := r.run(ctx, req, key)
	if err != nil {
		log.Warn("command failed", zap.Error(err))
		return reply, OutcomeError
	}
	return reply, OutcomeOK
}

// authorizedFetch builds a handler that fetches ep with the caller's key and renders the body.
// Any fetch or decode failure answers with failure.
func (d *Dispatcher) authorizedFetch(ep torn.Endpoint, failure string, render func(body []byte, req Request) (string, error)) handlerFunc {
	return func(ctx context.Context, req Request, key string) (Reply, error) {
		body, err := d.api.Fetch(ctx, ep, key)
		if err != nil {
			return private(failure), fmt.Errorf("fetch %s: %w", ep, err)
		}

		text, err := render(body, req)
		if err != nil {
			return private(failure), fmt.Errorf("render %s: %w", ep, err)
		}
		return private(text), nil
	}
}

func (d *Dispatcher) start(_ context.Context, _ Request, _ string) (Reply, error) {
	if d.cfg.TOSRequired {
		return private(msgWelcomeTOS), nil
	}
	return private(msgWelcome), nil
}

func (d *Dispatcher) setKey(ctx context.Context, req Request, _ string) (Reply, error) {
	key := strings.TrimSpace(req.Arg)
	if key == "" {
		return private(msgSetKeyUsage), nil
	}
	if err := d.store.SetKey(ctx, req.UserID, key); err != nil {
		return private(msgInternalError), err
	}
	return private(msgKeySaved), nil
}

func (d *Dispatcher) changeKey(ctx context.Context, req Request, _ string) (Reply, error) {
	key := strings.TrimSpace(req.Arg)
	if key == "" {
		return private(msgChangeKeyUsage), nil
	}
	if err := d.store.SetKey(ctx, req.UserID, key); err != nil {
		return private(msgInternalError), err
	}
	return private(msgKeyChanged), nil
}

func (d *Dispatcher) removeKey(ctx context.Context, req Request, _ string) (Reply, error) {
	removed, err := d.store.RemoveKey(ctx, req.UserID)
	if err != nil {
		return private(msgInternalError), err
	}
	if !removed {
		return private(msgNoKeyStored), nil
	}
	return private(msgKeyRemoved), nil
}

func (d *Dispatcher) terms(_ context.Context, _ Request, _ string) (Reply, error) {
	return Reply{
		Content:  msgTOSHeader + d.cfg.TermsText + msgTOSFooter,
		Private:  true,
		FollowUp: FollowUpAcceptPrompt,
	}, nil
}

func (d *Dispatcher) acceptTerms(ctx context.Context, req Request, _ string) (Reply, error) {
	added, err := d.store.AcceptTOS(ctx, req.UserID)
	if err != nil {
		return private(msgInternalError), err
	}
	if !added {
		return private(msgTOSAlreadyAccepted), nil
	}

	if d.cfg.PromptKeyAfterAccept {
		_, hasKey, err := d.store.Key(ctx, req.UserID)
		if err != nil {
			return private(msgTOSAccepted), err
		}
		if !hasKey {
			return Reply{Content: msgTOSAcceptedSetKey, Private: true, FollowUp: FollowUpKeyPrompt}, nil
		}
	}
	return private(msgTOSAccepted), nil
}

func (d *Dispatcher) startTracking(_ context.Context, req Request, _ string) (Reply, error) {
	if !d.cfg.TrackingEnabled {
		return private(msgTrackingUnavailable), nil
	}
	if !d.tracker.Subscribe(req.GuildID, req.ChannelID) {
		return private(msgTrackingAlready), nil
	}
	// the only reply the whole channel sees
	return Reply{Content: fmt.Sprintf(msgTrackingStarted, d.cfg.TrackingInterval)}, nil
}

func (d *Dispatcher) stopTracking(_ context.Context, req Request, _ string) (Reply, error) {
	if !d.tracker.Unsubscribe(req.GuildID) {
		return private(msgTrackingNotActive), nil
	}
	return private(msgTrackingStopped), nil
}

func (d *Dispatcher) invite(_ context.Context, _ Request, _ string) (Reply, error) {
	d.appMu.RLock()
	appID := d.appID
	d.appMu.RUnlock()

	if appID == "" {
		return private(msgInviteUnavailable), nil
	}
	return private(fmt.Sprintf(msgInvite, InviteURL(appID, d.cfg.Permissions))), nil
}

// InviteURL builds the OAuth2 authorize link adding the bot with slash commands.
func InviteURL(appID string, permissions int64) string {
	q := url.Values{}
	q.Set("client_id", appID)
	q.Set("permissions", fmt.Sprint(permissions))
	q.Set("scope", "bot applications.commands")
	return "https://discord.com/oauth2/authorize?" + q.Encode()
}

func private(content string) Reply {
	return Reply{Content: content, Private: true}
}
