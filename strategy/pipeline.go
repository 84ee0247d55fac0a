package strategy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fvgbot/cache"
	"fvgbot/database/gaps"
	"fvgbot/database/retests"
	"fvgbot/database/trades"
	"fvgbot/helpers"
	"fvgbot/logger"
	"fvgbot/market"
	"fvgbot/metrics"
	"fvgbot/notifications"
	"fvgbot/realtime"
)

// fineLookback bounds how much fine-grained history each cycle pulls; only
// the newest candle drives retest, trigger and position checks.
const fineLookback = 2 * time.Hour

// CandleSource supplies candle history for one symbol and timeframe.
type CandleSource interface {
	Candles(ctx context.Context, symbol, timeframe string, start, end time.Time) (*market.Series, error)
}

// Pipeline runs the per-symbol cycle: gap detection, gap aging and
// deactivation, retest detection, trade triggering and position updates, in
// that strict order. Every stage is fail-soft: an error is logged and counted
// and the remaining stages still run, except when candle data itself is
// unavailable.
type Pipeline struct {
	feed     CandleSource
	gapsRepo *gaps.Repository
	retests  *retests.Repository
	trades   *trades.Repository
	cache    *cache.RedisClient
	broker   *realtime.Broker
	notifier *notifications.Notifier
	log      *logger.Logger

	gapTimeframe  string
	fineTimeframe string
	gapTFDuration time.Duration
	gapTFMinutes  int
	lookback      time.Duration
	lotSize       int
	tickInterval  time.Duration

	done chan struct{}
}

// PipelineConfig wires a pipeline together.
type PipelineConfig struct {
	Feed          CandleSource
	Gaps          *gaps.Repository
	Retests       *retests.Repository
	Trades        *trades.Repository
	Cache         *cache.RedisClient
	Broker        *realtime.Broker
	Notifier      *notifications.Notifier
	Log           *logger.Logger
	GapTimeframe  string
	FineTimeframe string
	LookbackDays  int
	LotSize       int
	TickInterval  time.Duration
}

// NewPipeline validates the timeframes and builds a pipeline.
func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	gapDur, err := helpers.TimeframeDuration(cfg.GapTimeframe)
	if err != nil {
		return nil, fmt.Errorf("gap timeframe: %w", err)
	}
	gapMinutes, err := helpers.TimeframeMinutes(cfg.GapTimeframe)
	if err != nil {
		return nil, fmt.Errorf("gap timeframe: %w", err)
	}
	if _, err := helpers.TimeframeDuration(cfg.FineTimeframe); err != nil {
		return nil, fmt.Errorf("fine timeframe: %w", err)
	}
	if cfg.LotSize <= 0 {
		return nil, fmt.Errorf("lot size must be positive, got %d", cfg.LotSize)
	}

	return &Pipeline{
		feed:          cfg.Feed,
		gapsRepo:      cfg.Gaps,
		retests:       cfg.Retests,
		trades:        cfg.Trades,
		cache:         cfg.Cache,
		broker:        cfg.Broker,
		notifier:      cfg.Notifier,
		log:           cfg.Log,
		gapTimeframe:  cfg.GapTimeframe,
		fineTimeframe: cfg.FineTimeframe,
		gapTFDuration: gapDur,
		gapTFMinutes:  gapMinutes,
		lookback:      time.Duration(cfg.LookbackDays) * 24 * time.Hour,
		lotSize:       cfg.LotSize,
		tickInterval:  cfg.TickInterval,
		done:          make(chan struct{}),
	}, nil
}

// Start runs the cycle loop for one symbol until Stop or context
// cancellation. Symbols are independent; the caller launches one goroutine
// per symbol.
func (p *Pipeline) Start(ctx context.Context, symbol string) {
	log := p.log.WithSymbol(symbol)
	log.Info("pipeline started")

	ticker := time.NewTicker(p.tickInterval)
	defer ticker.Stop()

	// Run immediately on start
	p.RunCycle(ctx, symbol)

	for {
		select {
		case <-ticker.C:
			p.RunCycle(ctx, symbol)
		case <-p.done:
			log.Info("pipeline stopped")
			return
		case <-ctx.Done():
			log.Info("pipeline stopped")
			return
		}
	}
}

// Stop halts all symbol loops sharing this pipeline.
func (p *Pipeline) Stop() {
	close(p.done)
}

// RunCycle executes one full detection → aging → retest → trigger → position
// cycle for a symbol. Returns an error only when candle data for the cycle
// could not be fetched; stage failures are logged and absorbed.
func (p *Pipeline) RunCycle(ctx context.Context, symbol string) error {
	cycleID := uuid.NewString()
	log := p.log.WithFields(logrus.Fields{"symbol": symbol, "cycle_id": cycleID})
	metrics.Cycles.WithLabelValues(symbol).Inc()

	now := time.Now().UTC()

	coarse, err := p.feed.Candles(ctx, symbol, p.gapTimeframe, now.Add(-p.lookback), now)
	if err != nil {
		metrics.CycleErrors.WithLabelValues("fetch_coarse").Inc()
		log.WithError(err).Error("failed to fetch coarse candles, skipping cycle")
		return err
	}

	p.detectGaps(log, cycleID, coarse)
	p.ageGaps(log, cycleID, symbol, coarse)

	fine, err := p.feed.Candles(ctx, symbol, p.fineTimeframe, now.Add(-fineLookback), now)
	if err != nil {
		metrics.CycleErrors.WithLabelValues("fetch_fine").Inc()
		log.WithError(err).Error("failed to fetch fine candles, skipping remaining stages")
		return err
	}
	latest, ok := fine.Latest()
	if !ok {
		log.Warn("no fine-grained candles, skipping remaining stages")
		return nil
	}

	p.cacheLatest(ctx, symbol, latest, now)

	p.checkRetest(log, cycleID, symbol, latest)
	p.checkTrigger(log, cycleID, symbol, latest)
	p.updatePositions(log, cycleID, symbol, latest)

	return nil
}

// detectGaps scans the coarse series and inserts previously unseen gaps.
func (p *Pipeline) detectGaps(log *logrus.Entry, cycleID string, series *market.Series) {
	if series.Len() < 3 {
		log.Warn("insufficient coarse candles for gap detection")
		return
	}

	inserted := 0
	for _, gap := range ScanSeries(series, p.gapTFDuration) {
		gap := gap
		fresh, err := p.gapsRepo.InsertIfAbsent(&gap)
		if err != nil {
			metrics.CycleErrors.WithLabelValues("detect").Inc()
			log.WithError(err).Error("gap insert failed")
			continue
		}
		if !fresh {
			continue
		}
		inserted++
		metrics.GapsDetected.WithLabelValues(gap.Direction).Inc()
		p.publish(realtime.Event{Type: realtime.EventGapDetected, Symbol: gap.Symbol, CycleID: cycleID, Payload: gap})
	}
	if inserted > 0 {
		log.Info(fmt.Sprintf("detected %d new gaps", inserted))
	}
}

// ageGaps updates durations and deactivates gaps whose far boundary the
// latest coarse close has crossed.
func (p *Pipeline) ageGaps(log *logrus.Entry, cycleID string, symbol string, series *market.Series) {
	latest, ok := series.Latest()
	if !ok {
		return
	}

	// Age against the candle's own close time so re-running a cycle on the
	// same data is a no-op.
	closeTime := latest.OpenTime.Add(p.gapTFDuration)
	deactivated, err := p.gapsRepo.AgeAndDeactivate(symbol, p.gapTimeframe, latest.Close, closeTime, p.gapTFMinutes)
	if err != nil {
		metrics.CycleErrors.WithLabelValues("age").Inc()
		log.WithError(err).Error("gap aging failed")
		return
	}

	for _, id := range deactivated {
		metrics.GapsDeactivated.Inc()
		p.publish(realtime.Event{Type: realtime.EventGapDeactivated, Symbol: symbol, CycleID: cycleID, Payload: map[string]int64{"gap_id": id}})
	}
	if len(deactivated) > 0 {
		log.Info(fmt.Sprintf("deactivated %d gaps", len(deactivated)))
	}
}

// checkRetest tests the newest fine candle against the single candidate gap.
func (p *Pipeline) checkRetest(log *logrus.Entry, cycleID string, symbol string, candle market.Candle) {
	gap, err := p.gapsRepo.LatestUnretested(symbol, p.gapTimeframe)
	if err != nil {
		metrics.CycleErrors.WithLabelValues("retest").Inc()
		log.WithError(err).Error("retest candidate lookup failed")
		return
	}
	if gap == nil || !IsRetest(gap, candle) {
		return
	}

	event := NewRetestEvent(gap, candle, p.fineTimeframe)
	if err := p.retests.Record(event); err != nil {
		if errors.Is(err, retests.ErrAlreadyRetested) {
			return
		}
		metrics.CycleErrors.WithLabelValues("retest").Inc()
		log.WithError(err).Error("retest record failed")
		return
	}

	metrics.Retests.WithLabelValues(event.Direction).Inc()
	log.Info(fmt.Sprintf("retest of %s gap %d recorded", gap.Direction, gap.ID))
	p.publish(realtime.Event{Type: realtime.EventRetest, Symbol: symbol, CycleID: cycleID, Payload: event})
}

// checkTrigger opens a trade when the newest fine close confirms the
// untraded retest.
func (p *Pipeline) checkTrigger(log *logrus.Entry, cycleID string, symbol string, candle market.Candle) {
	retest, err := p.retests.LatestUntraded(symbol)
	if err != nil {
		metrics.CycleErrors.WithLabelValues("trigger").Inc()
		log.WithError(err).Error("untraded retest lookup failed")
		return
	}
	if retest == nil || !IsBreakout(retest, candle.Close) {
		return
	}

	gap, err := p.gapsRepo.GetByID(retest.FairValueGapID)
	if err != nil {
		metrics.CycleErrors.WithLabelValues("trigger").Inc()
		log.WithError(err).Error("owning gap lookup failed")
		return
	}
	if gap == nil {
		// Referential gap vanished; treat as a no-op per the fail-soft policy.
		log.Warn(fmt.Sprintf("retest %d references missing gap %d", retest.ID, retest.FairValueGapID))
		return
	}

	trade, status := NewTrade(retest, gap, candle, p.lotSize)
	if err := p.trades.Open(trade, status); err != nil {
		if errors.Is(err, trades.ErrAlreadyTraded) {
			return
		}
		metrics.CycleErrors.WithLabelValues("trigger").Inc()
		log.WithError(err).Error("trade open failed")
		return
	}

	metrics.TradesOpened.WithLabelValues(trade.Direction).Inc()
	metrics.OpenPositions.WithLabelValues(symbol).Inc()
	log.Info(fmt.Sprintf("opened %s trade %d at %.4f (SL %.4f, TG %.4f)",
		trade.Direction, trade.ID, trade.Close, trade.InitialStopLoss, trade.InitialTarget))
	p.publish(realtime.Event{Type: realtime.EventTradeOpened, Symbol: symbol, CycleID: cycleID, Payload: trade})
	p.notifier.Notify(realtime.EventTradeOpened, trade)
}

// updatePositions advances every open position against the newest fine close.
func (p *Pipeline) updatePositions(log *logrus.Entry, cycleID string, symbol string, candle market.Candle) {
	statuses, err := p.trades.OpenStatuses(symbol)
	if err != nil {
		metrics.CycleErrors.WithLabelValues("position").Inc()
		log.WithError(err).Error("open status lookup failed")
		return
	}

	for i := range statuses {
		status := &statuses[i]

		trade, err := p.trades.GetTrade(status.TradeID)
		if err != nil {
			metrics.CycleErrors.WithLabelValues("position").Inc()
			log.WithError(err).Error("owning trade lookup failed")
			continue
		}
		if trade == nil {
			log.Warn(fmt.Sprintf("status %d references missing trade %d", status.ID, status.TradeID))
			continue
		}

		transition, ok := NextTransition(trade, status, candle.Close)
		if !ok {
			continue
		}

		Apply(transition, trade, status)
		if err := p.trades.ApplyTransition(status, trade); err != nil {
			metrics.CycleErrors.WithLabelValues("position").Inc()
			log.WithError(err).Error("transition persist failed")
			continue
		}

		log.Info(fmt.Sprintf("trade %d -> %s (exit %.4f, pnl %.4f)",
			trade.ID, status.Status, status.ExitPrice, status.Pnl))
		p.publish(realtime.Event{Type: realtime.EventPositionUpdate, Symbol: symbol, CycleID: cycleID, Payload: status})

		if transition.Terminal {
			metrics.PositionExits.WithLabelValues(status.Status).Inc()
			metrics.OpenPositions.WithLabelValues(symbol).Dec()
			p.notifier.Notify(realtime.EventPositionUpdate, status)
		}
	}
}

// cacheLatest stores the newest fine candle and a cycle heartbeat for the
// API. Cache failures are ignored; a nil cache disables the writes.
func (p *Pipeline) cacheLatest(ctx context.Context, symbol string, candle market.Candle, now time.Time) {
	if p.cache == nil {
		return
	}
	_ = p.cache.Set(ctx, cache.KeyLatestCandle(symbol, p.fineTimeframe), candle, 10*time.Minute)
	_ = p.cache.Set(ctx, cache.KeyHeartbeat(symbol), now, 10*time.Minute)
}

func (p *Pipeline) publish(event realtime.Event) {
	if p.broker != nil {
		p.broker.Publish(event)
	}
}
