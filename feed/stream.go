package feed

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"fvgbot/logger"
	"fvgbot/market"
)

// CandleHandler receives each live candle update from the stream.
type CandleHandler func(symbol string, candle market.Candle)

// Stream maintains a websocket subscription to the exchange's live
// candlestick channel and forwards updates between REST polls. The stream is
// optional: the pipeline is correct without it, it only keeps the latest
// quote fresher for the API.
type Stream struct {
	url          string
	symbols      []string
	timeframe    string
	handler      CandleHandler
	log          *logger.Logger
	conn         *websocket.Conn
	stopCh       chan struct{}
	stopOnce     sync.Once
	reconnectMin time.Duration
	reconnectMax time.Duration
}

// NewStream creates a live candle stream for the given symbols.
func NewStream(url string, symbols []string, timeframe string, handler CandleHandler, log *logger.Logger) *Stream {
	return &Stream{
		url:          url,
		symbols:      symbols,
		timeframe:    timeframe,
		handler:      handler,
		log:          log,
		stopCh:       make(chan struct{}),
		reconnectMin: time.Second,
		reconnectMax: 30 * time.Second,
	}
}

type subscribeRequest struct {
	Type    string           `json:"type"`
	Payload subscribePayload `json:"payload"`
}

type subscribePayload struct {
	Channels []subscribeChannel `json:"channels"`
}

type subscribeChannel struct {
	Name    string   `json:"name"`
	Symbols []string `json:"symbols"`
}

// streamMessage is one candlestick channel update.
type streamMessage struct {
	Type            string  `json:"type"`
	Symbol          string  `json:"symbol"`
	Open            float64 `json:"open"`
	High            float64 `json:"high"`
	Low             float64 `json:"low"`
	Close           float64 `json:"close"`
	Volume          float64 `json:"volume"`
	CandleStartTime int64   `json:"candle_start_time"` // microseconds
}

func (s *Stream) channelName() string {
	return "candlestick_" + s.timeframe
}

// Start connects and launches the read loop. Reconnection is handled
// internally until Stop is called.
func (s *Stream) Start() error {
	if err := s.connect(); err != nil {
		return err
	}
	go s.readLoop()
	return nil
}

func (s *Stream) connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(s.url, nil)
	if err != nil {
		return fmt.Errorf("websocket dial %s: %w", s.url, err)
	}
	conn.SetReadLimit(2 << 20)
	s.conn = conn

	sub := subscribeRequest{
		Type: "subscribe",
		Payload: subscribePayload{
			Channels: []subscribeChannel{{Name: s.channelName(), Symbols: s.symbols}},
		},
	}
	if err := conn.WriteJSON(sub); err != nil {
		conn.Close()
		return fmt.Errorf("websocket subscribe: %w", err)
	}

	s.log.WithComponent("feed_stream").Info("live candle stream connected")
	return nil
}

func (s *Stream) readLoop() {
	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.log.WithComponent("feed_stream").WithError(err).Warn("websocket read failed")
			if !s.reconnect() {
				return
			}
			continue
		}

		var msg streamMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.log.WithComponent("feed_stream").WithError(err).Warn("unparseable stream message")
			continue
		}
		if msg.Type != s.channelName() || msg.Symbol == "" {
			continue
		}

		if candle, ok := parseStreamCandle(msg); ok {
			s.handler(msg.Symbol, candle)
		}
	}
}

// parseStreamCandle converts a channel update into a candle. Updates without
// a start time are heartbeats and are dropped.
func parseStreamCandle(msg streamMessage) (market.Candle, bool) {
	if msg.CandleStartTime == 0 {
		return market.Candle{}, false
	}
	return market.Candle{
		OpenTime: time.UnixMicro(msg.CandleStartTime).UTC(),
		Open:     msg.Open,
		High:     msg.High,
		Low:      msg.Low,
		Close:    msg.Close,
		Volume:   msg.Volume,
	}, true
}

func (s *Stream) reconnect() bool {
	backoff := s.reconnectMin

	for {
		select {
		case <-s.stopCh:
			return false
		case <-time.After(backoff):
		}

		if err := s.connect(); err == nil {
			return true
		}

		backoff *= 2
		if backoff > s.reconnectMax {
			backoff = s.reconnectMax
		}
	}
}

// Stop closes the stream and halts reconnection.
func (s *Stream) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if s.conn != nil {
			s.conn.Close()
		}
	})
}
