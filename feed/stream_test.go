package feed

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseStreamCandle(t *testing.T) {
	raw := `{"type":"candlestick_1m","symbol":"BTCUSD","open":100,"high":105,"low":99,"close":104,"volume":12.5,"candle_start_time":1748768400000000}`

	var msg streamMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	candle, ok := parseStreamCandle(msg)
	if !ok {
		t.Fatal("expected candle from complete message")
	}
	if candle.Close != 104 || candle.Volume != 12.5 {
		t.Errorf("candle = %+v, want close 104 volume 12.5", candle)
	}
	want := time.UnixMicro(1748768400000000).UTC()
	if !candle.OpenTime.Equal(want) {
		t.Errorf("open time = %v, want %v", candle.OpenTime, want)
	}
}

func TestParseStreamCandleDropsHeartbeat(t *testing.T) {
	if _, ok := parseStreamCandle(streamMessage{Type: "candlestick_1m", Symbol: "BTCUSD"}); ok {
		t.Error("message without candle_start_time should be dropped")
	}
}
