package strategy

import (
	"testing"
	"time"
)

func TestNewPipelineValidation(t *testing.T) {
	valid := PipelineConfig{
		GapTimeframe:  "5m",
		FineTimeframe: "1m",
		LookbackDays:  2,
		LotSize:       10,
		TickInterval:  time.Minute,
	}

	if _, err := NewPipeline(valid); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	bad := valid
	bad.GapTimeframe = "5x"
	if _, err := NewPipeline(bad); err == nil {
		t.Error("invalid gap timeframe accepted")
	}

	bad = valid
	bad.FineTimeframe = ""
	if _, err := NewPipeline(bad); err == nil {
		t.Error("empty fine timeframe accepted")
	}

	bad = valid
	bad.LotSize = 0
	if _, err := NewPipeline(bad); err == nil {
		t.Error("zero lot size accepted")
	}
}
