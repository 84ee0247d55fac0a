package strategy

import (
	models "fvgbot/database/models_pkg"
)

// Transition describes one step of the position state machine. Applying it
// mutates both the status row and the owning trade.
type Transition struct {
	Status           string
	ExitPrice        float64
	Pnl              float64
	RemainingLot     int
	ModifiedStopLoss float64
	Terminal         bool
}

// NextTransition evaluates the position state machine for one open position
// against the latest fine-grained close. It returns false when no transition
// fires this cycle.
//
// Running      -> SL            close beyond the initial stop
// Running      -> PartialBooked close beyond the initial target
// PartialBooked -> CostToCost   close back through the breakeven stop
// PartialBooked -> FullBooked   close beyond the modified target
//
// SL, CostToCost and FullBooked are terminal. Blended exit prices weight the
// booked half at the initial target against the remainder, so terminal PnL is
// computed with the original lot.
func NextTransition(trade *models.Trade, status *models.TradeStatus, close float64) (Transition, bool) {
	if models.IsTerminalStatus(status.Status) || !status.IsOpen {
		return Transition{}, false
	}

	switch status.Status {
	case models.StatusRunning:
		return runningTransition(trade, status, close)
	case models.StatusPartialBooked:
		return partialBookedTransition(trade, status, close)
	}
	return Transition{}, false
}

func runningTransition(trade *models.Trade, status *models.TradeStatus, close float64) (Transition, bool) {
	bullish := trade.Direction == models.DirectionBullish

	stopped := (bullish && close < trade.InitialStopLoss) ||
		(!bullish && close > trade.InitialStopLoss)
	if stopped {
		exit := trade.InitialStopLoss
		return Transition{
			Status:           models.StatusSL,
			ExitPrice:        exit,
			Pnl:              directionalPnl(trade.Direction, trade.Lot, status.EntryPrice, exit),
			RemainingLot:     0,
			ModifiedStopLoss: trade.ModifiedStopLoss,
			Terminal:         true,
		}, true
	}

	reachedTarget := (bullish && close >= trade.InitialTarget) ||
		(!bullish && close <= trade.InitialTarget)
	if reachedTarget {
		remaining := trade.Lot / 2
		booked := trade.Lot - remaining
		return Transition{
			Status:           models.StatusPartialBooked,
			ExitPrice:        trade.InitialTarget,
			Pnl:              directionalPnl(trade.Direction, booked, status.EntryPrice, trade.InitialTarget),
			RemainingLot:     remaining,
			ModifiedStopLoss: status.EntryPrice, // breakeven stop
			Terminal:         false,
		}, true
	}

	return Transition{}, false
}

func partialBookedTransition(trade *models.Trade, status *models.TradeStatus, close float64) (Transition, bool) {
	bullish := trade.Direction == models.DirectionBullish
	booked := trade.Lot - trade.RemainingLot

	stopped := (bullish && close < trade.ModifiedStopLoss) ||
		(!bullish && close > trade.ModifiedStopLoss)
	if stopped {
		exit := blendedExit(booked, trade.InitialTarget, trade.RemainingLot, trade.ModifiedStopLoss, trade.Lot)
		return Transition{
			Status:           models.StatusCostToCost,
			ExitPrice:        exit,
			Pnl:              directionalPnl(trade.Direction, trade.Lot, status.EntryPrice, exit),
			RemainingLot:     0,
			ModifiedStopLoss: trade.ModifiedStopLoss,
			Terminal:         true,
		}, true
	}

	reachedTarget := (bullish && close >= trade.ModifiedTarget) ||
		(!bullish && close <= trade.ModifiedTarget)
	if reachedTarget {
		exit := blendedExit(booked, trade.InitialTarget, trade.RemainingLot, trade.ModifiedTarget, trade.Lot)
		return Transition{
			Status:           models.StatusFullBooked,
			ExitPrice:        exit,
			Pnl:              directionalPnl(trade.Direction, trade.Lot, status.EntryPrice, exit),
			RemainingLot:     0,
			ModifiedStopLoss: trade.ModifiedStopLoss,
			Terminal:         true,
		}, true
	}

	return Transition{}, false
}

// blendedExit averages the booked and remaining exits weighted by size:
// ((booked·bookedPrice) + (remaining·remainingPrice)) / lot.
func blendedExit(booked int, bookedPrice float64, remaining int, remainingPrice float64, lot int) float64 {
	if lot == 0 {
		return 0
	}
	return (float64(booked)*bookedPrice + float64(remaining)*remainingPrice) / float64(lot)
}

// directionalPnl is qty·(exit−entry) for bullish and qty·(entry−exit) for
// bearish positions.
func directionalPnl(direction string, qty int, entry, exit float64) float64 {
	if direction == models.DirectionBearish {
		return float64(qty) * (entry - exit)
	}
	return float64(qty) * (exit - entry)
}

// Apply folds a transition into the status row and the owning trade. The
// caller persists both together.
func Apply(tr Transition, trade *models.Trade, status *models.TradeStatus) {
	status.Status = tr.Status
	status.ExitPrice = tr.ExitPrice
	status.Pnl = tr.Pnl
	status.Quantity = tr.RemainingLot

	trade.RemainingLot = tr.RemainingLot
	trade.ModifiedStopLoss = tr.ModifiedStopLoss

	if tr.Terminal {
		status.IsOpen = false
		trade.IsActive = false
	}
}
