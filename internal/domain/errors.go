package domain

import "errors"

// Game errors
var (
	ErrGameNotFound     = errors.New("game not found")
	ErrGameNotCompleted = errors.New("game is not completed")
	ErrPlayerNotFound   = errors.New("player not found")
)

// Finalization errors
var (
	ErrConfigurationMissing = errors.New("achievement catalog is not loaded")
	ErrFinalizationInFlight = errors.New("finalization already in progress for game")
	ErrSummaryExists        = errors.New("achievements summary already exists for game")
)

var ErrNotFinalized = errors.New("game has not been finalized")
