package core

import (
	"context"
	"log/slog"
)

type ServiceContext struct {
	Context  context.Context
	Logger   *slog.Logger
	Source   TimeSeriesSource
	Settings Settings
}

type Settings struct {
	RollingWindow    int // cap of the trailing window, shrinks at the start of a series
	FetchConcurrency int // symbols requested from the source at once
}

func DefaultSettings() Settings {
	return Settings{
		RollingWindow:    MaxRollingWindow,
		FetchConcurrency: 4,
	}
}
