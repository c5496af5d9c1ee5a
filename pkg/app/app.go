// Package app assembles the settlement engine from its dependencies.
package app

import (
	"log/slog"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/config"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/eventbus"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/ledger"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/provider"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/repository"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/service/settlement"
)

// Deps contains everything the application needs from infrastructure.
type Deps struct {
	Uow      repository.UnitOfWork
	Prices   provider.PriceOracle
	Notifier provider.Notifier
	Evidence provider.EvidenceStore
	EventBus eventbus.Bus
	Logger   *slog.Logger
	Clock    ledger.Clock
	// Close releases connections opened for these deps. May be nil.
	Close func() error
}

type App struct {
	Deps       *Deps
	Config     *config.App
	Settlement *settlement.Engine
}

func New(deps *Deps, cfg *config.App) *App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	app := &App{
		Deps:   deps,
		Config: cfg,
	}
	app.setupEventBus()

	app.Settlement = settlement.New(settlement.Deps{
		Uow:      deps.Uow,
		Prices:   deps.Prices,
		Notifier: deps.Notifier,
		Bus:      deps.EventBus,
		Clock:    deps.Clock,
		Logger:   deps.Logger,
	}, settlement.RulesFrom(cfg.Ledger))
	return app
}
