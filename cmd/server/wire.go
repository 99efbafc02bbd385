//go:build wireinject
// +build wireinject

package main

import (
	"github.com/beldeveloper/bluegreen/internal/app"
	"github.com/beldeveloper/bluegreen/internal/app/http"
	"github.com/beldeveloper/bluegreen/internal/app/svc"
	"github.com/google/wire"
)

func initializeContainer(s settings) (container, func(), error) {
	wire.Build(
		newConfig,
		newStateRepo,
		newHealthSource,
		newProvisionerURL,
		svc.NewProvisioner,
		newClock,
		newOrchestrator,
		wire.Bind(new(app.OrchestratorSvc), new(*svc.Orchestrator)),
		newAccessKey,
		http.NewHandler,
		http.NewRouter,
		newWatcher,
		newContainer,
	)
	return container{}, nil, nil
}
