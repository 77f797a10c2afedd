//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/ahump20/Sandlot-Sluggers-sub004/internal/core/observability/log"
	"github.com/ahump20/Sandlot-Sluggers-sub004/internal/server"
)

func ProvideLogger() *log.Logger {
	wire.Build(log.Provide)
	return log.New(log.LevelDebug)
}

func ProvideServer(cfg server.Config) (*server.Server, error) {
	wire.Build(
		wire.Bind(new(log.Log), new(*log.Logger)),
		log.Provide,
		server.NewServer,
	)
	return nil, nil
}
