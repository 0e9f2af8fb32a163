package app

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/orderdemo/internal/config"
	"github.com/Additional-Code/orderdemo/internal/database"
	"github.com/Additional-Code/orderdemo/internal/logger"
	"github.com/Additional-Code/orderdemo/internal/migration"
	"github.com/Additional-Code/orderdemo/internal/observability"
	"github.com/Additional-Code/orderdemo/internal/seeder"
	httpserver "github.com/Additional-Code/orderdemo/internal/server/http"
	serviceorder "github.com/Additional-Code/orderdemo/internal/service/order"
	transporthttp "github.com/Additional-Code/orderdemo/internal/transport/http"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	database.Module,
	logger.Module,
	observability.Module,
)

// HTTP wires the HTTP transport on top of the core modules. Startup migrates
// and seeds the database before the listener opens.
var HTTP = fx.Options(
	Core,
	migration.Module,
	seeder.Module,
	serviceorder.Module,
	fx.Invoke(prepareDatabase),
	httpserver.Module,
	transporthttp.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
