package cli

import (
	"errors"

	"github.com/felixgeelhaar/reelgate/adapter/api"
	accessApp "github.com/felixgeelhaar/reelgate/internal/access/application"
	catalogApp "github.com/felixgeelhaar/reelgate/internal/catalog/application"
	entitlementApp "github.com/felixgeelhaar/reelgate/internal/entitlement/application"
	paymentsApp "github.com/felixgeelhaar/reelgate/internal/payments/application"
)

// ErrNoDatabase is returned by commands that need the stores when the
// container could not be built.
var ErrNoDatabase = errors.New("this command requires a database connection")

// App holds the CLI application dependencies.
type App struct {
	Access       *accessApp.Service
	Catalog      *catalogApp.Service
	Entitlements *entitlementApp.Service
	Payments     *paymentsApp.Service

	// Server is started by the serve command.
	Server *api.Server
}

var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
