// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/kestrellabs/recordchain/app/services/ledger/handlers/v1/public"
	"github.com/kestrellabs/recordchain/foundation/chain/state"
	"github.com/kestrellabs/recordchain/foundation/events"
	"github.com/kestrellabs/recordchain/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodPost, version, "/records", pbl.SubmitRecord)
	app.Handle(http.MethodGet, version, "/genesis", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/intake", pbl.Intake)
	app.Handle(http.MethodGet, version, "/latest", pbl.Latest)
	app.Handle(http.MethodGet, version, "/blocks/search/:name/:value", pbl.BlocksByField)
	app.Handle(http.MethodGet, version, "/blocks/:from/:to", pbl.BlocksByNumber)
	app.Handle(http.MethodGet, version, "/chain/validate", pbl.Validate)
	app.Handle(http.MethodGet, version, "/events", pbl.Events)
}
