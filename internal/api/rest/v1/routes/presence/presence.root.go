package presence

import (
	"github.com/nxyyspace/api/internal/api/rest/middleware"
	"github.com/nxyyspace/api/internal/api/rest/rest"
	"github.com/nxyyspace/api/internal/global"
	"github.com/nxyyspace/api/internal/svc/presence"
	"github.com/seventv/common/utils"
)

type Route struct {
	Ctx global.Context
}

func New(gCtx global.Context) rest.Route {
	return &Route{gCtx}
}

func (r *Route) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:    "/presence",
		Method: rest.GET,
		Children: []rest.Route{
			newUserPresence(r.Ctx),
			newUserTheme(r.Ctx),
		},
		Middleware: []rest.Middleware{
			middleware.NoStore(),
		},
	}
}

// Handler returns every tracked presence in the order the ids were configured
func (r *Route) Handler(ctx *rest.Ctx) rest.APIError {
	inst := r.Ctx.Inst().Presence

	ids := inst.TrackedIDs()
	snapshot := inst.Snapshot()

	result := SnapshotModel{
		State:   inst.State().String(),
		Tracked: ids,
		Users:   make([]PresenceModel, 0, len(ids)),
	}

	for _, id := range ids {
		if rec, ok := snapshot[id]; ok {
			result.Users = append(result.Users, NewPresenceModel(rec))
		}
	}

	return ctx.JSON(rest.OK, result)
}

type SnapshotModel struct {
	State   string          `json:"state"`
	Tracked []string        `json:"tracked"`
	Users   []PresenceModel `json:"users"`
}

// lookup serves tracked users from the live map and everyone else from a fresh fetch
func lookup(gctx global.Context, id string) (presence.Record, bool) {
	inst := gctx.Inst().Presence

	if utils.Contains(inst.TrackedIDs(), id) {
		if rec, ok := inst.Get(id); ok {
			return rec, true
		}
	}

	rec, ok := inst.FetchPresence(gctx, id)
	if !ok || rec == nil {
		return presence.Record{}, false
	}

	return *rec, true
}
