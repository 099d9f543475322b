package server

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/smnuman/youtube-commenter/internal/api/v1"
	"github.com/smnuman/youtube-commenter/internal/api/ws"
	"github.com/smnuman/youtube-commenter/internal/auth"
	"github.com/smnuman/youtube-commenter/internal/comments"
	"github.com/smnuman/youtube-commenter/internal/platform"
	"github.com/smnuman/youtube-commenter/internal/reply"
	"github.com/smnuman/youtube-commenter/internal/store/postgres"
)

func registerAuthRoutes(api huma.API, gate *auth.Gate) {
	v1.RegisterAuthRoutes(api, gate)
}

func registerCallbackRoute(gate *auth.Gate, successURL string) http.HandlerFunc {
	return v1.CallbackHandler(gate, successURL)
}

func registerAPIRoutes(api huma.API, store *postgres.Store, platformClient *platform.Client, syncer *comments.Service, orchestrator *reply.Orchestrator) {
	v1.RegisterVideoRoutes(api, store, platformClient)
	v1.RegisterCommentRoutes(api, syncer)
	v1.RegisterReplyRoutes(api, orchestrator)
	v1.RegisterHistoryRoutes(api, store)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/comments/{videoID}", hub.ServeComments)
}
