package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/hongminglow/holonet-be/internal/auth"
)

// Route declares one operation together with its access policy.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
	// Public routes skip authentication entirely.
	Public bool
	// Requires lists the accepted roles. Empty means any authenticated principal.
	Requires auth.Requirement
}

// Name identifies the operation in logs and metrics.
func (r Route) Name() string {
	return r.Method + " " + r.Path
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
