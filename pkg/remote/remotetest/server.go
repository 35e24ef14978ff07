// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package remotetest runs an in-process gesto API for tests
package remotetest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/walteh/gesto/pkg/basket"
	"github.com/walteh/gesto/pkg/remote"
)

// Route names accepted by Fail and Calls
const (
	RouteHealth     = "health"
	RouteRequests   = "requests"
	RouteSaved      = "saved"
	RouteSync       = "sync"
	RouteSend       = "send"
	RouteMove       = "move"
	RouteMovements  = "movements"
	RouteUndo       = "undo"
	RouteCatalog    = "catalog"
	RouteAreaItems  = "area-items"
	RouteAssign     = "assign"
	RouteLogin      = "login"
	movementsLayout = "2006-01-02"
)

// SyncCall is one recorded sync push
type SyncCall struct {
	Context remote.BasketContext
	Body    remote.SyncRequest
}

// 🧪 Server is a fake gesto API backed by in-memory state
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	healthy   bool
	requests  []remote.ActiveRequest
	baskets   map[remote.BasketContext]map[string]basket.Items
	catalog   []remote.CatalogItem
	assigned  map[string][]basket.ID
	movements []remote.Movement
	moved     map[string]basket.Items
	syncs     []SyncCall
	fail      map[string]int
	calls     map[string]int
	creds     *remote.Credentials
	token     string
	lastQuery url.Values
	latency   time.Duration
}

// New starts a server that is closed when the test ends
func New(t testing.TB) *Server {
	s := &Server{
		healthy:  true,
		baskets:  make(map[remote.BasketContext]map[string]basket.Items),
		assigned: make(map[string][]basket.ID),
		moved:    make(map[string]basket.Items),
		fail:     make(map[string]int),
		calls:    make(map[string]int),
	}
	s.Server = httptest.NewServer(s.Router())
	t.Cleanup(s.Close)
	return s
}

// Router returns the mux serving the fake API
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.route(RouteHealth, false, s.health)).Methods(http.MethodGet)
	r.HandleFunc("/request/list", s.route(RouteRequests, false, s.listRequests)).Methods(http.MethodGet)
	r.HandleFunc("/request/products/saved/{context}/{area}", s.route(RouteSaved, false, s.saved)).Methods(http.MethodGet)
	r.HandleFunc("/request/sync/{context}", s.route(RouteSync, false, s.sync)).Methods(http.MethodPost)
	r.HandleFunc("/request/send-to-warehouse/{area}", s.route(RouteSend, false, s.send)).Methods(http.MethodPost)
	r.HandleFunc("/request/make-movement/{area}", s.route(RouteMove, false, s.move)).Methods(http.MethodPost)
	r.HandleFunc("/inventory-movements", s.route(RouteMovements, true, s.listMovements)).Methods(http.MethodGet)
	r.HandleFunc("/inventory-movements/{id}", s.route(RouteUndo, true, s.undo)).Methods(http.MethodDelete)
	r.HandleFunc("/inventory-items", s.route(RouteCatalog, true, s.listCatalog)).Methods(http.MethodGet)
	r.HandleFunc("/areas-items/items/{area}", s.route(RouteAreaItems, true, s.areaItems)).Methods(http.MethodGet)
	r.HandleFunc("/areas-items/items", s.route(RouteAssign, true, s.assign)).Methods(http.MethodPut)
	r.HandleFunc("/login", s.route(RouteLogin, false, s.login)).Methods(http.MethodPost)
	return r
}

func (s *Server) route(name string, private bool, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[name]++
		code := s.fail[name]
		token := s.token
		needAuth := private && s.creds != nil
		latency := s.latency
		s.mu.Unlock()

		if latency > 0 {
			select {
			case <-time.After(latency):
			case <-r.Context().Done():
				return
			}
		}

		if code != 0 {
			http.Error(w, http.StatusText(code), code)
			return
		}
		if needAuth && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	ok := s.healthy
	s.mu.Unlock()
	if !ok {
		http.Error(w, "down", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) listRequests(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.requests)
}

func (s *Server) saved(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	items, ok := s.baskets[remote.BasketContext(vars["context"])][vars["area"]]
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, items)
}

func (s *Server) sync(w http.ResponseWriter, r *http.Request) {
	var body remote.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	bc := remote.BasketContext(mux.Vars(r)["context"])

	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncs = append(s.syncs, SyncCall{Context: bc, Body: body})
	if s.baskets[bc] == nil {
		s.baskets[bc] = make(map[string]basket.Items)
	}
	s.baskets[bc][body.AreaID] = body.Products
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *Server) send(w http.ResponseWriter, r *http.Request) {
	area := mux.Vars(r)["area"]
	s.mu.Lock()
	defer s.mu.Unlock()

	for bc, byArea := range s.baskets {
		items, ok := byArea[area]
		if !ok {
			continue
		}
		next := make(basket.Items, len(items))
		for i, it := range items {
			it.Reported = true
			next[i] = it
		}
		s.baskets[bc][area] = next
	}
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *Server) move(w http.ResponseWriter, r *http.Request) {
	area := mux.Vars(r)["area"]
	var body remote.MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.moved[area] = body.Products
	for _, byArea := range s.baskets {
		delete(byArea, area)
	}
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *Server) listMovements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, _ := time.Parse(movementsLayout, q.Get("startDate"))
	to, _ := time.Parse(movementsLayout, q.Get("endDate"))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastQuery = q

	out := []remote.Movement{}
	for _, m := range s.movements {
		day := m.MovementDate.UTC().Truncate(24 * time.Hour)
		if !from.IsZero() && day.Before(from) {
			continue
		}
		if !to.IsZero() && day.After(to) {
			continue
		}
		out = append(out, m)
	}
	writeJSON(w, out)
}

func (s *Server) undo(w http.ResponseWriter, r *http.Request) {
	id := basket.ID(mux.Vars(r)["id"])
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, m := range s.movements {
		if m.ID == id {
			s.movements = append(s.movements[:i], s.movements[i+1:]...)
			writeJSON(w, map[string]bool{"ok": true})
			return
		}
	}
	http.NotFound(w, r)
}

func (s *Server) listCatalog(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.catalog)
}

func (s *Server) areaItems(w http.ResponseWriter, r *http.Request) {
	area := mux.Vars(r)["area"]
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []remote.CatalogItem{}
	for _, id := range s.assigned[area] {
		for _, c := range s.catalog {
			if c.ID == id {
				out = append(out, c)
			}
		}
	}
	writeJSON(w, out)
}

func (s *Server) assign(w http.ResponseWriter, r *http.Request) {
	var body remote.AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assigned[body.AreaID] = body.ItemIDs
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds remote.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creds == nil || creds != *s.creds {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
		return
	}
	writeJSON(w, remote.LoginResponse{AccessToken: s.token})
}

// SetHealthy switches the health endpoint between 200 and 503
func (s *Server) SetHealthy(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthy = ok
}

// SetLatency delays every response
func (s *Server) SetLatency(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latency = d
}

func (s *Server) SetRequests(reqs ...remote.ActiveRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = reqs
}

// SetBasket stores the saved items of an area
func (s *Server) SetBasket(bc remote.BasketContext, area string, items basket.Items) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.baskets[bc] == nil {
		s.baskets[bc] = make(map[string]basket.Items)
	}
	s.baskets[bc][area] = items
}

// Basket returns the saved items of an area as the server holds them
func (s *Server) Basket(bc remote.BasketContext, area string) (basket.Items, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, ok := s.baskets[bc][area]
	return items, ok
}

func (s *Server) SetCatalog(items ...remote.CatalogItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = items
}

func (s *Server) SetAssigned(area string, ids ...basket.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assigned[area] = ids
}

func (s *Server) Assigned(area string) []basket.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]basket.ID(nil), s.assigned[area]...)
}

func (s *Server) SetMovements(ms ...remote.Movement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movements = ms
}

func (s *Server) Movements() []remote.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]remote.Movement(nil), s.movements...)
}

// Moved returns the snapshot posted to make-movement for an area
func (s *Server) Moved(area string) (basket.Items, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, ok := s.moved[area]
	return items, ok
}

// Syncs returns every recorded sync push
func (s *Server) Syncs() []SyncCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SyncCall(nil), s.syncs...)
}

// LastMovementQuery returns the query of the latest movement listing
func (s *Server) LastMovementQuery() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery
}

// RequireLogin protects catalog and movement routes behind creds
func (s *Server) RequireLogin(creds remote.Credentials, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = &creds
	s.token = token
}

// RotateToken invalidates the current token
func (s *Server) RotateToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Fail makes a route answer with code until Recover is called
func (s *Server) Fail(route string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[route] = code
}

// Recover clears every injected failure
func (s *Server) Recover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = make(map[string]int)
}

// Calls returns how often a route was hit
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// BaseURL returns the server url with no trailing slash
func (s *Server) BaseURL() string {
	return strings.TrimRight(s.Server.URL, "/")
}
