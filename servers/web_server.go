// servers/web_server.go
package servers

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"leaguebot/interfaces"
	"leaguebot/league"
	"leaguebot/storage"

	"github.com/gorilla/mux"
)

const (
	defaultTransfersLimit = 20
	maxTransfersLimit     = 100
)

// LeagueReader is the read-only view of the league the status API serves.
type LeagueReader interface {
	Teams() ([]league.TeamView, error)
	Team(name string) (league.TeamView, error)
	Players() ([]storage.PlayerRecord, error)
	Profile(userID string) (storage.PlayerRecord, error)
	RecentTransfers(ctx context.Context, f storage.HistoryFilter, limit int) ([]storage.TransferEvent, error)
}

// Pinger reports whether a backing database is reachable.
type Pinger interface {
	PingDB(ctx context.Context) error
}

// WebServer はリーグの状態を読み取り専用の JSON で公開します。
type WebServer struct {
	log    interfaces.Logger
	league LeagueReader
	db     Pinger
	http   *http.Server

	mu       sync.Mutex
	listener net.Listener
}

// NewWebServer は新しいWebServerインスタンスを作成します。db は nil でも構いません。
func NewWebServer(log interfaces.Logger, addr string, reader LeagueReader, db Pinger) *WebServer {
	s := &WebServer{log: log, league: reader, db: db}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the router with every route registered.
func (s *WebServer) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/teams", s.listTeams).Methods(http.MethodGet)
	api.HandleFunc("/teams/{name}", s.getTeam).Methods(http.MethodGet)
	api.HandleFunc("/players", s.listPlayers).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}", s.getPlayer).Methods(http.MethodGet)
	api.HandleFunc("/transfers", s.listTransfers).Methods(http.MethodGet)
	return r
}

func (s *WebServer) Name() string { return "web" }

// Start はポートを確保してからバックグラウンドで配信を始めます。
func (s *WebServer) Start() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.log.Info("Webサーバーを起動します", "addr", ln.Addr().String())
	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Webサーバーが停止しました", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address once started.
func (s *WebServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.http.Addr
	}
	return s.listener.Addr().String()
}

// Stop はWebサーバーをシャットダウンします。
func (s *WebServer) Stop() error {
	s.log.Info("Webサーバーをシャットダウンします...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

// --- handlers ---

type contractResponse struct {
	PlayerID      string `json:"id"`
	Name          string `json:"name,omitempty"`
	Seasons       string `json:"seasons"`
	ReleaseClause bool   `json:"release_clause"`
}

type teamResponse struct {
	Name             string             `json:"name"`
	RoleID           string             `json:"role_id,omitempty"`
	Chairman         string             `json:"chairman,omitempty"`
	Manager          string             `json:"manager,omitempty"`
	AssistantManager string             `json:"assistant_manager,omitempty"`
	Roster           []contractResponse `json:"roster"`
}

func newTeamResponse(v league.TeamView) teamResponse {
	t := teamResponse{
		Name:             v.Name,
		RoleID:           string(v.Record.RoleID),
		Chairman:         v.Record.Chairman,
		Manager:          v.Record.Manager,
		AssistantManager: v.Record.AssistantManager,
		Roster:           make([]contractResponse, 0, len(v.Record.Contracts)),
	}
	for _, c := range v.Record.Contracts {
		t.Roster = append(t.Roster, contractResponse{
			PlayerID:      c.PlayerID,
			Name:          v.Players[c.PlayerID].Name,
			Seasons:       c.Seasons.String(),
			ReleaseClause: c.ReleaseClause,
		})
	}
	return t
}

type transferResponse struct {
	Kind          storage.EventKind `json:"kind"`
	PlayerID      string            `json:"player_id"`
	Team          string            `json:"team,omitempty"`
	ActorID       string            `json:"actor_id,omitempty"`
	Seasons       string            `json:"seasons,omitempty"`
	ReleaseClause bool              `json:"release_clause"`
	Reason        string            `json:"reason,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

func (s *WebServer) health(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.PingDB(r.Context()); err != nil {
			s.log.Warn("Health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *WebServer) listTeams(w http.ResponseWriter, r *http.Request) {
	views, err := s.league.Teams()
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]teamResponse, 0, len(views))
	for _, v := range views {
		out = append(out, newTeamResponse(v))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *WebServer) getTeam(w http.ResponseWriter, r *http.Request) {
	v, err := s.league.Team(mux.Vars(r)["name"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTeamResponse(v))
}

func (s *WebServer) listPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.league.Players()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if players == nil {
		players = []storage.PlayerRecord{}
	}
	writeJSON(w, http.StatusOK, players)
}

func (s *WebServer) getPlayer(w http.ResponseWriter, r *http.Request) {
	p, err := s.league.Profile(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *WebServer) listTransfers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := defaultTransfersLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxTransfersLimit)
	}
	events, err := s.league.RecentTransfers(r.Context(), storage.HistoryFilter{Team: q.Get("team"), PlayerID: q.Get("player")}, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]transferResponse, 0, len(events))
	for _, e := range events {
		out = append(out, transferResponse{
			Kind:          e.Kind,
			PlayerID:      e.PlayerID,
			Team:          e.Team,
			ActorID:       e.ActorID,
			Seasons:       e.Seasons,
			ReleaseClause: e.ReleaseClause,
			Reason:        e.Reason,
			CreatedAt:     e.CreatedAt.UTC(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *WebServer) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, league.ErrTeamNotFound), errors.Is(err, league.ErrNotRegistered):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	default:
		s.log.Error("Status API request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
