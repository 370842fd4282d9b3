package servers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leaguebot/league"
	"leaguebot/logger"
	"leaguebot/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	teams   []league.TeamView
	players []storage.PlayerRecord
	events  []storage.TransferEvent
	err     error

	gotFilter storage.HistoryFilter
	gotLimit  int
}

func (f *fakeReader) Teams() ([]league.TeamView, error) { return f.teams, f.err }

func (f *fakeReader) Team(name string) (league.TeamView, error) {
	if f.err != nil {
		return league.TeamView{}, f.err
	}
	for _, v := range f.teams {
		if v.Name == name {
			return v, nil
		}
	}
	return league.TeamView{}, league.ErrTeamNotFound
}

func (f *fakeReader) Players() ([]storage.PlayerRecord, error) { return f.players, f.err }

func (f *fakeReader) Profile(userID string) (storage.PlayerRecord, error) {
	for _, p := range f.players {
		if p.ID == userID {
			return p, nil
		}
	}
	return storage.PlayerRecord{}, league.ErrNotRegistered
}

func (f *fakeReader) RecentTransfers(ctx context.Context, filter storage.HistoryFilter, limit int) ([]storage.TransferEvent, error) {
	f.gotFilter, f.gotLimit = filter, limit
	return f.events, f.err
}

type fakePinger struct{ err error }

func (p fakePinger) PingDB(ctx context.Context) error { return p.err }

func newFakeReader() *fakeReader {
	lions := league.TeamView{
		Name: "Lions",
		Record: storage.TeamRecord{
			RoleID:   "111",
			Chairman: "10",
			Contracts: []storage.Contract{
				{PlayerID: "20", Seasons: storage.FixedSeasons(2), ReleaseClause: true},
			},
		},
		Players: map[string]storage.PlayerRecord{"20": *storage.NewFreeAgent("20", "Alice")},
	}
	return &fakeReader{
		teams:   []league.TeamView{lions},
		players: []storage.PlayerRecord{*storage.NewFreeAgent("20", "Alice")},
		events: []storage.TransferEvent{
			{Kind: storage.EventSigned, PlayerID: "20", Team: "Lions", Seasons: "2", CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		},
	}
}

func serve(t *testing.T, s *WebServer, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestWebServerRoutes(t *testing.T) {
	tests := map[string]struct {
		target   string
		wantCode int
		check    func(t *testing.T, body []byte)
	}{
		"teams": {
			target:   "/api/teams",
			wantCode: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var got []teamResponse
				require.NoError(t, json.Unmarshal(body, &got))
				require.Len(t, got, 1)
				assert.Equal(t, "Lions", got[0].Name)
				assert.Equal(t, []contractResponse{{PlayerID: "20", Name: "Alice", Seasons: "2", ReleaseClause: true}}, got[0].Roster)
			},
		},
		"team": {
			target:   "/api/teams/Lions",
			wantCode: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var got teamResponse
				require.NoError(t, json.Unmarshal(body, &got))
				assert.Equal(t, "10", got.Chairman)
				assert.Equal(t, "111", got.RoleID)
			},
		},
		"unknown team": {
			target:   "/api/teams/Tigers",
			wantCode: http.StatusNotFound,
		},
		"players": {
			target:   "/api/players",
			wantCode: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var got []map[string]any
				require.NoError(t, json.Unmarshal(body, &got))
				require.Len(t, got, 1)
				assert.Equal(t, "Alice", got[0]["name"])
			},
		},
		"player": {
			target:   "/api/players/20",
			wantCode: http.StatusOK,
		},
		"unknown player": {
			target:   "/api/players/99",
			wantCode: http.StatusNotFound,
		},
		"transfers": {
			target:   "/api/transfers",
			wantCode: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var got []transferResponse
				require.NoError(t, json.Unmarshal(body, &got))
				require.Len(t, got, 1)
				assert.Equal(t, storage.EventSigned, got[0].Kind)
			},
		},
		"bad limit": {
			target:   "/api/transfers?limit=0",
			wantCode: http.StatusBadRequest,
		},
		"healthz": {
			target:   "/healthz",
			wantCode: http.StatusOK,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := NewWebServer(logger.Nop(), ":0", newFakeReader(), nil)
			rec := serve(t, s, tt.target)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tt.check != nil {
				tt.check(t, rec.Body.Bytes())
			}
		})
	}
}

func TestWebServerTransfersQuery(t *testing.T) {
	reader := newFakeReader()
	s := NewWebServer(logger.Nop(), ":0", reader, nil)

	rec := serve(t, s, "/api/transfers?team=Lions&player=20&limit=500")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, storage.HistoryFilter{Team: "Lions", PlayerID: "20"}, reader.gotFilter)
	assert.Equal(t, maxTransfersLimit, reader.gotLimit)

	serve(t, s, "/api/transfers")
	assert.Equal(t, defaultTransfersLimit, reader.gotLimit)
}

func TestWebServerErrors(t *testing.T) {
	reader := newFakeReader()
	reader.err = errors.New("disk on fire")
	s := NewWebServer(logger.Nop(), ":0", reader, nil)

	rec := serve(t, s, "/api/teams")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire")
}

func TestWebServerHealth(t *testing.T) {
	tests := map[string]struct {
		pinger   Pinger
		wantCode int
	}{
		"no database": {pinger: nil, wantCode: http.StatusOK},
		"reachable":   {pinger: fakePinger{}, wantCode: http.StatusOK},
		"unreachable": {pinger: fakePinger{err: errors.New("closed")}, wantCode: http.StatusServiceUnavailable},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := NewWebServer(logger.Nop(), ":0", newFakeReader(), tt.pinger)
			assert.Equal(t, tt.wantCode, serve(t, s, "/healthz").Code)
		})
	}
}

func TestWebServerStartStop(t *testing.T) {
	s := NewWebServer(logger.Nop(), "127.0.0.1:0", newFakeReader(), nil)
	require.NoError(t, s.Start())

	resp, err := http.Get("http://" + s.Addr() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Stop())
	_, err = http.Get("http://" + s.Addr() + "/healthz")
	assert.Error(t, err)
}

type fakeServer struct {
	name     string
	startErr error
	log      *[]string
}

func (f *fakeServer) Name() string { return f.name }

func (f *fakeServer) Start() error {
	*f.log = append(*f.log, "start "+f.name)
	return f.startErr
}

func (f *fakeServer) Stop() error {
	*f.log = append(*f.log, "stop "+f.name)
	return nil
}

func TestManager(t *testing.T) {
	tests := map[string]struct {
		failOn  string
		wantErr bool
		want    []string
	}{
		"all start": {
			want: []string{"start a", "start b", "stop b", "stop a"},
		},
		"second fails": {
			failOn:  "b",
			wantErr: true,
			want:    []string{"start a", "start b", "stop a"},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var calls []string
			m := NewManager(logger.Nop())
			for _, n := range []string{"a", "b"} {
				srv := &fakeServer{name: n, log: &calls}
				if n == tt.failOn {
					srv.startErr = errors.New("port in use")
				}
				m.AddServer(srv)
			}
			err := m.StartAll()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				m.StopAll()
			}
			assert.Equal(t, tt.want, calls)
		})
	}
}
