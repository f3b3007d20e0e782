package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/haydennng/badminton-matchups/internal/adapters/http/api"
	"github.com/haydennng/badminton-matchups/internal/adapters/repository"
	service "github.com/haydennng/badminton-matchups/internal/app"
	"github.com/haydennng/badminton-matchups/pkg/logger"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	if err := logger.Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	store := repository.NewMemStore(
		repository.WithClock(func() time.Time {
			return time.Date(2025, 3, 14, 19, 0, 0, 0, time.UTC)
		}),
	)
	svc := service.New(service.WithStore(store))
	ctx := context.Background()
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("failed to start service: %v", err)
	}
	t.Cleanup(svc.Stop)

	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(ctx, mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func doJSONList(t *testing.T, url string) (*http.Response, []map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var decoded []map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func addPlayers(t *testing.T, ts *httptest.Server, names ...string) {
	t.Helper()
	for _, n := range names {
		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/players", map[string]string{"name": n})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("failed to add player %s: status %d", n, resp.StatusCode)
		}
	}
}

func recordTestMatch(t *testing.T, ts *httptest.Server, team1, team2 []string, s1, s2 int) map[string]any {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/matches", map[string]any{
		"team1":       team1,
		"team2":       team2,
		"team1_score": s1,
		"team2_score": s2,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("failed to record match: status %d body %v", resp.StatusCode, body)
	}
	return body
}

func TestPlayersEndpoints(t *testing.T) {
	convey.Convey("Given a running API server", t, func() {
		ts := newTestServer(t)

		convey.Convey("When creating a player", func() {
			resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/players", map[string]string{"name": "alice"})

			convey.Convey("Then the roster entry should be returned", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusCreated)
				convey.So(body["name"], convey.ShouldEqual, "alice")
				convey.So(body["active"], convey.ShouldEqual, true)
			})

			convey.Convey("Then creating the same name again should conflict", func() {
				resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/players", map[string]string{"name": "alice"})
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusConflict)
				convey.So(body["code"], convey.ShouldEqual, "player_exists")
			})

			convey.Convey("Then the roster listing should contain it", func() {
				resp, list := doJSONList(t, ts.URL+"/api/players")
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(list, convey.ShouldHaveLength, 1)
			})
		})

		convey.Convey("When creating a player with an empty name", func() {
			resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/players", map[string]string{"name": "  "})

			convey.Convey("Then a validation error should be returned", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusBadRequest)
				convey.So(body["code"], convey.ShouldEqual, "invalid_player_name")
			})
		})

		convey.Convey("When toggling a player's active flag", func() {
			addPlayers(t, ts, "bob")
			resp, body := doJSON(t, http.MethodPatch, ts.URL+"/api/players/bob/active", map[string]bool{"active": false})

			convey.Convey("Then the updated entry should be returned", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(body["active"], convey.ShouldEqual, false)
			})
		})

		convey.Convey("When removing an unknown player", func() {
			resp, body := doJSON(t, http.MethodDelete, ts.URL+"/api/players/ghost", nil)

			convey.Convey("Then 404 should be returned", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusNotFound)
				convey.So(body["code"], convey.ShouldEqual, "not_found")
			})
		})
	})
}

func TestMatchesEndpoints(t *testing.T) {
	convey.Convey("Given a server with four players", t, func() {
		ts := newTestServer(t)
		addPlayers(t, ts, "alice", "bob", "carol", "dave")

		convey.Convey("When recording a valid match", func() {
			body := recordTestMatch(t, ts, []string{"alice", "bob"}, []string{"carol", "dave"}, 21, 15)

			convey.Convey("Then the priced record should be returned", func() {
				convey.So(body["match_id"], convey.ShouldNotBeEmpty)
				convey.So(body["game_value"], convey.ShouldEqual, 5.0)
				convey.So(body["winner"], convey.ShouldEqual, "team1")
				convey.So(body["session_id"], convey.ShouldEqual, "session_2025-03-14")
			})

			convey.Convey("Then the history listing should include it", func() {
				resp, list := doJSONList(t, ts.URL+"/api/matches")
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(list, convey.ShouldHaveLength, 1)
			})

			convey.Convey("Then the match should be patchable", func() {
				id, _ := body["match_id"].(string)
				resp, patched := doJSON(t, http.MethodPatch, ts.URL+"/api/matches/"+id, map[string]any{"team2_score": 23})
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(patched["winner"], convey.ShouldEqual, "team2")
			})

			convey.Convey("Then the match should be deletable", func() {
				id, _ := body["match_id"].(string)
				resp, _ := doJSON(t, http.MethodDelete, ts.URL+"/api/matches/"+id, nil)
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			})
		})

		convey.Convey("When recording a tied match", func() {
			resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/matches", map[string]any{
				"team1": []string{"alice", "bob"}, "team2": []string{"carol", "dave"},
				"team1_score": 21, "team2_score": 21,
			})

			convey.Convey("Then a validation error should be returned", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusBadRequest)
				convey.So(body["code"], convey.ShouldEqual, "invalid_score")
			})
		})

		convey.Convey("When recording with an unknown player", func() {
			resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/matches", map[string]any{
				"team1": []string{"alice", "mallory"}, "team2": []string{"carol", "dave"},
				"team1_score": 21, "team2_score": 15,
			})

			convey.Convey("Then the player should be called out", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusBadRequest)
				convey.So(body["code"], convey.ShouldEqual, "unknown_player")
			})
		})

		convey.Convey("When recording with a one-player team", func() {
			resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/matches", map[string]any{
				"team1": []string{"alice"}, "team2": []string{"carol", "dave"},
				"team1_score": 21, "team2_score": 15,
			})

			convey.Convey("Then the shape should be rejected", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusBadRequest)
				convey.So(body["code"], convey.ShouldEqual, "bad_request")
			})
		})

		convey.Convey("When exporting the history", func() {
			recordTestMatch(t, ts, []string{"alice", "bob"}, []string{"carol", "dave"}, 21, 15)
			resp, err := http.Get(ts.URL + "/api/matches/export")
			convey.So(err, convey.ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()

			convey.Convey("Then CSV should be served", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(resp.Header.Get("Content-Type"), convey.ShouldStartWith, "text/csv")
			})
		})
	})
}

func TestRecommendationsEndpoint(t *testing.T) {
	convey.Convey("Given a server with four players", t, func() {
		ts := newTestServer(t)
		addPlayers(t, ts, "alice", "bob", "carol", "dave")

		convey.Convey("When requesting a recommendation", func() {
			resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/recommendations", nil)

			convey.Convey("Then a court and a cursor should be returned", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

				rec, _ := body["recommendation"].(map[string]any)
				convey.So(rec, convey.ShouldNotBeNil)
				courts, _ := rec["courts"].([]any)
				convey.So(courts, convey.ShouldHaveLength, 1)

				cursor, _ := body["cursor"].(map[string]any)
				convey.So(cursor["fingerprint"], convey.ShouldNotBeEmpty)
				convey.So(cursor["index"], convey.ShouldEqual, 0)
			})

			convey.Convey("Then cycling with the cursor should advance the index", func() {
				cursor, _ := body["cursor"].(map[string]any)
				fp, _ := cursor["fingerprint"].(string)

				resp, next := doJSON(t, http.MethodGet, ts.URL+"/api/recommendations?fingerprint="+fp+"&index=0", nil)
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				nextCursor, _ := next["cursor"].(map[string]any)
				convey.So(nextCursor["index"], convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When too few players are active", func() {
			fresh := newTestServer(t)
			addPlayers(t, fresh, "alice", "bob")
			resp, body := doJSON(t, http.MethodGet, fresh.URL+"/api/recommendations", nil)

			convey.Convey("Then a conflict should be reported", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusConflict)
				convey.So(body["code"], convey.ShouldEqual, "insufficient_players")
			})
		})
	})
}

func TestSessionsEndpoints(t *testing.T) {
	convey.Convey("Given a server with recorded history", t, func() {
		ts := newTestServer(t)
		addPlayers(t, ts, "alice", "bob", "carol", "dave")
		recordTestMatch(t, ts, []string{"alice", "bob"}, []string{"carol", "dave"}, 21, 15)

		convey.Convey("When fetching the current session", func() {
			resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/sessions/current", nil)

			convey.Convey("Then today's summary should be returned", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(body["session_id"], convey.ShouldEqual, "session_2025-03-14")
				convey.So(body["match_count"], convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When listing sessions", func() {
			resp, list := doJSONList(t, ts.URL+"/api/sessions")

			convey.Convey("Then the session should be present", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(list, convey.ShouldHaveLength, 1)
			})
		})

		convey.Convey("When fetching session earnings", func() {
			resp, list := doJSONList(t, ts.URL+"/api/sessions/session_2025-03-14/earnings")

			convey.Convey("Then per-player positions should be returned", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(list, convey.ShouldHaveLength, 4)
			})
		})

		convey.Convey("When fetching stats for an unknown session", func() {
			resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/sessions/session_1999-01-01/stats", nil)

			convey.Convey("Then 404 should be returned", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusNotFound)
				convey.So(body["code"], convey.ShouldEqual, "not_found")
			})
		})

		convey.Convey("When deleting the session", func() {
			resp, body := doJSON(t, http.MethodDelete, ts.URL+"/api/sessions/session_2025-03-14", nil)

			convey.Convey("Then the cascade count should be reported", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(body["deleted_matches"], convey.ShouldEqual, 1)
			})
		})
	})
}

func TestReportsAndPlanningEndpoints(t *testing.T) {
	convey.Convey("Given a server with recorded history", t, func() {
		ts := newTestServer(t)
		addPlayers(t, ts, "alice", "bob", "carol", "dave")
		recordTestMatch(t, ts, []string{"alice", "bob"}, []string{"carol", "dave"}, 21, 15)

		convey.Convey("When fetching player stats", func() {
			resp, list := doJSONList(t, ts.URL+"/api/player-stats")

			convey.Convey("Then every participant should be covered", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(list, convey.ShouldHaveLength, 4)
			})
		})

		convey.Convey("When fetching one player's stats", func() {
			resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/player-stats/alice", nil)

			convey.Convey("Then the record should be returned", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(body["player"], convey.ShouldEqual, "alice")
				convey.So(body["wins"], convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When fetching the earnings table", func() {
			resp, list := doJSONList(t, ts.URL+"/api/earnings")

			convey.Convey("Then positions should be returned", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(list, convey.ShouldHaveLength, 4)
			})
		})

		convey.Convey("When fetching partnerships", func() {
			resp, list := doJSONList(t, ts.URL+"/api/partnerships")

			convey.Convey("Then both teams should be present", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(list, convey.ShouldHaveLength, 2)
			})
		})

		convey.Convey("When estimating a session plan", func() {
			resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/estimate?hours=2", nil)

			convey.Convey("Then games and total should be computed", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(body["games"], convey.ShouldEqual, 8)
				convey.So(body["estimated_total"], convey.ShouldEqual, 40.0)
			})
		})

		convey.Convey("When estimating without hours", func() {
			resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/estimate", nil)

			convey.Convey("Then a validation error should be returned", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusBadRequest)
				convey.So(body["code"], convey.ShouldEqual, "bad_request")
			})
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	convey.Convey("Given a running API server", t, func() {
		ts := newTestServer(t)

		convey.Convey("When fetching service stats", func() {
			resp, body := doJSON(t, http.MethodGet, ts.URL+"/stats", nil)

			convey.Convey("Then the monitoring snapshot should be returned", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(body["started"], convey.ShouldEqual, true)
				convey.So(body["strategy"], convey.ShouldEqual, "fixed")
			})
		})

		convey.Convey("When fetching metrics", func() {
			resp, err := http.Get(ts.URL + "/healthz")
			convey.So(err, convey.ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()

			convey.Convey("Then the Prometheus endpoint should respond", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			})
		})
	})
}
