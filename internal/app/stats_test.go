package service_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/haydennng/badminton-matchups/internal/adapters/repository"
	service "github.com/haydennng/badminton-matchups/internal/app"
)

func seedMatches(t *testing.T, svc *service.Service) {
	t.Helper()
	ctx := context.Background()
	addRoster(t, svc, "alice", "bob", "carol", "dave")
	for _, in := range []service.RecordMatchInput{
		recordInput("alice", "bob", "carol", "dave", 21, 15),
		recordInput("alice", "bob", "carol", "dave", 21, 11),
		recordInput("alice", "carol", "bob", "dave", 18, 21),
	} {
		if _, err := svc.RecordMatch(ctx, in); err != nil {
			t.Fatalf("failed to record match: %v", err)
		}
	}
}

func TestPlayerStats(t *testing.T) {
	convey.Convey("Given a service with recorded history", t, func() {
		ctx := context.Background()
		svc := newStartedService(t)
		seedMatches(t, svc)

		convey.Convey("When fetching one player's stats", func() {
			stats, err := svc.PlayerStats(ctx, "alice")

			convey.Convey("Then the record should reflect every appearance", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(stats.TotalMatches, convey.ShouldEqual, 3)
				convey.So(stats.Wins, convey.ShouldEqual, 2)
				convey.So(stats.Losses, convey.ShouldEqual, 1)
				convey.So(stats.WinRate, convey.ShouldEqual, 66.7)
			})

			convey.Convey("Then winnings should split the game value per player", func() {
				// Wins pay 2.50 each; the loss debits 2.50.
				convey.So(stats.TotalWinnings, convey.ShouldEqual, 5.0)
				convey.So(stats.TotalLosses, convey.ShouldEqual, 2.5)
				convey.So(stats.NetEarnings, convey.ShouldEqual, 2.5)
			})

			convey.Convey("Then partners and opponents should be tracked", func() {
				convey.So(stats.Partners, convey.ShouldResemble, []string{"bob", "carol"})
				convey.So(stats.Opponents, convey.ShouldResemble, []string{"bob", "carol", "dave"})
			})
		})

		convey.Convey("When fetching stats for a player without history", func() {
			stats, err := svc.PlayerStats(ctx, "zoe")

			convey.Convey("Then an all-zero record should be returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(stats.TotalMatches, convey.ShouldEqual, 0)
				convey.So(stats.WinRate, convey.ShouldEqual, 0.0)
				convey.So(stats.Partners, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When fetching all player stats", func() {
			all := svc.AllPlayerStats(ctx)

			convey.Convey("Then every roster member should appear", func() {
				convey.So(all, convey.ShouldHaveLength, 4)
				for _, ps := range all {
					convey.So(ps.TotalMatches, convey.ShouldEqual, 3)
				}
			})
		})
	})
}

func TestEarnings(t *testing.T) {
	convey.Convey("Given a service with recorded history", t, func() {
		ctx := context.Background()
		svc := newStartedService(t)
		seedMatches(t, svc)

		convey.Convey("When fetching the earnings table", func() {
			table := svc.Earnings(ctx)

			convey.Convey("Then winners should come first and totals should balance", func() {
				convey.So(table, convey.ShouldHaveLength, 4)
				convey.So(table[0].NetEarnings, convey.ShouldBeGreaterThanOrEqualTo, table[len(table)-1].NetEarnings)

				total := 0.0
				for _, ps := range table {
					total += ps.NetEarnings
				}
				convey.So(total, convey.ShouldAlmostEqual, 0.0, 0.0001)
			})
		})

		convey.Convey("When fetching session earnings for a known session", func() {
			table, err := svc.SessionEarnings(ctx, "session_2025-03-14")

			convey.Convey("Then the session's players should be listed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(table, convey.ShouldHaveLength, 4)
			})
		})

		convey.Convey("When fetching session earnings for an unknown session", func() {
			_, err := svc.SessionEarnings(ctx, "session_1999-01-01")

			convey.Convey("Then a not-found error should be returned", func() {
				convey.So(err, convey.ShouldWrap, repository.ErrSessionNotFound)
			})
		})
	})
}

func TestPartnershipStats(t *testing.T) {
	convey.Convey("Given a service with recorded history", t, func() {
		ctx := context.Background()
		svc := newStartedService(t)
		seedMatches(t, svc)

		convey.Convey("When fetching all partnerships", func() {
			table := svc.PartnershipStats(ctx, 0)

			convey.Convey("Then every team composition should appear", func() {
				// ab, cd from two matches; ac, bd from one.
				convey.So(table, convey.ShouldHaveLength, 4)
			})

			convey.Convey("Then the best team should lead the table", func() {
				convey.So(table[0].Key, convey.ShouldEqual, "alice & bob")
				convey.So(table[0].Games, convey.ShouldEqual, 2)
				convey.So(table[0].Wins, convey.ShouldEqual, 2)
				convey.So(table[0].WinRate, convey.ShouldEqual, 100.0)
				convey.So(table[0].Earnings, convey.ShouldEqual, 10.0)
			})
		})

		convey.Convey("When filtering by minimum games", func() {
			table := svc.PartnershipStats(ctx, 2)

			convey.Convey("Then one-off teams should be dropped", func() {
				convey.So(table, convey.ShouldHaveLength, 2)
				for _, ps := range table {
					convey.So(ps.Games, convey.ShouldBeGreaterThanOrEqualTo, 2)
				}
			})
		})
	})
}

func TestSessions(t *testing.T) {
	convey.Convey("Given a service with recorded history", t, func() {
		ctx := context.Background()
		svc := newStartedService(t)
		seedMatches(t, svc)

		convey.Convey("When listing sessions", func() {
			sessions := svc.Sessions(ctx)

			convey.Convey("Then today's session should be summarized", func() {
				convey.So(sessions, convey.ShouldHaveLength, 1)
				convey.So(sessions[0].SessionID, convey.ShouldEqual, "session_2025-03-14")
				convey.So(sessions[0].MatchCount, convey.ShouldEqual, 3)
				convey.So(sessions[0].Players, convey.ShouldResemble, []string{"alice", "bob", "carol", "dave"})
			})
		})

		convey.Convey("When fetching a session by id", func() {
			detail, err := svc.SessionByID(ctx, "session_2025-03-14")

			convey.Convey("Then its matches should be included", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(detail.Matches, convey.ShouldHaveLength, 3)
			})
		})

		convey.Convey("When fetching session stats", func() {
			players, partnerships, err := svc.SessionStats(ctx, "session_2025-03-14")

			convey.Convey("Then both breakdowns should be present", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(players, convey.ShouldHaveLength, 4)
				convey.So(partnerships, convey.ShouldHaveLength, 4)
			})
		})

		convey.Convey("When creating a session for an explicit date", func() {
			sess, err := svc.CreateSession(ctx, "2025-03-21")

			convey.Convey("Then an empty summary should be returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(sess.SessionID, convey.ShouldEqual, "session_2025-03-21")
				convey.So(sess.MatchCount, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When deleting a session", func() {
			deleted, err := svc.DeleteSession(ctx, "session_2025-03-14")

			convey.Convey("Then its matches should cascade", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(deleted, convey.ShouldEqual, 3)
				convey.So(svc.Matches(ctx, ""), convey.ShouldBeEmpty)
			})
		})
	})
}

func TestExportCSV(t *testing.T) {
	convey.Convey("Given a service with recorded history", t, func() {
		ctx := context.Background()
		svc := newStartedService(t)
		seedMatches(t, svc)

		convey.Convey("When exporting the match history", func() {
			var buf bytes.Buffer
			err := svc.ExportCSV(ctx, &buf)

			convey.Convey("Then the CSV should carry a header and one row per match", func() {
				convey.So(err, convey.ShouldBeNil)
				lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
				convey.So(lines, convey.ShouldHaveLength, 4)
				convey.So(lines[0], convey.ShouldEqual, "match_id,timestamp,team1,team2,team1_score,team2_score,game_value")
				convey.So(lines[1], convey.ShouldContainSubstring, "alice & bob")
				convey.So(lines[1], convey.ShouldContainSubstring, "5.00")
			})
		})
	})
}
