package matchup_test

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/haydennng/badminton-matchups/internal/domain/history"
	"github.com/haydennng/badminton-matchups/internal/domain/matchup"
	"github.com/haydennng/badminton-matchups/internal/domain/model"
)

func roster(names ...string) []model.Player {
	players := make([]model.Player, len(names))
	for i, n := range names {
		players[i] = model.Player{Name: n, Active: true, Order: i}
	}
	return players
}

func playedMatch(a1, a2, b1, b2 string, s1, s2 int) model.Match {
	return model.Match{
		ID:         a1 + a2 + b1 + b2,
		Team1:      model.NewTeam(a1, a2),
		Team2:      model.NewTeam(b1, b2),
		Team1Score: s1,
		Team2Score: s2,
	}
}

func courtNames(c model.Court) map[string]bool {
	return map[string]bool{
		c.TeamA[0]: true, c.TeamA[1]: true,
		c.TeamB[0]: true, c.TeamB[1]: true,
	}
}

func TestGenerateGuards(t *testing.T) {
	convey.Convey("Given a generator", t, func() {
		g := matchup.New()

		convey.Convey("When fewer than four players are active", func() {
			_, _, err := g.Generate(matchup.Request{Players: roster("alice", "bob", "carol")}, nil)

			convey.Convey("Then it should report insufficient players", func() {
				convey.So(err, convey.ShouldWrap, matchup.ErrInsufficientPlayers)
			})
		})

		convey.Convey("When inactive players bring the pool below four", func() {
			players := roster("alice", "bob", "carol", "dave")
			players[3].Active = false
			_, _, err := g.Generate(matchup.Request{Players: players}, nil)

			convey.Convey("Then it should report insufficient players", func() {
				convey.So(err, convey.ShouldWrap, matchup.ErrInsufficientPlayers)
			})
		})

		convey.Convey("When no players are active at all", func() {
			_, _, err := g.Generate(matchup.Request{}, nil)

			convey.Convey("Then it should report no valid candidate", func() {
				convey.So(err, convey.ShouldWrap, matchup.ErrNoValidCandidate)
			})
		})
	})
}

func TestGenerateSingleCourt(t *testing.T) {
	convey.Convey("Given four active players with no history", t, func() {
		g := matchup.New()
		req := matchup.Request{Players: roster("alice", "bob", "carol", "dave")}

		convey.Convey("When generating the primary recommendation", func() {
			rec, cur, err := g.Generate(req, nil)

			convey.Convey("Then it should propose one court of all four players", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rec.DualCourt, convey.ShouldBeFalse)
				convey.So(rec.Courts, convey.ShouldHaveLength, 1)
				convey.So(len(courtNames(rec.Courts[0])), convey.ShouldEqual, 4)
				convey.So(rec.Courts[0].Explanation, convey.ShouldNotBeEmpty)
				convey.So(rec.Courts[0].Explanation, convey.ShouldContainSubstring, "new partners")
				convey.So(cur.Index, convey.ShouldEqual, 0)
				convey.So(cur.Fingerprint, convey.ShouldNotBeEmpty)
			})

			convey.Convey("Then regenerating with the same inputs should repeat it", func() {
				again, _, err2 := g.Generate(req, nil)
				convey.So(err2, convey.ShouldBeNil)
				convey.So(again, convey.ShouldResemble, rec)
			})
		})

		convey.Convey("When cycling through all alternatives", func() {
			rec, cur, err := g.Generate(req, nil)
			convey.So(err, convey.ShouldBeNil)

			seen := map[string]bool{rec.Courts[0].TeamA[0] + rec.Courts[0].TeamA[1] + rec.Courts[0].TeamB[0] + rec.Courts[0].TeamB[1]: true}
			indexes := []int{cur.Index}
			for i := 0; i < 3; i++ {
				var next model.Recommendation
				next, cur, err = g.Generate(req, &cur)
				convey.So(err, convey.ShouldBeNil)
				seen[next.Courts[0].TeamA[0]+next.Courts[0].TeamA[1]+next.Courts[0].TeamB[0]+next.Courts[0].TeamB[1]] = true
				indexes = append(indexes, cur.Index)
			}

			convey.Convey("Then all three splits should appear before wrapping", func() {
				convey.So(len(seen), convey.ShouldEqual, 3)
				convey.So(indexes, convey.ShouldResemble, []int{0, 1, 2, 0})
			})
		})
	})

	convey.Convey("Given four players with pairing history", t, func() {
		g := matchup.New(matchup.WithRepeatGuard(false))
		stats := history.Aggregate([]model.Match{
			playedMatch("alice", "bob", "carol", "dave", 21, 15),
			playedMatch("alice", "bob", "carol", "dave", 21, 11),
		})
		req := matchup.Request{
			Players: roster("alice", "bob", "carol", "dave"),
			Stats:   stats,
		}

		convey.Convey("When generating the primary recommendation", func() {
			rec, _, err := g.Generate(req, nil)

			convey.Convey("Then it should avoid the repeated partnerships", func() {
				convey.So(err, convey.ShouldBeNil)
				c := rec.Courts[0]
				convey.So(c.TeamA.Key(), convey.ShouldNotResemble, model.NewPairKey("alice", "bob"))
				convey.So(c.TeamB.Key(), convey.ShouldNotResemble, model.NewPairKey("alice", "bob"))
				convey.So(c.TeamA.Key(), convey.ShouldNotResemble, model.NewPairKey("carol", "dave"))
				convey.So(c.TeamB.Key(), convey.ShouldNotResemble, model.NewPairKey("carol", "dave"))
			})
		})
	})
}

func TestGenerateCursorStaleness(t *testing.T) {
	convey.Convey("Given a cursor minted against different inputs", t, func() {
		g := matchup.New()
		req := matchup.Request{Players: roster("alice", "bob", "carol", "dave")}

		_, cur, err := g.Generate(req, nil)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When the roster changes before the next request", func() {
			grown := matchup.Request{Players: roster("alice", "bob", "carol", "dave", "erin")}
			rec, next, err := g.Generate(grown, &cur)

			convey.Convey("Then the stale cursor should restart at the primary candidate", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(next.Index, convey.ShouldEqual, 0)
				convey.So(next.Fingerprint, convey.ShouldNotEqual, cur.Fingerprint)
				convey.So(rec.Courts, convey.ShouldHaveLength, 1)
			})
		})
	})
}

func TestGenerateRepeatGuard(t *testing.T) {
	convey.Convey("Given the previous match equals the best candidate", t, func() {
		g := matchup.New()
		last := playedMatch("alice", "bob", "carol", "dave", 21, 15)
		req := matchup.Request{
			Players:   roster("alice", "bob", "carol", "dave"),
			LastMatch: &last,
		}

		convey.Convey("When generating with the guard enabled", func() {
			rec, _, err := g.Generate(req, nil)

			convey.Convey("Then the primary recommendation should differ from the last match", func() {
				convey.So(err, convey.ShouldBeNil)
				c := rec.Courts[0]
				convey.So(last.SameTeams(c.TeamA, c.TeamB), convey.ShouldBeFalse)
			})

			convey.Convey("Then the repeated split should still appear in the cycle", func() {
				_, cur, err := g.Generate(req, nil)
				convey.So(err, convey.ShouldBeNil)

				found := false
				for i := 0; i < 2; i++ {
					var next model.Recommendation
					next, cur, err = g.Generate(req, &cur)
					convey.So(err, convey.ShouldBeNil)
					if last.SameTeams(next.Courts[0].TeamA, next.Courts[0].TeamB) {
						found = true
					}
				}
				convey.So(found, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the guard is disabled", func() {
			relaxed := matchup.New(matchup.WithRepeatGuard(false))
			rec, _, err := relaxed.Generate(req, nil)

			convey.Convey("Then ranking alone decides the primary candidate", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rec.Courts, convey.ShouldHaveLength, 1)
			})
		})
	})
}

func TestGenerateDualCourt(t *testing.T) {
	convey.Convey("Given eight active players", t, func() {
		g := matchup.New()
		req := matchup.Request{
			Players: roster("alice", "bob", "carol", "dave", "erin", "frank", "grace", "henry"),
		}

		convey.Convey("When generating a recommendation", func() {
			rec, _, err := g.Generate(req, nil)

			convey.Convey("Then it should propose two disjoint courts", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rec.DualCourt, convey.ShouldBeTrue)
				convey.So(rec.Courts, convey.ShouldHaveLength, 2)

				all := map[string]bool{}
				for _, c := range rec.Courts {
					for n := range courtNames(c) {
						all[n] = true
					}
				}
				convey.So(len(all), convey.ShouldEqual, 8)
			})
		})
	})

	convey.Convey("Given more than eight active players", t, func() {
		g := matchup.New()
		// henry has far more games than everyone else
		stats := history.Aggregate([]model.Match{
			playedMatch("henry", "alice", "bob", "carol", 21, 15),
			playedMatch("henry", "dave", "erin", "frank", 21, 15),
			playedMatch("henry", "grace", "alice", "bob", 21, 15),
			playedMatch("henry", "bob", "carol", "dave", 21, 15),
		})
		req := matchup.Request{
			Players: roster("alice", "bob", "carol", "dave", "erin", "frank", "grace", "henry", "iris"),
			Stats:   stats,
		}

		convey.Convey("When generating a recommendation", func() {
			rec, _, err := g.Generate(req, nil)

			convey.Convey("Then the player with the most games should sit out", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rec.DualCourt, convey.ShouldBeTrue)
				for _, c := range rec.Courts {
					convey.So(courtNames(c)["henry"], convey.ShouldBeFalse)
				}
			})
		})
	})
}
