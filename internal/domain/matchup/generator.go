// Package matchup selects fair 2v2 team compositions from a pool of active
// players and their pairing history. Generation is read-only over history:
// it produces a transient recommendation and never mutates stored state.
package matchup

import (
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"

	"github.com/haydennng/badminton-matchups/internal/domain/model"
)

// Scoring weights for candidate fairness, lower totals are better. Repeat
// partnering counts double against a candidate because partnering compounds
// skill-pairing effects more than a single opposition does.
const (
	partnershipWeight = 2
	opponentWeight    = 1
)

// Pool sizing constants.
const (
	minPlayers       = 4
	courtSize        = 4
	dualCourtPlayers = 8
)

// Sentinel kinds for generation errors.
var (
	// ErrInsufficientPlayers means fewer than four active players exist.
	ErrInsufficientPlayers = errors.New("at least 4 active players are required")
	// ErrNoValidCandidate is a defensive terminal case: the candidate pool
	// came up empty even though the player guard passed.
	ErrNoValidCandidate = errors.New("no valid matchup candidate")
)

// Stats exposes the pairing history counts the generator scores against.
type Stats interface {
	// Partnered returns how often a and b played on the same team.
	Partnered(a, b string) int
	// Opposed returns how often a and b played on opposing teams.
	Opposed(a, b string) int
	// GamesPlayed returns the total matches name appeared in.
	GamesPlayed(name string) int
}

// Cursor tracks a caller's position in the ranked candidate list so
// repeated "next alternative" requests cycle without repeating. It is a
// plain value threaded through each call; the generator keeps no state
// between calls.
type Cursor struct {
	Fingerprint string `json:"fingerprint"`
	Index       int    `json:"index"`
}

// Request carries the inputs for one generation cycle.
type Request struct {
	// Players is the roster; inactive entries are filtered here.
	Players []model.Player
	// Stats is the pairing history to score candidates against.
	Stats Stats
	// LastMatch, when set, is the most recently recorded match. The
	// primary recommendation skips a candidate that would replay it.
	LastMatch *model.Match
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithRepeatGuard enables or disables the immediate-repeat skip. Manual
// flows that deliberately replay a matchup can turn it off; automatic
// recommendation keeps it on.
func WithRepeatGuard(enabled bool) Option {
	return func(g *Generator) {
		g.repeatGuard = enabled
	}
}

// Generator enumerates, scores, and ranks candidate team compositions.
type Generator struct {
	repeatGuard bool
}

// New creates a Generator with default configuration.
func New(opts ...Option) *Generator {
	g := &Generator{repeatGuard: true}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// court is one scored 2v2 split of four players.
type court struct {
	teamA model.Team
	teamB model.Team
	score int
}

// candidate is one ranked entry in the generation pool: a single court, or
// a pair of disjoint courts in dual-court mode.
type candidate struct {
	courts     []court
	score      int
	totalGames int
	key        string
}

// Generate produces the recommendation at the caller's cursor position.
// A nil or stale cursor selects the primary (best-ranked) candidate;
// passing back the returned cursor advances to the next-best unseen
// alternative, wrapping after the last one.
func (g *Generator) Generate(req Request, cur *Cursor) (model.Recommendation, Cursor, error) {
	active := activeNames(req.Players)
	if len(active) == 0 {
		return model.Recommendation{}, Cursor{}, ErrNoValidCandidate
	}
	if len(active) < minPlayers {
		return model.Recommendation{}, Cursor{}, fmt.Errorf("%w: have %d", ErrInsufficientPlayers, len(active))
	}

	stats := req.Stats
	if stats == nil {
		stats = zeroStats{}
	}

	dual := len(active) >= dualCourtPlayers
	pool := active
	if dual {
		pool = sampleForDualCourt(active, stats)
	}

	var cands []candidate
	if dual {
		cands = enumerateDualCourt(pool, stats)
	} else {
		cands = enumerateSingleCourt(pool, stats)
	}
	if len(cands) == 0 {
		return model.Recommendation{}, Cursor{}, ErrNoValidCandidate
	}

	rank(cands)

	// Never auto-replay the exact previous matchup. The repeated candidate
	// stays in the cycle but moves to the very end of it.
	if g.repeatGuard && req.LastMatch != nil && len(cands) > 1 && repeats(cands[0], *req.LastMatch) {
		first := cands[0]
		copy(cands, cands[1:])
		cands[len(cands)-1] = first
	}

	fp := fingerprint(pool, stats, req.LastMatch)
	idx := 0
	if cur != nil && cur.Fingerprint == fp {
		idx = (cur.Index + 1) % len(cands)
	}

	return buildRecommendation(cands[idx], dual, stats), Cursor{Fingerprint: fp, Index: idx}, nil
}

// activeNames filters the roster to active players, sorted by name for
// deterministic enumeration.
func activeNames(players []model.Player) []string {
	names := make([]string, 0, len(players))
	for _, p := range players {
		if p.Active {
			names = append(names, p.Name)
		}
	}
	sort.Strings(names)
	return names
}

// sampleForDualCourt picks the eight players with the fewest recorded
// games, ties broken by name, so participation rotates fairly when more
// than eight players are active.
func sampleForDualCourt(names []string, stats Stats) []string {
	if len(names) == dualCourtPlayers {
		return names
	}
	sampled := make([]string, len(names))
	copy(sampled, names)
	sort.SliceStable(sampled, func(i, j int) bool {
		gi, gj := stats.GamesPlayed(sampled[i]), stats.GamesPlayed(sampled[j])
		if gi != gj {
			return gi < gj
		}
		return sampled[i] < sampled[j]
	})
	sampled = sampled[:dualCourtPlayers]
	sort.Strings(sampled)
	return sampled
}

// splitsOf returns the three distinct 2v2 splits of four players. Team A
// always contains the lexicographically smallest player, which gives every
// split a single canonical representation.
func splitsOf(four [courtSize]string, stats Stats) [3]court {
	pairs := [3][2][2]int{
		{{0, 1}, {2, 3}},
		{{0, 2}, {1, 3}},
		{{0, 3}, {1, 2}},
	}
	var out [3]court
	for i, p := range pairs {
		teamA := model.NewTeam(four[p[0][0]], four[p[0][1]])
		teamB := model.NewTeam(four[p[1][0]], four[p[1][1]])
		out[i] = court{
			teamA: teamA,
			teamB: teamB,
			score: scoreSplit(teamA, teamB, stats),
		}
	}
	return out
}

// scoreSplit computes the fairness score of one 2v2 split. Lower is
// strictly better.
func scoreSplit(teamA, teamB model.Team, stats Stats) int {
	score := partnershipWeight * (stats.Partnered(teamA[0], teamA[1]) + stats.Partnered(teamB[0], teamB[1]))
	for _, a := range teamA {
		for _, b := range teamB {
			score += opponentWeight * stats.Opposed(a, b)
		}
	}
	return score
}

// enumerateSingleCourt builds the full generation pool for one court: every
// choice of four players from the pool, with all three splits of each.
func enumerateSingleCourt(names []string, stats Stats) []candidate {
	var cands []candidate
	forEachFour(names, func(four [courtSize]string) {
		games := 0
		for _, n := range four {
			games += stats.GamesPlayed(n)
		}
		for _, c := range splitsOf(four, stats) {
			cands = append(cands, candidate{
				courts:     []court{c},
				score:      c.score,
				totalGames: games,
				key:        courtKey(c),
			})
		}
	})
	return cands
}

// enumerateDualCourt partitions exactly eight players into two courts of
// four. Each court is an independent single-court problem: a partition's
// entry uses the best split per court and the combined score ranks the
// partition.
func enumerateDualCourt(names []string, stats Stats) []candidate {
	if len(names) != dualCourtPlayers {
		return nil
	}
	games := 0
	for _, n := range names {
		games += stats.GamesPlayed(n)
	}

	var cands []candidate
	// Anchor the first player to court one so mirrored partitions are
	// enumerated once.
	rest := names[1:]
	forEachThree(rest, func(trio [3]string, others [courtSize]string) {
		courtOne := [courtSize]string{names[0], trio[0], trio[1], trio[2]}
		best1 := bestSplit(courtOne, stats)
		best2 := bestSplit(others, stats)
		cands = append(cands, candidate{
			courts:     []court{best1, best2},
			score:      best1.score + best2.score,
			totalGames: games,
			key:        courtKey(best1) + "||" + courtKey(best2),
		})
	})
	return cands
}

// bestSplit returns the lowest-scoring split of four players, ties broken
// by canonical key for determinism.
func bestSplit(four [courtSize]string, stats Stats) court {
	splits := splitsOf(four, stats)
	best := splits[0]
	for _, c := range splits[1:] {
		if c.score < best.score || (c.score == best.score && courtKey(c) < courtKey(best)) {
			best = c
		}
	}
	return best
}

// forEachFour visits every 4-combination of names in lexicographic order.
func forEachFour(names []string, visit func([courtSize]string)) {
	n := len(names)
	for a := 0; a < n-3; a++ {
		for b := a + 1; b < n-2; b++ {
			for c := b + 1; c < n-1; c++ {
				for d := c + 1; d < n; d++ {
					visit([courtSize]string{names[a], names[b], names[c], names[d]})
				}
			}
		}
	}
}

// forEachThree visits every 3-combination of names along with the four
// names left over. Callers pass exactly seven names.
func forEachThree(names []string, visit func([3]string, [courtSize]string)) {
	n := len(names)
	for a := 0; a < n-2; a++ {
		for b := a + 1; b < n-1; b++ {
			for c := b + 1; c < n; c++ {
				var rest [courtSize]string
				k := 0
				for i := 0; i < n; i++ {
					if i != a && i != b && i != c {
						rest[k] = names[i]
						k++
					}
				}
				visit([3]string{names[a], names[b], names[c]}, rest)
			}
		}
	}
}

// rank orders candidates best-first: fairness score, then fewest total
// games played by the candidate's players, then canonical key.
func rank(cands []candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score < cands[j].score
		}
		if cands[i].totalGames != cands[j].totalGames {
			return cands[i].totalGames < cands[j].totalGames
		}
		return cands[i].key < cands[j].key
	})
}

// repeats reports whether any court of the candidate exactly replays the
// given match's team composition, mirror orientation included.
func repeats(c candidate, last model.Match) bool {
	for _, ct := range c.courts {
		if last.SameTeams(ct.teamA, ct.teamB) {
			return true
		}
	}
	return false
}

// courtKey is the canonical textual form of a split, used for
// deterministic tie-breaks and candidate identity.
func courtKey(c court) string {
	return c.teamA[0] + "+" + c.teamA[1] + "|" + c.teamB[0] + "+" + c.teamB[1]
}

// fingerprint hashes the generation inputs. A cursor minted against a
// different roster, history, or last match is stale and restarts the cycle
// at the primary candidate.
func fingerprint(names []string, stats Stats, last *model.Match) string {
	h := fnv.New64a()
	for _, n := range names {
		_, _ = h.Write([]byte(n))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(strconv.Itoa(stats.GamesPlayed(n))))
		_, _ = h.Write([]byte{0})
	}
	if last != nil {
		_, _ = h.Write([]byte(last.ID))
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

// buildRecommendation renders the selected candidate with per-court
// explanations.
func buildRecommendation(c candidate, dual bool, stats Stats) model.Recommendation {
	rec := model.Recommendation{DualCourt: dual}
	for _, ct := range c.courts {
		rec.Courts = append(rec.Courts, model.Court{
			TeamA:       ct.teamA,
			TeamB:       ct.teamB,
			Explanation: explain(ct, stats),
		})
	}
	return rec
}

// explain summarizes why a split was chosen, e.g. how often each pair has
// partnered and how often the teams have crossed before.
func explain(c court, stats Stats) string {
	opposed := 0
	for _, a := range c.teamA {
		for _, b := range c.teamB {
			opposed += stats.Opposed(a, b)
		}
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s & %s (%s) vs %s & %s (%s)",
		c.teamA[0], c.teamA[1], partneredLabel(stats.Partnered(c.teamA[0], c.teamA[1])),
		c.teamB[0], c.teamB[1], partneredLabel(stats.Partnered(c.teamB[0], c.teamB[1])),
	)
	if opposed == 0 {
		sb.WriteString("; teams have not faced each other yet")
	} else {
		fmt.Fprintf(&sb, "; opposing pairs crossed %dx before", opposed)
	}
	return sb.String()
}

func partneredLabel(n int) string {
	switch n {
	case 0:
		return "new partners"
	case 1:
		return "partnered once"
	default:
		return fmt.Sprintf("partnered %dx", n)
	}
}

// zeroStats is the all-zero history used when no stats are supplied.
type zeroStats struct{}

func (zeroStats) Partnered(_, _ string) int { return 0 }
func (zeroStats) Opposed(_, _ string) int   { return 0 }
func (zeroStats) GamesPlayed(_ string) int  { return 0 }
