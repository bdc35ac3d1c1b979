// Package analysis turns a flat list of per-game records into the sortable,
// ranked aggregates shown by the dashboard views. Every function here is a
// pure transform over its arguments: nothing is cached and inputs are never
// mutated.
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pable/rlstats/internal/model"
)

// KeyKind tells which grouping produced a BucketKey.
type KeyKind int

const (
	KeyScoreline KeyKind = iota
	KeyGoalDiff
)

// BucketKey identifies an aggregate group. For scorelines Primary is the
// player's goals and Secondary the opponents'; for goal differentials
// Primary is the signed differential and Secondary is always 0.
type BucketKey struct {
	Kind      KeyKind
	Primary   int
	Secondary int
}

// String renders the key as shown in the first column: "3-0" or "+2".
func (k BucketKey) String() string {
	if k.Kind == KeyGoalDiff {
		if k.Primary > 0 {
			return "+" + strconv.Itoa(k.Primary)
		}
		return strconv.Itoa(k.Primary)
	}
	return fmt.Sprintf("%d-%d", k.Primary, k.Secondary)
}

// Diff returns the goal differential the key represents.
func (k BucketKey) Diff() int {
	if k.Kind == KeyGoalDiff {
		return k.Primary
	}
	return k.Primary - k.Secondary
}

// ParseBucketKey is the inverse of BucketKey.String for the given kind.
func ParseBucketKey(kind KeyKind, s string) (BucketKey, error) {
	s = strings.TrimSpace(s)
	if kind == KeyGoalDiff {
		n, err := strconv.Atoi(strings.TrimPrefix(s, "+"))
		if err != nil {
			return BucketKey{}, fmt.Errorf("invalid goal differential %q", s)
		}
		return BucketKey{Kind: KeyGoalDiff, Primary: n}, nil
	}
	my, opp, ok := strings.Cut(s, "-")
	if !ok {
		return BucketKey{}, fmt.Errorf("invalid scoreline %q: want <my>-<opp>", s)
	}
	m, err1 := strconv.Atoi(my)
	o, err2 := strconv.Atoi(opp)
	if err1 != nil || err2 != nil || m < 0 || o < 0 {
		return BucketKey{}, fmt.Errorf("invalid scoreline %q", s)
	}
	return BucketKey{Kind: KeyScoreline, Primary: m, Secondary: o}, nil
}

// KeyFunc maps a game to the bucket it belongs to.
type KeyFunc func(g model.GameRecord) BucketKey

// ByScoreline groups games by their exact (my, opp) score.
func ByScoreline(g model.GameRecord) BucketKey {
	return BucketKey{Kind: KeyScoreline, Primary: g.MyGoals, Secondary: g.OppGoals}
}

// ByGoalDiff groups games by signed goal differential.
func ByGoalDiff(g model.GameRecord) BucketKey {
	return BucketKey{Kind: KeyGoalDiff, Primary: g.Diff()}
}

// Bucket is the averaged record for one group of games.
type Bucket struct {
	Key       BucketKey        `json:"-"`
	Label     string           `json:"key"`
	Games     int              `json:"games"`
	Me        model.RoleStats  `json:"me"`
	Teammates *model.RoleStats `json:"teammates"`
	Opponents model.RoleStats  `json:"opponents"`
}

// Row methods: a Bucket ranks and sorts like a single game.

func (b Bucket) Roles() []model.RoleValue { return model.RolesOf(b.Me, b.Teammates, b.Opponents) }
func (b Bucket) MeStats() model.RoleStats { return b.Me }
func (b Bucket) ScoreKey() (int, int) { return b.Key.Primary, b.Key.Secondary }
func (b Bucket) SortDate() string { return "" }
func (b Bucket) GameCount() int { return b.Games }

// Aggregate produces one Bucket per distinct key. Each RoleStats field is the
// arithmetic mean over the group; sentinel zeros are averaged like any other
// value. The teammates bundle is present iff the group's first record has
// one (groups are homogeneous by team size). Buckets are returned ordered by
// key, highest scoreline first.
func Aggregate(games []model.GameRecord, key KeyFunc) []Bucket {
	if len(games) == 0 {
		return nil
	}

	type group struct {
		key     BucketKey
		me, opp roleSums
		tm      roleSums
		hasTm   bool
		n       int
	}
	groups := make(map[BucketKey]*group)
	for _, g := range games {
		k := key(g)
		grp := groups[k]
		if grp == nil {
			grp = &group{key: k, hasTm: g.Teammates != nil}
			groups[k] = grp
		}
		grp.n++
		grp.me.add(g.Me)
		grp.opp.add(g.Opponents)
		if g.Teammates != nil {
			grp.tm.add(*g.Teammates)
		} else {
			grp.tm.add(model.RoleStats{})
		}
	}

	out := make([]Bucket, 0, len(groups))
	for _, grp := range groups {
		b := Bucket{
			Key:       grp.key,
			Label:     grp.key.String(),
			Games:     grp.n,
			Me:        grp.me.mean(grp.n),
			Opponents: grp.opp.mean(grp.n),
		}
		if grp.hasTm {
			tm := grp.tm.mean(grp.n)
			b.Teammates = &tm
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		return compareScore(out[i], out[j], Desc) < 0
	})
	return out
}

// Overall averages every game into one bucket labelled "all". Callers pass
// games of a single team size so the teammates bundle is meaningful.
func Overall(games []model.GameRecord) (Bucket, bool) {
	buckets := Aggregate(games, func(model.GameRecord) BucketKey { return BucketKey{} })
	if len(buckets) == 0 {
		return Bucket{}, false
	}
	b := buckets[0]
	b.Label = "all"
	return b, true
}

// GamesFor returns the games that fall into bucket k, newest first.
func GamesFor(games []model.GameRecord, key KeyFunc, k BucketKey) []model.GameRecord {
	var out []model.GameRecord
	for _, g := range games {
		if key(g) == k {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// roleSums collects the per-field values of a group so the mean does not
// depend on the order the games arrived in.
type roleSums struct {
	pbb, spd, dist []float64
}

func (s *roleSums) add(r model.RoleStats) {
	s.pbb = append(s.pbb, r.PercentBehindBall)
	s.spd = append(s.spd, r.AvgSpeed)
	s.dist = append(s.dist, r.AvgDistanceToBall)
}

func (s *roleSums) mean(n int) model.RoleStats {
	return model.RoleStats{
		PercentBehindBall: stableSum(s.pbb) / float64(n),
		AvgSpeed:          stableSum(s.spd) / float64(n),
		AvgDistanceToBall: stableSum(s.dist) / float64(n),
	}
}

// stableSum sorts a copy of vals and sums it with Neumaier compensation.
func stableSum(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	var sum, c float64
	for _, v := range sorted {
		t := sum + v
		if math.Abs(sum) >= math.Abs(v) {
			c += (sum - t) + v
		} else {
			c += (v - t) + sum
		}
		sum = t
	}
	return sum + c
}
