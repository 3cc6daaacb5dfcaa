package espn

import (
	"math"
	"sort"

	"github.com/fortuna/gridiron/internal/league"
	"gonum.org/v1/gonum/mat"
)

// powerRankings scores teams with the two-step dominance method over the
// first week matchup periods: W[i][j] counts wins of i over j, D = W·W + W,
// and power = 0.8·ΣD[i] + 0.15·avg score + 0.05·avg margin, each term
// truncated toward zero before weighting.
// Results are sorted by score, highest first, ties kept in team id order.
func powerRankings(teams []league.Team, week int) []league.PowerRanking {
	out := []league.PowerRanking{}
	if len(teams) == 0 || week <= 0 {
		return out
	}

	sorted := append([]league.Team(nil), teams...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	n := len(sorted)
	index := make(map[int]int, n)
	for i, t := range sorted {
		index[t.ID] = i
	}

	wins := mat.NewDense(n, n, nil)
	for i, t := range sorted {
		for p := 0; p < week && p < len(t.MarginOfVictory) && p < len(t.Opponents); p++ {
			j, ok := index[t.Opponents[p]]
			if !ok || t.MarginOfVictory[p] <= 0 {
				continue
			}
			wins.Set(i, j, wins.At(i, j)+1)
		}
	}

	var dominance mat.Dense
	dominance.Mul(wins, wins)
	dominance.Add(&dominance, wins)

	for i, t := range sorted {
		dom := math.Trunc(mat.Sum(dominance.RowView(i)))
		avgScore := math.Trunc(sumFirst(t.Scores, week) / float64(week))
		avgMOV := math.Trunc(sumFirst(t.MarginOfVictory, week) / float64(week))
		power := dom*0.8 + avgScore*0.15 + avgMOV*0.05
		out = append(out, league.PowerRanking{Score: round2(power), Team: t.Name})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func sumFirst(values []float64, n int) float64 {
	var total float64
	for i := 0; i < n && i < len(values); i++ {
		total += values[i]
	}
	return total
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
