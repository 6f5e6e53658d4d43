package game

import (
	"math"
	"math/rand"
)

// ScoreOdds returns the exact chance of each score 0..NumbersPerGame when the
// draw picks NumbersPerGame distinct numbers from the dial
func ScoreOdds() []float64 {
	dial := MaxNumber - MinNumber + 1
	odds := make([]float64, NumbersPerGame+1)
	total := logChoose(dial, NumbersPerGame)
	for k := 0; k <= NumbersPerGame; k++ {
		odds[k] = math.Exp(logChoose(NumbersPerGame, k) + logChoose(dial-NumbersPerGame, NumbersPerGame-k) - total)
	}
	return odds
}

// ExpectedScore is the mean score of a game played blind
func ExpectedScore() float64 {
	mean := 0.0
	for score, p := range ScoreOdds() {
		mean += float64(score) * p
	}
	return mean
}

// SimulateScores plays trials games with fixed predictions and unique draws and
// counts each score
func SimulateScores(rng *rand.Rand, predictions []int, trials int) []int {
	counts := make([]int, NumbersPerGame+1)
	dial := MaxNumber - MinNumber + 1
	for i := 0; i < trials; i++ {
		perm := rng.Perm(dial)[:NumbersPerGame]
		drawn := make([]int, NumbersPerGame)
		for j, offset := range perm {
			drawn[j] = MinNumber + offset
		}
		counts[CalculateScore(predictions, drawn)]++
	}
	return counts
}

// ChiSquared compares observed score counts with odds. High scores are pooled
// into one cell until every cell expects at least five games. It returns the
// statistic and its degrees of freedom.
func ChiSquared(observed []int, odds []float64) (float64, int) {
	trials := 0
	for _, c := range observed {
		trials += c
	}
	if trials == 0 {
		return 0, 0
	}

	var obsCells, expCells []float64
	pooledObs, pooledExp := 0.0, 0.0
	for score := len(odds) - 1; score >= 0; score-- {
		obs := 0.0
		if score < len(observed) {
			obs = float64(observed[score])
		}
		pooledObs += obs
		pooledExp += odds[score] * float64(trials)
		if pooledExp >= 5 {
			obsCells = append(obsCells, pooledObs)
			expCells = append(expCells, pooledExp)
			pooledObs, pooledExp = 0, 0
		}
	}
	if pooledExp > 0 && len(expCells) > 0 {
		last := len(expCells) - 1
		obsCells[last] += pooledObs
		expCells[last] += pooledExp
	}

	stat := 0.0
	for i := range expCells {
		stat += math.Pow(obsCells[i]-expCells[i], 2) / expCells[i]
	}
	return stat, len(expCells) - 1
}

func logChoose(n, k int) float64 {
	if k < 0 || k > n {
		return math.Inf(-1)
	}
	a, _ := math.Lgamma(float64(n + 1))
	b, _ := math.Lgamma(float64(k + 1))
	c, _ := math.Lgamma(float64(n - k + 1))
	return a - b - c
}
