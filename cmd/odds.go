package cmd

import (
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"randpredict/game"
)

// chiSquaredCritical holds the 95th percentile of chi-squared by degrees of freedom
var chiSquaredCritical = map[int]float64{1: 3.84, 2: 5.99, 3: 7.81, 4: 9.49, 5: 11.07, 6: 12.59, 7: 14.07, 8: 15.51, 9: 16.92, 10: 18.31}

// Odds prints the exact score distribution of a game and checks it against a
// simulation of trials games
func Odds(w io.Writer, trials int, seed int64) error {
	if trials <= 0 {
		return fmt.Errorf("trials must be positive, got %d", trials)
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(seed))
	predictions := make([]int, game.NumbersPerGame)
	for i, offset := range rng.Perm(game.MaxNumber - game.MinNumber + 1)[:game.NumbersPerGame] {
		predictions[i] = game.MinNumber + offset
	}

	odds := game.ScoreOdds()
	counts := game.SimulateScores(rng, predictions, trials)

	fmt.Fprintf(w, "=== Score odds: %d picks, %d draws from %d-%d ===\n\n",
		game.NumbersPerGame, game.NumbersPerGame, game.MinNumber, game.MaxNumber)
	fmt.Fprintf(w, "Predictions: %s\n", game.ToDisplayList(predictions))
	fmt.Fprintf(w, "Trials:      %d (seed %d)\n\n", trials, seed)

	for score, p := range odds {
		actual := float64(counts[score]) / float64(trials)
		barLength := int(actual * 50)
		fmt.Fprintf(w, "  %2d: expected %9.5f%% | actual %9.5f%% (%7d) %s\n",
			score, p*100, actual*100, counts[score], strings.Repeat("█", barLength))
	}

	mean := 0.0
	for score, c := range counts {
		mean += float64(score * c)
	}
	mean /= float64(trials)

	stat, df := game.ChiSquared(counts, odds)
	fmt.Fprintf(w, "\nExpected score: %.4f | simulated mean: %.4f\n", game.ExpectedScore(), mean)
	fmt.Fprintf(w, "χ²: %.2f with %d df", stat, df)

	critical, ok := chiSquaredCritical[df]
	switch {
	case !ok:
		fmt.Fprintln(w)
	case stat < critical:
		fmt.Fprintf(w, " (< %.2f) ✓ simulation matches the odds\n", critical)
	default:
		fmt.Fprintf(w, " (>= %.2f) ✗ simulation deviates from the odds\n", critical)
	}
	return nil
}
