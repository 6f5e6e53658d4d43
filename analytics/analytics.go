// Package analytics aggregates game runs into the statistics shown on the
// global and personal analytics pages. Every function is pure.
package analytics

import (
	"sort"
	"strings"
	"time"

	"randpredict/game"
	"randpredict/models"
)

const (
	// OverlapLimit is how many overlap rows the global view returns
	OverlapLimit = 15
	// FavoriteNumbersLimit is how many favourite numbers a player sees
	FavoriteNumbersLimit = 10
	// ScoreTrendLength is how many recent scores make up the trend line
	ScoreTrendLength = 10
)

var (
	primes = setOf(2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53, 59, 61, 67,
		71, 73, 79, 83, 89, 97)
	luckySevens      = setOf(7, 17, 27, 37, 47, 57, 67, 77, 87, 97)
	unluckyThirteens = setOf(13, 31)
	repeatingDigits  = setOf(11, 22, 33, 44, 55, 66, 77, 88, 99)
)

// SummariseGlobalStats computes totals, averages and the score distribution
func SummariseGlobalStats(runs []*models.GameRun) models.GlobalStats {
	stats := models.GlobalStats{ScoreDistribution: models.ScoreDistribution{}}
	if len(runs) == 0 {
		return stats
	}

	players := make(map[string]struct{})
	scoreSum := 0
	for _, run := range runs {
		scoreSum += run.Score
		if run.Score > stats.BestScore {
			stats.BestScore = run.Score
		}
		stats.ScoreDistribution[run.Score]++
		players[strings.ToLower(run.Email)] = struct{}{}
	}

	stats.TotalGames = len(runs)
	stats.AvgScore = float64(scoreSum) / float64(len(runs))
	stats.TotalPlayers = len(players)
	return stats
}

// BuildFrequencies counts predicted and drawn numbers, ignoring anything off the dial
func BuildFrequencies(runs []*models.GameRun) models.Frequencies {
	freq := models.Frequencies{
		Predictions: models.NumberFrequency{},
		Random:      models.NumberFrequency{},
	}
	for _, run := range runs {
		for _, num := range run.Predictions {
			if game.InRange(num) {
				freq.Predictions[num]++
			}
		}
		for _, num := range run.RandomNumbers {
			if game.InRange(num) {
				freq.Random[num]++
			}
		}
	}
	return freq
}

// BucketizeFrequency splits counts into 1-33, 34-66 and 67-99
func BucketizeFrequency(freq models.NumberFrequency) models.RangeBuckets {
	var buckets models.RangeBuckets
	for num, count := range freq {
		switch {
		case num >= 1 && num <= 33:
			buckets.Small += count
		case num >= 34 && num <= 66:
			buckets.Medium += count
		case num >= 67 && num <= 99:
			buckets.Large += count
		}
	}
	return buckets
}

// CalculateEvenOdd splits counts by parity
func CalculateEvenOdd(freq models.NumberFrequency) models.EvenOdd {
	var result models.EvenOdd
	for num, count := range freq {
		if num%2 == 0 {
			result.Even += count
		} else {
			result.Odd += count
		}
	}
	return result
}

// CalculatePrimeUsage splits counts into primes and composites. 1 is neither.
func CalculatePrimeUsage(freq models.NumberFrequency) models.PrimeUsage {
	var result models.PrimeUsage
	for num, count := range freq {
		if primes[num] {
			result.Prime += count
		} else if num > 1 {
			result.Composite += count
		}
	}
	return result
}

// CalculateSpecialPatterns counts lucky sevens, unlucky thirteens and repeating digits.
// 77 is both a lucky seven and a repeating digit and counts towards both.
func CalculateSpecialPatterns(freq models.NumberFrequency) models.SpecialPatterns {
	var result models.SpecialPatterns
	for num, count := range freq {
		if luckySevens[num] {
			result.LuckySevens += count
		}
		if unluckyThirteens[num] {
			result.UnluckyThirteens += count
		}
		if repeatingDigits[num] {
			result.RepeatingDigits += count
		}
	}
	return result
}

// NormaliseDistribution converts counts into shares of the total
func NormaliseDistribution(freq models.NumberFrequency) models.Distribution {
	total := 0
	for _, count := range freq {
		total += count
	}

	shares := make(models.NumberShare, len(freq))
	for num, count := range freq {
		if total == 0 {
			shares[num] = float64(count)
			continue
		}
		shares[num] = float64(count) / float64(total)
	}
	return models.Distribution{Distribution: shares, Total: total}
}

// SortFrequency orders numbers by count descending, lowest number first on ties
func SortFrequency(freq models.NumberFrequency) []models.FrequencyEntry {
	entries := make([]models.FrequencyEntry, 0, len(freq))
	for num, count := range freq {
		entries = append(entries, models.FrequencyEntry{Number: num, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Number < entries[j].Number
	})
	return entries
}

// ComputeOverlap lists numbers both predicted and drawn, largest overlap first
func ComputeOverlap(pred, drawn models.NumberFrequency) []models.OverlapEntry {
	overlap := make([]models.OverlapEntry, 0)
	for num := game.MinNumber; num <= game.MaxNumber; num++ {
		predicted := pred[num]
		drawnCount := drawn[num]
		if predicted > 0 && drawnCount > 0 {
			overlap = append(overlap, models.OverlapEntry{
				Number:    num,
				Predicted: predicted,
				Drawn:     drawnCount,
				Overlap:   min(predicted, drawnCount),
			})
		}
	}
	// Entries are built in number order, so a stable sort keeps lower numbers first on ties
	sort.SliceStable(overlap, func(i, j int) bool {
		return overlap[i].Overlap > overlap[j].Overlap
	})
	return overlap
}

// BuildGlobalAnalytics assembles the full global analytics document
func BuildGlobalAnalytics(runs []*models.GameRun) *models.GlobalAnalytics {
	frequencies := BuildFrequencies(runs)
	overlap := ComputeOverlap(frequencies.Predictions, frequencies.Random)
	if len(overlap) > OverlapLimit {
		overlap = overlap[:OverlapLimit]
	}

	return &models.GlobalAnalytics{
		Stats:                SummariseGlobalStats(runs),
		Frequencies:          frequencies,
		PredictionRanges:     BucketizeFrequency(frequencies.Predictions),
		RandomRanges:         BucketizeFrequency(frequencies.Random),
		PredictionEvenOdd:    CalculateEvenOdd(frequencies.Predictions),
		RandomEvenOdd:        CalculateEvenOdd(frequencies.Random),
		PredictionPrimeUsage: CalculatePrimeUsage(frequencies.Predictions),
		RandomPrimeUsage:     CalculatePrimeUsage(frequencies.Random),
		SpecialPatterns:      CalculateSpecialPatterns(frequencies.Predictions),
		Overlap:              overlap,

		PredictionDistribution: NormaliseDistribution(frequencies.Predictions),
		RandomDistribution:     NormaliseDistribution(frequencies.Random),
	}
}

// ComputeUserStats summarises one player's runs relative to now. It returns nil without runs.
func ComputeUserStats(runs []*models.GameRun, now time.Time) *models.UserStats {
	if len(runs) == 0 {
		return nil
	}

	sorted := make([]*models.GameRun, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	trendLen := min(ScoreTrendLength, len(sorted))
	trend := make([]int, trendLen)
	for i := 0; i < trendLen; i++ {
		// Oldest of the recent runs first
		trend[trendLen-1-i] = sorted[i].Score
	}

	weekAgo := now.Add(-7 * 24 * time.Hour)
	bestScore := sorted[0].Score
	scoreSum := 0
	gamesLastWeek := 0
	predictionFreq := models.NumberFrequency{}
	for _, run := range runs {
		scoreSum += run.Score
		if run.Score > bestScore {
			bestScore = run.Score
		}
		if run.CreatedAt.After(weekAgo) {
			gamesLastWeek++
		}
		for _, num := range run.Predictions {
			predictionFreq[num]++
		}
	}

	favorites := SortFrequency(predictionFreq)
	if len(favorites) > FavoriteNumbersLimit {
		favorites = favorites[:FavoriteNumbersLimit]
	}

	firstGame := sorted[len(sorted)-1].CreatedAt
	return &models.UserStats{
		TotalGames:      len(runs),
		BestScore:       bestScore,
		AvgScore:        float64(scoreSum) / float64(len(runs)),
		LatestScore:     sorted[0].Score,
		FirstGame:       &firstGame,
		GamesLastWeek:   gamesLastWeek,
		ScoreTrend:      trend,
		FavoriteNumbers: favorites,
	}
}

func setOf(nums ...int) map[int]bool {
	set := make(map[int]bool, len(nums))
	for _, n := range nums {
		set[n] = true
	}
	return set
}
