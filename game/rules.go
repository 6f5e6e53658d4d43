package game

import (
	"fmt"
	"strings"
)

const (
	// NumbersPerGame is how many numbers a player locks in and how many are drawn
	NumbersPerGame = 10
	// MinNumber is the lowest number on the dial
	MinNumber = 1
	// MaxNumber is the highest number on the dial
	MaxNumber = 99
)

// CalculateScore counts the distinct predicted numbers that were drawn
func CalculateScore(predictions, drawn []int) int {
	drawnSet := toSet(drawn)
	matches := 0
	for num := range toSet(predictions) {
		if drawnSet[num] {
			matches++
		}
	}
	return matches
}

// CalculateMatches returns the predicted numbers, in prediction order, that were drawn
func CalculateMatches(predictions, drawn []int) []int {
	drawnSet := toSet(drawn)
	matches := make([]int, 0, len(predictions))
	for _, num := range predictions {
		if drawnSet[num] {
			matches = append(matches, num)
		}
	}
	return matches
}

// IsValidPredictionSet checks count, range and uniqueness of a player's picks
func IsValidPredictionSet(numbers []int) bool {
	if !IsValidDrawSet(numbers) {
		return false
	}
	return len(toSet(numbers)) == len(numbers)
}

// IsValidDrawSet checks count and range of drawn numbers
func IsValidDrawSet(numbers []int) bool {
	if len(numbers) != NumbersPerGame {
		return false
	}
	for _, num := range numbers {
		if !InRange(num) {
			return false
		}
	}
	return true
}

// InRange reports whether num is on the dial
func InRange(num int) bool {
	return num >= MinNumber && num <= MaxNumber
}

// NormaliseEmail trims and lower-cases an email address
func NormaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ToDisplayList renders numbers as zero-padded pairs, e.g. "07 · 42"
func ToDisplayList(numbers []int) string {
	parts := make([]string, len(numbers))
	for i, num := range numbers {
		parts[i] = fmt.Sprintf("%02d", num)
	}
	return strings.Join(parts, " · ")
}

func toSet(numbers []int) map[int]bool {
	set := make(map[int]bool, len(numbers))
	for _, num := range numbers {
		set[num] = true
	}
	return set
}
