package models

import "time"

// NumberFrequency maps a number in [1,99] to how often it was picked
type NumberFrequency map[int]int

// ScoreDistribution maps a score to how many runs reached it
type ScoreDistribution map[int]int

// NumberShare maps a number to its share of all picks
type NumberShare map[int]float64

// GlobalStats summarises every run of a game type
type GlobalStats struct {
	TotalGames        int               `json:"totalGames"`
	AvgScore          float64           `json:"avgScore"`
	BestScore         int               `json:"bestScore"`
	TotalPlayers      int               `json:"totalPlayers"`
	ScoreDistribution ScoreDistribution `json:"scoreDistribution"`
}

// Frequencies holds prediction and drawn number counts
type Frequencies struct {
	Predictions NumberFrequency `json:"predictions"`
	Random      NumberFrequency `json:"random"`
}

// RangeBuckets splits picks into thirds of the 1-99 range
type RangeBuckets struct {
	Small  int `json:"small"`
	Medium int `json:"medium"`
	Large  int `json:"large"`
}

// EvenOdd counts even and odd picks
type EvenOdd struct {
	Even int `json:"even"`
	Odd  int `json:"odd"`
}

// PrimeUsage counts prime and composite picks
type PrimeUsage struct {
	Prime     int `json:"prime"`
	Composite int `json:"composite"`
}

// SpecialPatterns counts picks of superstition-flavoured numbers
type SpecialPatterns struct {
	LuckySevens      int `json:"luckySevens"`
	UnluckyThirteens int `json:"unluckyThirteens"`
	RepeatingDigits  int `json:"repeatingDigits"`
}

// FrequencyEntry is one number with its count
type FrequencyEntry struct {
	Number int `json:"number"`
	Count  int `json:"count"`
}

// OverlapEntry describes a number that was both predicted and drawn
type OverlapEntry struct {
	Number    int `json:"number"`
	Predicted int `json:"predicted"`
	Drawn     int `json:"drawn"`
	Overlap   int `json:"overlap"`
}

// Distribution is a normalised frequency map
type Distribution struct {
	Distribution NumberShare `json:"distribution"`
	Total        int         `json:"total"`
}

// GlobalAnalytics is the document served by the global analytics endpoint
type GlobalAnalytics struct {
	Stats                GlobalStats     `json:"stats"`
	Frequencies          Frequencies     `json:"frequencies"`
	PredictionRanges     RangeBuckets    `json:"predictionRanges"`
	RandomRanges         RangeBuckets    `json:"randomRanges"`
	PredictionEvenOdd    EvenOdd         `json:"predictionEvenOdd"`
	RandomEvenOdd        EvenOdd         `json:"randomEvenOdd"`
	PredictionPrimeUsage PrimeUsage      `json:"predictionPrimeUsage"`
	RandomPrimeUsage     PrimeUsage      `json:"randomPrimeUsage"`
	SpecialPatterns      SpecialPatterns `json:"specialPatterns"`
	Overlap              []OverlapEntry  `json:"overlap"`

	PredictionDistribution Distribution `json:"predictionDistribution"`
	RandomDistribution     Distribution `json:"randomDistribution"`
}

// UserStats summarises the runs of one player
type UserStats struct {
	TotalGames      int              `json:"totalGames"`
	BestScore       int              `json:"bestScore"`
	AvgScore        float64          `json:"avgScore"`
	LatestScore     int              `json:"latestScore"`
	FirstGame       *time.Time       `json:"firstGame"`
	GamesLastWeek   int              `json:"gamesLastWeek"`
	ScoreTrend      []int            `json:"scoreTrend"`
	FavoriteNumbers []FrequencyEntry `json:"favoriteNumbers"`
}

// UserAnalytics is the document served by the user analytics endpoint
type UserAnalytics struct {
	Runs  []*GameRun `json:"runs"`
	Stats *UserStats `json:"stats"`
}
