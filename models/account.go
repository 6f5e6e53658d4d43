package models

// LegacyEmailCheck tells the UI whether an email still owns anonymous data
type LegacyEmailCheck struct {
	HasLegacyData    bool                      `json:"hasLegacyData"`
	GameCount        int                       `json:"gameCount"`
	LeaderboardEntry *LegacyLeaderboardSummary `json:"leaderboardEntry"`
}

// MigrationStatus reports migrated and pending runs for a signed-in user
type MigrationStatus struct {
	MigratedGames   int  `json:"migratedGames"`
	LegacyGames     int  `json:"legacyGames"`
	NeedsMigration  bool `json:"needsMigration"`
	AlreadyMigrated bool `json:"alreadyMigrated"`
}

// MigrationResult is returned by the account migration
type MigrationResult struct {
	Success       bool `json:"success"`
	MigratedGames int  `json:"migratedGames"`
	// LeaderboardMerged is true when the legacy row was folded into an existing user row
	LeaderboardMerged bool `json:"leaderboardMerged"`
}
