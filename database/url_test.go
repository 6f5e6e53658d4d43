package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructDatabaseURL(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		dbName   string
		expected string
	}{
		{
			name:     "no database name returns base url untouched",
			baseURL:  "postgres://u:p@db.supabase.co:5432/postgres",
			dbName:   "",
			expected: "postgres://u:p@db.supabase.co:5432/postgres",
		},
		{
			name:     "appends name and sslmode",
			baseURL:  "postgres://u:p@localhost:5432/",
			dbName:   "randpredict",
			expected: "postgres://u:p@localhost:5432/randpredict?sslmode=disable",
		},
		{
			name:     "keeps existing query parameters",
			baseURL:  "postgres://u:p@localhost:5432?connect_timeout=5",
			dbName:   "randpredict",
			expected: "postgres://u:p@localhost:5432/randpredict?connect_timeout=5&sslmode=disable",
		},
		{
			name:     "respects explicit sslmode",
			baseURL:  "postgres://u:p@localhost:5432?sslmode=require",
			dbName:   "randpredict",
			expected: "postgres://u:p@localhost:5432/randpredict?sslmode=require",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ConstructDatabaseURL(tt.baseURL, tt.dbName))
		})
	}
}
