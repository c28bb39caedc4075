package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrial_IsExpired(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		status    string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "active trial before deadline",
			status:    TrialStatusActive,
			expiresAt: now.Add(time.Hour),
			want:      false,
		},
		{
			name:      "active trial exactly at deadline",
			status:    TrialStatusActive,
			expiresAt: now,
			want:      true,
		},
		{
			name:      "active trial past deadline",
			status:    TrialStatusActive,
			expiresAt: now.Add(-time.Minute),
			want:      true,
		},
		{
			name:      "expired trial is already terminal",
			status:    TrialStatusExpired,
			expiresAt: now.Add(-time.Hour),
			want:      false,
		},
		{
			name:      "converted trial past deadline",
			status:    TrialStatusConverted,
			expiresAt: now.Add(-time.Hour),
			want:      false,
		},
		{
			name:      "pending trial past deadline",
			status:    TrialStatusPending,
			expiresAt: now.Add(-time.Hour),
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trial := Trial{Status: tt.status, ExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.want, trial.IsExpired(now))
		})
	}
}

func TestTrialDuration(t *testing.T) {
	assert.Equal(t, 14*24*time.Hour, TrialDuration)
}
