package internal

import (
	"math"
	"time"
)

// SessionStats summarizes the stored collection
type SessionStats struct {
	TotalSessions          int        `json:"total_sessions" yaml:"total_sessions"`
	TotalMessages          int        `json:"total_messages" yaml:"total_messages"`
	AverageMessagesPerChat float64    `json:"average_messages_per_session" yaml:"average_messages_per_session"`
	OldestSession          *time.Time `json:"oldest_session" yaml:"oldest_session"`
	NewestSession          *time.Time `json:"newest_session" yaml:"newest_session"`
}

// GetSessionStats aggregates counts over all stored sessions. With no
// sessions every field is zero or nil.
func (s *SessionStore) GetSessionStats() SessionStats {
	return ComputeStats(s.ListSessions())
}

// ComputeStats aggregates counts over sessions
func ComputeStats(sessions []ChatSession) SessionStats {
	stats := SessionStats{TotalSessions: len(sessions)}
	if len(sessions) == 0 {
		return stats
	}

	oldest := sessions[0].CreatedAt
	newest := sessions[0].CreatedAt
	for _, session := range sessions {
		stats.TotalMessages += len(session.Messages)
		if session.CreatedAt.Before(oldest) {
			oldest = session.CreatedAt
		}
		if session.CreatedAt.After(newest) {
			newest = session.CreatedAt
		}
	}

	avg := float64(stats.TotalMessages) / float64(stats.TotalSessions)
	stats.AverageMessagesPerChat = math.Round(avg*100) / 100
	stats.OldestSession = &oldest
	stats.NewestSession = &newest
	return stats
}
