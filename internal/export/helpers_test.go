package export

import (
	"time"

	"github.com/iksnae/ragchat/internal"
)

func sampleSessions() []internal.ChatSession {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return []internal.ChatSession{
		{
			ID:   "session-1",
			Name: "Refund policy",
			Messages: []internal.ChatMessage{
				{ID: "m1", Role: internal.RoleUser, Content: "What is the **refund** policy?", Timestamp: base},
				{
					ID:        "m2",
					Role:      internal.RoleAssistant,
					Content:   "Refunds within 30 days.\n```\ncode **kept**\n```",
					Timestamp: base.Add(time.Second),
					Metadata:  &internal.MessageMetadata{DocumentsRetrieved: 2, ProcessingTime: 0.8, SearchType: internal.SearchHybrid},
				},
			},
			CreatedAt: base.Add(-time.Minute),
			UpdatedAt: base.Add(time.Second),
			Settings:  internal.SessionSettings{Model: "gpt-4o-mini", Temperature: 0.7, SearchType: internal.SearchHybrid},
		},
		{
			ID:        "session-2",
			Name:      "",
			Messages:  []internal.ChatMessage{},
			CreatedAt: base.Add(-time.Hour),
			UpdatedAt: base.Add(-time.Hour),
			Settings:  internal.SessionSettings{Model: "gpt-4o", Temperature: 0.1, SearchType: internal.SearchKeyword},
		},
	}
}
