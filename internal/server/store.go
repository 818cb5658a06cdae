package server

import (
	"context"

	"github.com/wellquest/questmap/internal/wellquest"
)

// Store persists quests and completions per session. *store.SQLiteStore
// implements it.
type Store interface {
	SaveQuest(ctx context.Context, sessionID string, q wellquest.LocationQuest) error
	GetQuest(ctx context.Context, id string) (wellquest.LocationQuest, error)
	ListQuests(ctx context.Context, sessionID string) ([]wellquest.LocationQuest, error)
	RecordCompletion(ctx context.Context, sessionID string, c wellquest.Completion) error
	ListCompletions(ctx context.Context, sessionID string) ([]wellquest.Completion, error)
	TotalXP(ctx context.Context, sessionID string) (int, error)
}
