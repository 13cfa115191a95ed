package storage

import (
	"context"
	"fmt"
)

const (
	ladderContentType = "application/json"
	// Ладдер перезаписывается после каждой игры, CDN не должен его держать
	ladderCacheControl = "no-cache"
)

// LadderArchive publishes the latest ladder of each tournament as a JSON
// object so clients can fetch it without hitting the API.
type LadderArchive struct {
	store  ObjectStore
	prefix string
}

func NewLadderArchive(store ObjectStore) *LadderArchive {
	return &LadderArchive{store: store, prefix: "ladders"}
}

func (a *LadderArchive) key(tournamentID int) string {
	return fmt.Sprintf("%s/%d.json", a.prefix, tournamentID)
}

// Store overwrites the archived ladder and returns its public URL.
func (a *LadderArchive) Store(ctx context.Context, tournamentID int, blob []byte) (string, error) {
	res, err := a.store.Put(ctx, Object{
		Key:          a.key(tournamentID),
		ContentType:  ladderContentType,
		CacheControl: ladderCacheControl,
		Body:         blob,
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive ladder of tournament %d: %w", tournamentID, err)
	}
	return res.URL, nil
}

func (a *LadderArchive) Remove(ctx context.Context, tournamentID int) error {
	return a.store.Delete(ctx, a.key(tournamentID))
}

func (a *LadderArchive) URL(tournamentID int) string {
	return a.store.PublicURL(a.key(tournamentID))
}
