// Package store persists merged gigs: the whole batch to the local
// key-value snapshot, then row-by-row to the remote store when connected.
package store

import (
	"context"
	"fmt"
	"strconv"

	"gigscout/pkg/kv"
	"gigscout/pkg/logger"
	"gigscout/pkg/models"
	"gigscout/pkg/remote"
	"gigscout/pkg/session"
)

// SyncResult reports a sync. Success means the local save completed and no
// unhandled error escaped; it does not mean every gig landed remotely.
// Synced is whether a remote pass was attempted at all.
type SyncResult struct {
	Success bool `json:"success"`
	Synced  bool `json:"synced"`
	Saved   int  `json:"saved"`
	Remote  int  `json:"remote"`
}

type Gateway struct {
	local   *kv.Store
	session *session.Session
	userID  string
}

func NewGateway(local *kv.Store, sess *session.Session, userID string) *Gateway {
	return &Gateway{local: local, session: sess, userID: userID}
}

// Sync writes the batch verbatim to local storage (failure here is fatal),
// then upserts each gig remotely if the connection was marked up. A remote
// failure for one gig is logged and the loop continues.
func (g *Gateway) Sync(ctx context.Context, gigs []models.Gig) (SyncResult, error) {
	if err := g.local.Put(kv.KeySnapshot, gigs); err != nil {
		return SyncResult{}, fmt.Errorf("save local snapshot: %w", err)
	}

	res := SyncResult{Success: true, Saved: len(gigs)}
	if !g.session.Connected() {
		return res, nil
	}
	res.Synced = true

	client := g.session.Client()
	for _, gig := range gigs {
		if err := g.syncGig(ctx, client, gig); err != nil {
			logger.Dedup("store: sync gig %s: %v", gig.URL, err)
			continue
		}
		res.Remote++
	}
	return res, nil
}

// Load reads the last persisted batch from local storage.
func (g *Gateway) Load() ([]models.Gig, error) {
	var gigs []models.Gig
	if _, err := g.local.Get(kv.KeySnapshot, &gigs); err != nil {
		return nil, err
	}
	return gigs, nil
}

type idRow struct {
	ID int64 `json:"id"`
}

// syncGig upserts the parent row by (user_id, url), resolves its generated
// id, purges stale children, and inserts the fresh child rows. The
// delete-then-insert replacement is not transactional; every child carries
// the gig id so the next sync repairs a torn write.
func (g *Gateway) syncGig(ctx context.Context, client *remote.Client, gig models.Gig) error {
	row := flattenGig(g.userID, gig)
	identity := remote.Filters{"user_id": row.UserID, "url": row.URL}

	var updated []idRow
	err := client.Update(ctx, remote.TableGigs, row, identity, &updated)
	if err != nil || len(updated) == 0 {
		if err != nil {
			logger.Dedup("store: update gig %s: %v, inserting instead", gig.URL, err)
		}
		if err := client.Insert(ctx, remote.TableGigs, row); err != nil {
			return fmt.Errorf("insert gig row: %w", err)
		}
	}

	var found []idRow
	if err := client.Select(ctx, remote.TableGigs, "id", identity, &found); err != nil {
		return fmt.Errorf("read back gig row: %w", err)
	}
	if len(found) == 0 {
		return fmt.Errorf("gig row missing after upsert")
	}
	gigID := found[0].ID
	byGig := remote.Filters{"gig_id": strconv.FormatInt(gigID, 10)}

	// Stale-data purge: features first, they reference packages.
	for _, table := range []string{remote.TableFeatures, remote.TablePackages, remote.TableDetails} {
		if err := client.Delete(ctx, table, byGig); err != nil {
			return fmt.Errorf("purge %s: %w", table, err)
		}
	}

	for _, pkg := range packageRows(gigID, gig) {
		if err := client.Insert(ctx, remote.TablePackages, pkg); err != nil {
			return fmt.Errorf("insert package row: %w", err)
		}
	}
	for _, feat := range featureRows(gigID, gig) {
		if err := client.Insert(ctx, remote.TableFeatures, feat); err != nil {
			return fmt.Errorf("insert feature row: %w", err)
		}
	}
	if err := client.Insert(ctx, remote.TableDetails, detailRow(gigID, gig)); err != nil {
		return fmt.Errorf("insert detail row: %w", err)
	}
	return nil
}
