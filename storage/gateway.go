package storage

import (
	"context"
	"strings"
	"time"

	"github.com/postdeck/postdeck/utils"
)

const (
	// PendingPrefix stages uploads not yet attached to a saved post.
	PendingPrefix = "uploads/pending/"
	// PermanentPrefix holds media for saved posts, namespaced per post UUID.
	PermanentPrefix = "media/posts/"

	// Pending objects older than this are considered orphaned.
	orphanAge = 24 * time.Hour
)

// Gateway implements the media storage operations: presigning, the
// pending-to-permanent move on save, best-effort deletes, and orphan cleanup.
// Storage failures are logged here and never fail the enclosing business
// operation; a leaked object is acceptable collateral.
type Gateway struct {
	store  ObjectStore
	expiry time.Duration
}

// NewGateway wraps an object store with the application key layout.
func NewGateway(store ObjectStore, presignExpiry time.Duration) *Gateway {
	return &Gateway{store: store, expiry: presignExpiry}
}

// PresignUpload returns a time-limited PUT URL targeting the pending prefix.
func (g *Gateway) PresignUpload(ctx context.Context, filename string) (string, error) {
	return g.store.PresignPut(ctx, PendingPrefix+filename, g.expiry)
}

// PresignDownloads returns GET URLs for the given files under the post's
// permanent prefix. A per-file signing failure maps that filename to an empty
// string instead of failing the batch.
func (g *Gateway) PresignDownloads(ctx context.Context, postUUID string, filenames []string) map[string]string {
	urls := make(map[string]string, len(filenames))
	for _, filename := range filenames {
		key := permanentKey(postUUID, filename)
		u, err := g.store.PresignGet(ctx, key, g.expiry)
		if err != nil {
			utils.Sugar.Errorf("could not generate download URL for %s: %v", key, err)
			urls[filename] = ""
			continue
		}
		urls[filename] = u
	}
	return urls
}

// MoveToPermanent copies each pending file (and its thumbnail) under the
// post's permanent prefix and removes the pending copy. Main file and
// thumbnail are moved independently; a missing source is logged, not fatal.
func (g *Gateway) MoveToPermanent(ctx context.Context, postUUID string, filenames []string) {
	utils.Sugar.Infof("moving %d files from pending to permanent location for post %s", len(filenames), postUUID)

	for _, filename := range filenames {
		if err := g.moveOne(ctx, PendingPrefix+filename, permanentKey(postUUID, filename)); err != nil {
			utils.Sugar.Errorf("source file not moved from pending location %s%s: %v", PendingPrefix, filename, err)
		}

		thumb := ThumbnailFilename(filename)
		if err := g.moveOne(ctx, PendingPrefix+thumb, permanentKey(postUUID, thumb)); err != nil {
			utils.Sugar.Debugf("thumbnail not moved from pending location %s%s: %v", PendingPrefix, thumb, err)
		}
	}
}

func (g *Gateway) moveOne(ctx context.Context, srcKey, dstKey string) error {
	if err := g.store.Copy(ctx, srcKey, dstKey); err != nil {
		return err
	}
	if err := g.store.Remove(ctx, srcKey); err != nil {
		return err
	}
	return nil
}

// DeleteObjects removes each file and its thumbnail under the post's
// permanent prefix. Failures are logged, never surfaced.
func (g *Gateway) DeleteObjects(ctx context.Context, postUUID string, filenames []string) {
	for _, filename := range filenames {
		g.deleteOne(ctx, permanentKey(postUUID, filename))
		g.deleteOne(ctx, permanentKey(postUUID, ThumbnailFilename(filename)))
	}
}

func (g *Gateway) deleteOne(ctx context.Context, key string) {
	if err := g.store.Remove(ctx, key); err != nil {
		utils.Sugar.Errorf("failed to delete object %s: %v", key, err)
		return
	}
	utils.Sugar.Debugf("deleted object %s", key)
}

// CleanupPending lists the pending prefix and deletes objects whose
// last-modified timestamp is older than 24 hours.
func (g *Gateway) CleanupPending(ctx context.Context) error {
	objects, err := g.store.List(ctx, PendingPrefix)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-orphanAge)
	for _, obj := range objects {
		if obj.LastModified.Before(cutoff) {
			g.deleteOne(ctx, obj.Key)
			utils.Sugar.Infof("cleaned up orphaned pending file: %s", obj.Key)
		}
	}
	return nil
}

// ThumbnailFilename derives the companion thumbnail name: the extension is
// stripped and "_thumb.jpg" appended; extensionless names get the suffix only.
func ThumbnailFilename(filename string) string {
	if i := strings.LastIndex(filename, "."); i > 0 {
		return filename[:i] + "_thumb.jpg"
	}
	return filename + "_thumb.jpg"
}

func permanentKey(postUUID, filename string) string {
	return PermanentPrefix + postUUID + "/" + filename
}
