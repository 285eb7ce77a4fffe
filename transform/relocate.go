package transform

import (
	"context"
	"path"

	"github.com/rs/zerolog"

	"github.com/diegoalsls/serverless-architecture-smes-analytics/storage"
)

// relocate moves consumed raw inputs to the processed area: copy first,
// delete only after the copy is confirmed. A crash between the two
// leaves a duplicate in both areas, which reprocesses safely; data loss
// cannot happen here. Failed keys are returned, not fatal — the gold
// artifact already written stands and the stragglers retry next run.
func relocate(ctx context.Context, store storage.Store, log zerolog.Logger, bucket string, keys []string, donePrefix string) (moved int, failed []string) {
	for _, key := range keys {
		destKey := donePrefix + path.Base(key)
		if err := store.Copy(ctx, bucket, key, bucket, destKey); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("relocate copy failed; input stays for reprocessing")
			failed = append(failed, key)
			continue
		}
		if err := store.Delete(ctx, bucket, key); err != nil {
			// Copy landed, so the delete can fail without losing data;
			// the duplicate source reprocesses next run.
			log.Warn().Err(err).Str("key", key).Msg("relocate delete failed; duplicate left in ingest area")
			failed = append(failed, key)
			continue
		}
		moved++
	}
	return moved, failed
}
