// TimelineReader - the file-backed read path.
//
// A TimelineReader is bound to one storage root and is stateless beyond that: no caches, no open
// handles between calls, safe for concurrent use by any number of callers.  Both operations
// resolve the query context to a directory under
//
//	<root>/entities/<cluster>/<user>/<flow>/<flowrun>/<app>/<entityType>/
//
// and read entity history files below it.  The multi-entity query opens candidate files strictly
// one at a time; every handle is closed before the next file is opened.

package db

import (
	"errors"
	"math"
	"os"
	"path"
	"slices"
	"strings"

	. "timestore/common"
	"timestore/db/errs"
	"timestore/db/filesys"
	"timestore/db/match"
	"timestore/db/parse"
	"timestore/db/repr"
)

// Provider is the public operation surface consumed by the REST layer and the CLI verbs.  The
// file-backed TimelineReader is the primary implementation; PgProvider serves the same operations
// from Postgres.
type Provider interface {
	// GetEntity returns the reconstructed, projected entity addressed by the context, or
	// errs.ErrNotFound if it has no backing record.
	GetEntity(cx *ReaderContext, fields Field) (*repr.Entity, error)

	// GetEntities returns the entities of cx.EntityType that pass the filters, projected,
	// ordered by descending creation time, and bounded by the filter limit.  An empty result is
	// a valid, successful answer.
	GetEntities(cx *ReaderContext, filters *EntityFilters, fields Field) ([]*repr.Entity, error)
}

type TimelineReader struct {
	root  string
	codec *parse.EntityCodec
}

var _ Provider = (*TimelineReader)(nil)

func NewTimelineReader(root string, codec *parse.EntityCodec) *TimelineReader {
	return &TimelineReader{root: root, codec: codec}
}

func (tr *TimelineReader) Root() string {
	return tr.root
}

// ResolveFlowRunPath exposes flow resolution on its own, for diagnostics.
func (tr *TimelineReader) ResolveFlowRunPath(cx *ReaderContext) (string, error) {
	return resolveFlowRunPath(tr.root, cx)
}

func (tr *TimelineReader) GetEntity(cx *ReaderContext, fields Field) (*repr.Entity, error) {
	flowRunPath, err := resolveFlowRunPath(tr.root, cx)
	if err != nil {
		return nil, err
	}
	filename := filesys.MakeEntityFilePath(
		tr.root, cx.ClusterID, flowRunPath, cx.AppID, cx.EntityType, cx.EntityID)
	entity, err := readEntityFile(filename, tr.codec)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			Log.Infof("Cannot find entity {id:%s, type:%s}", cx.EntityID, cx.EntityType)
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return projectEntity(entity, fields), nil
}

func (tr *TimelineReader) GetEntities(
	cx *ReaderContext,
	filters *EntityFilters,
	fields Field,
) ([]*repr.Entity, error) {
	flowRunPath, err := resolveFlowRunPath(tr.root, cx)
	if err != nil {
		return nil, err
	}
	dir := filesys.MakeEntityTypeDirPath(tr.root, cx.ClusterID, flowRunPath, cx.AppID, cx.EntityType)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	// Entities are grouped into buckets by creation time and the buckets drained in descending
	// order, so that the result's createdtime is monotonically non-increasing without a full
	// stable sort of all candidates.  Within a bucket the order is not specified.
	buckets := make(map[int64][]*repr.Entity)
	for _, entry := range entries {
		if entry.IsDir() || !strings.Contains(entry.Name(), filesys.StorageExtension) {
			continue
		}
		entity, err := readEntityFile(path.Join(dir, entry.Name()), tr.codec)
		if err != nil {
			// A corrupt candidate aborts the whole scan: never return data reconstructed
			// from corrupted input.
			return nil, err
		}
		if entity.Type != cx.EntityType {
			continue
		}
		if !passesFilters(entity, filters) {
			continue
		}
		projected := projectEntity(entity, fields)
		buckets[projected.CreatedTime] = append(buckets[projected.CreatedTime], projected)
	}
	return drainBuckets(buckets, effectiveLimit(filters)), nil
}

// readEntityFile reconstructs one entity from its history file.  The file handle is closed on
// every path out of here, so the directory scan above never holds more than one file open.
func readEntityFile(filename string, codec *parse.EntityCodec) (*repr.Entity, error) {
	input, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer input.Close()
	return readEntityRecords(input, codec)
}

// The filter pipeline, in fixed order, short-circuiting on the first failure.  An unset component
// always passes.
func passesFilters(e *repr.Entity, filters *EntityFilters) bool {
	if filters == nil {
		return true
	}
	end := filters.CreatedTimeEnd
	if end == 0 {
		end = math.MaxInt64
	}
	if e.CreatedTime < filters.CreatedTimeBegin || e.CreatedTime > end {
		return false
	}
	if len(filters.RelatesTo) > 0 && !match.Relations(e.RelatesTo, filters.RelatesTo) {
		return false
	}
	if len(filters.IsRelatedTo) > 0 && !match.Relations(e.IsRelatedTo, filters.IsRelatedTo) {
		return false
	}
	if len(filters.InfoFilters) > 0 && !match.InfoFilters(e.Info, filters.InfoFilters) {
		return false
	}
	if len(filters.ConfigFilters) > 0 && !match.ConfigFilters(e.Configs, filters.ConfigFilters) {
		return false
	}
	if len(filters.MetricFilters) > 0 && !match.MetricFilters(e.Metrics, filters.MetricFilters) {
		return false
	}
	if len(filters.EventFilters) > 0 && !match.EventFilters(e.Events, filters.EventFilters) {
		return false
	}
	return true
}

func effectiveLimit(filters *EntityFilters) int64 {
	if filters == nil || filters.Limit <= 0 {
		return DefaultLimit
	}
	return filters.Limit
}

// drainBuckets emits entities bucket by bucket in descending creation-time order and stops the
// moment the limit is reached, even mid-bucket.
func drainBuckets(buckets map[int64][]*repr.Entity, limit int64) []*repr.Entity {
	times := make([]int64, 0, len(buckets))
	for t := range buckets {
		times = append(times, t)
	}
	slices.Sort(times)
	result := make([]*repr.Entity, 0)
	for i := len(times) - 1; i >= 0; i-- {
		for _, e := range buckets[times[i]] {
			result = append(result, e)
			if int64(len(result)) >= limit {
				return result
			}
		}
	}
	return result
}
