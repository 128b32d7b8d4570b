// Postgres-backed provider, an alternative to the file-backed TimelineReader for installations
// that mirror ingest into a database.  The expected schema:
//
//	CREATE TABLE entity_records (
//	  id          bigserial PRIMARY KEY,
//	  cluster     text NOT NULL,
//	  user_       text NOT NULL,
//	  flow        text NOT NULL,
//	  flowrun     text NOT NULL,
//	  app         text NOT NULL,
//	  entity_type text NOT NULL,
//	  entity_id   text NOT NULL,
//	  record      jsonb NOT NULL
//	);
//	CREATE TABLE flow_mapping (
//	  id      bigserial PRIMARY KEY,
//	  cluster text NOT NULL,
//	  app     text NOT NULL,
//	  user_   text NOT NULL,
//	  flow    text NOT NULL,
//	  flowrun text NOT NULL
//	);
//
// Rows in entity_records are whole append records in insertion order; reading folds them with the
// same merge rules as the file reader, so the two providers agree on reconstruction semantics.

package db

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"

	"timestore/db/errs"
	"timestore/db/parse"
	"timestore/db/repr"
)

type PgProvider struct {
	// The connection is not thread-safe.  All use of it is serialized by the lock, and result
	// sets are materialized before the lock is released.
	connection *pgx.Conn
	lock       sync.Mutex
	codec      *parse.EntityCodec
}

var _ Provider = (*PgProvider)(nil)

func OpenPgProvider(databaseURI string, codec *parse.EntityCodec) (*PgProvider, error) {
	connection, err := pgx.Connect(context.Background(), databaseURI)
	if err != nil {
		return nil, fmt.Errorf("Unable to connect to database: %v", err)
	}
	return &PgProvider{connection: connection, codec: codec}, nil
}

func (p *PgProvider) Close() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.connection.Close(context.Background())
}

func (p *PgProvider) GetEntity(cx *ReaderContext, fields Field) (*repr.Entity, error) {
	user, flow, flowrun, err := p.resolveFlow(cx)
	if err != nil {
		return nil, err
	}
	records, err := p.fetchRecords(
		`SELECT record FROM entity_records
		 WHERE cluster = $1 AND user_ = $2 AND flow = $3 AND flowrun = $4 AND app = $5
		   AND entity_type = $6 AND entity_id = $7
		 ORDER BY id`,
		cx.ClusterID, user, flow, flowrun, cx.AppID, cx.EntityType, cx.EntityID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errs.ErrNotFound
	}
	entity, err := p.foldRecords(records)
	if err != nil {
		return nil, err
	}
	return projectEntity(entity, fields), nil
}

func (p *PgProvider) GetEntities(
	cx *ReaderContext,
	filters *EntityFilters,
	fields Field,
) ([]*repr.Entity, error) {
	user, flow, flowrun, err := p.resolveFlow(cx)
	if err != nil {
		return nil, err
	}
	ids, records, err := p.fetchEntityRecords(
		`SELECT entity_id, record FROM entity_records
		 WHERE cluster = $1 AND user_ = $2 AND flow = $3 AND flowrun = $4 AND app = $5
		   AND entity_type = $6
		 ORDER BY entity_id, id`,
		cx.ClusterID, user, flow, flowrun, cx.AppID, cx.EntityType)
	if err != nil {
		return nil, err
	}

	buckets := make(map[int64][]*repr.Entity)
	for i := 0; i < len(ids); {
		j := i + 1
		for j < len(ids) && ids[j] == ids[i] {
			j++
		}
		entity, err := p.foldRecords(records[i:j])
		i = j
		if err != nil {
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

func (p *PgProvider) resolveFlow(cx *ReaderContext) (user, flow, flowrun string, err error) {
	if cx.UserID != "" && cx.FlowName != "" && cx.FlowRunID != "" {
		return cx.UserID, cx.FlowName, cx.FlowRunID, nil
	}
	if cx.ClusterID == "" || cx.AppID == "" {
		return "", "", "", errs.ErrNoFlowMapping
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	err = p.connection.QueryRow(
		context.Background(),
		`SELECT user_, flow, flowrun FROM flow_mapping
		 WHERE cluster = $1 AND (app = '' OR app = $2)
		 ORDER BY id LIMIT 1`,
		cx.ClusterID, cx.AppID,
	).Scan(&user, &flow, &flowrun)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("%w: no mapping for app %s in cluster %s",
				errs.ErrNoFlowMapping, cx.AppID, cx.ClusterID)
		}
		return "", "", "", err
	}
	return user, flow, flowrun, nil
}

func (p *PgProvider) fetchRecords(q string, args ...any) ([][]byte, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	rows, err := p.connection.Query(context.Background(), q, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[[]byte])
}

func (p *PgProvider) fetchEntityRecords(q string, args ...any) ([]string, [][]byte, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	rows, err := p.connection.Query(context.Background(), q, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	var ids []string
	var records [][]byte
	for rows.Next() {
		var id string
		var record []byte
		if err := rows.Scan(&id, &record); err != nil {
			return nil, nil, err
		}
		ids = append(ids, id)
		records = append(records, record)
	}
	return ids, records, rows.Err()
}

// foldRecords is the database-side twin of readEntityRecords: seed from the first record, merge
// the rest, skip records with a foreign identity.
func (p *PgProvider) foldRecords(records [][]byte) (*repr.Entity, error) {
	entity, err := p.codec.DecodeEntity(records[0])
	if err != nil {
		return nil, err
	}
	for _, raw := range records[1:] {
		record, err := p.codec.DecodeEntity(raw)
		if err != nil {
			return nil, err
		}
		if record.Identifier != entity.Identifier {
			continue
		}
		mergeEntities(entity, record)
	}
	return entity, nil
}
