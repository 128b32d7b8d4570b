// Entity reconstruction.
//
// An entity history file holds one or more newline-delimited JSON records for a single logical
// entity, appended over time.  Reconstruction reads the first line as the seed and folds every
// later record into it.  Appended records whose (type,id) disagrees with the seed are foreign data
// (eg from a misdirected writer) and are skipped silently rather than reported; a record that does
// not decode at all is corruption and aborts the whole reconstruction.

package db

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"timestore/db/errs"
	"timestore/db/parse"
	"timestore/db/repr"
)

func readEntityRecords(input io.Reader, codec *parse.EntityCodec) (*repr.Entity, error) {
	reader := bufio.NewReader(input)

	line, err := readRecordLine(reader)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty entity file", errs.ErrBadRecord)
		}
		return nil, err
	}
	entity, err := codec.DecodeEntity([]byte(line))
	if err != nil {
		return nil, err
	}

	for {
		line, err := readRecordLine(reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return entity, nil
			}
			return nil, err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		record, err := codec.DecodeEntity([]byte(line))
		if err != nil {
			return nil, err
		}
		if record.Identifier != entity.Identifier {
			continue
		}
		mergeEntities(entity, record)
	}
}

// readRecordLine returns the next line without its terminator, and io.EOF only when no input
// remains at all (a final unterminated line is still returned).
func readRecordLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return line, nil
		}
		return "", err
	}
	return strings.TrimSuffix(line, "\n"), nil
}

// mergeEntities folds `record` into `into`.  Later records win on scalar key collisions; relation
// id sets are unioned; events accumulate in file order; metric series with the same id have their
// value maps unioned with the later map winning per timestamp.
func mergeEntities(into, record *repr.Entity) {
	// A zero createdtime is an unset value from the client and must not clobber a real one.
	if record.CreatedTime > 0 {
		into.CreatedTime = record.CreatedTime
	}
	into.Configs = upsert(into.Configs, record.Configs)
	into.Info = upsert(into.Info, record.Info)
	into.RelatesTo = unionRelations(into.RelatesTo, record.RelatesTo)
	into.IsRelatedTo = unionRelations(into.IsRelatedTo, record.IsRelatedTo)
	into.Events = append(into.Events, record.Events...)
	for _, incoming := range record.Metrics {
		merged := false
		for _, existing := range into.Metrics {
			if existing.ID == incoming.ID {
				existing.Values = upsert(existing.Values, incoming.Values)
				merged = true
				break
			}
		}
		if !merged {
			into.Metrics = append(into.Metrics, incoming)
		}
	}
}

func upsert[K comparable, V any](dst, src map[K]V) map[K]V {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[K]V, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func unionRelations(dst, src map[string][]string) map[string][]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string][]string, len(src))
	}
	for relationType, ids := range src {
		have := dst[relationType]
		for _, id := range ids {
			found := false
			for _, h := range have {
				if h == id {
					found = true
					break
				}
			}
			if !found {
				have = append(have, id)
			}
		}
		dst[relationType] = have
	}
	return dst
}
