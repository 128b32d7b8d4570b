// Field projection.
//
// A query names the field groups it wants back; identity and createdtime are always included.
// The default is minimal - a query that asks for nothing gets identity and createdtime only -
// since projection exists to control memory and response size.  Copies are by reference: a
// projected entity aliases the source entity's groups and both must be treated as read-only.

package db

import (
	"fmt"
	"strings"

	"timestore/db/repr"
)

type Field uint32

const (
	FieldConfigs Field = 1 << iota
	FieldMetrics
	FieldInfo
	FieldRelatesTo
	FieldIsRelatedTo
	FieldEvents
)

const FieldAll = FieldConfigs | FieldMetrics | FieldInfo | FieldRelatesTo | FieldIsRelatedTo | FieldEvents

// One copier per field group, so that adding a group means adding a row here rather than growing a
// branch ladder in the projector.
var fieldCopiers = []struct {
	field Field
	copy  func(dst, src *repr.Entity)
}{
	{FieldConfigs, func(dst, src *repr.Entity) { dst.Configs = src.Configs }},
	{FieldMetrics, func(dst, src *repr.Entity) { dst.Metrics = src.Metrics }},
	{FieldInfo, func(dst, src *repr.Entity) { dst.Info = src.Info }},
	{FieldRelatesTo, func(dst, src *repr.Entity) { dst.RelatesTo = src.RelatesTo }},
	{FieldIsRelatedTo, func(dst, src *repr.Entity) { dst.IsRelatedTo = src.IsRelatedTo }},
	{FieldEvents, func(dst, src *repr.Entity) { dst.Events = src.Events }},
}

func projectEntity(e *repr.Entity, fields Field) *repr.Entity {
	projected := &repr.Entity{
		Identifier:  e.Identifier,
		CreatedTime: e.CreatedTime,
	}
	for _, c := range fieldCopiers {
		if fields&c.field != 0 {
			c.copy(projected, e)
		}
	}
	return projected
}

// ParseFields parses a comma-separated list of field group names as they appear in query strings
// and on the command line.  The empty string selects the minimal projection.
func ParseFields(spec string) (Field, error) {
	var fields Field
	if spec == "" {
		return 0, nil
	}
	for _, name := range strings.Split(spec, ",") {
		switch strings.ToUpper(strings.TrimSpace(name)) {
		case "ALL":
			fields |= FieldAll
		case "CONFIGS":
			fields |= FieldConfigs
		case "METRICS":
			fields |= FieldMetrics
		case "INFO":
			fields |= FieldInfo
		case "RELATES_TO":
			fields |= FieldRelatesTo
		case "IS_RELATED_TO":
			fields |= FieldIsRelatedTo
		case "EVENTS":
			fields |= FieldEvents
		default:
			return 0, fmt.Errorf("Bad field group %q", name)
		}
	}
	return fields, nil
}
