// Entity filter set and the textual filter-expression forms accepted by the CLI and the REST
// daemon.

package db

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultLimit bounds the result set when the caller supplies no limit.
const DefaultLimit = 100

// The EntityFilters will be applied to reconstructed entities and must all pass for an entity to
// be included in a multi-entity result.  Zero values pass everything: a zero CreatedTimeEnd means
// unbounded above, nil maps and slices disable their component, and a nonpositive Limit means
// DefaultLimit.
type EntityFilters struct {
	Limit            int64
	CreatedTimeBegin int64
	CreatedTimeEnd   int64
	RelatesTo        map[string][]string
	IsRelatedTo      map[string][]string
	InfoFilters      map[string]any
	ConfigFilters    map[string]string
	MetricFilters    []string
	EventFilters     []string
}

// Textual filter expressions.
//
// Relation filters:  "type:id1:id2,type2:id3"
// Key/value filters: "key:value,key2:value2"
// Id-set filters:    "id1,id2"
//
// Keys, types and ids cannot contain ':' or ','; there is no escape syntax.  These forms come
// from the query-string syntax of the original service's REST surface.

func ParseRelationFilterExpr(expr string) (map[string][]string, error) {
	if expr == "" {
		return nil, nil
	}
	filter := make(map[string][]string)
	for _, clause := range strings.Split(expr, ",") {
		parts := strings.Split(clause, ":")
		if len(parts) < 2 || parts[0] == "" {
			return nil, fmt.Errorf("Bad relation filter clause %q", clause)
		}
		filter[parts[0]] = append(filter[parts[0]], parts[1:]...)
	}
	return filter, nil
}

func ParseConfigFilterExpr(expr string) (map[string]string, error) {
	if expr == "" {
		return nil, nil
	}
	filter := make(map[string]string)
	for _, clause := range strings.Split(expr, ",") {
		key, value, found := strings.Cut(clause, ":")
		if !found || key == "" {
			return nil, fmt.Errorf("Bad key/value filter clause %q", clause)
		}
		filter[key] = value
	}
	return filter, nil
}

// Info values are typed: a clause value that parses as a number or boolean is matched as such,
// anything else is matched as a string.
func ParseInfoFilterExpr(expr string) (map[string]any, error) {
	kv, err := ParseConfigFilterExpr(expr)
	if err != nil || kv == nil {
		return nil, err
	}
	filter := make(map[string]any, len(kv))
	for key, value := range kv {
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			filter[key] = n
		} else if b, err := strconv.ParseBool(value); err == nil {
			filter[key] = b
		} else {
			filter[key] = value
		}
	}
	return filter, nil
}

func ParseIDSetExpr(expr string) []string {
	if expr == "" {
		return nil
	}
	return strings.Split(expr, ",")
}
