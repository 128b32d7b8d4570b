// JSON codec for entity records.
//
// The codec is an explicitly constructed, immutable object that is handed to the components that
// need it; there is deliberately no package-level shared instance.  One record is one JSON object
// on a single line; the encoder never emits embedded newlines.

package parse

import (
	"encoding/json"
	"fmt"

	"timestore/db/errs"
	"timestore/db/repr"
)

type EntityCodec struct{}

func NewEntityCodec() *EntityCodec {
	return &EntityCodec{}
}

// DecodeEntity decodes one record line.  Decode failures wrap errs.ErrBadRecord so that callers
// can classify them without string matching.
func (c *EntityCodec) DecodeEntity(line []byte) (*repr.Entity, error) {
	e := new(repr.Entity)
	if err := json.Unmarshal(line, e); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrBadRecord, err)
	}
	return e, nil
}

func (c *EntityCodec) EncodeEntity(e *repr.Entity) ([]byte, error) {
	return json.Marshal(e)
}
