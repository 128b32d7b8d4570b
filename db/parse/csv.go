// CSV reader for the flow-mapping index.
//
// CSV is not a single well-defined format.  Here is what we're parsing:
//
//  - the input is UTF-8 / ASCII, no BOM allowed (or needed)
//  - there is one CSV record per line
//  - lines are terminated by ASCII newline 0x0A, exclusively
//  - the terminator is optional at EOF
//  - blank lines are treated as empty records (not ignored)
//  - fields are separated by ASCII comma 0x2C, exclusively
//  - the number of fields can vary from line to line
//  - fields can be empty
//  - fields can be enclosed in double-quotes ASCII 0x22 and double-quotes and commas are allowed
//    inside quoted fields
//  - newlines and EOF are not allowed inside double-quoted fields
//  - a double-quote is represented as two double-quotes in a double-quoted field

package parse

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// MT: Constant after initialization; immutable
var CsvSyntaxErr = errors.New("CSV syntax error")

type CsvRowReader struct {
	scanner *bufio.Scanner
}

func NewCsvRowReader(input io.Reader) *CsvRowReader {
	return &CsvRowReader{scanner: bufio.NewScanner(input)}
}

// Next returns the fields of the next record, or io.EOF at end of input.  Syntax errors wrap
// CsvSyntaxErr; every other error is an I/O error.
func (r *CsvRowReader) Next() ([]string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return splitCsvRow(r.scanner.Text())
}

func splitCsvRow(line string) ([]string, error) {
	fields := make([]string, 0, 4)
	i := 0
	for {
		var field strings.Builder
		if i < len(line) && line[i] == '"' {
			i++
			closed := false
			for i < len(line) {
				c := line[i]
				if c == '"' {
					if i+1 < len(line) && line[i+1] == '"' {
						field.WriteByte('"')
						i += 2
						continue
					}
					i++
					closed = true
					break
				}
				field.WriteByte(c)
				i++
			}
			if !closed {
				return nil, CsvSyntaxErr
			}
			if i < len(line) && line[i] != ',' {
				return nil, CsvSyntaxErr
			}
		} else {
			for i < len(line) && line[i] != ',' {
				if line[i] == '"' {
					return nil, CsvSyntaxErr
				}
				field.WriteByte(line[i])
				i++
			}
		}
		fields = append(fields, field.String())
		if i == len(line) {
			return fields, nil
		}
		// Skip the comma and go around for the next field, which may be empty.
		i++
	}
}
