package parse

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
)

func TestCsvRowReader(t *testing.T) {
	input := `APP,USER,FLOW,FLOWRUN
app_1,alice,flow_1,1002345678919
,bob,flow_2,1002345678920
"app,3","car""ol",flow_3,1002345678921
short,row`
	rows := NewCsvRowReader(strings.NewReader(input))
	expect := [][]string{
		{"APP", "USER", "FLOW", "FLOWRUN"},
		{"app_1", "alice", "flow_1", "1002345678919"},
		{"", "bob", "flow_2", "1002345678920"},
		{"app,3", `car"ol`, "flow_3", "1002345678921"},
		{"short", "row"},
	}
	for _, want := range expect {
		row, err := rows.Next()
		if err != nil {
			t.Fatalf("Next failed: %q", err)
		}
		if !reflect.DeepEqual(row, want) {
			t.Fatalf("Wrong row: got %q want %q", row, want)
		}
	}
	_, err := rows.Next()
	if err != io.EOF {
		t.Fatalf("Expected EOF, got %q", err)
	}
}

func TestCsvBlankLine(t *testing.T) {
	rows := NewCsvRowReader(strings.NewReader("\na,b\n"))
	row, err := rows.Next()
	if err != nil {
		t.Fatalf("Next failed: %q", err)
	}
	if !reflect.DeepEqual(row, []string{""}) {
		t.Fatalf("Blank line should be a single empty field: %q", row)
	}
	row, err = rows.Next()
	if err != nil || len(row) != 2 {
		t.Fatalf("Second row wrong: %q %q", row, err)
	}
}

func TestCsvSyntaxErrors(t *testing.T) {
	for _, input := range []string{
		`"unterminated`,
		`"quoted"trailer,x`,
		`plain"quote,x`,
	} {
		rows := NewCsvRowReader(strings.NewReader(input))
		_, err := rows.Next()
		if !errors.Is(err, CsvSyntaxErr) {
			t.Fatalf("Expected syntax error for %q, got %q", input, err)
		}
	}
}
