package codec

import (
	"strings"
	"testing"

	"github.com/budgetsakkie/pricefeed/internal/domain"
)

func TestParseDefaults(t *testing.T) {
	text := "name,price\nMilk,12.50\nBread,8.00\n"
	batch := Parse(text, DefaultParseOptions())

	if batch.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", batch.Len())
	}
	if len(batch.Columns) != 2 || batch.Columns[0] != "name" || batch.Columns[1] != "price" {
		t.Fatalf("unexpected columns: %v", batch.Columns)
	}
	if batch.Records[0]["name"] != "Milk" || batch.Records[0]["price"] != "12.50" {
		t.Fatalf("unexpected first record: %v", batch.Records[0])
	}
	if batch.Records[1]["name"] != "Bread" || batch.Records[1]["price"] != "8.00" {
		t.Fatalf("unexpected second record: %v", batch.Records[1])
	}
}

func TestParseHeaderOnly(t *testing.T) {
	batch := Parse("name,price\n", DefaultParseOptions())
	if !batch.IsEmpty() {
		t.Fatalf("expected empty batch, got %d records", batch.Len())
	}
}

func TestParseEmptyText(t *testing.T) {
	batch := Parse("", DefaultParseOptions())
	if !batch.IsEmpty() {
		t.Fatalf("expected empty batch, got %d records", batch.Len())
	}
}

func TestParseWithoutHeaderSynthesizesColumns(t *testing.T) {
	opts := DefaultParseOptions()
	opts.HasHeader = false

	batch := Parse("Milk,12.50\nBread,8.00\n", opts)
	if batch.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", batch.Len())
	}
	if batch.Columns[0] != "column0" || batch.Columns[1] != "column1" {
		t.Fatalf("unexpected synthesized columns: %v", batch.Columns)
	}
	if batch.Records[0]["column0"] != "Milk" {
		t.Fatalf("unexpected record: %v", batch.Records[0])
	}
}

func TestParsePadsShortRows(t *testing.T) {
	batch := Parse("a,b,c\n1,2\n", DefaultParseOptions())
	if batch.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", batch.Len())
	}
	if batch.Records[0]["c"] != "" {
		t.Fatalf("expected missing trailing field to default to empty string, got %v", batch.Records[0]["c"])
	}
}

func TestParseSkipsEmptyLines(t *testing.T) {
	batch := Parse("name\n\nMilk\n   \nBread\n", DefaultParseOptions())
	if batch.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", batch.Len())
	}
}

func TestParseKeepsEmptyLinesWhenDisabled(t *testing.T) {
	opts := DefaultParseOptions()
	opts.SkipEmptyLines = false

	batch := Parse("name\nMilk\n\n", opts)
	// The blank line and the trailing newline's empty segment become records.
	if batch.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", batch.Len())
	}
	if batch.Records[1]["name"] != "" {
		t.Fatalf("expected empty record, got %v", batch.Records[1])
	}
}

func TestParseCustomDelimiter(t *testing.T) {
	opts := DefaultParseOptions()
	opts.Delimiter = ";"

	batch := Parse("name;price\nMilk;12.50\n", opts)
	if batch.Records[0]["price"] != "12.50" {
		t.Fatalf("unexpected record: %v", batch.Records[0])
	}
}

func TestParseDoesNotHonorQuotedFields(t *testing.T) {
	// Quoting is an output-only feature; on input a quoted delimiter still
	// splits the field.
	batch := Parse("name,note\nMilk,\"a,b\"\n", DefaultParseOptions())
	if batch.Records[0]["note"] != `"a` {
		t.Fatalf("expected quoted field to split on the delimiter, got %v", batch.Records[0]["note"])
	}
}

func TestSerializeBasic(t *testing.T) {
	batch := domain.Batch{
		Columns: []string{"name", "price"},
		Records: []domain.Record{
			{"name": "Milk", "price": "12.50"},
			{"name": "Bread", "price": "8.00"},
		},
	}

	got := Serialize(batch, DefaultSerializeOptions())
	want := "name,price\nMilk,12.50\nBread,8.00\n"
	if got != want {
		t.Fatalf("unexpected output:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestSerializeQuotesSpecialValues(t *testing.T) {
	batch := domain.Batch{
		Columns: []string{"a", "b", "c"},
		Records: []domain.Record{
			{"a": "x,y", "b": `say "hi"`, "c": "line1\nline2"},
		},
	}

	got := Serialize(batch, DefaultSerializeOptions())
	want := "a,b,c\n\"x,y\",\"say \"\"hi\"\"\",\"line1\nline2\"\n"
	if got != want {
		t.Fatalf("unexpected output:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestSerializeNilAndObjects(t *testing.T) {
	batch := domain.Batch{
		Columns: []string{"a", "b", "c"},
		Records: []domain.Record{
			{"a": nil, "b": map[string]any{"k": "v"}, "c": 12.5},
		},
	}

	got := Serialize(batch, DefaultSerializeOptions())
	want := "a,b,c\n,\"{\"\"k\"\":\"\"v\"\"}\",12.5\n"
	if got != want {
		t.Fatalf("unexpected output:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestSerializeColumnSubset(t *testing.T) {
	batch := domain.Batch{
		Columns: []string{"name", "price", "retailer"},
		Records: []domain.Record{
			{"name": "Milk", "price": "12.50", "retailer": "checkers"},
		},
	}

	opts := DefaultSerializeOptions()
	opts.Columns = []string{"retailer", "name"}
	got := Serialize(batch, opts)
	want := "retailer,name\ncheckers,Milk\n"
	if got != want {
		t.Fatalf("unexpected output:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestSerializeWithoutHeader(t *testing.T) {
	batch := domain.Batch{
		Columns: []string{"name"},
		Records: []domain.Record{{"name": "Milk"}},
	}

	opts := DefaultSerializeOptions()
	opts.IncludeHeader = false
	if got := Serialize(batch, opts); got != "Milk\n" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestParseSerializeRoundTrip(t *testing.T) {
	text := "product_name,retailer,current_price\nFull Cream Milk 2L,checkers,32.99\nWhite Bread 700g,spar,18.50\nFree Range Eggs 18s,woolworths,89.99\n"

	batch := Parse(text, DefaultParseOptions())
	out := Serialize(batch, DefaultSerializeOptions())
	if out != text {
		t.Fatalf("round trip changed text:\ngot:  %q\nwant: %q", out, text)
	}

	again := Parse(out, DefaultParseOptions())
	if again.Len() != batch.Len() {
		t.Fatalf("round trip changed record count: %d vs %d", again.Len(), batch.Len())
	}
	for i := range batch.Records {
		for _, col := range batch.Columns {
			if again.Records[i][col] != batch.Records[i][col] {
				t.Fatalf("row %d column %s changed: %v vs %v", i, col, again.Records[i][col], batch.Records[i][col])
			}
		}
	}
}

func TestSerializeInfersColumnsFromRecords(t *testing.T) {
	batch := domain.Batch{
		Records: []domain.Record{{"b": "2", "a": "1"}},
	}
	got := Serialize(batch, DefaultSerializeOptions())
	// Inferred column order is sorted for determinism.
	if !strings.HasPrefix(got, "a,b\n") {
		t.Fatalf("expected sorted inferred header, got %q", got)
	}
}
