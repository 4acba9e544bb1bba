package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/tsawler/textpos"
	"github.com/tsawler/textpos/contentstream"
	"github.com/tsawler/textpos/core"
	"github.com/tsawler/textpos/placement"
)

var samplePages = []textpos.PageItems{
	{Page: 1, Items: []placement.TextItem{
		{Text: "Hello", X: 100, Y: 700, FontSize: 12},
		{Text: `say "hi" <b>`, X: 72.5, Y: 60.25, FontSize: 9},
	}},
	{Page: 2},
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, samplePages); err != nil {
		t.Fatal(err)
	}
	want := `Processing Page 1
  Found: "Hello" at (100.00, 700.00) size 12.00
  Found: "say \"hi\" <b>" at (72.50, 60.25) size 9.00
Processing Page 2
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("text mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, samplePages); err != nil {
		t.Fatal(err)
	}

	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if len(got) != 2 {
		t.Fatalf("got %d pages, want 2", len(got))
	}
	first := got[0]["items"].([]any)[0].(map[string]any)
	want := map[string]any{"text": "Hello", "x": 100.0, "y": 700.0, "font_size": 12.0}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Errorf("first item mismatch (-want +got):\n%s", diff)
	}
	if items, ok := got[1]["items"].([]any); !ok || len(items) != 0 {
		t.Errorf("empty page items = %v, want []", got[1]["items"])
	}
	if !strings.Contains(buf.String(), "<b>") {
		t.Error("HTML characters were escaped")
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, samplePages); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"PAGE", "TEXT", `"Hello"`, "100.00", "700.00", "12.00", "60.25"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestWriteHTML(t *testing.T) {
	pages := append(samplePages, textpos.PageItems{
		Page:  3,
		Box:   []float64{10, 20, 605, 862},
		Items: []placement.TextItem{{Text: "top", X: 60, Y: 830, FontSize: 10}},
	})
	var buf bytes.Buffer
	if err := WriteHTML(&buf, pages); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "<!DOCTYPE html>") {
		t.Errorf("missing doctype: %.40s", buf.String())
	}

	doc, err := html.Parse(&buf)
	if err != nil {
		t.Fatal(err)
	}

	var numbers, sizes, texts, styles []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "div":
				numbers = append(numbers, attr(n, "data-page"))
				sizes = append(sizes, attr(n, "style"))
			case "span":
				styles = append(styles, attr(n, "style"))
				if n.FirstChild != nil {
					texts = append(texts, n.FirstChild.Data)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if diff := cmp.Diff([]string{"1", "2", "3"}, numbers); diff != "" {
		t.Errorf("pages mismatch (-want +got):\n%s", diff)
	}
	wantSizes := []string{"width:612pt;height:792pt", "width:612pt;height:792pt", "width:595pt;height:842pt"}
	if diff := cmp.Diff(wantSizes, sizes); diff != "" {
		t.Errorf("page sizes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Hello", `say "hi" <b>`, "top"}, texts); diff != "" {
		t.Errorf("texts mismatch (-want +got):\n%s", diff)
	}
	wantStyles := []string{
		"left:100.00pt;bottom:700.00pt;font-size:12.00pt",
		"left:72.50pt;bottom:60.25pt;font-size:9.00pt",
		"left:50.00pt;bottom:810.00pt;font-size:10.00pt",
	}
	if diff := cmp.Diff(wantStyles, styles); diff != "" {
		t.Errorf("span styles mismatch (-want +got):\n%s", diff)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func TestOperations(t *testing.T) {
	ops := []contentstream.Operation{
		{Operator: "BT"},
		{Operator: "Tf", Operands: []core.Object{core.Name("F1"), core.Int(12)}},
		{Operator: "Tj", Operands: []core.Object{core.ByteString("a(b)")}},
	}
	var buf bytes.Buffer
	if err := Operations(&buf, ops); err != nil {
		t.Fatal(err)
	}
	want := `Content Operations:
  Operator: BT, Operands: []
  Operator: Tf, Operands: [/F1 12]
  Operator: Tj, Operands: [(a\(b\))]
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("listing mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"text", Text, false},
		{"JSON", JSON, false},
		{"Table", Table, false},
		{"html", HTML, false},
		{"xml", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnknownFormat) {
				t.Errorf("error = %v, want ErrUnknownFormat", err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.name, got, tt.want)
			}
			if !tt.wantErr && !strings.EqualFold(got.String(), tt.name) {
				t.Errorf("String() = %q", got.String())
			}
		})
	}
}

func TestWriteDispatch(t *testing.T) {
	for _, f := range []Format{Text, JSON, Table, HTML} {
		var buf bytes.Buffer
		if err := Write(&buf, f, samplePages); err != nil {
			t.Errorf("%v: %v", f, err)
		}
		if !strings.Contains(buf.String(), "Hello") {
			t.Errorf("%v output lacks item text", f)
		}
	}
	if err := Write(&bytes.Buffer{}, Format(9), samplePages); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("error = %v, want ErrUnknownFormat", err)
	}
}
