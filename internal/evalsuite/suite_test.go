package evalsuite

import "testing"

func TestParseSuite_JSONL_SkipsCommentsAndBlanks(t *testing.T) {
	t.Parallel()
	raw := []byte("# comment\n\n{\"query\": \"go concurrency\", \"expected_urls\": [\"https://go.dev/x\"]}\n{\"query\": \"rust async\"}\n")
	cases, err := ParseSuite(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("expected 2 cases, got %d: %+v", len(cases), cases)
	}
	if cases[0].Query != "go concurrency" {
		t.Fatalf("unexpected first case: %+v", cases[0])
	}
}

func TestParseSuite_JSONArray(t *testing.T) {
	t.Parallel()
	raw := []byte(`[{"query": "a"}, {"query": "b", "k": 5}]`)
	cases, err := ParseSuite(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(cases) != 2 || cases[1].K != 5 {
		t.Fatalf("unexpected cases: %+v", cases)
	}
}

func TestParseSuite_JSONObjectWithCasesKey(t *testing.T) {
	t.Parallel()
	raw := []byte(`{"cases": [{"query": "a"}]}`)
	cases, err := ParseSuite(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(cases) != 1 {
		t.Fatalf("expected 1 case, got %d", len(cases))
	}
}

func TestParseSuite_Empty(t *testing.T) {
	t.Parallel()
	cases, err := ParseSuite([]byte("  \n  "))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(cases) != 0 {
		t.Fatalf("expected no cases, got %d", len(cases))
	}
}
