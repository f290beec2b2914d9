package envelope

import "testing"

func TestExitCode_MapsTaxonomy(t *testing.T) {
	t.Parallel()
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrBlocked, 4},
		{ErrRobotsDisallow, 4},
		{ErrNeedsRender, 5},
		{ErrNotFound, 3},
		{ErrPolicyRefused, 2},
		{ErrInvalidUsage, 2},
		{ErrTransportError, 1},
	}
	for _, c := range cases {
		e := NewError("fetch", "v0", nil, nil, c.code, "boom", nil, false, Meta{})
		if got := ExitCode(e); got != c.want {
			t.Fatalf("code %s: want exit %d, got %d", c.code, c.want, got)
		}
	}
}

func TestExitCode_OKIsAlwaysZero(t *testing.T) {
	t.Parallel()
	e := New("fetch", "v0", map[string]string{"ok": "yes"}, nil, Meta{})
	if got := ExitCode(e); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestNewError_RedactsDetailsWhenRequested(t *testing.T) {
	t.Parallel()
	details := map[string]any{"api_key": "sekret", "reason": "http_403"}
	e := NewError("fetch", "v0", nil, nil, ErrBlocked, "blocked", details, true, Meta{})
	if e.Error.Details["api_key"] != "[redacted]" {
		t.Fatalf("expected api_key to be redacted, got %+v", e.Error.Details)
	}
	if e.Error.Details["reason"] != "http_403" {
		t.Fatalf("expected reason to survive redaction, got %+v", e.Error.Details)
	}
}

func TestNew_DedupesWarningsByExactString(t *testing.T) {
	t.Parallel()
	e := New("fetch", "v0", nil, []string{"truncated", "truncated", "cache miss"}, Meta{})
	if len(e.Warnings) != 2 {
		t.Fatalf("expected 2 deduped warnings, got %+v", e.Warnings)
	}
}
