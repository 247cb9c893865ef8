package requestid

import (
	"context"
	"strings"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := WithContext(context.Background(), "req-1")
	if got := FromContext(ctx); got != "req-1" {
		t.Fatalf("FromContext = %q, want req-1", got)
	}
	if got := FromContext(context.Background()); got != "" {
		t.Fatalf("FromContext(empty) = %q", got)
	}
	if WithContext(ctx, "") != ctx {
		t.Fatalf("empty id must not replace context")
	}
}

func TestAccept(t *testing.T) {
	if got := Accept("abc"); got != "abc" {
		t.Fatalf("Accept(abc) = %q", got)
	}
	if got := Accept(""); got == "" {
		t.Fatalf("Accept(empty) returned empty id")
	}
	long := strings.Repeat("x", maxLen+1)
	if got := Accept(long); got == long {
		t.Fatalf("Accept kept an oversized id")
	}
}
