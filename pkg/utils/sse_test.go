package utils

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSendSSEChunkFormat(t *testing.T) {
	rec := httptest.NewRecorder()

	SendSSEChunk(rec, rec, map[string]string{"event": "start"})

	body := rec.Body.String()
	if !strings.HasPrefix(body, "data: ") {
		t.Fatalf("expected data prefix, got %q", body)
	}
	if !strings.HasSuffix(body, "\n\n") {
		t.Fatalf("expected blank-line terminator, got %q", body)
	}
	if !strings.Contains(body, `"event":"start"`) {
		t.Fatalf("expected json payload, got %q", body)
	}
}

func TestSendSSEEventFormat(t *testing.T) {
	rec := httptest.NewRecorder()

	SendSSEEvent(rec, rec, "heartbeat", map[string]string{"message": "ok"})

	body := rec.Body.String()
	if !strings.HasPrefix(body, "event: heartbeat\n") {
		t.Fatalf("expected named event line, got %q", body)
	}
	if !strings.Contains(body, `data: {"message":"ok"}`) {
		t.Fatalf("expected data line, got %q", body)
	}
}

func TestSetupSSEHeaders(t *testing.T) {
	rec := httptest.NewRecorder()

	SetupSSEHeaders(rec)

	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-cache" {
		t.Fatalf("unexpected cache control %q", got)
	}
}
