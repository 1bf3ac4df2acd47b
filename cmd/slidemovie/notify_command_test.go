package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTestNotifySendsToTopic(t *testing.T) {
	var title string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		title = r.Header.Get("Title")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	env := setupCLI(t, "[notifications]\nntfy_topic = \""+server.URL+"\"\n")
	out, stderr, code := env.runCLI(t, "", "test-notify")
	if code != 0 {
		t.Fatalf("test-notify: code=%d stderr=%s", code, stderr)
	}
	if !strings.Contains(out, "Test notification sent") {
		t.Fatalf("unexpected output %q", out)
	}
	if title != "slidemovie - Test" {
		t.Fatalf("unexpected title %q", title)
	}
}

func TestTestNotifyRequiresTopic(t *testing.T) {
	env := setupCLI(t, "")
	_, stderr, code := env.runCLI(t, "", "test-notify")
	if code != 1 || !strings.Contains(stderr, "ntfy_topic") {
		t.Fatalf("code=%d stderr=%q", code, stderr)
	}
}
