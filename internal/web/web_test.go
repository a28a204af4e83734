package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mistral-chat/internal/chatview"
)

func TestPageHandler_RendersLocale(t *testing.T) {
	tests := []struct {
		locale      string
		placeholder string
		send        string
	}{
		{"zh", "输入消息...", "发送"},
		{"en", "Type a message...", "Send"},
	}

	for _, tc := range tests {
		t.Run(tc.locale, func(t *testing.T) {
			h, err := NewPageHandler(chatview.LookupLocale(tc.locale))
			if err != nil {
				t.Fatalf("failed to build page: %v", err)
			}

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

			if rr.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
			}
			body := rr.Body.String()
			for _, want := range []string{`class="chat-container"`, `placeholder="` + tc.placeholder + `"`, tc.send, `e.key === "Enter" && !e.shiftKey`} {
				if !strings.Contains(body, want) {
					t.Errorf("expected page to contain %q", want)
				}
			}
			if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
				t.Errorf("unexpected content type %q", ct)
			}
		})
	}
}
