package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"NewsCredibility/internal/config"
	"NewsCredibility/internal/domain"
)

func TestParseVerdict(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		in      string
		want    domain.Classification
		wantErr bool
	}{
		{"plain", `{"label":"credible","confidence":0.9}`, domain.Classification{Label: domain.LabelCredible, Confidence: 0.9}, false},
		{"fenced", "```json\n{\"label\":\"Unreliable\",\"confidence\":0.4}\n```", domain.Classification{Label: domain.LabelUnreliable, Confidence: 0.4}, false},
		{"unknown label", `{"label":"maybe","confidence":0.5}`, domain.Classification{}, true},
		{"confidence out of range", `{"label":"credible","confidence":1.5}`, domain.Classification{}, true},
		{"not json", "credible", domain.Classification{}, true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseVerdict(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseVerdict error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("parseVerdict = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestClassifyCallsChatCompletion(t *testing.T) {
	t.Parallel()

	var gotModel, gotAuth string
	var gotMessages int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		gotAuth = r.Header.Get("Authorization")

		var req struct {
			Model    string            `json:"model"`
			Messages []json.RawMessage `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotModel = req.Model
		gotMessages = len(req.Messages)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "test-model",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": "{\"label\":\"unreliable\",\"confidence\":0.7}"},
				"finish_reason": "stop"
			}]
		}`))
	}))
	defer srv.Close()

	classifier := NewClassifier(config.OpenAIConfig{
		APIKey:  "sk-test",
		BaseURL: srv.URL + "/v1",
		Model:   "test-model",
	})

	got, err := classifier.Classify(context.Background(), "Some article text.")
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if got.Label != domain.LabelUnreliable || got.Confidence != 0.7 {
		t.Fatalf("unexpected classification %+v", got)
	}
	if gotModel != "test-model" || gotAuth != "Bearer sk-test" || gotMessages != 2 {
		t.Fatalf("unexpected request model=%q auth=%q messages=%d", gotModel, gotAuth, gotMessages)
	}
}

func TestClassifyPropagatesHTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	classifier := NewClassifier(config.OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL, Model: "m"})
	if _, err := classifier.Classify(context.Background(), "text"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := truncate("héllo", 2); got != "hé" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abc", 10); got != "abc" {
		t.Fatalf("truncate = %q", got)
	}
	if !strings.Contains(safePrompt(""), "JSON") {
		t.Fatalf("default prompt should ask for JSON")
	}
}
