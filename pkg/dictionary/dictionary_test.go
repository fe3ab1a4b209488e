package dictionary

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

const jmdictFixture = `
{
  "words": [
    {
      "id": "1",
      "kanji": [{"text": "犬", "common": true}],
      "kana": [{"text": "いぬ", "common": true}],
      "sense": [{"gloss": [{"text": "dog"}], "partOfSpeech": ["n"]}]
    },
    {
      "id": "2",
      "kanji": [{"text": "走る", "common": true}],
      "kana": [{"text": "はしる", "common": true}],
      "sense": [
        {"gloss": [{"text": "to run"}, {"text": "laufen", "lang": "ger"}], "partOfSpeech": ["v5r"]},
        {"gloss": [{"text": "to travel"}], "partOfSpeech": ["v5r", "vi"]}
      ]
    },
    {
      "id": "4",
      "kanji": [],
      "kana": [{"text": "テスト", "common": true}],
      "sense": [{"gloss": [{"text": "test"}], "partOfSpeech": ["n", "vs"]}]
    }
  ]
}
`

func TestLoadFileJMdict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jmdict.json")
	if err := os.WriteFile(path, []byte(jmdictFixture), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load dict: %v", err)
	}

	ctx := context.Background()
	tests := []struct {
		word, def, pos, pron string
	}{
		{"犬", "dog", "n", "いぬ"},
		{"いぬ", "dog", "n", "いぬ"},
		{"走る", "to run; to travel", "v5r, vi", "はしる"},
		{"テスト", "test", "n, vs", "テスト"},
		{"てすと", "test", "n, vs", "テスト"},
	}
	for _, tt := range tests {
		got, err := f.LookupDefinition(ctx, tt.word, "")
		if err != nil {
			t.Errorf("LookupDefinition(%q): %v", tt.word, err)
			continue
		}
		if got.Word != tt.word || got.Definition != tt.def || got.PartOfSpeech != tt.pos || got.Pronunciation != tt.pron {
			t.Errorf("LookupDefinition(%q) = %+v; want def %q pos %q pron %q", tt.word, got, tt.def, tt.pos, tt.pron)
		}
	}

	_, err = f.LookupDefinition(ctx, "未知", "")
	var lerr *LookupError
	if !errors.As(err, &lerr) || !errors.Is(err, ErrNotFound) {
		t.Errorf("expected LookupError wrapping ErrNotFound, got %v", err)
	}
}

func TestParseFileFormats(t *testing.T) {
	bare := `[{"id":"1","kanji":[{"text":"猫"}],"kana":[{"text":"ねこ"}],"sense":[{"gloss":[{"text":"cat"}],"partOfSpeech":["n"]}]}]`
	f, err := ParseFile([]byte(bare))
	if err != nil {
		t.Fatalf("parse bare jmdict array: %v", err)
	}
	if def, err := f.LookupDefinition(context.Background(), "猫", ""); err != nil || def.Definition != "cat" {
		t.Errorf("bare array lookup = %+v, %v", def, err)
	}

	simple := `[{"word":"Ephemeral","definition":"lasting a very short time","partOfSpeech":"adjective","synonyms":["fleeting"]}]`
	f, err = ParseFile([]byte(simple))
	if err != nil {
		t.Fatalf("parse simple array: %v", err)
	}
	def, err := f.LookupDefinition(context.Background(), "ephemeral", "")
	if err != nil {
		t.Fatalf("simple lookup: %v", err)
	}
	if def.Definition != "lasting a very short time" || len(def.Synonyms) != 1 {
		t.Errorf("simple lookup = %+v", def)
	}

	if _, err := ParseFile([]byte(`"nope"`)); err == nil {
		t.Error("expected error for a JSON string")
	}
	f, err = ParseFile([]byte(`[]`))
	if err != nil {
		t.Fatalf("parse empty array: %v", err)
	}
	if f.Len() != 0 {
		t.Errorf("empty array indexed %d terms", f.Len())
	}
}

func TestChainAndFallback(t *testing.T) {
	ctx := context.Background()
	failing := LookupFunc(func(ctx context.Context, word, sentence string) (Definition, error) {
		return Definition{}, &LookupError{Word: word, Err: errors.New("service unreachable")}
	})
	file := NewFile([]Definition{{Word: "pacer", Definition: "a guide for the eyes"}})

	c := Chain(failing, file)
	def, err := c.LookupDefinition(ctx, "pacer", "")
	if err != nil || def.Definition != "a guide for the eyes" {
		t.Fatalf("chain = %+v, %v", def, err)
	}

	_, err = c.LookupDefinition(ctx, "zzz", "")
	var lerr *LookupError
	if !errors.As(err, &lerr) || lerr.Word != "zzz" {
		t.Fatalf("expected LookupError for zzz, got %v", err)
	}

	fb := WithFallback(c, nil)
	def, err = fb.LookupDefinition(ctx, "zzz", "  The zzz was loud.  ")
	if err != nil {
		t.Fatalf("fallback returned error: %v", err)
	}
	want := Fallback("zzz", "The zzz was loud.")
	if def.Definition != want.Definition || def.PartOfSpeech != "unknown" {
		t.Errorf("fallback = %+v; want %+v", def, want)
	}
	if len(def.Examples) != 1 || def.Examples[0] != "The zzz was loud." {
		t.Errorf("fallback examples = %v", def.Examples)
	}
}

func TestWithFallbackPassesContextErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fb := WithFallback(NewFile(nil), nil)
	if _, err := fb.LookupDefinition(ctx, "anything", ""); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func newChatServer(t *testing.T, content string, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || !strings.Contains(req.Messages[1].Content, "Word: ephemeral") {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		resp := map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   req.Model,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestLLMLookup(t *testing.T) {
	content := "```json\n{\"definition\":\"lasting a very short time\",\"partOfSpeech\":\"adjective\",\"pronunciation\":\"/ɪˈfem(ə)rəl/\",\"examples\":[\"Fame is ephemeral.\"],\"synonyms\":[\"fleeting\",\"transient\"],\"antonyms\":[\"permanent\"]}\n```"
	srv, calls := newChatServer(t, content, http.StatusOK)

	l := NewLLM(LLMConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1", RequestsPerMinute: 6000})
	def, err := l.LookupDefinition(context.Background(), "ephemeral", "Fame is ephemeral.")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if def.Word != "ephemeral" || def.Definition != "lasting a very short time" || def.PartOfSpeech != "adjective" {
		t.Errorf("unexpected definition: %+v", def)
	}
	if len(def.Synonyms) != 2 || len(def.Antonyms) != 1 {
		t.Errorf("unexpected synonyms/antonyms: %+v", def)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 request, got %d", calls.Load())
	}
}

func TestLLMLookupErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		status  int
	}{
		{"server error", "", http.StatusInternalServerError},
		{"malformed json", "not json at all", http.StatusOK},
		{"empty definition", `{"definition":"  "}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newChatServer(t, tt.content, tt.status)
			l := NewLLM(LLMConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1", RequestsPerMinute: 6000})

			_, err := l.LookupDefinition(context.Background(), "ephemeral", "")
			var lerr *LookupError
			if !errors.As(err, &lerr) {
				t.Fatalf("expected LookupError, got %v", err)
			}
			if lerr.Word != "ephemeral" {
				t.Errorf("LookupError.Word = %q", lerr.Word)
			}

			def, err := WithFallback(l, nil).LookupDefinition(context.Background(), "ephemeral", "")
			if err != nil || def.PartOfSpeech != "unknown" {
				t.Errorf("fallback = %+v, %v", def, err)
			}
		})
	}
}
