package tips_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanderlist/internal/tips"
)

// mockSource is a hand-written test double for tips.Source.
type mockSource struct {
	TipsFunc func(ctx context.Context, place string, t tips.Type) (string, error)
	calls    int
}

func (m *mockSource) Tips(ctx context.Context, place string, t tips.Type) (string, error) {
	m.calls++
	return m.TipsFunc(ctx, place, t)
}

func fallbackText(t *testing.T, place string, typ tips.Type) string {
	t.Helper()
	text, err := tips.FallbackSource{}.Tips(context.Background(), place, typ)
	require.NoError(t, err)
	return text
}

func TestGetTips_NoCredentialUsesFallback(t *testing.T) {
	p := tips.NewProvider(nil, nil)

	got, err := p.GetTips(context.Background(), "Kyoto", tips.Packing)

	require.NoError(t, err)
	assert.Equal(t, "📷 Camera - Capture the beautiful sights\n🗺️ Travel guide - Navigate like a local\n🧴 Sunscreen - Protect yourself from the sun", got)
	assert.False(t, p.Live())
}

func TestGetTips_BlankPlaceIsInvalid(t *testing.T) {
	remote := &mockSource{TipsFunc: func(context.Context, string, tips.Type) (string, error) {
		return "should not be called", nil
	}}

	for _, p := range []*tips.Provider{tips.NewProvider(nil, nil), tips.NewProvider(remote, nil)} {
		_, err := p.GetTips(context.Background(), "   ", tips.Facts)
		assert.ErrorIs(t, err, tips.ErrInvalidInput)
	}
	assert.Zero(t, remote.calls)
}

func TestGetTips_UnknownTypeFallsBackToFacts(t *testing.T) {
	p := tips.NewProvider(nil, nil)

	got, err := p.GetTips(context.Background(), "Rome", tips.Type("history"))

	require.NoError(t, err)
	assert.Equal(t, fallbackText(t, "Rome", tips.Facts), got)
	assert.Contains(t, got, "museums in Rome")
}

func TestGetTips_RemoteErrorUsesFallback(t *testing.T) {
	remote := &mockSource{TipsFunc: func(context.Context, string, tips.Type) (string, error) {
		return "", errors.New("network down")
	}}
	p := tips.NewProvider(remote, nil)

	got, err := p.GetTips(context.Background(), "Lima", tips.Etiquette)

	require.NoError(t, err)
	assert.Equal(t, fallbackText(t, "Lima", tips.Etiquette), got)
	assert.Equal(t, 1, remote.calls)
}

func TestGetTips_RemoteSuccess(t *testing.T) {
	var gotType tips.Type
	remote := &mockSource{TipsFunc: func(_ context.Context, place string, typ tips.Type) (string, error) {
		gotType = typ
		return "live tips for " + place, nil
	}}
	p := tips.NewProvider(remote, nil)

	got, err := p.GetTips(context.Background(), "Oslo", tips.ThingsToDo)

	require.NoError(t, err)
	assert.Equal(t, "live tips for Oslo", got)
	assert.Equal(t, tips.ThingsToDo, gotType)
	assert.True(t, p.Live())
}

func TestGetTips_NoCaching(t *testing.T) {
	remote := &mockSource{TipsFunc: func(context.Context, string, tips.Type) (string, error) {
		return "tips", nil
	}}
	p := tips.NewProvider(remote, nil)

	for i := 0; i < 3; i++ {
		_, err := p.GetTips(context.Background(), "Oslo", tips.Facts)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, remote.calls)
}

func TestParseType(t *testing.T) {
	assert.Equal(t, tips.Packing, tips.ParseType("packing"))
	assert.Equal(t, tips.ThingsToDo, tips.ParseType("thingsToDo"))
	assert.Equal(t, tips.Facts, tips.ParseType(""))
	assert.Equal(t, tips.Facts, tips.ParseType("PACKING"))
}

func TestFallbackSource_EveryTypeHasThreeLines(t *testing.T) {
	for _, typ := range tips.Types() {
		text := fallbackText(t, "Quito", typ)
		assert.Len(t, strings.Split(text, "\n"), 3, "type %s", typ)
	}
}

// ---- RemoteSource against an httptest server --------------------------------

type capturedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]any
}

func chatServer(t *testing.T, status int, response string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			captured.Method = r.Method
			captured.Path = r.URL.Path
			captured.Auth = r.Header.Get("Authorization")
			_ = json.NewDecoder(r.Body).Decode(&captured.Body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRemoteSource_SendsChatCompletionRequest(t *testing.T) {
	var captured capturedRequest
	srv := chatServer(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"Visit Fushimi Inari."}}]}`, &captured)
	src := tips.NewRemoteSource("sk-test", srv.URL+"/", "")

	got, err := src.Tips(context.Background(), "Kyoto", tips.Facts)

	require.NoError(t, err)
	assert.Equal(t, "Visit Fushimi Inari.", got)
	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Equal(t, "/chat/completions", captured.Path)
	assert.Equal(t, "Bearer sk-test", captured.Auth)
	assert.Equal(t, tips.DefaultModel, captured.Body["model"])
	assert.InDelta(t, 0.7, captured.Body["temperature"], 1e-9)
	assert.InDelta(t, 300, captured.Body["max_tokens"], 1e-9)

	messages, ok := captured.Body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	system := messages[0].(map[string]any)
	user := messages[1].(map[string]any)
	assert.Equal(t, "system", system["role"])
	assert.Contains(t, system["content"], "helpful travel assistant")
	assert.Equal(t, "user", user["role"])
	assert.Contains(t, user["content"], "must-see places in Kyoto")
}

func TestRemoteSource_PromptPerType(t *testing.T) {
	tests := map[tips.Type]string{
		tips.Etiquette:  "cultural etiquette",
		tips.Packing:    "essential items to pack",
		tips.ThingsToDo: "unique experiences",
	}
	for typ, want := range tests {
		t.Run(string(typ), func(t *testing.T) {
			var captured capturedRequest
			srv := chatServer(t, http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`, &captured)

			_, err := tips.NewRemoteSource("k", srv.URL, "gpt-test").Tips(context.Background(), "Bern", typ)

			require.NoError(t, err)
			assert.Equal(t, "gpt-test", captured.Body["model"])
			user := captured.Body["messages"].([]any)[1].(map[string]any)
			assert.Contains(t, user["content"], want)
			assert.Contains(t, user["content"], "Bern")
		})
	}
}

func TestRemoteSource_EmptyContent(t *testing.T) {
	for name, body := range map[string]string{
		"no choices":    `{"choices":[]}`,
		"empty content": `{"choices":[{"message":{"content":""}}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := chatServer(t, http.StatusOK, body, nil)

			got, err := tips.NewRemoteSource("k", srv.URL, "").Tips(context.Background(), "Bern", tips.Facts)

			require.NoError(t, err)
			assert.Equal(t, "No tips available.", got)
		})
	}
}

func TestRemoteSource_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":{"message":"bad key"}}`},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`},
		{name: "malformed json", status: http.StatusOK, body: `{"choices":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := chatServer(t, tt.status, tt.body, nil)

			_, err := tips.NewRemoteSource("k", srv.URL, "").Tips(context.Background(), "Bern", tips.Facts)

			assert.Error(t, err)
		})
	}
}

func TestRemoteSource_TransportError(t *testing.T) {
	srv := chatServer(t, http.StatusOK, `{}`, nil)
	url := srv.URL
	srv.Close()

	_, err := tips.NewRemoteSource("k", url, "").Tips(context.Background(), "Bern", tips.Facts)

	assert.Error(t, err)
}

func TestProvider_RemoteHTTPFailureReturnsFallback(t *testing.T) {
	srv := chatServer(t, http.StatusTooManyRequests, `{}`, nil)
	p := tips.NewProvider(tips.NewRemoteSource("k", srv.URL, ""), nil)

	got, err := p.GetTips(context.Background(), "Kyoto", tips.Packing)

	require.NoError(t, err)
	assert.Equal(t, fallbackText(t, "Kyoto", tips.Packing), got)
}
