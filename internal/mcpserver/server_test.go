package mcpserver

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/ansuz/internal/deckservice"
	"github.com/starford/ansuz/internal/history"
	"github.com/starford/ansuz/internal/llm"
	"github.com/starford/ansuz/internal/storage"
)

type stubClient struct {
	response string
}

func (c *stubClient) Complete(ctx context.Context, system, user string) (string, error) {
	return c.response, nil
}

const stubOutline = `{"title":"Quarterly Review","slides":[` +
	`{"title":"Quarterly Review","content":["An overview"],"type":"title"},` +
	`{"title":"Numbers","content":["Revenue up","Costs down"],"type":"bullets"}]}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testServer(t *testing.T) (*Server, storage.Provider) {
	t.Helper()

	storeDir := t.TempDir()
	store, err := storage.NewFS(storeDir)
	if err != nil {
		t.Fatal(err)
	}

	dbFile, err := os.CreateTemp("", "ansuz-mcp-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := history.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	factory := func(provider string, cfg llm.Config) (llm.Client, error) {
		return &stubClient{response: stubOutline}, nil
	}
	svc := deckservice.New(store, db, nil, testLogger(), 30*time.Second, llm.ProviderOpenAI,
		deckservice.WithClientFactory(factory))

	srv := New(svc)
	return srv, store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we call the
	// tool handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "generate_presentation":
		result, err = srv.generatePresentation(ctx, req)
	case "list_decks":
		result, err = srv.listDecks(ctx, req)
	case "get_history":
		result, err = srv.getHistory(ctx, req)
	case "get_outline_contract":
		result, err = srv.getOutlineContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestGeneratePresentation(t *testing.T) {
	srv, store := testServer(t)

	r := callTool(t, srv, "generate_presentation", map[string]interface{}{
		"content": "Revenue grew twelve percent this quarter.",
		"api_key": "sk-test",
	})
	if r.IsError {
		t.Fatalf("generate failed: %s", resultText(r))
	}
	text := resultText(r)
	if !strings.Contains(text, "Quarterly_Review.pptx") {
		t.Errorf("result = %q, want filename mention", text)
	}
	if !strings.Contains(text, "2 slides") {
		t.Errorf("result = %q, want slide count", text)
	}

	// Deck must be persisted in the store.
	data, err := store.Read("Quarterly_Review.pptx")
	if err != nil {
		t.Fatalf("deck not persisted: %v", err)
	}
	if len(data) == 0 {
		t.Error("persisted deck is empty")
	}
}

func TestGeneratePresentation_MissingContent(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "generate_presentation", map[string]interface{}{
		"api_key": "sk-test",
	})
	if !r.IsError {
		t.Error("expected error when content is missing")
	}
}

func TestListDecks(t *testing.T) {
	srv, store := testServer(t)

	r := callTool(t, srv, "list_decks", map[string]interface{}{})
	if got := resultText(r); got != "the deck store is empty" {
		t.Errorf("empty store result = %q", got)
	}

	_ = store.Write("a.pptx", []byte("a"))
	_ = store.Write("b.pptx", []byte("b"))

	r = callTool(t, srv, "list_decks", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "a.pptx") || !strings.Contains(text, "b.pptx") {
		t.Errorf("list result = %q", text)
	}
}

func TestGetHistory(t *testing.T) {
	srv, _ := testServer(t)
	_ = callTool(t, srv, "generate_presentation", map[string]interface{}{
		"content": "History material.",
		"api_key": "sk-test",
	})

	r := callTool(t, srv, "get_history", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "Quarterly_Review.pptx") {
		t.Errorf("history = %q, want recorded deck", text)
	}
}

func TestGetOutlineContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_outline_contract", map[string]interface{}{})
	if !strings.Contains(resultText(r), `"slides"`) {
		t.Error("contract text missing slides field")
	}
}
