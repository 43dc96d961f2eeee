package deckservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/history"
	"github.com/starford/ansuz/internal/llm"
	"github.com/starford/ansuz/internal/sse"
	"github.com/starford/ansuz/internal/storage"
)

const stubOutline = `{"title":"Staff Update","slides":[` +
	`{"title":"Staff Update","content":["hello"],"type":"title"},` +
	`{"title":"Changes","content":["one","two"],"type":"bullets"}]}`

type stubClient struct {
	response string
	err      error
	delay    time.Duration
}

func (c *stubClient) Complete(ctx context.Context, system, user string) (string, error) {
	if c.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.delay):
		}
	}
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

func testService(t *testing.T, client llm.Client, broker *sse.Broker, timeout time.Duration) (*Service, storage.Provider, *history.DB) {
	t.Helper()

	storeDir := t.TempDir()
	store, err := storage.NewFS(storeDir)
	if err != nil {
		t.Fatal(err)
	}

	dbFile, err := os.CreateTemp("", "ansuz-svc-test-*.db")
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

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	factory := func(provider string, cfg llm.Config) (llm.Client, error) {
		return client, nil
	}
	svc := New(store, db, broker, logger, timeout, llm.ProviderOpenAI,
		WithClientFactory(factory))
	return svc, store, db
}

func TestGenerate(t *testing.T) {
	svc, store, db := testService(t, &stubClient{response: stubOutline}, nil, 30*time.Second)

	result, err := svc.Generate(context.Background(), Request{
		Content: "material",
		APIKey:  "sk-test",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Filename != "Staff_Update.pptx" {
		t.Errorf("filename = %q", result.Filename)
	}
	if result.SlideCount != 2 {
		t.Errorf("slides = %d", result.SlideCount)
	}
	if result.Provider != "openai" {
		t.Errorf("provider = %q, want default", result.Provider)
	}
	if len(result.Deck) == 0 || result.Checksum == "" {
		t.Error("missing deck bytes or checksum")
	}

	// Save was not requested: nothing persisted, nothing recorded.
	if metas, _ := store.List(); len(metas) != 0 {
		t.Error("deck persisted without save")
	}
	if _, total, _ := db.List(10, 0); total != 0 {
		t.Error("history recorded without save")
	}
}

func TestGenerate_Save(t *testing.T) {
	svc, store, db := testService(t, &stubClient{response: stubOutline}, nil, 30*time.Second)

	result, err := svc.Generate(context.Background(), Request{
		Content: "material",
		APIKey:  "sk-test",
		Save:    true,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	data, err := store.Read(result.Filename)
	if err != nil {
		t.Fatalf("deck not in store: %v", err)
	}
	if len(data) != len(result.Deck) {
		t.Error("stored bytes differ from result")
	}

	rec, err := db.Get(result.Filename)
	if err != nil {
		t.Fatalf("history row missing: %v", err)
	}
	if rec.Checksum != result.Checksum {
		t.Error("recorded checksum mismatch")
	}
}

func TestGenerate_StageEvents(t *testing.T) {
	broker := sse.NewBroker(time.Second)
	defer broker.Close()
	ch := broker.Subscribe()
	defer broker.Unsubscribe(ch)

	svc, _, _ := testService(t, &stubClient{response: stubOutline}, broker, 30*time.Second)
	if _, err := svc.Generate(context.Background(), Request{Content: "m", APIKey: "k"}); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	want := map[string]bool{
		"generation.analyzing": false,
		"generation.drafting":  false,
		"generation.rendering": false,
		"generation.complete":  false,
	}
	deadline := time.After(2 * time.Second)
	for {
		missing := false
		for _, seen := range want {
			if !seen {
				missing = true
			}
		}
		if !missing {
			return
		}
		select {
		case msg := <-ch:
			for stage := range want {
				if strings.Contains(string(msg), "event: "+stage) {
					want[stage] = true
				}
			}
		case <-deadline:
			t.Fatalf("missing stage events: %+v", want)
		}
	}
}

func TestGenerate_Timeout(t *testing.T) {
	svc, _, _ := testService(t, &stubClient{delay: time.Second}, nil, 50*time.Millisecond)

	_, err := svc.Generate(context.Background(), Request{Content: "m", APIKey: "k"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestGenerate_MalformedOutline(t *testing.T) {
	svc, _, _ := testService(t, &stubClient{response: "just prose, no json"}, nil, 30*time.Second)

	_, err := svc.Generate(context.Background(), Request{Content: "m", APIKey: "k"})
	if !errors.Is(err, apperr.ErrMalformedOutline) {
		t.Errorf("err = %v, want malformed outline", err)
	}
}

func TestReadDeck_RejectsNonDeckPaths(t *testing.T) {
	svc, store, _ := testService(t, &stubClient{response: stubOutline}, nil, time.Second)
	_ = store.Write("x.pptx", []byte("bytes"))

	if _, err := svc.ReadDeck("x.pptx"); err != nil {
		t.Errorf("ReadDeck: %v", err)
	}
	if _, err := svc.ReadDeck("x.txt"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("non-deck path err = %v, want ErrNotFound", err)
	}
	if _, err := svc.ReadDeck("missing.pptx"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing deck err = %v, want ErrNotFound", err)
	}
}

func TestDeleteDeck(t *testing.T) {
	svc, store, db := testService(t, &stubClient{response: stubOutline}, nil, time.Second)
	_ = store.Write("x.pptx", []byte("bytes"))

	if err := svc.DeleteDeck("x.pptx"); err != nil {
		t.Fatalf("DeleteDeck: %v", err)
	}
	if err := svc.DeleteDeck("x.pptx"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
	if _, total, _ := db.List(10, 0); total != 0 {
		t.Error("history should have no rows")
	}
}
