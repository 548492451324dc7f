package e2e

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/loupe-search/loupe/internal/config"
	"github.com/loupe-search/loupe/internal/embedding"
	"github.com/loupe-search/loupe/internal/models"
	"github.com/loupe-search/loupe/internal/search"
	"github.com/loupe-search/loupe/internal/storage"
)

const (
	e2eSearchLimit = 10
	e2eDimensions  = 32
)

// buildVault seeds a fresh vault with the corpus and reopens it read-only,
// the way the CLI sees it.
func buildVault(t *testing.T, corpus *Corpus) (*storage.SQLiteStore, *embedding.MockEmbedder) {
	t.Helper()
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "vault.db")

	writer, err := storage.CreateVault(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	emb := embedding.NewMockEmbedder(e2eDimensions)
	if err := corpus.Seed(ctx, writer, emb); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}

	store, err := storage.OpenVault(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store, emb
}

func e2eConfig() *config.SearchConfig {
	return &config.SearchConfig{DefaultLimit: 5, OverfetchFactor: 3, SnippetLength: 300}
}

func containsAny(got []string, expected []string) bool {
	for _, g := range got {
		for _, e := range expected {
			if g == e {
				return true
			}
		}
	}
	return false
}

func resultPaths(resp *models.SearchResponse) []string {
	paths := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		paths = append(paths, r.Path)
	}
	return paths
}

func TestE2E_QueryCases(t *testing.T) {
	corpus := BuildCorpus()
	store, emb := buildVault(t, corpus)
	retriever := search.NewRetriever(store, emb, e2eConfig())
	ctx := context.Background()

	t.Logf("seeded %d notes; running %d query cases", corpus.TotalNotes, corpus.TotalQueries)

	for _, tc := range corpus.Cases {
		t.Run(tc.Description, func(t *testing.T) {
			resp, err := retriever.Search(ctx, &models.SearchQuery{
				Query:  tc.Query,
				Limit:  e2eSearchLimit,
				Filter: tc.Filter,
				Folder: tc.Folder,
			})
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			if len(resp.Results) == 0 {
				t.Fatalf("query %q returned no results", tc.Query)
			}
			got := resultPaths(resp)
			if !containsAny(got, tc.ExpectedPaths) {
				t.Errorf("query %q: expected one of %v in results, got %v", tc.Query, tc.ExpectedPaths, got)
			}
			// The query is a chunk's exact text, so the owning note sits at
			// distance zero and must come first.
			if resp.Results[0].Path != tc.ExpectedPaths[0] {
				t.Errorf("query %q: expected %s first, got %s (distance %v)",
					tc.Query, tc.ExpectedPaths[0], resp.Results[0].Path, resp.Results[0].Distance)
			}
		})
	}
}

func TestE2E_FiltersOnlyNarrow(t *testing.T) {
	corpus := BuildCorpus()
	store, emb := buildVault(t, corpus)
	retriever := search.NewRetriever(store, emb, e2eConfig())
	ctx := context.Background()

	query := corpus.Notes[2].Chunks[0].Text
	unfiltered, err := retriever.Search(ctx, &models.SearchQuery{Query: query, Limit: 20})
	if err != nil {
		t.Fatal(err)
	}
	filtered, err := retriever.Search(ctx, &models.SearchQuery{
		Query: query, Limit: 20, Filter: "status='active'",
	})
	if err != nil {
		t.Fatal(err)
	}

	if filtered.Count > unfiltered.Count {
		t.Errorf("filter increased result count: %d > %d", filtered.Count, unfiltered.Count)
	}
	for _, r := range filtered.Results {
		if r.Status != "active" {
			t.Errorf("result %s leaked through status filter with status %q", r.Path, r.Status)
		}
	}
}

func TestE2E_FolderScopingHolds(t *testing.T) {
	corpus := BuildCorpus()
	store, emb := buildVault(t, corpus)
	retriever := search.NewRetriever(store, emb, e2eConfig())

	resp, err := retriever.Search(context.Background(), &models.SearchQuery{
		Query: corpus.Notes[0].Chunks[0].Text, Limit: 20, Folder: "projects",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) == 0 {
		t.Fatal("expected results under projects/")
	}
	for _, r := range resp.Results {
		if !strings.HasPrefix(r.Folder, "projects") {
			t.Errorf("result %s outside folder scope: folder %q", r.Path, r.Folder)
		}
	}
}

func TestE2E_DistancesAscend(t *testing.T) {
	corpus := BuildCorpus()
	store, emb := buildVault(t, corpus)
	retriever := search.NewRetriever(store, emb, e2eConfig())

	resp, err := retriever.Search(context.Background(), &models.SearchQuery{
		Query: "planning documents and meeting notes", Limit: 20,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 20 {
		t.Fatalf("expected a full page of 20 results, got %d", len(resp.Results))
	}
	for i := 1; i < len(resp.Results); i++ {
		if resp.Results[i].Distance < resp.Results[i-1].Distance {
			t.Errorf("distances not ascending at %d: %v then %v",
				i, resp.Results[i-1].Distance, resp.Results[i].Distance)
		}
	}
}

func TestE2E_LimitBeyondIndexReturnsEverything(t *testing.T) {
	corpus := BuildCorpus()
	store, emb := buildVault(t, corpus)
	retriever := search.NewRetriever(store, emb, e2eConfig())

	resp, err := retriever.Search(context.Background(), &models.SearchQuery{
		Query: "anything at all", Limit: 10000,
	})
	if err != nil {
		t.Fatal(err)
	}
	wantChunks := corpus.TotalNotes * 2
	if resp.Count != wantChunks {
		t.Errorf("expected every chunk (%d) with an oversized limit, got %d", wantChunks, resp.Count)
	}
}

func TestE2E_MetadataJoinedOntoResults(t *testing.T) {
	corpus := BuildCorpus()
	store, emb := buildVault(t, corpus)
	retriever := search.NewRetriever(store, emb, e2eConfig())

	launch := corpus.Notes[0]
	resp, err := retriever.Search(context.Background(), &models.SearchQuery{
		Query: launch.Chunks[0].Text, Limit: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("expected exactly one result, got %d", len(resp.Results))
	}
	got := resp.Results[0]
	if got.Title != launch.Title || got.Status != launch.Status || got.Due != launch.Due {
		t.Errorf("metadata mismatch: got %+v, want note %+v", got, launch)
	}
	if len(got.Tags) != len(launch.Tags) {
		t.Errorf("tags mismatch: got %v, want %v", got.Tags, launch.Tags)
	}
}
