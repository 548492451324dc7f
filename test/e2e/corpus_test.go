package e2e

import (
	"strings"
	"testing"
)

func TestBuildCorpus_NoteCount(t *testing.T) {
	c := BuildCorpus()
	if c.TotalNotes != 96 || len(c.Notes) != 96 {
		t.Errorf("expected 96 notes, got total=%d len=%d", c.TotalNotes, len(c.Notes))
	}
}

func TestBuildCorpus_PathsUnique(t *testing.T) {
	c := BuildCorpus()
	seen := make(map[string]bool, len(c.Notes))
	for _, n := range c.Notes {
		if seen[n.Path] {
			t.Errorf("duplicate note path %q", n.Path)
		}
		seen[n.Path] = true
	}
}

func TestBuildCorpus_ChunkTextsUnique(t *testing.T) {
	c := BuildCorpus()
	seen := make(map[string]string)
	for _, n := range c.Notes {
		for _, ch := range n.Chunks {
			if owner, dup := seen[ch.Text]; dup {
				t.Errorf("chunk text shared by %s and %s", owner, n.Path)
			}
			seen[ch.Text] = n.Path
		}
	}
}

func TestBuildCorpus_QueryCasesResolve(t *testing.T) {
	c := BuildCorpus()
	if c.TotalQueries == 0 {
		t.Fatal("expected query cases")
	}
	byPath := make(map[string]VaultNote, len(c.Notes))
	for _, n := range c.Notes {
		byPath[n.Path] = n
	}
	for i, tc := range c.Cases {
		if tc.Query == "" {
			t.Errorf("case %d: empty query", i)
		}
		if len(tc.ExpectedPaths) == 0 {
			t.Errorf("case %d: no expected paths", i)
			continue
		}
		for _, p := range tc.ExpectedPaths {
			note, ok := byPath[p]
			if !ok {
				t.Errorf("case %d: expected path %q not in corpus", i, p)
				continue
			}
			if !noteContainsText(note, tc.Query) {
				t.Errorf("case %d: note %q does not contain query text %q", i, p, tc.Query)
			}
			if tc.Folder != "" && !strings.HasPrefix(note.Folder, tc.Folder) {
				t.Errorf("case %d: note %q folder %q outside scope %q", i, p, note.Folder, tc.Folder)
			}
		}
	}
}

func noteContainsText(n VaultNote, text string) bool {
	for _, ch := range n.Chunks {
		if ch.Text == text {
			return true
		}
	}
	return false
}
