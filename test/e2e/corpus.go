// Package e2e exercises the full search stack against a generated vault.
package e2e

import (
	"context"
	"fmt"

	"github.com/loupe-search/loupe/internal/embedding"
	"github.com/loupe-search/loupe/internal/models"
	"github.com/loupe-search/loupe/internal/storage"
)

// VaultChunk is one embedded span of a corpus note.
type VaultChunk struct {
	Heading string
	Text    string
}

// VaultNote is a note entry in the generated corpus.
type VaultNote struct {
	Path     string
	Title    string
	Folder   string
	Status   string
	Priority string
	Due      string
	Tags     []string
	Chunks   []VaultChunk
}

// QueryCase defines a search and the note path(s) that must appear in the
// results. Queries reuse a chunk's exact text, so the mock embedder places the
// owning note at distance zero and it must surface first among survivors.
type QueryCase struct {
	Description   string
	Query         string
	Filter        string
	Folder        string
	ExpectedPaths []string
}

// Corpus holds generated notes and query cases for end-to-end tests.
type Corpus struct {
	Notes        []VaultNote
	Cases        []QueryCase
	TotalNotes   int
	TotalQueries int
}

// noteTopics are the vault note templates the corpus cycles through. Every
// generated note gets a unique entry suffix so chunk texts never collide.
var noteTopics = []struct {
	slug     string
	title    string
	folder   string
	status   string
	priority string
	due      string
	tags     []string
	body     string
	extra    string
	heading  string
}{
	{
		"launch-plan", "Launch Plan", "projects/alpha", "active", "1", "2026-03-15",
		[]string{"planning", "launch"},
		"launch checklist covering rollout steps and owner assignments",
		"rollback procedure and monitoring dashboards for launch week",
		"Rollback",
	},
	{
		"sprint-retro", "Sprint Retrospective", "projects/alpha", "done", "3", "2026-01-20",
		[]string{"process"},
		"sprint retrospective notes on what went well and what to change",
		"action items carried over into the next sprint planning session",
		"Action Items",
	},
	{
		"beta-budget", "Beta Budget", "projects/beta", "active", "2", "2026-04-01",
		[]string{"finance"},
		"quarterly budget breakdown for the beta program and vendor costs",
		"open questions for the finance review meeting next month",
		"Open Questions",
	},
	{
		"hiring-notes", "Hiring Notes", "projects/beta", "blocked", "1", "2026-02-28",
		[]string{"hiring"},
		"interview loop feedback and candidate pipeline status",
		"offer letter template and compensation band references",
		"Templates",
	},
	{
		"reading-list", "Reading List", "reference", "", "", "",
		[]string{"books"},
		"books to read on distributed systems and database internals",
		"papers bookmarked from the systems reading group",
		"Papers",
	},
	{
		"ops-runbook", "Ops Runbook", "reference/ops", "active", "2", "2026-05-10",
		[]string{"ops", "runbook"},
		"incident response runbook with escalation contacts and dashboards",
		"postmortem template and severity classification guide",
		"Postmortems",
	},
	{
		"daily-journal", "Daily Journal", "journal/2026", "", "", "",
		nil,
		"morning journal entry about focus blocks and meeting fatigue",
		"evening reflection on the day and tomorrow's top priority",
		"Evening",
	},
	{
		"old-migration", "Old Migration", "archive", "done", "4", "2025-11-30",
		[]string{"ops"},
		"database migration plan from the completed postgres upgrade",
		"lessons learned from the migration cutover weekend",
		"Lessons",
	},
}

// BuildCorpus returns a corpus of 96 notes cycling through the topic
// templates, plus query cases asserting retrieval and filter behavior.
func BuildCorpus() *Corpus {
	notes := buildNotes(96)
	cases := buildQueryCases(notes)
	return &Corpus{
		Notes:        notes,
		Cases:        cases,
		TotalNotes:   len(notes),
		TotalQueries: len(cases),
	}
}

func buildNotes(n int) []VaultNote {
	notes := make([]VaultNote, 0, n)
	for i := 0; i < n; i++ {
		topic := noteTopics[i%len(noteTopics)]
		path := fmt.Sprintf("%s/%s-%03d.md", topic.folder, topic.slug, i)
		notes = append(notes, VaultNote{
			Path:     path,
			Title:    fmt.Sprintf("%s %03d", topic.title, i),
			Folder:   topic.folder,
			Status:   topic.status,
			Priority: topic.priority,
			Due:      topic.due,
			Tags:     topic.tags,
			Chunks: []VaultChunk{
				{Text: fmt.Sprintf("%s entry %03d", topic.body, i)},
				{Heading: topic.heading, Text: fmt.Sprintf("%s entry %03d", topic.extra, i)},
			},
		})
	}
	return notes
}

// buildQueryCases derives cases from the generated notes. The first cycle of
// topics gets a plain exact-text query each; a handful of targeted cases layer
// folder scoping and metadata filters on top.
func buildQueryCases(notes []VaultNote) []QueryCase {
	cases := make([]QueryCase, 0, len(noteTopics)+6)
	for i := 0; i < len(noteTopics) && i < len(notes); i++ {
		note := notes[i]
		cases = append(cases, QueryCase{
			Description:   fmt.Sprintf("exact chunk text finds %s", note.Path),
			Query:         note.Chunks[0].Text,
			ExpectedPaths: []string{note.Path},
		})
	}

	launch := notes[0]    // launch-plan: active, priority 1, tags planning+launch
	retro := notes[1]     // sprint-retro: done
	reading := notes[4]   // reading-list: tags books, no status
	runbook := notes[5]   // ops-runbook: folder reference/ops
	migration := notes[7] // old-migration: done, archive folder

	cases = append(cases,
		QueryCase{
			Description:   "status and priority filter keeps the matching note",
			Query:         launch.Chunks[0].Text,
			Filter:        "status='active' AND priority<=2",
			ExpectedPaths: []string{launch.Path},
		},
		QueryCase{
			Description:   "tags HAS finds the tagged note",
			Query:         reading.Chunks[0].Text,
			Filter:        "tags HAS 'books'",
			ExpectedPaths: []string{reading.Path},
		},
		QueryCase{
			Description:   "done filter keeps completed notes",
			Query:         retro.Chunks[0].Text,
			Filter:        "status='done'",
			ExpectedPaths: []string{retro.Path},
		},
		QueryCase{
			Description:   "folder prefix scopes to the ops reference tree",
			Query:         runbook.Chunks[0].Text,
			Folder:        "reference/ops",
			ExpectedPaths: []string{runbook.Path},
		},
		QueryCase{
			Description:   "archive folder with done filter",
			Query:         migration.Chunks[0].Text,
			Filter:        "status='done'",
			Folder:        "archive",
			ExpectedPaths: []string{migration.Path},
		},
		QueryCase{
			Description:   "second chunk text finds the note through its heading chunk",
			Query:         launch.Chunks[1].Text,
			ExpectedPaths: []string{launch.Path},
		},
	)
	return cases
}

// Seed writes the corpus into store, embedding every chunk text with embedder.
// Chunk IDs are left blank so the store assigns them.
func (c *Corpus) Seed(ctx context.Context, store storage.Store, embedder embedding.Embedder) error {
	for _, note := range c.Notes {
		n := &models.Note{
			Path:     note.Path,
			Title:    note.Title,
			Folder:   note.Folder,
			Status:   note.Status,
			Priority: note.Priority,
			Due:      note.Due,
			Tags:     note.Tags,
		}
		if err := store.CreateNote(ctx, n); err != nil {
			return fmt.Errorf("seed note %s: %w", note.Path, err)
		}

		chunks := make([]*models.Chunk, 0, len(note.Chunks))
		for _, ch := range note.Chunks {
			vec, err := embedder.Embed(ctx, ch.Text)
			if err != nil {
				return fmt.Errorf("embed chunk of %s: %w", note.Path, err)
			}
			chunks = append(chunks, &models.Chunk{
				Path:      note.Path,
				Heading:   ch.Heading,
				Text:      ch.Text,
				Embedding: vec,
			})
		}
		if err := store.BatchCreateChunks(ctx, chunks); err != nil {
			return fmt.Errorf("seed chunks of %s: %w", note.Path, err)
		}
	}
	return nil
}
