package assistant

import (
	"context"
	"log"
	"strings"
	"time"

	"secassist/internal/document"
	"secassist/internal/models"
)

const documentSeparator = "--------------------------------------------------"

// ChatResult is the reply plus any requested file ids that were skipped
// because they are unknown (never uploaded, or cleared).
type ChatResult struct {
	Response       string
	MissingFileIDs []string
}

type promptDocument struct {
	Name string
	Text string
}

// Chat answers message using the referenced documents and the conversation
// so far. The exchange is recorded only when the upstream call succeeds.
func (s *Service) Chat(ctx context.Context, message string, fileIDs []string) (*ChatResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	snap := s.store.Snapshot(fileIDs)
	missing := snap.Missing
	docs := make([]promptDocument, 0, len(snap.Files))
	for _, f := range snap.Files {
		ex, err := s.readers.Read(ctx, f.StoredPath)
		if err != nil {
			// usually a clear racing with this request
			log.Printf("read document %s (%s) failed: %v", f.ID, f.FileName, err)
			missing = append(missing, f.ID)
			continue
		}
		docs = append(docs, promptDocument{Name: f.FileName, Text: document.Render(f.FileName, ex)})
	}
	if len(missing) > 0 {
		log.Printf("chat skipped unknown file ids: %v", missing)
	}

	prompt := buildPrompt(docs, message)
	reply, err := s.completer.Complete(ctx, snap.History, prompt)
	if err != nil {
		log.Printf("chat completion failed: %v", err)
		return nil, err
	}

	user := &models.Message{
		Role:      models.RoleUser,
		Content:   message,
		CreatedAt: time.Now(),
	}
	if !s.store.AppendExchange(snap.Epoch, user, reply) {
		log.Printf("session cleared during chat, exchange not recorded")
	}
	return &ChatResult{Response: reply.Content, MissingFileIDs: missing}, nil
}

// buildPrompt places the documents, each under a filename header, ahead of
// the question. Without documents the prompt is the question alone.
func buildPrompt(docs []promptDocument, question string) string {
	if len(docs) == 0 {
		return question
	}
	var b strings.Builder
	b.WriteString("=== UPLOADED DOCUMENTS ===\n\n")
	for _, doc := range docs {
		b.WriteString("Document: ")
		b.WriteString(doc.Name)
		b.WriteString("\n")
		b.WriteString(documentSeparator)
		b.WriteString("\n")
		b.WriteString(doc.Text)
		b.WriteString("\n\n")
	}
	b.WriteString("=== QUESTION ===\n")
	b.WriteString(question)
	return b.String()
}
