package document

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRegistryAllowList(t *testing.T) {
	reg, err := NewRegistry(context.Background())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	for _, ext := range []string{".txt", ".md", ".pdf", ".doc", ".docx", ".TXT", "md"} {
		if !reg.Allowed(ext) {
			t.Fatalf("expected %q to be allowed", ext)
		}
	}
	for _, ext := range []string{".exe", ".sh", "", ".html"} {
		if reg.Allowed(ext) {
			t.Fatalf("expected %q to be rejected", ext)
		}
	}
	if got := strings.Join(reg.Extensions(), ","); got != ".doc,.docx,.md,.pdf,.txt" {
		t.Fatalf("unexpected extensions %s", got)
	}
}

func TestRegistryReadsTextFiles(t *testing.T) {
	reg, err := NewRegistry(context.Background())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	path := writeFile(t, "policy.txt", []byte("Encryption required: AES-256\n"))
	ex, err := reg.Read(context.Background(), path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if ex.Unsupported || !strings.Contains(ex.Text, "AES-256") {
		t.Fatalf("unexpected extract: %#v", ex)
	}

	md := writeFile(t, "notes.md", []byte("# Access\nMFA everywhere"))
	ex, err = reg.Read(context.Background(), md)
	if err != nil || !strings.Contains(ex.Text, "MFA everywhere") {
		t.Fatalf("markdown extract mismatch: %#v, %v", ex, err)
	}
}

func TestRegistryInvalidUTF8IsUnsupported(t *testing.T) {
	reg, err := NewRegistry(context.Background())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	path := writeFile(t, "garbage.txt", []byte{0xff, 0xfe, 0x00, 0x81})
	ex, err := reg.Read(context.Background(), path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !ex.Unsupported || ex.Text != "" {
		t.Fatalf("expected unsupported extract, got %#v", ex)
	}
}

func TestRegistryBinaryFormatsAreOpaque(t *testing.T) {
	reg, err := NewRegistry(context.Background())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	for _, name := range []string{"report.pdf", "answers.docx", "legacy.doc"} {
		path := writeFile(t, name, []byte("plain looking bytes"))
		ex, err := reg.Read(context.Background(), path)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !ex.Unsupported {
			t.Fatalf("%s should be unsupported", name)
		}
	}
}

func TestRender(t *testing.T) {
	if got := Render("a.pdf", Extract{Unsupported: true}); got != "[Binary file: a.pdf. Content not readable as text.]" {
		t.Fatalf("unexpected placeholder %q", got)
	}
	if got := Render("a.txt", Extract{Text: "hello"}); got != "hello" {
		t.Fatalf("unexpected text %q", got)
	}
}
