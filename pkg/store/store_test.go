package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/teslashibe/go-kiosk/pkg/inference"
)

func conversation() []inference.Message {
	return []inference.Message{
		inference.NewSystemMessage("You are Crunchy."),
		inference.NewUserMessage("two zinger burgers please"),
		inference.NewToolCallMessage("", inference.ToolCall{ID: "c1", Name: "add_item_to_cart", Arguments: `{"item_name":"Zinger Burger","quantity":2}`}),
		inference.NewToolMessage("c1", "add_item_to_cart", "name: Zinger Burger\ntotal_quantity: 2\n"),
		inference.NewAssistantMessage("Added two Zinger Burgers. Anything else?"),
		inference.NewUserMessage("   "),
	}
}

func TestTranscript_FiltersToText(t *testing.T) {
	turns := Transcript(conversation())
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %+v", turns)
	}
	if turns[0].Role != "user" || turns[1].Role != "assistant" {
		t.Errorf("unexpected roles %+v", turns)
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "conversations")
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	fixed := time.Date(2026, 10, 16, 14, 5, 9, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	path, err := s.Save("session-1", conversation())
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if filepath.Base(path) != "chat-20261016_140509.json" {
		t.Errorf("unexpected file name %s", filepath.Base(path))
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}

	second, err := s.Save("session-2", conversation())
	if err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	if filepath.Base(second) != "chat-20261016_140509-1.json" {
		t.Errorf("expected a suffixed name for the same second, got %s", filepath.Base(second))
	}

	names, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 files, got %v", names)
	}

	conv, err := s.Load(names[0])
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if conv.ID == "" || conv.SessionID != "session-1" || !conv.SavedAt.Equal(fixed) {
		t.Errorf("unexpected record %+v", conv)
	}
	if len(conv.Messages) != 2 || conv.Messages[1].Content != "Added two Zinger Burgers. Anything else?" {
		t.Errorf("unexpected messages %+v", conv.Messages)
	}
}

func TestStore_SaveEmpty(t *testing.T) {
	s, _ := New(t.TempDir())
	_, err := s.Save("s", []inference.Message{inference.NewSystemMessage("prompt")})
	if !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
	if names, _ := s.List(); len(names) != 0 {
		t.Errorf("expected no files, got %v", names)
	}
}

func TestStore_LoadMissing(t *testing.T) {
	s, _ := New(t.TempDir())
	if _, err := s.Load("chat-19700101_000000.json"); err == nil {
		t.Error("expected error for missing file")
	}
}
