// Package store dumps finished conversations to JSON files.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-kiosk/pkg/inference"
)

// ErrEmpty is returned when a conversation has no user or assistant text.
var ErrEmpty = errors.New("store: conversation has no turns")

// Turn is one saved message.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation is one saved session.
type Conversation struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	SavedAt   time.Time `json:"saved_at"`
	Messages  []Turn    `json:"messages"`
}

// Store writes conversations as chat-YYYYMMDD_HHMMSS.json under a directory.
type Store struct {
	dir string
	mu  sync.Mutex

	// now is replaced in tests.
	now func() time.Time
}

// New creates the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	return &Store{dir: dir, now: time.Now}, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string { return s.dir }

// Transcript keeps user and assistant messages that carry text. System
// prompts, tool results and tool-call-only completions are dropped.
func Transcript(messages []inference.Message) []Turn {
	turns := make([]Turn, 0, len(messages))
	for _, m := range messages {
		if m.Role != inference.RoleUser && m.Role != inference.RoleAssistant {
			continue
		}
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		turns = append(turns, Turn{Role: string(m.Role), Content: m.Content})
	}
	return turns
}

// Save writes the transcript of messages and returns the file path.
func (s *Store) Save(sessionID string, messages []inference.Message) (string, error) {
	turns := Transcript(messages)
	if len(turns) == 0 {
		return "", ErrEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	conv := Conversation{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		SavedAt:   now.UTC(),
		Messages:  turns,
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return "", fmt.Errorf("store: marshal: %w", err)
	}

	path := s.freePath(now)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return "", fmt.Errorf("store: write: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("store: rename: %w", err)
	}
	return path, nil
}

// freePath returns an unused file name for t.
func (s *Store) freePath(t time.Time) string {
	base := "chat-" + t.Format("20060102_150405")
	path := filepath.Join(s.dir, base+".json")
	for i := 1; ; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
		path = filepath.Join(s.dir, fmt.Sprintf("%s-%d.json", base, i))
	}
}

// List returns saved file names, oldest first.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "chat-") || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Load reads a saved conversation by file name.
func (s *Store) Load(name string) (*Conversation, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil {
		return nil, fmt.Errorf("store: read: %w", err)
	}
	var conv Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("store: parse: %w", err)
	}
	return &conv, nil
}
