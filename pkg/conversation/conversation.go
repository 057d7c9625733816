// Package conversation is the client side of the append-only message store.
// The core never manages storage itself; it only loads and appends through
// the Store interface. A JSONL file store is bundled as the default
// implementation.
package conversation

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Message is one chat turn. Messages are immutable once created and ordered
// by occurrence.
type Message struct {
	Role        string    `json:"role"` // "user" or "assistant"
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	HasCode     bool      `json:"hasCode"`
	Suggestions []string  `json:"suggestions,omitempty"`
}

// NewUserMessage builds a user turn stamped now.
func NewUserMessage(content string) Message {
	return Message{Role: "user", Content: content, Timestamp: time.Now()}
}

// NewAssistantMessage builds an assistant turn stamped now.
func NewAssistantMessage(content string, hasCode bool, suggestions []string) Message {
	return Message{
		Role:        "assistant",
		Content:     content,
		Timestamp:   time.Now(),
		HasCode:     hasCode,
		Suggestions: suggestions,
	}
}

// Store is the persistence collaborator: an append-only message log keyed by
// conversation ID.
type Store interface {
	Load(conversationID string) ([]Message, error)
	Append(conversationID string, msg Message) error
}

// FileStore keeps one JSONL file per conversation under a base directory,
// by default .pagewright/conversations/.
type FileStore struct {
	baseDir string
}

// NewFileStore returns a store rooted at baseDir. The directory is created
// lazily on the first append.
func NewFileStore(baseDir string) *FileStore {
	return &FileStore{baseDir: baseDir}
}

// Load reads every message of a conversation, oldest first. A conversation
// that was never written to is empty, not an error. Lines that fail to
// decode are skipped so one corrupt record cannot take the history down.
func (s *FileStore) Load(conversationID string) ([]Message, error) {
	path, err := s.pathFor(conversationID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open conversation %s: %w", conversationID, err)
	}
	defer file.Close()

	var messages []Message
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var msg Message
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	if err := scanner.Err(); err != nil {
		return messages, fmt.Errorf("failed to read conversation %s: %w", conversationID, err)
	}
	return messages, nil
}

// Append writes one message to the end of the conversation log.
func (s *FileStore) Append(conversationID string, msg Message) error {
	path, err := s.pathFor(conversationID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create conversation directory: %w", err)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open conversation %s: %w", conversationID, err)
	}
	defer file.Close()

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// pathFor maps a conversation ID onto its log file, rejecting IDs that would
// escape the base directory.
func (s *FileStore) pathFor(conversationID string) (string, error) {
	id := strings.TrimSpace(conversationID)
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", fmt.Errorf("invalid conversation id %q", conversationID)
	}
	return filepath.Join(s.baseDir, id+".jsonl"), nil
}

// MemoryStore keeps conversations in memory. Used by tests and one-shot
// commands that have no persistence needs.
type MemoryStore struct {
	conversations map[string][]Message
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{conversations: make(map[string][]Message)}
}

// Load returns the stored messages for a conversation.
func (s *MemoryStore) Load(conversationID string) ([]Message, error) {
	return append([]Message(nil), s.conversations[conversationID]...), nil
}

// Append adds a message to a conversation.
func (s *MemoryStore) Append(conversationID string, msg Message) error {
	s.conversations[conversationID] = append(s.conversations[conversationID], msg)
	return nil
}
