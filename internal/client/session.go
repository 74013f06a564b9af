package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/abhisek/quizgen/internal/quiz"
)

// SessionKey is the storage key of the saved session.
const SessionKey = "quiz-generator-session"

// ErrNoSession is returned by Storage.Load when nothing is saved.
var ErrNoSession = errors.New("no saved session")

// Session is the locally saved working state.
type Session struct {
	ID           string          `json:"id,omitempty"`
	InputText    string          `json:"inputText"`
	Questions    []quiz.Question `json:"questions"`
	NumQuestions int             `json:"numQuestions"`
	Difficulty   quiz.Difficulty `json:"difficulty"`
	Timestamp    time.Time       `json:"timestamp"`
}

// Storage is a small key/value store for client state.
type Storage interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
	Delete(key string) error
}

// FileStorage keeps each key in <Dir>/<key>.json.
type FileStorage struct {
	Dir string
}

var _ Storage = FileStorage{}

func (f FileStorage) path(key string) string {
	return filepath.Join(f.Dir, key+".json")
}

// Load returns the stored bytes or ErrNoSession.
func (f FileStorage) Load(key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSession
	}
	return data, err
}

// Save writes data atomically.
func (f FileStorage) Save(key string, data []byte) error {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(f.Dir, key+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path(key))
}

// Delete removes key. Deleting a missing key is not an error.
func (f FileStorage) Delete(key string) error {
	err := os.Remove(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func encodeSession(s Session) ([]byte, error) {
	return json.Marshal(s)
}

func decodeSession(data []byte) (Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	return s, nil
}
