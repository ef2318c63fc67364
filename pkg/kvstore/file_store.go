package kvstore

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the preferences document written inside the app directory.
const DefaultFileName = "preferences.yaml"

// FileStore is a durable store backed by a YAML document scoped to one app.
// Every write rewrites the whole document through a temporary file and an
// atomic rename.
type FileStore struct {
	mu       sync.Mutex
	dir      string
	fileName string
	perm     fs.FileMode
	values   map[string]Value
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithDir places the document in dir instead of the user configuration directory.
func WithDir(dir string) FileOption {
	return func(s *FileStore) {
		if dir != "" {
			s.dir = dir
		}
	}
}

// WithFileName overrides DefaultFileName.
func WithFileName(name string) FileOption {
	return func(s *FileStore) {
		if name != "" {
			s.fileName = name
		}
	}
}

// WithFileMode sets the permissions of the written document.
func WithFileMode(perm fs.FileMode) FileOption {
	return func(s *FileStore) {
		s.perm = perm
	}
}

type fileDocument struct {
	Values map[string]fileValue `yaml:"values"`
}

type fileValue struct {
	Kind   string            `yaml:"kind"`
	String string            `yaml:"string,omitempty"`
	Map    map[string]string `yaml:"map,omitempty"`
	Bytes  string            `yaml:"bytes,omitempty"`
}

// NewFileStore opens the preferences document of appID, creating the app
// directory when needed. Without WithDir the document lives in
// os.UserConfigDir()/<appID>.
func NewFileStore(appID string, opts ...FileOption) (*FileStore, error) {
	if appID == "" {
		return nil, ErrEmptyAppID
	}

	s := &FileStore{
		fileName: DefaultFileName,
		perm:     0o600,
		values:   make(map[string]Value),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, errors.Join(ErrFailedToLoad, err)
		}
		s.dir = filepath.Join(base, appID)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, errors.Join(ErrFailedToLoad, err)
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the location of the preferences document.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, s.fileName)
}

func (s *FileStore) Get(key string) (Value, bool, error) {
	if key == "" {
		return Value{}, false, ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	if !ok {
		return Value{}, false, nil
	}
	return v.clone(), true, nil
}

func (s *FileStore) Set(key string, v Value) error {
	if key == "" {
		return ErrEmptyKey
	}
	if !v.IsValid() {
		return ErrInvalidValue
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.values[key]
	s.values[key] = v.clone()
	if err := s.persist(); err != nil {
		if existed {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

func (s *FileStore) Delete(key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.values[key]
	if !existed {
		return nil
	}
	delete(s.values, key)
	if err := s.persist(); err != nil {
		s.values[key] = prev
		return err
	}
	return nil
}

// Flush rewrites the document with the current in-memory state.
func (s *FileStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist()
}

// Reload discards the in-memory state and reads the document again.
func (s *FileStore) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		s.values = make(map[string]Value)
		return nil
	}
	if err != nil {
		return errors.Join(ErrFailedToLoad, err)
	}

	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return errors.Join(ErrFailedToLoad, ErrCorruptedValue, err)
	}

	values := make(map[string]Value, len(doc.Values))
	for key, fv := range doc.Values {
		v, err := fv.value()
		if err != nil {
			return errors.Join(ErrFailedToLoad, fmt.Errorf("key %q: %w", key, err))
		}
		values[key] = v
	}
	s.values = values
	return nil
}

func (s *FileStore) persist() error {
	doc := fileDocument{Values: make(map[string]fileValue, len(s.values))}
	for key, v := range s.values {
		doc.Values[key] = newFileValue(v)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return errors.Join(ErrFailedToPersist, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+s.fileName+".*")
	if err != nil {
		return errors.Join(ErrFailedToPersist, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Join(ErrFailedToPersist, err)
	}
	if err := tmp.Chmod(s.perm); err != nil {
		_ = tmp.Close()
		return errors.Join(ErrFailedToPersist, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(ErrFailedToPersist, err)
	}
	if err := os.Rename(tmpName, s.Path()); err != nil {
		return errors.Join(ErrFailedToPersist, err)
	}
	return nil
}

func newFileValue(v Value) fileValue {
	fv := fileValue{Kind: v.kind.String()}
	switch v.kind {
	case KindString:
		fv.String = v.str
	case KindMap:
		fv.Map = v.m
	case KindBytes:
		fv.Bytes = base64.StdEncoding.EncodeToString(v.b)
	}
	return fv
}

func (fv fileValue) value() (Value, error) {
	switch fv.Kind {
	case KindString.String():
		return String(fv.String), nil
	case KindMap.String():
		return Map(fv.Map), nil
	case KindBytes.String():
		b, err := base64.StdEncoding.DecodeString(fv.Bytes)
		if err != nil {
			return Value{}, errors.Join(ErrCorruptedValue, err)
		}
		return Bytes(b), nil
	default:
		return Value{}, fmt.Errorf("%w: unknown kind %q", ErrCorruptedValue, fv.Kind)
	}
}
