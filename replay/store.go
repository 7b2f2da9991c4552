package replay

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/beka-birhanu/janggi-game-server/game"
	"github.com/pkg/errors"
)

const filePrefix = "replay_"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// FileStore writes finished games as notation files, one token per line.
type FileStore struct {
	dir string
	now func() time.Time
}

// NewFileStore creates dir when missing and returns a store writing into it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating replay directory %s", dir)
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

// Dir returns the directory replays are written to.
func (s *FileStore) Dir() string { return s.dir }

// Save writes notation to <dir>/replay_<title>_<unixMillis>.txt and returns
// the path. An existing file is never overwritten.
func (s *FileStore) Save(roomTitle string, notation []string) (string, error) {
	base := fmt.Sprintf("%s%s_%d", filePrefix, sanitize(roomTitle), s.now().UnixMilli())
	var body strings.Builder
	for _, token := range notation {
		body.WriteString(token)
		body.WriteByte('\n')
	}

	for n := 0; ; n++ {
		name := base + ".txt"
		if n > 0 {
			name = fmt.Sprintf("%s_%d.txt", base, n)
		}
		path := filepath.Join(s.dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", errors.Wrap(err, "creating replay file")
		}
		if _, err := f.WriteString(body.String()); err != nil {
			_ = f.Close()
			return "", errors.Wrapf(err, "writing replay %s", path)
		}
		if err := f.Close(); err != nil {
			return "", errors.Wrapf(err, "closing replay %s", path)
		}
		return path, nil
	}
}

// List returns the replay files in the store, oldest name first.
func (s *FileStore) List() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, filePrefix+"*.txt"))
	if err != nil {
		return nil, errors.Wrap(err, "listing replays")
	}
	return matches, nil
}

// Load reads a replay file. Blank lines are skipped and every other line
// must be a well-formed notation token.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening replay %s", path)
	}
	defer f.Close()

	var tokens []string
	sc := bufio.NewScanner(f)
	for n := 1; sc.Scan(); n++ {
		token := strings.TrimSpace(sc.Text())
		if token == "" {
			continue
		}
		if _, err := game.Decode(token); err != nil {
			return nil, errors.Wrapf(err, "%s line %d", path, n)
		}
		tokens = append(tokens, token)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading replay %s", path)
	}
	return tokens, nil
}

func sanitize(title string) string {
	s := strings.Trim(unsafeChars.ReplaceAllString(title, "_"), "_")
	if s == "" {
		return "room"
	}
	return s
}
