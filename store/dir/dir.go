// Package dir implements the filesystem archive layout: one v<major>.<minor>.yaml
// document per accepted schema version plus an ascending "versions" index
// file. The schema files are the source of truth; the index is rewritten on
// every append for external consumers that only want the enumeration.
package dir

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	templateguard "github.com/templateguard/templateguard"
	yamlsrc "github.com/templateguard/templateguard/source/yaml"
)

const indexFile = "versions"

// Store is a filesystem-backed Archive rooted at one directory. Appends are
// serialized per Store; across processes the exclusive create of the version
// file decides the winner of a duplicate submission.
type Store struct {
	root string
	mu   sync.Mutex
}

// New returns a Store rooted at dir. The directory is created lazily on the
// first append.
func New(root string) *Store { return &Store{root: root} }

func (s *Store) schemaPath(v templateguard.Version) string {
	return filepath.Join(s.root, "v"+v.String()+".yaml")
}

// Versions enumerates archived versions in ascending order by scanning the
// v*.yaml files. A missing directory is an empty archive.
func (s *Store) Versions(ctx context.Context) ([]templateguard.Version, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read archive dir %s", s.root)
	}
	var out []templateguard.Version
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "v") || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		v, err := templateguard.ParseVersion(strings.TrimSuffix(strings.TrimPrefix(name, "v"), ".yaml"))
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out, nil
}

// Latest returns the highest archived version.
func (s *Store) Latest(ctx context.Context) (*templateguard.Schema, error) {
	vs, err := s.Versions(ctx)
	if err != nil {
		return nil, err
	}
	if len(vs) == 0 {
		return nil, templateguard.ErrEmptyArchive
	}
	return s.Get(ctx, vs[len(vs)-1])
}

// Get loads the schema document archived under v.
func (s *Store) Get(ctx context.Context, v templateguard.Version) (*templateguard.Schema, error) {
	raw, err := yamlsrc.DecodeFile(s.schemaPath(v))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, templateguard.ErrUnknownVersion
		}
		return nil, errors.Wrapf(err, "failed to read archived schema v%s", v)
	}
	return templateguard.Load(raw)
}

// Append archives a new schema version. The version file is created with
// O_EXCL so two concurrent writers of the same version cannot both succeed;
// the loser observes ErrDuplicateVersion.
func (s *Store) Append(ctx context.Context, schema *templateguard.Schema) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create archive dir %s", s.root)
	}
	data, err := yamlsrc.Encode(schema.Raw())
	if err != nil {
		return errors.Wrapf(err, "failed to encode schema v%s", schema.Version)
	}

	path := s.schemaPath(schema.Version)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return templateguard.ErrDuplicateVersion
		}
		return errors.Wrapf(err, "failed to create %s", path)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return errors.Wrapf(err, "failed to write %s", path)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return errors.Wrapf(err, "failed to close %s", path)
	}

	return s.writeIndex(ctx)
}

// writeIndex rewrites the ascending version index atomically (tmp + rename).
func (s *Store) writeIndex(ctx context.Context) error {
	vs, err := s.Versions(ctx)
	if err != nil {
		return err
	}
	lines := make([]string, 0, len(vs))
	for _, v := range vs {
		lines = append(lines, v.String())
	}
	path := filepath.Join(s.root, indexFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "failed to rename %s", tmp)
	}
	return nil
}
