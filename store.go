package lse

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// BackupHistory is K, the maximum number of backups NbtStore.Write
// retains per target file.
const BackupHistory = 5

const backupTimestampLayout = "2006-01-02_15-04-05"

// NbtStore is the file-system layer over a structures root and a
// parallel backups root. All paths it hands back or accepts are
// relative to StructuresRoot; callers never see an absolute path.
type NbtStore struct {
	StructuresRoot string
	BackupsRoot    string
	BackupHistory  int
	Log            *logrus.Entry

	locks *dirLock
}

// NewNbtStore constructs a store rooted at structuresRoot/backupsRoot.
// Both directories are created lazily on first write. backupHistory is
// the K used by pruneBackups; a value <= 0 defaults to the package
// BackupHistory constant.
func NewNbtStore(structuresRoot, backupsRoot string, backupHistory int, log *logrus.Entry) *NbtStore {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if backupHistory <= 0 {
		backupHistory = BackupHistory
	}
	return &NbtStore{
		StructuresRoot: structuresRoot,
		BackupsRoot:    backupsRoot,
		BackupHistory:  backupHistory,
		Log:            log,
		locks:          newDirLock(),
	}
}

// Resolve strips an optional "{namespace}:" prefix, appends ".nbt" if
// absent, and rejects any path containing ".." segments.
func Resolve(name string) (string, error) {
	if idx := strings.Index(name, ":"); idx >= 0 {
		name = name[idx+1:]
	}
	name = filepath.ToSlash(name)
	if !strings.HasSuffix(name, ".nbt") {
		name += ".nbt"
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return "", newErr("resolve", KindPathTraversal, fmt.Errorf("path traversal in %q", name))
		}
	}
	return name, nil
}

func (s *NbtStore) path(name string) string {
	return filepath.Join(s.StructuresRoot, filepath.FromSlash(name))
}

func (s *NbtStore) backupDir(name string) string {
	return filepath.Join(s.BackupsRoot, filepath.FromSlash(filepath.Dir(name)))
}

// Write persists structure under name. If the target already exists
// and skipBackup is false, the current file is renamed into the
// backup directory under a timestamped name first, and the backup
// history is pruned to s.BackupHistory entries. The new content is
// always written to a tempfile in the target directory and atomically
// renamed over the target.
func (s *NbtStore) Write(name string, structure StructureFile, skipBackup bool) error {
	resolved, err := Resolve(name)
	if err != nil {
		return err
	}
	unlock := s.locks.Lock(resolved)
	defer unlock()

	target := s.path(resolved)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return newErr("write", KindIO, err)
	}

	if !skipBackup {
		if _, err := os.Stat(target); err == nil {
			if err := s.backup(resolved, target); err != nil {
				return err
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return newErr("write", KindIO, err)
		}
	}

	tmp := target + "." + uuid.NewString() + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return newErr("write", KindIO, err)
	}
	if err := EncodeStructureFile(f, structure); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return newErr("write", KindIO, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return newErr("write", KindIO, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return newErr("write", KindIO, err)
	}
	s.Log.WithField("name", resolved).Debug("wrote structure piece")
	return nil
}

func (s *NbtStore) backup(resolved, target string) error {
	dir := s.backupDir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return newErr("write", KindIO, err)
	}
	stamp := time.Now().UTC().Format(backupTimestampLayout)
	base := filepath.Base(resolved)
	dest := filepath.Join(dir, base+"."+stamp+".bak")
	if err := os.Rename(target, dest); err != nil {
		return newErr("write", KindIO, err)
	}
	s.Log.WithFields(logrus.Fields{"name": resolved, "backup": dest}).Info("rotated backup")
	return s.pruneBackups(resolved)
}

func (s *NbtStore) pruneBackups(resolved string) error {
	backups, err := s.ListBackups(resolved)
	if err != nil {
		return err
	}
	if len(backups) <= s.BackupHistory {
		return nil
	}
	dir := s.backupDir(resolved)
	for _, old := range backups[s.BackupHistory:] {
		if err := os.Remove(filepath.Join(dir, old)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return newErr("write", KindIO, err)
		}
		s.Log.WithField("backup", old).Debug("pruned old backup")
	}
	return nil
}

// Read reads and decodes the structure stored under name, or fails
// KindNotFound if it does not exist.
func (s *NbtStore) Read(name string) (StructureFile, error) {
	resolved, err := Resolve(name)
	if err != nil {
		return StructureFile{}, err
	}
	f, err := os.Open(s.path(resolved))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return StructureFile{}, newErr("read", KindNotFound, err)
		}
		return StructureFile{}, newErr("read", KindIO, err)
	}
	defer f.Close()
	return DecodeStructureFile(f)
}

// Remove deletes the file stored under name, returning true iff it
// existed and was removed.
func (s *NbtStore) Remove(name string) (bool, error) {
	resolved, err := Resolve(name)
	if err != nil {
		return false, err
	}
	unlock := s.locks.Lock(resolved)
	defer unlock()

	err = os.Remove(s.path(resolved))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, newErr("remove", KindIO, err)
	}
	return true, nil
}

// List returns structure names (relative, without ".nbt", sorted
// lexicographically) under StructuresRoot, optionally filtered to
// those with the given prefix. Backup files (".bak") are excluded.
func (s *NbtStore) List(prefix string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(s.StructuresRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || strings.HasSuffix(p, ".bak") || !strings.HasSuffix(p, ".nbt") {
			return nil
		}
		rel, err := filepath.Rel(s.StructuresRoot, p)
		if err != nil {
			return err
		}
		rel = strings.TrimSuffix(filepath.ToSlash(rel), ".nbt")
		if prefix == "" || strings.HasPrefix(rel, prefix) {
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		return nil, newErr("list", KindIO, err)
	}
	sort.Strings(out)
	return out, nil
}

// ListBackups returns the backup filenames for name, newest first.
func (s *NbtStore) ListBackups(name string) ([]string, error) {
	resolved, err := Resolve(name)
	if err != nil {
		return nil, err
	}
	dir := s.backupDir(resolved)
	base := filepath.Base(resolved)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, newErr("list_backups", KindIO, err)
	}
	var out []string
	prefix := base + "."
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n := e.Name()
		if strings.HasPrefix(n, prefix) && strings.HasSuffix(n, ".bak") {
			out = append(out, n)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out, nil
}

// Restore selects the most recent backup of name (or, if timestamp is
// non-empty, the one whose filename contains it), reads it, and
// writes it to target (defaulting to name) with skipBackup=true.
func (s *NbtStore) Restore(name, target, timestamp string) error {
	resolved, err := Resolve(name)
	if err != nil {
		return err
	}
	backups, err := s.ListBackups(resolved)
	if err != nil {
		return err
	}
	var chosen string
	if timestamp == "" {
		if len(backups) == 0 {
			return newErr("restore", KindNotFound, fmt.Errorf("no backups for %q", name))
		}
		chosen = backups[0]
	} else {
		for _, b := range backups {
			if strings.Contains(b, timestamp) {
				chosen = b
				break
			}
		}
		if chosen == "" {
			return newErr("restore", KindNotFound, fmt.Errorf("no backup of %q matching timestamp %q", name, timestamp))
		}
	}

	dir := s.backupDir(resolved)
	f, err := os.Open(filepath.Join(dir, chosen))
	if err != nil {
		return newErr("restore", KindIO, err)
	}
	defer f.Close()
	structure, err := DecodeStructureFile(f)
	if err != nil {
		return err
	}

	if target == "" {
		target = name
	}
	return s.Write(target, structure, true)
}
