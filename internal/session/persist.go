package session

import (
	"encoding/json"
	"os"
	"path/filepath"

	"vidprep/pkg/errors"
)

// SessionFileName is the per-folder session file written into the root folder.
const SessionFileName = ".vidprep_session.json"

// sessionFile is the on-disk shape. Video paths are stored relative to the
// root folder so a moved folder keeps working.
type sessionFile struct {
	Version int            `json:"version"`
	Videos  []*VideoEntry  `json:"videos"`
	Export  ExportSettings `json:"export_config"`
}

const sessionFileVersion = 1

// FilePath returns the session file location for this session's root.
func (s *Session) FilePath() string {
	return filepath.Join(s.RootFolder, SessionFileName)
}

// Save writes the session file atomically (temp file + rename) so an
// interrupted save never truncates a previous good file.
func (s *Session) Save() error {
	file := sessionFile{
		Version: sessionFileVersion,
		Videos:  make([]*VideoEntry, 0, len(s.Videos)),
		Export:  s.Export,
	}
	for _, v := range s.Videos {
		rel, err := filepath.Rel(s.RootFolder, v.Path)
		if err != nil {
			return errors.WrapWithDetail(errors.CodeSessionSaveFailed,
				"cannot relativize video path", v.Path, err)
		}
		clone := *v
		clone.Path = filepath.ToSlash(rel)
		file.Videos = append(file.Videos, &clone)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return errors.Wrap(errors.CodeSessionSaveFailed, "cannot encode session", err)
	}

	target := s.FilePath()
	tmp, err := os.CreateTemp(s.RootFolder, SessionFileName+".tmp-*")
	if err != nil {
		return errors.WrapWithDetail(errors.CodeSessionSaveFailed,
			"cannot create session temp file", s.RootFolder, err)
	}
	tmpName := tmp.Name()
	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(errors.CodeSessionSaveFailed, "cannot write session file", err)
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(errors.CodeSessionSaveFailed, "cannot close session file", err)
	}
	if err = os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return errors.WrapWithDetail(errors.CodeSessionSaveFailed,
			"cannot replace session file", target, err)
	}
	return nil
}

// Load reads the session file from the root folder. A missing file is
// reported with CodeFileNotFound so callers can start fresh; a corrupt file
// is a load failure.
func Load(rootFolder string) (*Session, error) {
	root := filepath.Clean(rootFolder)
	path := filepath.Join(root, SessionFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithDetail(errors.CodeFileNotFound,
				"no session file in folder", path, err)
		}
		return nil, errors.WrapWithDetail(errors.CodeSessionLoadFailed,
			"cannot read session file", path, err)
	}

	var file sessionFile
	if err = json.Unmarshal(data, &file); err != nil {
		return nil, errors.WrapWithDetail(errors.CodeSessionLoadFailed,
			"session file is corrupt", path, err)
	}

	s := New(root)
	s.Export = file.Export
	for _, v := range file.Videos {
		v.Path = filepath.Join(root, filepath.FromSlash(v.Path))
		s.Videos = append(s.Videos, v)
	}
	return s, nil
}
