package service

import (
	"context"
	"path/filepath"
	"sync"

	"vidprep/internal/session"
	"vidprep/log"
	"vidprep/pkg/errors"

	"go.uber.org/zap"
)

// sessionEntry serializes all mutations of one session. Export workers only
// ever receive job snapshots, so this mutex is the single writer gate.
type sessionEntry struct {
	mu sync.Mutex
	s  *session.Session
}

// OpenFolder loads the folder's session file (or starts a fresh session),
// reconciles it with the folder contents, probes entries that have not been
// probed yet, and saves the result. The returned session is a snapshot;
// mutations go through WithSession. Reopening an already-open folder
// snapshots the live session without a new scan.
func (svc *Service) OpenFolder(ctx context.Context, folder string) (*session.Session, session.ScanReport, error) {
	root := filepath.Clean(folder)

	if entry, ok := svc.sessions.Load(root); ok {
		e := entry.(*sessionEntry)
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.s.Clone(), session.ScanReport{}, nil
	}

	s, err := session.Load(root)
	if err != nil {
		if !errors.Is(err, errors.CodeFileNotFound) {
			return nil, session.ScanReport{}, err
		}
		s = session.New(root)
	}

	files, err := session.ScanFolder(root)
	if err != nil {
		return nil, session.ScanReport{}, err
	}
	report := s.Reconcile(files)

	for _, v := range s.Videos {
		if v.TotalFrames > 0 {
			continue
		}
		info, err := svc.Transcoder.Probe(ctx, v.Path)
		if err != nil {
			log.GetLogger().Warn("Session: probe failed, entry left unprobed",
				zap.String("path", v.Path),
				zap.Error(err))
			continue
		}
		v.TotalFrames = info.TotalFrames
		v.Resolution = info.Resolution()
		v.Fps = info.Fps
	}

	if err = s.Save(); err != nil {
		return nil, session.ScanReport{}, err
	}

	svc.sessions.Store(root, &sessionEntry{s: s})
	log.GetLogger().Info("Session: folder opened",
		zap.String("root", root),
		zap.Int("videos", len(s.Videos)),
		zap.Int("added", len(report.Added)),
		zap.Int("relinked", len(report.Relinked)),
		zap.Int("missing", len(report.Missing)))
	return s.Clone(), report, nil
}

// WithSession runs fn with exclusive access to the folder's session.
func (svc *Service) WithSession(folder string, fn func(*session.Session) error) error {
	entry, ok := svc.sessions.Load(filepath.Clean(folder))
	if !ok {
		return errors.WrapWithDetail(errors.CodeNotFound, "folder is not open", folder, nil)
	}
	e := entry.(*sessionEntry)
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.s)
}

// SaveSession persists the folder's session file.
func (svc *Service) SaveSession(folder string) error {
	return svc.WithSession(folder, func(s *session.Session) error {
		return s.Save()
	})
}

// CloseFolder saves and drops the in-memory session.
func (svc *Service) CloseFolder(folder string) error {
	root := filepath.Clean(folder)
	entry, ok := svc.sessions.Load(root)
	if !ok {
		return nil
	}
	e := entry.(*sessionEntry)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.s.Save(); err != nil {
		return err
	}
	svc.sessions.Delete(root)
	return nil
}
