// Copyright © 2026 Releasekit

// Package eventlog persists one immutable JSON record per promotion,
// rollback or undo attempt. Records are never overwritten or mutated.
package eventlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/segmentio/ksuid"
	"github.com/spf13/afero"

	"github.com/releasekit/releasectl/pkg/model"
)

// Logger appends event records to a directory, one file per event.
type Logger struct {
	fsys afero.Fs
	dir  string
}

// New builds a logger writing into dir.
func New(fsys afero.Fs, dir string) *Logger {
	return &Logger{fsys: fsys, dir: dir}
}

// Record writes ev as a new uniquely named file and returns its path.
// File names carry the outcome, the event timestamp and a sortable unique
// suffix, so concurrent attempts in the same second cannot collide.
func (l *Logger) Record(ev model.PromotionEvent) (string, error) {
	if err := l.fsys.MkdirAll(l.dir, 0755); err != nil {
		return "", fmt.Errorf("event dir %q: %w", l.dir, err)
	}

	name := fmt.Sprintf("promote_%s_%s_%s.json",
		strings.ToLower(string(ev.Result)),
		model.Timestamp(ev.Time),
		ksuid.New().String(),
	)
	pth := filepath.Join(l.dir, name)

	data, err := json.MarshalIndent(ev, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding event: %w", err)
	}
	data = append(data, '\n')

	f, err := l.fsys.OpenFile(pth, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("event file %q: %w", pth, err)
	}
	_, werr := f.Write(data)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return "", fmt.Errorf("writing event %q: %w", pth, werr)
	}
	return pth, nil
}

// List returns the recorded events sorted by event time. Missing event
// directory yields an empty list.
func (l *Logger) List() ([]model.PromotionEvent, error) {
	infos, err := afero.ReadDir(l.fsys, l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, fi := range infos {
		if !fi.IsDir() && strings.HasPrefix(fi.Name(), "promote_") && strings.HasSuffix(fi.Name(), ".json") {
			names = append(names, fi.Name())
		}
	}
	sort.Strings(names)

	events := make([]model.PromotionEvent, 0, len(names))
	for _, name := range names {
		data, err := afero.ReadFile(l.fsys, filepath.Join(l.dir, name))
		if err != nil {
			return nil, err
		}
		var ev model.PromotionEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("event %q: %w", name, err)
		}
		events = append(events, ev)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time.Before(events[j].Time)
	})
	return events, nil
}
