package csvio

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cobmax/batimento/internal/domain/dataset"
	"go.uber.org/zap"
)

// Resolution controls how a glob with several matches is handled.
type Resolution string

const (
	// ResolutionStrict requires exactly one match. This is the default: a
	// stale leftover file silently winning on mtime is a latent correctness
	// bug.
	ResolutionStrict Resolution = "strict"
	// ResolutionLatest picks the most recent match by mtime, kept for
	// clients whose drop directory accumulates deliveries. Shadowed
	// candidates are logged.
	ResolutionLatest Resolution = "latest"
)

// IsValid reports whether the resolution mode is supported.
func (r Resolution) IsValid() bool {
	switch r {
	case ResolutionStrict, ResolutionLatest, "":
		return true
	}
	return false
}

// Resolve expands a path or glob to the single input file to load.
func Resolve(pattern string, mode Resolution, log *zap.Logger) (string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("%w: bad input pattern %q: %v", dataset.ErrConfiguration, pattern, err)
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: no input file matches %q; run the extraction step first [%s]",
			dataset.ErrExtraction, pattern, ErrCodeNoCandidate)
	case 1:
		return matches[0], nil
	}

	if mode != ResolutionLatest {
		sort.Strings(matches)
		return "", fmt.Errorf("%w: %d input files match %q (%v); remove the extras or set resolution: latest [%s]",
			dataset.ErrConfiguration, len(matches), pattern, matches, ErrCodeManyCandidates)
	}

	latest := matches[0]
	latestInfo, err := os.Stat(latest)
	if err != nil {
		return "", fmt.Errorf("%w: cannot stat %q: %v", dataset.ErrExtraction, latest, err)
	}
	for _, m := range matches[1:] {
		info, err := os.Stat(m)
		if err != nil {
			return "", fmt.Errorf("%w: cannot stat %q: %v", dataset.ErrExtraction, m, err)
		}
		if info.ModTime().After(latestInfo.ModTime()) {
			latest, latestInfo = m, info
		}
	}
	if log != nil {
		for _, m := range matches {
			if m != latest {
				log.Warn("input candidate shadowed by a newer file",
					zap.String("shadowed", m),
					zap.String("selected", latest))
			}
		}
	}
	return latest, nil
}
