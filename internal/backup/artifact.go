package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultPrefix is the archive name prefix used when none is configured.
const DefaultPrefix = "backup"

// timestampLayout gives second granularity: one distinct name per cycle for
// any interval of a second or more.
const timestampLayout = "20060102_150405"

const suffix = ".tar.gz"

// Artifact describes one archive found in the output directory.
type Artifact struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// ArtifactName returns "<prefix>_<YYYYMMDD_HHMMSS>.tar.gz" for t.
func ArtifactName(prefix string, t time.Time) string {
	return prefix + "_" + t.Format(timestampLayout) + suffix
}

// ParseArtifactName extracts the timestamp from an archive file name.
// Foreign files, including collision-suffixed names, report ok=false on the
// timestamp portion only when it does not parse.
func ParseArtifactName(prefix, name string) (time.Time, bool) {
	if !strings.HasPrefix(name, prefix+"_") || !strings.HasSuffix(name, suffix) {
		return time.Time{}, false
	}

	core := strings.TrimSuffix(strings.TrimPrefix(name, prefix+"_"), suffix)

	// Drop a collision counter ("_2", "_3", ...) if present.
	if i := strings.LastIndexByte(core, '_'); i > len(timestampLayout)-1 {
		core = core[:i]
	}

	t, err := time.ParseInLocation(timestampLayout, core, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Scan lists the archives already present in dir, newest first.
func Scan(dir, prefix string) ([]Artifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading output directory: %w", err)
	}

	var artifacts []Artifact
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}

		ts, ok := ParseArtifactName(prefix, ent.Name())
		if !ok {
			continue
		}

		info, err := ent.Info()
		if err != nil {
			continue
		}

		artifacts = append(artifacts, Artifact{
			Path:      filepath.Join(dir, ent.Name()),
			Timestamp: ts,
			Size:      info.Size(),
		})
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Timestamp.After(artifacts[j].Timestamp)
	})

	return artifacts, nil
}
