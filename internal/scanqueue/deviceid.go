package scanqueue

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const userAgentMaxLen = 64

// LoadOrCreateDeviceID returns the device identifier persisted at path,
// creating and storing one on first use. The id is an FNV-1a hash of a
// truncated agent string and the current time: a best-effort heuristic
// identifier, stable per install, never a uniqueness guarantee.
func LoadOrCreateDeviceID(path, agent string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("device id path is required")
	}

	if b, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(b)); id != "" {
			return id, nil
		}
	}

	id := deriveDeviceID(agent, time.Now())

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}
	return id, nil
}

func deriveDeviceID(agent string, now time.Time) string {
	if len(agent) > userAgentMaxLen {
		agent = agent[:userAgentMaxLen]
	}
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%d", agent, now.UnixNano())
	return fmt.Sprintf("dev-%016x", h.Sum64())
}
