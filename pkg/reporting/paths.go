package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultOutputDir returns {root}/{SYMBOL}_{interval}
func DefaultOutputDir(root, symbol, interval string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	i := strings.ToLower(strings.TrimSpace(interval))
	if s == "" {
		s = "UNKNOWN"
	}
	if i == "" {
		i = "unknown"
	}
	if root == "" {
		root = "results"
	}
	return filepath.Join(root, fmt.Sprintf("%s_%s", s, i))
}

// EnsureParentDir creates the directory that will hold path
func EnsureParentDir(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		return os.MkdirAll(dir, 0o755)
	}
	return nil
}
