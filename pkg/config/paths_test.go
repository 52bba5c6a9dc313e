package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetDefaultConfigPath(t *testing.T) {
	path := GetDefaultConfigPath()

	assert.Equal(t, "config.yaml", filepath.Base(path))
	assert.Contains(t, path, "lexscout")
}

func TestGetCrawlCacheDir(t *testing.T) {
	dir := GetCrawlCacheDir()

	assert.Equal(t, "crawl", filepath.Base(dir))
	assert.Contains(t, dir, "lexscout")
}
