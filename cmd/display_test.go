package cmd

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestSilentFlagReachesSubcommands(t *testing.T) {
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("silent"))

	for _, c := range []*cobra.Command{crawlCmd, searchCmd, trackCmd} {
		assert.NotNil(t, c.InheritedFlags().Lookup("silent"), c.Name())
	}
}

func TestTruncateIsRuneSafe(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 40))

	long := strings.Repeat("§", 50)
	out := truncate(long, 40)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, strings.Repeat("§", 37)+"...", out)
}

func TestExcerptIsRuneSafe(t *testing.T) {
	assert.Equal(t, "a b collapses", excerpt("a  b\ncollapses", 240))

	long := strings.Repeat("§ 14-72. ", 40)
	out := excerpt(long, 24)
	assert.True(t, utf8.ValidString(out))
	assert.True(t, strings.HasSuffix(out, "..."))
	assert.Equal(t, 27, utf8.RuneCountInString(out))
}
