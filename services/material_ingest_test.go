package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitIntoSectionsGroupsPages(t *testing.T) {
	pages := []string{
		strings.Repeat("a", 30),
		strings.Repeat("b", 30),
		strings.Repeat("c", 30),
	}

	sections := SplitIntoSections(pages, 50)
	require.Len(t, sections, 2)

	assert.Equal(t, 1, sections[0].PageStart)
	assert.Equal(t, 2, sections[0].PageEnd)
	assert.Contains(t, sections[0].Text, strings.Repeat("a", 30))
	assert.Contains(t, sections[0].Text, strings.Repeat("b", 30))

	assert.Equal(t, 3, sections[1].PageStart)
	assert.Equal(t, 3, sections[1].PageEnd)
}

func TestSplitIntoSectionsSkipsEmptyPages(t *testing.T) {
	pages := []string{"", "  \n ", "content here"}

	sections := SplitIntoSections(pages, 100)
	require.Len(t, sections, 1)
	assert.Equal(t, "content here", sections[0].Text)
	assert.Equal(t, 3, sections[0].PageStart)
	assert.Equal(t, 3, sections[0].PageEnd)
}

func TestSplitIntoSectionsEmptyInput(t *testing.T) {
	assert.Empty(t, SplitIntoSections(nil, 100))
	assert.Empty(t, SplitIntoSections([]string{"", ""}, 100))
}

func TestSplitIntoSectionsNeverSplitsAPage(t *testing.T) {
	long := strings.Repeat("x", 500)
	sections := SplitIntoSections([]string{long}, 50)
	require.Len(t, sections, 1)
	assert.Equal(t, long, sections[0].Text)
}
