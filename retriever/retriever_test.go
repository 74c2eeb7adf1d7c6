package retriever

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordRetriever_RanksByOverlap(t *testing.T) {
	r := NewKeywordRetriever(2)
	r.Add(Document{ID: "1", Content: "The deployment pipeline uses rolling restarts."})
	r.Add(Document{ID: "2", Content: "Database migrations run before each deployment."})
	r.Add(Document{ID: "3", Content: "Holiday schedule for the office."})

	out, err := r.Retrieve(context.Background(), "how does the deployment pipeline work")
	require.NoError(t, err)
	assert.Contains(t, out, "rolling restarts")
	assert.NotContains(t, out, "Holiday schedule")
}

func TestKeywordRetriever_NoMatches(t *testing.T) {
	r := NewKeywordRetriever(3)
	r.Add(Document{ID: "1", Content: "Completely unrelated text."})

	out, err := r.Retrieve(context.Background(), "quantum chromodynamics")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestKeywordRetriever_EmptyQuery(t *testing.T) {
	r := NewKeywordRetriever(3)
	r.Add(Document{ID: "1", Content: "anything"})

	out, err := r.Retrieve(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, out)
}
