// Package retriever defines the optional knowledge retrieval hook that agents
// use to augment their system prompt with request-relevant context.
package retriever

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Retriever fetches context relevant to a query. The returned string is
// appended verbatim to an agent's system prompt, so implementations should
// produce model-readable text, not raw records.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (string, error)
}

// Document is a unit of retrievable knowledge.
type Document struct {
	ID      string
	Content string
}

// KeywordRetriever is a small in-memory retriever that scores documents by
// keyword overlap with the query. It is meant for tests, examples and small
// curated knowledge bases; plug in a vector store behind the Retriever
// interface for anything larger.
type KeywordRetriever struct {
	mu   sync.RWMutex
	docs []Document
	topK int
}

// NewKeywordRetriever creates a retriever returning at most topK documents
// per query. A topK of zero or less defaults to 3.
func NewKeywordRetriever(topK int) *KeywordRetriever {
	if topK <= 0 {
		topK = 3
	}
	return &KeywordRetriever{topK: topK}
}

// Add indexes a document.
func (r *KeywordRetriever) Add(doc Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, doc)
}

// Retrieve implements Retriever. Documents sharing no terms with the query
// are excluded; an empty result yields an empty string and no error.
func (r *KeywordRetriever) Retrieve(_ context.Context, query string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	terms := tokenize(query)
	if len(terms) == 0 {
		return "", nil
	}

	type scored struct {
		doc   Document
		score int
	}

	var matches []scored
	for _, doc := range r.docs {
		score := overlap(terms, tokenize(doc.Content))
		if score > 0 {
			matches = append(matches, scored{doc: doc, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })

	if len(matches) > r.topK {
		matches = matches[:r.topK]
	}

	var sb strings.Builder
	for i, m := range matches {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(m.doc.Content)
	}
	return sb.String(), nil
}

func tokenize(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, f := range strings.Fields(strings.ToLower(s)) {
		f = strings.Trim(f, ".,;:!?\"'()")
		if len(f) > 2 {
			out[f] = struct{}{}
		}
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	n := 0
	for term := range a {
		if _, ok := b[term]; ok {
			n++
		}
	}
	return n
}
