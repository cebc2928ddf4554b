// Package assistant turns retrieved context and a user question into a
// grounded, cited answer via the configured chat model.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/surya16122114/immigration-ai-assistant/internal/log"
	"github.com/surya16122114/immigration-ai-assistant/internal/rag"
)

// ErrGeneration reports a failed model call. Malformed model output is not
// an error; it degrades to a fixed apology response instead.
var ErrGeneration = errors.New("assistant: generation failure")

const apologyContent = "I apologize, but I couldn't generate a proper response. Please try rephrasing your question."

const excerptLength = 150

// ChatModel produces a completion for a system prompt and user prompt.
// Defined here, by the consumer; the production implementation wraps
// Genkit, tests substitute a stub.
type ChatModel interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Source is a citation attached to a generated answer.
type Source struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Excerpt string `json:"excerpt"`
}

// Response is a generated answer with its citations. Degraded marks
// responses where the model produced unusable output and the content was
// replaced with an apology.
type Response struct {
	Content  string   `json:"content"`
	Sources  []Source `json:"sources"`
	Degraded bool     `json:"-"`
}

// Generator answers immigration questions grounded in retrieved context.
type Generator struct {
	model  ChatModel
	cache  *Cache
	logger log.Logger
}

// NewGenerator creates a Generator. cache may be nil, which disables
// response caching without changing answer semantics.
func NewGenerator(model ChatModel, cache *Cache, logger log.Logger) *Generator {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Generator{model: model, cache: cache, logger: logger}
}

// Answer generates a response to query grounded in docs. Identical
// query/context pairs within the cache TTL are served from cache without a
// model call. A failed model call returns ErrGeneration; model output that
// is not the expected JSON shape yields the apology response with
// Degraded set and no error.
func (g *Generator) Answer(ctx context.Context, query string, docs []rag.ContextChunk) (Response, error) {
	key := cacheKey(query, docs)
	if g.cache != nil {
		if resp, ok := g.cache.Get(key); ok {
			g.logger.Debug("cache hit", "query_prefix", prefix(query, 50))
			return resp, nil
		}
	}

	raw, err := g.model.Complete(ctx, systemPrompt(docs),
		"Please answer this immigration question: "+query)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	resp := parseModelOutput(raw, docs)
	if resp.Degraded {
		g.logger.Warn("model output unusable, returning degraded response",
			"query_prefix", prefix(query, 50))
	}

	if g.cache != nil {
		g.cache.Put(key, resp)
	}
	return resp, nil
}

// SummarizeDocument produces a concise summary of an immigration document,
// focused on requirements and deadlines relevant to applicants.
func (g *Generator) SummarizeDocument(ctx context.Context, content, documentType string) (string, error) {
	system := fmt.Sprintf("You are an expert at summarizing immigration documents. "+
		"Create a concise summary of the following %s document, focusing on key "+
		"requirements, deadlines, and important information for immigration applicants.",
		documentType)

	summary, err := g.model.Complete(ctx, system, content)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return summary, nil
}

func systemPrompt(docs []rag.ContextChunk) string {
	var b strings.Builder
	b.WriteString(`You are an expert Immigration AI Assistant that provides accurate, up-to-date information on U.S. immigration laws, visa categories, work permits, green cards, citizenship, and policy updates.

CRITICAL INSTRUCTIONS:
- Always cite official government sources (USCIS, Department of State, CBP, consulates)
- Distinguish between general informational guidance vs. legal advice
- Include disclaimer: "I am not a lawyer. This is not legal advice."
- Provide step-by-step instructions when appropriate
- If unsure, recommend consulting a qualified immigration attorney
- Use the provided document context to inform your response
- Always respond in JSON format with 'content' and 'sources' fields

Document Context:
`)
	for _, doc := range docs {
		b.WriteString("Source: ")
		b.WriteString(doc.Source)
		b.WriteString("\nContent: ")
		b.WriteString(doc.Content)
		b.WriteString("\n---\n")
	}
	return b.String()
}

// parseModelOutput extracts the answer content from raw model output.
// Citations always come from the retrieved context rather than the model,
// which keeps them verifiable.
func parseModelOutput(raw string, docs []rag.ContextChunk) Response {
	var parsed struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil || parsed.Content == "" {
		return Response{Content: apologyContent, Sources: []Source{}, Degraded: true}
	}

	sources := make([]Source, 0, len(docs))
	for _, doc := range docs {
		sources = append(sources, Source{
			Title:   doc.Source,
			URL:     doc.URL,
			Excerpt: prefix(doc.Content, excerptLength) + "...",
		})
	}
	return Response{Content: parsed.Content, Sources: sources}
}

// prefix returns at most n bytes of s, backing up so a multi-byte rune is
// never split.
func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
