package agent

import (
	"context"
	"fmt"

	"github.com/cordonlabs/cordon/logging"
	"github.com/cordonlabs/cordon/model"
	"github.com/cordonlabs/cordon/scrape"
	"github.com/cordonlabs/cordon/tool"
)

// SearchFunc answers a web search query with model-readable text.
type SearchFunc func(ctx context.Context, query string) (string, error)

// ResearcherOptions configure a researcher agent.
type ResearcherOptions struct {
	// Scraper fetches pages for the scrape_webpage tool. Nil gets a default.
	Scraper *scrape.Scraper
	// Search backs the search_web tool. When nil the tool reports that no
	// search backend is configured.
	Search        SearchFunc
	MaxRecursions int
	Streaming     bool
	SaveChat      bool
	Logger        logging.Logger
}

const researcherPrompt = `You are {{NAME}}, a research agent.
You gather information from the web to answer questions accurately.

You can use the search_web tool to find relevant pages and the
scrape_webpage tool to read a page's content. Prefer citing what you
actually read over speculation, and include source URLs in your answers.`

// NewResearcherAgent builds a model-backed agent equipped with web research
// tools (search_web, scrape_webpage) and a research-oriented system prompt.
func NewResearcherAgent(name, description string, m model.Model, optFns ...func(o *ResearcherOptions)) *LLMAgent {
	opts := ResearcherOptions{
		Scraper: scrape.New(),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Scraper == nil {
		opts.Scraper = scrape.New()
	}

	scrapeTool := tool.NewFunctionTool(
		"scrape_webpage",
		"Fetch a web page and return its title and readable text content",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"url": map[string]any{
					"type":        "string",
					"description": "Absolute URL of the page to fetch",
				},
			},
			"required": []string{"url"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			url, _ := args["url"].(string)
			page, err := opts.Scraper.Fetch(ctx, url)
			if err != nil {
				return nil, err
			}
			return page, nil
		},
	)

	searchTool := tool.NewFunctionTool(
		"search_web",
		"Search the web and return a summary of relevant results",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Search query",
				},
			},
			"required": []string{"query"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			query, _ := args["query"].(string)
			if opts.Search == nil {
				return fmt.Sprintf(
					"No search backend is configured. If you already know a relevant URL for %q, use scrape_webpage instead.",
					query,
				), nil
			}
			return opts.Search(ctx, query)
		},
	)

	return NewLLMAgent(name, description, m, func(o *LLMAgentOptions) {
		o.SystemPrompt = researcherPrompt
		o.SystemPromptVars = map[string]any{"NAME": name}
		o.Tools = map[string]tool.Tool{
			scrapeTool.Name(): scrapeTool,
			searchTool.Name(): searchTool,
		}
		o.MaxRecursions = opts.MaxRecursions
		o.Streaming = opts.Streaming
		o.SaveChat = opts.SaveChat
		o.Logger = opts.Logger
	})
}
