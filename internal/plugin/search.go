package plugin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// questionWords open commands the search plugin claims.
var questionWords = []string{
	"who", "what", "when", "where", "why", "how",
	"is", "are", "was", "were", "does", "did", "can",
}

// Provider answers a search query with a short plaintext result.
type Provider interface {
	ShortAnswer(ctx context.Context, query string) (string, error)
}

// HTTPProvider queries a short-answers API over HTTP. The query is
// passed as the "i" parameter and the body is the plaintext answer.
type HTTPProvider struct {
	endpoint string
	appID    string
	client   *http.Client
}

// NewHTTPProvider creates a provider for the given endpoint. appID is
// passed as the "appid" parameter when non-empty.
func NewHTTPProvider(endpoint, appID string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProvider{
		endpoint: endpoint,
		appID:    appID,
		client:   &http.Client{Timeout: timeout},
	}
}

// ShortAnswer fetches the answer for a query.
func (p *HTTPProvider) ShortAnswer(ctx context.Context, query string) (string, error) {
	params := url.Values{"i": {query}}
	if p.appID != "" {
		params.Set("appid", p.appID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search provider: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", err
	}
	answer := strings.TrimSpace(string(body))
	if answer == "" {
		return "", fmt.Errorf("search provider: empty answer")
	}
	return answer, nil
}

// SearchPlugin answers questions through a Provider.
type SearchPlugin struct {
	provider Provider
}

// NewSearchPlugin creates the plugin.
func NewSearchPlugin(provider Provider) *SearchPlugin {
	return &SearchPlugin{provider: provider}
}

func (p *SearchPlugin) Name() string { return "search" }

// Matches claims commands opening with a question word or the word
// "search".
func (p *SearchPlugin) Matches(text string) bool {
	first, _, _ := strings.Cut(text, " ")
	first = strings.TrimSuffix(first, "?")
	if first == "search" {
		return true
	}
	for _, word := range questionWords {
		if first == word {
			return true
		}
	}
	return false
}

// Run queries the provider, stripping a leading "search" keyword.
func (p *SearchPlugin) Run(ctx context.Context, req *Request) (string, error) {
	query := strings.TrimSpace(req.Text)
	if rest, ok := strings.CutPrefix(strings.ToLower(query), "search "); ok {
		query = strings.TrimSpace(query[len(query)-len(rest):])
	}
	return p.provider.ShortAnswer(ctx, query)
}

// HelpPlugin is the terminal fallback: it always matches nothing and
// answers with usage guidance.
type HelpPlugin struct {
	names func() []string
}

// NewHelpPlugin creates the plugin. names supplies the registered
// plugin names for the usage text.
func NewHelpPlugin(names func() []string) *HelpPlugin {
	return &HelpPlugin{names: names}
}

func (p *HelpPlugin) Name() string { return "help" }

// Matches claims only explicit help requests; the dispatcher reaches
// the plugin as a fallback otherwise.
func (p *HelpPlugin) Matches(text string) bool {
	return text == "help" || strings.HasPrefix(text, "help ")
}

func (p *HelpPlugin) Run(ctx context.Context, req *Request) (string, error) {
	var b strings.Builder
	b.WriteString("I didn't catch that. Try asking a question, or one of: ")
	b.WriteString(strings.Join(p.names(), ", "))
	return b.String(), nil
}
