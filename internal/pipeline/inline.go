package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
)

// DefaultInlineEndpoint is the remote service that rewrites stylesheet rules
// into inline style attributes.
const DefaultInlineEndpoint = "https://templates.mailchimp.com/services/inline-css/"

// maxInlineResponseSize bounds how much of the service response is read.
const maxInlineResponseSize = 10 << 20

// maxErrorDetailLength bounds the response body quoted in an InlineError.
const maxErrorDetailLength = 512

// Inliner pushes stylesheet rules into inline style attributes.
type Inliner interface {
	Inline(ctx context.Context, markup, css string) (string, error)
}

// InlineError reports a non-success response from the inline service.
type InlineError struct {
	StatusCode int
	Body       string
}

func (e *InlineError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%v: status %d", ErrInlineService, e.StatusCode)
	}
	return fmt.Sprintf("%v: status %d: %s", ErrInlineService, e.StatusCode, e.Body)
}

// Unwrap makes errors.Is(err, ErrInlineService) hold.
func (e *InlineError) Unwrap() error {
	return ErrInlineService
}

// HTTPInliner submits markup to the remote inline service.
type HTTPInliner struct {
	endpoint string
	client   *http.Client
}

// NewHTTPInliner creates an inliner posting to endpoint. An empty endpoint
// selects DefaultInlineEndpoint; a nil client selects a pooled client.
func NewHTTPInliner(endpoint string, client *http.Client) *HTTPInliner {
	if endpoint == "" {
		endpoint = DefaultInlineEndpoint
	}
	if client == nil {
		client = cleanhttp.DefaultPooledClient()
	}
	return &HTTPInliner{endpoint: endpoint, client: client}
}

// Endpoint returns the service URL.
func (h *HTTPInliner) Endpoint() string {
	return h.endpoint
}

// Inline sends markup, led by a style block holding css, to the service and
// returns the inlined markup. Any non-2xx response is an *InlineError.
func (h *HTTPInliner) Inline(ctx context.Context, markup, css string) (string, error) {
	form := url.Values{"html": {ComposeInlineInput(markup, css)}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: building request: %v", ErrInlineService, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInlineService, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxInlineResponseSize))
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %w", ErrInlineService, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &InlineError{StatusCode: resp.StatusCode, Body: errorDetail(body)}
	}

	return string(body), nil
}

// HeadFragment wraps css in a <style> tag for embedding in a document head.
// Returns "" when css is empty.
func HeadFragment(css string) template.HTML {
	if css == "" {
		return ""
	}
	return template.HTML("<style>" + sanitizeCSS(css) + "</style>") // #nosec G203 -- compiled stylesheet, sanitized
}

// ComposeInlineInput leads markup with the style block for css. The block is
// not repeated when markup already embeds it, which happens when a component
// placed Props.Head in its own head.
func ComposeInlineInput(markup, css string) string {
	fragment := string(HeadFragment(css))
	if fragment == "" || strings.Contains(markup, fragment) {
		return markup
	}
	return fragment + markup
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// errorDetail extracts a readable message from an error response body.
// JSON bodies with an "error" or "message" field lead with that field; the
// raw body follows in parentheses when it carries more than the field.
func errorDetail(body []byte) string {
	detail := strings.TrimSpace(string(body))
	if len(detail) > maxErrorDetailLength {
		detail = detail[:maxErrorDetailLength] + "..."
	}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return detail
	}

	field := payload.Error
	if field == "" {
		field = payload.Message
	}
	if field == "" {
		return detail
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err == nil && len(fields) == 1 {
		return field
	}
	return field + " (" + detail + ")"
}
