package zsubs

import (
	"fmt"
	"strconv"
)

// Envelope is the JSON object wrapping every API response.
type Envelope struct {
	Code    int
	Message string
	Body    *Map
}

// PageContext is the pagination metadata of list responses.
type PageContext struct {
	Page        int    `json:"page"          yaml:"page"`
	PerPage     int    `json:"per_page"      yaml:"per_page"`
	HasMorePage bool   `json:"has_more_page" yaml:"has_more_page"`
	SortColumn  string `json:"sort_column"   yaml:"sort_column"`
	SortOrder   string `json:"sort_order"    yaml:"sort_order"`
}

// ParseEnvelope decodes a response body. A non-zero code is reported as an
// *APIError together with the parsed envelope.
func ParseEnvelope(data []byte) (*Envelope, error) {
	body, err := ParseMap(data)
	if err != nil {
		return nil, fmt.Errorf("parsing response envelope: %w", err)
	}

	env := &Envelope{
		Body:    body,
		Message: body.String("message"),
	}

	if raw := body.String("code"); raw != "" {
		code, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: envelope code %q", ErrInvalidTree, raw)
		}

		env.Code = code
	}

	if env.Code != ErrorCodeSuccess {
		return env, &APIError{Code: env.Code, Message: env.Message}
	}

	return env, nil
}

// Payload returns the Map stored under key, typically the module name.
func (e *Envelope) Payload(key string) (*Map, bool) {
	if e == nil {
		return nil, false
	}

	m := e.Body.Map(key)

	return m, m != nil
}

// Items returns the Map elements of the list stored under key.
func (e *Envelope) Items(key string) []*Map {
	if e == nil {
		return nil
	}

	list := e.Body.List(key)
	items := make([]*Map, 0, len(list))

	for _, element := range list {
		if m, ok := element.(*Map); ok {
			items = append(items, m)
		}
	}

	return items
}

// PageContext returns the pagination metadata, or a zero value when the
// response is not paginated.
func (e *Envelope) PageContext() PageContext {
	var pc PageContext

	if e == nil {
		return pc
	}

	raw := e.Body.Map("page_context")
	if raw == nil {
		return pc
	}

	pc.Page, _ = strconv.Atoi(raw.String("page"))
	pc.PerPage, _ = strconv.Atoi(raw.String("per_page"))
	pc.HasMorePage = raw.Bool("has_more_page")
	pc.SortColumn = raw.String("sort_column")
	pc.SortOrder = raw.String("sort_order")

	return pc
}
