package zsubs

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Sort orders accepted by the API.
const (
	SortAscending  = "A"
	SortDescending = "D"
)

// reservedParams are the query names owned by the QueryParams fields.
var reservedParams = map[string]bool{
	"page":        true,
	"per_page":    true,
	"sort_column": true,
	"sort_order":  true,
	"filter_by":   true,
	"search_text": true,
}

// IsReservedParam reports whether name is set through a QueryParams field
// and is therefore ignored as a filter.
func IsReservedParam(name string) bool {
	return reservedParams[name]
}

// QueryParams represents list query parameters. PathParams fill the
// {<attribute>} placeholders of nested list paths such as
// customers/{customer_id}/cards and are never sent as query values.
type QueryParams struct {
	Page       int
	PerPage    int
	SortColumn string
	SortOrder  string
	FilterBy   string
	SearchText string
	Filters    map[string][]string
	PathParams map[string]string
}

// NewQueryParams creates new query parameters.
func NewQueryParams() *QueryParams {
	return &QueryParams{
		Filters:    make(map[string][]string),
		PathParams: make(map[string]string),
	}
}

// ToValues converts query parameters to URL values.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}

	if q == nil {
		return values
	}

	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}

	if q.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(q.PerPage))
	}

	if q.SortColumn != "" {
		values.Set("sort_column", q.SortColumn)
	}

	if q.SortOrder != "" {
		values.Set("sort_order", q.SortOrder)
	}

	if q.FilterBy != "" {
		values.Set("filter_by", q.FilterBy)
	}

	if q.SearchText != "" {
		values.Set("search_text", q.SearchText)
	}

	for key, vals := range q.Filters {
		if len(vals) > 0 && !reservedParams[key] {
			values.Set(key, strings.Join(vals, ","))
		}
	}

	return values
}

// Clone returns an independent copy.
func (q *QueryParams) Clone() *QueryParams {
	out := NewQueryParams()
	if q == nil {
		return out
	}

	out.Page = q.Page
	out.PerPage = q.PerPage
	out.SortColumn = q.SortColumn
	out.SortOrder = q.SortOrder
	out.FilterBy = q.FilterBy
	out.SearchText = q.SearchText

	for k, v := range q.Filters {
		out.Filters[k] = append([]string(nil), v...)
	}

	for k, v := range q.PathParams {
		out.PathParams[k] = v
	}

	return out
}

// PathParamNames returns the path parameter names in sorted order.
func (q *QueryParams) PathParamNames() []string {
	if q == nil {
		return nil
	}

	names := make([]string, 0, len(q.PathParams))
	for k := range q.PathParams {
		names = append(names, k)
	}

	sort.Strings(names)

	return names
}

// WithPage sets the page number.
func (q *QueryParams) WithPage(page int) *QueryParams {
	q.Page = page

	return q
}

// WithPerPage sets the page size.
func (q *QueryParams) WithPerPage(perPage int) *QueryParams {
	q.PerPage = perPage

	return q
}

// WithSort sets the sort column and order (SortAscending or SortDescending).
func (q *QueryParams) WithSort(column, order string) *QueryParams {
	q.SortColumn = column
	q.SortOrder = order

	return q
}

// WithFilterBy sets the status filter, e.g. "Status.Active".
func (q *QueryParams) WithFilterBy(filter string) *QueryParams {
	q.FilterBy = filter

	return q
}

// WithSearchText sets the free text search.
func (q *QueryParams) WithSearchText(text string) *QueryParams {
	q.SearchText = text

	return q
}

// WithFilter adds values to a filter.
func (q *QueryParams) WithFilter(key string, values ...string) *QueryParams {
	if q.Filters == nil {
		q.Filters = make(map[string][]string)
	}

	q.Filters[key] = append(q.Filters[key], values...)

	return q
}

// WithPathParam sets a path placeholder value.
func (q *QueryParams) WithPathParam(key, value string) *QueryParams {
	if q.PathParams == nil {
		q.PathParams = make(map[string]string)
	}

	q.PathParams[key] = value

	return q
}
