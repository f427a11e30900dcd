package client

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
)

// resolvePath fills the placeholders of a definition path. {id} takes id;
// {<name>} takes the attribute of that name, then the matching entry of
// params. Values are path-escaped.
func resolvePath(pattern, id string, attrs *zsubs.Map, params map[string]string) (string, error) {
	var (
		builder strings.Builder
		rest    = pattern
	)

	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			builder.WriteString(rest)

			return builder.String(), nil
		}

		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			return "", fmt.Errorf("%w: unterminated placeholder in %q", zsubs.ErrMissingPathParam, pattern)
		}

		name := rest[start+1 : start+end]

		value := placeholderValue(name, id, attrs, params)
		if value == "" {
			return "", fmt.Errorf("%w: {%s} in %q", zsubs.ErrMissingPathParam, name, pattern)
		}

		builder.WriteString(rest[:start])
		builder.WriteString(url.PathEscape(value))
		rest = rest[start+end+1:]
	}
}

func placeholderValue(name, id string, attrs *zsubs.Map, params map[string]string) string {
	if name == "id" {
		return id
	}

	if value := attrs.String(name); value != "" {
		return value
	}

	return params[name]
}

// placeholders returns the attribute names referenced by pattern, {id}
// excluded.
func placeholders(pattern string) []string {
	var names []string

	rest := pattern

	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			return names
		}

		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			return names
		}

		if name := rest[start+1 : start+end]; name != "id" {
			names = append(names, name)
		}

		rest = rest[start+end+1:]
	}
}
