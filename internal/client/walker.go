package client

import (
	"context"
	"fmt"
	nethttp "net/http"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/zsubs-client/internal/constants"
	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
)

// ListAll implements zsubs.Client.ListAll.
//
// Pages are requested from page 1 while the response page context reports
// more pages. Each page goes through the cache first; only successful pages
// are stored. A failing page fails the whole walk and nothing is returned.
func (c *Client) ListAll(ctx context.Context, path, key string, params *zsubs.QueryParams) ([]*zsubs.Map, error) {
	ctx, span := c.startSpan(ctx, "list", attrPath.String(path))

	items, pages, err := c.walk(ctx, path, key, params)

	span.SetAttributes(attrPages.Int(pages), attrItems.Int(len(items)))
	finishSpan(span, err)

	if err != nil {
		return nil, err
	}

	return items, nil
}

func (c *Client) walk(ctx context.Context, path, key string, params *zsubs.QueryParams) ([]*zsubs.Map, int, error) {
	query := params.Clone()

	resolved, err := resolvePath(path, "", nil, query.PathParams)
	if err != nil {
		return nil, 0, err
	}

	var items []*zsubs.Map

	pages := 0

	for page := constants.FirstPage; ; page++ {
		if pages >= c.maxPages {
			return nil, pages, fmt.Errorf("%w: %s has more than %d pages", zsubs.ErrPageLimitExceeded, resolved, c.maxPages)
		}

		query.Page = page

		env, err := c.fetchPage(ctx, resolved, query.ToValues())
		if err != nil {
			return nil, pages, fmt.Errorf("listing %s page %d: %w", resolved, page, err)
		}

		pages++

		items = append(items, env.Items(key)...)

		if !env.PageContext().HasMorePage {
			return items, pages, nil
		}
	}
}

// fetchPage returns one page, from the cache when possible.
func (c *Client) fetchPage(ctx context.Context, path string, query url.Values) (*zsubs.Envelope, error) {
	cacheable := c.policy.ShouldCache(nethttp.MethodGet, path, nethttp.StatusOK)
	cacheKey := c.cache.GetCacheKey(nethttp.MethodGet, path, query)

	if cacheable {
		data, err := c.cache.Get(ctx, cacheKey)
		if err == nil {
			env, parseErr := zsubs.ParseEnvelope(data)
			if parseErr == nil {
				c.logger.Debug("list page served from cache", map[string]interface{}{"key": cacheKey})
				c.setErr(nil)

				return env, nil
			}

			_ = c.cache.Delete(ctx, cacheKey)
		}
	}

	env, body, err := c.request(ctx, nethttp.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}

	if cacheable {
		c.logger.Debug("list page cached", map[string]interface{}{"key": cacheKey})

		err = c.cache.Set(ctx, cacheKey, body, 0)
		if err != nil {
			c.logger.Warn("failed to cache list page", map[string]interface{}{"key": cacheKey, "error": err.Error()})
		}
	}

	return env, nil
}

// invalidateList drops the cached pages of a resolved list path.
func (c *Client) invalidateList(ctx context.Context, listPath string) {
	prefix := c.cache.GetCacheKey(nethttp.MethodGet, listPath, nil)

	removed, err := c.cache.InvalidatePrefix(ctx, prefix)
	if err != nil {
		c.logger.Warn("failed to invalidate cached pages", map[string]interface{}{"prefix": prefix, "error": err.Error()})

		return
	}

	if removed > 0 {
		c.logger.Debug("invalidated cached pages", map[string]interface{}{"prefix": prefix, "count": removed})
	}
}

// invalidateCollection drops the cached pages of the collection a path
// belongs to, e.g. invoices for invoices/123/void.
func (c *Client) invalidateCollection(ctx context.Context, path string) {
	collection, _, _ := strings.Cut(strings.TrimLeft(path, "/"), "/")
	if collection == "" {
		return
	}

	c.invalidateList(ctx, collection)
}
