package client

import (
	"context"
	"net/url"
	"strings"
)

// ExpandPath fills the {owner} and {repo} placeholders of a path template.
// Values are path-escaped. Templates without placeholders are returned as is.
func ExpandPath(template, owner, repository string) string {
	return strings.NewReplacer(
		"{owner}", url.PathEscape(owner),
		"{repo}", url.PathEscape(repository),
	).Replace(template)
}

// FetchOne fetches page 1 of an endpoint and decodes it into T.
// Single resources have no cursor: any "next" link is dropped and the
// envelope's NextPage is always 0.
func FetchOne[T any](ctx context.Context, c *Client, endpoint, owner, repository string) (*Envelope[T], error) {
	env, err := FetchPage[T](ctx, c, endpoint, owner, repository, 1)
	if err != nil {
		return nil, err
	}
	env.NextPage = 0
	return env, nil
}

// FetchPage fetches one given page of an endpoint and decodes it into T.
func FetchPage[T any](ctx context.Context, c *Client, endpoint, owner, repository string, page int) (*Envelope[T], error) {
	return fetchEnvelope[T](ctx, c, ExpandPath(endpoint, owner, repository), owner, repository, page, 0)
}

// FetchNext fetches the page after env, following its cursor.
// It returns ErrNoNextPage when env has none.
func FetchNext[T any](ctx context.Context, c *Client, env *Envelope[T]) (*Envelope[T], error) {
	if env == nil || !env.HasNextPage() {
		return nil, ErrNoNextPage
	}
	return fetchEnvelope[T](ctx, c, env.Endpoint, env.Owner, env.Repository, env.NextPage, 0)
}

func fetchEnvelope[T any](ctx context.Context, c *Client, path, owner, repository string, page, perPage int) (*Envelope[T], error) {
	resp, err := c.Fetch(ctx, path, page, perPage)
	if err != nil {
		return nil, err
	}

	env, decodeErr := newEnvelope[T](resp, strings.TrimPrefix(path, "/"), owner, repository)
	if decodeErr != nil {
		return nil, c.fail(decodeErr)
	}
	return env, nil
}
