package client

import (
	"context"
	"iter"
)

// Paginator walks a collection endpoint page by page, following the "next"
// cursor of each response. It is owned by one goroutine.
//
// Usage:
//
//	p := client.Paginate[github.Tag](c, "repos/{owner}/{repo}/tags", "octo", "hello")
//	for p.Next(ctx) {
//		for _, tag := range p.Page().Payload {
//			...
//		}
//	}
//	if err := p.Err(); err != nil {
//		...
//	}
type Paginator[T any] struct {
	client     *Client
	endpoint   string
	owner      string
	repository string

	nextPage int
	done     bool
	err      error
	yielded  bool
	page     *Envelope[[]T]
}

// Paginate creates a paginator for the endpoint template, starting at page 1.
func Paginate[T any](c *Client, endpoint, owner, repository string) *Paginator[T] {
	return &Paginator[T]{
		client:     c,
		endpoint:   ExpandPath(endpoint, owner, repository),
		owner:      owner,
		repository: repository,
		nextPage:   1,
	}
}

// Next fetches the next page. It returns false when the collection is
// exhausted or a request failed; Err tells the two apart. Once Next has
// returned false it keeps returning false without I/O.
func (p *Paginator[T]) Next(ctx context.Context) bool {
	if p.done {
		return false
	}

	current := p.nextPage
	env, err := fetchEnvelope[[]T](ctx, p.client, p.endpoint, p.owner, p.repository, current, 0)
	if err != nil {
		p.err = err
		p.page = nil
		p.finish()
		return false
	}

	pagesTotal.WithLabelValues(routeOf(p.endpoint)).Inc()
	p.page = env

	switch {
	case !env.HasNextPage():
		p.finish()
	case env.NextPage <= current:
		p.client.logger.Debug().
			Str("endpoint", p.endpoint).
			Int("page", current).
			Int("next_page", env.NextPage).
			Msg("Next link does not advance, stopping pagination")
		p.finish()
	default:
		p.nextPage = env.NextPage
	}
	return true
}

func (p *Paginator[T]) finish() {
	p.done = true
	p.nextPage = 0
}

// Page returns the page fetched by the last successful Next.
func (p *Paginator[T]) Page() *Envelope[[]T] {
	return p.page
}

// Err returns the failure that stopped the paginator, or nil.
func (p *Paginator[T]) Err() error {
	return p.err
}

// Cursor returns the page the next call to Next will request, 0 when done.
func (p *Paginator[T]) Cursor() int {
	return p.nextPage
}

// Done reports whether the paginator reached its terminal state.
func (p *Paginator[T]) Done() bool {
	return p.done
}

// All returns an iterator over the remaining pages. A failure is yielded as
// the last element, once per paginator: ranging again over a failed
// paginator yields nothing. Err still reports it.
func (p *Paginator[T]) All(ctx context.Context) iter.Seq2[*Envelope[[]T], error] {
	return func(yield func(*Envelope[[]T], error) bool) {
		for p.Next(ctx) {
			if !yield(p.page, nil) {
				return
			}
		}
		if p.err != nil && !p.yielded {
			p.yielded = true
			yield(nil, p.err)
		}
	}
}

// HasItems requests page 1 with a page size of one and reports whether the
// collection is non-empty. The cursor is left untouched.
func (p *Paginator[T]) HasItems(ctx context.Context) (bool, error) {
	env, err := fetchEnvelope[[]T](ctx, p.client, p.endpoint, p.owner, p.repository, 1, 1)
	if err != nil {
		return false, err
	}
	return len(env.Payload) > 0, nil
}
