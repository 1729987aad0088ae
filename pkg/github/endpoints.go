// Package github declares the GitHub resources the client can read: endpoint
// templates, typed records and one function per resource.
package github

import (
	"context"
	"fmt"
	"sort"

	"github.com/Sternrassler/github-api-client/pkg/client"
)

// Endpoint is a request path template with {owner} and {repo} placeholders.
type Endpoint string

const (
	TagsEndpoint         Endpoint = "repos/{owner}/{repo}/tags"
	ReleasesEndpoint     Endpoint = "repos/{owner}/{repo}/releases"
	PullRequestsEndpoint Endpoint = "repos/{owner}/{repo}/pulls"
	LicenseEndpoint      Endpoint = "repos/{owner}/{repo}/license"
	RateLimitEndpoint    Endpoint = "rate_limit"
)

// endpoints maps resource names to their templates.
var endpoints = map[string]Endpoint{
	"tags":       TagsEndpoint,
	"releases":   ReleasesEndpoint,
	"pulls":      PullRequestsEndpoint,
	"license":    LicenseEndpoint,
	"rate-limit": RateLimitEndpoint,
}

// Expand fills in owner and repository.
func (e Endpoint) Expand(owner, repository string) string {
	return client.ExpandPath(string(e), owner, repository)
}

func (e Endpoint) String() string {
	return string(e)
}

// Lookup returns the endpoint registered under name. Unknown names yield an
// Unimplemented error.
func Lookup(name string) (Endpoint, error) {
	e, ok := endpoints[name]
	if !ok {
		return "", Unimplemented(name)
	}
	return e, nil
}

// Names returns the registered resource names in sorted order.
func Names() []string {
	names := make([]string, 0, len(endpoints))
	for name := range endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unimplemented returns the error for a resource the client does not support.
func Unimplemented(name string) error {
	return &client.APIError{
		Kind:     client.KindUnimplemented,
		Endpoint: name,
		Err:      client.ErrUnimplemented,
	}
}

// Tags returns a paginator over the tags of a repository.
func Tags(c *client.Client, owner, repository string) *client.Paginator[Tag] {
	return client.Paginate[Tag](c, string(TagsEndpoint), owner, repository)
}

// TagsPage fetches one page of tags.
func TagsPage(ctx context.Context, c *client.Client, owner, repository string, page int) (*client.Envelope[[]Tag], error) {
	return client.FetchPage[[]Tag](ctx, c, string(TagsEndpoint), owner, repository, page)
}

// Releases returns a paginator over the releases of a repository.
func Releases(c *client.Client, owner, repository string) *client.Paginator[Release] {
	return client.Paginate[Release](c, string(ReleasesEndpoint), owner, repository)
}

// ReleasesPage fetches one page of releases.
func ReleasesPage(ctx context.Context, c *client.Client, owner, repository string, page int) (*client.Envelope[[]Release], error) {
	return client.FetchPage[[]Release](ctx, c, string(ReleasesEndpoint), owner, repository, page)
}

// PullRequests returns a paginator over the open pull requests of a repository.
func PullRequests(c *client.Client, owner, repository string) *client.Paginator[PullRequest] {
	return client.Paginate[PullRequest](c, string(PullRequestsEndpoint), owner, repository)
}

// PullRequestsPage fetches one page of pull requests.
func PullRequestsPage(ctx context.Context, c *client.Client, owner, repository string, page int) (*client.Envelope[[]PullRequest], error) {
	return client.FetchPage[[]PullRequest](ctx, c, string(PullRequestsEndpoint), owner, repository, page)
}

// RepositoryLicense fetches the license file of a repository.
func RepositoryLicense(ctx context.Context, c *client.Client, owner, repository string) (*client.Envelope[License], error) {
	return client.FetchOne[License](ctx, c, string(LicenseEndpoint), owner, repository)
}

// RateLimit fetches the quota status of the authenticated user.
func RateLimit(ctx context.Context, c *client.Client) (*client.Envelope[RateLimitResponse], error) {
	return client.FetchOne[RateLimitResponse](ctx, c, string(RateLimitEndpoint), "", "")
}

// Collection names one of the collections ReleasesOrTags can choose.
type Collection string

const (
	CollectionReleases Collection = "releases"
	CollectionTags     Collection = "tags"
)

// ReleasesOrTags reports which collection describes the versions of a
// repository: releases when it has any, tags otherwise. It costs one request.
func ReleasesOrTags(ctx context.Context, c *client.Client, owner, repository string) (Collection, error) {
	ok, err := Releases(c, owner, repository).HasItems(ctx)
	if err != nil {
		return "", fmt.Errorf("probe releases of %s/%s: %w", owner, repository, err)
	}
	if ok {
		return CollectionReleases, nil
	}
	return CollectionTags, nil
}
