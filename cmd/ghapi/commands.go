package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Sternrassler/github-api-client/pkg/client"
	"github.com/Sternrassler/github-api-client/pkg/github"
	"github.com/spf13/cobra"
)

// walk prints every item of the collection as one JSON line.
// maxPages <= 0 means all pages.
func walk[T any](ctx context.Context, a *app, p *client.Paginator[T], maxPages int) error {
	enc := json.NewEncoder(a.out)

	pages, items := 0, 0
	for env, err := range p.All(ctx) {
		if err != nil {
			return err
		}
		for _, item := range env.Payload {
			if err := enc.Encode(item); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			items++
		}
		pages++
		if maxPages > 0 && pages >= maxPages {
			break
		}
	}

	a.logger.Debug().Int("pages", pages).Int("items", items).Msg("Collection written")
	return nil
}

func newCollectionCmd[T any](a *app, use, short string, paginate func(*client.Client, string, string) *client.Paginator[T]) *cobra.Command {
	var maxPages int

	cmd := &cobra.Command{
		Use:   use + " <owner> <repo>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return walk(cmd.Context(), a, paginate(a.client, args[0], args[1]), maxPages)
		},
	}
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "stop after this many pages (0 = all)")
	return cmd
}

func newTagsCmd(a *app) *cobra.Command {
	return newCollectionCmd(a, "tags", "List the tags of a repository", github.Tags)
}

func newReleasesCmd(a *app) *cobra.Command {
	return newCollectionCmd(a, "releases", "List the releases of a repository", github.Releases)
}

func newPullsCmd(a *app) *cobra.Command {
	return newCollectionCmd(a, "pulls", "List the open pull requests of a repository", github.PullRequests)
}

func newLicenseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "license <owner> <repo>",
		Short: "Show the license of a repository",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := github.RepositoryLicense(cmd.Context(), a.client, args[0], args[1])
			if err != nil {
				return err
			}
			return printPayload(a, env)
		},
	}
}

func newRateLimitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rate-limit",
		Short: "Show the rate limit status of the authenticated user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := github.RateLimit(cmd.Context(), a.client)
			if err != nil {
				return err
			}
			return printPayload(a, env)
		},
	}
}

func newReleasesOrTagsCmd(a *app) *cobra.Command {
	var list bool
	var maxPages int

	cmd := &cobra.Command{
		Use:   "releases-or-tags <owner> <repo>",
		Short: "Print whether a repository publishes releases or only tags",
		Long:  "Probes the releases of a repository with a single request. Prints \"releases\" when there are any and \"tags\" otherwise. With --list the chosen collection is listed instead.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			owner, repo := args[0], args[1]

			collection, err := github.ReleasesOrTags(ctx, a.client, owner, repo)
			if err != nil {
				return err
			}
			if !list {
				_, err := fmt.Fprintln(a.out, collection)
				return err
			}

			if collection == github.CollectionReleases {
				return walk(ctx, a, github.Releases(a.client, owner, repo), maxPages)
			}
			return walk(ctx, a, github.Tags(a.client, owner, repo), maxPages)
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "list the chosen collection")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "stop after this many pages (0 = all)")
	return cmd
}

func newPageCmd(a *app) *cobra.Command {
	var page, perPage int

	cmd := &cobra.Command{
		Use:   "page <resource> [owner repo]",
		Short: "Print the raw body of one page of a resource",
		Long:  fmt.Sprintf("Fetches one page without decoding it. Resources: %v.", github.Names()),
		Args:  cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoint, err := github.Lookup(args[0])
			if err != nil {
				return err
			}
			var owner, repo string
			if len(args) == 3 {
				owner, repo = args[1], args[2]
			} else if endpoint != github.RateLimitEndpoint {
				return fmt.Errorf("%s requires <owner> <repo>", args[0])
			}

			resp, err := a.client.Fetch(cmd.Context(), endpoint.Expand(owner, repo), page, perPage)
			if err != nil {
				return err
			}
			if resp.NextPage > 0 {
				a.logger.Info().Int("next_page", resp.NextPage).Msg("More pages available")
			}
			_, err = fmt.Fprintln(a.out, resp.Body)
			return err
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "page size (0 = configured default)")
	return cmd
}

type payloadJSONer interface {
	PayloadJSON() (string, error)
}

func printPayload(a *app, env payloadJSONer) error {
	out, err := env.PayloadJSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, out)
	return err
}
