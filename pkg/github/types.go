package github

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Sternrassler/github-api-client/pkg/ratelimit"
)

// Tag is one entry of GET /repos/{owner}/{repo}/tags.
type Tag struct {
	Name       string    `json:"name"`
	ZipballURL string    `json:"zipball_url"`
	TarballURL string    `json:"tarball_url"`
	Commit     TagCommit `json:"commit"`
	NodeID     string    `json:"node_id"`

	// Extra holds fields this type does not declare.
	Extra map[string]json.RawMessage `json:"-"`
}

// TagCommit is the commit a tag points to.
type TagCommit struct {
	SHA string `json:"sha"`
	URL string `json:"url"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Tag) UnmarshalJSON(data []byte) error {
	type plain Tag
	return decodeWithExtra(data, (*plain)(t), &t.Extra)
}

// Release is one entry of GET /repos/{owner}/{repo}/releases.
type Release struct {
	URL             string     `json:"url"`
	AssetsURL       string     `json:"assets_url"`
	UploadURL       string     `json:"upload_url"`
	HTMLURL         string     `json:"html_url"`
	ID              int64      `json:"id"`
	NodeID          string     `json:"node_id"`
	TagName         string     `json:"tag_name"`
	TargetCommitish string     `json:"target_commitish"`
	Name            *string    `json:"name"`
	Draft           bool       `json:"draft"`
	Author          Person     `json:"author"`
	Prerelease      bool       `json:"prerelease"`
	CreatedAt       time.Time  `json:"created_at"`
	PublishedAt     *time.Time `json:"published_at"`
	Assets          []Asset    `json:"assets"`
	TarballURL      *string    `json:"tarball_url"`
	ZipballURL      *string    `json:"zipball_url"`
	Body            *string    `json:"body"`

	Extra map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Release) UnmarshalJSON(data []byte) error {
	type plain Release
	return decodeWithExtra(data, (*plain)(r), &r.Extra)
}

// Asset is a file attached to a release.
type Asset struct {
	URL                string    `json:"url"`
	ID                 int64     `json:"id"`
	NodeID             string    `json:"node_id"`
	Name               string    `json:"name"`
	Label              *string   `json:"label"`
	Uploader           Person    `json:"uploader"`
	ContentType        string    `json:"content_type"`
	State              string    `json:"state"`
	Size               int64     `json:"size"`
	DownloadCount      int64     `json:"download_count"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	BrowserDownloadURL string    `json:"browser_download_url"`
}

// Person is the user summary GitHub embeds in other resources.
type Person struct {
	Login             string `json:"login"`
	ID                int64  `json:"id"`
	NodeID            string `json:"node_id"`
	AvatarURL         string `json:"avatar_url"`
	GravatarID        string `json:"gravatar_id"`
	URL               string `json:"url"`
	HTMLURL           string `json:"html_url"`
	FollowersURL      string `json:"followers_url"`
	FollowingURL      string `json:"following_url"`
	GistsURL          string `json:"gists_url"`
	StarredURL        string `json:"starred_url"`
	SubscriptionsURL  string `json:"subscriptions_url"`
	OrganizationsURL  string `json:"organizations_url"`
	ReposURL          string `json:"repos_url"`
	EventsURL         string `json:"events_url"`
	ReceivedEventsURL string `json:"received_events_url"`
	Type              string `json:"type"`
	SiteAdmin         bool   `json:"site_admin"`
}

// License is the response of GET /repos/{owner}/{repo}/license.
// Content is base64 encoded as indicated by Encoding.
type License struct {
	Name        string       `json:"name"`
	Path        string       `json:"path"`
	SHA         string       `json:"sha"`
	Size        int64        `json:"size"`
	URL         string       `json:"url"`
	HTMLURL     string       `json:"html_url"`
	GitURL      string       `json:"git_url"`
	DownloadURL string       `json:"download_url"`
	Type        string       `json:"type"`
	Content     string       `json:"content"`
	Encoding    string       `json:"encoding"`
	Links       LicenseLinks `json:"_links"`
	License     LicenseInfo  `json:"license"`

	Extra map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *License) UnmarshalJSON(data []byte) error {
	type plain License
	return decodeWithExtra(data, (*plain)(l), &l.Extra)
}

// LicenseLinks are the hypermedia links of a license file.
type LicenseLinks struct {
	Self string `json:"self"`
	Git  string `json:"git"`
	HTML string `json:"html"`
}

// LicenseInfo identifies the detected license.
type LicenseInfo struct {
	Key    string  `json:"key"`
	Name   string  `json:"name"`
	SPDXID string  `json:"spdx_id"`
	URL    *string `json:"url"`
	NodeID string  `json:"node_id"`
}

// State is the state of an issue or pull request.
type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// UnmarshalText rejects states other than open and closed.
func (s *State) UnmarshalText(text []byte) error {
	switch State(text) {
	case StateOpen, StateClosed:
		*s = State(text)
		return nil
	default:
		return fmt.Errorf("unknown state %q", text)
	}
}

// PullRequest is one entry of GET /repos/{owner}/{repo}/pulls.
type PullRequest struct {
	URL            string     `json:"url"`
	ID             int64      `json:"id"`
	NodeID         string     `json:"node_id"`
	HTMLURL        string     `json:"html_url"`
	Number         int        `json:"number"`
	State          State      `json:"state"`
	Locked         bool       `json:"locked"`
	Title          string     `json:"title"`
	User           Person     `json:"user"`
	Body           *string    `json:"body"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ClosedAt       *time.Time `json:"closed_at"`
	MergedAt       *time.Time `json:"merged_at"`
	MergeCommitSHA *string    `json:"merge_commit_sha"`
	Draft          bool       `json:"draft"`
	Head           Branch     `json:"head"`
	Base           Branch     `json:"base"`

	Extra map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *PullRequest) UnmarshalJSON(data []byte) error {
	type plain PullRequest
	return decodeWithExtra(data, (*plain)(p), &p.Extra)
}

// Branch is the head or base of a pull request.
type Branch struct {
	Label string `json:"label"`
	Ref   string `json:"ref"`
	SHA   string `json:"sha"`
	User  Person `json:"user"`
}

// RateLimitResponse is the response of GET /rate_limit.
type RateLimitResponse struct {
	Resources Resources `json:"resources"`

	// Rate is deprecated upstream; prefer Resources.Core.
	Rate *Quota `json:"rate"`

	Extra map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *RateLimitResponse) UnmarshalJSON(data []byte) error {
	type plain RateLimitResponse
	return decodeWithExtra(data, (*plain)(r), &r.Extra)
}

// Resources groups the quotas of each API family.
type Resources struct {
	Core                Quota `json:"core"`
	Search              Quota `json:"search"`
	GraphQL             Quota `json:"graphql"`
	IntegrationManifest Quota `json:"integration_manifest"`
}

// Quota is one rate limit window as reported in a response body.
type Quota struct {
	Limit     uint64 `json:"limit"`
	Remaining uint64 `json:"remaining"`
	Reset     uint64 `json:"reset"`
}

// RateLimit converts the quota to the header representation.
func (q Quota) RateLimit() ratelimit.RateLimit {
	return ratelimit.RateLimit{Limit: q.Limit, Remaining: q.Remaining, Reset: q.Reset}
}
