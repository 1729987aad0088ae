package pagination

import (
	"net/http"
	"regexp"
	"strconv"
)

// Rel identifies the relation of a pagination link.
type Rel int

const (
	// RelOther is any relation name not listed below. Link.Name holds it.
	RelOther Rel = iota
	RelFirst
	RelPrev
	RelNext
	RelLast
)

// String returns the relation name as it appears in the Link header.
func (r Rel) String() string {
	switch r {
	case RelFirst:
		return "first"
	case RelPrev:
		return "prev"
	case RelNext:
		return "next"
	case RelLast:
		return "last"
	default:
		return "other"
	}
}

// HeaderLink is the response header carrying pagination links.
const HeaderLink = "Link"

// linkPattern captures the page query parameter and the rel name of one
// `<url>; rel="name"` entry.
var linkPattern = regexp.MustCompile(`<[^>]*?[?&]page=(\d+)[^>]*>\s*;\s*rel="([^"]*)"`)

// Link is one entry of a Link header.
type Link struct {
	Rel  Rel
	Name string // raw rel name, e.g. "next"
	Page int
}

// ParseLinks extracts every entry of a Link header value in header order.
// Entries without a positive page parameter are skipped. Unknown relation
// names are kept as RelOther.
func ParseLinks(value string) []Link {
	matches := linkPattern.FindAllStringSubmatch(value, -1)
	if len(matches) == 0 {
		return nil
	}

	links := make([]Link, 0, len(matches))
	for _, m := range matches {
		page, err := strconv.Atoi(m[1])
		if err != nil || page < 1 {
			continue
		}
		links = append(links, Link{
			Rel:  parseRel(m[2]),
			Name: m[2],
			Page: page,
		})
	}
	return links
}

func parseRel(name string) Rel {
	switch name {
	case "first":
		return RelFirst
	case "prev":
		return RelPrev
	case "next":
		return RelNext
	case "last":
		return RelLast
	default:
		return RelOther
	}
}

// LinksFromHeader parses the Link header of a response.
// A missing header yields no links.
func LinksFromHeader(headers http.Header) []Link {
	value := headers.Get(HeaderLink)
	if value == "" {
		return nil
	}
	return ParseLinks(value)
}

// NextPage returns the page of the first "next" link.
func NextPage(links []Link) (int, bool) {
	return find(links, RelNext)
}

// LastPage returns the page of the first "last" link.
func LastPage(links []Link) (int, bool) {
	return find(links, RelLast)
}

func find(links []Link, rel Rel) (int, bool) {
	for _, l := range links {
		if l.Rel == rel {
			return l.Page, true
		}
	}
	return 0, false
}
