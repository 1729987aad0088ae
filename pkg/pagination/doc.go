// Package pagination parses the Link header GitHub uses to paginate collections.
//
// Every collection response may carry a header such as:
//
//	Link: <https://api.github.com/repositories/1/tags?per_page=100&page=2>; rel="next",
//	      <https://api.github.com/repositories/1/tags?per_page=100&page=5>; rel="last"
//
// ParseLinks turns it into an ordered []Link in a single pass. Relation names
// outside first/prev/next/last are kept as RelOther with their raw name, so
// nothing the server sends is dropped. NextPage is the cursor the client's
// Paginator follows; a response without a next link ends the sequence.
//
// Example usage:
//
//	links := pagination.LinksFromHeader(resp.Header)
//	if next, ok := pagination.NextPage(links); ok {
//		// request page next
//	}
package pagination
