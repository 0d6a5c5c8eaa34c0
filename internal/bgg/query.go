package bgg

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	collectionPath = "/collection"
	playsPath      = "/plays"

	expansionSubtype = "boardgameexpansion"
)

// Param is a single query parameter. Queries keep their parameters ordered
// so the request line matches the upstream's documented form exactly.
type Param struct {
	Key   string
	Value string
}

// Query is one fully-formed upstream request: an endpoint path, the owner
// identity and the filter/pagination parameters that follow it.
type Query struct {
	Path     string
	Username string
	Params   []Param
}

// CollectionQuery builds the owned-items query for one collection sub-fetch
func CollectionQuery(username string, kind ItemKind) Query {
	params := []Param{
		{Key: "own", Value: "1"},
		{Key: "showprivate", Value: "1"},
	}
	if kind == ItemKindExpansion {
		params = append(params, Param{Key: "subtype", Value: expansionSubtype})
	} else {
		params = append(params, Param{Key: "excludesubtype", Value: expansionSubtype})
	}
	return Query{Path: collectionPath, Username: username, Params: params}
}

// PlaysQuery builds the play-history query for one 1-indexed page
func PlaysQuery(username string, page int) Query {
	return Query{
		Path:     playsPath,
		Username: username,
		Params: []Param{
			{Key: "type", Value: "thing"},
			{Key: "page", Value: strconv.Itoa(page)},
		},
	}
}

// Validate rejects queries whose identity is empty or whitespace
func (q Query) Validate() error {
	if strings.TrimSpace(q.Username) == "" {
		return fmt.Errorf("%w: username must not be blank", ErrInvalidInput)
	}
	return nil
}

// Encode renders the query string with username first and the remaining
// parameters in declaration order.
func (q Query) Encode() string {
	var b strings.Builder
	b.WriteString("username=")
	b.WriteString(url.QueryEscape(q.Username))
	for _, p := range q.Params {
		b.WriteByte('&')
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// URL joins the query onto the given API base URL
func (q Query) URL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + q.Path + "?" + q.Encode()
}
