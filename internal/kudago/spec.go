package kudago

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
)

const BasePath = "/public-api/v1.4"

type Resource string

const (
	ResourceEvents      Resource = "events"
	ResourceMovies      Resource = "movies"
	ResourceLists       Resource = "lists"
	ResourceSearch      Resource = "search"
	ResourceLocations   Resource = "locations"
	ResourceCategories  Resource = "event-categories"
	ResourceEventsOfDay Resource = "events-of-the-day"
)

var errMissingHost = errors.New("base url needs scheme and host")

type Param struct {
	Key   string
	Value string
}

// Spec is a fully resolved read request against the public API.
// Params keep insertion order; a key appears at most once.
type Spec struct {
	Resource Resource
	Method   string
	Params   []Param
}

func newSpec(r Resource) *Spec {
	return &Spec{Resource: r, Method: http.MethodGet}
}

// set overwrites an existing key in place, or appends.
func (s *Spec) set(key, value string) {
	for i := range s.Params {
		if s.Params[i].Key == key {
			s.Params[i].Value = value
			return
		}
	}
	s.Params = append(s.Params, Param{Key: key, Value: value})
}

func (s Spec) Path() string {
	return BasePath + "/" + string(s.Resource) + "/"
}

// Get returns the value of key, if present.
func (s Spec) Get(key string) (string, bool) {
	for _, p := range s.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Encode renders the query string in parameter order.
func (s Spec) Encode() string {
	var b strings.Builder
	for i, p := range s.Params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// URL joins the spec onto baseURL (scheme + host, e.g. "https://kudago.com").
func (s Spec) URL(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", &url.Error{Op: "parse", URL: baseURL, Err: errMissingHost}
	}
	u.Path = strings.TrimRight(u.Path, "/") + s.Path()
	u.RawQuery = s.Encode()
	return u.String(), nil
}
