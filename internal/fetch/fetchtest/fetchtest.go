// Package fetchtest serves canned upstream responses to sources under test.
//
// Sources build absolute urls for real hosts, the transport returned by
// Server.Transport reroutes every request to the local test server while keeping
// the original host so routes can be keyed by the url the source asked for.
package fetchtest

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

const originalHostHeader = "X-Fetchtest-Host"

type Server struct {
	srv    *httptest.Server
	target *url.URL

	mutex  sync.Mutex
	routes map[string]string
	hits   map[string]int
}

// NewServer starts a server answering the given routes. Route keys are urls without
// the scheme, ex. "legacy.cafebonappetit.com/rss/menu/219".
func NewServer(t testing.TB, routes map[string]string) *Server {
	s := &Server{
		routes: map[string]string{},
		hits:   map[string]int{},
	}
	for k, v := range routes {
		s.routes[k] = v
	}

	s.srv = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.srv.Close)

	target, err := url.Parse(s.srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	s.target = target
	return s
}

func routeKey(host, requestUri string) string {
	return host + requestUri
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	key := routeKey(r.Header.Get(originalHostHeader), r.URL.RequestURI())

	s.mutex.Lock()
	body, ok := s.routes[key]
	s.hits[key]++
	s.mutex.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Write([]byte(body))
}

// Set adds or replaces a route.
func (s *Server) Set(route, body string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.routes[route] = body
}

// Hits returns how many times a route was requested.
func (s *Server) Hits(route string) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.hits[route]
}

// TotalHits returns the number of requests the server received.
func (s *Server) TotalHits() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	total := 0
	for _, n := range s.hits {
		total += n
	}
	return total
}

func (s *Server) Transport() http.RoundTripper {
	return rewriteTransport{target: s.target, base: http.DefaultTransport}
}

type rewriteTransport struct {
	target *url.URL
	base   http.RoundTripper
}

func (t rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set(originalHostHeader, strings.ToLower(req.URL.Host))
	r.URL.Scheme = t.target.Scheme
	r.URL.Host = t.target.Host
	r.Host = t.target.Host
	return t.base.RoundTrip(r)
}
