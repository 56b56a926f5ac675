package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
)

// SearchFlavor selects the product a SearchServer pretends to be.
type SearchFlavor int

const (
	// FlavorElasticsearch answers like Elasticsearch 8.
	FlavorElasticsearch SearchFlavor = iota
	// FlavorOpenSearch answers like OpenSearch 2.
	FlavorOpenSearch
)

// SearchServer is an in-memory search engine speaking the subset of the
// Elasticsearch/OpenSearch REST API used by the search adapters.
//
// Supported queries are match_all, term and match; each compares a _source
// field for equality. Any other query is rejected with a 400
// parsing_exception.
type SearchServer struct {
	*httptest.Server

	mu      sync.Mutex
	flavor  SearchFlavor
	indices map[string]*fakeIndex

	// NoAck makes index creation return acknowledged=false.
	NoAck bool

	// Requests counts requests by "METHOD path".
	Requests map[string]int
}

type fakeIndex struct {
	body map[string]any
	docs map[string]map[string]any
}

// NewSearchServer starts a SearchServer that is closed when the test ends.
//
// Parameters:
//   - t: The testing context
//   - flavor: Product to emulate
//
// Returns:
//   - *SearchServer: The running server; URL holds its address
func NewSearchServer(t *testing.T, flavor SearchFlavor) *SearchServer {
	t.Helper()

	s := &SearchServer{
		flavor:   flavor,
		indices:  make(map[string]*fakeIndex),
		Requests: make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)

	return s
}

// Endpoint returns the host and port the server listens on.
func (s *SearchServer) Endpoint() (string, int) {
	u, err := url.Parse(s.URL)
	if err != nil {
		return "", 0
	}
	port, _ := strconv.Atoi(u.Port())

	return u.Hostname(), port
}

// IndexBody returns the creation body of an index, or nil if it does not exist.
func (s *SearchServer) IndexBody(index string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, ok := s.indices[index]; ok {
		return idx.body
	}

	return nil
}

// Document returns a stored document, or nil if it does not exist.
func (s *SearchServer) Document(index, id string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, ok := s.indices[index]; ok {
		return idx.docs[id]
	}

	return nil
}

// RequestCount returns the number of requests seen for "METHOD path".
func (s *SearchServer) RequestCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.Requests[key]
}

func (s *SearchServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Requests[r.Method+" "+r.URL.Path]++
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.URL.Path == "/":
		s.info(w)
	case parts[0] == "_nodes":
		s.nodes(w)
	case len(parts) == 1:
		s.indexOp(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "_search":
		s.search(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "_create":
		s.create(w, r, parts[0], parts[2])
	case len(parts) == 3 && parts[1] == "_update":
		s.update(w, r, parts[0], parts[2])
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("illegal_argument_exception", "unsupported path "+r.URL.Path))
	}
}

func (s *SearchServer) info(w http.ResponseWriter) {
	version := map[string]any{"number": "8.18.0", "build_flavor": "default"}
	tagline := "You Know, for Search"
	if s.flavor == FlavorOpenSearch {
		version = map[string]any{"number": "2.11.0", "distribution": "opensearch"}
		tagline = "The OpenSearch Project: https://opensearch.org/"
	}
	writeJSON(w, http.StatusOK, map[string]any{"name": "fake", "version": version, "tagline": tagline})
}

// nodes answers node discovery with this server as the only HTTP node.
func (s *SearchServer) nodes(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]any{
		"nodes": map[string]any{
			"fake-node": map[string]any{
				"name":  "fake",
				"roles": []string{"data", "ingest", "master"},
				"http":  map[string]any{"publish_address": s.Listener.Addr().String()},
			},
		},
	})
}

func (s *SearchServer) indexOp(w http.ResponseWriter, r *http.Request, index string) {
	_, exists := s.indices[index]
	switch r.Method {
	case http.MethodHead:
		if exists {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	case http.MethodPut:
		if exists {
			writeJSON(w, http.StatusBadRequest, errorBody("resource_already_exists_exception",
				fmt.Sprintf("index [%s] already exists", index)))
			return
		}
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		s.indices[index] = &fakeIndex{body: body, docs: make(map[string]map[string]any)}
		writeJSON(w, http.StatusOK, map[string]any{"acknowledged": !s.NoAck, "index": index})
	case http.MethodDelete:
		if !exists {
			writeJSON(w, http.StatusNotFound, indexNotFound(index))
			return
		}
		delete(s.indices, index)
		writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method_not_allowed", r.Method))
	}
}

func (s *SearchServer) create(w http.ResponseWriter, r *http.Request, index, id string) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	idx, exists := s.indices[index]
	if !exists {
		idx = &fakeIndex{docs: make(map[string]map[string]any)}
		s.indices[index] = idx
	}
	if _, taken := idx.docs[id]; taken {
		writeJSON(w, http.StatusConflict, errorBody("version_conflict_engine_exception",
			fmt.Sprintf("[%s]: version conflict, document already exists", id)))
		return
	}
	idx.docs[id] = body
	writeJSON(w, http.StatusCreated, map[string]any{
		"_index": index, "_id": id, "_version": 1, "result": "created",
	})
}

func (s *SearchServer) update(w http.ResponseWriter, r *http.Request, index, id string) {
	idx, exists := s.indices[index]
	if !exists {
		writeJSON(w, http.StatusNotFound, indexNotFound(index))
		return
	}
	doc, found := idx.docs[id]
	if !found {
		writeJSON(w, http.StatusNotFound, errorBody("document_missing_exception",
			fmt.Sprintf("[%s]: document missing", id)))
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	partial, ok := body["doc"].(map[string]any)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("action_request_validation_exception", "script or doc is missing"))
		return
	}
	for k, v := range partial {
		doc[k] = v
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"_index": index, "_id": id, "_version": 2, "result": "updated",
	})
}

func (s *SearchServer) search(w http.ResponseWriter, r *http.Request, index string) {
	idx, exists := s.indices[index]
	if !exists {
		writeJSON(w, http.StatusNotFound, indexNotFound(index))
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	match, err := compileQuery(body["query"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("parsing_exception", err.Error()))
		return
	}

	var fields []string
	if src := r.URL.Query().Get("_source"); src != "" {
		fields = strings.Split(src, ",")
	}

	ids := make([]string, 0, len(idx.docs))
	for id := range idx.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	hits := []any{}
	for _, id := range ids {
		doc := idx.docs[id]
		if !match(doc) {
			continue
		}
		hits = append(hits, map[string]any{
			"_index":  index,
			"_id":     id,
			"_score":  1.0,
			"_source": project(doc, fields),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"took": 1,
		"hits": map[string]any{
			"total": map[string]any{"value": len(hits), "relation": "eq"},
			"hits":  hits,
		},
	})
}

func compileQuery(q any) (func(map[string]any) bool, error) {
	if q == nil {
		return func(map[string]any) bool { return true }, nil
	}
	clause, ok := q.(map[string]any)
	if !ok || len(clause) != 1 {
		return nil, fmt.Errorf("query malformed, expected a single clause")
	}
	for kind, arg := range clause {
		switch kind {
		case "match_all":
			return func(map[string]any) bool { return true }, nil
		case "term", "match":
			terms, ok := arg.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("[%s] query malformed", kind)
			}

			return func(doc map[string]any) bool {
				for field, want := range terms {
					if inner, ok := want.(map[string]any); ok {
						want = inner["value"]
						if want == nil {
							want = inner["query"]
						}
					}
					if fmt.Sprint(doc[field]) != fmt.Sprint(want) {
						return false
					}
				}

				return true
			}, nil
		default:
			return nil, fmt.Errorf("unknown query [%s]", kind)
		}
	}

	return nil, fmt.Errorf("query malformed")
}

func project(doc map[string]any, fields []string) map[string]any {
	if len(fields) == 0 {
		return doc
	}
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if v, ok := doc[f]; ok {
			out[f] = v
		}
	}

	return out
}

func readBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("parse_exception", err.Error()))
		return nil, false
	}
	body := map[string]any{}
	if len(raw) == 0 {
		return body, true
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("parse_exception", err.Error()))
		return nil, false
	}

	return body, true
}

func indexNotFound(index string) map[string]any {
	return errorBody("index_not_found_exception", fmt.Sprintf("no such index [%s]", index))
}

func errorBody(typ, reason string) map[string]any {
	return map[string]any{
		"error": map[string]any{"type": typ, "reason": reason},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
