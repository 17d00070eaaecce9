package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

const validToken = "tok-valid"

// fakeAPI serves the v1 list/create/update/delete contract from memory.
type fakeAPI struct {
	t   *testing.T
	srv *httptest.Server

	mu      sync.Mutex
	records map[string][]map[string]interface{}
	nextID  int
	posts   int
	puts    []map[string]interface{}
}

func newFakeAPI(t *testing.T) *fakeAPI {
	api := &fakeAPI{t: t, records: make(map[string][]map[string]interface{})}
	api.srv = httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(api.srv.Close)
	return api
}

func (a *fakeAPI) seed(resource string, n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := 1; i <= n; i++ {
		a.nextID++
		a.records[resource] = append(a.records[resource], map[string]interface{}{
			"id":   fmt.Sprintf("c%d", a.nextID),
			"name": fmt.Sprintf("Class %d", i),
		})
	}
}

func (a *fakeAPI) count(resource string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records[resource])
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (a *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+validToken {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"message": "Unauthorized", "code": "UNAUTHORIZED"})
		return
	}
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 || parts[0] != "v1" {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"message": "route not found"})
		return
	}
	resource := parts[1]
	id := ""
	if len(parts) > 2 {
		id = parts[2]
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && id == "":
		a.list(w, r, resource)
	case r.Method == http.MethodGet:
		if i := a.find(resource, id); i >= 0 {
			writeJSON(w, http.StatusOK, map[string]interface{}{"data": a.records[resource][i]})
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"message": "not found"})
	case r.Method == http.MethodPost:
		a.posts++
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if name, _ := body["name"].(string); name == "" {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"message": []string{"name is required"}, "code": "VALIDATION_ERROR"})
			return
		}
		a.nextID++
		body["id"] = fmt.Sprintf("c%d", a.nextID)
		a.records[resource] = append(a.records[resource], body)
		writeJSON(w, http.StatusCreated, map[string]interface{}{"data": body})
	case r.Method == http.MethodPut:
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		a.puts = append(a.puts, body)
		i := a.find(resource, id)
		if i < 0 {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"message": "not found"})
			return
		}
		body["id"] = id
		a.records[resource][i] = body
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": body})
	case r.Method == http.MethodDelete:
		i := a.find(resource, id)
		if i < 0 {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"message": "not found"})
			return
		}
		a.records[resource] = append(a.records[resource][:i], a.records[resource][i+1:]...)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (a *fakeAPI) list(w http.ResponseWriter, r *http.Request, resource string) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	search := strings.ToLower(q.Get("search"))

	var matched []map[string]interface{}
	for _, rec := range a.records[resource] {
		name, _ := rec["name"].(string)
		if search == "" || strings.Contains(strings.ToLower(name), search) {
			matched = append(matched, rec)
		}
	}
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	data := matched[start:end]
	if data == nil {
		data = []map[string]interface{}{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":       data,
		"total":      len(matched),
		"page":       strconv.Itoa(page),
		"limit":      strconv.Itoa(limit),
		"totalPages": (len(matched) + limit - 1) / limit,
	})
}

func (a *fakeAPI) find(resource, id string) int {
	for i, rec := range a.records[resource] {
		if rec["id"] == id {
			return i
		}
	}
	return -1
}
