package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"vet-directory/internal/domain/vets"
	"vet-directory/internal/router"
)

type vetJSON struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

func newServer(t *testing.T, opts router.Options) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(router.NewRouter(opts))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_CreateListDelete(t *testing.T) {
	ts := newServer(t, router.Options{})

	// 1) Vacío => []
	if got := listVets(t, ts.URL); len(got) != 0 {
		t.Fatalf("expected empty list, got %#v", got)
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/api/vets", nil)
		if st != http.StatusOK || string(bytes.TrimSpace(body)) != "[]" {
			t.Fatalf("expected 200 [], got %d body=%s", st, string(body))
		}
	}

	// 2) Alta
	created := createVet(t, ts.URL, map[string]any{"fullName": "Dr. A", "email": "a@x.com"})
	if created.ID == 0 {
		t.Fatalf("expected generated id, got %#v", created)
	}

	// 3) Lista con exactamente ese registro
	got := listVets(t, ts.URL)
	if len(got) != 1 || got[0] != created {
		t.Fatalf("expected [%#v], got %#v", created, got)
	}

	// 4) Baja => []
	{
		st, body := doReq(t, ts.URL, "DELETE", "/api/vets/"+itoa(created.ID), nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 delete, got %d body=%s", st, string(body))
		}
	}
	if got := listVets(t, ts.URL); len(got) != 0 {
		t.Fatalf("expected empty list after delete, got %#v", got)
	}
}

func TestHTTP_DeleteFirstOfTwo(t *testing.T) {
	ts := newServer(t, router.Options{})

	first := createVet(t, ts.URL, map[string]any{"fullName": "Dr. A", "email": "a@x.com"})
	second := createVet(t, ts.URL, map[string]any{"fullName": "Dr. B", "email": "b@x.com"})
	if first.ID == second.ID {
		t.Fatalf("expected distinct ids, got %d twice", first.ID)
	}

	st, _ := doReq(t, ts.URL, "DELETE", "/api/vets/"+itoa(first.ID), nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 delete, got %d", st)
	}

	got := listVets(t, ts.URL)
	if len(got) != 1 || got[0] != second {
		t.Fatalf("expected only second vet, got %#v", got)
	}
}

func TestHTTP_Create_IgnoresBodyID_AcceptsEmptyFields(t *testing.T) {
	ts := newServer(t, router.Options{})

	created := createVet(t, ts.URL, map[string]any{"id": 777, "fullName": "", "email": ""})
	if created.ID == 777 {
		t.Fatalf("expected body id to be ignored")
	}

	got := listVets(t, ts.URL)
	if len(got) != 1 || got[0].FullName != "" || got[0].Email != "" {
		t.Fatalf("expected one empty vet, got %#v", got)
	}
}

func TestHTTP_Update_PathIDOverridesBody(t *testing.T) {
	ts := newServer(t, router.Options{})

	a := createVet(t, ts.URL, map[string]any{"fullName": "Dr. A", "email": "a@x.com"})
	b := createVet(t, ts.URL, map[string]any{"fullName": "Dr. B", "email": "b@x.com"})

	st, body := doReq(t, ts.URL, "PUT", "/api/vets/"+itoa(a.ID), map[string]any{
		"id":       b.ID,
		"fullName": "Dr. A Updated",
		"email":    "a.updated@x.com",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 update, got %d body=%s", st, string(body))
	}

	byID := map[int64]vetJSON{}
	for _, v := range listVets(t, ts.URL) {
		byID[v.ID] = v
	}
	if byID[a.ID].FullName != "Dr. A Updated" || byID[a.ID].Email != "a.updated@x.com" {
		t.Fatalf("expected vet %d updated, got %#v", a.ID, byID[a.ID])
	}
	if byID[b.ID] != b {
		t.Fatalf("expected vet %d untouched, got %#v", b.ID, byID[b.ID])
	}
}

func TestHTTP_MissingIDs_AreNoops(t *testing.T) {
	ts := newServer(t, router.Options{})

	a := createVet(t, ts.URL, map[string]any{"fullName": "Dr. A", "email": "a@x.com"})

	{
		st, _ := doReq(t, ts.URL, "PUT", "/api/vets/9999", map[string]any{"fullName": "ghost", "email": "g@x.com"})
		if st != http.StatusOK {
			t.Fatalf("expected 200 update of missing id, got %d", st)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "DELETE", "/api/vets/9999", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 delete of missing id, got %d", st)
		}
	}

	got := listVets(t, ts.URL)
	if len(got) != 1 || got[0] != a {
		t.Fatalf("expected list unchanged, got %#v", got)
	}
}

func TestHTTP_BadRequests(t *testing.T) {
	ts := newServer(t, router.Options{})

	cases := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"create invalid json", "POST", "/api/vets", "{"},
		{"update invalid json", "PUT", "/api/vets/1", "nope"},
		{"update invalid id", "PUT", "/api/vets/abc", `{"fullName":"x","email":"y"}`},
		{"delete invalid id", "DELETE", "/api/vets/1.5", ""},
		{"update id above int32", "PUT", "/api/vets/3000000000", `{"fullName":"x","email":"y"}`},
		{"delete id above int32", "DELETE", "/api/vets/3000000000", ""},
		{"delete id below int32", "DELETE", "/api/vets/-3000000000", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, _ := doRaw(t, ts.URL, tc.method, tc.path, tc.body)
			if st != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", st)
			}
		})
	}
}

func TestHTTP_MaxInt32ID_IsNoop(t *testing.T) {
	ts := newServer(t, router.Options{})

	st, _ := doReq(t, ts.URL, "DELETE", "/api/vets/2147483647", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 delete of max int32 id, got %d", st)
	}
}

func TestHTTP_OversizedBody_Is400(t *testing.T) {
	h := router.NewRouter(router.Options{})

	big := `{"fullName":"` + strings.Repeat("a", 1<<20) + `","email":"a@x.com"}`
	for _, method := range []string{http.MethodPost, http.MethodPut} {
		path := "/api/vets"
		if method == http.MethodPut {
			path = "/api/vets/1"
		}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(big)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 for oversized body, got %d", method, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/vets", nil))
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Fatalf("expected nothing stored, got %s", got)
	}
}

type failingRepo struct{}

var errDown = errors.New("db down")

func (failingRepo) List(context.Context) ([]vets.Vet, error)           { return nil, errDown }
func (failingRepo) Create(context.Context, vets.Vet) (int64, error)     { return 0, errDown }
func (failingRepo) Update(context.Context, vets.Vet) error              { return errDown }
func (failingRepo) Delete(context.Context, int64) error                 { return errDown }
func (failingRepo) SeedIfEmpty(context.Context, vets.Vet) (bool, error) { return false, errDown }

func TestHTTP_StoreFailures_Are500(t *testing.T) {
	ts := newServer(t, router.Options{VetsRepo: failingRepo{}})

	checks := []struct {
		method, path string
		body         any
	}{
		{"GET", "/api/vets", nil},
		{"POST", "/api/vets", map[string]any{"fullName": "x", "email": "y"}},
		{"PUT", "/api/vets/1", map[string]any{"fullName": "x", "email": "y"}},
		{"DELETE", "/api/vets/1", nil},
	}
	for _, c := range checks {
		st, body := doReq(t, ts.URL, c.method, c.path, c.body)
		if st != http.StatusInternalServerError {
			t.Fatalf("%s %s: expected 500, got %d body=%s", c.method, c.path, st, string(body))
		}
		if bytes.Contains(body, []byte(errDown.Error())) {
			t.Fatalf("%s %s: internal error leaked to client: %s", c.method, c.path, string(body))
		}
	}
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func TestHTTP_Health(t *testing.T) {
	{
		ts := newServer(t, router.Options{DB: fakePinger{}})
		st, body := doReq(t, ts.URL, "GET", "/health", nil)
		if st != http.StatusOK || string(body) != "ok" {
			t.Fatalf("expected 200 ok, got %d body=%s", st, string(body))
		}
	}
	{
		ts := newServer(t, router.Options{DB: fakePinger{err: errDown}})
		st, _ := doReq(t, ts.URL, "GET", "/health", nil)
		if st != http.StatusServiceUnavailable {
			t.Fatalf("expected 503 when db is down, got %d", st)
		}
	}
}

func TestHTTP_CORS(t *testing.T) {
	ts := newServer(t, router.Options{AllowedOrigins: []string{"https://vets.example.com"}})

	req, _ := http.NewRequest("OPTIONS", ts.URL+"/api/vets", nil)
	req.Header.Set("Origin", "https://vets.example.com")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	res.Body.Close()
	if got := res.Header.Get("Access-Control-Allow-Origin"); got != "https://vets.example.com" {
		t.Fatalf("expected allowed origin echoed, got %q", got)
	}

	req, _ = http.NewRequest("GET", ts.URL+"/api/vets", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	res, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	res.Body.Close()
	if got := res.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no CORS header for unknown origin, got %q", got)
	}
}

func TestHTTP_SwaggerDoc(t *testing.T) {
	ts := newServer(t, router.Options{})

	st, body := doReq(t, ts.URL, "GET", "/swagger/doc.json", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 swagger doc, got %d", st)
	}
	if !bytes.Contains(body, []byte(`"/api/vets"`)) {
		t.Fatalf("expected /api/vets in swagger doc, got %s", string(body))
	}
}

func TestHTTP_RequestIDHeader(t *testing.T) {
	ts := newServer(t, router.Options{})

	res, err := http.Get(ts.URL + "/api/vets")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	res.Body.Close()
	if res.Header.Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID in response")
	}
}

func createVet(t *testing.T, baseURL string, payload map[string]any) vetJSON {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/api/vets", payload)
	if st != http.StatusOK {
		t.Fatalf("expected 200 create vet, got %d body=%s", st, string(body))
	}

	var resp vetJSON
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("create vet: bad body %s: %v", string(body), err)
	}
	return resp
}

func listVets(t *testing.T, baseURL string) []vetJSON {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/api/vets", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list vets, got %d body=%s", st, string(body))
	}

	var out []vetJSON
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("list vets: bad body %s: %v", string(body), err)
	}
	return out
}

func doReq(t *testing.T, baseURL, method, path string, body any) (int, []byte) {
	t.Helper()

	var raw string
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		raw = string(b)
	}
	return doRaw(t, baseURL, method, path, raw)
}

func doRaw(t *testing.T, baseURL, method, path, body string) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
