package handler

import (
	"encoding/json"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/encdec/configs"
	"github.com/yourusername/encdec/internal/logging"
	"github.com/yourusername/encdec/internal/middleware"
	"github.com/yourusername/encdec/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T, handlers ...gin.HandlerFunc) *gin.Engine {
	t.Helper()

	svc, err := service.NewCodecService(configs.DefaultConfig().Codec, nil, logging.Discard().Logger)
	require.NoError(t, err)

	tmpl, err := Templates()
	require.NoError(t, err)

	r := gin.New()
	r.Use(handlers...)
	r.SetHTMLTemplate(tmpl)
	NewCodecHandler(svc).Register(r)
	return r
}

func postForm(r http.Handler, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/process", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func postJSON(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/process", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestIndex(t *testing.T) {
	r := newRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<form method="post" action="/process">`)
	assert.Contains(t, body, `value="encode" checked`)
	assert.NotContains(t, body, `value="decode" checked`)
	assert.Contains(t, body, `name="zip" value="1" checked`)
	assert.NotContains(t, body, `class="error"`)
	assert.NotContains(t, body, `id="output"`)
}

func TestProcessFormEncode(t *testing.T) {
	r := newRouter(t)

	rec := postForm(r, url.Values{"input": {"hello"}, "mode": {"encode"}})
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `readonly>aGVsbG8=</textarea>`)
	assert.Contains(t, body, `>hello</textarea>`)
	assert.NotContains(t, body, `name="zip" value="1" checked`)
}

func TestProcessFormDecodeWithCompression(t *testing.T) {
	r := newRouter(t)

	enc := postForm(r, url.Values{"input": {"round trip"}, "mode": {"encode"}, "zip": {"1"}})
	require.Equal(t, http.StatusOK, enc.Code)
	start := strings.Index(enc.Body.String(), "readonly>") + len("readonly>")
	end := strings.Index(enc.Body.String()[start:], "</textarea>")
	// html/template escapes '+' in text areas
	encoded := html.UnescapeString(enc.Body.String()[start : start+end])
	assert.True(t, strings.HasPrefix(encoded, "H4sI"))

	dec := postForm(r, url.Values{"input": {encoded}, "mode": {"decode"}, "zip": {"on"}})
	body := dec.Body.String()
	assert.Contains(t, body, `readonly>round trip</textarea>`)
	assert.Contains(t, body, `value="decode" checked`)
	assert.Contains(t, body, `name="zip" value="1" checked`)
}

func TestProcessFormError(t *testing.T) {
	r := newRouter(t)

	rec := postForm(r, url.Values{"input": {"a==="}, "mode": {"decode"}})
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `<span class="error">`)
	assert.NotContains(t, body, `id="output"`)
	assert.Contains(t, body, `>a===</textarea>`)
}

func TestProcessFormEmpty(t *testing.T) {
	r := newRouter(t)

	rec := postForm(r, url.Values{"input": {""}, "mode": {"decode"}, "zip": {"1"}})
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `<span class="notice">no input</span>`)
	assert.NotContains(t, body, `class="error"`)
}

func TestProcessFormEscapesInput(t *testing.T) {
	r := newRouter(t)

	rec := postForm(r, url.Values{"input": {"<script>alert(1)</script>"}, "mode": {"encode"}})
	body := rec.Body.String()
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestProcessFormBinaryOutput(t *testing.T) {
	r := newRouter(t)

	rec := postForm(r, url.Values{"input": {"//4A"}, "mode": {"decode"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "\uFFFD")
}

func TestProcessFormInvalidMode(t *testing.T) {
	r := newRouter(t)

	rec := postForm(r, url.Values{"input": {"hello"}, "mode": {"sideways"}})
	body := rec.Body.String()
	assert.Contains(t, body, `<span class="error">`)
	assert.Contains(t, body, "sideways")
}

func TestProcessFormTooLarge(t *testing.T) {
	r := newRouter(t, middleware.BodyLimit(32))

	rec := postForm(r, url.Values{"input": {strings.Repeat("x", 100)}, "mode": {"encode"}})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "input is too large")
}

func TestExamplePage(t *testing.T) {
	r := newRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/example", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `id="original" rows="10" cols="80" readonly>H4sIAAAAAAAA/`)
	assert.Contains(t, body, "&lt;CEBDBlock")
	assert.Contains(t, body, `id="reencoded"`)
	assert.Contains(t, body, `<a href="/">Back</a>`)
}

func TestProcessJSON(t *testing.T) {
	r := newRouter(t)

	rec := postJSON(r, `{"input":"hello","mode":"encode","compress":false}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ProcessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "aGVsbG8=", resp.Output)
	assert.Equal(t, "encode", resp.Mode)
	assert.False(t, resp.Compressed)

	// compress defaults to the configured value
	rec = postJSON(r, `{"input":"hello","mode":"encode"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Compressed)
	assert.True(t, strings.HasPrefix(resp.Output, "H4sI"))
}

func TestProcessJSONFailures(t *testing.T) {
	r := newRouter(t)

	tests := []struct {
		name   string
		body   string
		status int
		kind   string
	}{
		{"bad padding", `{"input":"a===","mode":"decode","compress":false}`, http.StatusBadRequest, "MalformedTransportInput"},
		{"not gzip", `{"input":"aGVsbG8=","mode":"decode","compress":true}`, http.StatusBadRequest, "InvalidStreamHeader"},
		{"unknown mode", `{"input":"hello","mode":"both"}`, http.StatusBadRequest, "InvalidMode"},
		{"malformed body", `{"input":`, http.StatusBadRequest, KindBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(r, tt.body)
			assert.Equal(t, tt.status, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.kind, resp.Error.Kind)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestProcessJSONEmpty(t *testing.T) {
	r := newRouter(t)

	rec := postJSON(r, `{"input":"","mode":"decode"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ProcessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Empty)
	assert.Equal(t, "no input", resp.Message)
}

func TestProcessJSONTooLarge(t *testing.T) {
	r := newRouter(t, middleware.BodyLimit(16))

	rec := postJSON(r, `{"input":"`+strings.Repeat("x", 64)+`","mode":"encode"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestExampleJSON(t *testing.T) {
	r := newRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/example", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp["decoded"], 2601)
	assert.True(t, strings.HasPrefix(resp["reencoded"], "H4sI"))
}

func TestChecked(t *testing.T) {
	for _, v := range []string{"1", "on", "ON", "true", "yes"} {
		assert.True(t, checked(v), v)
	}
	for _, v := range []string{"", "0", "off", "false"} {
		assert.False(t, checked(v), v)
	}
}
