package ui

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"fininsight/app"
	"fininsight/internal/config"
	"fininsight/internal/dataset"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*Server
	cfg *config.Config
}

func newTestServer(t *testing.T, maxUpload int64) *testServer {
	t.Helper()
	cfg := config.Default()
	cfg.Server.GinMode = gin.TestMode
	cfg.Paths.UploadDir = t.TempDir()
	cfg.Paths.PlotDir = t.TempDir()
	cfg.Limits.MaxUploadBytes = maxUpload
	cfg.Analysis.IsolationTrees = 20

	storage := dataset.NewLocalFileStorage(&dataset.StorageConfig{
		BasePath:          cfg.Paths.UploadDir,
		MaxFileSize:       cfg.Limits.MaxUploadBytes,
		AllowedExtensions: []string{".csv"},
	})
	service := app.NewAnalysisService(app.OptionsFromConfig(cfg), nil)

	s, err := NewServer(cfg, service, storage, nil)
	require.NoError(t, err)
	return &testServer{Server: s, cfg: cfg}
}

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("action", "upload"))
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func (ts *testServer) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)
	return rec
}

// cookie returns the last Set-Cookie for name
func cookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			found = c
		}
	}
	return found
}

const sampleCSV = "amount,balance,region,is_online\n" +
	"10.5,100,north,true\n" +
	"12.0,80,south,false\n" +
	"9.75,120,north,true\n" +
	"30.1,60,east,false\n" +
	"11.2,95,west,true\n" +
	"15.0,70,south,true\n" +
	"8.4,130,north,false\n" +
	"14.3,90,east,true\n"

func TestIndex(t *testing.T) {
	ts := newTestServer(t, 1<<20)
	rec := ts.do(httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="action" value="upload"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestUpload_StoresCSV(t *testing.T) {
	ts := newTestServer(t, 1<<20)
	body, contentType := multipartUpload(t, "my data.csv", sampleCSV)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)

	rec := ts.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	uploaded := cookie(rec, uploadCookie)
	require.NotNil(t, uploaded)
	assert.Regexp(t, regexp.MustCompile(`^my_data_\d{14}_[0-9a-f]{6}\.csv$`), uploaded.Value)
	assert.Contains(t, rec.Body.String(), "Uploaded "+uploaded.Value+" (0.00 MB)")
	assert.FileExists(t, filepath.Join(ts.cfg.Paths.UploadDir, uploaded.Value))
}

func TestUpload_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"not csv", "report.xlsx", "Allowed file types: csv"},
		{"no file part", "", "No file part"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, 1<<20)
			body, contentType := multipartUpload(t, tt.filename, "a,b\n1,2\n")
			req := httptest.NewRequest(http.MethodPost, "/", body)
			req.Header.Set("Content-Type", contentType)

			rec := ts.do(req)
			require.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/", rec.Header().Get("Location"))

			flashed := cookie(rec, flashCookie)
			require.NotNil(t, flashed)
			page := ts.do(httptest.NewRequest(http.MethodGet, "/", nil), flashed)
			assert.Contains(t, page.Body.String(), tt.want)

			entries, err := os.ReadDir(ts.cfg.Paths.UploadDir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestUpload_TooLarge(t *testing.T) {
	ts := newTestServer(t, 1024)
	body, contentType := multipartUpload(t, "big.csv", "amount\n"+strings.Repeat("123.45\n", 400))
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)

	rec := ts.do(req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, tooLargeMessage, rec.Body.String())
}

func TestAnalyzeWithoutUpload(t *testing.T) {
	ts := newTestServer(t, 1<<20)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(url.Values{"action": {"analyze"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := ts.do(req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	page := ts.do(httptest.NewRequest(http.MethodGet, "/", nil), cookie(rec, flashCookie))
	assert.Contains(t, page.Body.String(), "No file uploaded yet. Please upload a CSV first.")
}

func TestAnalyzeRedirectsToResults(t *testing.T) {
	ts := newTestServer(t, 1<<20)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("action=analyze"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := ts.do(req, &http.Cookie{Name: uploadCookie, Value: "x_20240101000000_abcdef.csv"})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/results", rec.Header().Get("Location"))
}

func TestResults_Redirects(t *testing.T) {
	tests := []struct {
		name    string
		cookies []*http.Cookie
		want    string
	}{
		{"no upload", nil, "No file available for analysis. Please upload a CSV first."},
		{"missing file", []*http.Cookie{{Name: uploadCookie, Value: "gone_20240101000000_abcdef.csv"}}, "Uploaded file missing on server. Please re-upload."},
		{"path escape", []*http.Cookie{{Name: uploadCookie, Value: "../../etc/passwd"}}, "Uploaded file missing on server. Please re-upload."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, 1<<20)
			rec := ts.do(httptest.NewRequest(http.MethodGet, "/results", nil), tt.cookies...)

			require.Equal(t, http.StatusSeeOther, rec.Code)
			page := ts.do(httptest.NewRequest(http.MethodGet, "/", nil), cookie(rec, flashCookie))
			assert.Contains(t, page.Body.String(), tt.want)
		})
	}
}

func TestUploadThenResults(t *testing.T) {
	ts := newTestServer(t, 1<<20)
	body, contentType := multipartUpload(t, "accounts.csv", sampleCSV)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	uploaded := cookie(ts.do(req), uploadCookie)
	require.NotNil(t, uploaded)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/results", nil), uploaded)
	require.Equal(t, http.StatusOK, rec.Code)

	page := rec.Body.String()
	assert.Contains(t, page, "Column profile")
	assert.Contains(t, page, `class="dataframe table-sample"`)
	assert.Contains(t, page, "Quality: <strong>Excellent</strong>")

	m := regexp.MustCompile(`<img src="([^"]+)"`).FindStringSubmatch(page)
	require.Len(t, m, 2)
	assert.True(t, strings.HasPrefix(m[1], ts.cfg.Paths.PlotURLPrefix+"/"), m[1])

	img := ts.do(httptest.NewRequest(http.MethodGet, m[1], nil))
	assert.Equal(t, http.StatusOK, img.Code)
	assert.Equal(t, "image/png", img.Header().Get("Content-Type"))
}

func TestFlashRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	flash(c, "first")
	flash(c, "second")

	stored := cookie(rec, flashCookie)
	require.NotNil(t, stored)

	rec2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(rec2)
	c2.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c2.Request.AddCookie(stored)
	assert.Equal(t, []string{"first", "second"}, takeFlashes(c2))
	assert.Empty(t, takeFlashes(c2))
	assert.Equal(t, -1, cookie(rec2, flashCookie).MaxAge)
}
