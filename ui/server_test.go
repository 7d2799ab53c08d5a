package ui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"goeda/adapters/excel"
	"goeda/adapters/store/filestore"
	"goeda/adapters/store/memory"
	"goeda/app"
	"goeda/internal/cache"
	"goeda/ports"
	"goeda/ui/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const salesCSV = `region,product,units,price,sold_on
north,apple,3,1.5,2024-01-01
south,pear,5,2.25,2024-01-02
north,pear,,3,2024-01-03
east,apple,2,1.75,2024-01-04
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	files, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	return newTestServerWithFiles(t, files)
}

func newTestServerWithFiles(t *testing.T, files ports.FileStorage) *Server {
	t.Helper()
	reports := cache.NewMemoryBlob(0)
	service := app.NewAnalysisService(memory.NewDatasetRepository(), files, excel.NewDataReader(excel.DefaultReaderConfig()), reports, app.DefaultServiceConfig())
	t.Cleanup(func() {
		service.Close()
		reports.Stop()
	})

	opts := DefaultOptions()
	opts.GinMode = gin.TestMode
	srv, err := NewServer(service, opts)
	require.NoError(t, err)
	return srv
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func do(t *testing.T, srv *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, srv *Server, target, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, filename, content)
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func apiDatasetID(t *testing.T, srv *Server) string {
	t.Helper()
	rec := upload(t, srv, "/api/datasets", "sales.csv", salesCSV)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := gjson.Get(rec.Body.String(), "dataset.id").String()
	require.NotEmpty(t, id)
	return id
}

func TestIndexAwaitsUpload(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Awaiting file upload. Please upload a CSV or Excel file from the sidebar.")
	assert.Contains(t, body, "<p>Welcome to the EDA Web App!")
	assert.Contains(t, body, "Upload your dataset")
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestUploadRedirectsToDashboard(t *testing.T) {
	srv := newTestServer(t)

	rec := upload(t, srv, "/upload", "sales.csv", salesCSV)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	location := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "/datasets/"), location)

	page := do(t, srv, http.MethodGet, location)
	require.Equal(t, http.StatusOK, page.Code)
	body := page.Body.String()
	assert.Contains(t, body, "File uploaded successfully!")
	assert.Contains(t, body, "Converted column &#39;sold_on&#39; to Datetime type.")
	assert.Contains(t, body, "Dataset Overview")
	assert.Contains(t, body, "Rows: 4, Columns: 5")
	assert.Contains(t, body, "sales.csv")
}

func TestUploadErrorRerendersIndex(t *testing.T) {
	srv := newTestServer(t)

	rec := upload(t, srv, "/upload", "notes.txt", "hello")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unsupported file type. Please upload a CSV or Excel (.xlsx) file.")

	rec = upload(t, srv, "/upload", "broken.xlsx", "not a zip archive")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error loading file. Please ensure it&#39;s a valid CSV or Excel format: ")
}

func TestDashboardTabs(t *testing.T) {
	srv := newTestServer(t)
	id := apiDatasetID(t, srv)

	rec := do(t, srv, http.MethodGet, "/datasets/"+id+"?tab=statistics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Descriptive Statistics (Numeric Data)")
	assert.Contains(t, body, "Value Counts")
	assert.Contains(t, body, "<th>north</th><td>2</td>")

	rec = do(t, srv, http.MethodGet, "/datasets/"+id+"?tab=statistics&column=product")
	assert.Contains(t, rec.Body.String(), "<th>apple</th><td>2</td>")

	rec = do(t, srv, http.MethodGet, "/datasets/"+id+"?tab=visualization&viz=histogram")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="chart"`)
	assert.Contains(t, rec.Body.String(), "Choose Visualization Type")

	rec = do(t, srv, http.MethodGet, "/datasets/"+id+"?tab=visualization")
	assert.Contains(t, rec.Body.String(), "<h3>Correlation Matrix</h3>")

	rec = do(t, srv, http.MethodGet, "/datasets/"+id+"?tab=visualization&viz=scatter-matrix")
	assert.Contains(t, rec.Body.String(), "Requires at least three numeric columns for an effective matrix.")
	assert.NotContains(t, rec.Body.String(), `id="chart"`)
}

func TestDashboardUnknownDataset(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/datasets/not-an-id")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodGet, "/datasets/0190a0b4-7c6e-7d8a-9b1c-2d3e4f5a6b7c")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIDatasets(t *testing.T) {
	srv := newTestServer(t)
	id := apiDatasetID(t, srv)

	rec := do(t, srv, http.MethodGet, "/api/datasets")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), gjson.Get(rec.Body.String(), "count").Int())
	assert.Equal(t, "sales.csv", gjson.Get(rec.Body.String(), "datasets.0.original_filename").String())

	rec = do(t, srv, http.MethodGet, "/api/datasets/"+id)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, gjson.Get(rec.Body.String(), "id").String())
	assert.Equal(t, int64(4), gjson.Get(rec.Body.String(), "dataset.row_count").Int())

	rec = do(t, srv, http.MethodGet, "/api/datasets/"+id+"/overview")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(4), gjson.Get(rec.Body.String(), "rows").Int())
	assert.Equal(t, "datetime64[ns]", gjson.Get(rec.Body.String(), `dtypes.#(column=="sold_on").dtype`).String())

	rec = do(t, srv, http.MethodGet, "/api/datasets/"+id+"/statistics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `["units","price"]`, gjson.Get(rec.Body.String(), "describe.#.column").Raw)
	assert.Equal(t, "units", gjson.Get(rec.Body.String(), "missing.0.column").String())

	rec = do(t, srv, http.MethodGet, "/api/datasets/"+id+"/visualizations")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Correlation Heatmap", gjson.Get(rec.Body.String(), "visualizations.0").String())

	rec = do(t, srv, http.MethodGet, "/api/datasets?limit=zero")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIValueCounts(t *testing.T) {
	srv := newTestServer(t)
	id := apiDatasetID(t, srv)

	rec := do(t, srv, http.MethodGet, "/api/datasets/"+id+"/value-counts?column=region")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "north", gjson.Get(rec.Body.String(), "counts.0.value").String())
	assert.Equal(t, int64(2), gjson.Get(rec.Body.String(), "counts.0.count").Int())

	rec = do(t, srv, http.MethodGet, "/api/datasets/"+id+"/value-counts?column=units")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", gjson.Get(rec.Body.String(), "code").String())

	rec = do(t, srv, http.MethodGet, "/api/datasets/"+id+"/value-counts?column=nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/datasets/"+id+"/value-counts")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPICharts(t *testing.T) {
	srv := newTestServer(t)
	id := apiDatasetID(t, srv)
	base := "/api/datasets/" + id + "/charts?"

	rec := do(t, srv, http.MethodGet, base+url.Values{"type": {"box"}, "group": {"region"}}.Encode())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Box Plot of units grouped by region", gjson.Get(rec.Body.String(), "figure.layout.title.text").String())
	assert.Equal(t, int64(500), gjson.Get(rec.Body.String(), "figure.layout.height").Int())

	rec = do(t, srv, http.MethodGet, base+"type=scatter-matrix")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, gjson.Get(rec.Body.String(), "figure").Exists())
	assert.Equal(t, "warning", gjson.Get(rec.Body.String(), "notice.level").String())

	rec = do(t, srv, http.MethodGet, base+"type=sunburst&path=")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Please select columns for the hierarchy path.", gjson.Get(rec.Body.String(), "notice.message").String())

	rec = do(t, srv, http.MethodGet, base+"type=sunburst&path=region&path=product")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sunburst", gjson.Get(rec.Body.String(), "figure.data.0.type").String())

	rec = do(t, srv, http.MethodGet, base+"type=pie")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "error", gjson.Get(rec.Body.String(), "notice.level").String())

	rec = do(t, srv, http.MethodGet, base)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/datasets/bogus/charts?type=box")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", gjson.Get(rec.Body.String(), "code").String())
}

func TestAPIUploadRejectsOversizedFile(t *testing.T) {
	srv := newTestServer(t)
	srv.options.MaxUploadBytes = 8

	rec := upload(t, srv, "/api/datasets", "sales.csv", salesCSV)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "TOO_LARGE", gjson.Get(rec.Body.String(), "code").String())
}

// countingReader records how many body bytes the handler pulled.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func TestAPIUploadStopsReadingOversizedBody(t *testing.T) {
	srv := newTestServer(t)
	srv.options.MaxUploadBytes = 1 << 20

	payload := "a,b\n" + strings.Repeat("1,2\n", 4<<20)
	body, contentType := multipartBody(t, "big.csv", payload)
	total := int64(body.Len())
	counter := &countingReader{r: body}

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", counter)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
	assert.Equal(t, "TOO_LARGE", gjson.Get(rec.Body.String(), "code").String())
	assert.LessOrEqual(t, counter.n, srv.options.MaxUploadBytes+multipartOverhead+1)
	assert.Less(t, counter.n, total)
}

func TestAPIUploadRejectsDeclaredOversizedLength(t *testing.T) {
	srv := newTestServer(t)
	srv.options.MaxUploadBytes = 1 << 10

	body, contentType := multipartBody(t, "big.csv", "a\n"+strings.Repeat("1\n", 64<<10))
	req := httptest.NewRequest(http.MethodPost, "/api/datasets", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

type brokenStorage struct{}

func (brokenStorage) Save(context.Context, string, []byte) (string, error) {
	return "", errors.New("open /srv/secret/uploads/tmp123: permission denied")
}

func (brokenStorage) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("open /srv/secret/uploads/tmp123: permission denied")
}

func TestStorageFailureHidesCause(t *testing.T) {
	srv := newTestServerWithFiles(t, brokenStorage{})

	rec := upload(t, srv, "/api/datasets", "sales.csv", salesCSV)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", gjson.Get(rec.Body.String(), "code").String())
	assert.Equal(t, "Internal server error", gjson.Get(rec.Body.String(), "error").String())
	assert.NotContains(t, rec.Body.String(), "/srv/secret")

	rec = upload(t, srv, "/upload", "sales.csv", salesCSV)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Internal server error")
	assert.NotContains(t, rec.Body.String(), "/srv/secret")
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", gjson.Get(rec.Body.String(), "status").String())
}
