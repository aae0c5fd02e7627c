package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/01moynul/calibration-catalog/internal/auth"
	"github.com/01moynul/calibration-catalog/internal/chatbot"
	"github.com/01moynul/calibration-catalog/internal/handlers"
	"github.com/01moynul/calibration-catalog/internal/models"
	"github.com/01moynul/calibration-catalog/internal/routes"
	"github.com/01moynul/calibration-catalog/internal/storage"
	"github.com/01moynul/calibration-catalog/internal/store"
	"github.com/01moynul/calibration-catalog/internal/testutil"
)

const testBaseURL = "http://api.test"

type recordingNotifier struct {
	mu           sync.Mutex
	quotes       []*models.QuoteRequest
	messages     []*models.ContactMessage
	applications []*models.JobApplication
	unbounded    int // calls whose context had no deadline
	err          error
}

func (n *recordingNotifier) record(ctx context.Context) {
	if _, ok := ctx.Deadline(); !ok {
		n.unbounded++
	}
}

func (n *recordingNotifier) QuoteSubmitted(ctx context.Context, q *models.QuoteRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.record(ctx)
	n.quotes = append(n.quotes, q)
	return n.err
}

func (n *recordingNotifier) MessageReceived(ctx context.Context, m *models.ContactMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.record(ctx)
	n.messages = append(n.messages, m)
	return n.err
}

func (n *recordingNotifier) ApplicationReceived(ctx context.Context, a *models.JobApplication) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.record(ctx)
	n.applications = append(n.applications, a)
	return n.err
}

type testEnv struct {
	t        *testing.T
	db       *gorm.DB
	router   *gin.Engine
	uploads  string
	notifier *recordingNotifier
	issuer   *auth.Issuer
	token    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.OpenDB(t)
	uploads := t.TempDir()
	issuer := auth.NewIssuer("test-secret", time.Hour)
	notifier := &recordingNotifier{}

	h := &handlers.Handlers{
		DB:       db,
		Store:    store.New(db),
		Files:    storage.NewLocal(uploads, testBaseURL, 1<<20),
		Notifier: notifier,
		Chatbot: chatbot.NewService(chatbot.NewMemoryStore(time.Hour), nil,
			&handlers.LeadRecorder{DB: db, Notifier: notifier}),
		Tokens: issuer,
	}

	token, err := issuer.GenerateToken(1, "admin@example.com")
	require.NoError(t, err)

	return &testEnv{
		t:        t,
		db:       db,
		router:   routes.SetupRouter(h, routes.Options{CORSOrigin: "http://localhost:5173", UploadDir: uploads}),
		uploads:  uploads,
		notifier: notifier,
		issuer:   issuer,
		token:    token,
	}
}

func (e *testEnv) request(method, path string, body io.Reader, contentType string, admin bool) *httptest.ResponseRecorder {
	e.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if admin {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// get performs a public GET.
func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	return e.request(http.MethodGet, path, nil, "", false)
}

// adminGet performs an authenticated GET.
func (e *testEnv) adminGet(path string) *httptest.ResponseRecorder {
	return e.request(http.MethodGet, path, nil, "", true)
}

func (e *testEnv) sendJSON(method, path string, payload any, admin bool) *httptest.ResponseRecorder {
	e.t.Helper()
	var body []byte
	switch p := payload.(type) {
	case string:
		body = []byte(p)
	default:
		var err error
		body, err = json.Marshal(payload)
		require.NoError(e.t, err)
	}
	return e.request(method, path, bytes.NewReader(body), "application/json", admin)
}

func (e *testEnv) sendForm(method, path string, form *formBody, admin bool) *httptest.ResponseRecorder {
	e.t.Helper()
	body, contentType := form.build(e.t)
	return e.request(method, path, body, contentType, admin)
}

// uploadedPath maps a public upload URL back to its file on disk.
func (e *testEnv) uploadedPath(url string) string {
	rel := strings.TrimPrefix(url, testBaseURL+"/uploads/")
	return filepath.Join(e.uploads, filepath.FromSlash(rel))
}

func (e *testEnv) fileExists(url string) bool {
	_, err := os.Stat(e.uploadedPath(url))
	return err == nil
}

type formFile struct {
	field, filename, content string
}

// formBody builds multipart requests.
type formBody struct {
	fields [][2]string
	files  []formFile
}

func newForm() *formBody { return &formBody{} }

func (f *formBody) field(name, value string) *formBody {
	f.fields = append(f.fields, [2]string{name, value})
	return f
}

func (f *formBody) file(field, filename, content string) *formBody {
	f.files = append(f.files, formFile{field, filename, content})
	return f
}

func (f *formBody) build(t *testing.T) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, kv := range f.fields {
		require.NoError(t, mw.WriteField(kv[0], kv[1]))
	}
	for _, ff := range f.files {
		w, err := mw.CreateFormFile(ff.field, ff.filename)
		require.NoError(t, err)
		_, err = io.WriteString(w, ff.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type errorBody struct {
	Message string `json:"message"`
	Details string `json:"details"`
}

// createCategory posts a category and returns the response tree.
func (e *testEnv) createCategory(payload string) store.CategoryTree {
	e.t.Helper()
	w := e.sendJSON(http.MethodPost, "/api/categories", payload, true)
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[struct {
		Category store.CategoryTree `json:"category"`
	}](e.t, w).Category
}

type productResponse struct {
	Message string         `json:"message"`
	Product models.Product `json:"product"`
}

// createProduct posts a minimal product in category/subcategory.
func (e *testEnv) createProduct(name, category, subcategory string) models.Product {
	e.t.Helper()
	form := newForm().field("name", name).field("category", category)
	if subcategory != "" {
		form.field("subcategory", subcategory)
	}
	w := e.sendForm(http.MethodPost, "/api/products", form, true)
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[productResponse](e.t, w).Product
}
