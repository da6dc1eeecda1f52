package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"tourops/internal/backup"
	"tourops/internal/database"
	"tourops/internal/repository/local"
	"tourops/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	Pagination *struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		Total      int64 `json:"total"`
		TotalPages int   `json:"total_pages"`
	} `json:"pagination"`
}

func newTestRouter(t *testing.T, backups backup.Store) *gin.Engine {
	t.Helper()
	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	ds, err := local.New(db)
	require.NoError(t, err)

	r := gin.New()
	RegisterAll(r.Group(""), service.New(ds, backups, nil, zap.NewNop()))
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

type record struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

func TestCatalogRoutes(t *testing.T) {
	r := newTestRouter(t, nil)

	code, env := do(t, r, http.MethodPost, "/api/guides", map[string]any{"name": "Nguyễn Văn An", "phone": "0901"})
	require.Equal(t, http.StatusCreated, code, env.Error)
	g := decode[record](t, env.Data)
	assert.Equal(t, "active", g.Status)

	code, env = do(t, r, http.MethodPost, "/api/guides", map[string]any{"name": "nguyen van an"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "error", env.Status)

	code, env = do(t, r, http.MethodPost, "/api/guides", map[string]any{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, code, env.Error)

	code, env = do(t, r, http.MethodPatch, "/api/guides/"+g.ID, map[string]any{"phone": "0999"})
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, "Nguyễn Văn An", decode[record](t, env.Data).Name)

	code, env = do(t, r, http.MethodPost, "/api/guides/"+g.ID+"/toggle-status", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, "inactive", decode[record](t, env.Data).Status)

	code, env = do(t, r, http.MethodPost, "/api/guides/"+g.ID+"/duplicate", nil)
	require.Equal(t, http.StatusCreated, code, env.Error)

	code, env = do(t, r, http.MethodGet, "/api/guides?search=an&status=all&limit=1", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	require.NotNil(t, env.Pagination)
	assert.EqualValues(t, 2, env.Pagination.Total)
	assert.Equal(t, 2, env.Pagination.TotalPages)
	assert.Len(t, decode[[]record](t, env.Data), 1)

	code, _ = do(t, r, http.MethodGet, "/api/guides?status=archived", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, r, http.MethodDelete, "/api/guides/"+g.ID, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = do(t, r, http.MethodGet, "/api/guides/"+g.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = do(t, r, http.MethodGet, "/api/guides/not-an-id", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = do(t, r, http.MethodPatch, "/api/guides/"+g.ID, "[1,2]")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCatalogRoutes_EveryKindMounted(t *testing.T) {
	r := newTestRouter(t, nil)
	for _, path := range []string{
		"guides", "companies", "nationalities", "provinces",
		"destinations", "shoppings", "expense-categories", "detailed-expenses", "tours",
	} {
		code, env := do(t, r, http.MethodGet, "/api/"+path, nil)
		assert.Equal(t, http.StatusOK, code, path)
		assert.JSONEq(t, "[]", string(env.Data), path)
	}
}

type tourBody struct {
	ID          string            `json:"id"`
	TourCode    string            `json:"tour_code"`
	TotalGuests int               `json:"total_guests"`
	TotalDays   int               `json:"total_days"`
	Summary     map[string]string `json:"summary"`
	Totals      map[string]string `json:"totals"`
	Meals       []struct {
		ID string `json:"id"`
	} `json:"meals"`
	LineTotals map[string]string `json:"line_totals"`
}

func TestTourRoutes(t *testing.T) {
	r := newTestRouter(t, nil)

	code, env := do(t, r, http.MethodPost, "/api/tours", map[string]any{
		"tour_code":  "DN-2506",
		"adults":     2,
		"children":   1,
		"start_date": "2025-06-01T00:00:00Z",
		"end_date":   "2025-06-03T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	tour := decode[tourBody](t, env.Data)
	assert.Equal(t, 3, tour.TotalGuests)
	assert.Equal(t, 3, tour.TotalDays)

	code, _ = do(t, r, http.MethodPost, "/api/tours", map[string]any{"tour_code": "dn-2506"})
	assert.Equal(t, http.StatusConflict, code)

	code, env = do(t, r, http.MethodPost, "/api/tours/"+tour.ID+"/meals", map[string]any{"name": "Hải sản", "price": "200000"})
	require.Equal(t, http.StatusCreated, code, env.Error)
	tour = decode[tourBody](t, env.Data)
	require.Len(t, tour.Meals, 1)
	mealID := tour.Meals[0].ID
	assert.Equal(t, "600000", tour.LineTotals[mealID])
	assert.Equal(t, "600000", tour.Summary["total_tabs"])

	code, env = do(t, r, http.MethodPut, "/api/tours/"+tour.ID+"/meals/"+mealID, map[string]any{"name": "Hải sản", "price": "200000", "guests": 2})
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, "400000", decode[tourBody](t, env.Data).Summary["final_total"])

	code, env = do(t, r, http.MethodPatch, "/api/tours/"+tour.ID, map[string]any{"summary": map[string]any{"advance_payment": "100000"}})
	require.Equal(t, http.StatusOK, code, env.Error)

	code, env = do(t, r, http.MethodGet, "/api/tours/"+tour.ID+"/summary", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	view := decode[struct {
		Summary map[string]string `json:"summary"`
		Totals  map[string]string `json:"totals"`
	}](t, env.Data)
	assert.Equal(t, "300000", view.Summary["total_after_advance"])
	assert.Equal(t, "400000", view.Totals["meals"])

	code, _ = do(t, r, http.MethodDelete, "/api/tours/"+tour.ID+"/meals/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = do(t, r, http.MethodDelete, "/api/tours/"+tour.ID+"/meals/"+mealID, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, "0", decode[tourBody](t, env.Data).Summary["total_tabs"])

	code, _ = do(t, r, http.MethodPost, "/api/tours/"+uuid.NewString()+"/expenses", map[string]any{"price": "1"})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDataRoutes(t *testing.T) {
	r := newTestRouter(t, nil)

	code, env := do(t, r, http.MethodPost, "/api/provinces", map[string]any{"name": "Huế"})
	require.Equal(t, http.StatusCreated, code, env.Error)

	req := httptest.NewRequest(http.MethodGet, "/api/data/export", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	export := w.Body.String()
	assert.Contains(t, export, `"Huế"`)

	code, env = do(t, r, http.MethodDelete, "/api/data", nil)
	require.Equal(t, http.StatusOK, code, env.Error)

	code, env = do(t, r, http.MethodPost, "/api/data/import", export)
	require.Equal(t, http.StatusOK, code, env.Error)
	res := decode[service.ImportResult](t, env.Data)
	assert.Equal(t, 1, res.Counts["provinces"])

	code, _ = do(t, r, http.MethodPost, "/api/data/import", "{")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, r, http.MethodGet, "/api/backups", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestBackupRoutes(t *testing.T) {
	store, err := backup.NewFS(t.TempDir())
	require.NoError(t, err)
	r := newTestRouter(t, store)

	code, env := do(t, r, http.MethodPost, "/api/companies", map[string]any{"name": "Saigontourist"})
	require.Equal(t, http.StatusCreated, code, env.Error)

	code, env = do(t, r, http.MethodPost, "/api/backups", nil)
	require.Equal(t, http.StatusCreated, code, env.Error)
	info := decode[backup.Info](t, env.Data)

	code, _ = do(t, r, http.MethodDelete, "/api/data", nil)
	require.Equal(t, http.StatusOK, code)

	code, env = do(t, r, http.MethodPost, "/api/backups/restore", map[string]any{"name": info.Name})
	require.Equal(t, http.StatusOK, code, env.Error)

	code, env = do(t, r, http.MethodGet, "/api/companies", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]record](t, env.Data), 1)

	code, _ = do(t, r, http.MethodPost, "/api/backups/restore", map[string]any{"name": "../../x"})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = do(t, r, http.MethodPost, "/api/backups/restore", map[string]any{"name": "tourops-20000101-000000.000.json"})
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = do(t, r, http.MethodPost, "/api/backups/restore", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, code)
}
