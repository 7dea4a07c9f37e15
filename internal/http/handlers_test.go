package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/catalog"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/domain"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/service"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/sizing"
)

type stubCatalogs struct {
	cat *domain.Catalog
	err error
}

func (s *stubCatalogs) LoadCatalog(context.Context) (*domain.Catalog, error) { return s.cat, s.err }

func (s *stubCatalogs) ReplaceCatalog(_ context.Context, cat *domain.Catalog) error {
	s.cat = cat
	return s.err
}

type stubRuns map[string]*domain.SizingRun

func (s stubRuns) SaveRun(_ context.Context, run *domain.SizingRun) error {
	s[run.ID] = run
	return nil
}

func (s stubRuns) GetRun(_ context.Context, id string) (*domain.SizingRun, error) {
	if run, ok := s[id]; ok {
		return run, nil
	}
	return nil, domain.ErrRunNotFound
}

func newApp(t *testing.T, store *stubCatalogs) *fiber.App {
	return newAppWith(t, service.Deps{Catalogs: store})
}

func newAppWith(t *testing.T, deps service.Deps) *fiber.App {
	t.Helper()
	deps.Runs = stubRuns{}
	deps.Defaults = domain.SystemParameters{VoltageV: 48, AutonomyDays: 2, Simultaneity: 0.8, SafetyMargin: 1.2, Efficiency: 0.85}
	deps.Options = sizing.DefaultOptions()
	app := fiber.New()
	Register(app, service.New(deps))
	return app
}

func seeded() *stubCatalogs {
	return &stubCatalogs{cat: &domain.Catalog{
		Equipment: []domain.Equipment{{Name: "Fridge", PowerW: 150, PeakFactor: 3}},
		Inverters: []domain.InverterModel{{Name: "INV-1K", NominalKW: 1, PeakKW: 2, MaxParallel: 4}},
		Batteries: []domain.BatteryModel{{Name: "BAT-200", DoDPct: 50, EfficiencyPct: 90, CapacityAh: 200, MaxSeries: 4, MaxParallel: 10}},
	}}
}

func do(t *testing.T, app *fiber.App, method, path, contentType string, body io.Reader) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set(fiber.HeaderContentType, contentType)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	status, body := do(t, newApp(t, seeded()), fiber.MethodGet, "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", string(body))
}

func TestCreateAndFetchRun(t *testing.T) {
	app := newApp(t, seeded())

	status, body := do(t, app, fiber.MethodPost, "/sizing", fiber.MIMEApplicationJSON,
		bytes.NewBufferString(`{"loads":[{"model":"Fridge","quantity":2,"hours_per_day":24}]}`))
	require.Equal(t, fiber.StatusCreated, status, string(body))

	var run domain.SizingRun
	require.NoError(t, json.Unmarshal(body, &run))
	assert.NotEmpty(t, run.ID)
	assert.InDelta(t, 0.288, run.Summary.ContinuousKW, 1e-9)
	assert.True(t, domain.Feasible(run.Inverters))
	assert.True(t, domain.Feasible(run.Batteries))

	status, body = do(t, app, fiber.MethodGet, "/sizing/"+run.ID, "", nil)
	require.Equal(t, fiber.StatusOK, status)
	var fetched domain.SizingRun
	require.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, run.ID, fetched.ID)

	status, body = do(t, app, fiber.MethodGet, "/sizing", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))
}

func TestCreateRunErrors(t *testing.T) {
	app := newApp(t, seeded())

	status, body := do(t, app, fiber.MethodPost, "/sizing", fiber.MIMEApplicationJSON,
		bytes.NewBufferString(`{"loads":[{"model":"Heater","hours_per_day":1}]}`))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, string(body), "Heater")

	status, _ = do(t, app, fiber.MethodPost, "/sizing", fiber.MIMEApplicationJSON,
		bytes.NewBufferString(`{"loads":[{"power_w":-100,"hours_per_day":3}]}`))
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = do(t, app, fiber.MethodPost, "/sizing", fiber.MIMEApplicationJSON, bytes.NewBufferString(`{"loads":`))
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = do(t, app, fiber.MethodGet, "/sizing/missing", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestCatalogRoutes(t *testing.T) {
	app := newApp(t, seeded())

	status, body := do(t, app, fiber.MethodGet, "/catalog/inverters", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	var inverters []domain.InverterModel
	require.NoError(t, json.Unmarshal(body, &inverters))
	require.Len(t, inverters, 1)
	assert.Equal(t, "INV-1K", inverters[0].Name)

	status, body = do(t, app, fiber.MethodGet, "/catalog/equipment", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), "Fridge")

	status, body = do(t, app, fiber.MethodGet, "/catalog/batteries", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), "BAT-200")

	status, _ = do(t, newApp(t, &stubCatalogs{err: errors.New("db down")}), fiber.MethodGet, "/catalog", "", nil)
	assert.Equal(t, fiber.StatusInternalServerError, status)
}

func workbookBytes(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet(catalog.SheetInverters)
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow(catalog.SheetInverters, "A1", &[]interface{}{"MODELO", "P. NOMINAL", "P. PICO", "QTD. MAX. INV."}))
	require.NoError(t, f.SetSheetRow(catalog.SheetInverters, "A2", &[]interface{}{"INV-3K", 3, 6, 4}))
	require.NoError(t, f.DeleteSheet("Sheet1"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func multipartBody(t *testing.T, data []byte) (string, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "catalog.xlsx")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return w.FormDataContentType(), &buf
}

func TestImportCatalog(t *testing.T) {
	store := seeded()
	app := newApp(t, store)

	ct, body := multipartBody(t, workbookBytes(t))
	status, out := do(t, app, fiber.MethodPost, "/catalog/import", ct, body)
	require.Equal(t, fiber.StatusOK, status, string(out))
	assert.JSONEq(t, `{"equipment":0,"inverters":1,"batteries":0}`, string(out))
	require.Len(t, store.cat.Inverters, 1)
	assert.Equal(t, "INV-3K", store.cat.Inverters[0].Name)

	ct, body = multipartBody(t, []byte("not a workbook"))
	status, _ = do(t, app, fiber.MethodPost, "/catalog/import", ct, body)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INV-3K", store.cat.Inverters[0].Name)

	status, _ = do(t, app, fiber.MethodPost, "/catalog/import", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = do(t, app, fiber.MethodPost, "/catalog/import", fiber.MIMEApplicationJSON,
		bytes.NewBufferString(`{"source":"/tmp/catalog.xlsx"}`))
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestImportCatalogSourceMustBeAllowed(t *testing.T) {
	data := workbookBytes(t)
	var adminHits int
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Path == "/admin/export" {
			adminHits++
		}
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	local := filepath.Join(t.TempDir(), "private.xlsx")
	require.NoError(t, os.WriteFile(local, data, 0o600))

	store := seeded()
	app := newAppWith(t, service.Deps{
		Catalogs:       store,
		Sources:        catalog.NewLoader(nil),
		AllowedSources: []string{srv.URL + "/catalogs/"},
	})

	for _, source := range []string{local, "file://" + local, "/etc/hostname", srv.URL + "/admin/export"} {
		body, err := json.Marshal(map[string]string{"source": source})
		require.NoError(t, err)
		status, out := do(t, app, fiber.MethodPost, "/catalog/import", fiber.MIMEApplicationJSON, bytes.NewReader(body))
		assert.Equal(t, fiber.StatusForbidden, status, source)
		assert.Contains(t, string(out), "not allowed", source)
	}
	assert.Zero(t, adminHits)
	assert.Equal(t, "INV-1K", store.cat.Inverters[0].Name)

	status, out := do(t, app, fiber.MethodPost, "/catalog/import", fiber.MIMEApplicationJSON,
		bytes.NewBufferString(`{"source":"`+srv.URL+`/catalogs/solar.xlsx"}`))
	require.Equal(t, fiber.StatusOK, status, string(out))
	assert.Equal(t, "INV-3K", store.cat.Inverters[0].Name)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, fiber.StatusBadRequest, statusFor(&catalog.CellError{Sheet: "Baterias", Row: 2}))
	assert.Equal(t, fiber.StatusBadRequest, statusFor(sizing.ErrDivisionByZero))
	assert.Equal(t, fiber.StatusNotFound, statusFor(domain.ErrRunNotFound))
	assert.Equal(t, fiber.StatusForbidden, statusFor(catalog.ErrNotAllowed))
	assert.Equal(t, fiber.StatusRequestEntityTooLarge, statusFor(catalog.ErrTooLarge))
	assert.Equal(t, fiber.StatusInternalServerError, statusFor(errors.New("boom")))
}
