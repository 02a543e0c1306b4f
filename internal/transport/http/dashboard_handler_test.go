package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "bvmtdash/internal/errors"
	"bvmtdash/internal/shared/testutil"
	"bvmtdash/pkg/contracts/domain"
)

const testTemplate = `<title>{{.Title}}</title><h1>{{.Heading}}</h1>
<select>{{range .Sectors}}<option value="{{.}}"{{if eq . $.Selected}} selected{{end}}>{{.}}</option>{{end}}</select>
<p id="error-box"{{if not .InitialError}} hidden{{end}}>{{.InitialError}}</p>
<script type="application/json" id="initial-view">{{.InitialView}}</script>`

var initialViewRe = regexp.MustCompile(`(?s)<script type="application/json" id="initial-view">(.*)</script>`)

func newDashboardHandler(t *testing.T, svc SectorServiceInterface) *DashboardHandler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	fsys := fstest.MapFS{IndexTemplate: &fstest.MapFile{Data: []byte(testTemplate)}}

	h, err := NewDashboardHandler(fsys, svc, logger, apierrors.NewErrorHandler(logger, false))
	require.NoError(t, err)
	return h
}

func TestDashboardHandler_RendersDefaultSector(t *testing.T) {
	svc := new(MockSectorService)
	svc.On("Sectors").Return([]string{"Assurances", "Banques"}, "Banques")
	svc.On("Select", "Banques").Return(banquesView(), nil)

	rec := httptest.NewRecorder()
	newDashboardHandler(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "<title>Dashboard</title>")
	assert.Contains(t, body, PageHeading)
	assert.Contains(t, body, `<option value="Banques" selected>`)
	assert.Contains(t, body, `<option value="Assurances">`)

	m := initialViewRe.FindStringSubmatch(body)
	require.Len(t, m, 2)
	var view domain.SectorView
	require.NoError(t, json.Unmarshal([]byte(m[1]), &view))
	assert.Equal(t, "Banques", view.Sector)
	assert.Len(t, view.Figure.Data, 1)
}

func TestDashboardHandler_NoSectors(t *testing.T) {
	svc := new(MockSectorService)
	svc.On("Sectors").Return([]string{}, "")

	rec := httptest.NewRecorder()
	newDashboardHandler(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	svc.AssertNotCalled(t, "Select", "")
}

func TestDashboardHandler_SelectFailureKeepsPage(t *testing.T) {
	svc := new(MockSectorService)
	svc.On("Sectors").Return([]string{"Assurances", "Banques"}, "Assurances")
	svc.On("Select", "Assurances").Return(domain.SectorView{},
		apierrors.NewParsingError(`sector "Assurances" company "STAR" column "resultat / vc"`, apierrors.ErrMalformedValue))

	rec := httptest.NewRecorder()
	newDashboardHandler(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, `<option value="Banques">`)
	assert.Contains(t, body, `<option value="Assurances" selected>`)
	assert.Contains(t, body, `<p id="error-box">`)
	assert.Contains(t, body, "STAR")
	assert.Contains(t, body, "malformed numeric value")

	m := initialViewRe.FindStringSubmatch(body)
	require.Len(t, m, 2)
	var view domain.SectorView
	require.NoError(t, json.Unmarshal([]byte(m[1]), &view))
	assert.Empty(t, view.Sector)
	assert.Empty(t, view.Rows)
	assert.True(t, view.Figure.IsEmpty())
}

func TestDashboardHandler_ErrorBoxHiddenOnSuccess(t *testing.T) {
	svc := new(MockSectorService)
	svc.On("Sectors").Return([]string{"Banques"}, "Banques")
	svc.On("Select", "Banques").Return(banquesView(), nil)

	rec := httptest.NewRecorder()
	newDashboardHandler(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<p id="error-box" hidden></p>`)
}

func TestNewDashboardHandler_MissingTemplate(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	_, err := NewDashboardHandler(fstest.MapFS{}, new(MockSectorService), logger, apierrors.NewErrorHandler(logger, false))
	assert.Error(t, err)
}
