package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skilltrack-server-go/grid"
	"skilltrack-server-go/models"
	"skilltrack-server-go/tracker"
)

// stubRoster implements tracker.RosterStore without Redis.
type stubRoster struct {
	students []models.StudentIdentity
}

func (r *stubRoster) GetEnrolledStudents(key models.ClassKey) ([]models.StudentIdentity, error) {
	return r.students, nil
}

func newSyncRouter(t *testing.T, roster tracker.RosterStore) (*gin.Engine, *grid.Workbook) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	wb, err := grid.OpenWorkbook(filepath.Join(t.TempDir(), "tracker.xlsx"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = wb.Close() })

	table := wb.SkillTable()
	require.NoError(t, table.WriteHeader(2, "S1 Front Float"))
	_, err = table.AppendStudent("Alex", "Smith")
	require.NoError(t, err)

	engine := tracker.NewEngine(roster, table, wb.Tracker())
	h := NewAPIHandler(nil, engine, wb)

	router := gin.New()
	router.POST("/api/sync", h.RunSync)
	router.POST("/api/skill-table/students", h.AddCanonicalStudent)
	return router, wb
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRunSyncHandlerEndToEnd(t *testing.T) {
	roster := &stubRoster{students: []models.StudentIdentity{
		{FirstName: "Alex", LastName: "Smith"},
	}}
	router, wb := newSyncRouter(t, roster)

	// Instructor's completed mark sits in the slot's ending column.
	require.NoError(t, wb.Tracker().WriteCell(tracker.PrimaryBlockTop, 3, "X"))

	w := postJSON(router, "/api/sync", models.ClassKey{
		Program: "Stage 1", Day: "Monday", Time: "16:00", Site: "Main Pool",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Message string             `json:"message"`
		Summary models.SyncSummary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Sync complete", resp.Message)
	assert.Equal(t, 1, resp.Summary.Pushed.Inserted)
	assert.Equal(t, 1, resp.Summary.Pulled.Changed)
	assert.Empty(t, resp.Summary.Unresolved)

	// The pushed value is in the canonical table and the pulled value on
	// the canvas.
	_, rows, err := wb.SkillTable().ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "X", rows[0][2])

	matrix, err := wb.Tracker().ReadRegion(tracker.PrimaryBlockTop, 2, tracker.PrimaryBlockTop, 2)
	require.NoError(t, err)
	assert.Equal(t, "X", matrix[0][0])
}

func TestRunSyncHandlerNoSkillsMessage(t *testing.T) {
	roster := &stubRoster{students: []models.StudentIdentity{
		{FirstName: "Alex", LastName: "Smith"},
	}}
	router, _ := newSyncRouter(t, roster)

	w := postJSON(router, "/api/sync", models.ClassKey{
		Program: "Zebra 9", Day: "Monday", Time: "16:00", Site: "Main Pool",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "no skills found for this class")
}

func TestRunSyncHandlerMissingRosterIs503(t *testing.T) {
	router, _ := newSyncRouter(t, nil)

	w := postJSON(router, "/api/sync", models.ClassKey{
		Program: "Stage 1", Day: "Monday", Time: "16:00", Site: "Main Pool",
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRunSyncHandlerRejectsBadBody(t *testing.T) {
	router, _ := newSyncRouter(t, &stubRoster{})

	req := httptest.NewRequest(http.MethodPost, "/api/sync", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(router, "/api/sync", models.ClassKey{Day: "Monday"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddCanonicalStudentHandler(t *testing.T) {
	router, wb := newSyncRouter(t, &stubRoster{})

	w := postJSON(router, "/api/skill-table/students", models.StudentIdentity{
		FirstName: "New", LastName: "Kid",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	_, rows, err := wb.SkillTable().ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "New", rows[1][0])

	w = postJSON(router, "/api/skill-table/students", models.StudentIdentity{LastName: "Anonymous"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
