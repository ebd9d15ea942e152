package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/rmitchellscott/mediamaster/internal/database"
)

func newActionRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	api := router.Group("/api/actions")
	api.POST("/:id/monitor", BulkMonitorHandler)
	api.POST("/:id/quality-profile", BulkQualityProfileHandler)
	api.POST("/:id/delete", BulkDeleteHandler)
	api.POST("/:id/move", BulkMoveHandler)

	router.GET("/api/reports/duplicates", DuplicatesHandler)
	return router
}

func TestBulkActionUnknownInstance(t *testing.T) {
	useTestDB(t)
	router := newActionRouter()

	w := doJSON(router, http.MethodPost, "/api/actions/5e40bd95-98da-4073-b384-51a163dba0a5/monitor",
		`{"ids":[1],"monitored":true}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown instance, got %d: %s", w.Code, w.Body.String())
	}
}

func TestBulkActionDisabledInstance(t *testing.T) {
	db := useTestDB(t)
	router := newActionRouter()

	inst, err := database.NewInstanceService(db).CreateInstance("radarr-off", database.InstanceTypeRadarr, "http://radarr.local", "key", false)
	if err != nil {
		t.Fatalf("failed to create instance: %v", err)
	}

	w := doJSON(router, http.MethodPost, "/api/actions/"+inst.ID.String()+"/delete",
		`{"ids":[1,2]}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 for disabled instance, got %d: %s", w.Code, w.Body.String())
	}
}

func TestBulkActionValidation(t *testing.T) {
	db := useTestDB(t)
	router := newActionRouter()

	inst, err := database.NewInstanceService(db).CreateInstance("radarr-a", database.InstanceTypeRadarr, "http://radarr.local", "key", true)
	if err != nil {
		t.Fatalf("failed to create instance: %v", err)
	}

	// Empty id list and missing required fields are rejected before any
	// upstream call.
	w := doJSON(router, http.MethodPost, "/api/actions/"+inst.ID.String()+"/monitor", `{"ids":[],"monitored":true}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty ids, got %d", w.Code)
	}
	w = doJSON(router, http.MethodPost, "/api/actions/"+inst.ID.String()+"/move", `{"ids":[1]}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing root folder, got %d", w.Code)
	}
}

func TestReportHandlerRejectsBadType(t *testing.T) {
	useTestDB(t)
	router := newActionRouter()

	w := doJSON(router, http.MethodGet, "/api/reports/duplicates?type=plex", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unsupported report type, got %d", w.Code)
	}
}
