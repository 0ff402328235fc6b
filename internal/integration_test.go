package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"equipment-tracker-backend/config"
	"equipment-tracker-backend/internal/api"
	"equipment-tracker-backend/internal/audit"
	"equipment-tracker-backend/internal/auth"
	"equipment-tracker-backend/internal/db"
	"equipment-tracker-backend/internal/model"
	"equipment-tracker-backend/internal/notification"
	"equipment-tracker-backend/internal/store"
)

const (
	testEmail    = "staff@smi.edu"
	testPassword = "open-sesame"
)

// setupServer wires the full router against an in-memory database with one
// staff account, mirroring what main does at boot.
func setupServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(testDB))

	hash, err := auth.HashPassword(testPassword, bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, testDB.Create(&model.User{
		Email:        testEmail,
		Name:         "Test Staff",
		Role:         "admin",
		PasswordHash: hash,
	}).Error)

	cfg := &config.Config{}
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000
	cfg.Server.CacheTTLSeconds = 1
	cfg.Auth.JWTSecret = "integration-test-secret"
	cfg.Auth.TokenTTL = time.Hour
	cfg.WorkerPool.Size = 1

	logger := zap.NewNop()
	appStore := store.NewGormStore(testDB)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, testDB, &webpush.Options{}, logger)
	pool.Start(ctx)

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	verifier := auth.NewVerifier(testDB)
	auditRec := audit.NewRecorder(testDB, logger)

	handler := api.NewHandler(appStore, tokens, verifier, auditRec, pool, &webpush.Options{}, logger)
	return api.NewRouter(cfg, handler), testDB
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// equipmentJSON is the subset of the equipment response the lifecycle
// assertions care about.
type equipmentJSON struct {
	ID            int64  `json:"id"`
	EquipmentCode string `json:"equipment_code"`
	Name          string `json:"name"`
	Quantity      int    `json:"quantity"`
	Available     int    `json:"available"`
	InUse         int    `json:"in_use"`
	Maintenance   int    `json:"maintenance"`
	Damaged       int    `json:"damaged"`
	Status        string `json:"status"`
	Condition     string `json:"condition"`
	Display       struct {
		StatusLabel    string `json:"status_label"`
		StatusIcon     string `json:"status_icon"`
		ConditionLabel string `json:"condition_label"`
	} `json:"display"`
}

func decodeEquipment(t *testing.T, raw []byte) equipmentJSON {
	t.Helper()
	var eq equipmentJSON
	require.NoError(t, json.Unmarshal(raw, &eq))
	return eq
}

func login(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": testEmail, "password": testPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// TestEquipmentLifecycle walks one item through registration, checkout,
// return, a maintenance episode and deletion, verifying the ledger over the
// real HTTP surface at each step.
func TestEquipmentLifecycle(t *testing.T) {
	router, testDB := setupServer(t)

	// Reads go through the response cache; a changing query parameter keeps
	// each fetch fresh between mutations.
	fetchSeq := 0
	fetch := func(t *testing.T, token string, id int64) equipmentJSON {
		t.Helper()
		fetchSeq++
		w := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/equipment/%d?seq=%d", id, fetchSeq), token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return decodeEquipment(t, w.Body.Bytes())
	}

	t.Run("login is rejected with wrong credentials", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
			"email": testEmail, "password": "nope",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	token := login(t, router)

	t.Run("equipment routes require a bearer token", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/equipment", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	var equipmentID int64
	t.Run("register an item with five units", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/equipment", token, gin.H{
			"equipment_code": "proj 001",
			"name":           "4K Projector",
			"category":       "AV",
			"brand":          "Epson",
			"model":          "EB-L530U",
			"location":       "Lecture Hall B",
			"quantity":       5,
			"value":          "2150.00",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		eq := decodeEquipment(t, w.Body.Bytes())
		equipmentID = eq.ID
		assert.Equal(t, "PROJ-001", eq.EquipmentCode)
		assert.Equal(t, 5, eq.Quantity)
		assert.Equal(t, 5, eq.Available)
		assert.Equal(t, "available", eq.Status)
		assert.Equal(t, "Available", eq.Display.StatusLabel)
		assert.Equal(t, "circle-check", eq.Display.StatusIcon)
	})

	t.Run("duplicate code is a conflict", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/equipment", token, gin.H{
			"equipment_code": "PROJ-001",
			"name":           "Another Projector",
			"category":       "AV",
			"brand":          "Epson",
			"model":          "EB-L530U",
			"location":       "Lecture Hall B",
			"quantity":       1,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	var assignmentID int64
	t.Run("assign two units", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/equipment/%d/assignments", equipmentID), token, gin.H{
			"user_id":  42,
			"quantity": 2,
			"purpose":  "physics colloquium",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var a model.Assignment
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &a))
		assignmentID = a.ID
		assert.Equal(t, 2, a.Quantity)

		eq := fetch(t, token, equipmentID)
		assert.Equal(t, 3, eq.Available)
		assert.Equal(t, 2, eq.InUse)
	})

	t.Run("overdraw is a conflict and moves nothing", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/equipment/%d/assignments", equipmentID), token, gin.H{
			"user_id":  43,
			"quantity": 4,
		})
		assert.Equal(t, http.StatusConflict, w.Code)

		eq := fetch(t, token, equipmentID)
		assert.Equal(t, 3, eq.Available)
		assert.Equal(t, 2, eq.InUse)
	})

	t.Run("return the two units", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/assignments/%d/return", assignmentID), token, gin.H{
			"condition": "good",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp struct {
			Equipment equipmentJSON `json:"equipment"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 5, resp.Equipment.Available)
		assert.Equal(t, 0, resp.Equipment.InUse)
	})

	t.Run("returning twice is a conflict", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/assignments/%d/return", assignmentID), token, gin.H{})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("flag the item for maintenance", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/equipment/%d/maintenance", equipmentID), token, gin.H{
			"type":                      "inspection",
			"performed_by":              "Facilities",
			"notes":                     "lamp hours check",
			"mark_as_under_maintenance": true,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp struct {
			Equipment equipmentJSON `json:"equipment"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		// The flag changes the status; the ledger only moves with a quantity.
		assert.Equal(t, "maintenance", resp.Equipment.Status)
		assert.Equal(t, "Under Maintenance", resp.Equipment.Display.StatusLabel)
		assert.Equal(t, 5, resp.Equipment.Available)
		assert.Equal(t, 0, resp.Equipment.Maintenance)
	})

	t.Run("complete maintenance restores the status", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/equipment/%d/maintenance/complete", equipmentID), token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		eq := decodeEquipment(t, w.Body.Bytes())
		assert.Equal(t, "available", eq.Status)
		assert.Equal(t, 5, eq.Available)
	})

	t.Run("equipment code cannot be changed", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/equipment/%d", equipmentID), token, gin.H{
			"equipment_code": "PROJ-002",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("delete requires valid re-authentication", func(t *testing.T) {
		w := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/equipment/%d", equipmentID), token, gin.H{
			"email": testEmail, "password": "wrong-password",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		eq := fetch(t, token, equipmentID)
		assert.Equal(t, equipmentID, eq.ID)
	})

	t.Run("delete succeeds with valid credentials", func(t *testing.T) {
		w := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/equipment/%d", equipmentID), token, gin.H{
			"email": testEmail, "password": testPassword,
		})
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		fetchSeq++
		got := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/equipment/%d?seq=%d", equipmentID, fetchSeq), token, nil)
		assert.Equal(t, http.StatusNotFound, got.Code)
	})

	t.Run("destructive actions leave an audit trail", func(t *testing.T) {
		var entries []model.AuditEntry
		require.NoError(t, testDB.Order("id ASC").Find(&entries).Error)

		actions := make([]string, 0, len(entries))
		for _, e := range entries {
			actions = append(actions, e.Action)
		}
		assert.Contains(t, actions, "equipment.create")
		assert.Contains(t, actions, "assignment.create")
		assert.Contains(t, actions, "assignment.return")
		assert.Contains(t, actions, "maintenance.record")
		assert.Contains(t, actions, "maintenance.complete")
		assert.Contains(t, actions, "equipment.delete")
	})
}

// TestDeleteBlockedByActiveAssignment verifies the delete guard end to end:
// re-authentication succeeds but the store still refuses while units are out.
func TestDeleteBlockedByActiveAssignment(t *testing.T) {
	router, _ := setupServer(t)
	token := login(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/equipment", token, gin.H{
		"equipment_code": "MIC-001",
		"name":           "Wireless Microphone",
		"category":       "AV",
		"brand":          "Shure",
		"model":          "BLX24",
		"location":       "Auditorium",
		"quantity":       2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	eq := decodeEquipment(t, w.Body.Bytes())

	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/equipment/%d/assignments", eq.ID), token, gin.H{
		"user_id": 7, "quantity": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/equipment/%d", eq.ID), token, gin.H{
		"email": testEmail, "password": testPassword,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}
