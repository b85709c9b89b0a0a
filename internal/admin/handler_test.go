// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/kurakampus-api/internal/auth"
	"github.com/carterperez-dev/kurakampus-api/internal/core"
)

type fakeAuditor map[string][]auth.RefreshToken

func (f fakeAuditor) GetFamilyAudit(
	_ context.Context,
	family string,
) ([]auth.RefreshToken, error) {
	if family == "broken" {
		return nil, errors.New("db down")
	}
	tokens, ok := f[family]
	if !ok {
		return nil, fmt.Errorf("family %s: %w", family, core.ErrNotFound)
	}
	return tokens, nil
}

func passThrough(next http.Handler) http.Handler { return next }

func newRouter(cfg HandlerConfig) *chi.Mux {
	r := chi.NewRouter()
	NewHandler(cfg).RegisterRoutes(r, passThrough, passThrough)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestGetTokenFamily(t *testing.T) {
	now := time.Now().UTC()
	next := "t-2"
	prev := "t-1"
	r := newRouter(HandlerConfig{Auditor: fakeAuditor{
		"fam-1": {
			{ID: "t-1", UserID: "u-1", Family: "fam-1", Revoked: true, RevokedAt: &now, ReplacedBy: &next},
			{ID: "t-2", UserID: "u-1", Family: "fam-1", ReplacesID: &prev},
		},
	}})

	rec := get(r, "/admin/families/fam-1")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data auth.FamilyAuditResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "fam-1", body.Data.Family)
	require.Len(t, body.Data.Tokens, 2)
	assert.Equal(t, "t-2", *body.Data.Tokens[0].ReplacedBy)
	assert.Equal(t, "t-1", *body.Data.Tokens[1].ReplacesID)

	assert.Equal(t, http.StatusNotFound, get(r, "/admin/families/unknown").Code)
	assert.Equal(t, http.StatusInternalServerError, get(r, "/admin/families/broken").Code)
}

func TestGetSystemStats(t *testing.T) {
	r := newRouter(HandlerConfig{
		DBStats:   func() sql.DBStats { return sql.DBStats{MaxOpenConnections: 25, InUse: 2} },
		DBPing:    func(context.Context) error { return nil },
		RedisPing: func(context.Context) error { return errors.New("down") },
	})

	rec := get(r, "/admin/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data SystemStatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Data.Database.Healthy)
	require.NotNil(t, body.Data.Database.Stats)
	assert.Equal(t, 25, body.Data.Database.Stats.MaxOpenConnections)
	assert.False(t, body.Data.Redis.Healthy)
	assert.Nil(t, body.Data.Redis.Stats)
	assert.NotEmpty(t, body.Data.Runtime.GoVersion)
}
