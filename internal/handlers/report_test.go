package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floodwatch/apiserver/types"
)

func TestCreateReport(t *testing.T) {
	f := newFixture()
	user := f.addUser(types.User{Email: "jane@example.com", Name: "Jane", Role: types.RoleCustomer})

	t.Run("requires auth", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string]string{"title": "Flooded street"})
		req := httptest.NewRequest(http.MethodPost, "/reports", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string]string{
			"disaster_type": "flood",
			"title":         "Flooded street",
		})
		req := withBearer(httptest.NewRequest(http.MethodPost, "/reports", body), f.tokenFor(user))
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("success", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string]string{
			"disaster_type": "flood",
			"title":         "Flooded street",
			"description":   "Water level rising on Main St",
			"location":      "Riverside",
			"contact_info":  "+15550001111",
		})
		req := withBearer(httptest.NewRequest(http.MethodPost, "/reports", body), f.tokenFor(user))
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp CreateReportResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, user.ID, resp.Report.UserID)
		assert.Equal(t, "flood", resp.Report.DisasterType)
	})
}

func TestAdminRoutes(t *testing.T) {
	f := newFixture()
	customer := f.addUser(types.User{Email: "jane@example.com", Name: "Jane", Role: types.RoleCustomer})
	admin := f.addUser(types.User{Email: "root@example.com", Name: "Root", Role: types.RoleAdmin})

	for _, path := range []string{"/admin/reports", "/admin/users"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			rec := httptest.NewRecorder()
			f.router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code, "no token")

			req = withBearer(httptest.NewRequest(http.MethodGet, path, nil), f.tokenFor(customer))
			rec = httptest.NewRecorder()
			f.router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusForbidden, rec.Code, "customer role")

			req = withBearer(httptest.NewRequest(http.MethodGet, path, nil), f.tokenFor(admin))
			rec = httptest.NewRecorder()
			f.router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code, "admin role")
		})
	}
}

func TestAdminListUsers_HidesPasswordHash(t *testing.T) {
	f := newFixture()
	admin := f.addUser(types.User{Email: "root@example.com", Name: "Root", Role: types.RoleAdmin, PasswordHash: "secret-hash"})

	req := withBearer(httptest.NewRequest(http.MethodGet, "/admin/users", nil), f.tokenFor(admin))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-hash")
}
