package entitlement_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-peoplehub/internal/entitlement"
	entitlementerrors "go-peoplehub/internal/entitlement/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeAdminService struct {
	fakeEntitlementService
	upsertFn        func(ctx context.Context, tenantID string, req entitlement.UpsertSubscriptionRequest) (entitlement.SubscriptionResponse, error)
	updateModulesFn func(ctx context.Context, tenantID string, req entitlement.UpdateDisabledModulesRequest) error
}

func (f *fakeAdminService) UpsertSubscription(ctx context.Context, tenantID string, req entitlement.UpsertSubscriptionRequest) (entitlement.SubscriptionResponse, error) {
	if f.upsertFn != nil {
		return f.upsertFn(ctx, tenantID, req)
	}
	return entitlement.SubscriptionResponse{}, nil
}

func (f *fakeAdminService) UpdateDisabledModules(ctx context.Context, tenantID string, req entitlement.UpdateDisabledModulesRequest) error {
	if f.updateModulesFn != nil {
		return f.updateModulesFn(ctx, tenantID, req)
	}
	return nil
}

func TestEntitlementHandler_GetMy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tenantID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		svc := &fakeEntitlementService{entitlements: entitlement.Entitlements{
			"leave_management": {Type: entitlement.FeatureBoolean, Bool: true},
		}}

		h := entitlement.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/tenant/entitlements", nil)
		c.Set("tenant_id", tenantID)

		h.GetMy(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var env struct {
			Ok   bool `json:"ok"`
			Data struct {
				Features map[string]struct {
					Type  string `json:"type"`
					Value any    `json:"value"`
				} `json:"features"`
			} `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.True(t, env.Ok)
		assert.Equal(t, "BOOLEAN", env.Data.Features["leave_management"].Type)
		assert.Equal(t, true, env.Data.Features["leave_management"].Value)
	})

	t.Run("missing tenant context", func(t *testing.T) {
		svc := &fakeEntitlementService{}

		h := entitlement.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/tenant/entitlements", nil)

		h.GetMy(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestEntitlementHandler_UpsertSubscription(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tenantID := uuid.New().String()

	newContext := func(w *httptest.ResponseRecorder, body string) *gin.Context {
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPut, "/admin/tenants/"+tenantID+"/subscription", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = gin.Params{{Key: "id", Value: tenantID}}
		return c
	}

	t.Run("success", func(t *testing.T) {
		svc := &fakeAdminService{
			upsertFn: func(ctx context.Context, tid string, req entitlement.UpsertSubscriptionRequest) (entitlement.SubscriptionResponse, error) {
				assert.Equal(t, tenantID, tid)
				assert.Equal(t, "p_plus", req.ProductID)
				assert.Equal(t, entitlement.SubscriptionActive, req.Status)
				return entitlement.SubscriptionResponse{
					ID:        uuid.New().String(),
					TenantID:  tid,
					ProductID: req.ProductID,
					Status:    req.Status,
				}, nil
			},
		}

		h := entitlement.NewHandler(svc)
		w := httptest.NewRecorder()
		c := newContext(w, `{"product_id":"p_plus","status":"ACTIVE"}`)

		h.UpsertSubscription(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("status outside the enum fails validation", func(t *testing.T) {
		svc := &fakeAdminService{}

		h := entitlement.NewHandler(svc)
		w := httptest.NewRecorder()
		c := newContext(w, `{"product_id":"p_plus","status":"PAUSED"}`)

		h.UpsertSubscription(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown tenant maps to 404", func(t *testing.T) {
		svc := &fakeAdminService{
			upsertFn: func(ctx context.Context, tid string, req entitlement.UpsertSubscriptionRequest) (entitlement.SubscriptionResponse, error) {
				return entitlement.SubscriptionResponse{}, entitlementerrors.ErrTenantNotFound
			},
		}

		h := entitlement.NewHandler(svc)
		w := httptest.NewRecorder()
		c := newContext(w, `{"product_id":"p_plus","status":"ACTIVE"}`)

		h.UpsertSubscription(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
