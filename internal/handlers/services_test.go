// services_test.go contains handler integration tests for the Services
// handler group: catalog CRUD, re-parenting through PATCH, the cached
// tree listing, and wholesale component replacement. Tests are skipped
// when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shopadmin/internal/cache"
	"shopadmin/internal/models"
)

// --------------------------------------------------------------------------
// Create
// --------------------------------------------------------------------------

// TestServiceCreate_GeneratesSlugAndPosition verifies that a create
// without an explicit slug derives one from the name and materializes
// position, depth, and path.
func TestServiceCreate_GeneratesSlugAndPosition(t *testing.T) {
	env := newTestEnv(t)
	cleanServices(t, env.DB, "handler-create-svc")
	t.Cleanup(func() { cleanServices(t, env.DB, "handler-create-svc") })

	req := httptest.NewRequest(http.MethodPost, "/api/services",
		strings.NewReader(`{"name":"Handler Create Svc","isActive":true}`))
	rec := httptest.NewRecorder()

	env.Services.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (body: %s)", rec.Code, rec.Body.String())
	}
	var svc models.Service
	if err := json.NewDecoder(rec.Body).Decode(&svc); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if svc.Slug != "handler-create-svc" {
		t.Errorf("slug: got %q, want handler-create-svc", svc.Slug)
	}
	if svc.Depth != 0 || len(svc.Path) != 0 {
		t.Errorf("root node: depth=%d path=%v, want 0 and empty", svc.Depth, svc.Path)
	}
}

// TestServiceCreate_DerivedSlugCollisionGetsSuffix verifies that two
// creates with the same name succeed, the second with a numeric suffix.
func TestServiceCreate_DerivedSlugCollisionGetsSuffix(t *testing.T) {
	env := newTestEnv(t)
	cleanServices(t, env.DB, "handler-dup-name", "handler-dup-name-2")
	t.Cleanup(func() { cleanServices(t, env.DB, "handler-dup-name", "handler-dup-name-2") })

	for i, wantSlug := range []string{"handler-dup-name", "handler-dup-name-2"} {
		req := httptest.NewRequest(http.MethodPost, "/api/services",
			strings.NewReader(`{"name":"Handler Dup Name"}`))
		rec := httptest.NewRecorder()

		env.Services.Create(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("create %d: got %d (body: %s)", i, rec.Code, rec.Body.String())
		}
		var svc models.Service
		json.NewDecoder(rec.Body).Decode(&svc)
		if svc.Slug != wantSlug {
			t.Errorf("create %d slug: got %q, want %q", i, svc.Slug, wantSlug)
		}
	}
}

// TestServiceCreate_ExplicitSlugCollision verifies 409 when the client
// picks a slug that is already taken.
func TestServiceCreate_ExplicitSlugCollision(t *testing.T) {
	env := newTestEnv(t)
	cleanServices(t, env.DB, "handler-explicit-slug")
	t.Cleanup(func() { cleanServices(t, env.DB, "handler-explicit-slug") })

	payload := `{"name":"Explicit Slug","slug":"handler-explicit-slug"}`

	rec := httptest.NewRecorder()
	env.Services.Create(rec, httptest.NewRequest(http.MethodPost, "/api/services", strings.NewReader(payload)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first create: got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	env.Services.Create(rec, httptest.NewRequest(http.MethodPost, "/api/services", strings.NewReader(payload)))
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate create: got %d, want 409", rec.Code)
	}
}

// TestServiceCreate_MissingName verifies 400 without a name.
func TestServiceCreate_MissingName(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/services", strings.NewReader(`{"description":"no name"}`))
	rec := httptest.NewRecorder()

	env.Services.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

// TestServiceCreate_UnknownParent verifies 404 for a parent that does
// not exist.
func TestServiceCreate_UnknownParent(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/services",
		strings.NewReader(`{"name":"Orphan Child","parentId":"00000000-0000-0000-0000-000000000001"}`))
	rec := httptest.NewRecorder()

	env.Services.Create(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404 (body: %s)", rec.Code, rec.Body.String())
	}
}

// TestServiceCreate_UnknownComponentType verifies 400 for a component
// outside the closed type enum.
func TestServiceCreate_UnknownComponentType(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/services",
		strings.NewReader(`{"name":"Bad Component","components":[{"type":"MARQUEE","content":{}}]}`))
	rec := httptest.NewRecorder()

	env.Services.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

// --------------------------------------------------------------------------
// Update / Move
// --------------------------------------------------------------------------

// TestServiceUpdate_MoveUnderOwnDescendant verifies that re-parenting a
// node under its own descendant returns 409 and leaves the tree intact.
func TestServiceUpdate_MoveUnderOwnDescendant(t *testing.T) {
	env := newTestEnv(t)
	cleanServices(t, env.DB, "handler-cycle-root", "handler-cycle-child")
	t.Cleanup(func() { cleanServices(t, env.DB, "handler-cycle-child", "handler-cycle-root") })

	root, err := env.ServiceStore.Create(&models.Service{Name: "Cycle Root", Slug: "handler-cycle-root", IsActive: true}, nil)
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	child, err := env.ServiceStore.Create(&models.Service{Name: "Cycle Child", Slug: "handler-cycle-child", ParentID: &root.ID, IsActive: true}, nil)
	if err != nil {
		t.Fatalf("create child: %v", err)
	}

	// Mixed body: a field edit riding along with the doomed move. The
	// whole PATCH must roll back, not just the parent change.
	req := httptest.NewRequest(http.MethodPatch, "/api/services/"+root.ID.String(),
		strings.NewReader(`{"name":"Renamed Root","parentId":"`+child.ID.String()+`"}`))
	req = withChiURLParam(req, "id", root.ID.String())
	rec := httptest.NewRecorder()

	env.Services.Update(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status: got %d, want 409 (body: %s)", rec.Code, rec.Body.String())
	}

	fresh, _ := env.ServiceStore.FindByID(root.ID)
	if fresh.ParentID != nil {
		t.Error("root must stay a root after a rejected move")
	}
	if fresh.Name != root.Name {
		t.Errorf("name: got %q, want %q (field edit must roll back with the move)", fresh.Name, root.Name)
	}
	if !fresh.UpdatedAt.Equal(root.UpdatedAt) {
		t.Errorf("updated_at moved from %v to %v on a rejected PATCH", root.UpdatedAt, fresh.UpdatedAt)
	}
}

// TestServiceUpdate_Reparent verifies that a parentId change moves the
// node and rematerializes depth and path.
func TestServiceUpdate_Reparent(t *testing.T) {
	env := newTestEnv(t)
	slugs := []string{"handler-move-a", "handler-move-b", "handler-move-node"}
	cleanServices(t, env.DB, slugs...)
	t.Cleanup(func() { cleanServices(t, env.DB, "handler-move-node", "handler-move-a", "handler-move-b") })

	rootA, _ := env.ServiceStore.Create(&models.Service{Name: "Move A", Slug: "handler-move-a", IsActive: true}, nil)
	rootB, _ := env.ServiceStore.Create(&models.Service{Name: "Move B", Slug: "handler-move-b", IsActive: true}, nil)
	node, err := env.ServiceStore.Create(&models.Service{Name: "Move Node", Slug: "handler-move-node", ParentID: &rootA.ID, IsActive: true}, nil)
	if err != nil {
		t.Fatalf("create node: %v", err)
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/services/"+node.ID.String(),
		strings.NewReader(`{"parentId":"`+rootB.ID.String()+`"}`))
	req = withChiURLParam(req, "id", node.ID.String())
	rec := httptest.NewRecorder()

	env.Services.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var moved models.Service
	json.NewDecoder(rec.Body).Decode(&moved)
	if moved.ParentID == nil || *moved.ParentID != rootB.ID {
		t.Errorf("parent: got %v, want %s", moved.ParentID, rootB.ID)
	}
	if moved.Depth != 1 || len(moved.Path) != 1 || moved.Path[0] != rootB.ID {
		t.Errorf("depth/path not rematerialized: depth=%d path=%v", moved.Depth, moved.Path)
	}
}

// TestServiceUpdate_NullParentPromotesToRoot verifies the null-vs-absent
// distinction on PATCH: "parentId": null promotes to root.
func TestServiceUpdate_NullParentPromotesToRoot(t *testing.T) {
	env := newTestEnv(t)
	cleanServices(t, env.DB, "handler-promote-root", "handler-promote-child")
	t.Cleanup(func() { cleanServices(t, env.DB, "handler-promote-child", "handler-promote-root") })

	root, _ := env.ServiceStore.Create(&models.Service{Name: "Promote Root", Slug: "handler-promote-root", IsActive: true}, nil)
	child, _ := env.ServiceStore.Create(&models.Service{Name: "Promote Child", Slug: "handler-promote-child", ParentID: &root.ID, IsActive: true}, nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/services/"+child.ID.String(),
		strings.NewReader(`{"parentId":null}`))
	req = withChiURLParam(req, "id", child.ID.String())
	rec := httptest.NewRecorder()

	env.Services.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var promoted models.Service
	json.NewDecoder(rec.Body).Decode(&promoted)
	if promoted.ParentID != nil || promoted.Depth != 0 {
		t.Errorf("expected root promotion, got parent=%v depth=%d", promoted.ParentID, promoted.Depth)
	}
}

// --------------------------------------------------------------------------
// Delete
// --------------------------------------------------------------------------

// TestServiceDelete_WithChildren verifies 409 when children exist.
func TestServiceDelete_WithChildren(t *testing.T) {
	env := newTestEnv(t)
	cleanServices(t, env.DB, "handler-del-root", "handler-del-child")
	t.Cleanup(func() { cleanServices(t, env.DB, "handler-del-child", "handler-del-root") })

	root, _ := env.ServiceStore.Create(&models.Service{Name: "Del Root", Slug: "handler-del-root", IsActive: true}, nil)
	env.ServiceStore.Create(&models.Service{Name: "Del Child", Slug: "handler-del-child", ParentID: &root.ID, IsActive: true}, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/services/"+root.ID.String(), nil)
	req = withChiURLParam(req, "id", root.ID.String())
	rec := httptest.NewRecorder()

	env.Services.Delete(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status: got %d, want 409", rec.Code)
	}
}

// TestServiceDelete_InvalidatesTreeCache verifies that a mutation drops
// the cached tree.
func TestServiceDelete_InvalidatesTreeCache(t *testing.T) {
	env := newTestEnv(t)
	cleanServices(t, env.DB, "handler-cache-del")

	svc, _ := env.ServiceStore.Create(&models.Service{Name: "Cache Del", Slug: "handler-cache-del", IsActive: true}, nil)

	ctx := context.Background()
	env.TreeCache.Set(ctx, cache.Key(false, -1), []byte(`{"tree":[]}`))
	if _, ok := env.TreeCache.Get(ctx, cache.Key(false, -1)); !ok {
		t.Fatal("cache priming failed")
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/services/"+svc.ID.String(), nil)
	req = withChiURLParam(req, "id", svc.ID.String())
	rec := httptest.NewRecorder()

	env.Services.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want 204", rec.Code)
	}
	if _, ok := env.TreeCache.Get(ctx, cache.Key(false, -1)); ok {
		t.Error("tree cache should be invalidated after delete")
	}
}

// --------------------------------------------------------------------------
// Listing
// --------------------------------------------------------------------------

// TestServiceList_FlatPagination verifies the paginated flat listing and
// its envelope.
func TestServiceList_FlatPagination(t *testing.T) {
	env := newTestEnv(t)
	cleanServices(t, env.DB, "handler-list-one", "handler-list-two")
	t.Cleanup(func() { cleanServices(t, env.DB, "handler-list-one", "handler-list-two") })

	env.ServiceStore.Create(&models.Service{Name: "Handler List One", Slug: "handler-list-one", IsActive: true}, nil)
	env.ServiceStore.Create(&models.Service{Name: "Handler List Two", Slug: "handler-list-two", IsActive: true}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/services?page=1&limit=1&search=handler-list", nil)
	rec := httptest.NewRecorder()

	env.Services.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var body struct {
		Items      []models.Service `json:"items"`
		Pagination struct {
			Page    int  `json:"page"`
			Limit   int  `json:"limit"`
			Total   int  `json:"total"`
			Pages   int  `json:"pages"`
			HasNext bool `json:"hasNext"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Items) != 1 {
		t.Errorf("items: got %d, want 1", len(body.Items))
	}
	if body.Pagination.Total != 2 || body.Pagination.Pages != 2 || !body.Pagination.HasNext {
		t.Errorf("pagination: %+v", body.Pagination)
	}
}

// TestServiceList_TreeCachesResult verifies the nested listing is stored
// in Valkey and served from there on the second request.
func TestServiceList_TreeCachesResult(t *testing.T) {
	env := newTestEnv(t)
	cleanServices(t, env.DB, "handler-tree-root")
	t.Cleanup(func() { cleanServices(t, env.DB, "handler-tree-root") })

	env.ServiceStore.Create(&models.Service{Name: "Handler Tree Root", Slug: "handler-tree-root", IsActive: true}, nil)
	env.TreeCache.Invalidate(context.Background())

	req := httptest.NewRequest(http.MethodGet, "/api/services", nil)
	rec := httptest.NewRecorder()
	env.Services.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var body struct {
		Tree []models.Service `json:"tree"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	var found bool
	for _, n := range body.Tree {
		if n.Slug == "handler-tree-root" {
			found = true
		}
	}
	if !found {
		t.Error("created root missing from tree response")
	}

	if _, ok := env.TreeCache.Get(context.Background(), cache.Key(false, -1)); !ok {
		t.Error("tree response should be cached after a miss")
	}
}

// --------------------------------------------------------------------------
// Components
// --------------------------------------------------------------------------

// TestServiceReplaceComponents verifies wholesale replacement with dense
// renumbering of the stored list.
func TestServiceReplaceComponents(t *testing.T) {
	env := newTestEnv(t)
	cleanServices(t, env.DB, "handler-comp-svc")
	t.Cleanup(func() { cleanServices(t, env.DB, "handler-comp-svc") })

	svc, _ := env.ServiceStore.Create(&models.Service{Name: "Comp Svc", Slug: "handler-comp-svc", IsActive: true}, nil)

	payload := `{"components":[
		{"type":"HEADING","content":{"text":"Hello","level":2}},
		{"type":"DIVIDER","content":{}},
		{"type":"CTA_BUTTON","content":{"label":"Buy","url":"/buy"}}
	]}`
	req := httptest.NewRequest(http.MethodPatch, "/api/services/"+svc.ID.String()+"/components", strings.NewReader(payload))
	req = withChiURLParam(req, "id", svc.ID.String())
	rec := httptest.NewRecorder()

	env.Services.ReplaceComponents(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var body struct {
		Components []models.PageComponent `json:"components"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Components) != 3 {
		t.Fatalf("components: got %d, want 3", len(body.Components))
	}
	for i, c := range body.Components {
		if c.Order != i {
			t.Errorf("component %d order: got %d", i, c.Order)
		}
	}
	if body.Components[0].Type != models.ComponentHeading {
		t.Errorf("first component: got %s", body.Components[0].Type)
	}
}

// TestServiceReplaceComponents_MissingRequiredContent verifies per-type
// content validation on replacement.
func TestServiceReplaceComponents_MissingRequiredContent(t *testing.T) {
	env := newTestEnv(t)
	cleanServices(t, env.DB, "handler-comp-invalid")
	t.Cleanup(func() { cleanServices(t, env.DB, "handler-comp-invalid") })

	svc, _ := env.ServiceStore.Create(&models.Service{Name: "Comp Invalid", Slug: "handler-comp-invalid", IsActive: true}, nil)

	payload := `{"components":[{"type":"HEADING","content":{"text":"no level"}}]}`
	req := httptest.NewRequest(http.MethodPatch, "/api/services/"+svc.ID.String()+"/components", strings.NewReader(payload))
	req = withChiURLParam(req, "id", svc.ID.String())
	rec := httptest.NewRecorder()

	env.Services.ReplaceComponents(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}
