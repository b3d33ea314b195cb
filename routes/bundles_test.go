package routes

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bloom/config"
	"bloom/db"
	"bloom/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestProduct(t *testing.T, app *fiber.App, name string, price float64) models.Product {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/api/products", map[string]interface{}{
		"name":  name,
		"price": price,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var product models.Product
	decodeBody(t, resp, &product)
	return product
}

func TestCreateBundleRejectsUnknownProducts(t *testing.T) {
	app := setupTestApp(t, nil)
	tee := createTestProduct(t, app, "Tee", 19.99)

	resp := doJSON(t, app, http.MethodPost, "/api/bundles", map[string]interface{}{
		"title":       "Summer Pack",
		"description": "x",
		"productIds":  []interface{}{tee.ID, 999999},
	}, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error             string `json:"error"`
		InvalidProductIDs []uint `json:"invalidProductIds"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, []uint{999999}, body.InvalidProductIDs)

	// The rejected create must not leave a bundle behind.
	resp = doJSON(t, app, http.MethodGet, "/api/bundles", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list BundleListResponse
	decodeBody(t, resp, &list)
	assert.Zero(t, list.Total)
	assert.Empty(t, list.Bundles)
}

func TestCreateBundleMissingFields(t *testing.T) {
	app := setupTestApp(t, nil)

	resp := doJSON(t, app, http.MethodPost, "/api/bundles", map[string]interface{}{
		"description": "x",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/bundles", map[string]interface{}{
		"title": "Pack",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBundleLifecycle(t *testing.T) {
	app := setupTestApp(t, nil)
	first := createTestProduct(t, app, "First", 10)
	second := createTestProduct(t, app, "Second", 20)

	// Create with both products, ids sent as strings with a duplicate.
	resp := doJSON(t, app, http.MethodPost, "/api/bundles", map[string]interface{}{
		"title":       "Starter Pack",
		"description": "both products",
		"status":      "published",
		"productIds":  []interface{}{first.ID, second.ID, first.ID},
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var bundle models.Bundle
	decodeBody(t, resp, &bundle)
	assert.Equal(t, "published", bundle.Status)
	require.Len(t, bundle.Products, 2)
	assert.ElementsMatch(t, []uint{first.ID, second.ID}, bundle.ProductIDs)

	// Replace the set with a single product.
	resp = doJSON(t, app, http.MethodPut, "/api/bundles/1", map[string]interface{}{
		"productIds": []interface{}{second.ID},
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &bundle)
	require.Len(t, bundle.Products, 1)
	assert.Equal(t, second.ID, bundle.Products[0].ID)

	// An empty list detaches everything.
	resp = doJSON(t, app, http.MethodPut, "/api/bundles/1", map[string]interface{}{
		"productIds": []interface{}{},
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &bundle)
	assert.Empty(t, bundle.Products)

	// Field updates without productIds leave associations alone.
	resp = doJSON(t, app, http.MethodPut, "/api/bundles/1", map[string]interface{}{
		"title": "Renamed Pack",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &bundle)
	assert.Equal(t, "Renamed Pack", bundle.Title)

	resp = doJSON(t, app, http.MethodDelete, "/api/bundles/1", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/bundles/1", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var links []models.BundleProduct
	require.NoError(t, db.DB.Find(&links).Error)
	assert.Empty(t, links)
}

func TestUpdateBundleRejectsUnknownProducts(t *testing.T) {
	app := setupTestApp(t, nil)
	product := createTestProduct(t, app, "Only", 10)

	resp := doJSON(t, app, http.MethodPost, "/api/bundles", map[string]interface{}{
		"title":       "Pack",
		"description": "x",
		"productIds":  []interface{}{product.ID},
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPut, "/api/bundles/1", map[string]interface{}{
		"productIds": []interface{}{product.ID, 424242},
	}, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// The existing set must survive the rejected update.
	resp = doJSON(t, app, http.MethodGet, "/api/bundles/1", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var bundle models.Bundle
	decodeBody(t, resp, &bundle)
	require.Len(t, bundle.Products, 1)
	assert.Equal(t, product.ID, bundle.Products[0].ID)
}

func TestGetBundleNotFound(t *testing.T) {
	app := setupTestApp(t, nil)

	resp := doJSON(t, app, http.MethodGet, "/api/bundles/99", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/bundles/notanumber", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBundleListFilters(t *testing.T) {
	app := setupTestApp(t, nil)

	for _, spec := range []struct {
		title  string
		status string
	}{
		{"Summer Pack", "published"},
		{"Winter Pack", "unpublished"},
		{"Summer Sale", "published"},
	} {
		resp := doJSON(t, app, http.MethodPost, "/api/bundles", map[string]interface{}{
			"title":       spec.title,
			"description": "x",
			"status":      spec.status,
		}, "")
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := doJSON(t, app, http.MethodGet, "/api/bundles?status=published", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list BundleListResponse
	decodeBody(t, resp, &list)
	assert.Equal(t, 2, list.Total)

	resp = doJSON(t, app, http.MethodGet, "/api/bundles?search=Summer&sort=title&order=desc", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &list)
	require.Equal(t, 2, list.Total)
	assert.Equal(t, "Summer Sale", list.Bundles[0].Title)

	resp = doJSON(t, app, http.MethodGet, "/api/bundles?page=2&perPage=2", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &list)
	assert.Equal(t, 3, list.Total)
	assert.Len(t, list.Bundles, 1)

	// Unknown sort keys fall back to recency instead of erroring.
	resp = doJSON(t, app, http.MethodGet, "/api/bundles?sort=bogus", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &list)
	assert.Equal(t, 3, list.Total)
}

func TestBundleListDefaultsToNewestFirst(t *testing.T) {
	app := setupTestApp(t, nil)

	base := time.Now().Add(-time.Hour)
	for i, title := range []string{"Older", "Newer"} {
		require.NoError(t, db.DB.Create(&models.Bundle{
			Title:       title,
			Description: "x",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	resp := doJSON(t, app, http.MethodGet, "/api/bundles", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list BundleListResponse
	decodeBody(t, resp, &list)
	require.Len(t, list.Bundles, 2)
	assert.Equal(t, "Newer", list.Bundles[0].Title)
	assert.Equal(t, 12, list.PerPage)

	// An explicit asc order reverses it.
	resp = doJSON(t, app, http.MethodGet, "/api/bundles?order=asc", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &list)
	assert.Equal(t, "Older", list.Bundles[0].Title)
}

func TestCreateBundleFromMultipartForm(t *testing.T) {
	dir := t.TempDir()
	app := setupTestApp(t, &config.Config{JWTSecret: "test-secret", UploadDir: dir})
	first := createTestProduct(t, app, "First", 10)
	second := createTestProduct(t, app, "Second", 20)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("title", "Form Pack"))
	require.NoError(t, writer.WriteField("description", "from a form"))
	require.NoError(t, writer.WriteField("productIds", "1,2"))
	part, err := writer.CreateFormFile("cover", "cover.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("not-really-a-png"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/bundles", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var bundle models.Bundle
	decodeBody(t, resp, &bundle)
	assert.Equal(t, "Form Pack", bundle.Title)
	require.Len(t, bundle.Products, 2)
	assert.Equal(t, first.ID, bundle.Products[0].ID)
	assert.Equal(t, second.ID, bundle.Products[1].ID)

	// The cover was stored under the uploads dir with a generated name.
	require.True(t, strings.HasPrefix(bundle.CoverImage, "/uploads/"))
	stored := filepath.Join(dir, filepath.Base(bundle.CoverImage))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "not-really-a-png", string(data))
	assert.Equal(t, ".png", filepath.Ext(stored))
}
