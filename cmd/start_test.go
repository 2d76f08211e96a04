package cmd

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMountDocs(t *testing.T) {
	app := fiber.New()
	mountDocs(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/swagger/doc.json", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, "Cloud Sync API", doc.Info.Title)
	assert.Contains(t, doc.Paths["/sync/jobs"], "get")
	assert.Contains(t, doc.Paths["/sync/{resource}/{cloud}"], "post")
	assert.Contains(t, doc.Paths["/mapper/{cloudType}/{resource}"], "post")
}
