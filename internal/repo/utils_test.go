package repo

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseQuery(t *testing.T, target string) Query {
	t.Helper()
	app := fiber.New()
	var q Query
	app.Get("/plans", func(c *fiber.Ctx) error {
		q.Parse(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", target, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	return q
}

func TestQueryParse(t *testing.T) {
	userID := uuid.New()
	q := parseQuery(t, "/plans?user_id="+userID.String()+"&kind=diet&limit=25&page=3")

	assert.Equal(t, userID, q.UserID)
	assert.Equal(t, "diet", q.Kind)
	assert.Equal(t, 25, q.Limit)
	assert.Equal(t, 3, q.Page)
}

func TestQueryParseDefaults(t *testing.T) {
	q := parseQuery(t, "/plans?limit=-5&page=0")

	assert.Equal(t, uuid.Nil, q.UserID)
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, 1, q.Page)
}
