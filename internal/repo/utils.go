package repo

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Query struct {
	UserID uuid.UUID `query:"user_id"`
	Kind   string    `query:"kind"`
	Limit  int       `query:"limit"`
	Page   int       `query:"page"`
}

func (query *Query) Parse(c *fiber.Ctx) {
	if err := c.QueryParser(query); err != nil {
		query.Limit = 10
		query.Page = 1
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}
}
