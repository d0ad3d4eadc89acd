// utils/http.go - HTTP utility functions for fiber
package utils

import (
	"github.com/gofiber/fiber/v2"
)

// JSON sends a JSON response
func JSON(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(data)
}

// JSONError sends a JSON error response
func JSONError(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, fiber.Map{
		"success": false,
		"error":   message,
	})
}

// JSONSuccess sends a JSON success response
func JSONSuccess(c *fiber.Ctx, data interface{}) error {
	response := fiber.Map{
		"success": true,
	}

	// Merge data into response
	if dataMap, ok := data.(fiber.Map); ok {
		for k, v := range dataMap {
			response[k] = v
		}
	} else {
		response["data"] = data
	}

	return JSON(c, fiber.StatusOK, response)
}

// ParseRequest fills v from the request body (JSON or form) and falls back
// to query parameters when the body is empty
func ParseRequest(c *fiber.Ctx, v interface{}) error {
	if len(c.Body()) > 0 {
		return c.BodyParser(v)
	}
	return c.QueryParser(v)
}

// ParamID reads a positive integer path parameter
func ParamID(c *fiber.Ctx, key string) (uint, bool) {
	id, err := c.ParamsInt(key)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}
