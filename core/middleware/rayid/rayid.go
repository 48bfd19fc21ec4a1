package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// Header is the request/response header carrying the ray ID.
	Header = "X-Ray-ID"
	// LocalsKey is the fiber.Ctx locals key the ray ID is stored under.
	LocalsKey = "ray_id"
)

// New returns middleware that assigns every request a ray ID. An incoming
// X-Ray-ID is kept, otherwise a new UUID is generated. The ID is echoed in the
// response header and stored in locals for logger.WithRayID.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(LocalsKey, id)
		c.Set(Header, id)
		return c.Next()
	}
}
