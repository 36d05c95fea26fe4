package user

import (
	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	Repo UserRepository
}

func NewUserController(repo UserRepository) *UserController {
	return &UserController{Repo: repo}
}

// List godoc
// @Summary List users
// @Description List users, e.g. for stage assignee pickers
// @Tags users
// @Produce json
// @Success 200 {array} User
// @Router /api/users [get]
func (c *UserController) List(ctx *fiber.Ctx) error {
	users, err := c.Repo.List(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if users == nil {
		users = []User{}
	}
	return ctx.JSON(users)
}

// Get godoc
// @Summary Get a user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} User
// @Failure 404 {object} map[string]string
// @Router /api/users/{id} [get]
func (c *UserController) Get(ctx *fiber.Ctx) error {
	u, err := c.Repo.FindByID(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if u == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	return ctx.JSON(u)
}
