package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-kiosk/pkg/hub"
)

// handleHealth reports liveness and connected displays
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"displays": s.Displays(),
	})
}

// handleFrame returns the latest frame
func (s *Server) handleFrame(c *fiber.Ctx) error {
	return c.JSON(s.Frame())
}

// handleMenu returns the catalog grouped by category
func (s *Server) handleMenu(c *fiber.Ctx) error {
	return c.JSON(MenuSections(s.catalog))
}

// handleFramesWS streams frames to one display
func (s *Server) handleFramesWS(c *websocket.Conn) {
	hub.NewClient(s.frames, c).Run()
}
