package server

import (
	"github.com/gofiber/fiber/v2"
)

// Index handles GET /
func (s *Server) Index(c *fiber.Ctx) error {
	page, err := s.pages.Index(c.UserContext())
	if err != nil {
		return err
	}
	return s.renderPage(c, fiber.StatusOK, pageIndex, page)
}

// PostDetail handles GET /posts/:slug
func (s *Server) PostDetail(c *fiber.Ctx) error {
	page, err := s.pages.PostDetail(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return s.renderPage(c, fiber.StatusOK, pagePostDetails, page)
}

// TagFilter handles GET /tags/:tag_title
func (s *Server) TagFilter(c *fiber.Ctx) error {
	page, err := s.pages.TagFilter(c.UserContext(), c.Params("tag_title"))
	if err != nil {
		return err
	}
	return s.renderPage(c, fiber.StatusOK, pagePostsList, page)
}

// Contacts handles GET /contacts
func (s *Server) Contacts(c *fiber.Ctx) error {
	return s.renderPage(c, fiber.StatusOK, pageContacts, nil)
}
