package server

import (
	"sensive/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetIndex godoc
// @Summary Home page data
// @Description Fresh posts with comment counts plus the popular posts and tags sidebar
// @Tags blog
// @Produce json
// @Success 200 {object} service.IndexPage
// @Failure 500 {object} models.ErrorResponse
// @Router /index [get]
func (s *Server) GetIndex(c *fiber.Ctx) error {
	page, err := s.pages.Index(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	return c.JSON(page)
}

// GetPostDetail godoc
// @Summary Post detail
// @Description A post with its comments, likes and tags; the newest post wins when slugs repeat
// @Tags blog
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} service.PostDetailPage
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /posts/{slug} [get]
func (s *Server) GetPostDetail(c *fiber.Ctx) error {
	page, err := s.pages.PostDetail(c.UserContext(), c.Params("slug"))
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	return c.JSON(page)
}

// GetTagFilter godoc
// @Summary Posts by tag
// @Description Up to 20 popular posts carrying the tag; the title is matched case-insensitively
// @Tags blog
// @Produce json
// @Param title path string true "Tag title"
// @Success 200 {object} service.TagFilterPage
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /tags/{title} [get]
func (s *Server) GetTagFilter(c *fiber.Ctx) error {
	page, err := s.pages.TagFilter(c.UserContext(), c.Params("title"))
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	return c.JSON(page)
}

// GetArchive godoc
// @Summary Yearly archive
// @Description Posts published in a calendar year, oldest first
// @Tags blog
// @Produce json
// @Param year path int true "Year"
// @Success 200 {object} service.ArchivePage
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /archive/{year} [get]
func (s *Server) GetArchive(c *fiber.Ctx) error {
	year, err := parsePositiveInt(c, "year")
	if err != nil {
		return nil
	}

	page, err := s.pages.Archive(c.UserContext(), year)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	return c.JSON(page)
}
