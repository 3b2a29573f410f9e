package api

import (
	"github.com/gofiber/fiber/v3"

	"outreach/internal/models"
	"outreach/internal/search"
)

// Filters handles GET /api/filters and lists the site-filter catalog.
func Filters(c fiber.Ctx) error {
	catalog := search.Filters()
	infos := make([]models.FilterInfo, 0, len(catalog))
	for _, f := range catalog {
		domains := search.Domains(f)
		if domains == nil {
			domains = []string{}
		}
		infos = append(infos, models.FilterInfo{
			Name:       string(f),
			Domains:    domains,
			SiteFilter: search.BuildSiteFilter(f),
		})
	}
	return jsonSuccess(c, infos)
}
