package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/jmehdipour/contact-gateway/internal/model"
	"github.com/jmehdipour/contact-gateway/internal/repository"
	echo "github.com/labstack/echo/v4"
)

func listRunsHandler(chRepo repository.CHRunsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		if chRepo == nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "reports are not configured"})
		}

		f := repository.RunFilter{Limit: 50}
		if v := c.QueryParam("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
				f.Limit = n
			}
		}
		if v := c.QueryParam("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				f.Offset = n
			}
		}

		switch p := model.CleanPath(strings.TrimSpace(c.QueryParam("path"))); p {
		case model.CleanPathAI, model.CleanPathRules:
			f.CleanPath = p
		}
		f.FileName = strings.TrimSpace(c.QueryParam("file"))

		runs, err := chRepo.ListRecent(c.Request().Context(), f)
		if err != nil {
			c.Logger().Errorf("clickhouse list failed: %v", err)

			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"limit":   f.Limit,
			"offset":  f.Offset,
			"count":   len(runs),
			"results": runs,
		})
	}
}
