package handler

import (
	"github.com/labstack/echo/v4"

	"taskcommadmin/internal/adapter/api/middleware"
	"taskcommadmin/internal/domain/entity"
	"taskcommadmin/internal/usecase"
	"taskcommadmin/pkg/response"
)

type SearchHandler struct {
	searchUseCase *usecase.SearchUseCase
}

func NewSearchHandler(searchUseCase *usecase.SearchUseCase) *SearchHandler {
	return &SearchHandler{
		searchUseCase: searchUseCase,
	}
}

// Search handles GET /search?q=&type=.
func (h *SearchHandler) Search(c echo.Context) error {
	results, err := h.searchUseCase.Search(
		c.Request().Context(),
		middleware.IdentityFrom(c),
		c.QueryParam("q"),
		entity.SearchType(c.QueryParam("type")),
	)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, results)
}
