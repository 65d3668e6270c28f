package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/taxpilot/backend/internal/domain/shared"
	"github.com/taxpilot/backend/internal/interfaces/http/dto"
)

// parseIDParam parses the ":id" path segment as a UUID
func parseIDParam(c *gin.Context) (uuid.UUID, error) {
	return parseUUIDParam(c, "id")
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, shared.NewDomainError("BAD_REQUEST", "Invalid "+name+" parameter")
	}
	return id, nil
}

// maxPageSize caps page_size so a single request cannot dump a table
const maxPageSize = 100

// parsePagination reads page/page_size query parameters, falling back
// to the defaults used across the API
func parsePagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = 20
	}
	return page, pageSize
}

// sharedFilter builds a repository filter from pagination values
func sharedFilter(page, pageSize int) shared.Filter {
	f := shared.DefaultFilter()
	f.Page = page
	f.PageSize = pageSize
	return f
}

// paginatedMeta builds response meta from a paginated result
func paginatedMeta[T any](p *shared.Paginated[T]) dto.Meta {
	return dto.NewMeta(p.Page, p.PageSize, p.Total)
}
