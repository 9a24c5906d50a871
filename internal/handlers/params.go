package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/project-dashboard-api/internal/errors"
	"github.com/yukikurage/project-dashboard-api/internal/middleware"
	"github.com/yukikurage/project-dashboard-api/internal/services"
	"github.com/yukikurage/project-dashboard-api/internal/utils"
)

// requireViewer fetches the authenticated viewer or writes a 401.
func requireViewer(c *gin.Context) (services.Viewer, bool) {
	viewer, ok := middleware.GetViewer(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return services.Viewer{}, false
	}
	return viewer, true
}

// idParam parses a numeric path parameter or writes a 400.
func idParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, fmt.Sprintf("Invalid %s", name))
		return 0, false
	}
	return id, true
}

// optionalUintQuery parses an optional numeric query parameter.
func optionalUintQuery(c *gin.Context, name string) (*uint64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", name)
	}
	return &v, nil
}

// patch wraps a raw JSON object so handlers can tell absent fields from nulls.
type patch map[string]any

func (p patch) str(key string) (*string, error) {
	raw, ok := p[key]
	if !ok {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%s must be a string", key)
	}
	return &s, nil
}

func (p patch) num(key string) (*int, error) {
	raw, ok := p[key]
	if !ok {
		return nil, nil
	}
	f, ok := raw.(float64)
	if !ok || f != float64(int(f)) {
		return nil, fmt.Errorf("%s must be an integer", key)
	}
	v := int(f)
	return &v, nil
}

func (p patch) id(key string) (*uint64, error) {
	v, err := p.num(key)
	if err != nil || v == nil {
		return nil, err
	}
	if *v <= 0 {
		return nil, fmt.Errorf("%s must be a positive id", key)
	}
	u := uint64(*v)
	return &u, nil
}

// date returns the parsed date and whether the field was explicitly cleared.
func (p patch) date(key string) (*time.Time, bool, error) {
	raw, ok := p[key]
	if !ok {
		return nil, false, nil
	}
	if raw == nil {
		return nil, true, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, false, fmt.Errorf("%s must be a date string", key)
	}
	t, err := utils.ParseDate(s)
	if err != nil {
		return nil, false, err
	}
	return t, t == nil, nil
}
