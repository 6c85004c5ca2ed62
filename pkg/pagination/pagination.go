package pagination

import (
	"strconv"
	"strings"

	"github.com/jwalitptl/hospital-api/pkg/errors"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params is a validated page request.
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Meta is returned alongside list data.
type Meta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// Parse converts raw page and limit query values. Empty values take the
// defaults; anything else that is not a positive integer, or a limit above
// maxLimit, is a validation error.
func Parse(pageRaw, limitRaw string, maxLimit int) (Params, error) {
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}

	page, err := parsePositive("page", pageRaw, DefaultPage)
	if err != nil {
		return Params{}, err
	}
	limit, err := parsePositive("limit", limitRaw, DefaultLimit)
	if err != nil {
		return Params{}, err
	}
	if limit > maxLimit {
		return Params{}, errors.NewValidation("limit must not exceed "+strconv.Itoa(maxLimit), nil)
	}

	return Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}, nil
}

func parsePositive(name, raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewValidation(name+" must be an integer", err)
	}
	if n < 1 {
		return 0, errors.NewValidation(name+" must be at least 1", nil)
	}
	return n, nil
}

// TotalPages is ceil(total/limit), and 0 when there are no rows.
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func NewMeta(p Params, total int) Meta {
	return Meta{
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: TotalPages(total, p.Limit),
	}
}
