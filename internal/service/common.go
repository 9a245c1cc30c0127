package service

import (
	"errors"
	"strings"

	"toko-bangunan-pos/internal/apperror"
	"toko-bangunan-pos/internal/repository"
	"toko-bangunan-pos/internal/ws"
	"toko-bangunan-pos/pkg/validator"

	"gorm.io/gorm"
)

// Actor is the signed-in user a change is attributed to.
type Actor struct {
	ID   string
	Name string
}

// SystemActor is used by jobs and the seeder.
var SystemActor = Actor{ID: "system", Name: "System"}

func (a Actor) wsActor() *ws.Actor {
	return &ws.Actor{ID: a.ID, Name: a.Name}
}

// validate runs the struct rules and turns failures into a Validation error.
func validate(req interface{}) error {
	errs := validator.ValidateStruct(req)
	if len(errs) == 0 {
		return nil
	}
	fields := make([]apperror.FieldError, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, apperror.FieldError{
			Field: fieldName(e.FailedField),
			Tag:   e.Tag,
			Param: e.Value,
		})
	}
	return apperror.Validation(fields)
}

// fieldName drops the request struct prefix: "CreateProductRequest.Units[0].Name" -> "Units[0].Name".
func fieldName(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// lookupErr maps a repository read failure onto NotFound or Internal.
func lookupErr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound("%s not found", what)
	}
	return apperror.Internal(err, "failed to load %s", what)
}

// storeErr keeps errors that already carry a kind and wraps the rest.
func storeErr(err error, format string, args ...interface{}) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Conflict(format+": duplicate value", args...)
	}
	return apperror.Internal(err, format, args...)
}

// Pagination is returned alongside every paged list.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func paginate(p repository.Page, total int64) Pagination {
	n := p.Normalize()
	pages := total / int64(n.Limit)
	if total%int64(n.Limit) != 0 {
		pages++
	}
	return Pagination{Page: n.Page, Limit: n.Limit, Total: total, TotalPages: pages}
}
