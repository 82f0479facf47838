package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/tramitesplus/cuadre-api/internal/database/db"
	"github.com/tramitesplus/cuadre-api/internal/logger"
	"github.com/tramitesplus/cuadre-api/internal/models"
	"github.com/tramitesplus/cuadre-api/internal/services"
	"github.com/tramitesplus/cuadre-api/internal/timeutil"
	"github.com/tramitesplus/cuadre-api/internal/utils"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// bindJSON decodes the body into req and runs its validate tags.
func bindJSON(c fiber.Ctx, req any) error {
	if err := c.Bind().JSON(req); err != nil {
		return utils.NewBadRequestError("invalid request body", nil)
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field()+" "+fe.Tag())
			}
			return utils.NewBadRequestError("validation failed: "+strings.Join(fields, ", "), fields)
		}
		return utils.NewBadRequestError(err.Error(), nil)
	}
	return nil
}

// listParams reads the from/to/asesor/tramite query filters.
func listParams(c fiber.Ctx) (db.ListTransactionsParams, error) {
	from, to, err := timeutil.DayRange(c.Query("from"), c.Query("to"))
	if err != nil {
		return db.ListTransactionsParams{}, utils.NewBadRequestError(err.Error(), nil)
	}
	return db.ListTransactionsParams{
		From:    from,
		To:      to,
		Asesor:  strings.TrimSpace(c.Query("asesor")),
		Tramite: strings.TrimSpace(c.Query("tramite")),
	}, nil
}

// toAPIError maps domain errors to their HTTP form.
func toAPIError(err error) *utils.APIError {
	var apiErr *utils.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, services.ErrInvalidEdit),
		errors.Is(err, models.ErrUnknownField),
		errors.Is(err, services.ErrUnknownBank),
		errors.Is(err, services.ErrEmptyStatement):
		return utils.NewBadRequestError(err.Error(), nil)
	case errors.Is(err, db.ErrNotFound):
		return utils.NewNotFoundError("record")
	case errors.Is(err, services.ErrStorageDisabled):
		return utils.NewUnavailableError(err.Error())
	}
	return utils.NewInternalError(err)
}

// fail writes the {success:false,error} envelope for err. Internal errors
// are logged and replaced with a generic message.
func fail(c fiber.Ctx, err error) error {
	apiErr := toAPIError(err)
	if apiErr.StatusCode >= fiber.StatusInternalServerError {
		log := logger.FromContext(c.Context())
		log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("request failed")
	}
	return utils.WriteError(c, apiErr)
}
