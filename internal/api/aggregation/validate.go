package aggregation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/FACorreiaa/go-trip-aggregator/app/apperr"
	"github.com/FACorreiaa/go-trip-aggregator/internal/types"
)

// maxTripDays bounds the schedule the synthesizer is asked to produce.
const maxTripDays = 30

const defaultPartySize = 1

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// newCriteria validates a TripRequest and turns it into TripCriteria. Every
// error it returns is apperr.KindValidation.
func newCriteria(v *validator.Validate, req types.TripRequest) (types.TripCriteria, error) {
	req.Destination = strings.TrimSpace(req.Destination)
	req.Origin = strings.TrimSpace(req.Origin)
	req.StartDate = strings.TrimSpace(req.StartDate)
	req.EndDate = strings.TrimSpace(req.EndDate)

	if err := v.Struct(req); err != nil {
		return types.TripCriteria{}, apperr.Wrap(apperr.KindValidation, describe(err), err).WithOp("aggregation.Validate")
	}

	start, err := time.Parse(types.DateLayout, req.StartDate)
	if err != nil {
		return types.TripCriteria{}, apperr.Wrap(apperr.KindValidation, "start_date must be YYYY-MM-DD", err)
	}
	end, err := time.Parse(types.DateLayout, req.EndDate)
	if err != nil {
		return types.TripCriteria{}, apperr.Wrap(apperr.KindValidation, "end_date must be YYYY-MM-DD", err)
	}
	if end.Before(start) {
		return types.TripCriteria{}, apperr.Validation("end_date must not be before start_date")
	}
	if days := int(end.Sub(start).Hours()/24) + 1; days > maxTripDays {
		return types.TripCriteria{}, apperr.Validation(fmt.Sprintf("trip spans %d days, the limit is %d", days, maxTripDays))
	}

	requestID := strings.TrimSpace(req.RequestID)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	partySize := req.PartySize
	if partySize == 0 {
		partySize = defaultPartySize
	}
	style := req.Style
	if style == "" {
		style = types.StyleSightseeing
	}
	interests := lo.Uniq(lo.FilterMap(req.Interests, func(s string, _ int) (string, bool) {
		s = strings.TrimSpace(s)
		return s, s != ""
	}))

	return types.TripCriteria{
		RequestID:       requestID,
		Destination:     req.Destination,
		DestinationCode: strings.ToUpper(req.DestinationCode),
		Origin:          req.Origin,
		OriginCode:      strings.ToUpper(req.OriginCode),
		StartDate:       start,
		EndDate:         end,
		PartySize:       partySize,
		IsDomestic:      req.IsDomestic,
		Style:           style,
		Interests:       interests,
		BudgetPerPerson: req.BudgetPerPerson,
	}, nil
}

// describe turns validator output into one line naming each failing field.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid trip request"
	}
	fields := lo.Map(verrs, func(fe validator.FieldError, _ int) string {
		if fe.Param() != "" {
			return fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	})
	return "invalid trip request: " + strings.Join(fields, "; ")
}
