package http

import (
	"net/http"
	"strconv"

	apierrors "qoedash/internal/errors"
	"qoedash/internal/middleware"
	"qoedash/internal/services"
)

// dashboardQuery is the validated form of the dashboard query string
type dashboardQuery struct {
	Period          string   `query:"period" validate:"omitempty,period"`
	Regions         []string `query:"region" validate:"dive,max=200"`
	Locations       []string `query:"location" validate:"dive,max=200"`
	RouteParameter  string   `query:"route_parameter" validate:"max=200"`
	StaticParameter string   `query:"static_parameter" validate:"max=200"`
	Limit           int      `query:"limit" validate:"min=0,max=1000"`
	Offset          int      `query:"offset" validate:"min=0"`
	allLocations    bool
}

// parseDashboardQuery reads the filter selection from r. An absent location
// parameter selects every location; a present but empty one selects none.
func parseDashboardQuery(r *http.Request, v *middleware.ValidationMiddleware) (dashboardQuery, error) {
	values := r.URL.Query()

	q := dashboardQuery{
		Period:          values.Get("period"),
		Regions:         nonEmpty(values["region"]),
		RouteParameter:  values.Get("route_parameter"),
		StaticParameter: values.Get("static_parameter"),
	}
	if locations, ok := values["location"]; ok {
		q.Locations = nonEmpty(locations)
	} else {
		q.allLocations = true
	}

	var err error
	if q.Limit, err = intParam(values.Get("limit")); err != nil {
		return q, apierrors.ErrValidation("limit", "limit must be an integer")
	}
	if q.Offset, err = intParam(values.Get("offset")); err != nil {
		return q, apierrors.ErrValidation("offset", "offset must be an integer")
	}

	if err := v.ValidateStruct(q); err != nil {
		return q, err
	}
	return q, nil
}

// Query converts the request form into a service query
func (q dashboardQuery) Query() services.Query {
	return services.Query{
		Period:          q.Period,
		Regions:         q.Regions,
		Locations:       q.Locations,
		AllLocations:    q.allLocations,
		RouteParameter:  q.RouteParameter,
		StaticParameter: q.StaticParameter,
	}
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
