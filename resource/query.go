package resource

import (
	"net/url"
	"strings"
	"time"

	"github.com/fasorail/recharges/compute"
	"github.com/fasorail/recharges/types"
)

// criteriaFromQuery builds filter criteria from the search, from and to
// query parameters and from the given field parameters. Parameters that are
// absent or empty do not filter.
func criteriaFromQuery(query url.Values, fields ...string) (compute.Criteria, error) {
	criteria := compute.Criteria{
		Search: strings.TrimSpace(query.Get("search")),
		Fields: make(map[string]string),
	}
	for _, field := range fields {
		if v := query.Get(field); v != "" {
			criteria.Fields[field] = v
		}
	}

	var err error
	criteria.From, err = dateParam(query, "from")
	if err != nil {
		return criteria, err
	}
	criteria.To, err = dateParam(query, "to")
	return criteria, err
}

func dateParam(query url.Values, param string) (*time.Time, error) {
	v := query.Get(param)
	if v == "" {
		return nil, nil
	}
	t, err := types.ParseTimestamp(v)
	if err != nil {
		return nil, badRequest("Invalid " + param + " date: " + v)
	}
	return &t, nil
}
