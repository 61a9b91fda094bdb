package collection

import (
	"fmt"
	"strings"
	"time"

	"github.com/casbin/govaluate"
	"github.com/stwalsh4118/playout/internal/models"
)

// queryFields are the variables a smart collection query may reference
var queryFields = map[string]bool{
	"title":    true,
	"show":     true,
	"season":   true,
	"episode":  true,
	"year":     true,
	"kind":     true,
	"duration": true,
	"minutes":  true,
	"language": true,
	"path":     true,
	"age_days": true,
	"has_show": true,
}

// Query is a compiled smart collection expression, for example
//
//	show == "The Simpsons" && season >= 3
//	kind == "movie" && year < 1980 && minutes <= 100
type Query struct {
	text string
	expr *govaluate.EvaluableExpression
}

// ParseQuery compiles a query and rejects unknown variables
func ParseQuery(text string) (*Query, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty query", ErrInvalidQuery)
	}
	expr, err := govaluate.NewEvaluableExpression(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	for _, v := range expr.Vars() {
		if !queryFields[v] {
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidQuery, v)
		}
	}
	return &Query{text: text, expr: expr}, nil
}

// String returns the source text of the query
func (q *Query) String() string {
	return q.text
}

// Match evaluates the query against one media item as of at
func (q *Query) Match(item *models.MediaItem, at time.Time) (bool, error) {
	result, err := q.expr.Evaluate(queryParameters(item, at))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	matched, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q does not evaluate to a boolean", ErrInvalidQuery, q.text)
	}
	return matched, nil
}

func queryParameters(item *models.MediaItem, at time.Time) map[string]any {
	params := map[string]any{
		"title":    item.Title,
		"show":     "",
		"season":   float64(0),
		"episode":  float64(0),
		"year":     float64(0),
		"kind":     string(item.Kind),
		"duration": float64(item.Duration),
		"minutes":  float64(item.Duration) / 60,
		"language": "",
		"path":     item.Path,
		"age_days": float64(-1),
		"has_show": item.ShowTitle != nil,
	}
	if item.ShowTitle != nil {
		params["show"] = *item.ShowTitle
	}
	if item.Season != nil {
		params["season"] = float64(*item.Season)
	}
	if item.Episode != nil {
		params["episode"] = float64(*item.Episode)
	}
	if item.Language != nil {
		params["language"] = *item.Language
	}
	if item.ReleaseDate != nil {
		params["year"] = float64(item.ReleaseDate.Year())
		params["age_days"] = at.Sub(*item.ReleaseDate).Hours() / 24
	}
	return params
}
