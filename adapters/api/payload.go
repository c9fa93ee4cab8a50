package api

import (
	"math"
	"time"

	"gosem/domain/sem"
)

// Response shapes: NaN is not valid JSON, so any statistic that can be
// undefined is exposed as a nullable field (null = "the data does not
// support this statistic").

type runResponse struct {
	ID           string               `json:"id"`
	CreatedAt    time.Time            `json:"created_at"`
	Method       string               `json:"method"`
	Sites        int                  `json:"sites"`
	OuterModel   []outerRowResponse   `json:"outer_model,omitempty"`
	Paths        []pathRowResponse    `json:"paths"`
	Correlations *correlationResponse `json:"correlations,omitempty"`
}

type outerRowResponse struct {
	Construct    string              `json:"construct"`
	Name         string              `json:"name"`
	Indicators   []string            `json:"indicators"`
	Observations int                 `json:"n_obs"`
	Alpha        *float64            `json:"alpha"`
	CR           *float64            `json:"cr"`
	AVE          *float64            `json:"ave"`
	Loadings     map[string]*float64 `json:"loadings"`
}

type pathRowResponse struct {
	Target       string             `json:"target"`
	Predictors   []string           `json:"predictors"`
	Intercept    float64            `json:"intercept"`
	Coefficients map[string]float64 `json:"coefficients"`
	R2           *float64           `json:"r2"`
	Observations int                `json:"n_obs"`
}

type correlationResponse struct {
	Columns []string     `json:"columns"`
	Values  [][]*float64 `json:"values"`
}

func runPayload(run *sem.AnalysisRun) *runResponse {
	resp := &runResponse{
		ID:        run.ID.String(),
		CreatedAt: run.CreatedAt,
		Method:    string(run.Method),
		Sites:     run.Sites,
	}
	for _, r := range run.OuterModel {
		loadings := make(map[string]*float64, len(r.Loadings))
		for k, v := range r.Loadings {
			loadings[k] = nullable(v)
		}
		resp.OuterModel = append(resp.OuterModel, outerRowResponse{
			Construct:    r.Construct,
			Name:         r.Name,
			Indicators:   r.Indicators,
			Observations: r.Observations,
			Alpha:        nullable(r.Alpha),
			CR:           nullable(r.CR),
			AVE:          nullable(r.AVE),
			Loadings:     loadings,
		})
	}
	for _, p := range run.Paths {
		resp.Paths = append(resp.Paths, pathRowResponse{
			Target:       p.Target,
			Predictors:   p.Predictors,
			Intercept:    p.Intercept,
			Coefficients: p.Coefficients,
			R2:           nullable(p.R2),
			Observations: p.Observations,
		})
	}
	if run.Correlations != nil {
		values := make([][]*float64, len(run.Correlations.Values))
		for i, row := range run.Correlations.Values {
			values[i] = make([]*float64, len(row))
			for j, v := range row {
				values[i][j] = nullable(v)
			}
		}
		resp.Correlations = &correlationResponse{
			Columns: run.Correlations.Columns,
			Values:  values,
		}
	}
	return resp
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
