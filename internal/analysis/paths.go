package analysis

import (
	"errors"
	"fmt"
	"log"
	"math"

	"gonum.org/v1/gonum/mat"

	"gosem/domain/core"
	"gosem/domain/model"
	"gosem/domain/sem"
	"gosem/domain/table"
)

// PathEstimator fits ordinary-least-squares path models over the merged
// site-level table. Each target's regression is evaluated independently:
// this is a single-pass path-coefficient approximation, not a solved
// simultaneous system, even when one target's predictors are themselves
// targets of other specs.
type PathEstimator struct{}

// NewPathEstimator creates a path estimator.
func NewPathEstimator() *PathEstimator {
	return &PathEstimator{}
}

// RunPathModel regresses the target column on the predictor columns with an
// intercept. Rows missing any involved value are dropped (complete-case).
// The design is solved by QR factorization, which stays stable under
// near-collinear predictors; an ill-conditioned design logs a warning rather
// than failing. R2 is NaN when the target is constant.
func (e *PathEstimator) RunPathModel(tbl *table.Table, target string, predictors []string) (*sem.PathResult, error) {
	cols := append([]string{target}, predictors...)
	if missing := tbl.MissingColumns(cols); len(missing) > 0 {
		return nil, core.NewMissingColumnError(missing)
	}

	rows, err := tbl.CompleteRows(cols)
	if err != nil {
		return nil, err
	}
	n := len(rows)
	p := len(predictors)
	if n < p+1 {
		return nil, fmt.Errorf("%w: path model %s needs at least %d complete rows, have %d",
			core.ErrInsufficientData, target, p+1, n)
	}

	y := make([]float64, n)
	targetCol, _ := tbl.Column(target)
	for i, r := range rows {
		y[i] = targetCol[r]
	}

	// Design matrix with a leading intercept column of ones.
	design := mat.NewDense(n, p+1, nil)
	for i := 0; i < n; i++ {
		design.Set(i, 0, 1.0)
	}
	for j, name := range predictors {
		col, _ := tbl.Column(name)
		for i, r := range rows {
			design.Set(i, j+1, col[r])
		}
	}

	var qr mat.QR
	qr.Factorize(design)
	beta := mat.NewVecDense(p+1, nil)
	if err := qr.SolveVecTo(beta, false, mat.NewVecDense(n, y)); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("path model %s: least-squares solve failed: %w", target, err)
		}
		log.Printf("[PathModel] %s: near-singular design (%v), coefficients may be unstable", target, err)
	}

	var predicted mat.VecDense
	predicted.MulVec(design, beta)

	ssRes, ssTot := 0.0, 0.0
	yMean := 0.0
	for _, v := range y {
		yMean += v
	}
	yMean /= float64(n)
	for i, v := range y {
		resid := v - predicted.AtVec(i)
		ssRes += resid * resid
		dev := v - yMean
		ssTot += dev * dev
	}
	r2 := math.NaN()
	if ssTot > 0 {
		r2 = 1.0 - ssRes/ssTot
	}

	coeffs := make(map[string]float64, p)
	for j, name := range predictors {
		coeffs[name] = beta.AtVec(j + 1)
	}

	return &sem.PathResult{
		Target:       target,
		Predictors:   predictors,
		Intercept:    beta.AtVec(0),
		Coefficients: coeffs,
		R2:           r2,
		Observations: n,
	}, nil
}

// RunStructuralPaths evaluates each path spec independently against the
// site-level table. Every referenced target and predictor column is checked
// up front so one MissingColumnError reports all absences at once.
func (e *PathEstimator) RunStructuralPaths(tbl *table.Table, specs []model.PathSpec) ([]sem.PathResult, error) {
	var referenced []string
	for _, spec := range specs {
		referenced = append(referenced, spec.Target)
		referenced = append(referenced, spec.Predictors...)
	}
	if missing := tbl.MissingColumns(referenced); len(missing) > 0 {
		return nil, core.NewMissingColumnError(missing)
	}

	results := make([]sem.PathResult, 0, len(specs))
	for _, spec := range specs {
		res, err := e.RunPathModel(tbl, spec.Target, spec.Predictors)
		if err != nil {
			return nil, err
		}
		results = append(results, *res)
	}
	return results, nil
}
