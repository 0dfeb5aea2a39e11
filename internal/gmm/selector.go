//    pvtm-core
//    Copyright: VikaNa 2024-25
//    License: GNU GENERAL PUBLIC LICENSE 3

package gmm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/VikaNa/pvtm-core/internal/gen"
	"github.com/VikaNa/pvtm-core/internal/lnch"
	"gonum.org/v1/gonum/mat"
)

var Msg = lnch.NewMessageMakerWithDefaults()

//
// MODEL SELECTION
//

// ErrAllFitsFailed - not one grid cell produced a usable mixture
var ErrAllFitsFailed = errors.New("every candidate in the grid failed to fit")

// CellScore - the outcome of one (covariance family, component count) cell;
// a cell whose restarts all failed keeps Ok == false and a NaN BIC so that the
// score table still shows it
type CellScore struct {
	Covariance CovarianceType
	Components int
	BIC        float64
	Ok         bool
	Failures   int // failed restarts in this cell
}

// ScoreTable - the full grid: Cells[f][c] belongs to Covariances[f] at
// Components[c]
type ScoreTable struct {
	Covariances []CovarianceType
	Components  []int
	Cells       [][]CellScore
}

// FailedFits - total restarts that ended in a FitFailure
func (st *ScoreTable) FailedFits() int {
	n := 0
	for _, row := range st.Cells {
		for _, c := range row {
			n += c.Failures
		}
	}
	return n
}

type GridOptions struct {
	ComponentStart int
	ComponentEnd   int
	ComponentStep  int
	Covariances    []CovarianceType
	Restarts       int
	Seed           int64 // restart r of any cell runs with Seed+r
	Workers        int
	Verbose        bool
	Fit            FitOptions
}

type cellJob struct {
	fi int
	ci int
}

type cellResult struct {
	fi    int
	ci    int
	best  *Mixture
	score CellScore
}

// SelectModel - fit the whole candidate grid and return the mixture with the
// globally lowest BIC plus the score table. Cells are independent, so they are
// dispatched across workers; the outcome is anchored to cell identity and does
// not depend on arrival order or worker count. Cancellation is honored between
// cells, never mid-fit.
func SelectModel(ctx context.Context, X *mat.Dense, opt GridOptions) (*Mixture, *ScoreTable, error) {
	const (
		MSGCELL = "grid cell (%s, %d): BIC %.2f after %d restart(s), %d failure(s)"
		MSGMISS = "grid cell (%s, %d): every restart failed"
		MSGBEST = "selected %d components with %s covariance (BIC %.2f)"
	)

	counts := gen.Sequence(opt.ComponentStart, opt.ComponentEnd, opt.ComponentStep)
	if len(counts) == 0 || len(opt.Covariances) == 0 {
		return nil, nil, fmt.Errorf("empty candidate grid")
	}
	if opt.Restarts < 1 {
		opt.Restarts = 1
	}

	lvl := lnch.MSGPEEK
	if opt.Verbose {
		lvl = lnch.MSGMAND
	}

	var jobs []cellJob
	for fi := range opt.Covariances {
		for ci := range counts {
			jobs = append(jobs, cellJob{fi: fi, ci: ci})
		}
	}

	workers := opt.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	jobchan := make(chan cellJob)
	reschan := make(chan cellResult, len(jobs))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for jb := range jobchan {
				if ctx.Err() != nil {
					continue
				}
				reschan <- fitcell(X, opt, opt.Covariances[jb.fi], counts[jb.ci], jb)
			}
		}()
	}

	go func() {
		defer close(jobchan)
		for _, jb := range jobs {
			select {
			case <-ctx.Done():
				return
			case jobchan <- jb:
			}
		}
	}()

	wg.Wait()
	close(reschan)

	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("model selection interrupted: %w", err)
	}

	st := &ScoreTable{
		Covariances: opt.Covariances,
		Components:  counts,
		Cells:       make([][]CellScore, len(opt.Covariances)),
	}
	for fi, cov := range opt.Covariances {
		st.Cells[fi] = make([]CellScore, len(counts))
		for ci, k := range counts {
			// pre-mark as missing; a result will overwrite
			st.Cells[fi][ci] = CellScore{Covariance: cov, Components: k, BIC: math.NaN()}
		}
	}

	mixes := make([][]*Mixture, len(opt.Covariances))
	for fi := range mixes {
		mixes[fi] = make([]*Mixture, len(counts))
	}
	for res := range reschan {
		st.Cells[res.fi][res.ci] = res.score
		mixes[res.fi][res.ci] = res.best
		if res.score.Ok {
			Msg.Emit(fmt.Sprintf(MSGCELL, res.score.Covariance, res.score.Components, res.score.BIC,
				opt.Restarts, res.score.Failures), lvl)
		} else {
			Msg.Emit(fmt.Sprintf(MSGMISS, res.score.Covariance, res.score.Components), lnch.MSGWARN)
		}
	}

	bf, bc, ok := bestcell(st)
	if !ok {
		return nil, st, ErrAllFitsFailed
	}
	best := mixes[bf][bc]

	Msg.Emit(fmt.Sprintf(MSGBEST, best.K, best.Covariance, best.BIC), lnch.MSGNOTE)
	return best, st, nil
}

// bestcell - the grid reduce: the Ok cell with the globally lowest BIC. On
// float-equal ties the smaller component count wins, then the earlier-listed
// covariance family; component counts run in the outer loop and the strict
// comparison keeps the first-seen cell.
func bestcell(st *ScoreTable) (int, int, bool) {
	bf, bc := -1, -1
	for ci := range st.Components {
		for fi := range st.Covariances {
			cell := st.Cells[fi][ci]
			if !cell.Ok {
				continue
			}
			if bf < 0 || cell.BIC < st.Cells[bf][bc].BIC {
				bf, bc = fi, ci
			}
		}
	}
	return bf, bc, bf >= 0
}

// fitcell - run the restarts of one cell and keep the lowest BIC among them
func fitcell(X *mat.Dense, opt GridOptions, cov CovarianceType, k int, jb cellJob) cellResult {
	const FYI = "fit failure for (%s, %d) seed %d: %v"

	score := CellScore{Covariance: cov, Components: k, BIC: math.NaN()}
	var best *Mixture

	for r := 0; r < opt.Restarts; r++ {
		spec := CandidateSpec{Components: k, Covariance: cov, Seed: opt.Seed + int64(r)}
		m, err := Fit(X, spec, opt.Fit)
		if err != nil {
			if errors.Is(err, ErrFitFailure) {
				score.Failures += 1
				Msg.Emit(fmt.Sprintf(FYI, cov, k, spec.Seed, err), lnch.MSGPEEK)
				continue
			}
			// a non-recoverable usage error still only poisons this cell
			score.Failures += 1
			Msg.Emit(fmt.Sprintf(FYI, cov, k, spec.Seed, err), lnch.MSGWARN)
			continue
		}
		if best == nil || m.BIC < best.BIC {
			best = m
		}
	}

	if best != nil {
		score.Ok = true
		score.BIC = best.BIC
	}
	return cellResult{fi: jb.fi, ci: jb.ci, best: best, score: score}
}
