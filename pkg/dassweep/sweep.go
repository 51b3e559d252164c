// Package dassweep cartesian-expands a swept Shape spec into individual
// runs and fans them out across a bounded pool of concurrent workers.
// Simulations are independent and embarrassingly parallel (spec.md §5):
// each gets its own Shape.Run-derived seed, so concurrent execution never
// shares random state.
package dassweep

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/eth2030/dassim/pkg/dasconfig"
	"github.com/eth2030/dassim/pkg/dassim"
	"github.com/eth2030/dassim/pkg/dlog"
)

// Expand cartesian-products every non-empty sweep dimension in spec against
// its Base Shape, producing one Shape per combination. An empty dimension
// contributes only the Base's value for that field. Runs is the innermost
// axis of the product: every parameter point is repeated once per run index,
// each repetition seeded by its own Shape.Run.
func Expand(spec *dasconfig.ShapeSweepSpec) []dassim.Shape {
	blockSizes := orDefault(spec.BlockSizes, spec.Base.BlockSize)
	failureRates := orDefault(spec.FailureRates, spec.Base.FailureRate)
	netDegrees := orDefault(spec.NetDegrees, spec.Base.NetDegree)
	chi1s := orDefault(spec.Chi1s, spec.Base.Chi1)
	chi2s := orDefault(spec.Chi2s, spec.Base.Chi2)
	runs := orDefault(spec.Runs, spec.Base.Run)
	bwUplinks := spec.BWUplinks
	if len(bwUplinks) == 0 {
		bwUplinks = [][3]int{{spec.Base.BWUplinkProd, spec.Base.BWUplink1, spec.Base.BWUplink2}}
	}

	var out []dassim.Shape
	for _, bs := range blockSizes {
		for _, fr := range failureRates {
			for _, nd := range netDegrees {
				for _, c1 := range chi1s {
					for _, c2 := range chi2s {
						for _, bw := range bwUplinks {
							for _, run := range runs {
								shape := spec.Base
								shape.BlockSize = bs
								shape.FailureRate = fr
								shape.NetDegree = nd
								shape.Chi1 = c1
								shape.Chi2 = c2
								shape.BWUplinkProd = bw[0]
								shape.BWUplink1 = bw[1]
								shape.BWUplink2 = bw[2]
								shape.Run = run
								out = append(out, shape)
							}
						}
					}
				}
			}
		}
	}
	return out
}

func orDefault(xs []int, base int) []int {
	if len(xs) == 0 {
		return []int{base}
	}
	return xs
}

// Run executes every Shape in shapes under a worker pool bounded by
// numJobs (numJobs <= 0 means unbounded), returning one Result per input
// Shape in the same order. A single run's failure does not cancel the
// others: Simulator.Run never returns an error (spec.md's error taxonomy
// routes local failures through the logger, not through a returned error),
// so errgroup here exists purely for bounded fan-out, not error
// aggregation.
func Run(ctx context.Context, shapes []dassim.Shape, cfg dassim.Config, numJobs int, logger *dlog.Logger) ([]dassim.Result, error) {
	results := make([]dassim.Result, len(shapes))
	g, ctx := errgroup.WithContext(ctx)
	if numJobs > 0 {
		g.SetLimit(numJobs)
	}

	for i, shape := range shapes {
		i, shape := i, shape
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			sim := dassim.NewSimulator(shape, cfg, logger)
			sim.InitValidators()
			sim.InitNetwork()
			results[i] = sim.Run()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
