/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */


package debug

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cloudwego/gentree/internal/ir"
)

// CostSummary describes the execution costs of the nodes of a tree.
type CostSummary struct {
	Nodes  int
	Total  float64
	Mean   float64
	StdDev float64
	Median float64
	Max    float64
}

// Summarize computes the cost summary of the tree under root. The costs must
// have been set by the evaluation order pass.
func Summarize(root *ir.Node) (CostSummary, error) {
	var err error
	var xs []float64

	/* collect the costs */
	ir.VisitPostOrder(root, func(n *ir.Node) {
		if ex, _, e := n.Costs(); e != nil {
			err = e
		} else {
			xs = append(xs, float64(ex))
		}
	})

	/* every node must be costed */
	if err != nil {
		return CostSummary{}, err
	}

	/* quantiles need the sorted sample */
	sort.Float64s(xs)
	return CostSummary{
		Nodes:  len(xs),
		Total:  floats.Sum(xs),
		Mean:   stat.Mean(xs, nil),
		StdDev: stat.StdDev(xs, nil),
		Median: stat.Quantile(0.5, stat.Empirical, xs, nil),
		Max:    floats.Max(xs),
	}, nil
}
