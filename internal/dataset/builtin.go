// Package dataset provides named example datasets and a synthetic power-law
// generator.
package dataset

import (
	"errors"
	"fmt"
	"sort"

	"github.com/okian/fairpay/internal/domain/model"
)

// ErrUnknownDataset is returned for names without a built-in dataset.
var ErrUnknownDataset = errors.New("unknown dataset")

// Built-in dataset names.
const (
	Baseline      = "baseline"
	Recalibration = "recalibration"
)

// ExampleOffer is a prospective hire used alongside the baseline dataset.
var ExampleOffer = model.SamplePoint{Productivity: 750, Salary: 600}

var builtins = map[string][][2]float64{
	// A company whose salaries roughly track productivity.
	Baseline: {
		{300, 250}, {325, 293}, {437, 325}, {469, 330}, {855, 431},
		{880, 463}, {1032, 463}, {1091, 520}, {1130, 631}, {1332, 868},
		{1622, 1071}, {1650, 1177}, {1676, 1285}, {1701, 1388}, {1783, 1401},
		{1824, 1501}, {1874, 1564}, {2100, 1637}, {2310, 1675}, {2446, 1781},
	},
	// The same company after salaries drifted out of order.
	Recalibration: {
		{400, 300}, {325, 293}, {537, 425}, {369, 430}, {855, 431},
		{780, 563}, {1032, 463}, {1091, 640}, {1230, 531}, {1332, 668},
		{1422, 771}, {1650, 677}, {1676, 785}, {1701, 788}, {1803, 1101},
		{1924, 975}, {2000, 1264}, {2200, 1337}, {2310, 1775}, {2446, 1581},
	},
}

// Names lists the built-in datasets in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtin returns a built-in dataset by name.
func Builtin(name string) (model.Dataset, error) {
	pairs, ok := builtins[name]
	if !ok {
		return model.Dataset{}, fmt.Errorf("%w: %q (have %v)", ErrUnknownDataset, name, Names())
	}
	return model.FromPairs(pairs)
}
