package coordinator

import "fmt"

// Policy names the dispatch policy a coordinator runs. The set is closed:
// parameter files name one of these and anything else is a schema error.
type Policy int

const (
	PolicySimple Policy = iota
	PolicyInsertion
	PolicyMinimiseMeanTime
	PolicyReprocessMaxTime
)

var policyNames = map[string]Policy{
	"Simple":           PolicySimple,
	"Insertion":        PolicyInsertion,
	"MinimiseMeanTime": PolicyMinimiseMeanTime,
	"ReprocessMaxTime": PolicyReprocessMaxTime,
}

// ParsePolicy maps a configured coordinator name to its Policy.
func ParsePolicy(name string) (Policy, error) {
	p, ok := policyNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown coordinator %q", name)
	}
	return p, nil
}

func (p Policy) String() string {
	for name, v := range policyNames {
		if v == p {
			return name
		}
	}
	return "unknown"
}

// PriorityFunc selects how a strike's risk rating weighs into the policy
// cost. Strikes without a risk rating always weigh 1.
type PriorityFunc int

const (
	PriorityNone PriorityFunc = iota
	PriorityProduct
	PrioritySum
	PriorityRiskOnly
)

var priorityNames = map[string]PriorityFunc{
	"":          PriorityNone,
	"none":      PriorityNone,
	"product":   PriorityProduct,
	"sum":       PrioritySum,
	"risk_only": PriorityRiskOnly,
}

// ParsePriorityFunc maps a configured prioritisation function name.
func ParsePriorityFunc(name string) (PriorityFunc, error) {
	p, ok := priorityNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown prioritisation function %q", name)
	}
	return p, nil
}

// apply combines a scalar cost with a strike weight.
func (p PriorityFunc) apply(cost, weight float64) float64 {
	switch p {
	case PriorityProduct:
		return cost * weight
	case PrioritySum:
		return cost + weight
	case PriorityRiskOnly:
		return weight
	default:
		return cost
	}
}
