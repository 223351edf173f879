package pen

import "gopen/pkg/vm"

// StandardNatives are host functions available to scripts by default. Angles
// are in degrees to match rotate.
func StandardNatives() []vm.Native {
	return []vm.Native{
		{Name: "sin", Arity: 1, Fn: func(args []float64) (float64, error) {
			return vm.Sin(vm.Radians(args[0])), nil
		}},
		{Name: "cos", Arity: 1, Fn: func(args []float64) (float64, error) {
			return vm.Cos(vm.Radians(args[0])), nil
		}},
	}
}
