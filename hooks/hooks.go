package hooks

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/raysim/pipekit/dag"
	"github.com/raysim/pipekit/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RequireKeys returns a pre-hook that fails unless every listed key is
// present in the node's gathered inputs.
func RequireKeys(keys ...string) dag.PreFunc {
	return func(inputs map[string]any) error {
		var missing []string
		for _, key := range keys {
			if _, ok := inputs[key]; !ok {
				missing = append(missing, key)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return errors.MissingInput(missing)
		}
		return nil
	}
}

// NonNil returns a post-hook that rejects nil outputs.
func NonNil() dag.PostFunc {
	return func(output any) error {
		if output == nil {
			return errors.InvalidInput("output is nil")
		}
		return nil
	}
}

// Finite returns a post-hook that rejects NaN or infinite values in
// float64 and []float64 outputs. Other types pass unchecked.
func Finite() dag.PostFunc {
	return func(output any) error {
		check := func(v float64) error {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.InvalidInput(fmt.Sprintf("output is not finite: %v", v))
			}
			return nil
		}
		switch v := output.(type) {
		case float64:
			return check(v)
		case []float64:
			for _, e := range v {
				if err := check(e); err != nil {
					return err
				}
			}
		}
		return nil
	}
}

// NonNegative returns a post-hook that rejects negative values in
// float64 and []float64 outputs. Other types pass unchecked.
func NonNegative() dag.PostFunc {
	return func(output any) error {
		check := func(v float64) error {
			if v < 0 {
				return errors.InvalidInput(fmt.Sprintf("output is negative: %v", v))
			}
			return nil
		}
		switch v := output.(type) {
		case float64:
			return check(v)
		case []float64:
			for _, e := range v {
				if err := check(e); err != nil {
					return err
				}
			}
		}
		return nil
	}
}

// OfType returns a post-hook that fails unless the output is a T.
func OfType[T any]() dag.PostFunc {
	return func(output any) error {
		if _, ok := output.(T); !ok {
			var want T
			return errors.InvalidInput(fmt.Sprintf("output is %T, want %T", output, want))
		}
		return nil
	}
}

// InRange returns a post-hook that fails unless a float64 output lies
// in [lo, hi].
func InRange(lo, hi float64) dag.PostFunc {
	return func(output any) error {
		v, ok := output.(float64)
		if !ok {
			return errors.InvalidInput(fmt.Sprintf("output is %T, want float64", output))
		}
		if v < lo || v > hi {
			return errors.InvalidInput(fmt.Sprintf("output %v outside [%v, %v]", v, lo, hi))
		}
		return nil
	}
}

// Struct returns a post-hook that runs struct-tag validation on the
// output.
func Struct() dag.PostFunc {
	return func(output any) error {
		if err := validate.Struct(output); err != nil {
			return errors.InvalidInput("output failed struct validation").WithCause(err)
		}
		return nil
	}
}

// AllPre composes pre-hooks into one, run in order.
func AllPre(fns ...dag.PreFunc) dag.PreFunc {
	return func(inputs map[string]any) error {
		for _, fn := range fns {
			if err := fn(inputs); err != nil {
				return err
			}
		}
		return nil
	}
}

// AllPost composes post-hooks into one, run in order.
func AllPost(fns ...dag.PostFunc) dag.PostFunc {
	return func(output any) error {
		for _, fn := range fns {
			if err := fn(output); err != nil {
				return err
			}
		}
		return nil
	}
}
