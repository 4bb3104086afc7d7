package jobs

import (
	"maps"
	"slices"
	"strconv"

	"radsweep-hq/radsweep/pkg/retention"
)

// Params holds job parameters as strings, the form in which they arrive
// from flags, config files and query strings.
type Params map[string]string

// Merge returns a copy of p overlaid with override.
func (p Params) Merge(override Params) Params {
	merged := make(Params, len(p)+len(override))
	maps.Copy(merged, p)
	maps.Copy(merged, override)
	return merged
}

// ParamSpec describes one parameter a job accepts.
type ParamSpec struct {
	Name        string `json:"name"`
	Default     string `json:"default"`
	Description string `json:"description"`
}

func ageParam(days int) ParamSpec {
	return ParamSpec{
		Name:        retention.ParamAgeThresholdDays,
		Default:     strconv.Itoa(days),
		Description: "age threshold in days",
	}
}

var dryRunParam = ParamSpec{
	Name:        retention.ParamDryRun,
	Default:     "false",
	Description: "count matching records without changing them",
}

// paramReader reads typed values out of Params, falling back to the ParamSpec
// defaults.
type paramReader struct {
	params Params
	specs  []ParamSpec
}

func newParamReader(params Params, specs []ParamSpec) (*paramReader, error) {
	for name, value := range params {
		known := slices.ContainsFunc(specs, func(s ParamSpec) bool { return s.Name == name })
		if !known {
			return nil, retention.NewInvalidArgumentError(name, value, "unknown parameter")
		}
	}
	return &paramReader{params: params, specs: specs}, nil
}

func (r *paramReader) raw(name string) string {
	if v, ok := r.params[name]; ok {
		return v
	}
	for _, s := range r.specs {
		if s.Name == name {
			return s.Default
		}
	}
	return ""
}

func (r *paramReader) days() (int, error) {
	return retention.ParseDays(r.raw(retention.ParamAgeThresholdDays))
}

func (r *paramReader) dryRun() (bool, error) {
	raw := r.raw(retention.ParamDryRun)
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, retention.NewInvalidArgumentError(retention.ParamDryRun, raw, "not a boolean")
	}
	return v, nil
}
