package cmd

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/passagehealth/passage/internal/contract"
	"github.com/passagehealth/passage/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// observationFlag maps an observation field to its flag name, e.g. gait_speed to --gait-speed.
func observationFlag(name schema.FieldName) string {
	return strings.ReplaceAll(string(name), "_", "-")
}

// addObservationFlags registers one flag per observation field.
func addObservationFlags(cmd *cobra.Command) {
	for _, spec := range schema.FieldSpecs {
		usage := spec.Label
		if spec.Unit != "" {
			usage += " (" + spec.Unit + ")"
		}
		switch spec.Kind {
		case schema.NumericField:
			cmd.Flags().Float64(observationFlag(spec.Name), 0, fmt.Sprintf("%s, %g to %g", usage, spec.Min, spec.Max))
		case schema.BooleanField:
			cmd.Flags().String(observationFlag(spec.Name), "", usage+" (yes/no)")
		case schema.CategoricalField:
			cmd.Flags().String(observationFlag(spec.Name), "", fmt.Sprintf("%s: %s", usage, strings.Join(spec.Values, " or ")))
		}
	}
}

// readObservation loads the observation from --input, then applies any observation flags on top.
func readObservation(cmd *cobra.Command) (schema.PatientObservation, error) {
	var obs schema.PatientObservation

	inputPath, _ := cmd.Flags().GetString("input")
	if inputPath != "" {
		loaded, err := loadObservationFile(inputPath)
		if err != nil {
			return obs, err
		}
		obs = loaded
	}

	for _, spec := range schema.FieldSpecs {
		flag := observationFlag(spec.Name)
		if !cmd.Flags().Changed(flag) {
			continue
		}
		switch spec.Kind {
		case schema.NumericField:
			v, err := cmd.Flags().GetFloat64(flag)
			if err != nil {
				return obs, err
			}
			obs.SetNumeric(spec.Name, v)
		case schema.BooleanField:
			raw, _ := cmd.Flags().GetString(flag)
			v, err := contract.ParseBoolString(raw)
			if err != nil {
				return obs, fmt.Errorf("invalid --%s value: %w", flag, err)
			}
			obs.SetFlag(spec.Name, v)
		case schema.CategoricalField:
			v, _ := cmd.Flags().GetString(flag)
			obs.SetCategory(spec.Name, v)
		}
	}
	return obs, nil
}

// loadObservationFile reads a YAML or JSON observation file keyed by field name.
func loadObservationFile(path string) (schema.PatientObservation, error) {
	var obs schema.PatientObservation
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return obs, fmt.Errorf("error reading observation file: %w", err)
	}
	for _, key := range v.AllKeys() {
		if _, ok := schema.LookupField(schema.FieldName(key)); !ok {
			return obs, fmt.Errorf("observation file %s: unknown field %q", path, key)
		}
	}
	if err := v.Unmarshal(&obs, viper.DecodeHook(boolStringHook)); err != nil {
		return obs, fmt.Errorf("unable to decode observation file: %w", err)
	}
	return obs, nil
}

// boolStringHook lets observation files spell booleans the way the flags do (yes/no/true/false/1/0).
var boolStringHook mapstructure.DecodeHookFuncType = func(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Bool {
		return data, nil
	}
	return contract.ParseBoolString(data.(string))
}
