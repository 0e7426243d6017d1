package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/cobmax/batimento/internal/domain/dataset"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads and validates one client configuration file. Every problem is a
// fatal ConfigurationError; nothing is silently defaulted beyond the
// serialization conveniences (separator ';', encoding utf-8).
func Load(path string) (*Client, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("BATIMENTO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: cannot read client config %q: %v", dataset.ErrConfiguration, path, err)
	}

	var client Client
	if err := v.Unmarshal(&client); err != nil {
		return nil, fmt.Errorf("%w: malformed client config %q: %v", dataset.ErrConfiguration, path, err)
	}

	// Passwords stay out of the config file: "${EMCCAMP_ZIP_PASSWORD}" in the
	// yaml resolves against the environment here.
	client.Source.Input.Password = os.ExpandEnv(client.Source.Input.Password)
	client.Max.Input.Password = os.ExpandEnv(client.Max.Input.Password)

	if err := Validate(&client); err != nil {
		return nil, fmt.Errorf("%w: invalid client config %q: %v", dataset.ErrConfiguration, path, err)
	}
	return &client, nil
}

// Validate checks structural constraints plus the cross-field rules the
// struct tags cannot express.
func Validate(client *Client) error {
	if err := validator.New().Struct(client); err != nil {
		return err
	}

	for _, side := range []struct {
		name string
		spec DatasetSpec
	}{{"source", client.Source}, {"max", client.Max}} {
		for i, vs := range side.spec.Treatment.Validators {
			if err := validateValidatorSpec(vs); err != nil {
				return fmt.Errorf("%s.treatment.validators[%d]: %w", side.name, i, err)
			}
		}
	}

	// Duplicate names or prefixes would make the later archive silently
	// overwrite the earlier one (same prefix, one run clock).
	names := make(map[string]bool, len(client.Directions))
	prefixes := make(map[string]bool, len(client.Directions))
	for _, d := range client.Directions {
		if names[d.Name] {
			return fmt.Errorf("direction %q declared twice", d.Name)
		}
		names[d.Name] = true
		if prefixes[d.Prefix] {
			return fmt.Errorf("directions share output prefix %q", d.Prefix)
		}
		prefixes[d.Prefix] = true

		if d.Split == nil {
			continue
		}
		if err := validateSplitSpec(*d.Split); err != nil {
			return fmt.Errorf("direction %s: %w", d.Name, err)
		}
	}
	return nil
}

func validateValidatorSpec(vs ValidatorSpec) error {
	switch vs.Type {
	case "required_fields":
		if len(vs.Fields) == 0 {
			return fmt.Errorf("required_fields needs a non-empty fields list")
		}
	case "regex":
		if vs.Field == "" || vs.Pattern == "" {
			return fmt.Errorf("regex needs field and pattern")
		}
	case "date_range":
		if vs.Field == "" {
			return fmt.Errorf("date_range needs field")
		}
	case "aging":
		if vs.Field == "" || vs.MaxDays <= 0 {
			return fmt.Errorf("aging needs field and a positive max_days")
		}
	case "blacklist":
		if vs.Field == "" || vs.File == "" {
			return fmt.Errorf("blacklist needs field and file")
		}
	case "exclude_values":
		if vs.Field == "" || len(vs.Values) == 0 {
			return fmt.Errorf("exclude_values needs field and a non-empty values list")
		}
	}
	return nil
}

func validateSplitSpec(s SplitSpec) error {
	switch s.Rule {
	case "judicial":
		if s.DocumentColumn == "" || s.File == "" {
			return fmt.Errorf("judicial split needs document_column and file")
		}
	case "campaign":
		if s.DueDateColumn == "" || s.ThresholdDays <= 0 || s.LowerBucket == "" || s.UpperBucket == "" {
			return fmt.Errorf("campaign split needs due_date_column, a positive threshold_days and both bucket names")
		}
	case "recebimento":
		if s.PaymentDateColumn == "" || s.PaymentAmountColumn == "" {
			return fmt.Errorf("recebimento split needs payment_date_column and payment_amount_column")
		}
	}
	return nil
}
