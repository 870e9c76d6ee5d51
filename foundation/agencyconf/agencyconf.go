// Package agencyconf loads the registry of upstream transit agencies from a
// yaml file: which agencies exist, where their apis live and how to
// authenticate against them.
package agencyconf

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Agency kinds supported by the aggregation core.
const (
	KindBus  = "bus"
	KindRail = "rail"
)

// Agency describes one upstream transit data provider.
type Agency struct {
	Code      string `yaml:"code" validate:"required"`
	Name      string `yaml:"name" validate:"required"`
	Kind      string `yaml:"kind" validate:"required,oneof=bus rail"`
	BaseURL   string `yaml:"baseURL" validate:"required,url"`
	APIKey    string `yaml:"apiKey"`
	APIKeyEnv string `yaml:"apiKeyEnv"`
}

type registryFile struct {
	Agencies []Agency `yaml:"agencies"`
}

// Registry holds the configured agencies keyed by code.
type Registry struct {
	agencies []Agency
	byCode   map[string]Agency
}

// Load reads and validates the agency registry at path. Keys referenced via
// apiKeyEnv are resolved from the environment at load time; an inline apiKey
// wins when both are set.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading agency registry %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a Registry from raw yaml.
func Parse(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding agency registry: %w", err)
	}
	if len(file.Agencies) == 0 {
		return nil, fmt.Errorf("agency registry holds no agencies")
	}

	validate := validator.New()
	registry := Registry{
		byCode: make(map[string]Agency, len(file.Agencies)),
	}
	for _, agency := range file.Agencies {
		if err := validate.Struct(agency); err != nil {
			return nil, fmt.Errorf("invalid agency %q: %w", agency.Code, err)
		}
		if len(agency.APIKey) == 0 && len(agency.APIKeyEnv) > 0 {
			agency.APIKey = os.Getenv(agency.APIKeyEnv)
		}
		if _, exists := registry.byCode[agency.Code]; exists {
			return nil, fmt.Errorf("duplicate agency code %q", agency.Code)
		}
		registry.agencies = append(registry.agencies, agency)
		registry.byCode[agency.Code] = agency
	}
	return &registry, nil
}

// Lookup finds an agency by code.
func (r *Registry) Lookup(code string) (Agency, bool) {
	agency, ok := r.byCode[code]
	return agency, ok
}

// Agencies returns the configured agencies in file order.
func (r *Registry) Agencies() []Agency {
	return r.agencies
}
