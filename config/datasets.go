package config

import (
	"fmt"
	"os"
	"time"

	"github.com/fenilmodi00/meabot-backend/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Failure policies for a dataset fetch
const (
	PolicyPropagate  = "propagate"
	PolicyCacheEmpty = "cache_empty"
)

// DatasetConfig describes where a dataset lives and how it is cached
type DatasetConfig struct {
	Range         string        `yaml:"range"`
	TTL           time.Duration `yaml:"ttl"`
	FailurePolicy string        `yaml:"failure_policy"`
}

// DatasetsConfig is the structure of the optional datasets file
type DatasetsConfig struct {
	Datasets       map[models.Dataset]DatasetConfig `yaml:"datasets"`
	QuestionsRange string                           `yaml:"questions_range"`
}

// DefaultDatasetsConfig returns the built-in sheet layout. Discounts cache
// an empty result on fetch failure; the other datasets surface the error.
func DefaultDatasetsConfig(ttl time.Duration) *DatasetsConfig {
	return &DatasetsConfig{
		Datasets: map[models.Dataset]DatasetConfig{
			models.DatasetExchanges: {
				Range:         "Exchanges!A2:G",
				TTL:           ttl,
				FailurePolicy: PolicyPropagate,
			},
			models.DatasetInternships: {
				Range:         "Internships!A2:F",
				TTL:           ttl,
				FailurePolicy: PolicyPropagate,
			},
			models.DatasetDiscounts: {
				Range:         "Discounts!A2:F",
				TTL:           ttl,
				FailurePolicy: PolicyCacheEmpty,
			},
		},
		QuestionsRange: "Questions!A2:F",
	}
}

// LoadDatasetsConfig reads the datasets file at path and merges it over the
// defaults. A missing file is not an error.
func LoadDatasetsConfig(path string, defaultTTL time.Duration) (*DatasetsConfig, error) {
	cfg := DefaultDatasetsConfig(defaultTTL)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading datasets file %s: %w", path, err)
	}

	var file DatasetsConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing datasets file %s: %w", path, err)
	}

	for key, override := range file.Datasets {
		if _, err := models.ParseDataset(string(key)); err != nil {
			return nil, fmt.Errorf("datasets file %s: %w", path, err)
		}
		merged := cfg.Datasets[key]
		if override.Range != "" {
			merged.Range = override.Range
		}
		if override.TTL > 0 {
			merged.TTL = override.TTL
		}
		switch override.FailurePolicy {
		case "":
		case PolicyPropagate, PolicyCacheEmpty:
			merged.FailurePolicy = override.FailurePolicy
		default:
			logrus.Warnf("Invalid failure_policy %q for dataset %s, keeping %s",
				override.FailurePolicy, key, merged.FailurePolicy)
		}
		cfg.Datasets[key] = merged
	}
	if file.QuestionsRange != "" {
		cfg.QuestionsRange = file.QuestionsRange
	}

	return cfg, nil
}
