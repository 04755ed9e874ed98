// Package config loads the simplebook.yaml configuration file: data
// locations, the classifier's income flag and vendor table, and the backup
// destination. All values have working defaults so the tool runs without a
// config file at all.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dvloznov/simplebook/internal/rules"
)

// DefaultPath is where commands look for the config file unless the
// SB_CONFIG environment variable points elsewhere.
const DefaultPath = "simplebook.yaml"

// Config is the top-level configuration document.
type Config struct {
	// DataDir holds the review bucket files. The database lives at DBPath.
	DataDir string       `yaml:"data_dir"`
	DBPath  string       `yaml:"db_path"`
	Rules   RulesConfig  `yaml:"rules"`
	Backup  BackupConfig `yaml:"backup"`
}

// RulesConfig is the externally supplied classifier configuration.
type RulesConfig struct {
	AssumeAllIncomeIsRental bool         `yaml:"assume_all_income_is_rental"`
	VendorRules             []VendorRule `yaml:"vendor_rules"`
}

// VendorRule is one entry of the vendor token table, in priority order.
type VendorRule struct {
	Tokens     []string `yaml:"tokens"`
	Category   string   `yaml:"category"`
	Confidence string   `yaml:"confidence"` // "hard" or "guess" (default)
	Note       string   `yaml:"note"`
}

// BackupConfig points at the offsite bucket for sb backup.
type BackupConfig struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	// CredentialsFile overrides Application Default Credentials when set.
	CredentialsFile string `yaml:"credentials_file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataDir: "data",
		DBPath:  filepath.Join("data", "simplebook.db"),
		Backup: BackupConfig{
			Prefix: "simplebook",
		},
	}
}

// Load reads the config file at path. A missing file yields Default; a
// present but invalid file is an error. Omitted fields keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("Load: read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("Load: parse config %q: %w", path, err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = Default().DataDir
	}
	if cfg.DBPath == "" {
		cfg.DBPath = Default().DBPath
	}
	return cfg, nil
}

// Path resolves the config file location from the environment.
func Path() string {
	if p := os.Getenv("SB_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

// ClassifierConfig maps the YAML rule settings onto the classifier's
// configuration. An empty vendor table means the curated defaults.
func (c Config) ClassifierConfig() rules.Config {
	out := rules.Config{AssumeAllIncomeIsRental: c.Rules.AssumeAllIncomeIsRental}
	if len(c.Rules.VendorRules) == 0 {
		return out
	}
	out.VendorRules = make([]rules.VendorRule, 0, len(c.Rules.VendorRules))
	for _, vr := range c.Rules.VendorRules {
		conf := rules.ConfidenceGuess
		if vr.Confidence == string(rules.ConfidenceHard) {
			conf = rules.ConfidenceHard
		}
		out.VendorRules = append(out.VendorRules, rules.VendorRule{
			Tokens:     vr.Tokens,
			Category:   vr.Category,
			Confidence: conf,
			Note:       vr.Note,
		})
	}
	return out
}
