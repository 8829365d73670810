package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

var envOnce sync.Once

// LoadEnv loads environment variables from the first .env file found in the
// working directory or its parent. Variables already set are kept. It
// returns the file it loaded, or "" when there was none.
func LoadEnv() (string, error) {
	var (
		loaded string
		err    error
	)
	envOnce.Do(func() {
		loaded, err = loadEnvFrom(".env", filepath.Join("..", ".env"))
	})
	return loaded, err
}

func loadEnvFrom(candidates ...string) (string, error) {
	for _, envFile := range candidates {
		if _, statErr := os.Stat(envFile); statErr != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			return "", err
		}
		return envFile, nil
	}
	return "", nil
}

// LedgerPath returns the ledger file inside the data directory.
func (c *Config) LedgerPath() string {
	return c.dataPath(c.Data.LedgerFile)
}

// AccountsPath returns the account configuration file.
func (c *Config) AccountsPath() string {
	return c.dataPath(c.Data.AccountsFile)
}

// LearningPath returns the learning map file.
func (c *Config) LearningPath() string {
	return c.dataPath(c.Data.LearningFile)
}

// CategoriesPath returns the user category list.
func (c *Config) CategoriesPath() string {
	return c.dataPath(c.Data.CategoriesFile)
}

// GroupsPath returns the group list.
func (c *Config) GroupsPath() string {
	return c.dataPath(c.Data.GroupsFile)
}

// RulesPath returns the rules file. A relative name is looked up in the
// data directory.
func (c *Config) RulesPath() string {
	return c.dataPath(c.Categorization.RulesFile)
}

func (c *Config) dataPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Data.Directory, name)
}
