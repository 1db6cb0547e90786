// Copyright 2021 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"net/url"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/juju/errors"
	"github.com/mohae/deepcopy"

	"github.com/pingcap/tipocket-sqllab/pkg/netwatch"
)

// Selector names used by the built-in scenarios.
const (
	SelectorEditor        = "editor"
	SelectorToolbarButton = "toolbar-button"
	SelectorResults       = "results"
	SelectorSaveInput     = "save-input"
	SelectorSaveButton    = "save-button"
	SelectorLoginUsername = "login-username"
	SelectorLoginPassword = "login-password"
	SelectorLoginSubmit   = "login-submit"
)

// Path names used by the built-in scenarios.
const (
	PathSQLLab       = "sqllab"
	PathSavedQueries = "saved-queries"
	PathLogin        = "login"
)

// Target is the application under test.
type Target struct {
	BaseURL    string `toml:"base-url"`
	Username   string `toml:"username"`
	Password   string `toml:"password"`
	HealthPath string `toml:"health-path"`
}

// Browser options
type Browser struct {
	Headless     bool   `toml:"headless"`
	ExecPath     string `toml:"exec-path"`
	WindowWidth  int    `toml:"window-width"`
	WindowHeight int    `toml:"window-height"`
}

// Timeouts of the run.
type Timeouts struct {
	Command   Duration `toml:"command"`
	Wait      Duration `toml:"wait"`
	PageLoad  Duration `toml:"page-load"`
	Scenario  Duration `toml:"scenario"`
	Readiness Duration `toml:"readiness"`
}

// Oracle is the optional direct connection to the example database.
type Oracle struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

// Minio artifact bucket
type Minio struct {
	Endpoint  string `toml:"endpoint"`
	Bucket    string `toml:"bucket"`
	AccessKey string `toml:"access-key"`
	SecretKey string `toml:"secret-key"`
	Secure    bool   `toml:"secure"`
}

// Artifacts says where failure evidence goes.
type Artifacts struct {
	Dir   string `toml:"dir"`
	Minio Minio  `toml:"minio"`
}

// Metrics options
type Metrics struct {
	PushGateway string `toml:"push-gateway"`
	Job         string `toml:"job"`
}

// Log options
type Log struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max-size-mb"`
	MaxBackups int    `toml:"max-backups"`
}

// Tracing options
type Tracing struct {
	// StdoutFile receives spans as JSON, empty disables tracing.
	StdoutFile string `toml:"stdout-file"`
}

// Config struct
type Config struct {
	Target          Target            `toml:"target"`
	Browser         Browser           `toml:"browser"`
	Timeouts        Timeouts          `toml:"timeouts"`
	Paths           map[string]string `toml:"paths"`
	Selectors       map[string]string `toml:"selectors"`
	Routes          []netwatch.Route  `toml:"routes"`
	Oracle          Oracle            `toml:"oracle"`
	Artifacts       Artifacts         `toml:"artifacts"`
	Metrics         Metrics           `toml:"metrics"`
	Log             Log               `toml:"log"`
	Tracing         Tracing           `toml:"tracing"`
	History         string            `toml:"history"`
	Report          string            `toml:"report"`
	ScenariosDir    string            `toml:"scenarios-dir"`
	MaxRenderedRows int               `toml:"max-rendered-rows"`
}

var initConfig = Config{
	Target: Target{
		BaseURL:    "http://localhost:8088",
		Username:   "admin",
		Password:   "general",
		HealthPath: "/health",
	},
	Browser: Browser{
		Headless:     true,
		WindowWidth:  1280,
		WindowHeight: 1024,
	},
	Timeouts: Timeouts{
		Command:   Duration{Duration: 4 * time.Second},
		Wait:      Duration{Duration: 30 * time.Second},
		PageLoad:  Duration{Duration: time.Minute},
		Scenario:  Duration{Duration: 5 * time.Minute},
		Readiness: Duration{Duration: 2 * time.Minute},
	},
	Paths: map[string]string{
		PathSQLLab:       "/superset/sqllab",
		PathSavedQueries: "/sqllab/my_queries/",
		PathLogin:        "/login/",
	},
	Selectors: map[string]string{
		SelectorEditor:        "#brace-editor textarea",
		SelectorToolbarButton: "#js-sql-toolbar button",
		SelectorResults:       ".SouthPane .ReactVirtualized__Table",
		SelectorSaveInput:     ".modal-sm input",
		SelectorSaveButton:    ".modal-sm .modal-body button",
		SelectorLoginUsername: "#username",
		SelectorLoginPassword: "#password",
		SelectorLoginSubmit:   `input[type="submit"]`,
	},
	Routes: []netwatch.Route{
		{Alias: "sqlLabQuery", Method: "POST", Pattern: "/superset/sql_json/"},
		{Alias: "getSavedQuery", Pattern: "savedqueryviewapi/**"},
		{Alias: "getTables", Pattern: "superset/tables/**"},
	},
	Artifacts: Artifacts{
		Dir: "./artifacts",
	},
	Metrics: Metrics{
		Job: "sqllab",
	},
	Log: Log{
		Level:      "info",
		File:       "./sqllab.log",
		MaxSizeMB:  100,
		MaxBackups: 3,
	},
	History:         "./history.log",
	Report:          "./report.json",
	MaxRenderedRows: 10,
}

// Init get default Config
func Init() *Config {
	return initConfig.Copy()
}

// Load config from file. Keys absent from the file keep their value, map
// entries are merged.
func (c *Config) Load(path string) error {
	_, err := toml.DecodeFile(path, c)
	return errors.Annotatef(err, "load config %s", path)
}

// Copy Config struct
func (c *Config) Copy() *Config {
	return deepcopy.Copy(c).(*Config)
}

// Environment variables that override the config.
const (
	EnvBaseURL        = "SQLLAB_BASE_URL"
	EnvUsername       = "SQLLAB_USERNAME"
	EnvPassword       = "SQLLAB_PASSWORD"
	EnvOracleDSN      = "SQLLAB_ORACLE_DSN"
	EnvMinioAccessKey = "SQLLAB_MINIO_ACCESS_KEY"
	EnvMinioSecretKey = "SQLLAB_MINIO_SECRET_KEY"
)

// ApplyEnv loads .env files when present, then applies the SQLLAB_*
// environment variables. With no files it looks for ./.env.
func (c *Config) ApplyEnv(files ...string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			files = []string{".env"}
		}
	}
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return errors.Annotate(err, "load env files")
		}
	}

	for env, dst := range map[string]*string{
		EnvBaseURL:        &c.Target.BaseURL,
		EnvUsername:       &c.Target.Username,
		EnvPassword:       &c.Target.Password,
		EnvOracleDSN:      &c.Oracle.DSN,
		EnvMinioAccessKey: &c.Artifacts.Minio.AccessKey,
		EnvMinioSecretKey: &c.Artifacts.Minio.SecretKey,
	} {
		if v, ok := os.LookupEnv(env); ok {
			*dst = v
		}
	}
	return nil
}

// Validate checks the config is usable for a run.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Target.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.NotValidf("base url %q", c.Target.BaseURL)
	}
	if c.MaxRenderedRows <= 0 {
		return errors.NotValidf("max-rendered-rows %d", c.MaxRenderedRows)
	}
	if c.Oracle.DSN != "" && c.Oracle.Driver == "" {
		return errors.NotValidf("oracle dsn without driver")
	}
	if c.Artifacts.Minio.Endpoint != "" && c.Artifacts.Minio.Bucket == "" {
		return errors.NotValidf("minio endpoint without bucket")
	}
	seen := make(map[string]struct{}, len(c.Routes))
	for _, r := range c.Routes {
		if r.Alias == "" {
			return errors.NotValidf("route with empty alias")
		}
		if _, ok := seen[r.Alias]; ok {
			return errors.NotValidf("duplicated route alias %s", r.Alias)
		}
		seen[r.Alias] = struct{}{}
	}
	for _, t := range []Duration{c.Timeouts.Command, c.Timeouts.Wait, c.Timeouts.PageLoad, c.Timeouts.Scenario, c.Timeouts.Readiness} {
		if t.Duration <= 0 {
			return errors.NotValidf("non positive timeout %s", t.Duration)
		}
	}
	return nil
}

// Selector returns the named selector.
func (c *Config) Selector(name string) string {
	return c.Selectors[name]
}
