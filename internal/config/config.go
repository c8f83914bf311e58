package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/weiser-ai/weiser-go/internal/check"
	"github.com/weiser-ai/weiser-go/internal/datasource"
	"github.com/weiser-ai/weiser-go/internal/errs"
)

const supportedVersion = 1

// StoreConfig is the validated shape of the single required
// `type: metricstore` connection record.
type StoreConfig struct {
	DBType string // "duckdb" or "postgresql"

	// duckdb
	Path        string
	S3Bucket    string
	S3Key       string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3PathStyle bool

	// postgresql
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string
}

// Loaded is the fully validated, template-expanded configuration ready to
// hand to the Runner.
type Loaded struct {
	Datasources map[string]datasource.Config
	Store       StoreConfig
	Checks      []check.Descriptor
	SlackURL    string
}

// Options controls how Load resolves template variables.
type Options struct {
	EnvFile string // path passed via -e/--env-file; "" if not passed
}

// Load reads, template-expands, merges includes, and validates the
// configuration document at path.
func Load(path string, opts Options) (*Loaded, error) {
	fileVars, err := loadEnvFile(opts.EnvFile)
	if err != nil {
		return nil, err
	}

	doc, err := loadDocument(path, fileVars, opts.EnvFile != "")
	if err != nil {
		return nil, err
	}

	merged, err := mergeIncludes(doc, filepath.Dir(path), fileVars, opts.EnvFile != "", map[string]bool{absPath(path): true})
	if err != nil {
		return nil, err
	}

	return validate(merged)
}

func loadDocument(path string, fileVars map[string]string, envFileExplicit bool) (document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return document{}, errs.ConfigWrap(err, "reading config %q", path)
	}
	expanded, err := expandTemplate(string(raw), fileVars, envFileExplicit)
	if err != nil {
		return document{}, errs.ConfigWrap(err, "config %q", path)
	}
	var doc document
	if err := yaml.Unmarshal([]byte(expanded), &doc); err != nil {
		return document{}, errs.ConfigWrap(err, "parsing config %q", path)
	}
	return doc, nil
}

func mergeIncludes(doc document, baseDir string, fileVars map[string]string, envFileExplicit bool, visited map[string]bool) (document, error) {
	merged := doc
	for _, rel := range doc.Includes {
		incPath := rel
		if !filepath.IsAbs(incPath) {
			incPath = filepath.Join(baseDir, incPath)
		}
		key := absPath(incPath)
		if visited[key] {
			return document{}, errs.Config("include cycle detected at %q", incPath)
		}
		visited[key] = true

		incDoc, err := loadDocument(incPath, fileVars, envFileExplicit)
		if err != nil {
			return document{}, err
		}
		incDoc, err = mergeIncludes(incDoc, filepath.Dir(incPath), fileVars, envFileExplicit, visited)
		if err != nil {
			return document{}, err
		}

		merged.Datasources = append(merged.Datasources, incDoc.Datasources...)
		merged.Connections = append(merged.Connections, incDoc.Connections...)
		merged.Checks = append(merged.Checks, incDoc.Checks...)
		if merged.SlackURL == "" {
			merged.SlackURL = incDoc.SlackURL
		}
	}
	merged.Includes = nil
	return merged, nil
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}

func validate(doc document) (*Loaded, error) {
	if doc.Version != supportedVersion {
		return nil, errs.Config("unsupported config version %d, expected %d", doc.Version, supportedVersion)
	}

	datasources := make(map[string]datasource.Config, len(doc.Datasources))
	for _, d := range doc.Datasources {
		if d.Name == "" {
			return nil, errs.Config("datasource is missing a name")
		}
		cfg, err := d.toDatasourceConfig()
		if err != nil {
			return nil, err
		}
		datasources[d.Name] = cfg
	}

	var store *StoreConfig
	for _, c := range doc.Connections {
		if c.Type != "metricstore" {
			continue
		}
		sc, err := c.toStoreConfig()
		if err != nil {
			return nil, err
		}
		store = &sc
		break
	}
	if store == nil {
		return nil, errs.Config("config must declare at least one connection of type metricstore")
	}

	checks := make([]check.Descriptor, 0, len(doc.Checks))
	for _, c := range doc.Checks {
		desc, err := c.toDescriptor()
		if err != nil {
			return nil, err
		}
		checks = append(checks, desc)
	}

	return &Loaded{
		Datasources: datasources,
		Store:       *store,
		Checks:      checks,
		SlackURL:    doc.SlackURL,
	}, nil
}

func (c connectionSpec) toStoreConfig() (StoreConfig, error) {
	switch c.DBType {
	case "duckdb":
		return StoreConfig{
			DBType:      "duckdb",
			Path:        c.Path,
			S3Bucket:    c.S3Bucket,
			S3Region:    c.S3Region,
			S3Endpoint:  c.S3Endpoint,
			S3AccessKey: c.S3AccessKey,
			S3SecretKey: c.S3SecretKey,
			S3PathStyle: c.S3URLStyle == "path",
		}, nil
	case "postgresql":
		return StoreConfig{
			DBType:   "postgresql",
			Host:     c.Host,
			Port:     c.Port,
			Database: c.DBName,
			Username: c.User,
			Password: c.Password,
			SSLMode:  c.SSLMode,
		}, nil
	default:
		return StoreConfig{}, errs.Config("unknown metricstore db_type %q", c.DBType)
	}
}

// applyURI fills in host/port/user/password/database from a connection
// URI, overriding any individual fields already set. Supports the
// postgres://, mysql://, and duckdb:// schemes; other dialects are
// expected to use individual fields.
func applyURI(cfg *datasource.Config, uri string) error {
	u, err := url.Parse(uri)
	if err != nil {
		return errs.ConfigWrap(err, "invalid uri")
	}
	if u.Scheme == "duckdb" {
		cfg.Path = u.Path
		if cfg.Path == "" {
			cfg.Path = u.Opaque
		}
		return nil
	}
	cfg.Host = u.Hostname()
	if p := u.Port(); p != "" {
		if port, err := strconv.Atoi(p); err == nil {
			cfg.Port = port
		}
	}
	if u.User != nil {
		cfg.Username = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			cfg.Password = pw
		}
	}
	if len(u.Path) > 1 {
		cfg.Database = u.Path[1:]
	}
	return nil
}
