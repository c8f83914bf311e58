package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/weiser-ai/weiser-go/internal/check"
	"github.com/weiser-ai/weiser-go/internal/datasource"
	"github.com/weiser-ai/weiser-go/internal/errs"
)

// document is the raw YAML shape of a configuration file, before template
// expansion results are folded into typed engine values.
type document struct {
	Version     int              `yaml:"version"`
	Datasources []datasourceSpec `yaml:"datasources"`
	Connections []connectionSpec `yaml:"connections"`
	Checks      []checkSpec      `yaml:"checks"`
	Includes    []string         `yaml:"includes"`
	SlackURL    string           `yaml:"slack_url"`
}

type datasourceSpec struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	URI   string `yaml:"uri"`
	Path  string `yaml:"path"`
	Host  string `yaml:"host"`
	Port  int    `yaml:"port"`

	DBName   string `yaml:"db_name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`

	Account   string `yaml:"account"`
	Warehouse string `yaml:"warehouse"`
	Role      string `yaml:"role"`
	SchemaName string `yaml:"schema_name"`

	HTTPPath    string `yaml:"http_path"`
	AccessToken string `yaml:"access_token"`
	Catalog     string `yaml:"catalog"`

	ProjectID        string `yaml:"project_id"`
	DatasetID        string `yaml:"dataset_id"`
	CredentialsPath  string `yaml:"credentials_path"`
	Location         string `yaml:"location"`

	PoolSize            int `yaml:"pool_size"`
	QueryTimeoutSeconds int `yaml:"query_timeout_seconds"`
}

type connectionSpec struct {
	Type   string `yaml:"type"`
	DBType string `yaml:"db_type"`

	Path string `yaml:"path"`
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	DBName string `yaml:"db_name"`
	User   string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`

	S3AccessKey string `yaml:"s3_access_key"`
	S3SecretKey string `yaml:"s3_secret_access_key"`
	S3Endpoint  string `yaml:"s3_endpoint"`
	S3Region    string `yaml:"s3_region"`
	S3Bucket    string `yaml:"s3_bucket"`
	S3URLStyle  string `yaml:"s3_url_style"`
}

type checkSpec struct {
	Name          string          `yaml:"name"`
	Datasource    string          `yaml:"datasource"`
	Dataset       datasetSpec     `yaml:"dataset"`
	Type          string          `yaml:"type"`
	Condition     string          `yaml:"condition"`
	Threshold     thresholdSpec   `yaml:"threshold"`
	Measure       string          `yaml:"measure"`
	Dimensions    []string        `yaml:"dimensions"`
	TimeDimension *timeDimSpec    `yaml:"time_dimension"`
	Filter        filterSpec      `yaml:"filter"`
	CheckID       string          `yaml:"check_id"`
	Description   string          `yaml:"description"`
}

type timeDimSpec struct {
	Name        string `yaml:"name"`
	Granularity string `yaml:"granularity"`
}

// datasetSpec accepts a bare table name, a list of table names, or a
// mapping with a `sql` key for a raw SELECT passthrough.
type datasetSpec struct {
	Table  string
	Tables []string
	SQL    string
}

func (d *datasetSpec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		return value.Decode(&d.Table)
	case yaml.SequenceNode:
		return value.Decode(&d.Tables)
	case yaml.MappingNode:
		var raw struct {
			SQL string `yaml:"sql"`
		}
		if err := value.Decode(&raw); err != nil {
			return err
		}
		d.SQL = raw.SQL
		return nil
	default:
		return fmt.Errorf("config: dataset must be a table name, a list of tables, or a {sql: ...} mapping")
	}
}

func (d datasetSpec) toCheckDataset() check.Dataset {
	switch {
	case d.SQL != "":
		return check.Dataset{RawSQL: d.SQL}
	case len(d.Tables) > 0:
		return check.Dataset{Tables: d.Tables}
	default:
		return check.Dataset{Table: d.Table}
	}
}

// thresholdSpec accepts a bare scalar or a two-element [lo, hi] sequence.
type thresholdSpec struct {
	Scalar *float64
	Pair   *[2]float64
}

func (t *thresholdSpec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var f float64
		if err := value.Decode(&f); err != nil {
			return err
		}
		t.Scalar = &f
		return nil
	case yaml.SequenceNode:
		var pair [2]float64
		if err := value.Decode(&pair); err != nil {
			return err
		}
		t.Pair = &pair
		return nil
	default:
		return fmt.Errorf("config: threshold must be a number or a [lo, hi] pair")
	}
}

func (t thresholdSpec) toCheckThreshold() check.Threshold {
	return check.Threshold{Scalar: t.Scalar, Pair: t.Pair}
}

// filterSpec accepts a bare string or a list of strings, AND-combined.
type filterSpec []string

func (f *filterSpec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*f = filterSpec{s}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*f = filterSpec(list)
		return nil
	default:
		return fmt.Errorf("config: filter must be a string or a list of strings")
	}
}

func toCheckType(s string) (check.Type, error) {
	switch check.Type(s) {
	case check.TypeRowCount, check.TypeSum, check.TypeMin, check.TypeMax,
		check.TypeNumeric, check.TypeMeasure, check.TypeNotEmpty,
		check.TypeNotEmptyPct, check.TypeAnomaly:
		return check.Type(s), nil
	default:
		return "", errs.Config("unknown check type %q", s)
	}
}

func toCheckCondition(s string) (check.Condition, error) {
	switch check.Condition(s) {
	case check.ConditionGt, check.ConditionGe, check.ConditionLt, check.ConditionLe,
		check.ConditionEq, check.ConditionNeq, check.ConditionBetween:
		return check.Condition(s), nil
	default:
		return "", errs.Config("unknown condition %q", s)
	}
}

func toCheckGranularity(s string) (check.Granularity, error) {
	switch check.Granularity(s) {
	case check.GranularityMillennium, check.GranularityCentury, check.GranularityDecade,
		check.GranularityYear, check.GranularityQuarter, check.GranularityMonth,
		check.GranularityWeek, check.GranularityDay, check.GranularityHour,
		check.GranularityMinute, check.GranularitySecond:
		return check.Granularity(s), nil
	default:
		return "", errs.Config("unknown time_dimension granularity %q", s)
	}
}

func (c checkSpec) toDescriptor() (check.Descriptor, error) {
	if c.Name == "" {
		return check.Descriptor{}, errs.Config("check is missing a name")
	}
	typ, err := toCheckType(c.Type)
	if err != nil {
		return check.Descriptor{}, errs.ConfigWrap(err, "check %q", c.Name)
	}
	cond, err := toCheckCondition(c.Condition)
	if err != nil {
		return check.Descriptor{}, errs.ConfigWrap(err, "check %q", c.Name)
	}
	threshold := c.Threshold.toCheckThreshold()
	if cond == check.ConditionBetween && threshold.Pair == nil {
		return check.Descriptor{}, errs.Config("check %q: condition \"between\" requires a [lo, hi] threshold pair", c.Name)
	}
	if cond != check.ConditionBetween && threshold.Scalar == nil {
		return check.Descriptor{}, errs.Config("check %q: condition %q requires a scalar threshold", c.Name, cond)
	}
	if typ == check.TypeAnomaly && c.CheckID == "" && len(c.Filter) == 0 {
		return check.Descriptor{}, errs.Config("check %q: anomaly requires check_id, filter, or both", c.Name)
	}

	var timeDim *check.TimeDimension
	if c.TimeDimension != nil {
		gran, err := toCheckGranularity(c.TimeDimension.Granularity)
		if err != nil {
			return check.Descriptor{}, errs.ConfigWrap(err, "check %q", c.Name)
		}
		timeDim = &check.TimeDimension{Name: c.TimeDimension.Name, Granularity: gran}
	}

	return check.Descriptor{
		Name:          c.Name,
		Datasource:    c.Datasource,
		Dataset:       c.Dataset.toCheckDataset(),
		Type:          typ,
		Condition:     cond,
		Threshold:     threshold,
		Measure:       c.Measure,
		Dimensions:    c.Dimensions,
		TimeDimension: timeDim,
		Filter:        []string(c.Filter),
		CheckID:       c.CheckID,
		Description:   c.Description,
	}, nil
}

func toDatasourceType(s string) (datasource.Type, error) {
	switch datasource.Type(s) {
	case datasource.TypePostgreSQL, datasource.TypeMySQL, datasource.TypeCube,
		datasource.TypeSnowflake, datasource.TypeDatabricks, datasource.TypeBigQuery,
		datasource.TypeDuckDB:
		return datasource.Type(s), nil
	default:
		return "", errs.Config("unknown datasource type %q", s)
	}
}

func (d datasourceSpec) toDatasourceConfig() (datasource.Config, error) {
	typ, err := toDatasourceType(d.Type)
	if err != nil {
		return datasource.Config{}, errs.ConfigWrap(err, "datasource %q", d.Name)
	}
	cfg := datasource.Config{
		Name:                d.Name,
		Type:                typ,
		Host:                d.Host,
		Port:                d.Port,
		Database:            d.DBName,
		Schema:              d.SchemaName,
		Username:            d.User,
		Password:            d.Password,
		Account:             d.Account,
		Warehouse:           d.Warehouse,
		HTTPPath:            d.HTTPPath,
		Token:               d.AccessToken,
		ProjectID:           d.ProjectID,
		Dataset:             d.DatasetID,
		CredentialsFile:     d.CredentialsPath,
		Path:                d.Path,
		PoolSize:            d.PoolSize,
		QueryTimeoutSeconds: d.QueryTimeoutSeconds,
	}
	if d.URI != "" {
		if err := applyURI(&cfg, d.URI); err != nil {
			return datasource.Config{}, errs.ConfigWrap(err, "datasource %q", d.Name)
		}
	}
	return cfg, nil
}
