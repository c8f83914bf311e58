// Package expand turns one declared check.Descriptor into the Cartesian
// product of concrete LeafChecks: one per listed dataset table (dimension
// and time-bucket fan-out happen at execution time, over the rows the
// composed query returns — see runner.Runner).
package expand

import (
	"fmt"

	"github.com/weiser-ai/weiser-go/internal/check"
	"github.com/weiser-ai/weiser-go/internal/fingerprint"
	"github.com/weiser-ai/weiser-go/internal/sqlgen"
)

// Leaves is the output of expanding one Descriptor: a flat list of
// LeafChecks together with the Statement each one compiles to. The slices
// are positionally aligned.
type Leaves struct {
	Checks     []check.LeafCheck
	Statements []sqlgen.Statement
}

// Expand compiles desc against dialect, fanning out over a list dataset
// (one LeafCheck set per table) and, for not_empty/not_empty_pct, over
// declared dimensions (handled inside sqlgen.Compose). anomaly checks
// produce a single LeafCheck with no SQL text; the Runner routes those to
// the anomaly analyzer instead of a Source Driver.
func Expand(desc check.Descriptor, dialect sqlgen.Dialect) (Leaves, error) {
	if desc.Name == "" {
		return Leaves{}, fmt.Errorf("expand: check descriptor requires a name")
	}

	if desc.Type == check.TypeAnomaly {
		return expandAnomaly(desc)
	}

	datasets := resolveDatasetList(desc.Dataset)
	var out Leaves
	for _, ds := range datasets {
		stmts, err := sqlgen.Compose(desc, ds, dialect)
		if err != nil {
			return Leaves{}, fmt.Errorf("expand: %s: %w", desc.Name, err)
		}
		checkID := fingerprint.CheckID(desc.Datasource, desc.Name, ds.Identifier())
		for _, stmt := range stmts {
			out.Checks = append(out.Checks, check.LeafCheck{
				CheckID:       checkID,
				Name:          stmt.LeafName,
				Datasource:    desc.Datasource,
				Dataset:       ds,
				Type:          desc.Type,
				Condition:     desc.Condition,
				Threshold:     desc.Threshold,
				SQLText:       stmt.SQL,
				Dimensions:    stmt.Dimensions,
				TimeDimension: stmt.TimeDimension,
			})
			out.Statements = append(out.Statements, stmt)
		}
	}
	return out, nil
}

func expandAnomaly(desc check.Descriptor) (Leaves, error) {
	if desc.CheckID == "" && len(desc.Filter) == 0 {
		return Leaves{}, fmt.Errorf("expand: %s: anomaly check requires check_id, filter, or both", desc.Name)
	}
	datasetIdentifier := desc.Dataset.Identifier()
	if datasetIdentifier == "" {
		datasetIdentifier = "anomaly:" + desc.Name
	}
	checkID := fingerprint.CheckID(desc.Datasource, desc.Name, datasetIdentifier)
	leaf := check.LeafCheck{
		CheckID:        checkID,
		Name:           desc.Name,
		Datasource:     desc.Datasource,
		Dataset:        desc.Dataset,
		Type:           check.TypeAnomaly,
		Condition:      desc.Condition,
		Threshold:      desc.Threshold,
		AnomalyCheckID: desc.CheckID,
		AnomalyFilter:  desc.Filter,
	}
	return Leaves{Checks: []check.LeafCheck{leaf}}, nil
}

// resolveDatasetList expands a Dataset into the list of single-table (or
// single-raw-SQL) datasets the Composer is invoked once per, in
// declaration order.
func resolveDatasetList(ds check.Dataset) []check.Dataset {
	if ds.IsList() {
		out := make([]check.Dataset, len(ds.Tables))
		for i, t := range ds.Tables {
			out[i] = check.Dataset{Table: t}
		}
		return out
	}
	return []check.Dataset{ds}
}
