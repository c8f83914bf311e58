// Package fingerprint computes the stable checkId every LeafCheck carries:
// a SHA-256 over the declaring datasource, check name, and dataset
// identifier, independent of partitioning (dimension values, time buckets).
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

const fieldSeparator = byte(0x1F)

// CheckID returns the hex-encoded SHA-256 fingerprint of a declared check.
// Two runs of the same (datasource, name, datasetIdentifier) triple always
// produce the same value; unrelated fields (threshold, filter, dimensions)
// never affect it.
func CheckID(datasource, name, datasetIdentifier string) string {
	h := sha256.New()
	h.Write([]byte(datasource))
	h.Write([]byte{fieldSeparator})
	h.Write([]byte(name))
	h.Write([]byte{fieldSeparator})
	h.Write([]byte(datasetIdentifier))
	return hex.EncodeToString(h.Sum(nil))
}

// maxStoredDatasetLen bounds the dataset text persisted verbatim in the
// metric store; raw-SQL datasets longer than this are stored as a
// checksum reference instead.
const maxStoredDatasetLen = 2000

// StoredDataset returns the value to persist in MetricRecord.Dataset for a
// given dataset identifier: the identifier itself when short enough, or a
// "sha256:<hex>" reference when it would otherwise bloat the store.
func StoredDataset(datasetIdentifier string) string {
	if len(datasetIdentifier) <= maxStoredDatasetLen {
		return datasetIdentifier
	}
	sum := sha256.Sum256([]byte(datasetIdentifier))
	return "sha256:" + hex.EncodeToString(sum[:])
}
