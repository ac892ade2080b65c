// pkg/model/metadata.go
package model

import (
	"fmt"
	"path"
	"strings"
)

// ProcessedSuffix is appended to the dataset base name to form the staging file name
const ProcessedSuffix = "_processed.csv"

// LoadTarget contains the naming information derived from one source object
type LoadTarget struct {
	SourceBucket  string // Bucket the trigger fired for
	SourceKey     string // Full object key of the source file
	FileName      string // Last path segment of SourceKey
	BaseName      string // FileName up to the first '.'
	Schema        string // Optional warehouse schema
	Table         string // Warehouse table, equal to BaseName
	StagingBucket string
	StagingKey    string
}

// NewLoadTarget derives the file, table and staging names for a source object
func NewLoadTarget(sourceBucket, sourceKey, stagingBucket, stagingPrefix, schema string) LoadTarget {
	fileName := path.Base(sourceKey)
	if sourceKey == "" || strings.HasSuffix(sourceKey, "/") {
		fileName = ""
	}

	baseName := fileName
	if i := strings.Index(fileName, "."); i >= 0 {
		baseName = fileName[:i]
	}

	return LoadTarget{
		SourceBucket:  sourceBucket,
		SourceKey:     sourceKey,
		FileName:      fileName,
		BaseName:      baseName,
		Schema:        schema,
		Table:         baseName,
		StagingBucket: stagingBucket,
		StagingKey:    stagingPrefix + baseName + ProcessedSuffix,
	}
}

// QualifiedTable returns schema.table, or just the table without a schema
func (t LoadTarget) QualifiedTable() string {
	if t.Schema == "" {
		return t.Table
	}
	return fmt.Sprintf("%s.%s", t.Schema, t.Table)
}

// SourceURI returns the s3:// URI of the source object
func (t LoadTarget) SourceURI() string {
	return fmt.Sprintf("s3://%s/%s", t.SourceBucket, t.SourceKey)
}

// StagingURI returns the s3:// URI of the staged object
func (t LoadTarget) StagingURI() string {
	return fmt.Sprintf("s3://%s/%s", t.StagingBucket, t.StagingKey)
}
