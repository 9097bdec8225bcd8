// Package declarative loads table definitions from YAML documents and turns
// them into catalog create requests.
package declarative

// SupportedAPIVersion is the current API version for YAML documents.
const SupportedAPIVersion = "colident/v1"

// KindNameTable is the kind of a table document.
const KindNameTable = "Table"

// ObjectMeta names the table a document declares.
type ObjectMeta struct {
	Database string `yaml:"database"`
	Name     string `yaml:"name"`
}

// TableDoc declares a table or materialized view.
type TableDoc struct {
	APIVersion string     `yaml:"apiVersion"`
	Kind       string     `yaml:"kind"`
	Metadata   ObjectMeta `yaml:"metadata"`
	Spec       TableSpec  `yaml:"spec"`
}

// TableSpec holds the table's columns and layout. Partition expressions are
// SQL text over the column names declared here.
type TableSpec struct {
	MaterializedView bool              `yaml:"materializedView,omitempty"`
	Columns          []ColumnDef       `yaml:"columns"`
	PartitionBy      []string          `yaml:"partitionBy,omitempty"`
	DistributedBy    *DistributionSpec `yaml:"distributedBy,omitempty"`
}

// ColumnDef describes a single column in a table definition.
type ColumnDef struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// DistributionSpec declares hash distribution.
type DistributionSpec struct {
	Columns []string `yaml:"columns"`
	Buckets int      `yaml:"buckets,omitempty"`
}

// QualifiedName returns database.name.
func (d *TableDoc) QualifiedName() string {
	return d.Metadata.Database + "." + d.Metadata.Name
}
