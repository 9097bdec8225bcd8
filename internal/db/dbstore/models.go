package dbstore

import "database/sql"

// CatalogTable is one row of catalog_tables.
type CatalogTable struct {
	ID               string
	DbName           string
	TableName        string
	IsMv             int64
	ColumnsJson      string
	PartitionJson    sql.NullString
	DistributionJson sql.NullString
	CreatedAt        string
	UpdatedAt        string
}
