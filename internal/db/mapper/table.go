package mapper

import (
	"encoding/json"
	"fmt"

	"colident/internal/catalog"
	dbstore "colident/internal/db/dbstore"
	"colident/internal/domain"
	"colident/internal/schema"
)

// TableToDB converts table metadata into upsert parameters. Partition
// expressions are stored in their identifier form, so the stored text does
// not change when columns are renamed.
func TableToDB(m *catalog.TableMeta) (dbstore.UpsertCatalogTableParams, error) {
	cols, err := json.Marshal(m.Columns)
	if err != nil {
		return dbstore.UpsertCatalogTableParams{}, fmt.Errorf("encode columns of %s: %w", m.QualifiedName(), err)
	}

	p := dbstore.UpsertCatalogTableParams{
		ID:          m.ID,
		DbName:      m.DB,
		TableName:   m.Name,
		IsMv:        boolToInt(m.IsMaterializedView),
		ColumnsJson: string(cols),
		CreatedAt:   formatTime(m.CreatedAt),
		UpdatedAt:   formatTime(m.UpdatedAt),
	}

	if m.Partition != nil {
		data, err := json.Marshal(m.Partition)
		if err != nil {
			return dbstore.UpsertCatalogTableParams{}, fmt.Errorf("encode partition of %s: %w", m.QualifiedName(), err)
		}
		p.PartitionJson = nullStrVal(string(data))
	}
	if m.Distribution != nil {
		data, err := json.Marshal(m.Distribution)
		if err != nil {
			return dbstore.UpsertCatalogTableParams{}, fmt.Errorf("encode distribution of %s: %w", m.QualifiedName(), err)
		}
		p.DistributionJson = nullStrVal(string(data))
	}
	return p, nil
}

// TableFromDB rebuilds table metadata from a stored row. Partition
// expressions are parsed back into bound trees; a row whose descriptors
// reference columns the table no longer has is rejected.
func TableFromDB(row dbstore.CatalogTable) (*catalog.TableMeta, error) {
	name := row.DbName + "." + row.TableName

	var cols schema.Columns
	if err := json.Unmarshal([]byte(row.ColumnsJson), &cols); err != nil {
		return nil, domain.ErrParse(err, "decode columns of %s", name)
	}

	m := &catalog.TableMeta{
		ID:                 row.ID,
		DB:                 row.DbName,
		Name:               row.TableName,
		IsMaterializedView: row.IsMv != 0,
		Columns:            cols,
		CreatedAt:          parseTime(row.CreatedAt),
		UpdatedAt:          parseTime(row.UpdatedAt),
	}
	tbl := m.Table()

	if row.PartitionJson.Valid {
		var part catalog.ExprPartitionInfo
		if err := json.Unmarshal([]byte(row.PartitionJson.String), &part); err != nil {
			return nil, fmt.Errorf("decode partition of %s: %w", name, err)
		}
		if _, err := part.PartitionExprs(tbl); err != nil {
			return nil, fmt.Errorf("partition of %s: %w", name, err)
		}
		if _, err := part.PartitionColumns(tbl); err != nil {
			return nil, fmt.Errorf("partition of %s: %w", name, err)
		}
		m.Partition = &part
	}

	if row.DistributionJson.Valid {
		var dist catalog.HashDistributionInfo
		if err := json.Unmarshal([]byte(row.DistributionJson.String), &dist); err != nil {
			return nil, fmt.Errorf("decode distribution of %s: %w", name, err)
		}
		if _, err := dist.DistributionKey(tbl); err != nil {
			return nil, fmt.Errorf("distribution of %s: %w", name, err)
		}
		m.Distribution = &dist
	}
	return m, nil
}
