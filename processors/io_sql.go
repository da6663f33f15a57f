package processors

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/project8/morpho/config"
	"github.com/project8/morpho/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// sqlRow is one stored element. Lists are stored one element per row,
// scalars as a single row flagged Scalar. An empty list is a single row at
// position emptyListPosition.
type sqlRow struct {
	ID       uint   `gorm:"primaryKey"`
	Variable string `gorm:"index;not null"`
	Position int    `gorm:"not null"`
	Scalar   bool
	Value    string `gorm:"type:text"` // JSON-encoded element
}

const emptyListPosition = -1

// sqlCodec stores variables in a SQLite table.
// Parameters:
//
//	table: table name (default "morpho_data")
type sqlCodec struct {
	table string
}

func (c *sqlCodec) configure(params map[string]any) error {
	var err error
	c.table, err = config.Param(params, "table", "morpho_data")
	return err
}

func (c *sqlCodec) open(path string) (*gorm.DB, func(), error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if err := db.Table(c.table).AutoMigrate(&sqlRow{}); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("failed to migrate table %s: %w", c.table, err)
	}
	return db, closeFn, nil
}

func (c *sqlCodec) read(path string, variables []ioVariable) (map[string]any, error) {
	db, closeFn, err := c.open(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	data := make(map[string]any, len(variables))
	for _, v := range variables {
		var rows []sqlRow
		if err := db.Table(c.table).Where("variable = ?", v.Alias).Order("position").Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("querying %s: %w", v.Alias, err)
		}
		if len(rows) == 0 {
			continue
		}
		if len(rows) == 1 && rows[0].Position == emptyListPosition {
			data[v.Name] = []any{}
			continue
		}
		if len(rows) == 1 && rows[0].Scalar {
			var value any
			if err := json.Unmarshal([]byte(rows[0].Value), &value); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", v.Alias, err)
			}
			data[v.Name] = value
			continue
		}
		values := make([]any, len(rows))
		for i, row := range rows {
			if err := json.Unmarshal([]byte(row.Value), &values[i]); err != nil {
				return nil, fmt.Errorf("decoding %s[%d]: %w", v.Alias, row.Position, err)
			}
		}
		data[v.Name] = values
	}
	return data, nil
}

func (c *sqlCodec) write(path string, data map[string]any, variables []ioVariable) error {
	db, closeFn, err := c.open(path)
	if err != nil {
		return err
	}
	defer closeFn()

	return db.Transaction(func(tx *gorm.DB) error {
		for _, v := range variables {
			if err := tx.Table(c.table).Where("variable = ?", v.Alias).Delete(&sqlRow{}).Error; err != nil {
				return fmt.Errorf("clearing %s: %w", v.Alias, err)
			}
			rows, err := encodeRows(v.Alias, data[v.Name])
			if err != nil {
				return err
			}
			if err := tx.Table(c.table).CreateInBatches(rows, 500).Error; err != nil {
				return fmt.Errorf("storing %s: %w", v.Alias, err)
			}
		}
		return nil
	})
}

func encodeRows(variable string, value any) ([]sqlRow, error) {
	items := toAnySlice(value)
	if items == nil {
		cell, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", variable, err)
		}
		return []sqlRow{{Variable: variable, Scalar: true, Value: string(cell)}}, nil
	}
	if len(items) == 0 {
		return []sqlRow{{Variable: variable, Position: emptyListPosition, Value: "[]"}}, nil
	}
	rows := make([]sqlRow, len(items))
	for i, item := range items {
		cell, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("encoding %s[%d]: %w", variable, i, err)
		}
		rows[i] = sqlRow{Variable: variable, Position: i, Value: string(cell)}
	}
	return rows, nil
}

// NewIOSQL creates an IOProcessor for SQLite databases
func NewIOSQL(name string, logger *slog.Logger) models.Processor {
	return newIOProcessor(name, logger, "sql", &sqlCodec{table: "morpho_data"})
}
