package database

import (
	"fmt"
	"regexp"
	"strings"

	"datasync/core/model"

	"gorm.io/gorm"
)

// ColumnInfo matches the output of SHOW COLUMNS.
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string // Pointer because NULL default is possible
	Extra   string
}

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidTableName reports whether name is safe to interpolate into a query.
func ValidTableName(name string) bool {
	return tableNamePattern.MatchString(name)
}

// GetTableColumns retrieves the column definitions for a given table. A missing
// table yields no columns and no error.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	if !ValidTableName(tableName) {
		return nil, fmt.Errorf("invalid table name %q", tableName)
	}

	var columns []ColumnInfo
	if db.Dialector.Name() == "sqlite" {
		// SQLite uses PRAGMA table_info
		type SQLiteColumn struct {
			Cid        int
			Name       string
			Type       string
			Notnull    int
			DefaultVal *string
			Pk         int
		}
		var sqliteCols []SQLiteColumn
		if err := db.Raw(fmt.Sprintf("PRAGMA table_info('%s')", tableName)).Scan(&sqliteCols).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}
		for _, col := range sqliteCols {
			info := ColumnInfo{
				Field: strings.ToLower(col.Name),
				Type:  strings.ToLower(col.Type),
			}
			if col.Pk > 0 {
				info.Key = "PRI"
			}
			columns = append(columns, info)
		}
		return columns, nil
	}

	err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", tableName)).Scan(&columns).Error
	if err != nil {
		if strings.Contains(err.Error(), "1146") || strings.Contains(strings.ToLower(err.Error()), "doesn't exist") {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	for i := range columns {
		columns[i].Type = strings.ToLower(columns[i].Type)
		columns[i].Field = strings.ToLower(columns[i].Field)
	}
	return columns, nil
}

// ScalarForColumn maps a lowercase SQL column type to the scalar name used in
// field declarations.
func ScalarForColumn(sqlType string) string {
	base := sqlType
	if i := strings.IndexAny(base, "( "); i >= 0 {
		base = base[:i]
	}
	switch {
	case sqlType == "tinyint(1)", base == "bool", base == "boolean", base == "bit":
		return model.TypeBoolean
	case strings.Contains(base, "int"), base == "decimal", base == "numeric",
		base == "float", base == "double", base == "real":
		return model.TypeNumber
	case base == "date", base == "datetime", base == "timestamp":
		return model.TypeDate
	default:
		return model.TypeString
	}
}

// InferFields derives field declarations from table columns, one field per
// column, named after it.
func InferFields(columns []ColumnInfo) []model.FieldDecl {
	fields := make([]model.FieldDecl, 0, len(columns))
	for _, col := range columns {
		fields = append(fields, model.F(col.Field, ScalarForColumn(col.Type)))
	}
	return fields
}
