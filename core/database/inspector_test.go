package database

import (
	"testing"

	"datasync/core/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE test_items (id INTEGER PRIMARY KEY, name TEXT, description TEXT)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "test_items")
	require.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]string)
	for _, col := range columns {
		colMap[col.Field] = col.Type
	}

	assert.Equal(t, "integer", colMap["id"])
	assert.Equal(t, "text", colMap["name"])
	assert.Equal(t, "text", colMap["description"])
	assert.Equal(t, "PRI", columns[0].Key)

	// PRAGMA table_info returns an empty result for a missing table.
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)

	_, err = GetTableColumns(db, "items; DROP TABLE x")
	assert.Error(t, err)
}

func TestGetTableColumns_MySQL(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SHOW COLUMNS FROM `users`").WillReturnRows(
		sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
			AddRow("ID", "INT(11)", "NO", "PRI", nil, "auto_increment").
			AddRow("Name", "VARCHAR(64)", "YES", "", nil, ""),
	)

	columns, err := GetTableColumns(db, "users")
	require.NoError(t, err)
	require.Len(t, columns, 2)
	assert.Equal(t, "id", columns[0].Field)
	assert.Equal(t, "int(11)", columns[0].Type)
	assert.Equal(t, "varchar(64)", columns[1].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScalarForColumn(t *testing.T) {
	tests := []struct {
		sqlType string
		want    string
	}{
		{"int(11)", model.TypeNumber},
		{"bigint unsigned", model.TypeNumber},
		{"integer", model.TypeNumber},
		{"decimal(10,2)", model.TypeNumber},
		{"double", model.TypeNumber},
		{"tinyint(1)", model.TypeBoolean},
		{"boolean", model.TypeBoolean},
		{"tinyint(4)", model.TypeNumber},
		{"datetime", model.TypeDate},
		{"timestamp", model.TypeDate},
		{"date", model.TypeDate},
		{"varchar(255)", model.TypeString},
		{"text", model.TypeString},
		{"enum('a','b')", model.TypeString},
	}

	for _, tt := range tests {
		t.Run(tt.sqlType, func(t *testing.T) {
			assert.Equal(t, tt.want, ScalarForColumn(tt.sqlType))
		})
	}
}

func TestInferFields(t *testing.T) {
	fields := InferFields([]ColumnInfo{{Field: "id", Type: "int(11)"}, {Field: "created_at", Type: "datetime"}})
	assert.Equal(t, []model.FieldDecl{model.F("id", "number"), model.F("created_at", "date")}, fields)

	_, err := model.NewRegistry().Register("Row", fields, "")
	assert.NoError(t, err)
}
