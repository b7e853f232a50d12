package store

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	"github.com/richard-senior/h2h/internal/logger"
)

// Persistable is anything with struct tags describing its table.
// Fields need a dbtype tag to be stored, column overrides the lower cased field name,
// primary marks (possibly compound) primary key columns and index adds an index.
type Persistable interface {
	GetTableName() string
	GetPrimaryKey() map[string]any
	BeforeSave() error
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// createTable creates the table and indexes for obj if they don't already exist
func createTable(q querier, obj Persistable) error {
	tableName := obj.GetTableName()
	createSQL := generateCreateTableSQL(obj, tableName)

	logger.Debug("Creating table with SQL", createSQL)
	if _, err := q.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	for _, query := range generateIndexSQL(obj, tableName) {
		if _, err := q.Exec(query); err != nil {
			logger.Warn("Failed to create index", err)
		}
	}
	return nil
}

// persistedFields walks the exported, dbtype tagged fields of obj
func persistedFields(obj any, fn func(field reflect.StructField, value reflect.Value, column string)) {
	objValue := reflect.ValueOf(obj)
	if objValue.Kind() == reflect.Ptr {
		objValue = objValue.Elem()
	}
	objType := objValue.Type()

	for i := 0; i < objType.NumField(); i++ {
		field := objType.Field(i)
		if !field.IsExported() || field.Tag.Get("dbtype") == "" || field.Tag.Get("db") == "-" {
			continue
		}
		column := field.Tag.Get("column")
		if column == "" {
			column = strings.ToLower(field.Name)
		}
		fn(field, objValue.Field(i), column)
	}
}

func generateCreateTableSQL(obj any, tableName string) string {
	var columns, primaryKeys []string
	persistedFields(obj, func(field reflect.StructField, _ reflect.Value, column string) {
		dbType := field.Tag.Get("dbtype")
		if field.Tag.Get("primary") == "true" {
			primaryKeys = append(primaryKeys, column)
			dbType = strings.TrimSpace(strings.ReplaceAll(dbType, "PRIMARY KEY", ""))
		}
		columns = append(columns, fmt.Sprintf("%s %s", column, dbType))
	})
	if len(primaryKeys) > 0 {
		columns = append(columns, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(primaryKeys, ", ")))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", tableName, strings.Join(columns, ", "))
}

func generateIndexSQL(obj any, tableName string) []string {
	var indexSQL []string
	persistedFields(obj, func(field reflect.StructField, _ reflect.Value, column string) {
		if field.Tag.Get("index") == "" {
			return
		}
		indexSQL = append(indexSQL, fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s(%s)", tableName, column, tableName, column))
	})
	return indexSQL
}

// save inserts obj, or updates it if a row with the same primary key exists
func save(q querier, obj Persistable) error {
	if err := obj.BeforeSave(); err != nil {
		return fmt.Errorf("before save hook failed: %w", err)
	}

	exists, err := exists(q, obj)
	if err != nil {
		return err
	}
	if exists {
		return update(q, obj)
	}
	return insert(q, obj)
}

func insert(q querier, obj Persistable) error {
	tableName := obj.GetTableName()

	var columns, placeholders []string
	var values []any
	persistedFields(obj, func(_ reflect.StructField, value reflect.Value, column string) {
		columns = append(columns, column)
		placeholders = append(placeholders, "?")
		values = append(values, value.Interface())
	})

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", tableName, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	logger.Debug("Insert SQL", query)
	if _, err := q.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", tableName, err)
	}
	return nil
}

func update(q querier, obj Persistable) error {
	tableName := obj.GetTableName()

	var setPairs []string
	var values []any
	persistedFields(obj, func(field reflect.StructField, value reflect.Value, column string) {
		if field.Tag.Get("primary") == "true" {
			return
		}
		setPairs = append(setPairs, column+" = ?")
		values = append(values, value.Interface())
	})

	whereClause, whereValues := buildWhereClause(obj.GetPrimaryKey())
	values = append(values, whereValues...)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", tableName, strings.Join(setPairs, ", "), whereClause)
	logger.Debug("Update SQL", query)
	if _, err := q.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to update %s: %w", tableName, err)
	}
	return nil
}

func exists(q querier, obj Persistable) (bool, error) {
	tableName := obj.GetTableName()
	whereClause, values := buildWhereClause(obj.GetPrimaryKey())

	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", tableName, whereClause)
	if err := q.QueryRow(query, values...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check existence in %s: %w", tableName, err)
	}
	return count > 0, nil
}

// findWhere returns new instances of obj's type for every row matching whereClause.
// whereClause may carry an ORDER BY.
func findWhere(q querier, obj Persistable, whereClause string, args ...any) ([]any, error) {
	tableName := obj.GetTableName()
	columns, _ := selectData(obj)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(columns, ", "), tableName, whereClause)
	logger.Debug("FindWhere SQL", query)

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", tableName, err)
	}
	defer rows.Close()

	objType := reflect.TypeOf(obj)
	if objType.Kind() == reflect.Ptr {
		objType = objType.Elem()
	}

	var results []any
	for rows.Next() {
		newObj := reflect.New(objType).Interface()
		_, destinations := selectData(newObj)
		if err := rows.Scan(destinations...); err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", tableName, err)
		}
		results = append(results, newObj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows from %s: %w", tableName, err)
	}
	return results, nil
}

func selectData(obj any) ([]string, []any) {
	var columns []string
	var destinations []any
	persistedFields(obj, func(_ reflect.StructField, value reflect.Value, column string) {
		columns = append(columns, column)
		destinations = append(destinations, value.Addr().Interface())
	})
	return columns, destinations
}

func buildWhereClause(primaryKey map[string]any) (string, []any) {
	var conditions []string
	var values []any
	for column, value := range primaryKey {
		conditions = append(conditions, column+" = ?")
		values = append(values, value)
	}
	return strings.Join(conditions, " AND "), values
}
