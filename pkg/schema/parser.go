package schema

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

const (
	// StructTagKey is the key used in struct tags (e.g., `po:"..."`).
	StructTagKey = "po"
)

// Tabler is implemented by models that name their own table.
type Tabler interface {
	TableName() string
}

// Parser parses struct definitions to extract table metadata.
type Parser struct {
	mu    sync.Mutex
	cache map[reflect.Type]*TableMetadata
}

// NewParser creates a new Parser instance.
func NewParser() *Parser {
	return &Parser{cache: make(map[reflect.Type]*TableMetadata)}
}

var (
	tableNamesMu     sync.RWMutex
	customTableNames = make(map[string]string) // Struct name → table name
)

// RegisterTableName registers a custom table name for a struct type that does
// not implement Tabler.
func RegisterTableName(structName, tableName string) {
	tableNamesMu.Lock()
	defer tableNamesMu.Unlock()
	customTableNames[structName] = tableName
}

// Parse extracts TableMetadata from a Go struct type.
//
// Tag format: `po:"column,option,option(value)"`. Recognised options:
//
//	primaryKey, notNull, unique, index, index(name), uniqueIndex
//	default(expr), check(expr)
//	fk(table.column), onDelete(action), onUpdate(action)
//	unique(group)   composite unique constraint shared by every column in group
//	<sql type>      uuid, text, varchar(n), numeric(p,s), timestamptz, ...
//
// Fields without a po tag are not columns.
func (p *Parser) Parse(modelType reflect.Type) (*TableMetadata, error) {
	for modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}
	if modelType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be a struct, got %s", modelType.Kind())
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if cached, ok := p.cache[modelType]; ok {
		return cached, nil
	}

	table := &TableMetadata{
		Name:        TableNameOf(modelType),
		GoType:      modelType,
		Columns:     make([]ColumnMetadata, 0),
		ForeignKeys: make([]ForeignKeyMetadata, 0),
		Indexes:     make([]IndexMetadata, 0),
		Constraints: make([]ConstraintMetadata, 0),
	}
	uniqueGroups := make(map[string][]string)

	for i := 0; i < modelType.NumField(); i++ {
		field := modelType.Field(i)
		if !field.IsExported() {
			continue
		}
		tagValue := field.Tag.Get(StructTagKey)
		if tagValue == "" || tagValue == "-" {
			continue
		}

		opts, err := p.parseTag(tagValue)
		if err != nil {
			return nil, fmt.Errorf("failed to parse tag for field %s: %w", field.Name, err)
		}
		column, err := p.createColumnMetadata(field, opts, i)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}

		if opts.Has("primaryKey") {
			if table.PrimaryKey == nil {
				table.PrimaryKey = &PrimaryKeyMetadata{
					Columns: []string{column.Name},
					Name:    table.Name + "_pkey",
				}
			} else {
				table.PrimaryKey.Columns = append(table.PrimaryKey.Columns, column.Name)
			}
		}

		if group := opts.Get("unique"); group != "" {
			uniqueGroups[group] = append(uniqueGroups[group], column.Name)
		}

		if fk, ok := parseForeignKey(table.Name, column.Name, opts); ok {
			table.ForeignKeys = append(table.ForeignKeys, fk)
		}

		// UNIQUE columns get an implicit index from PostgreSQL.
		if opts.Has("index") || opts.Has("uniqueIndex") {
			name := opts.Get("index")
			if name == "" {
				name = opts.Get("uniqueIndex")
			}
			if name == "" {
				name = fmt.Sprintf("idx_%s_%s", table.Name, column.Name)
			}
			table.Indexes = append(table.Indexes, IndexMetadata{
				Name:    name,
				Table:   table.Name,
				Columns: []string{column.Name},
				Unique:  opts.Has("uniqueIndex"),
				Type:    "btree",
			})
		}

		if column.Check != "" {
			table.Constraints = append(table.Constraints, ConstraintMetadata{
				Name:       fmt.Sprintf("%s_%s_check", table.Name, column.Name),
				Type:       CheckConstraint,
				Columns:    []string{column.Name},
				Expression: column.Check,
			})
		}

		table.Columns = append(table.Columns, column)
	}

	groups := make([]string, 0, len(uniqueGroups))
	for g := range uniqueGroups {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	for _, g := range groups {
		table.Constraints = append(table.Constraints, ConstraintMetadata{
			Name:    fmt.Sprintf("%s_%s_key", table.Name, g),
			Type:    UniqueConstraint,
			Columns: uniqueGroups[g],
		})
	}

	p.cache[modelType] = table
	return table, nil
}

// TableNameOf resolves the table name for a struct type.
// Priority order:
// 1. TableName() on the value or pointer receiver
// 2. RegisterTableName
// 3. snake_case of the struct name
func TableNameOf(modelType reflect.Type) string {
	for modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}
	if t, ok := reflect.New(modelType).Interface().(Tabler); ok {
		if name := t.TableName(); name != "" {
			return name
		}
	}

	tableNamesMu.RLock()
	name, ok := customTableNames[modelType.Name()]
	tableNamesMu.RUnlock()
	if ok {
		return name
	}
	return toSnakeCase(modelType.Name())
}

// createColumnMetadata creates a ColumnMetadata from a struct field.
func (p *Parser) createColumnMetadata(field reflect.StructField, opts *TagOptions, position int) (ColumnMetadata, error) {
	column := ColumnMetadata{
		Name:     opts.Name,
		GoField:  field.Name,
		GoType:   field.Type,
		Position: position,
	}
	if column.Name == "" {
		column.Name = toSnakeCase(field.Name)
	}

	if sqlType := opts.GetSQLType(); sqlType != "" {
		column.SQLType = sqlType
	} else {
		column.SQLType = SQLTypeOf(field.Type)
	}
	if column.SQLType == "" {
		return column, fmt.Errorf("no PostgreSQL type for %s; add a type option to the tag", field.Type)
	}

	column.Nullable = field.Type.Kind() == reflect.Pointer || (!opts.Has("notNull") && !opts.Has("primaryKey"))

	if defaultVal := opts.Get("default"); defaultVal != "" {
		if err := ValidateDefaultValue(defaultVal); err != nil {
			return column, err
		}
		column.Default = &defaultVal
	}

	// unique(group) is a composite constraint, handled by the caller.
	column.Unique = opts.Has("unique") && opts.Get("unique") == ""
	column.Check = opts.Get("check")

	return column, nil
}

// TagOptions represents parsed tag options.
type TagOptions struct {
	Name    string            // Column name (first element)
	Options map[string]string // Other options
}

// parseTag parses a struct tag value into TagOptions.
// Format: "column_name,option1,option2(value),option3"
func (p *Parser) parseTag(tag string) (*TagOptions, error) {
	parts := splitTag(tag)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty tag value")
	}
	opts := &TagOptions{
		Name:    parts[0],
		Options: make(map[string]string),
	}
	for i := 1; i < len(parts); i++ {
		opt := parts[i]
		if idx := strings.Index(opt, "("); idx != -1 {
			if !strings.HasSuffix(opt, ")") {
				return nil, fmt.Errorf("invalid option format: %s", opt)
			}
			key := opt[:idx]
			value := opt[idx+1 : len(opt)-1]
			opts.Options[key] = value
		} else {
			opts.Options[opt] = ""
		}
	}
	return opts, nil
}

// Has checks if an option exists.
func (t *TagOptions) Has(key string) bool {
	_, ok := t.Options[key]
	return ok
}

// Get returns the value of an option.
func (t *TagOptions) Get(key string) string {
	return t.Options[key]
}

// GetSQLType returns the SQL type from tag options.
func (t *TagOptions) GetSQLType() string {
	pgTypes := []string{
		"uuid", "varchar", "text", "char",
		"smallint", "integer", "bigint",
		"numeric", "decimal", "real", "double precision",
		"boolean",
		"date", "timestamp", "timestamptz",
		"jsonb", "bytea",
	}
	for _, pgType := range pgTypes {
		if t.Has(pgType) {
			if value := t.Get(pgType); value != "" {
				return fmt.Sprintf("%s(%s)", pgType, value)
			}
			return pgType
		}
	}
	// Array forms such as text[] are spelled out literally.
	for key := range t.Options {
		if strings.HasSuffix(key, "[]") {
			return key
		}
	}
	return ""
}

// splitTag splits a tag value by commas, handling nested parentheses.
func splitTag(tag string) []string {
	var parts []string
	var current strings.Builder
	depth := 0
	for _, ch := range tag {
		switch ch {
		case '(':
			depth++
			current.WriteRune(ch)
		case ')':
			depth--
			current.WriteRune(ch)
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(current.String()))
				current.Reset()
			} else {
				current.WriteRune(ch)
			}
		default:
			current.WriteRune(ch)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, strings.TrimSpace(current.String()))
	}
	return parts
}

// toSnakeCase converts a string from PascalCase to snake_case.
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, ch := range s {
		if i > 0 && ch >= 'A' && ch <= 'Z' {
			result.WriteRune('_')
		}
		result.WriteRune(ch)
	}
	return strings.ToLower(result.String())
}

// parseForeignKey reads fk(table.column) plus the optional referential actions.
func parseForeignKey(tableName, columnName string, opts *TagOptions) (ForeignKeyMetadata, bool) {
	fkStr := opts.Get("fk")
	if fkStr == "" {
		return ForeignKeyMetadata{}, false
	}

	refTable, refColumn, ok := strings.Cut(fkStr, ".")
	if !ok || refTable == "" || refColumn == "" {
		return ForeignKeyMetadata{}, false
	}

	return ForeignKeyMetadata{
		Name:              fmt.Sprintf("fk_%s_%s", tableName, columnName),
		Columns:           []string{columnName},
		ReferencedTable:   refTable,
		ReferencedColumns: []string{refColumn},
		OnDelete:          parseReferenceAction(opts.Get("onDelete")),
		OnUpdate:          parseReferenceAction(opts.Get("onUpdate")),
	}, true
}

// parseReferenceAction converts a string to ReferenceAction.
func parseReferenceAction(action string) ReferenceAction {
	switch strings.ToUpper(strings.TrimSpace(action)) {
	case "CASCADE":
		return Cascade
	case "RESTRICT":
		return Restrict
	case "SETNULL", "SET NULL":
		return SetNull
	case "SETDEFAULT", "SET DEFAULT":
		return SetDefault
	default:
		return NoAction
	}
}
