package dataset

import (
	"fmt"
	"reflect"
	"time"

	"github.com/featureform/sparkify/fferr"
	types "github.com/featureform/sparkify/fftypes"
	"github.com/parquet-go/parquet-go"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Column struct {
	Name string
	Type types.ScalarType
}

type Schema struct {
	Columns []Column
}

func NewSchema(columns ...Column) Schema {
	return Schema{Columns: columns}
}

func (schema Schema) Names() []string {
	names := make([]string, len(schema.Columns))
	for i, col := range schema.Columns {
		names[i] = col.Name
	}
	return names
}

// Index returns the position of the named column or -1.
func (schema Schema) Index(name string) int {
	for i, col := range schema.Columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// Without returns the schema minus the named columns along with the
// positions, in the original schema, of the columns that were kept.
func (schema Schema) Without(names ...string) (Schema, []int) {
	drop := make(map[string]bool, len(names))
	for _, name := range names {
		drop[name] = true
	}
	kept := Schema{}
	positions := make([]int, 0, len(schema.Columns))
	for i, col := range schema.Columns {
		if drop[col.Name] {
			continue
		}
		kept.Columns = append(kept.Columns, col)
		positions = append(positions, i)
	}
	return kept, positions
}

func (schema Schema) Validate(record GenericRecord) error {
	if len(record) != len(schema.Columns) {
		return fferr.NewInternalErrorf("record has %d values, schema has %d columns", len(record), len(schema.Columns))
	}
	for i, col := range schema.Columns {
		if err := col.Type.Check(record[i]); err != nil {
			typed, _ := fferr.As(err)
			typed.AddDetail("column", col.Name)
			return err
		}
	}
	return nil
}

// StructType converts the list of columns into a struct type that can be
// serialized by parquet-go. GenericRecord does not hold the metadata
// parquet-go needs to build a schema, a struct type does.
func (schema Schema) StructType() reflect.Type {
	caser := cases.Title(language.English)
	fields := make([]reflect.StructField, len(schema.Columns))
	for i, col := range schema.Columns {
		tag := fmt.Sprintf(`parquet:"%s,optional"`, col.Name)
		if col.Type == types.Timestamp {
			tag = fmt.Sprintf(`parquet:"%s,optional,timestamp(microsecond)"`, col.Name)
		}
		fields[i] = reflect.StructField{
			// Title casing keeps the fields exported; the tag carries the real name.
			Name: fmt.Sprintf("%s%d", caser.String(col.Name), i),
			Type: col.Type.Type(),
			Tag:  reflect.StructTag(tag),
		}
	}
	return reflect.StructOf(fields)
}

func (schema Schema) ParquetSchema() *parquet.Schema {
	return parquet.SchemaOf(reflect.New(schema.StructType()).Interface())
}

// ToParquetRecords converts records into pointers to StructType values.
// Pointer fields are left nil for null values so they stay null on disk;
// timestamp fields keep the zero time, which parquet-go writes as null.
func (schema Schema) ToParquetRecords(records []GenericRecord) ([]any, error) {
	structType := schema.StructType()
	parquetRecords := make([]any, len(records))
	for i, record := range records {
		if err := schema.Validate(record); err != nil {
			return nil, err
		}
		parquetRecord := reflect.New(structType)
		for j, value := range record {
			if value == nil {
				continue
			}
			field := parquetRecord.Elem().Field(j)
			switch v := value.(type) {
			case string:
				field.Set(reflect.ValueOf(&v))
			case int32:
				field.Set(reflect.ValueOf(&v))
			case int64:
				field.Set(reflect.ValueOf(&v))
			case float64:
				field.Set(reflect.ValueOf(&v))
			case time.Time:
				field.Set(reflect.ValueOf(v))
			default:
				return nil, fferr.NewInternalErrorf("unsupported value type %T", value)
			}
		}
		parquetRecords[i] = parquetRecord.Interface()
	}
	return parquetRecords, nil
}
