package table

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paulmthompson/seriestable/errors"
)

// ArrowRecord materializes the view as an Arrow record batch: one field per
// column in table order, float vectors as list<float32>. The caller owns the
// returned record and must Release it.
func (t *TableView) ArrowRecord(mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	fields := make([]arrow.Field, len(t.names))
	for i, name := range t.names {
		dt, err := arrowType(t.data[i].Kind())
		if err != nil {
			return nil, err
		}
		fields[i] = arrow.Field{Name: name, Type: dt}
	}
	schema := arrow.NewSchema(fields, nil)

	rb := array.NewRecordBuilder(mem, schema)
	defer rb.Release()

	for i := range t.names {
		d := t.data[i]
		switch d.Kind() {
		case ValueFloat64:
			rb.Field(i).(*array.Float64Builder).AppendValues(d.floats, nil)
		case ValueInt64:
			rb.Field(i).(*array.Int64Builder).AppendValues(d.ints, nil)
		case ValueInt32:
			rb.Field(i).(*array.Int32Builder).AppendValues(d.ints32, nil)
		case ValueBool:
			rb.Field(i).(*array.BooleanBuilder).AppendValues(d.bools, nil)
		case ValueFloatVector:
			lb := rb.Field(i).(*array.ListBuilder)
			vb := lb.ValueBuilder().(*array.Float32Builder)
			for _, vec := range d.vectors {
				lb.Append(true)
				vb.AppendValues(vec, nil)
			}
		}
	}

	return rb.NewRecord(), nil
}

func arrowType(k ValueKind) (arrow.DataType, error) {
	switch k {
	case ValueFloat64:
		return arrow.PrimitiveTypes.Float64, nil
	case ValueInt64:
		return arrow.PrimitiveTypes.Int64, nil
	case ValueInt32:
		return arrow.PrimitiveTypes.Int32, nil
	case ValueBool:
		return arrow.FixedWidthTypes.Boolean, nil
	case ValueFloatVector:
		return arrow.ListOf(arrow.PrimitiveTypes.Float32), nil
	default:
		return nil, errors.WrapConfig(errors.ErrColumnKind, "TableView", "ArrowRecord", "arrow type mapping")
	}
}
