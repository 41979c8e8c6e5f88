// Package export dumps a study's completed trials into Arrow records
// and Parquet files for offline analysis.
package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/apache/arrow/go/v13/parquet"
	"github.com/apache/arrow/go/v13/parquet/pqarrow"

	"github.com/jpfeil/hubsampler/pkg/core"
	"github.com/jpfeil/hubsampler/pkg/errors"
)

// trialSchema builds the Arrow schema for a study: trial metadata,
// one value column per objective, and JSON-encoded params and attrs.
func trialSchema(nObjectives int) *arrow.Schema {
	fields := []arrow.Field{
		{Name: "number", Type: arrow.PrimitiveTypes.Int64},
		{Name: "state", Type: arrow.BinaryTypes.String},
	}
	for i := 0; i < nObjectives; i++ {
		fields = append(fields, arrow.Field{
			Name: fmt.Sprintf("value_%d", i),
			Type: arrow.PrimitiveTypes.Float64,
		})
	}
	fields = append(fields,
		arrow.Field{Name: "params", Type: arrow.BinaryTypes.String},
		arrow.Field{Name: "system_attrs", Type: arrow.BinaryTypes.String},
	)
	return arrow.NewSchema(fields, nil)
}

// TrialRecord builds an Arrow record of the study's completed trials.
// The caller must Release the record.
func TrialRecord(study *core.Study) (arrow.Record, error) {
	trials, err := study.CompletedTrials()
	if err != nil {
		return nil, err
	}

	nObjectives := len(study.Directions())
	schema := trialSchema(nObjectives)
	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	numberB := builder.Field(0).(*array.Int64Builder)
	stateB := builder.Field(1).(*array.StringBuilder)
	valueBs := make([]*array.Float64Builder, nObjectives)
	for i := range valueBs {
		valueBs[i] = builder.Field(2 + i).(*array.Float64Builder)
	}
	paramsB := builder.Field(2 + nObjectives).(*array.StringBuilder)
	attrsB := builder.Field(3 + nObjectives).(*array.StringBuilder)

	for _, t := range trials {
		numberB.Append(int64(t.Number))
		stateB.Append(t.State.String())
		for i := range valueBs {
			if i < len(t.Values) {
				valueBs[i].Append(t.Values[i])
			} else {
				valueBs[i].AppendNull()
			}
		}
		paramsJSON, err := json.Marshal(t.Params)
		if err != nil {
			return nil, errors.Wrap(err, errors.InvalidInput, "failed to encode trial params")
		}
		attrsJSON, err := json.Marshal(t.SystemAttrs)
		if err != nil {
			return nil, errors.Wrap(err, errors.InvalidInput, "failed to encode trial attrs")
		}
		paramsB.Append(string(paramsJSON))
		attrsB.Append(string(attrsJSON))
	}

	return builder.NewRecord(), nil
}

// WriteParquet writes the study's completed trials to a Parquet file.
func WriteParquet(path string, study *core.Study) error {
	record, err := TrialRecord(study)
	if err != nil {
		return err
	}
	defer record.Release()

	table := array.NewTableFromRecords(record.Schema(), []arrow.Record{record})
	defer table.Release()

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.StorageFailed, "failed to create parquet file")
	}
	defer f.Close()

	return pqarrow.WriteTable(
		table,
		f,
		table.NumRows(),
		parquet.NewWriterProperties(),
		pqarrow.DefaultWriterProps(),
	)
}
