package observability

import (
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	startKey = "observability:start"
	spanKey  = "observability:span"
)

// InstrumentGorm registers callbacks that trace every statement and record
// its latency in DatabaseQueryLatency.
func InstrumentGorm(db *gorm.DB) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("observability:before_create", beforeStatement("create")),
		cb.Create().After("gorm:create").Register("observability:after_create", afterStatement("create")),
		cb.Query().Before("gorm:query").Register("observability:before_query", beforeStatement("query")),
		cb.Query().After("gorm:query").Register("observability:after_query", afterStatement("query")),
		cb.Update().Before("gorm:update").Register("observability:before_update", beforeStatement("update")),
		cb.Update().After("gorm:update").Register("observability:after_update", afterStatement("update")),
		cb.Delete().Before("gorm:delete").Register("observability:before_delete", beforeStatement("delete")),
		cb.Delete().After("gorm:delete").Register("observability:after_delete", afterStatement("delete")),
		cb.Row().Before("gorm:row").Register("observability:before_row", beforeStatement("row")),
		cb.Row().After("gorm:row").Register("observability:after_row", afterStatement("row")),
		cb.Raw().Before("gorm:raw").Register("observability:before_raw", beforeStatement("raw")),
		cb.Raw().After("gorm:raw").Register("observability:after_raw", afterStatement("raw")),
	)
}

func beforeStatement(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx, span := Tracer.Start(db.Statement.Context, "gorm."+op, trace.WithSpanKind(trace.SpanKindClient))
		db.Statement.Context = ctx
		db.InstanceSet(startKey, time.Now())
		db.InstanceSet(spanKey, span)
	}
}

func afterStatement(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		table := db.Statement.Table
		if v, ok := db.InstanceGet(startKey); ok {
			if start, ok := v.(time.Time); ok {
				DatabaseQueryLatency.WithLabelValues(op, table).Observe(time.Since(start).Seconds())
			}
		}
		v, ok := db.InstanceGet(spanKey)
		if !ok {
			return
		}
		span, ok := v.(trace.Span)
		if !ok {
			return
		}
		span.SetAttributes(
			attribute.String("db.operation", op),
			attribute.String("db.sql.table", table),
			attribute.Int64("db.rows_affected", db.RowsAffected),
		)
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			span.RecordError(db.Error)
			span.SetStatus(codes.Error, db.Error.Error())
		}
		span.End()
	}
}
