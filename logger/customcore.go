// customcore.go
package logger

import (
	"go.uber.org/zap/zapcore"
)

// trailingKeys are written after all call-site fields so the interesting data leads each line.
var trailingKeys = map[string]bool{
	"application": true,
	"version":     true,
}

// customCore reorders fields before handing them to the wrapped core.
type customCore struct {
	zapcore.Core
}

// With keeps the context fields on the wrapper so Write can still reorder them.
func (c *customCore) With(fields []zapcore.Field) zapcore.Core {
	return &contextCore{customCore: c, context: fields}
}

// Write moves application metadata to the end of the field list.
func (c *customCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	return c.Core.Write(entry, reorderFields(fields))
}

// Check registers the wrapper, not the inner core, so Write goes through reordering.
func (c *customCore) Check(entry zapcore.Entry, checkedEntry *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checkedEntry.AddCore(entry, c)
	}
	return checkedEntry
}

// Sync flushes buffered logs (if any).
func (c *customCore) Sync() error {
	return c.Core.Sync()
}

// contextCore carries fields added through With until write time.
type contextCore struct {
	*customCore
	context []zapcore.Field
}

func (c *contextCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.context)+len(fields))
	merged = append(merged, c.context...)
	merged = append(merged, fields...)
	return &contextCore{customCore: c.customCore, context: merged}
}

func (c *contextCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	all := make([]zapcore.Field, 0, len(c.context)+len(fields))
	all = append(all, c.context...)
	all = append(all, fields...)
	return c.customCore.Write(entry, all)
}

func (c *contextCore) Check(entry zapcore.Entry, checkedEntry *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checkedEntry.AddCore(entry, c)
	}
	return checkedEntry
}

func reorderFields(fields []zapcore.Field) []zapcore.Field {
	ordered := make([]zapcore.Field, 0, len(fields))
	var trailing []zapcore.Field
	for _, field := range fields {
		if trailingKeys[field.Key] {
			trailing = append(trailing, field)
			continue
		}
		ordered = append(ordered, field)
	}
	return append(ordered, trailing...)
}
