package logger

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

// GormLoggerConfig configures the statement log.
type GormLoggerConfig struct {
	Level                gormlogger.LogLevel
	SlowThreshold        time.Duration
	IgnoreRecordNotFound bool
}

// DefaultGormLoggerConfig logs failures and slow statements only.
func DefaultGormLoggerConfig() GormLoggerConfig {
	return GormLoggerConfig{
		Level:         gormlogger.Warn,
		SlowThreshold: 200 * time.Millisecond,
	}
}

// ParseGormLevel maps SQL_LOG_LEVEL values onto gorm levels.
func ParseGormLevel(raw string) gormlogger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "silent", "off":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug", "all":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// GormLogger writes one "db.statement" entry per logged SQL statement.
// Bound values are never logged.
type GormLogger struct {
	cfg GormLoggerConfig
}

func NewGormLogger(cfg GormLoggerConfig) *GormLogger {
	return &GormLogger{cfg: cfg}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *l
	next.cfg.Level = level
	return &next
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Info, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Warn, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Error, msg, data)
}

func (l *GormLogger) message(ctx context.Context, at gormlogger.LogLevel, msg string, data []interface{}) {
	if l.cfg.Level < at {
		return
	}
	fields := []zap.Field{zap.String("component", "store")}
	if len(data) > 0 {
		fields = append(fields, zap.Any("data", data))
	}
	log := FromContext(ctx)
	switch at {
	case gormlogger.Error:
		log.Error(msg, fields...)
	case gormlogger.Warn:
		log.Warn(msg, fields...)
	default:
		log.Info(msg, fields...)
	}
}

// Trace classifies a finished statement as failed, slow or ok and logs it
// when the configured level allows.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.cfg.Level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	failed := err != nil && !(l.cfg.IgnoreRecordNotFound && errors.Is(err, gormlogger.ErrRecordNotFound))
	slow := l.cfg.SlowThreshold > 0 && elapsed > l.cfg.SlowThreshold

	switch {
	case failed && l.cfg.Level >= gormlogger.Error:
		l.statement(ctx, fc, elapsed, "failed", err, zapcore.ErrorLevel)
	case slow && l.cfg.Level >= gormlogger.Warn:
		l.statement(ctx, fc, elapsed, "slow", nil, zapcore.WarnLevel)
	case l.cfg.Level >= gormlogger.Info:
		l.statement(ctx, fc, elapsed, "ok", nil, zapcore.DebugLevel)
	}
}

// ParamsFilter strips bound values; guest names, phones and GSTINs must not
// reach the logs.
func (l *GormLogger) ParamsFilter(_ context.Context, sql string, _ ...interface{}) (string, []interface{}) {
	return sql, nil
}

func (l *GormLogger) statement(ctx context.Context, fc func() (string, int64), elapsed time.Duration, outcome string, err error, level zapcore.Level) {
	sql, rows := fc()
	st := describeStatement(sql)

	fields := []zap.Field{
		zap.String("component", "store"),
		zap.String("operation", st.operation),
		zap.String("outcome", outcome),
		zap.Int64("elapsed_ms", elapsed.Milliseconds()),
		zap.String("sql", strings.TrimSpace(sql)),
	}
	if st.table != "" {
		fields = append(fields, zap.String("table", st.table))
	}
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows", rows))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}

	if ce := FromContext(ctx).Check(level, "db.statement"); ce != nil {
		ce.Write(fields...)
	}
}

type statementInfo struct {
	operation string
	table     string
}

// describeStatement finds the DML keyword and its target table, looking only
// at the outermost query so CTE and subquery bodies are ignored.
func describeStatement(sql string) statementInfo {
	info := statementInfo{operation: "UNKNOWN"}
	words := topLevelWords(sql)
	for i, word := range words {
		upper := strings.ToUpper(word)
		if info.operation == "UNKNOWN" {
			switch upper {
			case "SELECT", "INSERT", "DELETE", "MERGE":
				info.operation = upper
			case "UPDATE":
				info.operation = upper
				if i+1 < len(words) {
					info.table = tableName(words[i+1])
				}
				return info
			}
			continue
		}
		if (upper == "FROM" || upper == "INTO") && i+1 < len(words) {
			info.table = tableName(words[i+1])
			return info
		}
	}
	return info
}

func operationFromSQL(sql string) string {
	return describeStatement(sql).operation
}

// topLevelWords splits sql into identifier-like words that sit outside any
// parentheses and string literals. Each top-level group is reduced to a "("
// placeholder.
func topLevelWords(sql string) []string {
	var (
		words   []string
		current strings.Builder
		depth   int
		quoted  bool
	)
	flush := func() {
		if current.Len() > 0 && depth == 0 {
			words = append(words, current.String())
		}
		current.Reset()
	}

	for _, r := range sql {
		if quoted {
			if r == '\'' {
				quoted = false
			}
			continue
		}
		switch {
		case r == '\'':
			flush()
			quoted = true
		case r == '(':
			flush()
			if depth == 0 {
				words = append(words, "(")
			}
			depth++
		case r == ')':
			flush()
			if depth > 0 {
				depth--
			}
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '.', r == '"', r == '`':
			current.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return words
}

var identifierQuotes = strings.NewReplacer(`"`, "", "`", "")

func tableName(word string) string {
	if word == "(" {
		return ""
	}
	return strings.ToLower(identifierQuotes.Replace(word))
}

var _ gormlogger.Interface = (*GormLogger)(nil)
