// Package ch provides a read-only clickhouse client for query-backed tables
package ch

import (
	"context"
	"reflect"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Config configures clickhouse client
type Config struct {
	URL string

	// Role and Tag are reported to the server as client info
	Role string
	Tag  string
}

// Rows is the minimal result set iteration for ch
type Rows interface {
	Next() bool
	Values() ([]any, error)
	Err() error
	Close() error
	Columns() []string
}

// CH wraps a clickhouse-go connection
type CH struct {
	conn driver.Conn
}

var openConn = clickhouse.Open // seam

// Open parses the DSN and opens a connection; the driver connects lazily
func Open(_ context.Context, cfg Config) (*CH, error) {
	opts, err := clickhouse.ParseDSN(cfg.URL)
	if err != nil {
		return nil, err
	}
	opts.ClientInfo = clientInfo(cfg.Role, cfg.Tag)
	conn, err := openConn(opts)
	if err != nil {
		return nil, err
	}
	return &CH{conn: conn}, nil
}

// clientInfo names this process in system.query_log
func clientInfo(role, tag string) clickhouse.ClientInfo {
	or := func(s string) string {
		if s = strings.TrimSpace(s); s == "" {
			return "unknown"
		}
		return s
	}
	rev := ""
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, st := range bi.Settings {
			if st.Key == "vcs.revision" && len(st.Value) >= 7 {
				rev = st.Value[:7]
			}
		}
	}
	return clickhouse.ClientInfo{Products: []struct{ Name, Version string }{
		{Name: "sentiprep", Version: or(tag)},
		{Name: "role", Version: or(role)},
		{Name: "go", Version: runtime.Version()},
		{Name: "commit", Version: or(rev)},
	}}
}

// Ping verifies connectivity
func (c *CH) Ping(ctx context.Context) error { return c.conn.Ping(ctx) }

// Query runs a query and returns ch.Rows
func (c *CH) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	r, err := c.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return &rows{r: r}, nil
}

// Close closes resources
func (c *CH) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// rows scans each record into freshly allocated values of the driver's scan types
type rows struct {
	r     driver.Rows
	types []reflect.Type
}

func (x *rows) Next() bool        { return x.r.Next() }
func (x *rows) Err() error        { return x.r.Err() }
func (x *rows) Close() error      { return x.r.Close() }
func (x *rows) Columns() []string { return x.r.Columns() }

func (x *rows) Values() ([]any, error) {
	if x.types == nil {
		cts := x.r.ColumnTypes()
		x.types = make([]reflect.Type, len(cts))
		for i, ct := range cts {
			x.types[i] = ct.ScanType()
		}
	}
	dest := make([]any, len(x.types))
	for i, t := range x.types {
		dest[i] = reflect.New(t).Interface()
	}
	if err := x.r.Scan(dest...); err != nil {
		return nil, err
	}
	out := make([]any, len(dest))
	for i, d := range dest {
		out[i] = indirect(reflect.ValueOf(d))
	}
	return out, nil
}

// indirect follows pointers; a nil pointer (Nullable NULL) becomes nil
func indirect(v reflect.Value) any {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	return v.Interface()
}
