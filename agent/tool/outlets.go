package tool

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const outletResultLimit = 5

// Outlet is one row of the ingested outlet database.
type Outlet struct {
	bun.BaseModel `bun:"table:outlets" json:"-"`

	Name         string `bun:"name" json:"name"`
	OpeningHours string `bun:"opening_hours" json:"opening_hours"`
	Services     string `bun:"services" json:"services"`
	City         string `bun:"city" json:"city"`
	State        string `bun:"state" json:"state"`
}

// OpenOutletsDB opens the SQLite outlet database through bun.
func OpenOutletsDB(path string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, fmt.Errorf("open outlets database: %w", err)
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// OutletsTool answers outlet questions with parameterized LIKE filtering.
// User text is only ever bound as a query argument, never spliced into SQL,
// so injection-style input degrades to an ordinary zero-match result.
type OutletsTool struct {
	db   *bun.DB
	path string
}

func NewOutletsTool(db *bun.DB, path string) *OutletsTool {
	return &OutletsTool{db: db, path: path}
}

func (o *OutletsTool) Name() string { return "outlets" }

func (o *OutletsTool) Run(ctx context.Context, req Request) (Response, error) {
	if o.db == nil || !fileExists(o.path) {
		return Response{
			Content: "Outlet database unavailable right now. Please try again later.",
			Data:    map[string]any{"database_exists": false},
		}, nil
	}

	query := strings.TrimSpace(req.Slot("location"))
	if query == "" {
		query = strings.TrimSpace(req.Query)
	}

	rows, err := o.searchOutlets(ctx, query)
	if err != nil {
		return Response{}, fmt.Errorf("outlet lookup: %w", err)
	}

	if len(rows) == 0 {
		return Response{
			Content: "I couldn't find an outlet matching that description.",
			Data:    map[string]any{"results": []Outlet{}},
		}, nil
	}

	shown := rows
	if len(shown) > 3 {
		shown = shown[:3]
	}
	lines := make([]string, 0, len(shown))
	for _, row := range shown {
		lines = append(lines, fmt.Sprintf("%s — opens %s", row.Name, hoursOrTBD(row.OpeningHours)))
	}

	return Response{
		Content: "Here are the closest matches:\n" + strings.Join(lines, "\n"),
		Data:    map[string]any{"results": shown},
		Success: true,
	}, nil
}

func (o *OutletsTool) searchOutlets(ctx context.Context, query string) ([]Outlet, error) {
	pattern := "%" + strings.ReplaceAll(strings.ToLower(query), "%", "") + "%"

	var rows []Outlet
	err := o.db.NewSelect().
		Model(&rows).
		Where("lower(name) LIKE ?", pattern).
		WhereOr("lower(city) LIKE ?", pattern).
		WhereOr("lower(state) LIKE ?", pattern).
		Order("name ASC").
		Limit(outletResultLimit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func hoursOrTBD(hours string) string {
	if strings.TrimSpace(hours) == "" {
		return "TBD"
	}
	return hours
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
