package vector

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	_ "modernc.org/sqlite"

	"github.com/brandonestevez/walter/internal/crs"
)

// geoPackage reads OGC GeoPackage files, which are SQLite databases with a
// gpkg_contents registry and geometry stored as header-prefixed WKB blobs.
type geoPackage struct{}

func init() {
	Register(&geoPackage{})
}

// Name returns "geopackage".
func (g *geoPackage) Name() string { return "geopackage" }

// Description returns a one-line summary for listings.
func (g *geoPackage) Description() string { return "OGC GeoPackage feature tables (.gpkg)" }

// Extensions returns the extensions this reader handles.
func (g *geoPackage) Extensions() []string { return []string{".gpkg"} }

// Read loads the first feature table registered in gpkg_contents. Attribute
// columns follow table order with the primary key and geometry column
// excluded; the CRS comes from gpkg_spatial_ref_sys.
func (g *geoPackage) Read(path string) (*Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("geopackage: %w", err)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("geopackage: open %s: %w", path, err)
	}
	defer db.Close()

	table, srsID, err := firstFeatureTable(db)
	if err != nil {
		return nil, fmt.Errorf("geopackage: %s: %w", path, err)
	}
	geomCol, err := geometryColumn(db, table)
	if err != nil {
		return nil, fmt.Errorf("geopackage: %s: %w", path, err)
	}
	info, err := spatialRef(db, srsID)
	if err != nil {
		return nil, fmt.Errorf("geopackage: %s: %w", path, err)
	}
	columns, err := attributeColumns(db, table, geomCol)
	if err != nil {
		return nil, fmt.Errorf("geopackage: %s: %w", path, err)
	}

	ds := &Dataset{
		Path:    path,
		Format:  g.Name(),
		CRS:     info,
		Columns: columns,
	}

	selected := make([]string, 0, len(columns)+1)
	selected = append(selected, quoteIdent(geomCol))
	for _, c := range columns {
		selected = append(selected, quoteIdent(c))
	}
	rows, err := db.Query(fmt.Sprintf("SELECT %s FROM %s", strings.Join(selected, ", "), quoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("geopackage: query %s: %w", table, err)
	}
	defer rows.Close()

	rowNum := 0
	for rows.Next() {
		rowNum++
		var blob []byte
		dest := make([]any, len(columns)+1)
		dest[0] = &blob
		values := make([]any, len(columns))
		for i := range values {
			dest[i+1] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("geopackage: row %d: %w", rowNum, err)
		}

		geom, err := gpkgGeometry(blob)
		if err != nil {
			return nil, fmt.Errorf("geopackage: row %d: %w", rowNum, err)
		}
		attrs := make(map[string]any, len(columns))
		for i, c := range columns {
			attrs[c] = sqliteValue(values[i])
		}
		ds.Features = append(ds.Features, Feature{Geometry: geom, Attrs: attrs})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("geopackage: reading %s: %w", table, err)
	}

	return ds, nil
}

// firstFeatureTable returns the first table registered with data_type
// 'features', in gpkg_contents order.
func firstFeatureTable(db *sql.DB) (table string, srsID int64, err error) {
	row := db.QueryRow("SELECT table_name, srs_id FROM gpkg_contents WHERE data_type = 'features' ORDER BY rowid LIMIT 1")
	if err := row.Scan(&table, &srsID); err != nil {
		if err == sql.ErrNoRows {
			return "", 0, fmt.Errorf("no feature tables in gpkg_contents")
		}
		return "", 0, fmt.Errorf("read gpkg_contents: %w", err)
	}
	return table, srsID, nil
}

// geometryColumn looks up the geometry column name for a feature table.
func geometryColumn(db *sql.DB, table string) (string, error) {
	var col string
	row := db.QueryRow("SELECT column_name FROM gpkg_geometry_columns WHERE table_name = ?", table)
	if err := row.Scan(&col); err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("table %s has no gpkg_geometry_columns entry", table)
		}
		return "", fmt.Errorf("read gpkg_geometry_columns: %w", err)
	}
	return col, nil
}

// spatialRef resolves an srs_id through gpkg_spatial_ref_sys. The reserved
// ids 0 and -1 mean undefined.
func spatialRef(db *sql.DB, srsID int64) (crs.Info, error) {
	if srsID == 0 || srsID == -1 {
		return crs.Info{}, nil
	}
	var org, definition string
	var code int64
	row := db.QueryRow("SELECT organization, organization_coordsys_id, definition FROM gpkg_spatial_ref_sys WHERE srs_id = ?", srsID)
	if err := row.Scan(&org, &code, &definition); err != nil {
		if err == sql.ErrNoRows {
			return crs.Info{}, nil
		}
		return crs.Info{}, fmt.Errorf("read gpkg_spatial_ref_sys: %w", err)
	}
	if strings.EqualFold(org, "NONE") {
		return crs.Info{}, nil
	}

	info := crs.Info{Authority: strings.ToUpper(org), Code: strconv.FormatInt(code, 10)}
	if parsed, err := crs.ParseWKT(definition); err == nil {
		info.Name = parsed.Name
		info.Geographic = parsed.Geographic
	} else if ref, err := crs.Parse(info.String()); err == nil {
		info.Geographic = ref.Geographic
	}
	return info, nil
}

// attributeColumns returns the table's columns in declaration order,
// excluding the geometry column and the integer primary key.
func attributeColumns(db *sql.DB, table, geomCol string) ([]string, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("table_info %s: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("table_info %s: %w", table, err)
		}
		if name == geomCol {
			continue
		}
		if pk > 0 && strings.EqualFold(typ, "INTEGER") {
			continue
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("table_info %s: %w", table, err)
	}
	return cols, nil
}

// gpkgGeometry decodes a GeoPackage geometry blob: "GP" magic, version,
// flags, srs_id, optional envelope, then standard WKB.
func gpkgGeometry(blob []byte) (orb.Geometry, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	if len(blob) < 8 || blob[0] != 'G' || blob[1] != 'P' {
		return nil, fmt.Errorf("not a geopackage geometry blob")
	}
	flags := blob[3]
	if flags&0x20 != 0 {
		return nil, fmt.Errorf("extended geometry blobs not supported")
	}
	if flags&0x10 != 0 {
		return nil, nil // empty geometry flag
	}
	envSizes := []int{0, 32, 48, 48, 64}
	envCode := int(flags>>1) & 0x7
	if envCode >= len(envSizes) {
		return nil, fmt.Errorf("invalid envelope indicator %d", envCode)
	}
	offset := 8 + envSizes[envCode]
	if len(blob) < offset+5 {
		return nil, fmt.Errorf("truncated geometry blob")
	}
	geom, err := wkb.Unmarshal(blob[offset:])
	if err != nil {
		return nil, fmt.Errorf("decode wkb: %w", err)
	}
	return geom, nil
}

// sqliteValue normalizes driver values for attribute maps: byte slices
// become strings, everything else passes through.
func sqliteValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// quoteIdent double-quotes a SQLite identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
